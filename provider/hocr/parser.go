package hocr

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/benedoc-inc/pdfdiff/types"
)

// XMLElement is a generic XHTML element
type XMLElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Content  string       `xml:",chardata"`
	Children []XMLElement `xml:",any"`
}

// PageData is the content of one ocr_page element
type PageData struct {
	ID      string
	BBox    types.BBox
	Image   string // Scan image path from the title, possibly relative
	Lines   [][]types.Word
	Regions []types.BBox // Photo, image and graphic areas
}

// Text returns the words of each line joined by spaces, lines joined by
// newlines
func (p *PageData) Text() string {
	lines := make([]string, 0, len(p.Lines))
	for _, line := range p.Lines {
		tokens := make([]string, len(line))
		for i, w := range line {
			tokens[i] = w.Text
		}
		lines = append(lines, strings.Join(tokens, " "))
	}
	return strings.Join(lines, "\n")
}

// Words returns every word in reading order
func (p *PageData) Words() []types.Word {
	var words []types.Word
	for _, line := range p.Lines {
		words = append(words, line...)
	}
	return words
}

var (
	bboxRegex  = regexp.MustCompile(`bbox\s+(-?\d+(?:\.\d+)?)\s+(-?\d+(?:\.\d+)?)\s+(-?\d+(?:\.\d+)?)\s+(-?\d+(?:\.\d+)?)`)
	imageRegex = regexp.MustCompile(`image\s+(?:"([^"]*)"|(\S+))`)
)

var lineClasses = map[string]bool{
	"ocr_line":      true,
	"ocr_caption":   true,
	"ocr_header":    true,
	"ocr_textfloat": true,
}

var regionClasses = map[string]bool{
	"ocr_photo":   true,
	"ocr_image":   true,
	"ocr_graphic": true,
}

// Parse reads an hOCR document and returns its pages in document order
func Parse(r io.Reader) ([]*PageData, error) {
	var doc XMLElement

	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	var pages []*PageData
	var traverseErr error
	traverseElements(doc, func(element XMLElement) bool {
		if !hasClass(element, "ocr_page") {
			return true
		}
		page, err := parsePageElement(element)
		if err != nil {
			traverseErr = fmt.Errorf("page %d: %w", len(pages)+1, err)
			return false
		}
		pages = append(pages, page)
		return false
	})
	if traverseErr != nil {
		return nil, traverseErr
	}
	return pages, nil
}

// traverseElements visits element and its descendants depth first. Children
// are skipped when visit returns false.
func traverseElements(element XMLElement, visit func(XMLElement) bool) {
	if !visit(element) {
		return
	}
	for _, child := range element.Children {
		traverseElements(child, visit)
	}
}

func parsePageElement(element XMLElement) (*PageData, error) {
	title := attr(element, "title")
	bbox, ok := parseBBox(title)
	if !ok || !bbox.Valid() || bbox.Width() == 0 || bbox.Height() == 0 {
		return nil, fmt.Errorf("missing or invalid page bbox in %q", title)
	}

	page := &PageData{
		ID:    attr(element, "id"),
		BBox:  bbox,
		Image: parseImage(title),
	}

	var current []types.Word
	flush := func() {
		if len(current) > 0 {
			page.Lines = append(page.Lines, current)
			current = nil
		}
	}

	for _, child := range element.Children {
		traverseElements(child, func(e XMLElement) bool {
			switch {
			case hasAnyClass(e, regionClasses):
				if region, ok := parseBBox(attr(e, "title")); ok {
					page.Regions = append(page.Regions, region)
				}
				return true
			case hasAnyClass(e, lineClasses):
				flush()
				traverseElements(e, func(w XMLElement) bool {
					if hasClass(w, "ocrx_word") {
						current = append(current, parseWordElement(w)...)
						return false
					}
					return true
				})
				flush()
				return false
			case hasClass(e, "ocrx_word"):
				// Word outside any line forms its own line
				flush()
				current = parseWordElement(e)
				flush()
				return false
			}
			return true
		})
	}
	return page, nil
}

// parseWordElement returns one Word per whitespace token of the element text,
// so the page words line up with the tokens of the page text. A word without
// a usable bbox gets an invalid one.
func parseWordElement(element XMLElement) []types.Word {
	bbox, ok := parseBBox(attr(element, "title"))
	if !ok {
		bbox = types.BBox{X0: math.NaN(), Y0: math.NaN(), X1: math.NaN(), Y1: math.NaN()}
	}

	tokens := strings.Fields(elementText(element))
	words := make([]types.Word, len(tokens))
	for i, tok := range tokens {
		words[i] = types.Word{Text: tok, BBox: bbox}
	}
	return words
}

// elementText concatenates the character data of element and its
// descendants, as in <span class='ocrx_word'><strong>Bold</strong></span>
func elementText(element XMLElement) string {
	var sb strings.Builder
	sb.WriteString(element.Content)
	for _, child := range element.Children {
		sb.WriteString(elementText(child))
	}
	return sb.String()
}

func parseBBox(title string) (types.BBox, bool) {
	matches := bboxRegex.FindStringSubmatch(title)
	if len(matches) != 5 {
		return types.BBox{}, false
	}
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(matches[i+1], 64)
		if err != nil {
			return types.BBox{}, false
		}
		v[i] = f
	}
	return types.BBox{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}, true
}

func parseImage(title string) string {
	for _, prop := range strings.Split(title, ";") {
		matches := imageRegex.FindStringSubmatch(strings.TrimSpace(prop))
		if len(matches) == 3 && strings.HasPrefix(strings.TrimSpace(prop), "image") {
			if matches[1] != "" {
				return matches[1]
			}
			return matches[2]
		}
	}
	return ""
}

func attr(element XMLElement, name string) string {
	for _, a := range element.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func hasClass(element XMLElement, class string) bool {
	for _, c := range strings.Fields(attr(element, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func hasAnyClass(element XMLElement, classes map[string]bool) bool {
	for _, c := range strings.Fields(attr(element, "class")) {
		if classes[c] {
			return true
		}
	}
	return false
}
