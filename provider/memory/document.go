// Package memory provides documents held entirely in memory, built from Go
// values or decoded from a JSON manifest, and a composer that records every
// drawing call instead of producing a file.
package memory

import (
	"fmt"
	"image"
	"strings"

	"github.com/benedoc-inc/pdfdiff/provider"
	"github.com/benedoc-inc/pdfdiff/types"
)

// Ensure the document model interfaces are implemented.
var (
	_ provider.Document   = (*Document)(nil)
	_ provider.Page       = (*Page)(nil)
	_ provider.Rasterizer = (*Page)(nil)
)

// Default US Letter page size in points
const (
	DefaultPageWidth  = 612.0
	DefaultPageHeight = 792.0
)

// Document is an in-memory provider.Document
type Document struct {
	Name   string
	Pages  []*Page
	closed bool
}

// NewDocument creates a document from pages, numbering them in order
func NewDocument(name string, pages ...*Page) *Document {
	for i, p := range pages {
		p.PageIndex = i
	}
	return &Document{Name: name, Pages: pages}
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Page returns page index
func (d *Document) Page(index int) (provider.Page, error) {
	if d.closed {
		return nil, fmt.Errorf("document %s is closed", d.Name)
	}
	if index < 0 || index >= len(d.Pages) {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", index, len(d.Pages))
	}
	return d.Pages[index], nil
}

// Close marks the document closed
func (d *Document) Close() error {
	d.closed = true
	return nil
}

// Closed reports whether Close was called
func (d *Document) Closed() bool {
	return d.closed
}

// Page is an in-memory provider.Page.
// When Failure is set every content accessor returns it.
type Page struct {
	PageIndex int
	PageSize  types.PageSize
	Content   string
	WordList  []types.Word
	ImageList []types.EmbeddedImage
	Scan      image.Image
	Failure   error
}

// NewTextPage creates a letter-sized page whose words are laid out left to
// right on lines of at most wordsPerLine words, in tokenization order
func NewTextPage(text string) *Page {
	return &Page{
		PageSize: types.PageSize{Width: DefaultPageWidth, Height: DefaultPageHeight},
		Content:  text,
		WordList: LayoutWords(text),
	}
}

const (
	wordsPerLine = 10
	marginLeft   = 72.0
	marginTop    = 72.0
	lineHeight   = 14.0
	glyphWidth   = 6.0
	fontHeight   = 10.0
)

// LayoutWords assigns synthetic bounding boxes to the whitespace tokens of
// text, so that word i corresponds to token i
func LayoutWords(text string) []types.Word {
	tokens := strings.Fields(text)
	words := make([]types.Word, len(tokens))
	x := marginLeft
	for i, tok := range tokens {
		if i%wordsPerLine == 0 {
			x = marginLeft
		}
		y := marginTop + float64(i/wordsPerLine)*lineHeight
		w := float64(len([]rune(tok))) * glyphWidth
		words[i] = types.Word{
			Text: tok,
			BBox: types.BBox{X0: x, Y0: y, X1: x + w, Y1: y + fontHeight},
		}
		x += w + glyphWidth
	}
	return words
}

// WithImages adds images to the page, numbering them in order
func (p *Page) WithImages(images ...image.Image) *Page {
	for _, img := range images {
		p.ImageList = append(p.ImageList, types.EmbeddedImage{
			Index:    len(p.ImageList),
			Image:    img,
			SourceID: fmt.Sprintf("image-%d", len(p.ImageList)+1),
		})
	}
	return p
}

// Index returns the zero-based page index
func (p *Page) Index() int {
	return p.PageIndex
}

// Size returns the page size
func (p *Page) Size() types.PageSize {
	return p.PageSize
}

// Text returns the page text
func (p *Page) Text() (string, error) {
	if p.Failure != nil {
		return "", p.Failure
	}
	return p.Content, nil
}

// Words returns the page words
func (p *Page) Words() ([]types.Word, error) {
	if p.Failure != nil {
		return nil, p.Failure
	}
	return p.WordList, nil
}

// Images returns the embedded images
func (p *Page) Images() ([]types.EmbeddedImage, error) {
	if p.Failure != nil {
		return nil, p.Failure
	}
	return p.ImageList, nil
}

// Raster returns the page scan, or nil when the page has none
func (p *Page) Raster() (image.Image, error) {
	return p.Scan, nil
}

// DocumentName returns the document name
func (d *Document) DocumentName() string {
	return d.Name
}
