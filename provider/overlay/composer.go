// Package overlay writes annotated output documents as PDF.
//
// Every composed page reproduces its source page: scanned pages are embedded
// as a full-page image, other pages have their words re-typeset in Helvetica
// at their original positions. Highlights and markers are drawn on top.
package overlay

import (
	"fmt"
	"io"
	"math"

	"github.com/benedoc-inc/pdfdiff/core/write"
	"github.com/benedoc-inc/pdfdiff/provider"
	"github.com/benedoc-inc/pdfdiff/types"
)

var (
	_ provider.Composer       = (*Composer)(nil)
	_ provider.OutputDocument = (*Output)(nil)
	_ provider.OutputPage     = (*Page)(nil)
)

const (
	textFont     = "Helvetica"
	minFontSize  = 1.0
	DefaultTitle = "Document comparison"
	Producer     = "pdfdiff"
)

// Composer creates PDF output documents
type Composer struct {
	Title string // Document title, defaults to DefaultTitle
}

// NewComposer creates a PDF composer
func NewComposer(title string) *Composer {
	return &Composer{Title: title}
}

// NewOutput starts a new PDF document
func (c *Composer) NewOutput() provider.OutputDocument {
	title := c.Title
	if title == "" {
		title = DefaultTitle
	}
	return &Output{
		title:   title,
		builder: write.NewDocumentBuilder(),
	}
}

// Output is a PDF document under construction.
// Pages stay open for annotation until the first WriteTo.
type Output struct {
	title    string
	builder  *write.DocumentBuilder
	pages    []*Page
	finished bool
}

// ComposePage appends a copy of page index of src
func (o *Output) ComposePage(src provider.Document, index int) (provider.OutputPage, error) {
	if o.finished {
		return nil, fmt.Errorf("output already written")
	}
	p, err := src.Page(index)
	if err != nil {
		return nil, err
	}

	page, err := o.addPage(p.Size())
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", index+1, err)
	}

	// Content that cannot be read leaves the page blank; pages that failed
	// comparison are still composed.
	drawn, err := page.drawRaster(p, len(o.pages)+1)
	if err != nil {
		return nil, err
	}
	if !drawn {
		page.drawWords(p)
	}

	o.pages = append(o.pages, page)
	return page, nil
}

// ComposeBlank appends an empty page of the given size
func (o *Output) ComposeBlank(size types.PageSize) (provider.OutputPage, error) {
	if o.finished {
		return nil, fmt.Errorf("output already written")
	}
	page, err := o.addPage(size)
	if err != nil {
		return nil, err
	}
	o.pages = append(o.pages, page)
	return page, nil
}

func (o *Output) addPage(size types.PageSize) (*Page, error) {
	if !(size.Width > 0) || !(size.Height > 0) || math.IsInf(size.Width, 0) || math.IsInf(size.Height, 0) {
		return nil, fmt.Errorf("invalid page size %gx%g", size.Width, size.Height)
	}
	return &Page{
		builder: o.builder.AddPage(write.PageSize{Width: size.Width, Height: size.Height}),
		writer:  o.builder.Writer(),
		height:  size.Height,
	}, nil
}

// WriteTo finalizes the document on first use and writes it
func (o *Output) WriteTo(w io.Writer) (int64, error) {
	if !o.finished {
		for i, page := range o.pages {
			if err := o.builder.FinalizePage(page.builder); err != nil {
				return 0, fmt.Errorf("failed to finalize page %d: %w", i+1, err)
			}
		}
		o.builder.Writer().SetMetadata(&write.Metadata{
			Title:    o.title,
			Creator:  Producer,
			Producer: Producer,
		})
		o.builder.Finish()
		o.finished = true
	}
	return o.builder.Writer().WriteTo(w)
}

// PageCount returns the number of composed pages
func (o *Output) PageCount() int {
	return len(o.pages)
}

// Page is a composed PDF page. Geometry is given in source page
// coordinates, with the origin at the top-left corner, and flipped into PDF
// user space when drawn.
type Page struct {
	builder *write.PageBuilder
	writer  *write.PDFWriter
	height  float64
	font    string
}

func (p *Page) drawRaster(src provider.Page, n int) (bool, error) {
	r, ok := src.(provider.Rasterizer)
	if !ok {
		return false, nil
	}
	img, err := r.Raster()
	if err != nil || img == nil {
		return false, nil
	}

	info, err := p.writer.AddImage(img, fmt.Sprintf("Scan%d", n))
	if err != nil {
		return false, err
	}
	name := p.builder.AddImage(info)
	size := p.builder.Size()
	p.builder.Content().DrawImageAt(name, 0, 0, size.Width, size.Height)
	return true, nil
}

func (p *Page) drawWords(src provider.Page) {
	words, err := src.Words()
	if err != nil {
		return
	}
	for _, w := range words {
		if !w.BBox.Valid() {
			continue
		}
		size := math.Max(w.BBox.Height(), minFontSize)
		p.builder.Content().TextAt(p.fontName(), size, w.BBox.X0, p.height-w.BBox.Y1, w.Text)
	}
}

func (p *Page) fontName() string {
	if p.font == "" {
		p.font = p.builder.AddStandardFont(textFont)
	}
	return p.font
}

// DrawRectangle strokes the outline of bbox
func (p *Page) DrawRectangle(bbox types.BBox, color types.Color, strokeWidth float64) error {
	if !bbox.Valid() {
		return fmt.Errorf("invalid rectangle %s", bbox)
	}
	if !color.Valid() {
		return fmt.Errorf("invalid color %+v", color)
	}
	if !(strokeWidth >= 0) {
		return fmt.Errorf("invalid stroke width %g", strokeWidth)
	}
	p.builder.Content().StrokeRect(bbox.X0, p.height-bbox.Y1, bbox.Width(), bbox.Height(),
		color.R, color.G, color.B, strokeWidth)
	return nil
}

// InsertText draws text with its baseline starting at pos
func (p *Page) InsertText(pos types.Point, text string, fontSize float64, color types.Color) error {
	if !color.Valid() {
		return fmt.Errorf("invalid color %+v", color)
	}
	if !(fontSize > 0) {
		return fmt.Errorf("invalid font size %g", fontSize)
	}
	font := p.fontName()
	p.builder.Content().
		SaveState().
		SetFillColorRGB(color.R, color.G, color.B).
		TextAt(font, fontSize, pos.X, p.height-pos.Y, text).
		RestoreState()
	return nil
}
