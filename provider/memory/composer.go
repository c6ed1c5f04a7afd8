package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/benedoc-inc/pdfdiff/provider"
	"github.com/benedoc-inc/pdfdiff/types"
)

// Ensure the composition interfaces are implemented.
var (
	_ provider.Composer       = (*Composer)(nil)
	_ provider.OutputDocument = (*Output)(nil)
	_ provider.OutputPage     = (*OutputPage)(nil)
)

// Composer records the pages and annotations an engine renders.
// ComposeErr and WriteErr inject failures.
type Composer struct {
	ComposeErr error
	WriteErr   error

	mu      sync.Mutex
	outputs []*Output
}

// NewComposer creates a recording composer
func NewComposer() *Composer {
	return &Composer{}
}

// NewOutput starts a new recorded output document
func (c *Composer) NewOutput() provider.OutputDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := &Output{composer: c}
	c.outputs = append(c.outputs, out)
	return out
}

// Outputs returns every output created so far
func (c *Composer) Outputs() []*Output {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Output(nil), c.outputs...)
}

// Output is a recorded output document
type Output struct {
	composer *Composer
	Pages    []*OutputPage `json:"pages"`
}

// OutputPage is a recorded composed page
type OutputPage struct {
	Source      provider.Document `json:"-"`
	SourceName  string            `json:"source"`
	SourceIndex int               `json:"source_index"`
	Size        types.PageSize    `json:"size"`
	Rects       []Rect            `json:"rects,omitempty"`
	Texts       []Text            `json:"texts,omitempty"`
}

// Rect is a recorded rectangle
type Rect struct {
	BBox        types.BBox  `json:"bbox"`
	Color       types.Color `json:"color"`
	StrokeWidth float64     `json:"stroke_width"`
}

// Text is a recorded text insertion
type Text struct {
	Position types.Point `json:"position"`
	Text     string      `json:"text"`
	FontSize float64     `json:"font_size"`
	Color    types.Color `json:"color"`
}

// ComposePage records a copy of page index of src
func (o *Output) ComposePage(src provider.Document, index int) (provider.OutputPage, error) {
	if o.composer.ComposeErr != nil {
		return nil, o.composer.ComposeErr
	}
	p, err := src.Page(index)
	if err != nil {
		return nil, err
	}

	page := &OutputPage{
		Source:      src,
		SourceIndex: index,
		Size:        p.Size(),
	}
	if named, ok := src.(interface{ DocumentName() string }); ok {
		page.SourceName = named.DocumentName()
	}
	o.Pages = append(o.Pages, page)
	return page, nil
}

// ComposeBlank records an empty page with no source
func (o *Output) ComposeBlank(size types.PageSize) (provider.OutputPage, error) {
	if o.composer.ComposeErr != nil {
		return nil, o.composer.ComposeErr
	}
	page := &OutputPage{SourceIndex: -1, Size: size}
	o.Pages = append(o.Pages, page)
	return page, nil
}

// WriteTo writes the recorded operations as JSON
func (o *Output) WriteTo(w io.Writer) (int64, error) {
	if o.composer.WriteErr != nil {
		return 0, o.composer.WriteErr
	}
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal recorded output: %w", err)
	}
	n, err := w.Write(data)
	return int64(n), err
}

// DrawRectangle records a stroked rectangle
func (p *OutputPage) DrawRectangle(bbox types.BBox, color types.Color, strokeWidth float64) error {
	p.Rects = append(p.Rects, Rect{BBox: bbox, Color: color, StrokeWidth: strokeWidth})
	return nil
}

// InsertText records a text insertion
func (p *OutputPage) InsertText(pos types.Point, text string, fontSize float64, color types.Color) error {
	p.Texts = append(p.Texts, Text{Position: pos, Text: text, FontSize: fontSize, Color: color})
	return nil
}
