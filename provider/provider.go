// Package provider defines the document model the comparison engine reads
// from and the composition surface it renders annotated pages onto.
//
// Implementations live in sub-packages:
//   - memory: in-memory documents and a recording composer
//   - hocr: hOCR (OCR engine XHTML output) documents
//   - overlay: a composer that writes the annotated output as PDF
package provider

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/benedoc-inc/pdfdiff/types"
)

// Opener opens a document version from a path
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
}

// ByExtension dispatches to an Opener by lower-case file extension,
// including the dot (".hocr")
type ByExtension map[string]Opener

// Open opens path with the opener registered for its extension
func (m ByExtension) Open(ctx context.Context, path string) (Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	opener, ok := m[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type %q (supported: %s)", ext, strings.Join(m.Extensions(), ", "))
	}
	return opener.Open(ctx, path)
}

// Extensions returns the registered extensions in sorted order
func (m ByExtension) Extensions() []string {
	exts := make([]string, 0, len(m))
	for ext := range m {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Document is one version of a paginated document.
// Documents are read-only once opened and safe for concurrent page access.
type Document interface {
	PageCount() int
	Page(index int) (Page, error)
	Close() error
}

// Page is one page of a Document.
//
// Words must be reported in the same order the whitespace tokenization of
// Text produces them; highlights are mapped from token index to word index.
type Page interface {
	Index() int
	Size() types.PageSize
	Text() (string, error)
	Words() ([]types.Word, error)
	Images() ([]types.EmbeddedImage, error)
}

// Rasterizer is implemented by pages that can provide a full-page raster,
// used by composers to copy the visual content of a page.
type Rasterizer interface {
	Raster() (image.Image, error)
}

// Composer creates output documents
type Composer interface {
	NewOutput() OutputDocument
}

// OutputDocument accumulates composed pages and serializes them
type OutputDocument interface {
	// ComposePage appends a copy of page index of src to the output
	ComposePage(src Document, index int) (OutputPage, error)
	// ComposeBlank appends an empty page of the given size
	ComposeBlank(size types.PageSize) (OutputPage, error)
	WriteTo(w io.Writer) (int64, error)
}

// OutputPage is a composed page that annotations are drawn on.
// Geometry uses the source page coordinate system.
type OutputPage interface {
	DrawRectangle(bbox types.BBox, color types.Color, strokeWidth float64) error
	InsertText(pos types.Point, text string, fontSize float64, color types.Color) error
}
