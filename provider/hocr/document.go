// Package hocr reads hOCR documents, the XHTML output of OCR engines such as
// Tesseract, as comparable documents.
//
// Each ocr_page becomes a page sized by its bbox, in scan pixels. Words come
// from ocrx_word elements, and ocr_photo, ocr_image and ocr_graphic regions
// are cropped out of the page scan named by the page's image property.
package hocr

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/tiff"

	"github.com/benedoc-inc/pdfdiff/provider"
	"github.com/benedoc-inc/pdfdiff/types"
)

var (
	_ provider.Opener     = Opener{}
	_ provider.Document   = (*Document)(nil)
	_ provider.Page       = (*Page)(nil)
	_ provider.Rasterizer = (*Page)(nil)
)

// Opener opens hOCR files
type Opener struct{}

// Open reads and parses the hOCR file at path. Scan images are loaded on
// first use, relative to the directory of the file.
func (Opener) Open(ctx context.Context, path string) (provider.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Load reads and parses the hOCR file at path
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hOCR file: %w", err)
	}
	pages, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return NewDocument(path, filepath.Dir(path), pages), nil
}

// Document is a parsed hOCR document
type Document struct {
	name  string
	pages []*Page

	mu     sync.Mutex
	closed bool
}

// NewDocument creates a document from parsed pages. Relative scan paths are
// resolved against baseDir.
func NewDocument(name, baseDir string, pages []*PageData) *Document {
	doc := &Document{name: name, pages: make([]*Page, len(pages))}
	for i, data := range pages {
		scanPath := data.Image
		if scanPath != "" && !filepath.IsAbs(scanPath) {
			scanPath = filepath.Join(baseDir, scanPath)
		}
		doc.pages[i] = &Page{index: i, data: data, scanPath: scanPath}
	}
	return doc
}

// PageCount returns the number of ocr_page elements
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Page returns the page at index
func (d *Document) Page(index int) (provider.Page, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("document %s is closed", d.name)
	}
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", index, len(d.pages))
	}
	return d.pages[index], nil
}

// Close marks the document closed; pages can no longer be loaded
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// DocumentName returns the path the document was loaded from
func (d *Document) DocumentName() string {
	return d.name
}

// Page is one ocr_page
type Page struct {
	index    int
	data     *PageData
	scanPath string

	once   sync.Once
	scan   image.Image
	digest string
	err    error
}

// Index returns the zero-based page index
func (p *Page) Index() int {
	return p.index
}

// Size returns the page bbox size in scan pixels
func (p *Page) Size() types.PageSize {
	return types.PageSize{Width: p.data.BBox.Width(), Height: p.data.BBox.Height()}
}

// Text returns the page text, one line per ocr_line
func (p *Page) Text() (string, error) {
	return p.data.Text(), nil
}

// Words returns the page words in reading order
func (p *Page) Words() ([]types.Word, error) {
	return p.data.Words(), nil
}

// Images crops every image region out of the page scan
func (p *Page) Images() ([]types.EmbeddedImage, error) {
	if len(p.data.Regions) == 0 {
		return nil, nil
	}
	if p.scanPath == "" {
		return nil, fmt.Errorf("page %d has image regions but no scan image", p.index+1)
	}
	scan, digest, err := p.loadScan()
	if err != nil {
		return nil, err
	}

	images := make([]types.EmbeddedImage, 0, len(p.data.Regions))
	for i, region := range p.data.Regions {
		img, err := crop(scan, region)
		if err != nil {
			return nil, fmt.Errorf("image region %d: %w", i+1, err)
		}
		images = append(images, types.EmbeddedImage{
			Index:    i,
			Image:    img,
			SourceID: fmt.Sprintf("%s#%d", filepath.Base(p.scanPath), i+1),
			Digest:   fmt.Sprintf("%s@%g,%g,%g,%g", digest, region.X0, region.Y0, region.X1, region.Y1),
		})
	}
	return images, nil
}

// Raster returns the page scan, or nil when the page names none
func (p *Page) Raster() (image.Image, error) {
	if p.scanPath == "" {
		return nil, nil
	}
	scan, _, err := p.loadScan()
	return scan, err
}

func (p *Page) loadScan() (image.Image, string, error) {
	p.once.Do(func() {
		data, err := os.ReadFile(p.scanPath)
		if err != nil {
			p.err = fmt.Errorf("failed to read scan image: %w", err)
			return
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			p.err = fmt.Errorf("failed to decode scan image %s: %w", p.scanPath, err)
			return
		}
		sum := sha256.Sum256(data)
		p.scan = img
		p.digest = "sha256:" + hex.EncodeToString(sum[:])
	})
	return p.scan, p.digest, p.err
}

// crop copies region out of img. The region is clipped to the image bounds.
func crop(img image.Image, region types.BBox) (image.Image, error) {
	if !region.Valid() {
		return nil, fmt.Errorf("invalid region %s", region)
	}
	b := img.Bounds()
	r := image.Rect(
		b.Min.X+int(region.X0), b.Min.Y+int(region.Y0),
		b.Min.X+int(region.X1), b.Min.Y+int(region.Y1),
	).Intersect(b)
	if r.Empty() {
		return nil, fmt.Errorf("region %s lies outside the %dx%d scan", region, b.Dx(), b.Dy())
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out, nil
}
