package memory

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG images in manifests
	_ "image/png"  // PNG images in manifests
	"io"
	"os"
	"path/filepath"

	"github.com/benedoc-inc/pdfdiff/provider"
	"github.com/benedoc-inc/pdfdiff/types"
)

// Manifest is the JSON form of a document
//
//	{"pages": [{"width": 612, "height": 792, "text": "Hello world",
//	            "images": [{"data": "<base64 PNG>"}]}]}
//
// When a page lists no words they are laid out from its text.
type Manifest struct {
	Pages []ManifestPage `json:"pages"`
}

// ManifestPage is one page of a Manifest
type ManifestPage struct {
	Width  float64         `json:"width,omitempty"`
	Height float64         `json:"height,omitempty"`
	Text   string          `json:"text"`
	Words  []types.Word    `json:"words,omitempty"`
	Images []ManifestImage `json:"images,omitempty"`
	Raster string          `json:"raster,omitempty"` // Base64 PNG or JPEG full-page scan
}

// ManifestImage is an embedded image encoded as base64 PNG or JPEG
type ManifestImage struct {
	ID   string `json:"id,omitempty"`
	Data string `json:"data"`
}

// Decode reads a JSON manifest into a Document
func Decode(r io.Reader, name string) (*Document, error) {
	var m Manifest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	pages := make([]*Page, 0, len(m.Pages))
	for i, mp := range m.Pages {
		page, err := decodePage(mp)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, page)
	}
	return NewDocument(name, pages...), nil
}

func decodePage(mp ManifestPage) (*Page, error) {
	page := &Page{
		PageSize: types.PageSize{Width: mp.Width, Height: mp.Height},
		Content:  mp.Text,
		WordList: mp.Words,
	}
	if page.PageSize.Width <= 0 || page.PageSize.Height <= 0 {
		page.PageSize = types.PageSize{Width: DefaultPageWidth, Height: DefaultPageHeight}
	}
	if len(page.WordList) == 0 {
		page.WordList = LayoutWords(mp.Text)
	}

	for i, mi := range mp.Images {
		img, digest, err := decodeImage(mi.Data)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		id := mi.ID
		if id == "" {
			id = fmt.Sprintf("image-%d", i+1)
		}
		page.ImageList = append(page.ImageList, types.EmbeddedImage{
			Index:    i,
			Image:    img,
			SourceID: id,
			Digest:   digest,
		})
	}

	if mp.Raster != "" {
		img, _, err := decodeImage(mp.Raster)
		if err != nil {
			return nil, fmt.Errorf("raster: %w", err)
		}
		page.Scan = img
	}
	return page, nil
}

// decodeImage decodes base64 image data and returns it with the hex SHA-256
// digest of the encoded bytes
func decodeImage(data string) (image.Image, string, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	sum := sha256.Sum256(raw)
	return img, "sha256:" + hex.EncodeToString(sum[:]), nil
}

// Opener opens JSON manifests from disk
type Opener struct{}

var _ provider.Opener = Opener{}

// Open reads and decodes the manifest at path
func (Opener) Open(ctx context.Context, path string) (provider.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Decode(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return doc, nil
}
