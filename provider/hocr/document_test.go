package hocr

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/tiff"
)

const scannedHOCR = `<html><body>
<div class='ocr_page' id='page_1' title='image "scan.tif"; bbox 0 0 40 30'>
 <span class='ocr_line' title='bbox 0 0 40 10'>
  <span class='ocrx_word' title='bbox 0 0 20 10'>hello</span>
 </span>
 <div class='ocr_image' title='bbox 10 10 30 25'></div>
 <div class='ocr_graphic' title='bbox 35 20 60 40'></div>
</div>
<div class='ocr_page' id='page_2' title='bbox 0 0 40 30'>
 <div class='ocr_photo' title='bbox 0 0 5 5'></div>
</div>
</body></html>`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	scan := image.NewGray(image.Rect(0, 0, 40, 30))
	for y := 10; y < 25; y++ {
		for x := 10; x < 30; x++ {
			scan.SetGray(x, y, color.Gray{Y: 200})
		}
	}
	f, err := os.Create(filepath.Join(dir, "scan.tif"))
	if err != nil {
		t.Fatalf("Failed to create scan: %v", err)
	}
	if err := tiff.Encode(f, scan, nil); err != nil {
		t.Fatalf("Failed to encode scan: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Failed to close scan: %v", err)
	}

	path := filepath.Join(dir, "doc.hocr")
	if err := os.WriteFile(path, []byte(scannedHOCR), 0o644); err != nil {
		t.Fatalf("Failed to write hOCR: %v", err)
	}
	return path
}

func TestOpener_ScannedPage(t *testing.T) {
	path := writeFixture(t)

	doc, err := Opener{}.Open(t.Context(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer doc.Close()

	if doc.PageCount() != 2 {
		t.Fatalf("Expected 2 pages, got %d", doc.PageCount())
	}
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page(0) failed: %v", err)
	}
	if size := page.Size(); size.Width != 40 || size.Height != 30 {
		t.Errorf("Expected size 40x30, got %gx%g", size.Width, size.Height)
	}
	if text, _ := page.Text(); text != "hello" {
		t.Errorf("Expected text 'hello', got %q", text)
	}

	images, err := page.Images()
	if err != nil {
		t.Fatalf("Images failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(images))
	}

	first := images[0]
	if b := first.Image.Bounds(); b.Dx() != 20 || b.Dy() != 15 {
		t.Errorf("Expected a 20x15 crop, got %dx%d", b.Dx(), b.Dy())
	}
	if r, _, _, _ := first.Image.At(0, 0).RGBA(); r>>8 != 200 {
		t.Errorf("Crop should start inside the filled area, got %d", r>>8)
	}
	if !strings.HasPrefix(first.Digest, "sha256:") || first.Digest == images[1].Digest {
		t.Errorf("Expected distinct content digests, got %q and %q", first.Digest, images[1].Digest)
	}
	if first.SourceID != "scan.tif#1" {
		t.Errorf("Expected source id 'scan.tif#1', got %q", first.SourceID)
	}

	// The graphic region is clipped to the scan
	if b := images[1].Image.Bounds(); b.Dx() != 5 || b.Dy() != 10 {
		t.Errorf("Expected a clipped 5x10 crop, got %dx%d", b.Dx(), b.Dy())
	}

	raster, err := page.(*Page).Raster()
	if err != nil || raster == nil {
		t.Fatalf("Raster = %v, %v", raster, err)
	}
	if b := raster.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("Expected a 40x30 raster, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestPage_RegionsWithoutScan(t *testing.T) {
	doc, err := Load(writeFixture(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	page, err := doc.Page(1)
	if err != nil {
		t.Fatalf("Page(1) failed: %v", err)
	}
	if _, err := page.Images(); err == nil {
		t.Error("Expected an error for image regions without a scan")
	}
	if raster, err := page.(*Page).Raster(); raster != nil || err != nil {
		t.Errorf("Expected no raster, got %v, %v", raster, err)
	}
}

func TestPage_MissingScan(t *testing.T) {
	pages, err := Parse(strings.NewReader(scannedHOCR))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	doc := NewDocument("doc.hocr", t.TempDir(), pages)

	page, _ := doc.Page(0)
	if _, err := page.Images(); err == nil {
		t.Error("Expected an error for a missing scan file")
	}
	if _, err := page.(*Page).Raster(); err == nil {
		t.Error("Expected the raster to report the missing scan")
	}
}

func TestDocument_Errors(t *testing.T) {
	if _, err := (Opener{}).Open(t.Context(), filepath.Join(t.TempDir(), "missing.hocr")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	doc, err := Load(writeFixture(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := doc.Page(2); err == nil {
		t.Error("Expected an error for an out of range page")
	}
	doc.Close()
	if _, err := doc.Page(0); err == nil {
		t.Error("Expected an error after Close")
	}
}
