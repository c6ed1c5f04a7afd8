package write

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestDocumentBuilder_Pages(t *testing.T) {
	b := NewDocumentBuilder()

	for i := 0; i < 2; i++ {
		page := b.AddPage(PageSize{Width: 612, Height: 792})
		font := page.AddStandardFont("Helvetica")
		if again := page.AddStandardFont("Helvetica"); again != font {
			t.Errorf("AddStandardFont returned %s then %s", font, again)
		}
		page.Content().TextAt(font, 12, 72, 720, "Hello (world)")
		if err := b.FinalizePage(page); err != nil {
			t.Fatalf("FinalizePage failed: %v", err)
		}
	}
	if b.PageCount() != 2 {
		t.Fatalf("PageCount = %d, want 2", b.PageCount())
	}
	b.Finish()

	pdfBytes, err := b.Writer().Bytes()
	if err != nil {
		t.Fatalf("Failed to generate PDF: %v", err)
	}
	pdf := string(pdfBytes)

	if !strings.Contains(pdf, "/Type/Pages/Kids[") || !strings.Contains(pdf, "/Count 2") {
		t.Error("PDF should contain a page tree with two kids")
	}
	if strings.Count(pdf, "/Type/Page/Parent 1 0 R") != 2 {
		t.Error("Both pages should reference the reserved page tree")
	}
	if !strings.Contains(pdf, "/Type/Catalog/Pages 1 0 R") {
		t.Error("PDF should contain a catalog")
	}
	if !strings.Contains(pdf, "/MediaBox[0 0 612.00 792.00]") {
		t.Error("Pages should carry a letter media box")
	}
	if !strings.Contains(pdf, "/Resources<</Font<</F1 ") {
		t.Error("Pages should list their fonts")
	}
}

func TestContentStream_Operators(t *testing.T) {
	cs := NewContentStream()
	cs.StrokeRect(10, 20, 30, 40, 1, 0, 0, 0.7)
	cs.TextAt("/F1", 12, 50, 50, `a(b)\c`)
	cs.DrawImageAt("/Im1", 0, 0, 612, 792)

	got := cs.String()
	for _, want := range []string{
		"1.0000 0.0000 0.0000 RG",
		"0.7000 w",
		"10.0000 20.0000 30.0000 40.0000 re",
		"S\n",
		"/F1 12.0000 Tf",
		"50.0000 50.0000 Td",
		`(a\(b\)\\c) Tj`,
		"612.0000 0.0000 0.0000 792.0000 0.0000 0.0000 cm",
		"/Im1 Do",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("content stream missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "q\n") != strings.Count(got, "Q\n") {
		t.Error("graphics state saves and restores should balance")
	}
}

func TestAddImage(t *testing.T) {
	tests := []struct {
		name       string
		img        image.Image
		colorSpace string
		smask      bool
	}{
		{"gray", image.NewGray(image.Rect(0, 0, 4, 3)), "/DeviceGray", false},
		{"opaque rgba", opaqueRGBA(4, 3), "/DeviceRGB", false},
		{"transparent rgba", image.NewNRGBA(image.Rect(0, 0, 4, 3)), "/DeviceRGB", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewPDFWriter()
			info, err := w.AddImage(tt.img, "/Im1")
			if err != nil {
				t.Fatalf("AddImage failed: %v", err)
			}
			if info.Width != 4 || info.Height != 3 {
				t.Errorf("size = %dx%d, want 4x3", info.Width, info.Height)
			}
			if info.ColorSpace != tt.colorSpace {
				t.Errorf("ColorSpace = %s, want %s", info.ColorSpace, tt.colorSpace)
			}
			_, hasMask := w.objects[info.ObjectNum].Dict["SMask"]
			if hasMask != tt.smask {
				t.Errorf("SMask present = %v, want %v", hasMask, tt.smask)
			}
		})
	}
}

func TestAddImage_Empty(t *testing.T) {
	w := NewPDFWriter()
	if _, err := w.AddImage(image.NewRGBA(image.Rectangle{}), "/Im1"); err == nil {
		t.Error("Expected an error for an empty image")
	}
}

func TestPageBuilder_ImageResources(t *testing.T) {
	b := NewDocumentBuilder()
	page := b.AddPage(PageSize{Width: 200, Height: 100})

	info, err := b.Writer().AddImage(opaqueRGBA(2, 2), "")
	if err != nil {
		t.Fatalf("AddImage failed: %v", err)
	}
	name := page.AddImage(info)
	if name != "/Im1" {
		t.Errorf("resource name = %s, want /Im1", name)
	}
	page.Content().DrawImageAt(name, 0, 0, 200, 100)
	if err := b.FinalizePage(page); err != nil {
		t.Fatalf("FinalizePage failed: %v", err)
	}
	b.Finish()

	var buf bytes.Buffer
	if _, err := b.Writer().WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("/XObject<</Im1 ")) {
		t.Error("page resources should list the image")
	}
}

func opaqueRGBA(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func TestShowText_WinAnsi(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"café", "(caf\xe9) Tj\n"},
		{"€5 – ok", "(\x805 \x96 ok) Tj\n"},
		{"中文 text", "(?? text) Tj\n"},
		{"bad\xffbyte", "(bad?byte) Tj\n"},
	}
	for _, tt := range tests {
		if got := NewContentStream().ShowText(tt.text).String(); got != tt.want {
			t.Errorf("ShowText(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
