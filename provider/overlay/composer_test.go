package overlay

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/benedoc-inc/pdfdiff/provider/memory"
	"github.com/benedoc-inc/pdfdiff/types"
)

func composeOne(t *testing.T, page *memory.Page) (*Output, *Page) {
	t.Helper()
	doc := memory.NewDocument("doc.json", page)
	out := NewComposer("").NewOutput().(*Output)
	composed, err := out.ComposePage(doc, 0)
	if err != nil {
		t.Fatalf("ComposePage failed: %v", err)
	}
	return out, composed.(*Page)
}

func TestComposePage_Words(t *testing.T) {
	_, page := composeOne(t, memory.NewTextPage("hello world"))

	content := page.builder.Content().String()
	// "hello" spans y 72..82 on a 792pt page
	for _, want := range []string{"/F1 10.0000 Tf", "72.0000 710.0000 Td", "(hello) Tj", "(world) Tj"} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
}

func TestComposePage_Raster(t *testing.T) {
	scan := image.NewGray(image.Rect(0, 0, 8, 8))
	scan.Set(1, 1, color.Gray{Y: 255})
	p := memory.NewTextPage("scanned words")
	p.Scan = scan

	_, page := composeOne(t, p)
	content := page.builder.Content().String()
	if !strings.Contains(content, "/Scan1 Do") {
		t.Errorf("scanned page should draw its raster:\n%s", content)
	}
	if strings.Contains(content, "Tj") {
		t.Errorf("scanned page should not re-typeset words:\n%s", content)
	}
}

func TestDrawRectangle_FlipsCoordinates(t *testing.T) {
	_, page := composeOne(t, memory.NewTextPage("a"))

	err := page.DrawRectangle(types.BBox{X0: 72, Y0: 72, X1: 78, Y1: 82}, types.Red, 0.7)
	if err != nil {
		t.Fatalf("DrawRectangle failed: %v", err)
	}
	content := page.builder.Content().String()
	for _, want := range []string{"1.0000 0.0000 0.0000 RG", "0.7000 w", "72.0000 710.0000 6.0000 10.0000 re"} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
}

func TestDrawRectangle_Invalid(t *testing.T) {
	_, page := composeOne(t, memory.NewTextPage("a"))

	if err := page.DrawRectangle(types.BBox{X0: 10, X1: 5}, types.Red, 1); err == nil {
		t.Error("Expected an error for an inverted rectangle")
	}
	if err := page.DrawRectangle(types.BBox{X1: 5, Y1: 5}, types.Color{R: 2}, 1); err == nil {
		t.Error("Expected an error for an out of range color")
	}
}

func TestInsertText(t *testing.T) {
	_, page := composeOne(t, memory.NewTextPage(""))

	if err := page.InsertText(types.Point{X: 50, Y: 50}, "Images differ!", 12, types.Red); err != nil {
		t.Fatalf("InsertText failed: %v", err)
	}
	content := page.builder.Content().String()
	for _, want := range []string{"1.0000 0.0000 0.0000 rg", "/F1 12.0000 Tf", "50.0000 742.0000 Td", "(Images differ!) Tj"} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
	if err := page.InsertText(types.Point{}, "x", 0, types.Red); err == nil {
		t.Error("Expected an error for a zero font size")
	}
}

func TestOutput_WriteTo(t *testing.T) {
	doc := memory.NewDocument("doc.json",
		memory.NewTextPage("first page"),
		memory.NewTextPage("second page"))
	out := NewComposer("a.pdf vs b.pdf").NewOutput()

	for i := 0; i < doc.PageCount(); i++ {
		if _, err := out.ComposePage(doc, i); err != nil {
			t.Fatalf("ComposePage(%d) failed: %v", i, err)
		}
	}

	var first, second bytes.Buffer
	if _, err := out.WriteTo(&first); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if _, err := out.WriteTo(&second); err != nil {
		t.Fatalf("second WriteTo failed: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("writing twice should produce the same document")
	}

	pdf := first.String()
	if !strings.HasPrefix(pdf, "%PDF-1.7") || !strings.HasSuffix(pdf, "%%EOF\n") {
		t.Error("output is not a complete PDF file")
	}
	for _, want := range []string{"/Count 2", "/Title (a.pdf vs b.pdf)", "/Producer (pdfdiff)", "/Info "} {
		if !strings.Contains(pdf, want) {
			t.Errorf("PDF missing %q", want)
		}
	}

	if _, err := out.ComposePage(doc, 0); err == nil {
		t.Error("Expected an error composing after the document was written")
	}
}

func TestComposePage_UnreadablePage(t *testing.T) {
	broken := memory.NewTextPage("x")
	broken.Failure = errors.New("broken words")
	doc := memory.NewDocument("doc.json", broken)
	out := NewComposer("").NewOutput()

	composed, err := out.ComposePage(doc, 0)
	if err != nil {
		t.Fatalf("unreadable page should compose blank, got %v", err)
	}
	if content := composed.(*Page).builder.Content().String(); content != "" {
		t.Errorf("unreadable page should be blank:\n%s", content)
	}
	if _, err := out.ComposePage(doc, 3); err == nil {
		t.Error("Expected an error for a missing page")
	}

	empty := &memory.Page{}
	if _, err := out.ComposePage(memory.NewDocument("empty", empty), 0); err == nil {
		t.Error("Expected an error for a page without a size")
	}
}

func TestComposeBlank(t *testing.T) {
	out := NewComposer("").NewOutput().(*Output)

	blank, err := out.ComposeBlank(types.PageSize{Width: 300, Height: 400})
	if err != nil {
		t.Fatalf("ComposeBlank failed: %v", err)
	}
	page := blank.(*Page)
	if content := page.builder.Content().String(); content != "" {
		t.Errorf("blank page should have no content:\n%s", content)
	}
	if err := page.InsertText(types.Point{X: 10, Y: 10}, "note", 12, types.Red); err != nil {
		t.Fatalf("InsertText on blank page failed: %v", err)
	}
	if _, err := out.ComposeBlank(types.PageSize{}); err == nil {
		t.Error("Expected an error for a zero page size")
	}

	var buf bytes.Buffer
	if _, err := out.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if out.PageCount() != 1 || !strings.Contains(buf.String(), "/MediaBox[0 0 300.00 400.00]") {
		t.Errorf("Expected one 300x400 page, got %d pages", out.PageCount())
	}
}

func TestComposePage_WordsUseWinAnsi(t *testing.T) {
	_, page := composeOne(t, memory.NewTextPage("café 中文"))

	content := page.builder.Content().String()
	for _, want := range []string{"(caf\xe9) Tj", "(??) Tj"} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%q", want, content)
		}
	}
}
