package compare

import (
	"context"
	"errors"
	"testing"

	"github.com/benedoc-inc/pdfdiff/provider"
	"github.com/benedoc-inc/pdfdiff/provider/memory"
	"github.com/benedoc-inc/pdfdiff/types"
)

func TestRender(t *testing.T) {
	doc1 := memory.NewDocument("old",
		memory.NewTextPage("The cat sat").WithImages(noiseImage(1)),
		memory.NewTextPage("same"),
		memory.NewTextPage("dropped page"))
	doc2 := memory.NewDocument("new",
		memory.NewTextPage("The dog sat").WithImages(noiseImage(2)),
		memory.NewTextPage("same"))

	result, err := newTestEngine(t, 2).Compare(context.Background(), doc1, doc2)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	composer := memory.NewComposer()
	if _, err := Render(context.Background(), composer, doc1, doc2, result); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	pages := composer.Outputs()[0].Pages
	if len(pages) != 3 {
		t.Fatalf("Expected 3 composed pages, got %d", len(pages))
	}

	wantSources := []string{"new", "new", "old"}
	for i, p := range pages {
		if p.SourceName != wantSources[i] || p.SourceIndex != i {
			t.Errorf("Page %d composed from %s[%d], want %s[%d]", i+1, p.SourceName, p.SourceIndex, wantSources[i], i)
		}
	}

	first := pages[0]
	if len(first.Rects) != 1 || first.Rects[0].BBox != doc2.Pages[0].WordList[1].BBox {
		t.Errorf("Expected one highlight around %q, got %+v", "dog", first.Rects)
	}
	if len(first.Texts) != 1 || first.Texts[0].Text != "Images differ!" || first.Texts[0].Position != (types.Point{X: 50, Y: 50}) {
		t.Errorf("Expected the image marker, got %+v", first.Texts)
	}
	if len(pages[1].Rects) != 0 || len(pages[2].Rects) != 0 {
		t.Error("Expected unchanged and extra pages to carry no highlights")
	}
}

func TestRender_ComposeFailureIsRenderError(t *testing.T) {
	doc := textDocument("a", "x")
	result, err := newTestEngine(t, 1).Compare(context.Background(), doc, doc)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	composer := &memory.Composer{ComposeErr: errors.New("out of memory")}
	if _, err := Render(context.Background(), composer, doc, doc, result); !errors.Is(err, types.ErrRender) {
		t.Errorf("Expected a render error, got %v", err)
	}
}

// unreadableDocument fails to load the page at index broken
type unreadableDocument struct {
	*memory.Document
	broken int
}

func (d *unreadableDocument) Page(index int) (provider.Page, error) {
	if index == d.broken {
		return nil, errors.New("corrupt page object")
	}
	return d.Document.Page(index)
}

func TestRender_UnreadablePageComposesBlank(t *testing.T) {
	doc1 := textDocument("old", "one", "two")
	doc1.Pages[1].PageSize = types.PageSize{Width: 300, Height: 400}
	doc2 := &unreadableDocument{Document: textDocument("new", "one", "two changed"), broken: 1}

	engine := newTestEngine(t, 2)
	result, err := engine.Compare(context.Background(), doc1, doc2)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.Status != StatusPartial || !result.Outcomes[1].Failed() {
		t.Fatalf("Expected page 2 to fail, got %+v", result.Outcomes[1])
	}

	composer := memory.NewComposer()
	if _, err := engine.Render(context.Background(), composer, doc1, doc2, result); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	pages := composer.Outputs()[0].Pages
	if len(pages) != 2 {
		t.Fatalf("Expected 2 composed pages, got %d", len(pages))
	}
	if pages[0].SourceName != "new" || pages[0].SourceIndex != 0 {
		t.Errorf("Page 1 composed from %s[%d], want new[0]", pages[0].SourceName, pages[0].SourceIndex)
	}
	if pages[1].SourceIndex != -1 || pages[1].Size != doc1.Pages[1].PageSize {
		t.Errorf("Expected a blank page sized like file 1, got %+v", pages[1])
	}
}

func TestRender_BlankPageFallsBackToDefaultSize(t *testing.T) {
	doc1 := &unreadableDocument{Document: textDocument("old", "one"), broken: 0}
	doc2 := &unreadableDocument{Document: textDocument("new", "one"), broken: 0}

	result, err := newTestEngine(t, 1).Compare(context.Background(), doc1, doc2)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	composer := memory.NewComposer()
	if _, err := Render(context.Background(), composer, doc1, doc2, result); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := composer.Outputs()[0].Pages[0].Size; got != BlankPageSize {
		t.Errorf("Expected the default blank size, got %+v", got)
	}
}
