package compare

import (
	"context"
	"log/slog"

	"github.com/benedoc-inc/pdfdiff/provider"
	"github.com/benedoc-inc/pdfdiff/types"
)

// BlankPageSize is used for a page that could not be read from either file
var BlankPageSize = types.PageSize{Width: 612, Height: 792}

// Render composes the annotated output document.
//
// Pages present in both files are copied from doc2 with their highlights and
// marker drawn on top. Extra pages are copied from whichever file has them.
// Pages that could not be compared are copied from doc2 unannotated, or left
// blank when doc2 cannot provide them either.
func Render(ctx context.Context, composer provider.Composer, doc1, doc2 provider.Document, result *Result) (provider.OutputDocument, error) {
	return render(ctx, slog.Default(), composer, doc1, doc2, result)
}

// Render composes the annotated output document, logging to the engine's
// logger.
func (e *Engine) Render(ctx context.Context, composer provider.Composer, doc1, doc2 provider.Document, result *Result) (provider.OutputDocument, error) {
	log := e.logger
	if result != nil {
		log = log.With("run_id", result.RunID.String())
	}
	return render(ctx, log, composer, doc1, doc2, result)
}

func render(ctx context.Context, log *slog.Logger, composer provider.Composer, doc1, doc2 provider.Document, result *Result) (provider.OutputDocument, error) {
	out := composer.NewOutput()

	for _, outcome := range result.Outcomes {
		if err := ctx.Err(); err != nil {
			return nil, types.WrapError(types.ErrCodeCancelled, "rendering cancelled", err)
		}

		src, other := doc2, doc1
		if outcome.Kind == OnlyInFirst {
			src, other = doc1, doc2
		}

		page, err := out.ComposePage(src, outcome.Index)
		if err != nil && outcome.Failed() {
			log.Warn("composing blank page", "page", outcome.Index+1, "error", err)
			page, err = out.ComposeBlank(blankSize(other, outcome.Index))
		}
		if err != nil {
			return nil, types.WrapErrorf(types.ErrCodeRender, err, "failed to compose page %d", outcome.Index+1)
		}

		for _, h := range outcome.Highlights {
			if err := page.DrawRectangle(h.BBox, h.Color, h.StrokeWidth); err != nil {
				return nil, types.WrapErrorf(types.ErrCodeRender, err, "failed to draw highlight on page %d", outcome.Index+1)
			}
		}
		if m := outcome.Marker; m != nil {
			if err := page.InsertText(m.Position, m.Text, m.FontSize, m.Color); err != nil {
				return nil, types.WrapErrorf(types.ErrCodeRender, err, "failed to insert marker on page %d", outcome.Index+1)
			}
		}
	}

	return out, nil
}

// blankSize takes the size of the matching page in doc when it can be read
func blankSize(doc provider.Document, index int) types.PageSize {
	if index < doc.PageCount() {
		if p, err := doc.Page(index); err == nil {
			if size := p.Size(); size.Width > 0 && size.Height > 0 {
				return size
			}
		}
	}
	return BlankPageSize
}
