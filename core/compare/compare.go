// Package compare finds the differences between two versions of a paginated
// document: which pages exist on one side only, which words changed on each
// common page, and which embedded images look different. It also turns those
// findings into highlight annotations and an ordered text report.
package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/benedoc-inc/pdfdiff/provider"
	"github.com/benedoc-inc/pdfdiff/types"
)

// Status is the overall outcome of a comparison run
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial" // At least one page could not be compared
)

// Result is the outcome of comparing two documents
type Result struct {
	RunID       uuid.UUID          `json:"run_id"`
	Status      Status             `json:"status"`
	PageCount1  int                `json:"page_count1"`
	PageCount2  int                `json:"page_count2"`
	Outcomes    []PageOutcome      `json:"outcomes"`
	Report      Report             `json:"report"`
	Diagnostics []types.Diagnostic `json:"diagnostics,omitempty"`
}

// Options configures a comparison engine
type Options struct {
	Workers       int // Pages compared concurrently
	HashThreshold int // Largest perceptual-hash distance treated as equal
	Highlight     HighlightStyle
	Marker        MarkerStyle

	Hasher ImageHasher // Defaults to a PerceptualHasher over Cache
	Cache  HashCache   // Optional hash cache for the default hasher
	Logger *slog.Logger
}

// DefaultOptions returns default comparison options
func DefaultOptions() Options {
	return Options{
		Workers:       runtime.NumCPU(),
		HashThreshold: DefaultHashThreshold,
		Highlight:     DefaultHighlightStyle(),
		Marker:        DefaultMarkerStyle(),
	}
}

// Engine compares documents page by page on a bounded worker pool
type Engine struct {
	opts   Options
	images *ImageDiffer
	logger *slog.Logger
}

// NewEngine creates an engine
func NewEngine(opts Options) (*Engine, error) {
	if opts.Workers <= 0 {
		return nil, types.NewDiffErrorf(types.ErrCodeInvalidInput, "workers must be positive, got %d", opts.Workers)
	}
	if opts.HashThreshold < 0 {
		return nil, types.NewDiffErrorf(types.ErrCodeInvalidInput, "hash threshold must not be negative, got %d", opts.HashThreshold)
	}

	hasher := opts.Hasher
	if hasher == nil {
		hasher = NewPerceptualHasher(opts.Cache)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		opts:   opts,
		images: NewImageDiffer(hasher, opts.HashThreshold),
		logger: logger,
	}, nil
}

// Compare compares doc1 (the old version) against doc2 (the new version).
//
// Pages are compared concurrently and merged in ascending page order, so the
// result does not depend on scheduling. A page that cannot be compared is
// reported through its diagnostic and marks the result partial. If ctx is
// cancelled no result is returned.
func (e *Engine) Compare(ctx context.Context, doc1, doc2 provider.Document) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.WrapError(types.ErrCodeCancelled, "comparison cancelled", err)
	}

	runID := uuid.New()
	n1, n2 := doc1.PageCount(), doc2.PageCount()
	alignments := AlignPages(n1, n2)

	log := e.logger.With("run_id", runID.String())
	log.Info("comparison started", "pages1", n1, "pages2", n2, "workers", e.opts.Workers)

	outcomes := make([]PageOutcome, len(alignments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for _, a := range alignments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := e.comparePage(gctx, doc1, doc2, a)
			if err != nil {
				return err
			}
			outcomes[a.Index] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, types.WrapError(types.ErrCodeCancelled, "comparison cancelled", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, types.WrapError(types.ErrCodeCancelled, "comparison cancelled", err)
	}

	agg := NewAggregator(len(outcomes))
	diagnostics := types.NewDiagnosticCollector()
	for _, outcome := range outcomes {
		if err := agg.Record(outcome); err != nil {
			return nil, fmt.Errorf("failed to record page %d: %w", outcome.Index+1, err)
		}
		if outcome.Diagnostic != nil {
			diagnostics.Add(types.DiagnosticFromError(outcome.Index, outcome.Diagnostic))
			log.Warn("page could not be compared", "page", outcome.Index+1, "error", outcome.Diagnostic)
		}
	}
	report, err := agg.Finalize()
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	result := &Result{
		RunID:       runID,
		Status:      StatusSuccess,
		PageCount1:  n1,
		PageCount2:  n2,
		Outcomes:    agg.Outcomes(),
		Report:      report,
		Diagnostics: diagnostics.Diagnostics(),
	}
	if diagnostics.Count() > 0 {
		result.Status = StatusPartial
	}

	log.Info("comparison finished", "status", result.Status, "pages", len(outcomes), "diagnostics", len(result.Diagnostics))
	return result, nil
}

// comparePage compares one aligned page index. Page-level failures, including
// panics, are contained in the outcome; only cancellation is returned.
func (e *Engine) comparePage(ctx context.Context, doc1, doc2 provider.Document, a PageAlignment) (outcome PageOutcome, err error) {
	outcome = PageOutcome{Index: a.Index, Kind: a.Kind}

	defer func() {
		if r := recover(); r != nil {
			outcome = PageOutcome{
				Index:      a.Index,
				Kind:       a.Kind,
				Diagnostic: types.NewDiffErrorf(types.ErrCodePageProcessing, "panic while comparing page: %v", r),
			}
			err = nil
		}
	}()

	if a.Kind != BothPresent {
		e.logger.Debug("page present on one side", "page", a.Index+1, "kind", a.Kind)
		return outcome, nil
	}

	text, images, err := e.diffPage(ctx, doc1, doc2, a.Index)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcome, ctxErr
		}
		outcome.Diagnostic = pageError(err)
		return outcome, nil
	}

	outcome.Text = text.diff
	outcome.Images = images
	outcome.Highlights = EmitHighlights(a.Index, text.words2, text.diff.Opcodes, e.opts.Highlight)
	outcome.Marker = EmitImageMarker(a.Index, images.Differs, e.opts.Marker)

	e.logger.Debug("page compared",
		"page", a.Index+1,
		"kind", a.Kind,
		"changes", len(text.diff.Changes()),
		"images_differ", images.Differs)
	return outcome, nil
}

type pageText struct {
	diff   *TextDiffResult
	words2 []types.Word
}

func (e *Engine) diffPage(ctx context.Context, doc1, doc2 provider.Document, index int) (*pageText, *ImageDiffResult, error) {
	page1, err := doc1.Page(index)
	if err != nil {
		return nil, nil, types.WrapError(types.ErrCodePageProcessing, "failed to load page from file 1", err)
	}
	page2, err := doc2.Page(index)
	if err != nil {
		return nil, nil, types.WrapError(types.ErrCodePageProcessing, "failed to load page from file 2", err)
	}

	text1, err := page1.Text()
	if err != nil {
		return nil, nil, types.WrapError(types.ErrCodePageProcessing, "failed to extract text from file 1", err)
	}
	text2, err := page2.Text()
	if err != nil {
		return nil, nil, types.WrapError(types.ErrCodePageProcessing, "failed to extract text from file 2", err)
	}
	words2, err := page2.Words()
	if err != nil {
		return nil, nil, types.WrapError(types.ErrCodePageProcessing, "failed to extract words from file 2", err)
	}
	for i, w := range words2 {
		if !w.BBox.Valid() {
			return nil, nil, types.NewDiffErrorf(types.ErrCodePageProcessing,
				"word %d (%q) has malformed bounding box %s", i+1, w.Text, w.BBox)
		}
	}

	images1, err := page1.Images()
	if err != nil {
		return nil, nil, types.WrapError(types.ErrCodePageProcessing, "failed to extract images from file 1", err)
	}
	images2, err := page2.Images()
	if err != nil {
		return nil, nil, types.WrapError(types.ErrCodePageProcessing, "failed to extract images from file 2", err)
	}

	imageDiff, err := e.images.Diff(ctx, index, images1, images2)
	if err != nil {
		return nil, nil, err
	}

	return &pageText{diff: DiffText(text1, text2), words2: words2}, imageDiff, nil
}

// pageError converts a page failure into a page processing error
func pageError(err error) *types.DiffError {
	var diffErr *types.DiffError
	if errors.As(err, &diffErr) && diffErr.Code == types.ErrCodePageProcessing {
		return diffErr
	}
	return types.WrapError(types.ErrCodePageProcessing, "failed to compare page", err)
}

// Summary counts the findings of a result
type Summary struct {
	Pages         int `json:"pages"`
	OnlyInFirst   int `json:"only_in_first"`
	OnlyInSecond  int `json:"only_in_second"`
	TextChanged   int `json:"text_changed"`
	ImagesChanged int `json:"images_changed"`
	Failed        int `json:"failed"`
}

// Identical reports whether no difference was found and every page was compared
func (s Summary) Identical() bool {
	return s.OnlyInFirst == 0 && s.OnlyInSecond == 0 && s.TextChanged == 0 && s.ImagesChanged == 0 && s.Failed == 0
}

func (s Summary) String() string {
	return fmt.Sprintf("%d pages: %d only in file 1, %d only in file 2, %d with text changes, %d with image changes, %d failed",
		s.Pages, s.OnlyInFirst, s.OnlyInSecond, s.TextChanged, s.ImagesChanged, s.Failed)
}

// Summary counts the pages of the result by finding
func (r *Result) Summary() Summary {
	s := Summary{Pages: len(r.Outcomes)}
	for _, o := range r.Outcomes {
		switch {
		case o.Kind == OnlyInFirst:
			s.OnlyInFirst++
		case o.Kind == OnlyInSecond:
			s.OnlyInSecond++
		case o.Failed():
			s.Failed++
		default:
			if o.Text.HasChanges() {
				s.TextChanged++
			}
			if o.Images != nil && o.Images.Differs {
				s.ImagesChanged++
			}
		}
	}
	return s
}
