package compare

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benedoc-inc/pdfdiff/types"
)

// PageOutcome is everything found for one aligned page index.
// Pages present on one side only carry no text or image results, and a
// page whose processing failed carries only its Diagnostic.
type PageOutcome struct {
	Index      int              `json:"index"` // Zero-based
	Kind       OutcomeKind      `json:"kind"`
	Text       *TextDiffResult  `json:"text,omitempty"`
	Images     *ImageDiffResult `json:"images,omitempty"`
	Highlights []HighlightRect  `json:"highlights,omitempty"`
	Marker     *TextMarker      `json:"marker,omitempty"`
	Diagnostic *types.DiffError `json:"-"`
}

// Failed reports whether the page could not be compared
func (o PageOutcome) Failed() bool {
	return o.Diagnostic != nil
}

// ReportLines renders the findings of the page, without its header
func (o PageOutcome) ReportLines() []string {
	switch {
	case o.Kind == OnlyInFirst:
		return []string{"Only in file 1 (extra page)."}
	case o.Kind == OnlyInSecond:
		return []string{"Only in file 2 (extra page)."}
	case o.Diagnostic != nil:
		return []string{"Page processing error: " + diagnosticMessage(o.Diagnostic)}
	}
	var lines []string
	lines = append(lines, o.Text.ReportLines()...)
	lines = append(lines, o.Images.ReportLines()...)
	return lines
}

func diagnosticMessage(err *types.DiffError) string {
	if err.Cause != nil {
		return fmt.Sprintf("%s: %v", err.Message, err.Cause)
	}
	return err.Message
}

// Report is the ordered, human readable list of findings.
// Lines holds the exact lines of the text report; page groups are separated
// by an empty line.
type Report struct {
	Lines []string `json:"lines"`
}

func (r Report) String() string {
	return strings.Join(r.Lines, "\n")
}

type pageState int

const (
	pagePending pageState = iota
	pageRecorded
)

// Aggregator collects page outcomes in any order and emits the report in
// ascending page order once every page is recorded.
// It is not safe for concurrent use; the engine records from a single
// goroutine after its workers finish.
type Aggregator struct {
	outcomes  []PageOutcome
	states    []pageState
	finalized bool
}

// NewAggregator creates an aggregator expecting pageCount outcomes
func NewAggregator(pageCount int) *Aggregator {
	if pageCount < 0 {
		pageCount = 0
	}
	return &Aggregator{
		outcomes: make([]PageOutcome, pageCount),
		states:   make([]pageState, pageCount),
	}
}

// Record stores the outcome of one page
func (a *Aggregator) Record(outcome PageOutcome) error {
	if a.finalized {
		return fmt.Errorf("aggregator already finalized")
	}
	if outcome.Index < 0 || outcome.Index >= len(a.outcomes) {
		return fmt.Errorf("page index %d out of range [0,%d)", outcome.Index, len(a.outcomes))
	}
	if a.states[outcome.Index] == pageRecorded {
		return fmt.Errorf("page %d recorded twice", outcome.Index+1)
	}
	a.outcomes[outcome.Index] = outcome
	a.states[outcome.Index] = pageRecorded
	return nil
}

// Outcomes returns the recorded outcomes indexed by page
func (a *Aggregator) Outcomes() []PageOutcome {
	out := make([]PageOutcome, len(a.outcomes))
	copy(out, a.outcomes)
	return out
}

// Finalize builds the report. Every page must have been recorded; after a
// successful Finalize no further outcomes are accepted.
func (a *Aggregator) Finalize() (Report, error) {
	if a.finalized {
		return Report{}, fmt.Errorf("aggregator already finalized")
	}
	for i, s := range a.states {
		if s != pageRecorded {
			return Report{}, fmt.Errorf("page %d has no recorded outcome", i+1)
		}
	}
	a.finalized = true

	var lines []string
	for i, outcome := range a.outcomes {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, fmt.Sprintf("--- Page %d ---", i+1))
		lines = append(lines, outcome.ReportLines()...)
	}
	return Report{Lines: lines}, nil
}

// GenerateReport returns the text report of a comparison result
func GenerateReport(result *Result) string {
	return result.Report.String()
}

// GenerateJSONReport generates a JSON report from a comparison result
func GenerateJSONReport(result *Result) (string, error) {
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal comparison result: %w", err)
	}
	return string(jsonBytes), nil
}
