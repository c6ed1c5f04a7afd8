package types

import (
	"fmt"
	"sort"
	"sync"
)

// DiagnosticLevel represents the severity of a diagnostic
type DiagnosticLevel string

// DiagnosticLevelError marks a page-level failure that was contained
const DiagnosticLevelError DiagnosticLevel = "error"

// Diagnostic is a non-fatal issue recorded against a page during a run
type Diagnostic struct {
	Level   DiagnosticLevel `json:"level"`
	Page    int             `json:"page"` // Zero-based page index
	Code    DiffErrorCode   `json:"code,omitempty"`
	Message string          `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Code != "" {
		return fmt.Sprintf("[%s] page %d: %s: %s", d.Level, d.Page+1, d.Code, d.Message)
	}
	return fmt.Sprintf("[%s] page %d: %s", d.Level, d.Page+1, d.Message)
}

// DiagnosticFromError builds an error-level diagnostic for a page
func DiagnosticFromError(page int, err error) Diagnostic {
	d := Diagnostic{
		Level:   DiagnosticLevelError,
		Page:    page,
		Message: err.Error(),
	}
	if diffErr, ok := AsDiffError(err); ok {
		d.Code = diffErr.Code
		d.Message = diffErr.Message
		if diffErr.Cause != nil {
			d.Message = fmt.Sprintf("%s: %v", diffErr.Message, diffErr.Cause)
		}
	}
	return d
}

// DiagnosticCollector collects diagnostics from concurrent page workers
type DiagnosticCollector struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
}

// NewDiagnosticCollector creates an empty collector
func NewDiagnosticCollector() *DiagnosticCollector {
	return &DiagnosticCollector{}
}

// Add records a diagnostic
func (c *DiagnosticCollector) Add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, d)
}

// Diagnostics returns the collected diagnostics ordered by page.
// Diagnostics for the same page keep their insertion order.
func (c *DiagnosticCollector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out
}

// Count returns the number of diagnostics collected
func (c *DiagnosticCollector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.diagnostics)
}
