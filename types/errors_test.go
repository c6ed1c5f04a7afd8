package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestDiffError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DiffError
		expected string
	}{
		{
			name:     "simple error",
			err:      NewDiffError(ErrCodeOpen, "cannot open old.hocr"),
			expected: "[OPEN_ERROR] cannot open old.hocr",
		},
		{
			name:     "error with cause",
			err:      WrapError(ErrCodeIO, "failed to write report", fmt.Errorf("disk full")),
			expected: "[IO_ERROR] failed to write report: disk full",
		},
		{
			name:     "formatted error",
			err:      NewDiffErrorf(ErrCodePageProcessing, "word %d has an invalid bounding box", 7),
			expected: "[PAGE_PROCESSING_ERROR] word 7 has an invalid bounding box",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDiffError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := WrapError(ErrCodeRender, "compose page 3", cause)

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("errors.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestDiffError_Is(t *testing.T) {
	err := NewDiffError(ErrCodeOpen, "missing file")

	if !errors.Is(err, ErrOpen) {
		t.Error("errors.Is should match ErrOpen sentinel")
	}
	if errors.Is(err, ErrIO) {
		t.Error("errors.Is should not match ErrIO sentinel")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.Is(wrapped, ErrOpen) {
		t.Error("wrapped error should match ErrOpen sentinel")
	}
}

func TestDiffError_WithContext(t *testing.T) {
	err := NewDiffError(ErrCodeIO, "write failed").
		WithContext("artifact", "report").
		WithContext("page", 2)

	if err.Context["artifact"] != "report" {
		t.Errorf("Context[artifact] = %v, want report", err.Context["artifact"])
	}
	if err.Context["page"] != 2 {
		t.Errorf("Context[page] = %v, want 2", err.Context["page"])
	}
}

func TestGetErrorCode(t *testing.T) {
	err := fmt.Errorf("run: %w", NewDiffError(ErrCodeRender, "no pages"))

	code, ok := GetErrorCode(err)
	if !ok || code != ErrCodeRender {
		t.Errorf("GetErrorCode() = %v, %v; want %v, true", code, ok, ErrCodeRender)
	}

	if _, ok := GetErrorCode(fmt.Errorf("standard error")); ok {
		t.Error("GetErrorCode should return false for standard error")
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{nil, false},
		{NewDiffError(ErrCodePageProcessing, ""), false},
		{fmt.Errorf("page 2: %w", NewDiffError(ErrCodePageProcessing, "")), false},
		{NewDiffError(ErrCodeOpen, ""), true},
		{NewDiffError(ErrCodeIO, ""), true},
		{fmt.Errorf("standard error"), true},
	}

	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.expected {
			t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.expected)
		}
	}
}
