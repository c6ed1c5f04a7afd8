package compare

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/benedoc-inc/pdfdiff/provider"
	"github.com/benedoc-inc/pdfdiff/types"
)

const (
	DefaultOutputPDF    = "diff_output.pdf"
	DefaultOutputReport = "diff_report.txt"
)

// FilesRequest describes a comparison of two files on disk
type FilesRequest struct {
	Path1 string // Old version
	Path2 string // New version

	OutputPDF    string // Annotated document, defaults to DefaultOutputPDF
	OutputReport string // Text report, defaults to DefaultOutputReport
	OutputJSON   string // Optional JSON report

	Opener   provider.Opener
	Composer provider.Composer
	Options  Options

	DryRun bool // Compare and render but write nothing
}

// FilesResult is the comparison result together with the written paths
type FilesResult struct {
	*Result
	OutputPDF    string
	OutputReport string
	OutputJSON   string
}

// CompareFiles opens both files, compares them, renders the annotated
// document and writes it together with the report.
//
// Outputs are written to temporary files next to their destinations and
// only moved into place once every output has been written, so a failed run
// leaves no partial output behind.
func CompareFiles(ctx context.Context, req FilesRequest) (*FilesResult, error) {
	if req.Opener == nil || req.Composer == nil {
		return nil, types.NewDiffError(types.ErrCodeInvalidInput, "opener and composer are required")
	}
	if req.OutputPDF == "" {
		req.OutputPDF = DefaultOutputPDF
	}
	if req.OutputReport == "" {
		req.OutputReport = DefaultOutputReport
	}

	engine, err := NewEngine(req.Options)
	if err != nil {
		return nil, err
	}

	doc1, err := openDocument(ctx, req.Opener, req.Path1)
	if err != nil {
		return nil, err
	}
	defer doc1.Close()

	doc2, err := openDocument(ctx, req.Opener, req.Path2)
	if err != nil {
		return nil, err
	}
	defer doc2.Close()

	result, err := engine.Compare(ctx, doc1, doc2)
	if err != nil {
		return nil, err
	}

	out, err := engine.Render(ctx, req.Composer, doc1, doc2, result)
	if err != nil {
		return nil, err
	}
	if req.DryRun {
		return &FilesResult{Result: result}, nil
	}

	outputs := []pendingOutput{
		{path: req.OutputPDF, write: func(w io.Writer) error {
			_, err := out.WriteTo(w)
			return err
		}},
		{path: req.OutputReport, write: func(w io.Writer) error {
			_, err := io.WriteString(w, GenerateReport(result))
			return err
		}},
	}
	if req.OutputJSON != "" {
		outputs = append(outputs, pendingOutput{path: req.OutputJSON, write: func(w io.Writer) error {
			report, err := GenerateJSONReport(result)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, report)
			return err
		}})
	}

	if err := writeAtomically(outputs); err != nil {
		return nil, err
	}

	return &FilesResult{
		Result:       result,
		OutputPDF:    req.OutputPDF,
		OutputReport: req.OutputReport,
		OutputJSON:   req.OutputJSON,
	}, nil
}

func openDocument(ctx context.Context, opener provider.Opener, path string) (provider.Document, error) {
	doc, err := opener.Open(ctx, path)
	if err != nil {
		return nil, types.WrapErrorf(types.ErrCodeOpen, err, "failed to open %s", path).WithContext("path", path)
	}
	return doc, nil
}

type pendingOutput struct {
	path  string
	write func(w io.Writer) error
	temp  string
}

// writeAtomically writes every output to a temporary file in its destination
// directory, then renames them all into place. Temporary files are removed
// if any write fails.
func writeAtomically(outputs []pendingOutput) (err error) {
	defer func() {
		if err != nil {
			for _, o := range outputs {
				if o.temp != "" {
					os.Remove(o.temp)
				}
			}
		}
	}()

	for i := range outputs {
		o := &outputs[i]
		f, err := os.CreateTemp(filepath.Dir(o.path), "."+filepath.Base(o.path)+".*.tmp")
		if err != nil {
			return types.WrapErrorf(types.ErrCodeIO, err, "failed to create temporary file for %s", o.path)
		}
		o.temp = f.Name()

		if err := o.write(f); err != nil {
			f.Close()
			return types.WrapErrorf(types.ErrCodeIO, err, "failed to write %s", o.path)
		}
		if err := f.Close(); err != nil {
			return types.WrapErrorf(types.ErrCodeIO, err, "failed to close %s", o.path)
		}
	}

	for i := range outputs {
		o := &outputs[i]
		if err := os.Rename(o.temp, o.path); err != nil {
			return types.WrapErrorf(types.ErrCodeIO, err, "failed to move %s into place", o.path)
		}
		o.temp = ""
	}
	return nil
}

// String describes where the outputs were written
func (r *FilesResult) String() string {
	if r.OutputPDF == "" {
		return "dry run, nothing written"
	}
	s := fmt.Sprintf("output: %s, report: %s", r.OutputPDF, r.OutputReport)
	if r.OutputJSON != "" {
		s += ", json: " + r.OutputJSON
	}
	return s
}
