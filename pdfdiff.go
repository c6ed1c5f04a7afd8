// Package pdfdiff compares two versions of a paginated document and reports
// what changed.
//
// Pages are aligned by index. On every page present in both versions the
// words are diffed and the embedded images are compared by perceptual hash.
// The result is an annotated copy of the new version, with changed words
// outlined and changed images flagged, plus an ordered text report.
//
// # Quick Start
//
//	import "github.com/benedoc-inc/pdfdiff/core/compare"
//	import "github.com/benedoc-inc/pdfdiff/provider"
//	import "github.com/benedoc-inc/pdfdiff/provider/hocr"
//	import "github.com/benedoc-inc/pdfdiff/provider/overlay"
//
//	res, err := compare.CompareFiles(ctx, compare.FilesRequest{
//		Path1:    "v1.hocr",
//		Path2:    "v2.hocr",
//		Opener:   provider.ByExtension{".hocr": hocr.Opener{}},
//		Composer: overlay.NewComposer(""),
//		Options:  compare.DefaultOptions(),
//	})
//
// # Packages
//
//   - core/compare: page alignment, text and image diffs, annotations, report
//   - core/write: PDF generation
//   - provider: document model, with memory, hocr and overlay implementations
//   - storage: perceptual hash caches (memory, SQLite)
//   - config: TOML and environment configuration
//   - types: common data structures and errors
package pdfdiff

import (
	"github.com/benedoc-inc/pdfdiff/core/compare"
	"github.com/benedoc-inc/pdfdiff/types"
)

// version is set at build time with -ldflags "-X github.com/benedoc-inc/pdfdiff.version=..."
var version = "dev"

// Version returns the build version
func Version() string {
	return version
}

// Re-export common types for convenience.

// Result is the outcome of comparing two documents.
type Result = compare.Result

// Options configures a comparison.
type Options = compare.Options

// PageOutcome is everything found for one aligned page.
type PageOutcome = compare.PageOutcome

// DiffError is the structured error returned by comparisons.
type DiffError = types.DiffError
