package types

import (
	"sort"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DiagnosticKind taxonomizes recoverable problems surfaced alongside a
// FileContext or a pipeline run; see internal/errors for the taxonomy.
type DiagnosticKind string

const (
	DiagParseError   DiagnosticKind = "parse_error"
	DiagTimeout      DiagnosticKind = "timeout"
	DiagCacheError   DiagnosticKind = "cache_error"
	DiagDegraded     DiagnosticKind = "degraded"
	DiagSkippedVendor DiagnosticKind = "skipped_vendor"
)

// Diagnostic is a non-fatal note attached to a stage's output. Pipelines
// accumulate these instead of aborting; only discovery, config and
// cancellation errors are fatal, and none of them is represented here.
type Diagnostic struct {
	Kind    DiagnosticKind
	File    string
	Message string
}

// FileContext is the per-file parse result: the ordered AST items a
// parser extracted, the complexity rollup derived from them, and a
// content hash that two runs over unchanged bytes must reproduce
// identically.
type FileContext struct {
	Path         string // workspace-relative, forward-slash
	Language     Language
	Items        []AstItem // preserves source order
	ContentHash  string    // BLAKE3-128, hex
	SourceLines  int
	Diagnostics  []Diagnostic
}

// Functions returns the Function items in source order.
func (fc *FileContext) Functions() []AstItem {
	var out []AstItem
	for _, it := range fc.Items {
		if it.Kind == ItemFunction {
			out = append(out, it)
		}
	}
	return out
}

// ProjectContext is the unified AST forest for one analysis run: every
// discovered file's context, sorted lexicographically by NFC-normalised
// path, plus a summary and the wall-clock this run was generated.
type ProjectContext struct {
	Root        string
	Files       []FileContext
	Summary     ProjectSummary
	GeneratedAt time.Time
	Diagnostics []Diagnostic
}

// ProjectSummary aggregates counts used by C5/C13 reporting without
// re-walking the full file list.
type ProjectSummary struct {
	FileCount     int
	TotalLOC      int
	ItemsByKind   map[ItemKind]int
	FilesByLang   map[Language]int
}

// SortFiles orders Files by NFC-normalised path, ascending. This is the
// ordering invariant the rest of the pipeline relies on: the sequence of files in a
// ProjectContext must equal the lexicographically sorted list of
// discovered paths.
func (pc *ProjectContext) SortFiles() {
	sort.Slice(pc.Files, func(i, j int) bool {
		return norm.NFC.String(pc.Files[i].Path) < norm.NFC.String(pc.Files[j].Path)
	})
}

// BuildSummary recomputes Summary from Files. Called once after SortFiles
// so downstream consumers never observe a stale summary.
func (pc *ProjectContext) BuildSummary() {
	s := ProjectSummary{
		ItemsByKind: make(map[ItemKind]int),
		FilesByLang: make(map[Language]int),
	}
	for _, f := range pc.Files {
		s.FileCount++
		s.TotalLOC += f.SourceLines
		s.FilesByLang[f.Language]++
		for _, it := range f.Items {
			s.ItemsByKind[it.Kind]++
		}
	}
	pc.Summary = s
}
