// Package tdg implements the Technical Debt Gradient Calculator (C8): the
// multiplicative composite score from §4.8,
// TDG(f) = W1·C(f) × W2·Δ(f) × W3·S(f) × W4·D(f) × W5·Dup(f), fed by C5
// (complexity), an external churn source, C4 (structural coupling), C6
// (SATD), and C9 (duplication).
//
// Grounded on panbanda-omen's TdgAnalyzer for the analyzer-struct-plus-
// per-component-method shape (AnalyzeFile/AnalyzeProject, one method per
// factor); the formula itself is this module's own multiplicative
// variant rather than that analyzer's additive/penalty-based one — see
// DESIGN.md's Open Question resolution for why, and for the exact
// per-factor scale this implementation picked.
package tdg

import (
	"sort"

	"github.com/standardbeagle/tdgraph/internal/config"
	"github.com/standardbeagle/tdgraph/internal/types"
)

// ChurnSource is the collaborator interface §4.8 names: "ChurnSource::
// recent_changes(path, window_days) -> {commits_recent, commits_total,
// unique_authors}". internal/churn.GitSource implements it; tdg
// depends only on this interface so the two packages don't import each
// other.
type ChurnSource interface {
	RecentChanges(path string, windowDays int) (ChurnStats, bool)
}

// ChurnStats is one path's churn window result.
type ChurnStats struct {
	CommitsRecent  int
	CommitsTotal   int
	UniqueAuthors  int
}

// Calculator computes TDGScore for every file in a project.
type Calculator struct {
	Weights    [5]float64
	WindowDays int
	Churn      ChurnSource // nil means Δ(f) = 0 for every file, per §4.8
}

// NewCalculator builds a Calculator from config, with churn optional.
func NewCalculator(cfg *config.Config, churn ChurnSource) *Calculator {
	return &Calculator{Weights: cfg.TDG.Weights, WindowDays: 90, Churn: churn}
}

// complexityFactor derives C(f) from a file's complexity rollup: 1
// (baseline, a trivial file) growing with its average per-function
// cyclomatic complexity, capped at 20 so one pathological function
// can't single-handedly dominate the product.
func complexityFactor(fc types.FileComplexity) float64 {
	if fc.FunctionCount == 0 {
		return 1
	}
	avg := float64(fc.TotalCyclomatic) / float64(fc.FunctionCount)
	if avg < 1 {
		avg = 1
	}
	return capAt(avg, 20)
}

// churnFactor derives Δ(f): the raw recent-commit count, capped at 50.
// Per §4.8, an unavailable churn source yields exactly 0, not a
// baseline-1 floor — the pipeline surfaces this via ChurnAvailable.
func churnFactor(c *Calculator, path string) (value float64, available bool) {
	if c.Churn == nil {
		return 0, false
	}
	stats, ok := c.Churn.RecentChanges(path, c.WindowDays)
	if !ok {
		return 0, false
	}
	return capAt(float64(stats.CommitsRecent), 50), true
}

// couplingFactor is S(f) = fan_in·fan_out / |V|, exactly per §4.8,
// computed from the file's own DAG node in/out edge counts.
func couplingFactor(g *types.DependencyGraph, fileNode types.DagNodeID, nodeCount int) float64 {
	if g == nil || nodeCount == 0 {
		return 0
	}
	fanIn := len(g.InEdges(fileNode))
	fanOut := len(g.OutEdges(fileNode))
	return float64(fanIn*fanOut) / float64(nodeCount)
}

// debtFactor derives D(f): 1 (baseline) plus a severity-weighted sum of
// a file's SATD items, capped at 20.
func debtFactor(items []types.SatdItem) float64 {
	sum := 1.0
	for _, it := range items {
		sum += float64(it.Severity.Weight() + 1)
	}
	return capAt(sum, 20)
}

// duplicateFactor derives Dup(f): 1 (baseline, no duplication) growing
// with the file's share of duplicated lines across clone groups,
// capped at 10.
func duplicateFactor(coverageRatio float64) float64 {
	return capAt(1+9*coverageRatio, 10)
}

func capAt(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

func severityFor(value float64) types.TDGSeverity {
	switch {
	case value > 2.5:
		return types.TDGCritical
	case value >= 0.8:
		return types.TDGWarning
	default:
		return types.TDGNormal
	}
}

// fileDuplicateCoverage maps each file to the fraction of its lines
// inside some clone group, estimated from member line spans.
func fileDuplicateCoverage(report types.CloneReport, totalLines map[string]int) map[string]float64 {
	coverage := make(map[string]int)
	for _, group := range report.Groups {
		for _, m := range group.Members {
			if m.EndLine >= m.StartLine {
				coverage[m.File] += int(m.EndLine-m.StartLine) + 1
			}
		}
	}
	ratios := make(map[string]float64, len(coverage))
	for file, lines := range coverage {
		total := totalLines[file]
		if total <= 0 {
			ratios[file] = 0
			continue
		}
		ratio := float64(lines) / float64(total)
		if ratio > 1 {
			ratio = 1
		}
		ratios[file] = ratio
	}
	return ratios
}

// Analyze computes a ranked TDGScore per file. g and its node count
// provide the coupling factor; complexityReport and satd provide C and D;
// duplicates provides Dup.
func Analyze(c *Calculator, pc *types.ProjectContext, g *types.DependencyGraph, complexityReport types.ComplexityReport, satdItems []types.SatdItem, duplicates types.CloneReport) []types.TDGScore {
	satdByFile := make(map[string][]types.SatdItem)
	for _, it := range satdItems {
		satdByFile[it.File] = append(satdByFile[it.File], it)
	}
	complexityByFile := make(map[string]types.FileComplexity)
	for _, fc := range complexityReport.Files {
		complexityByFile[fc.File] = fc
	}
	totalLines := make(map[string]int)
	for _, fc := range pc.Files {
		totalLines[fc.Path] = fc.SourceLines
	}
	dupRatios := fileDuplicateCoverage(duplicates, totalLines)

	nodeCount := 0
	if g != nil {
		nodeCount = g.NodeCount()
	}

	scores := make([]types.TDGScore, 0, len(pc.Files))
	for _, fc := range pc.Files {
		complexity := complexityFactor(complexityByFile[fc.Path])
		churn, churnAvailable := churnFactor(c, fc.Path)

		var coupling float64
		if g != nil {
			fileNode := types.NewDagNodeID(fc.Language, fc.Path, fc.Path)
			coupling = couplingFactor(g, fileNode, nodeCount)
		}

		debt := debtFactor(satdByFile[fc.Path])
		dup := duplicateFactor(dupRatios[fc.Path])

		value := c.Weights[0]*complexity * c.Weights[1]*churn * c.Weights[2]*coupling * c.Weights[3]*debt * c.Weights[4]*dup

		scores = append(scores, types.TDGScore{
			File:  fc.Path,
			Value: value,
			Components: types.TDGComponents{
				Complexity: complexity,
				Churn:      churn,
				Coupling:   coupling,
				Debt:       debt,
				Duplicate:  dup,
			},
			Severity:       severityFor(value),
			ChurnAvailable: churnAvailable,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Value != scores[j].Value {
			return scores[i].Value > scores[j].Value
		}
		return scores[i].File < scores[j].File
	})
	return scores
}
