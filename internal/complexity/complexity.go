// Package complexity implements the Complexity Analyzer (C5): it
// aggregates the per-function cyclomatic/cognitive metrics every parser
// strategy already emits into per-file and per-project rollups, including
// percentile statistics and a ranked hotspot list.
//
// Grounded on panbanda-omen's analyzer stack, which already depends on
// gonum.org/v1/gonum for exactly this kind of descriptive statistic —
// percentile computation here uses gonum.org/v1/gonum/stat.Quantile
// rather than a hand-rolled nearest-rank implementation.
package complexity

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/standardbeagle/tdgraph/internal/ranking"
	"github.com/standardbeagle/tdgraph/internal/types"
)

// compositeWeights are the §4.5 top-N composite score coefficients:
// 0.4*cyclomatic + 0.4*cognitive + 0.2*fn_count, each normalised by its
// project-wide maximum before weighting.
const (
	cyclomaticWeight = 0.4
	cognitiveWeight  = 0.4
	fnCountWeight    = 0.2
)

// Analyze builds a project-wide ComplexityReport from pc. Missing metrics
// (a file with no functions) contribute zero rather than an error — §4.5's
// "never errors" failure semantics.
func Analyze(pc *types.ProjectContext, topN int) types.ComplexityReport {
	var hotspots []types.FunctionComplexity
	files := make([]types.FileComplexity, 0, len(pc.Files))
	var allCyclomatic, allCognitive []float64

	for _, fc := range pc.Files {
		fileStat := types.FileComplexity{File: fc.Path}
		for _, fn := range fc.Functions() {
			fileStat.FunctionCount++
			fileStat.TotalCyclomatic += fn.Cyclomatic
			fileStat.TotalCognitive += fn.Cognitive
			if fn.Cyclomatic > fileStat.MaxCyclomatic {
				fileStat.MaxCyclomatic = fn.Cyclomatic
			}
			if fn.Cognitive > fileStat.MaxCognitive {
				fileStat.MaxCognitive = fn.Cognitive
			}
			hotspots = append(hotspots, types.FunctionComplexity{
				File: fc.Path, Name: fn.Name, Line: fn.Line,
				Cyclomatic: fn.Cyclomatic, Cognitive: fn.Cognitive,
			})
			allCyclomatic = append(allCyclomatic, float64(fn.Cyclomatic))
			allCognitive = append(allCognitive, float64(fn.Cognitive))
		}
		files = append(files, fileStat)
	}

	maxCyclomatic, maxCognitive, maxFnCount := maxTotals(files)
	for i := range files {
		files[i].Score = compositeScore(files[i], maxCyclomatic, maxCognitive, maxFnCount)
	}

	sort.Slice(hotspots, func(i, j int) bool {
		si := hotspots[i].Cyclomatic + hotspots[i].Cognitive
		sj := hotspots[j].Cyclomatic + hotspots[j].Cognitive
		if si != sj {
			return si > sj
		}
		if hotspots[i].File != hotspots[j].File {
			return hotspots[i].File < hotspots[j].File
		}
		return hotspots[i].Line < hotspots[j].Line
	})

	report := types.ComplexityReport{
		Files:    files,
		Hotspots: hotspots,
	}
	report.P50Cyclomatic, report.P90Cyclomatic, report.P95Cyclomatic = percentiles(allCyclomatic)
	report.P50Cognitive, report.P90Cognitive, report.P95Cognitive = percentiles(allCognitive)
	report.TopN = ranking.TopK(files,
		func(f types.FileComplexity) float64 { return f.Score },
		func(f types.FileComplexity) string { return f.File },
		topN)
	return report
}

func maxTotals(files []types.FileComplexity) (maxCyclomatic, maxCognitive float64, maxFnCount int) {
	for _, f := range files {
		if float64(f.TotalCyclomatic) > maxCyclomatic {
			maxCyclomatic = float64(f.TotalCyclomatic)
		}
		if float64(f.TotalCognitive) > maxCognitive {
			maxCognitive = float64(f.TotalCognitive)
		}
		if f.FunctionCount > maxFnCount {
			maxFnCount = f.FunctionCount
		}
	}
	return
}

func compositeScore(f types.FileComplexity, maxCyclomatic, maxCognitive float64, maxFnCount int) float64 {
	norm := func(v, max float64) float64 {
		if max <= 0 {
			return 0
		}
		return v / max
	}
	return cyclomaticWeight*norm(float64(f.TotalCyclomatic), maxCyclomatic) +
		cognitiveWeight*norm(float64(f.TotalCognitive), maxCognitive) +
		fnCountWeight*norm(float64(f.FunctionCount), float64(maxFnCount))
}

// percentiles returns the P50/P90/P95 of values using gonum's empirical
// quantile (stat.Empirical), which returns a sample value and does not
// interpolate. gonum requires the sample pre-sorted ascending.
func percentiles(values []float64) (p50, p90, p95 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(0.50, stat.Empirical, sorted, nil),
		stat.Quantile(0.90, stat.Empirical, sorted, nil),
		stat.Quantile(0.95, stat.Empirical, sorted, nil)
}
