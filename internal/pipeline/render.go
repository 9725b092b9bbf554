package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/tdgraph/internal/errors"
	"github.com/standardbeagle/tdgraph/internal/mermaid"
	"github.com/standardbeagle/tdgraph/internal/types"
)

// Render produces the bytes and artifact-relative path for one of the
// recognised output formats: markdown, json, sarif, mermaid.
func Render(dc *types.DeepContext, format string) ([]byte, string, error) {
	switch format {
	case "markdown":
		return []byte(renderMarkdown(dc)), "report.md", nil
	case "json":
		data, err := renderJSON(dc)
		return data, "report.json", err
	case "sarif":
		data, err := renderSARIF(dc)
		return data, "report.sarif.json", err
	case "mermaid":
		return []byte(mermaid.Render(dc.Dag)), "graph.mmd", nil
	default:
		return nil, "", errors.New(errors.KindConfig, "pipeline.Render", fmt.Errorf("unrecognised output format %q", format))
	}
}

// renderJSON serializes the DeepContext with stable key ordering (Go's
// encoding/json already sorts map keys, and every slice field is already
// produced in the project's deterministic ordering by the stage that
// built it), so two runs over unchanged input order their content the
// same way. The per-run fields (Metadata.RunID, Metadata.GeneratedAt,
// Timings, CacheHitRate) still differ, so the output is not
// byte-identical between runs.
func renderJSON(dc *types.DeepContext) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(dc); err != nil {
		return nil, errors.New(errors.KindConfig, "pipeline.renderJSON", err)
	}
	return buf.Bytes(), nil
}

func renderMarkdown(dc *types.DeepContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis Report: %s\n\n", dc.Metadata.Root)
	fmt.Fprintf(&b, "Files: %d  LOC: %d  Generated: %s\n\n",
		dc.Summary.FileCount, dc.Summary.TotalLOC, dc.Metadata.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"))

	b.WriteString("## Complexity\n\n")
	fmt.Fprintf(&b, "P50 cyclomatic: %.1f  P90: %.1f  P95: %.1f\n\n", dc.Complexity.P50Cyclomatic, dc.Complexity.P90Cyclomatic, dc.Complexity.P95Cyclomatic)
	b.WriteString("| File | Functions | Max Cyclomatic | Max Cognitive |\n|---|---|---|---|\n")
	for _, f := range dc.Complexity.TopN {
		fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", f.File, f.FunctionCount, f.MaxCyclomatic, f.MaxCognitive)
	}

	b.WriteString("\n## Self-Admitted Technical Debt\n\n")
	fmt.Fprintf(&b, "Files with debt: %d  Items: %d\n\n", dc.Satd.FilesWithDebt, len(dc.Satd.Items))
	for _, cat := range sortedDebtCategories(dc.Satd.ByCategory) {
		fmt.Fprintf(&b, "- %s: %d\n", cat, dc.Satd.ByCategory[cat])
	}

	b.WriteString("\n## Dead Code\n\n")
	fmt.Fprintf(&b, "Candidates: %d\n\n", len(dc.DeadCode))
	for _, item := range dc.DeadCode {
		fmt.Fprintf(&b, "- %s:%d %s (%s, confidence %s)\n", item.File, item.Line, item.Name, item.Kind, item.Confidence)
	}

	b.WriteString("\n## Technical Debt Gradient\n\n")
	b.WriteString("| File | TDG | Severity |\n|---|---|---|\n")
	for _, score := range dc.Tdg {
		fmt.Fprintf(&b, "| %s | %.3f | %s |\n", score.File, score.Value, score.Severity)
	}

	b.WriteString("\n## Duplicates\n\n")
	fmt.Fprintf(&b, "Coverage ratio: %.3f  Groups: %d\n", dc.Duplicates.CoverageRatio, len(dc.Duplicates.Groups))

	return b.String()
}

func sortedDebtCategories(m map[types.DebtCategory]int) []types.DebtCategory {
	out := make([]types.DebtCategory, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// sarifLog is a minimal SARIF 2.1.0 document: one run with no rules list,
// whose results (each tagged with a ruleId) are dead-code candidates,
// files whose TDG severity is above Normal, and High/Critical SATD items.
// Complexity findings are not included. This is the "sarif" format of
// `analyze deep-context --format sarif`.
type sarifLog struct {
	Schema  string      `json:"$schema"`
	Version string      `json:"version"`
	Runs    []sarifRun  `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type sarifResult struct {
	RuleID  string            `json:"ruleId"`
	Level   string            `json:"level"`
	Message sarifMessage      `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

func renderSARIF(dc *types.DeepContext) ([]byte, error) {
	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{Name: "tdgraph", Version: "1.0.0"}},
		}},
	}

	for _, item := range dc.DeadCode {
		log.Runs[0].Results = append(log.Runs[0].Results, sarifResult{
			RuleID: "dead-code",
			Level:  sarifLevelFor(item.Confidence),
			Message: sarifMessage{Text: fmt.Sprintf("%s %q appears unreachable from any entry point", item.Kind, item.Name)},
			Locations: []sarifLocation{sarifLocationFor(item.File, int(item.Line))},
		})
	}
	for _, score := range dc.Tdg {
		if score.Severity == types.TDGNormal {
			continue
		}
		log.Runs[0].Results = append(log.Runs[0].Results, sarifResult{
			RuleID:  "tdg-" + strings.ToLower(string(score.Severity)),
			Level:   sarifLevelForTDG(score.Severity),
			Message: sarifMessage{Text: fmt.Sprintf("technical debt gradient %.3f", score.Value)},
			Locations: []sarifLocation{sarifLocationFor(score.File, 1)},
		})
	}
	for _, item := range dc.Satd.Items {
		if item.Severity != types.SeverityCritical && item.Severity != types.SeverityHigh {
			continue
		}
		log.Runs[0].Results = append(log.Runs[0].Results, sarifResult{
			RuleID:  "satd-" + strings.ToLower(string(item.Category)),
			Level:   sarifLevelForSeverity(item.Severity),
			Message: sarifMessage{Text: item.RawText},
			Locations: []sarifLocation{sarifLocationFor(item.File, int(item.Line))},
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(log); err != nil {
		return nil, errors.New(errors.KindConfig, "pipeline.renderSARIF", err)
	}
	return buf.Bytes(), nil
}

func sarifLocationFor(file string, line int) sarifLocation {
	if line < 1 {
		line = 1
	}
	return sarifLocation{PhysicalLocation: sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: file},
		Region:           sarifRegion{StartLine: line},
	}}
}

func sarifLevelFor(c types.Confidence) string {
	switch c {
	case types.ConfidenceHigh:
		return "error"
	case types.ConfidenceMedium:
		return "warning"
	default:
		return "note"
	}
}

func sarifLevelForTDG(s types.TDGSeverity) string {
	if s == types.TDGCritical {
		return "error"
	}
	return "warning"
}

func sarifLevelForSeverity(s types.Severity) string {
	if s == types.SeverityCritical {
		return "error"
	}
	return "warning"
}
