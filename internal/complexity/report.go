package complexity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// RenderTable writes a human-readable, column-aligned summary table.
func RenderTable(r types.ComplexityReport) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tFUNCTIONS\tTOTAL CYC\tMAX CYC\tTOTAL COG\tMAX COG\tSCORE")
	for _, f := range r.Files {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%.3f\n",
			f.File, f.FunctionCount, f.TotalCyclomatic, f.MaxCyclomatic, f.TotalCognitive, f.MaxCognitive, f.Score)
	}
	w.Flush()
	fmt.Fprintf(&buf, "\nP50/P90/P95 cyclomatic: %.1f / %.1f / %.1f\n", r.P50Cyclomatic, r.P90Cyclomatic, r.P95Cyclomatic)
	fmt.Fprintf(&buf, "P50/P90/P95 cognitive:  %.1f / %.1f / %.1f\n", r.P50Cognitive, r.P90Cognitive, r.P95Cognitive)
	return buf.String()
}

// RenderJSON marshals the report as indented JSON.
func RenderJSON(r types.ComplexityReport) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// --- SARIF --------------------------------------------------------------
//
// No third-party SARIF library appears anywhere in the example pack, so
// this hand-rolls the minimal SARIF 2.1.0 log shape over encoding/json —
// see DESIGN.md for the stdlib-only justification.

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
	Name  string `json:"name"`
	Rules []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID string `json:"id"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
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
	StartLine uint32 `json:"startLine"`
}

const (
	ruleCyclomatic = "complexity/cyclomatic-threshold"
	ruleCognitive  = "complexity/cognitive-threshold"
)

// RenderSARIF emits one result per function exceeding maxCyclomatic or
// maxCognitive, per §4.5.
func RenderSARIF(r types.ComplexityReport, maxCyclomatic, maxCognitive uint32) ([]byte, error) {
	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:  "tdgraph-complexity",
				Rules: []sarifRule{{ID: ruleCyclomatic}, {ID: ruleCognitive}},
			}},
		}},
	}

	for _, fn := range r.Hotspots {
		if fn.Cyclomatic > maxCyclomatic {
			log.Runs[0].Results = append(log.Runs[0].Results, sarifResultFor(ruleCyclomatic, fn, "cyclomatic", fn.Cyclomatic, maxCyclomatic))
		}
		if fn.Cognitive > maxCognitive {
			log.Runs[0].Results = append(log.Runs[0].Results, sarifResultFor(ruleCognitive, fn, "cognitive", fn.Cognitive, maxCognitive))
		}
	}

	return json.MarshalIndent(log, "", "  ")
}

func sarifResultFor(ruleID string, fn types.FunctionComplexity, metric string, value, threshold uint32) sarifResult {
	return sarifResult{
		RuleID: ruleID,
		Level:  "warning",
		Message: sarifMessage{
			Text: fmt.Sprintf("%s: %s complexity %d exceeds threshold %d", fn.Name, metric, value, threshold),
		},
		Locations: []sarifLocation{{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: fn.File},
				Region:           sarifRegion{StartLine: fn.Line},
			},
		}},
	}
}
