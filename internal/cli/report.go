package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/faultline-io/faultline/internal/analysis"
	"github.com/faultline-io/faultline/internal/prob"
)

// reportData is the deterministic part of an analysis report: everything
// except run id and wall-clock timings, so renderings are reproducible.
type reportData struct {
	Model          string                  `json:"model"`
	Approximation  string                  `json:"approximation"`
	CutSets        []analysis.CutSetResult `json:"cut_sets"`
	PTotal         float64                 `json:"p_total"`
	PRare          float64                 `json:"p_rare"`
	Importance     []importanceRow         `json:"importance,omitempty"`
	ImportancePath string                  `json:"importance_path,omitempty"`
	Warnings       []string                `json:"warnings,omitempty"`
}

// importanceRow flattens one event's factors for rendering.
type importanceRow struct {
	Event string  `json:"event"`
	MIF   float64 `json:"mif"`
	CIF   float64 `json:"cif"`
	DIF   float64 `json:"dif"`
	RAW   float64 `json:"raw"`
	RRW   float64 `json:"rrw"`
}

// buildReport assembles the report payload from a finished analysis.
func buildReport(modelName string, a *analysis.Analysis) reportData {
	rep := reportData{
		Model:          modelName,
		Approximation:  string(a.Settings().Approximation),
		CutSets:        a.McsProbability(),
		PTotal:         a.PTotal(),
		PRare:          a.PRare(),
		ImportancePath: a.ImportancePath(),
		Warnings:       a.Warnings(),
	}
	rep.Importance = importanceRows(a.Importance())
	return rep
}

// importanceRows sorts the factors by event id for stable output.
func importanceRows(imp map[string]prob.Factors) []importanceRow {
	ids := make([]string, 0, len(imp))
	for id := range imp {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([]importanceRow, len(ids))
	for i, id := range ids {
		f := imp[id]
		rows[i] = importanceRow{Event: id, MIF: f.MIF, CIF: f.CIF, DIF: f.DIF, RAW: f.RAW, RRW: f.RRW}
	}
	return rows
}

// renderReport writes the text form of a report.
func renderReport(w io.Writer, rep reportData) {
	fmt.Fprintf(w, "Model: %s\n", rep.Model)
	fmt.Fprintf(w, "Minimal cut sets (%d):\n", len(rep.CutSets))
	for i, cs := range rep.CutSets {
		fmt.Fprintf(w, "  %d. {%s}  p=%g\n", i+1, strings.Join(cs.Events, ", "), cs.Probability)
	}
	fmt.Fprintf(w, "Total probability (%s): %g\n", rep.Approximation, rep.PTotal)
	fmt.Fprintf(w, "Rare-event approximation: %g\n", rep.PRare)
	if len(rep.Importance) > 0 {
		fmt.Fprintf(w, "Importance factors (%s):\n", rep.ImportancePath)
		fmt.Fprintf(w, "  %-20s %12s %12s %12s %12s %12s\n", "event", "MIF", "CIF", "DIF", "RAW", "RRW")
		for _, row := range rep.Importance {
			fmt.Fprintf(w, "  %-20s %12.6g %12.6g %12.6g %12.6g %12.6g\n",
				row.Event, row.MIF, row.CIF, row.DIF, row.RAW, row.RRW)
		}
	}
	if len(rep.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warning := range rep.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
}
