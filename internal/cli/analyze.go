package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faultline-io/faultline/internal/analysis"
	"github.com/faultline-io/faultline/internal/store"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	MissionTime   float64
	LimitOrder    int
	Approximation string
	Importance    bool
	DBPath        string
}

// NewAnalyzeCommand creates the analyze command: load a model, run the
// full pipeline, and report the results.
func NewAnalyzeCommand(root *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <model.yaml>",
		Short: "Analyze a fault-tree model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().Float64Var(&opts.MissionTime, "mission-time", analysis.DefaultMissionTime, "mission time in hours")
	cmd.Flags().IntVar(&opts.LimitOrder, "limit-order", analysis.DefaultLimitOrder, "maximum cut-set order")
	cmd.Flags().StringVar(&opts.Approximation, "approximation", string(analysis.ApproxExact), "p_total source (rare-event|mcub|exact)")
	cmd.Flags().BoolVar(&opts.Importance, "importance", false, "compute importance factors")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "save the result to this SQLite database")

	return cmd
}

func runAnalyze(cmd *cobra.Command, root *RootOptions, opts *AnalyzeOptions, path string) error {
	out := &OutputFormatter{Format: root.Format, Writer: cmd.OutOrStdout()}

	m, err := LoadModel(path, opts.MissionTime)
	if err != nil {
		out.Fail(err)
		return WrapExitError(ExitCommandError, "loading model", err)
	}

	settings := analysis.DefaultSettings()
	settings.MissionTime = opts.MissionTime
	settings.LimitOrder = opts.LimitOrder
	settings.Approximation = analysis.Approximation(opts.Approximation)
	settings.ProbabilityAnalysis = true
	settings.ImportanceAnalysis = opts.Importance

	a, err := analysis.New(m, settings)
	if err != nil {
		out.Fail(err)
		return WrapExitError(ExitCommandError, "configuring analysis", err)
	}
	if err := a.Run(cmd.Context()); err != nil {
		out.Fail(err)
		return WrapExitError(ExitFailure, "analysis failed", err)
	}

	rep := buildReport(m.Name(), a)
	if out.JSON() {
		payload := struct {
			ID string `json:"id"`
			reportData
			AnalysisUS int64 `json:"analysis_us"`
			ProbUS     int64 `json:"prob_us"`
			ImpUS      int64 `json:"imp_us"`
		}{
			ID:         a.ID(),
			reportData: rep,
			AnalysisUS: a.AnalysisTime().Microseconds(),
			ProbUS:     a.ProbAnalysisTime().Microseconds(),
			ImpUS:      a.ImpAnalysisTime().Microseconds(),
		}
		if err := out.OK(payload); err != nil {
			return WrapExitError(ExitCommandError, "encoding output", err)
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Analysis: %s\n", a.ID())
		renderReport(cmd.OutOrStdout(), rep)
		fmt.Fprintf(cmd.OutOrStdout(), "Analysis time: %s (probability %s, importance %s)\n",
			a.AnalysisTime(), a.ProbAnalysisTime(), a.ImpAnalysisTime())
	}

	if opts.DBPath != "" {
		if err := saveResult(cmd, opts.DBPath, m.Name(), a); err != nil {
			out.Fail(err)
			return WrapExitError(ExitCommandError, "saving result", err)
		}
	}
	return nil
}

// saveResult archives a finished analysis.
func saveResult(cmd *cobra.Command, dbPath, modelName string, a *analysis.Analysis) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	run := store.Run{
		ID:            a.ID(),
		Model:         modelName,
		LimitOrder:    a.Settings().LimitOrder,
		MissionTime:   a.Settings().MissionTime,
		Approximation: string(a.Settings().Approximation),
		PTotal:        a.PTotal(),
		PRare:         a.PRare(),
		AnalysisUS:    a.AnalysisTime().Microseconds(),
		ProbUS:        a.ProbAnalysisTime().Microseconds(),
		ImpUS:         a.ImpAnalysisTime().Microseconds(),
		Warnings:      a.Warnings(),
	}
	for i, cs := range a.McsProbability() {
		run.CutSets = append(run.CutSets, store.CutSet{
			Rank:        i,
			Events:      cs.Events,
			Probability: cs.Probability,
		})
	}
	for _, row := range importanceRows(a.Importance()) {
		run.Importance = append(run.Importance, store.Importance{
			EventID: row.Event,
			MIF:     row.MIF,
			CIF:     row.CIF,
			DIF:     row.DIF,
			RAW:     row.RAW,
			RRW:     row.RRW,
		})
	}
	return s.SaveRun(cmd.Context(), run)
}
