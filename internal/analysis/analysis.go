// Package analysis orchestrates the fault-tree pipeline: indexing,
// rewriting, cut-set enumeration, and the probability and importance
// phases, with wall-clock accounting and warning collection.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/faultline-io/faultline/internal/bdd"
	"github.com/faultline-io/faultline/internal/compile"
	"github.com/faultline-io/faultline/internal/cutset"
	"github.com/faultline-io/faultline/internal/graph"
	"github.com/faultline-io/faultline/internal/model"
	"github.com/faultline-io/faultline/internal/prob"
)

// probEpsilon tolerates floating-point drift before a probability
// outside [0, 1] becomes a warning.
const probEpsilon = 1e-9

// CutSetResult pairs one minimal cut set, as event ids, with its
// probability. Complemented events carry a "not " prefix.
type CutSetResult struct {
	Events      []string
	Probability float64
}

// Option configures an Analysis beyond its settings bundle.
type Option func(*Analysis)

// WithCcfSubstitutions remaps basic events to their common-cause
// expansion formulas during indexing. Only consulted when the settings
// enable CCF analysis.
func WithCcfSubstitutions(subs map[string]*model.Formula) Option {
	return func(a *Analysis) {
		a.ccfSubstitutions = subs
	}
}

// Analysis runs the full pipeline for one frozen model and settings
// bundle and holds the results for the reporter. An Analysis is used
// once; Run must be called exactly one time.
type Analysis struct {
	id       string
	model    *model.Model
	settings Settings

	ccfSubstitutions map[string]*model.Formula

	mcs        []CutSetResult
	diagram    *bdd.BDD
	pTotal     float64
	pRare      float64
	importance map[string]prob.Factors
	impPath    string
	warnings   []string

	analysisTime time.Duration
	probTime     time.Duration
	impTime      time.Duration
}

// New creates an analysis for a frozen model. The settings are
// validated eagerly; the model must already be frozen at the settings'
// mission time.
func New(m *model.Model, settings Settings, opts ...Option) (*Analysis, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if !m.Frozen() {
		return nil, fmt.Errorf("analysis: model %q is not frozen", m.Name())
	}
	a := &Analysis{
		id:       uuid.NewString(),
		model:    m,
		settings: settings,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// ID returns the unique identifier of this analysis run.
func (a *Analysis) ID() string { return a.id }

// Settings returns the settings bundle the analysis runs under.
func (a *Analysis) Settings() Settings { return a.settings }

// Run executes the pipeline. Cancellation is honored at phase
// boundaries. A LogicError or LimitError aborts with no partial result.
func (a *Analysis) Run(ctx context.Context) error {
	start := time.Now()
	defer func() { a.analysisTime = time.Since(start) }()

	slog.Debug("indexing fault tree", "analysis", a.id, "model", a.model.Name())
	var subs map[string]*model.Formula
	if a.settings.CcfAnalysis {
		subs = a.ccfSubstitutions
	}
	g, err := graph.FromModel(a.model, subs)
	if err != nil {
		return err
	}

	result, err := compile.Process(ctx, g)
	if err != nil {
		return err
	}

	mcs, err := cutset.Enumerate(g, result.TopState, cutset.Options{
		Order:    a.settings.LimitOrder,
		Products: a.settings.ProductCap,
	})
	if err != nil {
		return err
	}
	slog.Debug("cut sets enumerated", "analysis", a.id, "count", len(mcs))
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mcs = make([]CutSetResult, len(mcs))
	for i, cs := range mcs {
		a.mcs[i] = CutSetResult{
			Events:      literalsToIDs(g, cs),
			Probability: prob.CutSetProbability(g, cs),
		}
	}

	if a.settings.ProbabilityAnalysis {
		a.runProbability(g, result.TopState, mcs)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.settings.ImportanceAnalysis {
		a.runImportance(g, result.TopState, mcs)
	}
	return ctx.Err()
}

// runProbability computes p_rare and the configured p_total.
func (a *Analysis) runProbability(g *graph.Graph, topState graph.State, mcs []cutset.CutSet) {
	start := time.Now()
	defer func() { a.probTime = time.Since(start) }()

	a.pRare = prob.RareEvent(g, mcs)
	if a.pRare > 1 {
		a.warn("rare-event sum exceeds 1; the approximation is unsound for this model")
	}

	switch a.settings.Approximation {
	case ApproxRareEvent:
		a.pTotal = a.pRare
		if a.pRare > 0.1 {
			a.warn("rare-event approximation exceeds 0.1; result unreliable")
		}
	case ApproxMCUB:
		a.pTotal = prob.MCUB(g, mcs)
	case ApproxExact:
		a.diagram = bdd.FromGraph(g, topState)
		a.pTotal = a.diagram.Probability()
		if a.pTotal < -probEpsilon || a.pTotal > 1+probEpsilon {
			a.warn(fmt.Sprintf("exact probability %g is outside [0, 1]", a.pTotal))
		}
		a.pTotal = math.Min(1, math.Max(0, a.pTotal))
	}
	slog.Debug("probability analysis done",
		"analysis", a.id, "p_total", a.pTotal, "p_rare", a.pRare)
}

// runImportance computes the five factors per basic event in the cut
// sets. The diagram path is authoritative whenever exact probability is
// configured; otherwise the rare-event formulas stand in, and the chosen
// path is recorded for the report.
func (a *Analysis) runImportance(g *graph.Graph, topState graph.State, mcs []cutset.CutSet) {
	start := time.Now()
	defer func() { a.impTime = time.Since(start) }()

	events := prob.EventsInCutSets(mcs)
	var byIndex map[int]prob.Factors
	if a.settings.Approximation == ApproxExact {
		diagram := a.diagram // Built by the probability phase, if it ran.
		if diagram == nil {
			diagram = bdd.FromGraph(g, topState)
		}
		byIndex = prob.ImportanceBDD(diagram, g, events, diagram.Probability())
		a.impPath = "bdd"
	} else {
		pTotal := a.pTotal
		if !a.settings.ProbabilityAnalysis {
			pTotal = prob.RareEvent(g, mcs)
		}
		byIndex = prob.ImportanceRare(g, mcs, events, pTotal)
		a.impPath = "rare-event"
	}

	a.importance = make(map[string]prob.Factors, len(byIndex))
	for index, factors := range byIndex {
		a.importance[g.BasicID(index)] = factors
	}
	slog.Debug("importance analysis done",
		"analysis", a.id, "events", len(a.importance), "path", a.impPath)
}

func (a *Analysis) warn(msg string) {
	a.warnings = append(a.warnings, msg)
}

// literalsToIDs renders signed literals as event ids, complements with a
// "not " prefix.
func literalsToIDs(g *graph.Graph, cs cutset.CutSet) []string {
	out := make([]string, len(cs))
	for i, lit := range cs {
		if lit > 0 {
			out[i] = g.BasicID(lit)
		} else {
			out[i] = "not " + g.BasicID(-lit)
		}
	}
	return out
}

// MinCutSets returns the minimal cut sets as sets of event ids, ordered
// by (size, index) for reproducibility.
func (a *Analysis) MinCutSets() [][]string {
	out := make([][]string, len(a.mcs))
	for i, cs := range a.mcs {
		out[i] = cs.Events
	}
	return out
}

// McsProbability returns each minimal cut set with its probability.
func (a *Analysis) McsProbability() []CutSetResult { return a.mcs }

// PTotal returns the total probability from the configured source.
func (a *Analysis) PTotal() float64 { return a.pTotal }

// PRare returns the rare-event approximation.
func (a *Analysis) PRare() float64 { return a.pRare }

// Importance returns the factors per basic-event id.
func (a *Analysis) Importance() map[string]prob.Factors { return a.importance }

// ImportancePath names the formula path importance used: "bdd" or
// "rare-event".
func (a *Analysis) ImportancePath() string { return a.impPath }

// Warnings returns the non-fatal notes collected during the run.
func (a *Analysis) Warnings() []string { return a.warnings }

// AnalysisTime returns the wall-clock span of the whole run.
func (a *Analysis) AnalysisTime() time.Duration { return a.analysisTime }

// ProbAnalysisTime returns the span of the probability phase.
func (a *Analysis) ProbAnalysisTime() time.Duration { return a.probTime }

// ImpAnalysisTime returns the span of the importance phase.
func (a *Analysis) ImpAnalysisTime() time.Duration { return a.impTime }
