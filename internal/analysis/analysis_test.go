package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultline-io/faultline/internal/cutset"
	"github.com/faultline-io/faultline/internal/model"
	"github.com/faultline-io/faultline/internal/testutil"
)

// run executes an analysis under the given settings, failing the test on
// any error.
func run(t *testing.T, m *model.Model, settings Settings, opts ...Option) *Analysis {
	t.Helper()
	a, err := New(m, settings, opts...)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background()))
	return a
}

// fullSettings enables every numeric phase under the exact path.
func fullSettings() Settings {
	s := DefaultSettings()
	s.ProbabilityAnalysis = true
	s.ImportanceAnalysis = true
	return s
}

func TestAnalysis_Theatre(t *testing.T) {
	a := run(t, testutil.Theatre(t), fullSettings())

	mcs := a.MinCutSets()
	require.Len(t, mcs, 2)
	assert.ElementsMatch(t, []string{"gen_fail", "mains_fail"}, mcs[0])
	assert.ElementsMatch(t, []string{"relay_fail", "mains_fail"}, mcs[1])
	assert.InDelta(t, 0.00207, a.PTotal(), 1e-12)
	assert.InDelta(t, 0.0021, a.PRare(), 1e-12)

	imp := a.Importance()
	require.Contains(t, imp, "mains_fail")
	assert.InDelta(t, 1.0, imp["mains_fail"].DIF, 1e-9)
	assert.Equal(t, "bdd", a.ImportancePath())
}

func TestAnalysis_TwoTrain(t *testing.T) {
	a := run(t, testutil.TwoTrain(t), fullSettings())

	mcs := a.MinCutSets()
	require.Len(t, mcs, 4)
	assert.ElementsMatch(t, []string{"valveone", "valvetwo"}, mcs[0])
	assert.ElementsMatch(t, []string{"valveone", "pumptwo"}, mcs[1])
	assert.ElementsMatch(t, []string{"valvetwo", "pumpone"}, mcs[2])
	assert.ElementsMatch(t, []string{"pumpone", "pumptwo"}, mcs[3])
	assert.InDelta(t, 0.7225, a.PTotal(), 1e-12)
}

func TestAnalysis_SingleOrApproximations(t *testing.T) {
	build := func() *model.Model {
		return testutil.NewBuilder(t, "single-or").
			Basic(testutil.Event{ID: "a", P: 0.1}, testutil.Event{ID: "b", P: 0.1}).
			Top("top", testutil.Formula(model.Or, "a", "b")).
			Freeze()
	}

	exact := fullSettings()
	a := run(t, build(), exact)
	assert.InDelta(t, 0.19, a.PTotal(), 1e-12)
	assert.InDelta(t, 0.2, a.PRare(), 1e-12)

	mcub := fullSettings()
	mcub.Approximation = ApproxMCUB
	a = run(t, build(), mcub)
	assert.InDelta(t, 0.19, a.PTotal(), 1e-12)

	rare := fullSettings()
	rare.Approximation = ApproxRareEvent
	a = run(t, build(), rare)
	assert.InDelta(t, 0.2, a.PTotal(), 1e-12)
	// 0.2 > 0.1: the rare-event path flags itself.
	assert.NotEmpty(t, a.Warnings())
	assert.Equal(t, "rare-event", a.ImportancePath())
}

func TestAnalysis_ConstantPruning(t *testing.T) {
	b := testutil.NewBuilder(t, "constants").
		Basic(testutil.Event{ID: "a", P: 0.1}, testutil.Event{ID: "b", P: 0.1}).
		House("always", true).
		House("never", false)
	top := testutil.Formula(model.And, "a", "always")
	top.AddFormulaArg(testutil.Formula(model.Or, "b", "never"))
	m := b.Top("top", top).Freeze()

	a := run(t, m, fullSettings())
	mcs := a.MinCutSets()
	require.Len(t, mcs, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, mcs[0])
}

func TestAnalysis_NonCoherent(t *testing.T) {
	b := testutil.NewBuilder(t, "noncoherent").
		Basic(testutil.Event{ID: "a", P: 0.5}, testutil.Event{ID: "b", P: 0.5})
	top := testutil.Formula(model.And, "a")
	top.AddFormulaArg(testutil.Formula(model.Not, "b"))
	m := b.Top("top", top).Freeze()

	a := run(t, m, fullSettings())
	mcs := a.MinCutSets()
	require.Len(t, mcs, 1)
	assert.ElementsMatch(t, []string{"a", "not b"}, mcs[0])
	assert.InDelta(t, 0.25, a.PTotal(), 1e-12)
}

func TestAnalysis_AtleastRareEvent(t *testing.T) {
	m := testutil.NewBuilder(t, "atleast").
		Basic(
			testutil.Event{ID: "a", P: 0.1},
			testutil.Event{ID: "b", P: 0.1},
			testutil.Event{ID: "c", P: 0.1},
		).
		Top("top", testutil.Vote(2, "a", "b", "c")).
		Freeze()

	a := run(t, m, fullSettings())
	assert.Len(t, a.MinCutSets(), 3)
	assert.InDelta(t, 0.03, a.PRare(), 1e-12)
}

func TestAnalysis_ConstantFalseTop(t *testing.T) {
	m := testutil.NewBuilder(t, "null-top").
		Basic(testutil.Event{ID: "a", P: 0.1}).
		House("never", false).
		Top("top", testutil.Formula(model.And, "a", "never")).
		Freeze()

	a := run(t, m, fullSettings())
	assert.Empty(t, a.MinCutSets())
	assert.Zero(t, a.PTotal())
}

func TestAnalysis_ConstantTrueTop(t *testing.T) {
	m := testutil.NewBuilder(t, "unity-top").
		Basic(testutil.Event{ID: "a", P: 0.1}).
		House("always", true).
		Top("top", testutil.Formula(model.Or, "a", "always")).
		Freeze()

	a := run(t, m, fullSettings())
	mcs := a.MinCutSets()
	require.Len(t, mcs, 1)
	assert.Empty(t, mcs[0])
	assert.Equal(t, 1.0, a.PTotal())
}

func TestAnalysis_SingleEventTop(t *testing.T) {
	m := testutil.NewBuilder(t, "single").
		Basic(testutil.Event{ID: "a", P: 0.3}).
		Top("top", testutil.Formula(model.Null, "a")).
		Freeze()

	a := run(t, m, fullSettings())
	mcs := a.MinCutSets()
	require.Len(t, mcs, 1)
	assert.Equal(t, []string{"a"}, mcs[0])
	assert.InDelta(t, 0.3, a.PTotal(), 1e-12)
}

func TestAnalysis_Deterministic(t *testing.T) {
	a1 := run(t, testutil.TwoTrain(t), fullSettings())
	a2 := run(t, testutil.TwoTrain(t), fullSettings())

	assert.Equal(t, a1.MinCutSets(), a2.MinCutSets())
	assert.Equal(t, a1.PTotal(), a2.PTotal())
	assert.NotEqual(t, a1.ID(), a2.ID())
}

func TestAnalysis_LimitOrderDropsCutSets(t *testing.T) {
	s := fullSettings()
	s.LimitOrder = 1
	a := run(t, testutil.TwoTrain(t), s)
	assert.Empty(t, a.MinCutSets())
}

func TestAnalysis_ProductCapAborts(t *testing.T) {
	s := fullSettings()
	s.ProductCap = 2
	a, err := New(testutil.TwoTrain(t), s)
	require.NoError(t, err)

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.True(t, cutset.IsLimitError(err))
	assert.Empty(t, a.MinCutSets(), "no partial result survives an aborted run")
}

func TestAnalysis_Cancellation(t *testing.T) {
	a, err := New(testutil.TwoTrain(t), fullSettings())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, a.Run(ctx), context.Canceled)
}

func TestAnalysis_CcfSubstitution(t *testing.T) {
	b := testutil.NewBuilder(t, "ccf").
		Basic(
			testutil.Event{ID: "pump", P: 0.1},
			testutil.Event{ID: "pump_indep", P: 0.05},
			testutil.Event{ID: "pump_ccf", P: 0.01},
			testutil.Event{ID: "other", P: 0.2},
		)
	m := b.Top("top", testutil.Formula(model.And, "pump", "other")).Freeze()

	expansion := testutil.Formula(model.Or, "pump_indep", "pump_ccf")
	s := fullSettings()
	s.CcfAnalysis = true
	a := run(t, m, s, WithCcfSubstitutions(map[string]*model.Formula{"pump": expansion}))

	mcs := a.MinCutSets()
	require.Len(t, mcs, 2)
	assert.ElementsMatch(t, []string{"pump_indep", "other"}, mcs[0])
	assert.ElementsMatch(t, []string{"pump_ccf", "other"}, mcs[1])
}

func TestAnalysis_CcfIgnoredWhenDisabled(t *testing.T) {
	b := testutil.NewBuilder(t, "ccf-off").
		Basic(
			testutil.Event{ID: "pump", P: 0.1},
			testutil.Event{ID: "pump_indep", P: 0.05},
			testutil.Event{ID: "other", P: 0.2},
		)
	m := b.Top("top", testutil.Formula(model.And, "pump", "other")).Freeze()

	expansion := testutil.Formula(model.Null, "pump_indep")
	a := run(t, m, fullSettings(), WithCcfSubstitutions(map[string]*model.Formula{"pump": expansion}))

	mcs := a.MinCutSets()
	require.Len(t, mcs, 1)
	assert.ElementsMatch(t, []string{"pump", "other"}, mcs[0])
}

func TestAnalysis_TimingsRecorded(t *testing.T) {
	a := run(t, testutil.TwoTrain(t), fullSettings())
	assert.Greater(t, a.AnalysisTime().Nanoseconds(), int64(0))
	assert.GreaterOrEqual(t, a.AnalysisTime(), a.ProbAnalysisTime())
}

func TestNew_Validation(t *testing.T) {
	m := testutil.Theatre(t)

	s := DefaultSettings()
	s.LimitOrder = 0
	_, err := New(m, s)
	require.Error(t, err)

	s = DefaultSettings()
	s.Approximation = "montecarlo"
	_, err = New(m, s)
	require.Error(t, err)

	s = DefaultSettings()
	s.UncertaintyAnalysis = true
	_, err = New(m, s)
	require.Error(t, err)

	unfrozen := model.New("bare")
	_, err = New(unfrozen, DefaultSettings())
	require.Error(t, err)
}
