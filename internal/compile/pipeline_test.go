package compile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultline-io/faultline/internal/graph"
	"github.com/faultline-io/faultline/internal/model"
	"github.com/faultline-io/faultline/internal/testutil"
)

func TestProcess_ConstantPruning(t *testing.T) {
	// top = AND(a, TRUE, OR(b, FALSE)) simplifies to AND(a, b).
	b := testutil.NewBuilder(t, "constants").
		Basic(testutil.Event{ID: "a", P: 0.1}, testutil.Event{ID: "b", P: 0.1}).
		House("always", true).
		House("never", false)
	top := testutil.Formula(model.And, "a", "always")
	top.AddFormulaArg(testutil.Formula(model.Or, "b", "never"))
	g := b.Top("top", top).Graph()

	result, err := Process(context.Background(), g)
	require.NoError(t, err)

	assert.Equal(t, graph.Normal, result.TopState)
	assert.Equal(t, model.And, g.Top().Type())
	assert.Equal(t, []int{1, 2}, g.Top().Children())
}

func TestProcess_TopCollapsesToFalse(t *testing.T) {
	// top = AND(a, FALSE) is constant false.
	b := testutil.NewBuilder(t, "null-top").
		Basic(testutil.Event{ID: "a", P: 0.1}).
		House("never", false)
	g := b.Top("top", testutil.Formula(model.And, "a", "never")).Graph()

	result, err := Process(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, graph.NullState, result.TopState)
	assert.Empty(t, result.Modules)
}

func TestProcess_TopCollapsesToTrue(t *testing.T) {
	// top = OR(a, TRUE) is constant true.
	b := testutil.NewBuilder(t, "unity-top").
		Basic(testutil.Event{ID: "a", P: 0.1}).
		House("always", true)
	g := b.Top("top", testutil.Formula(model.Or, "a", "always")).Graph()

	result, err := Process(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, graph.UnityState, result.TopState)
}

func TestProcess_ComplementsReachLeavesOnly(t *testing.T) {
	// top = AND(a, NOT(OR(b, c))): after processing, every gate
	// reference is positive and complements sit on leaves.
	b := testutil.NewBuilder(t, "noncoherent").
		Basic(
			testutil.Event{ID: "a", P: 0.5},
			testutil.Event{ID: "b", P: 0.5},
			testutil.Event{ID: "c", P: 0.5},
		)
	not := model.NewFormula(model.Not)
	not.AddFormulaArg(testutil.Formula(model.Or, "b", "c"))
	top := testutil.Formula(model.And, "a")
	top.AddFormulaArg(not)
	g := b.Top("top", top).Graph()

	result, err := Process(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, graph.Normal, result.TopState)

	// NOT(OR(b, c)) became AND(-b, -c) and coalesced into the top.
	assert.Equal(t, model.And, g.Top().Type())
	assert.Equal(t, []int{-3, -2, 1}, g.Top().Children())
}

func TestProcess_NegativeTopSignFolds(t *testing.T) {
	g := testutil.NewBuilder(t, "nor-top").
		Basic(testutil.Event{ID: "a", P: 0.1}, testutil.Event{ID: "b", P: 0.1}).
		Top("top", testutil.Formula(model.Nor, "a", "b")).
		Graph()

	result, err := Process(context.Background(), g)
	require.NoError(t, err)

	assert.Equal(t, graph.Normal, result.TopState)
	assert.Equal(t, 1, g.TopSign())
	assert.Equal(t, model.And, g.Top().Type())
	assert.Equal(t, []int{-2, -1}, g.Top().Children())
}

func TestProcess_NegativeTopSignOverConstantTop(t *testing.T) {
	// top = NOR(a, TRUE): the OR under the folded sign collapses to
	// unity, and the sign fold must flip the constant, not the
	// children. NOR(a, TRUE) is constant false.
	b := testutil.NewBuilder(t, "nor-constant").
		Basic(testutil.Event{ID: "a", P: 0.1}).
		House("always", true)
	g := b.Top("top", testutil.Formula(model.Nor, "a", "always")).Graph()

	result, err := Process(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, graph.NullState, result.TopState)
	assert.Equal(t, 1, g.TopSign())

	// Dually, NAND(a, FALSE) is constant true.
	b2 := testutil.NewBuilder(t, "nand-constant").
		Basic(testutil.Event{ID: "a", P: 0.1}).
		House("never", false)
	g2 := b2.Top("top", testutil.Formula(model.Nand, "a", "never")).Graph()

	result2, err := Process(context.Background(), g2)
	require.NoError(t, err)
	assert.Equal(t, graph.UnityState, result2.TopState)
}

func TestProcess_NotOverTrueHouse(t *testing.T) {
	// top = NOT(TRUE) is constant false; the complement lands on the
	// leaf before constant propagation sees it.
	b := testutil.NewBuilder(t, "not-house").
		House("always", true)
	g := b.Top("top", testutil.Formula(model.Not, "always")).Graph()

	result, err := Process(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, graph.NullState, result.TopState)
}

func TestProcess_NandOverTrueHouseKeepsComplement(t *testing.T) {
	// top = NAND(a, TRUE) = NOT(a): one complemented leaf survives.
	b := testutil.NewBuilder(t, "nand-not").
		Basic(testutil.Event{ID: "a", P: 0.1}).
		House("always", true)
	g := b.Top("top", testutil.Formula(model.Nand, "a", "always")).Graph()

	result, err := Process(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, graph.Normal, result.TopState)
	assert.Equal(t, model.Or, g.Top().Type())
	assert.Equal(t, []int{-1}, g.Top().Children())
}

func TestProcess_CoalescesSameTypeChains(t *testing.T) {
	// OR(a, OR(b, OR(c, d))) flattens into one OR.
	b := testutil.NewBuilder(t, "chain").
		Basic(
			testutil.Event{ID: "a", P: 0.1},
			testutil.Event{ID: "b", P: 0.1},
			testutil.Event{ID: "c", P: 0.1},
			testutil.Event{ID: "d", P: 0.1},
		)
	inner := testutil.Formula(model.Or, "c", "d")
	mid := testutil.Formula(model.Or, "b")
	mid.AddFormulaArg(inner)
	top := testutil.Formula(model.Or, "a")
	top.AddFormulaArg(mid)
	g := b.Top("top", top).Graph()

	_, err := Process(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, g.Top().Children())
}

func TestProcess_Idempotent(t *testing.T) {
	g, err := graph.FromModel(testutil.TwoTrain(t), nil)
	require.NoError(t, err)

	_, err = Process(context.Background(), g)
	require.NoError(t, err)
	before := snapshot(g)

	// A second run over the already-simplified graph changes nothing.
	_, err = Process(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, before, snapshot(g))
}

func TestProcess_Cancellation(t *testing.T) {
	g, err := graph.FromModel(testutil.TwoTrain(t), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Process(ctx, g)
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcess_SingleEventTop(t *testing.T) {
	b := testutil.NewBuilder(t, "single").
		Basic(testutil.Event{ID: "a", P: 0.3})
	g := b.Top("top", testutil.Formula(model.Null, "a")).Graph()

	result, err := Process(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, graph.Normal, result.TopState)
	assert.Equal(t, []int{1}, g.Top().Children())
}
