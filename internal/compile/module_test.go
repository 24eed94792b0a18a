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

func TestDetectModules_IndependentTrains(t *testing.T) {
	g, err := graph.FromModel(testutil.TwoTrain(t), nil)
	require.NoError(t, err)

	result, err := Process(context.Background(), g)
	require.NoError(t, err)

	// Both trains have private leaves, so each OR is a module, and so is
	// the top itself.
	assert.True(t, result.Modules[g.TopIndex()])
	for _, c := range g.Top().Children() {
		assert.True(t, result.Modules[c], "child %d should be a module", c)
	}
}

func TestDetectModules_SharedLeafBreaksModularity(t *testing.T) {
	// top = OR(AND(a, shared), AND(b, shared)): neither AND is a module
	// because shared is visited under both.
	b := testutil.NewBuilder(t, "shared").
		Basic(
			testutil.Event{ID: "a", P: 0.1},
			testutil.Event{ID: "b", P: 0.1},
			testutil.Event{ID: "shared", P: 0.1},
		)
	top := model.NewFormula(model.Or)
	top.AddFormulaArg(testutil.Formula(model.And, "a", "shared"))
	top.AddFormulaArg(testutil.Formula(model.And, "b", "shared"))
	g := b.Top("top", top).Graph()

	result, err := Process(context.Background(), g)
	require.NoError(t, err)

	children := g.Top().Children()
	require.Len(t, children, 2)
	for _, c := range children {
		assert.False(t, result.Modules[c], "gate %d shares a leaf and cannot be a module", c)
	}
	// Every leaf is still reachable only under the top, so the top is.
	assert.True(t, result.Modules[g.TopIndex()])
}

func TestDetectModules_ExtractsNonSharedGroup(t *testing.T) {
	// top = OR(a, b, AND(shared, c), AND(shared, d)): a and b are
	// non-shared children and get pulled into a synthetic module; the
	// two AND gates share a leaf only with each other, so they group
	// into a second synthetic module.
	b := testutil.NewBuilder(t, "extract").
		Basic(
			testutil.Event{ID: "a", P: 0.1},
			testutil.Event{ID: "b", P: 0.1},
			testutil.Event{ID: "shared", P: 0.1},
			testutil.Event{ID: "c", P: 0.1},
			testutil.Event{ID: "d", P: 0.1},
		)
	top := testutil.Formula(model.Or, "a", "b")
	top.AddFormulaArg(testutil.Formula(model.And, "shared", "c"))
	top.AddFormulaArg(testutil.Formula(model.And, "shared", "d"))
	g := b.Top("top", top).Graph()

	result, err := Process(context.Background(), g)
	require.NoError(t, err)

	children := g.Top().Children()
	require.Len(t, children, 2)

	var leafModule, gateModule *graph.Gate
	for _, c := range children {
		gate, ok := g.Gate(c)
		require.True(t, ok)
		require.True(t, result.Modules[c], "extracted gate %d should be a module", c)
		require.Equal(t, model.Or, gate.Type())
		if gate.HasChild(1) {
			leafModule = gate
		} else {
			gateModule = gate
		}
	}
	require.NotNil(t, leafModule)
	require.NotNil(t, gateModule)
	assert.Equal(t, []int{1, 2}, leafModule.Children())
	assert.Equal(t, []int{7, 8}, gateModule.Children())
}

func TestDetectModules_SingleGateTree(t *testing.T) {
	g, err := graph.FromModel(testutil.Theatre(t), nil)
	require.NoError(t, err)

	result, err := Process(context.Background(), g)
	require.NoError(t, err)

	// Theatre has no shared events: both gates are modules.
	assert.True(t, result.Modules[g.TopIndex()])
	for _, c := range g.Top().Children() {
		if g.IsGate(c) {
			assert.True(t, result.Modules[c], "gate %d should be a module", c)
		}
	}
}
