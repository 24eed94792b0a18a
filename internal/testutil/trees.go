// Package testutil provides deterministic fault-tree builders shared by
// package tests. The trees mirror the small benchmark models used across
// the test suite.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/faultline-io/faultline/internal/graph"
	"github.com/faultline-io/faultline/internal/model"
)

// Event is a basic event with a constant probability.
type Event struct {
	ID string
	P  float64
}

// Builder accumulates a model under construction, failing the test on
// any registration error.
type Builder struct {
	t *testing.T
	m *model.Model
}

// NewBuilder creates a model builder.
func NewBuilder(t *testing.T, name string) *Builder {
	t.Helper()
	return &Builder{t: t, m: model.New(name)}
}

// Basic registers basic events with constant probabilities.
func (b *Builder) Basic(events ...Event) *Builder {
	b.t.Helper()
	for _, e := range events {
		require.NoError(b.t, b.m.AddBasicEvent(model.NewBasicEvent(e.ID, model.Constant(e.P))))
	}
	return b
}

// House registers a house event.
func (b *Builder) House(id string, state bool) *Builder {
	b.t.Helper()
	require.NoError(b.t, b.m.AddHouseEvent(model.NewHouseEvent(id, state)))
	return b
}

// Gate registers a named gate.
func (b *Builder) Gate(id string, f *model.Formula) *Builder {
	b.t.Helper()
	require.NoError(b.t, b.m.AddGate(model.NewGate(id, f)))
	return b
}

// Top registers a named gate and marks it as the top event.
func (b *Builder) Top(id string, f *model.Formula) *Builder {
	b.t.Helper()
	b.Gate(id, f)
	require.NoError(b.t, b.m.SetTopEvent(id))
	return b
}

// Freeze freezes the model at unit mission time and returns it.
func (b *Builder) Freeze() *model.Model {
	b.t.Helper()
	require.NoError(b.t, b.m.Freeze(1))
	return b.m
}

// Graph freezes the model and constructs its indexed graph.
func (b *Builder) Graph() *graph.Graph {
	b.t.Helper()
	g, err := graph.FromModel(b.Freeze(), nil)
	require.NoError(b.t, err)
	return g
}

// Formula builds a formula of the given type over named arguments.
func Formula(t model.GateType, args ...string) *model.Formula {
	f := model.NewFormula(t)
	for _, a := range args {
		f.AddEventArg(a)
	}
	return f
}

// Vote builds an ATLEAST formula with the given vote number.
func Vote(k int, args ...string) *model.Formula {
	f := Formula(model.AtLeast, args...)
	f.VoteNumber = k
	return f
}

// Theatre is the OpenFTA theatre benchmark:
// top = AND(mains_fail, OR(gen_fail, relay_fail)).
func Theatre(t *testing.T) *model.Model {
	t.Helper()
	b := NewBuilder(t, "theatre")
	b.Basic(
		Event{"gen_fail", 0.02},
		Event{"relay_fail", 0.05},
		Event{"mains_fail", 0.03},
	)
	backup := Formula(model.Or, "gen_fail", "relay_fail")
	top := Formula(model.And, "mains_fail")
	top.AddFormulaArg(backup)
	b.Top("top", top)
	return b.Freeze()
}

// TwoTrain is the two-train pump/valve benchmark:
// top = AND(OR(valveone, pumpone), OR(valvetwo, pumptwo)).
func TwoTrain(t *testing.T) *model.Model {
	t.Helper()
	b := NewBuilder(t, "two-train")
	b.Basic(
		Event{"valveone", 0.5},
		Event{"valvetwo", 0.5},
		Event{"pumpone", 0.7},
		Event{"pumptwo", 0.7},
	)
	trainOne := Formula(model.Or, "valveone", "pumpone")
	trainTwo := Formula(model.Or, "valvetwo", "pumptwo")
	top := model.NewFormula(model.And)
	top.AddFormulaArg(trainOne)
	top.AddFormulaArg(trainTwo)
	b.Top("top", top)
	return b.Freeze()
}
