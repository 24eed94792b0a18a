package graph

import (
	"fmt"
	"sort"

	"github.com/faultline-io/faultline/internal/model"
)

// Graph is the indexed mirror of a frozen model. It is the only mutable
// structure during analysis and is discarded when analysis completes.
type Graph struct {
	gates map[int]*Gate

	numBasic  int
	numHouse  int
	firstGate int // Lowest gate index; everything below is a leaf.
	nextIndex int // Last allocated index.

	topIndex int
	topSign  int // +1 or -1; folded polarity of the top reference.

	basicIDs    []string     // 1-based lookup: basicIDs[i-1].
	basicProbs  []float64    // Same indexing as basicIDs.
	houseStates map[int]bool // House-event index to constant state.
}

// FromModel constructs the indexed graph for a frozen model.
//
// ccfSubstitutions optionally remaps basic-event ids to formulas that
// represent their common-cause expansion; each substituted id resolves to
// a synthetic gate built from the formula instead of a leaf reference.
func FromModel(m *model.Model, ccfSubstitutions map[string]*model.Formula) (*Graph, error) {
	if !m.Frozen() {
		return nil, fmt.Errorf("graph: model %q is not frozen", m.Name())
	}
	g := &Graph{
		gates:       make(map[int]*Gate),
		topSign:     1,
		houseStates: make(map[int]bool),
	}

	idToIndex := make(map[string]int)
	for _, b := range m.BasicEvents() {
		g.numBasic++
		idToIndex[b.ID()] = g.numBasic
		g.basicIDs = append(g.basicIDs, b.ID())
		g.basicProbs = append(g.basicProbs, b.Probability())
	}
	for _, h := range m.HouseEvents() {
		g.numHouse++
		index := g.numBasic + g.numHouse
		idToIndex[h.ID()] = index
		g.houseStates[index] = h.State()
	}
	g.firstGate = g.numBasic + g.numHouse + 1

	// Model gates claim the contiguous block after the leaves so that
	// synthetic gates are recognizable by index alone.
	gates := m.Gates()
	for i, mg := range gates {
		idToIndex[mg.ID()] = g.firstGate + i
	}
	g.nextIndex = g.firstGate + len(gates) - 1

	// Substituted basic events resolve to synthetic expansion gates.
	subst := make(map[int]int)
	var substIDs []string
	for id := range ccfSubstitutions {
		substIDs = append(substIDs, id)
	}
	sort.Strings(substIDs)
	for _, id := range substIDs {
		leaf, ok := idToIndex[id]
		if !ok {
			return nil, fmt.Errorf("graph: substituted event %q is not in the model", id)
		}
		index, err := g.processFormula(ccfSubstitutions[id], idToIndex, subst)
		if err != nil {
			return nil, err
		}
		subst[leaf] = index
	}

	for i, mg := range gates {
		gate := newGate(g.firstGate+i, mg.Formula().Type)
		gate.SetVoteNumber(mg.Formula().VoteNumber)
		g.gates[gate.Index()] = gate
		if err := g.fillGate(gate, mg.Formula(), idToIndex, subst); err != nil {
			return nil, err
		}
	}

	g.topIndex = idToIndex[m.TopEvent().ID()]
	return g, nil
}

// fillGate resolves a formula's arguments into child references of gate.
func (g *Graph) fillGate(gate *Gate, f *model.Formula, idToIndex map[string]int, subst map[int]int) error {
	for _, id := range f.EventArgs {
		index, ok := idToIndex[id]
		if !ok {
			return fmt.Errorf("graph: argument %q is not indexed", id)
		}
		if replacement, ok := subst[index]; ok {
			index = replacement
		}
		gate.AddChild(index)
	}
	for _, sub := range f.FormulaArgs {
		index, err := g.processFormula(sub, idToIndex, subst)
		if err != nil {
			return err
		}
		gate.AddChild(index)
	}
	return nil
}

// processFormula materializes a nested formula as a synthetic gate and
// returns its index.
func (g *Graph) processFormula(f *model.Formula, idToIndex map[string]int, subst map[int]int) (int, error) {
	gate := newGate(g.NewIndex(), f.Type)
	gate.SetVoteNumber(f.VoteNumber)
	g.gates[gate.Index()] = gate
	if err := g.fillGate(gate, f, idToIndex, subst); err != nil {
		return 0, err
	}
	return gate.Index(), nil
}

// NewIndex reserves the next synthetic node index.
func (g *Graph) NewIndex() int {
	g.nextIndex++
	return g.nextIndex
}

// AddGate allocates and registers a fresh synthetic gate.
func (g *Graph) AddGate(typ model.GateType) *Gate {
	gate := newGate(g.NewIndex(), typ)
	g.gates[gate.Index()] = gate
	return gate
}

// Gate returns the gate at index i.
func (g *Graph) Gate(i int) (*Gate, bool) {
	gate, ok := g.gates[i]
	return gate, ok
}

// Remove discards the gate at index i.
func (g *Graph) Remove(i int) {
	delete(g.gates, i)
}

// Gates returns all gates in ascending index order.
func (g *Graph) Gates() []*Gate {
	indices := make([]int, 0, len(g.gates))
	for i := range g.gates {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	out := make([]*Gate, len(indices))
	for k, i := range indices {
		out[k] = g.gates[i]
	}
	return out
}

// NumGates returns the number of live gates.
func (g *Graph) NumGates() int { return len(g.gates) }

// TopIndex returns the index of the top gate.
func (g *Graph) TopIndex() int { return g.topIndex }

// SetTopIndex repoints the top reference.
func (g *Graph) SetTopIndex(i int) { g.topIndex = i }

// Top returns the top gate.
func (g *Graph) Top() *Gate { return g.gates[g.topIndex] }

// TopSign returns the folded polarity of the top reference, +1 or -1.
func (g *Graph) TopSign() int { return g.topSign }

// MultiplyTopSign folds a polarity flip into the top sign.
func (g *Graph) MultiplyTopSign(sign int) { g.topSign *= sign }

// NumBasic returns B, the number of basic events.
func (g *Graph) NumBasic() int { return g.numBasic }

// IsBasic reports whether |i| references a basic event.
func (g *Graph) IsBasic(i int) bool {
	if i < 0 {
		i = -i
	}
	return i >= 1 && i <= g.numBasic
}

// IsHouse reports whether |i| references a house event.
func (g *Graph) IsHouse(i int) bool {
	if i < 0 {
		i = -i
	}
	return i > g.numBasic && i < g.firstGate
}

// IsGate reports whether |i| references a gate.
func (g *Graph) IsGate(i int) bool {
	if i < 0 {
		i = -i
	}
	return i >= g.firstGate
}

// BasicID returns the model id of basic event i.
func (g *Graph) BasicID(i int) string { return g.basicIDs[i-1] }

// BasicProbability returns the frozen probability of basic event i.
func (g *Graph) BasicProbability(i int) float64 { return g.basicProbs[i-1] }

// HouseState returns the constant state of house event i.
func (g *Graph) HouseState(i int) (bool, bool) {
	state, ok := g.houseStates[i]
	return state, ok
}

// HasHouseEvents reports whether the graph references any house events.
func (g *Graph) HasHouseEvents() bool { return g.numHouse > 0 }

// ClearVisits resets traversal timestamps on every gate.
func (g *Graph) ClearVisits() {
	for _, gate := range g.gates {
		gate.ClearVisits()
	}
}

// ClearParents discards parent back-references on every gate.
func (g *Graph) ClearParents() {
	for _, gate := range g.gates {
		gate.ClearParents()
	}
}
