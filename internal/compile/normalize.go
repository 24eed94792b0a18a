package compile

import (
	"github.com/faultline-io/faultline/internal/graph"
	"github.com/faultline-io/faultline/internal/model"
)

// Normalize rewrites every gate to an AND/OR connective. Negative gate
// types fold into reference signs, XOR and ATLEAST gates expand into
// synthetic AND/OR structure, and the top event's own polarity folds into
// the graph's top sign. NOT and NULL gates survive only as single-child
// identities for the complement propagator to splice out.
func Normalize(g *graph.Graph) {
	normalizeTop(g)

	gatherParents(g, g.Top(), make(map[int]bool))
	for _, gate := range g.Gates() {
		if gate.Index() == g.TopIndex() {
			continue
		}
		absorbNegativeGate(g, gate)
	}
	g.ClearParents()

	// The gate list is snapshotted: expansion allocates new gates, and
	// those are already normal AND/OR.
	for _, gate := range g.Gates() {
		normalizeGate(g, gate)
	}
}

// normalizeTop rewrites the top gate, folding its polarity into the top
// sign. A NOT or NULL top with a gate child repoints the top reference
// and recurses, so chains of NOT collapse.
func normalizeTop(g *graph.Graph) {
	top := g.Top()
	switch top.Type() {
	case model.Nor:
		g.MultiplyTopSign(-1)
		top.SetType(model.Or)
	case model.Nand:
		g.MultiplyTopSign(-1)
		top.SetType(model.And)
	case model.Not, model.Null:
		children := top.Children()
		child := children[0]
		if g.IsGate(child) {
			if top.Type() == model.Not {
				g.MultiplyTopSign(-1)
			}
			g.Remove(top.Index())
			g.SetTopIndex(child)
			normalizeTop(g)
			return
		}
		// A leaf child: the gate becomes a single-child OR identity,
		// with the complement pushed onto the leaf reference.
		if top.Type() == model.Not {
			top.InvertChildren()
		}
		top.SetType(model.Or)
	}
}

// gatherParents populates parent back-references with one depth-first
// traversal. The information is only valid for negative-gate absorption.
func gatherParents(g *graph.Graph, gate *graph.Gate, processed map[int]bool) {
	if processed[gate.Index()] {
		return
	}
	processed[gate.Index()] = true
	for _, c := range gate.Children() {
		if !g.IsGate(c) {
			continue
		}
		child, _ := g.Gate(abs(c))
		child.AddParent(gate.Index())
		gatherParents(g, child, processed)
	}
}

// absorbNegativeGate flips the sign of every parent reference to a NOR or
// NAND gate, propagating the negation outward one level. The gate's own
// type rewrite happens in normalizeGate.
func absorbNegativeGate(g *graph.Graph, gate *graph.Gate) {
	if gate.Type() != model.Nor && gate.Type() != model.Nand {
		return
	}
	index := gate.Index()
	for _, p := range gate.Parents() {
		parent, ok := g.Gate(p)
		if !ok {
			continue
		}
		if parent.HasChild(index) {
			parent.SwapChild(index, -index)
		}
	}
}

// normalizeGate rewrites one gate into AND/OR structure.
func normalizeGate(g *graph.Graph, gate *graph.Gate) {
	switch gate.Type() {
	case model.Or, model.Nor:
		gate.SetType(model.Or) // Negation is already in the parent signs.
	case model.And, model.Nand:
		gate.SetType(model.And)
	case model.Xor:
		normalizeXor(g, gate)
	case model.AtLeast:
		normalizeAtleast(g, gate)
	default:
		// NOT and NULL wait for the complement propagator.
	}
}

// normalizeXor rewrites XOR(a, b) as OR(AND(a, -b), AND(-a, b)).
func normalizeXor(g *graph.Graph, gate *graph.Gate) {
	children := gate.Children()
	a, b := children[0], children[1]

	gateOne := g.AddGate(model.And)
	gateOne.AddChild(a)
	gateOne.AddChild(-b)
	gateTwo := g.AddGate(model.And)
	gateTwo.AddChild(-a)
	gateTwo.AddChild(b)

	gate.SetType(model.Or)
	gate.EraseAllChildren()
	gate.AddChild(gateOne.Index())
	gate.AddChild(gateTwo.Index())
}

// normalizeAtleast rewrites ATLEAST(k; c1..cn) as the OR over all
// k-subsets of AND(subset). Subsets are generated in lexicographic order
// on the sorted children, so expansion is deterministic.
//
// k >= n collapses to a plain AND and k == 1 to a plain OR; k < 1 or
// k > n is a model error rejected before indexing.
func normalizeAtleast(g *graph.Graph, gate *graph.Gate) {
	k := gate.VoteNumber()
	children := gate.Children()
	n := len(children)

	if k >= n {
		gate.SetType(model.And)
		return
	}
	if k == 1 {
		gate.SetType(model.Or)
		return
	}

	gate.SetType(model.Or)
	gate.EraseAllChildren()
	forEachSubset(children, k, func(subset []int) {
		and := g.AddGate(model.And)
		for _, c := range subset {
			and.AddChild(c)
		}
		gate.AddChild(and.Index())
	})
}

// forEachSubset calls fn with every k-subset of items in lexicographic
// order. The slice passed to fn is reused between calls.
func forEachSubset(items []int, k int, fn func([]int)) {
	subset := make([]int, k)
	var recurse func(start, depth int)
	recurse = func(start, depth int) {
		if depth == k {
			fn(subset)
			return
		}
		for i := start; i <= len(items)-(k-depth); i++ {
			subset[depth] = items[i]
			recurse(i+1, depth+1)
		}
	}
	recurse(0, 0)
}

// abs returns the node index behind a signed reference.
func abs(c int) int {
	if c < 0 {
		return -c
	}
	return c
}
