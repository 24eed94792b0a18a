package graph

import (
	"sort"

	"github.com/faultline-io/faultline/internal/model"
)

// State marks a gate that has collapsed to a constant during rewriting.
type State int

const (
	// Normal is a live gate.
	Normal State = iota
	// NullState is a gate that is constant false.
	NullState
	// UnityState is a gate that is constant true.
	UnityState
)

// Gate is one indexed node of the graph: a typed connective over a set of
// signed child references.
//
// Children are a set. Duplicates are meaningless for AND/OR/XOR, and
// ATLEAST also uses set semantics after indexing. Mutators that would
// put both +i and -i into the set short-circuit the gate to a constant
// instead (false for AND, true for OR).
type Gate struct {
	index    int
	typ      model.GateType
	vote     int
	state    State
	children map[int]struct{}
	parents  map[int]struct{}

	// DFS timestamps for module detection.
	enterTime int
	exitTime  int
	lastVisit int
}

// newGate creates a live gate with no children.
func newGate(index int, typ model.GateType) *Gate {
	return &Gate{
		index:    index,
		typ:      typ,
		children: make(map[int]struct{}),
		parents:  make(map[int]struct{}),
	}
}

// Index returns the node index of the gate.
func (g *Gate) Index() int { return g.index }

// Type returns the logical connective.
func (g *Gate) Type() model.GateType { return g.typ }

// SetType changes the logical connective.
func (g *Gate) SetType(t model.GateType) { g.typ = t }

// VoteNumber returns the ATLEAST vote number.
func (g *Gate) VoteNumber() int { return g.vote }

// SetVoteNumber sets the ATLEAST vote number.
func (g *Gate) SetVoteNumber(k int) { g.vote = k }

// State returns the constant state of the gate.
func (g *Gate) State() State { return g.state }

// Children returns the signed child references in ascending order.
func (g *Gate) Children() []int {
	out := make([]int, 0, len(g.children))
	for c := range g.children {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// NumChildren returns the size of the child set.
func (g *Gate) NumChildren() int { return len(g.children) }

// HasChild reports whether the signed reference c is in the child set.
func (g *Gate) HasChild(c int) bool {
	_, ok := g.children[c]
	return ok
}

// AddChild inserts a signed child reference. Inserting the complement of
// an existing child short-circuits the gate and returns false. Inserting
// an existing child is a no-op.
func (g *Gate) AddChild(c int) bool {
	if _, ok := g.children[-c]; ok {
		g.shortCircuit()
		return false
	}
	g.children[c] = struct{}{}
	return true
}

// EraseChild removes a signed child reference.
func (g *Gate) EraseChild(c int) {
	delete(g.children, c)
}

// EraseAllChildren empties the child set.
func (g *Gate) EraseAllChildren() {
	g.children = make(map[int]struct{})
}

// SwapChild replaces the reference old with new.
//
// Set semantics are preserved: if new is already a child, nothing changes
// and SwapChild returns false; the caller recovers, typically by erasing
// old. If -new is a child, old is erased, the gate short-circuits, and
// SwapChild also returns false; callers distinguish the two outcomes by
// checking State.
func (g *Gate) SwapChild(old, new int) bool {
	if _, ok := g.children[new]; ok {
		return false
	}
	delete(g.children, old)
	return g.AddChild(new)
}

// InvertChildren flips the sign of every child reference.
func (g *Gate) InvertChildren() {
	inverted := make(map[int]struct{}, len(g.children))
	for c := range g.children {
		inverted[-c] = struct{}{}
	}
	g.children = inverted
}

// MergeFrom inlines the children of child into g and drops the reference
// childRef. If inlining would produce both +i and -i in g, the gate
// short-circuits and MergeFrom returns false.
func (g *Gate) MergeFrom(child *Gate, childRef int) bool {
	delete(g.children, childRef)
	for c := range child.children {
		if !g.AddChild(c) {
			return false
		}
	}
	return true
}

// shortCircuit collapses the gate to the constant absorbed by its type:
// false for AND, true for OR.
func (g *Gate) shortCircuit() {
	if g.typ == model.And {
		g.Nullify()
	} else {
		g.MakeUnity()
	}
}

// Nullify makes the gate constant false and discards its children.
func (g *Gate) Nullify() {
	g.state = NullState
	g.EraseAllChildren()
}

// MakeUnity makes the gate constant true and discards its children.
func (g *Gate) MakeUnity() {
	g.state = UnityState
	g.EraseAllChildren()
}

// AddParent records a parent back-reference.
func (g *Gate) AddParent(index int) {
	g.parents[index] = struct{}{}
}

// Parents returns the parent indices in ascending order.
func (g *Gate) Parents() []int {
	out := make([]int, 0, len(g.parents))
	for p := range g.parents {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// ClearParents discards parent back-references. Parent information is
// only valid for the pass that gathered it.
func (g *Gate) ClearParents() {
	g.parents = make(map[int]struct{})
}

// Visit stamps the gate with a traversal time. The first call records the
// entry time, the second the exit time. Further calls record the last
// revisit and return true.
func (g *Gate) Visit(time int) bool {
	switch {
	case g.enterTime == 0:
		g.enterTime = time
	case g.exitTime == 0:
		g.exitTime = time
	default:
		g.lastVisit = time
		return true
	}
	return false
}

// EnterTime returns the DFS entry timestamp.
func (g *Gate) EnterTime() int { return g.enterTime }

// ExitTime returns the DFS exit timestamp.
func (g *Gate) ExitTime() int { return g.exitTime }

// LastVisit returns the latest revisit timestamp, or zero.
func (g *Gate) LastVisit() int { return g.lastVisit }

// Revisited reports whether the gate was reached more than once.
func (g *Gate) Revisited() bool { return g.lastVisit != 0 }

// ClearVisits resets all traversal timestamps.
func (g *Gate) ClearVisits() {
	g.enterTime, g.exitTime, g.lastVisit = 0, 0, 0
}
