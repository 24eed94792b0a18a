package compile

import (
	"github.com/faultline-io/faultline/internal/graph"
	"github.com/faultline-io/faultline/internal/model"
)

// PropagateConstants prunes house events and constant subgates from the
// graph. A false child erases from an OR and nullifies an AND; a true
// child erases from an AND and turns an OR into unity. A gate left with
// no children becomes null (OR) or unity (AND).
func PropagateConstants(g *graph.Graph) {
	if !g.HasHouseEvents() {
		return // Nothing to prune without constants.
	}
	propagateConstants(g, g.Top(), make(map[int]bool))
}

func propagateConstants(g *graph.Graph, gate *graph.Gate, processed map[int]bool) {
	if processed[gate.Index()] {
		return
	}
	processed[gate.Index()] = true

	var toErase []int
	for _, c := range gate.Children() {
		var state bool
		if g.IsGate(c) {
			child, _ := g.Gate(abs(c))
			propagateConstants(g, child, processed)
			switch child.State() {
			case graph.Normal:
				continue
			case graph.NullState:
				state = false
			case graph.UnityState:
				state = true
			}
		} else if g.IsHouse(c) {
			state, _ = g.HouseState(abs(c))
		} else {
			continue // Basic events carry no constant value.
		}
		if c < 0 {
			state = !state
		}
		if processConstantChild(gate, c, state, &toErase) {
			return // The gate itself collapsed to a constant.
		}
	}
	removeChildren(gate, toErase)
}

// processConstantChild applies the absorption table for one constant
// child. It returns true when the parent collapsed to a constant, false
// when the child was queued for erasure.
func processConstantChild(gate *graph.Gate, child int, state bool, toErase *[]int) bool {
	switch t := gate.Type(); {
	case !state && t == model.Or:
		*toErase = append(*toErase, child)
		return false
	case !state && (t == model.And || t == model.Null):
		gate.Nullify()
	case !state && t == model.Not:
		gate.MakeUnity()
	case state && t == model.Or:
		gate.MakeUnity()
	case state && (t == model.And || t == model.Null):
		*toErase = append(*toErase, child)
		return false
	case state && t == model.Not:
		gate.Nullify()
	}
	return true
}

// removeChildren erases the queued references and collapses a gate that
// ran out of children: an empty OR is null, an empty AND is unity.
func removeChildren(gate *graph.Gate, toErase []int) {
	for _, c := range toErase {
		gate.EraseChild(c)
	}
	if gate.NumChildren() == 0 && gate.State() == graph.Normal {
		if gate.Type() == model.Or {
			gate.Nullify()
		} else {
			gate.MakeUnity()
		}
	}
}

// processConstGates absorbs subgates that collapsed to constants during
// earlier rewriting. The structure at this point is positive AND/OR only.
// It reports whether anything changed.
func processConstGates(g *graph.Graph, gate *graph.Gate, processed map[int]bool) bool {
	if processed[gate.Index()] {
		return false
	}
	processed[gate.Index()] = true

	if gate.State() != graph.Normal {
		return false
	}
	changed := false
	var toErase []int
	for _, c := range gate.Children() {
		if !g.IsGate(c) {
			continue
		}
		child, _ := g.Gate(c)
		if processConstGates(g, child, processed) {
			changed = true
		}
		switch child.State() {
		case graph.Normal:
			continue
		case graph.NullState:
			if processConstantChild(gate, c, false, &toErase) {
				return true
			}
		case graph.UnityState:
			if processConstantChild(gate, c, true, &toErase) {
				return true
			}
		}
	}
	if len(toErase) > 0 {
		changed = true
	}
	removeChildren(gate, toErase)
	return changed
}
