package compile

import (
	"github.com/faultline-io/faultline/internal/graph"
)

// joinGates coalesces same-type parent/child gate pairs and splices out
// one-child gates. The graph at this point is positive AND/OR only.
// It reports whether anything changed.
func joinGates(g *graph.Graph, gate *graph.Gate, processed map[int]bool) bool {
	if processed[gate.Index()] {
		return false
	}
	processed[gate.Index()] = true

	changed := false
	restart := true
	for restart {
		restart = false
		for _, c := range gate.Children() {
			if !g.IsGate(c) {
				continue
			}
			child, _ := g.Gate(c)
			if child.State() != graph.Normal {
				continue // Constant absorption handles these.
			}
			switch {
			case child.Type() == gate.Type():
				changed = true
				if !gate.MergeFrom(child, c) {
					return true // The merge short-circuited the gate.
				}
				restart = true
			case child.NumChildren() == 1:
				// A reduced gate left over from constant propagation.
				changed = true
				only := child.Children()[0]
				if !gate.SwapChild(c, only) {
					if gate.State() != graph.Normal {
						return true
					}
					gate.EraseChild(c)
				}
				restart = true
			default:
				if joinGates(g, child, processed) {
					changed = true
				}
			}
			if restart {
				break
			}
		}
	}
	return changed
}
