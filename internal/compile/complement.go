package compile

import (
	"github.com/faultline-io/faultline/internal/graph"
	"github.com/faultline-io/faultline/internal/model"
)

// PropagateComplements pushes residual negative gate references down the
// graph so that complements survive only on basic-event leaves. NOT and
// NULL identities splice out along the way.
//
// A complemented AND/OR child materializes as a fresh gate of the
// opposite type with every child sign flipped. The materialized gates are
// cached per original index, so repeated complements of a shared subtree
// cost one gate, keeping the graph O(G).
func PropagateComplements(g *graph.Graph) {
	propagateComplements(g, g.Top(), make(map[int]int), make(map[int]bool))
}

func propagateComplements(g *graph.Graph, gate *graph.Gate, complements map[int]int, processed map[int]bool) {
	restart := true
	for restart {
		restart = false
		for _, c := range gate.Children() {
			if !g.IsGate(c) {
				continue
			}
			child, _ := g.Gate(abs(c))

			if child.Type() == model.Not || child.Type() == model.Null {
				sub := child.Children()[0]
				mult := 1
				if child.Type() == model.Not {
					mult = -1
				}
				if c < 0 {
					mult = -mult
				}
				if !gate.SwapChild(c, sub*mult) {
					if gate.State() != graph.Normal {
						return
					}
					gate.EraseChild(c) // Replacement was already present.
				}
				restart = true
				break
			}

			if c < 0 {
				replacement, ok := complements[-c]
				if !ok {
					complement := g.AddGate(oppositeType(child.Type()))
					for _, cc := range child.Children() {
						complement.AddChild(-cc)
					}
					complements[-c] = complement.Index()
					processed[complement.Index()] = true
					propagateComplements(g, complement, complements, processed)
					replacement = complement.Index()
				}
				if !gate.SwapChild(c, replacement) {
					if gate.State() != graph.Normal {
						return
					}
					gate.EraseChild(c)
				}
				restart = true
				break
			}

			if !processed[c] {
				processed[c] = true
				propagateComplements(g, child, complements, processed)
			}
		}
	}
}

// oppositeType returns the De Morgan dual of an AND/OR connective.
func oppositeType(t model.GateType) model.GateType {
	if t == model.And {
		return model.Or
	}
	return model.And
}
