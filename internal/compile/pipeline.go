package compile

import (
	"context"
	"log/slog"

	"github.com/faultline-io/faultline/internal/graph"
	"github.com/faultline-io/faultline/internal/model"
)

// Result carries what the rewriting pipeline learned about the graph.
type Result struct {
	// TopState is NullState or UnityState when the whole tree collapsed
	// to a constant, Normal otherwise.
	TopState graph.State

	// Modules is the set of gate indices that are independent subtrees.
	// Empty when the tree collapsed.
	Modules map[int]bool
}

// Process runs the full rewriting pipeline on the graph, in order:
// normalization, constant propagation, top-sign folding, complement
// propagation, simplification to fixpoint, and module detection.
//
// The context is polled between passes only; the passes themselves are
// not preemptible. On return the graph is positive AND/OR structure with
// complements only on basic-event leaves, ready for cut-set enumeration
// and BDD construction.
func Process(ctx context.Context, g *graph.Graph) (*Result, error) {
	slog.Debug("normalizing gates")
	Normalize(g)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("propagating constants")
	PropagateConstants(g)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if g.TopSign() < 0 {
		top := g.Top()
		switch {
		case top.State() == graph.NullState:
			// The folded sign negates a top that already collapsed.
			top.MakeUnity()
		case top.State() == graph.UnityState:
			top.Nullify()
		case top.Type() != model.And && top.Type() != model.Or:
			return nil, &LogicError{Pass: "normalize", GateIndex: top.Index(),
				Message: "negative top sign over a non-AND/OR gate"}
		default:
			top.SetType(oppositeType(top.Type()))
			top.InvertChildren()
		}
		g.MultiplyTopSign(-1)
	}

	slog.Debug("propagating complements")
	PropagateComplements(g)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("simplifying to fixpoint")
	processConstGates(g, g.Top(), make(map[int]bool))
	for {
		if !joinGates(g, g.Top(), make(map[int]bool)) {
			break
		}
		if !processConstGates(g, g.Top(), make(map[int]bool)) {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{TopState: g.Top().State(), Modules: make(map[int]bool)}
	if result.TopState != graph.Normal || g.Top().NumChildren() == 0 {
		if result.TopState == graph.Normal {
			// An empty gate slipped through: empty OR is null, empty
			// AND is unity.
			if g.Top().Type() == model.Or {
				result.TopState = graph.NullState
			} else {
				result.TopState = graph.UnityState
			}
		}
		return result, nil
	}

	if err := verify(g); err != nil {
		return nil, err
	}

	slog.Debug("detecting modules")
	result.Modules = DetectModules(g)
	slog.Debug("module detection done", "count", len(result.Modules))
	return result, nil
}

// verify checks the post-simplification invariants on the reachable
// graph: only AND/OR connectives, no constant states, positive gate
// references, and at least two children everywhere below the top.
func verify(g *graph.Graph) error {
	const pass = "simplify"
	seen := make(map[int]bool)
	var walk func(gate *graph.Gate) error
	walk = func(gate *graph.Gate) error {
		if seen[gate.Index()] {
			return nil
		}
		seen[gate.Index()] = true
		if t := gate.Type(); t != model.And && t != model.Or {
			return &LogicError{Pass: pass, GateIndex: gate.Index(),
				Message: "non-AND/OR gate survived normalization"}
		}
		if gate.State() != graph.Normal {
			return &LogicError{Pass: pass, GateIndex: gate.Index(),
				Message: "constant-state gate survived simplification"}
		}
		if gate.Index() != g.TopIndex() && gate.NumChildren() < 2 {
			return &LogicError{Pass: pass, GateIndex: gate.Index(),
				Message: "gate with fewer than two children survived simplification"}
		}
		for _, c := range gate.Children() {
			if g.IsGate(c) {
				if c < 0 {
					return &LogicError{Pass: pass, GateIndex: gate.Index(),
						Message: "negative gate reference survived complement propagation"}
				}
				child, ok := g.Gate(c)
				if !ok {
					return &LogicError{Pass: pass, GateIndex: gate.Index(),
						Message: "dangling gate reference"}
				}
				if err := walk(child); err != nil {
					return err
				}
			} else if g.IsHouse(c) {
				return &LogicError{Pass: pass, GateIndex: gate.Index(),
					Message: "house-event reference survived constant propagation"}
			}
		}
		return nil
	}
	return walk(g.Top())
}
