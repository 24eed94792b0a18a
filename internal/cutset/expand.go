package cutset

import (
	"github.com/faultline-io/faultline/internal/graph"
	"github.com/faultline-io/faultline/internal/model"
)

// Default expansion bounds.
const (
	DefaultOrder    = 20      // Maximum cut-set cardinality.
	DefaultProducts = 1 << 20 // Cap on intermediate products per gate.
)

// Options bound the expansion.
type Options struct {
	// Order is the maximum cut-set cardinality to enumerate; larger cut
	// sets are dropped. Zero means DefaultOrder.
	Order int

	// Products caps the intermediate product count per gate expansion.
	// Exceeding it aborts enumeration with a LimitError. Zero means
	// DefaultProducts.
	Products int
}

// Enumerate computes the minimal cut sets of a processed graph.
//
// The graph must be in post-pipeline form: positive AND/OR gates with
// complements only on basic-event leaves. topState communicates a tree
// that collapsed to a constant: null yields the empty family (no cut
// sets), unity yields the family holding one empty cut set.
//
// The result is sorted by (size, lexicographic) order and is minimal:
// no member is a superset of another.
func Enumerate(g *graph.Graph, topState graph.State, opts Options) ([]CutSet, error) {
	if opts.Order <= 0 {
		opts.Order = DefaultOrder
	}
	if opts.Products <= 0 {
		opts.Products = DefaultProducts
	}
	switch topState {
	case graph.NullState:
		return []CutSet{}, nil
	case graph.UnityState:
		return []CutSet{{}}, nil
	}
	e := &expander{g: g, opts: opts, memo: make(map[int][]CutSet)}
	family, err := e.expand(g.Top())
	if err != nil {
		return nil, err
	}
	return minimize(family), nil
}

type expander struct {
	g    *graph.Graph
	opts Options
	memo map[int][]CutSet
}

// expand computes the cut-set family of one gate bottom-up. Shared gates
// are expanded once and memoized.
func (e *expander) expand(gate *graph.Gate) ([]CutSet, error) {
	if family, ok := e.memo[gate.Index()]; ok {
		return family, nil
	}
	children := gate.Children()
	families := make([][]CutSet, 0, len(children))
	for _, c := range children {
		if e.g.IsGate(c) {
			child, _ := e.g.Gate(c)
			family, err := e.expand(child)
			if err != nil {
				return nil, err
			}
			families = append(families, family)
		} else {
			families = append(families, []CutSet{{c}})
		}
	}

	var family []CutSet
	var err error
	if gate.Type() == model.And {
		family, err = e.product(gate.Index(), families)
		if err != nil {
			return nil, err
		}
	} else {
		for _, f := range families {
			family = append(family, f...)
		}
		family = minimize(family)
	}
	e.memo[gate.Index()] = family
	return family, nil
}

// product forms the Cartesian union of the child families, discarding
// combinations that exceed the order limit or are contradictory.
func (e *expander) product(gateIndex int, families [][]CutSet) ([]CutSet, error) {
	acc := []CutSet{{}}
	for _, family := range families {
		next := make([]CutSet, 0, len(acc))
		for _, left := range acc {
			for _, right := range family {
				union, ok := merge(left, right)
				if !ok {
					continue // Both +i and -i: impossible product.
				}
				if union.Size() > e.opts.Order {
					continue
				}
				next = append(next, union)
				if len(next) > e.opts.Products {
					return nil, &LimitError{Products: e.opts.Products, GateIndex: gateIndex}
				}
			}
		}
		acc = next
	}
	return acc, nil
}
