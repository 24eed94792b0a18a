// Package prob computes cut-set probabilities, the rare-event and
// min-cut-upper-bound approximations, and per-event importance factors.
//
// The exact probability path lives in package bdd; this package owns the
// cut-set-driven numerics and the importance formulas over either path.
package prob

import (
	"sort"

	"github.com/faultline-io/faultline/internal/cutset"
	"github.com/faultline-io/faultline/internal/graph"
)

// CutSetProbability is the probability of one cut set under member
// independence: the product of p(e) over positive literals and 1 - p(e)
// over complemented ones.
func CutSetProbability(g *graph.Graph, cs cutset.CutSet) float64 {
	p := 1.0
	for _, lit := range cs {
		if lit > 0 {
			p *= g.BasicProbability(lit)
		} else {
			p *= 1 - g.BasicProbability(-lit)
		}
	}
	return p
}

// RareEvent is the rare-event approximation: the plain sum of cut-set
// probabilities. Valid only when the sum stays well below one; the
// caller downgrades a sum above one to a warning, not an error.
func RareEvent(g *graph.Graph, mcs []cutset.CutSet) float64 {
	sum := 0.0
	for _, cs := range mcs {
		sum += CutSetProbability(g, cs)
	}
	return sum
}

// MCUB is the min-cut upper bound: 1 - prod(1 - Pr(cs)). It assumes the
// cut sets are approximately independent.
func MCUB(g *graph.Graph, mcs []cutset.CutSet) float64 {
	q := 1.0
	for _, cs := range mcs {
		q *= 1 - CutSetProbability(g, cs)
	}
	return 1 - q
}

// EventsInCutSets returns the basic-event indices that occur in the
// family, positively or complemented, in ascending order.
func EventsInCutSets(mcs []cutset.CutSet) []int {
	seen := make(map[int]bool)
	for _, cs := range mcs {
		for _, lit := range cs {
			if lit < 0 {
				lit = -lit
			}
			seen[lit] = true
		}
	}
	out := make([]int, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Ints(out)
	return out
}
