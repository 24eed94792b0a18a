package prob

import (
	"math"

	"github.com/faultline-io/faultline/internal/bdd"
	"github.com/faultline-io/faultline/internal/cutset"
	"github.com/faultline-io/faultline/internal/graph"
)

// Factors is the set of importance measures for one basic event.
type Factors struct {
	MIF float64 // Birnbaum marginal: Pr(top|e=1) - Pr(top|e=0).
	CIF float64 // Critical: MIF * p / Pr(top).
	DIF float64 // Fussell-Vesely diagnosis; see ImportanceBDD/ImportanceRare.
	RAW float64 // Risk achievement worth: Pr(top|e=1) / Pr(top).
	RRW float64 // Risk reduction worth: Pr(top) / Pr(top|e=0).
}

// ImportanceBDD computes the factors for each event by re-evaluating the
// diagram with the event pinned to one and to zero. The diagram's memo
// tables are reused between fixings. DIF is the Bayes form
// p * Pr(top|e=1) / Pr(top).
func ImportanceBDD(b *bdd.BDD, g *graph.Graph, events []int, pTotal float64) map[int]Factors {
	out := make(map[int]Factors, len(events))
	if pTotal <= 0 {
		return out
	}
	for _, e := range events {
		p := g.BasicProbability(e)
		p1 := b.ConditionalProbability(e, 1)
		p0 := b.ConditionalProbability(e, 0)
		f := factors(p, p1, p0, pTotal)
		f.DIF = p * p1 / pTotal
		out[e] = f
	}
	return out
}

// ImportanceRare computes the factors from the cut sets alone with the
// rare-event sum standing in for the conditioned probabilities. Used
// when no diagram was built. DIF is the sum of Pr(cut_set) over the cut
// sets containing the event, divided by Pr(top).
func ImportanceRare(g *graph.Graph, mcs []cutset.CutSet, events []int, pTotal float64) map[int]Factors {
	out := make(map[int]Factors, len(events))
	if pTotal <= 0 {
		return out
	}
	for _, e := range events {
		p := g.BasicProbability(e)
		p1 := rareEventPinned(g, mcs, e, 1)
		p0 := rareEventPinned(g, mcs, e, 0)
		f := factors(p, p1, p0, pTotal)
		f.DIF = rareEventContaining(g, mcs, e) / pTotal
		out[e] = f
	}
	return out
}

// factors assembles the conditioned measures; DIF is path-specific and
// filled in by the caller. A vanishing Pr(top|e=0) sends RRW to +Inf:
// the event is single-handedly necessary.
func factors(p, p1, p0, pTotal float64) Factors {
	mif := p1 - p0
	f := Factors{
		MIF: mif,
		CIF: mif * p / pTotal,
		RAW: p1 / pTotal,
	}
	if p0 > 0 {
		f.RRW = pTotal / p0
	} else {
		f.RRW = math.Inf(1)
	}
	return f
}

// rareEventContaining sums the probabilities of the cut sets that
// contain the event, under either polarity.
func rareEventContaining(g *graph.Graph, mcs []cutset.CutSet, event int) float64 {
	sum := 0.0
	for _, cs := range mcs {
		if !cs.Contains(event) && !cs.Contains(-event) {
			continue
		}
		sum += CutSetProbability(g, cs)
	}
	return sum
}

// rareEventPinned is the rare-event sum with one event's probability
// pinned to the given value.
func rareEventPinned(g *graph.Graph, mcs []cutset.CutSet, event int, value float64) float64 {
	sum := 0.0
	for _, cs := range mcs {
		p := 1.0
		for _, lit := range cs {
			index := lit
			if index < 0 {
				index = -index
			}
			q := g.BasicProbability(index)
			if index == event {
				q = value
			}
			if lit > 0 {
				p *= q
			} else {
				p *= 1 - q
			}
		}
		sum += p
	}
	return sum
}
