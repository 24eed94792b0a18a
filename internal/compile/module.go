package compile

import (
	"github.com/faultline-io/faultline/internal/graph"
)

// DetectModules finds maximal independent subtrees of the simplified
// graph and extracts groups of non-shared children into synthetic module
// gates. It returns the set of gate indices that are modules.
//
// The scheme is a depth-first timestamping: a gate is a module exactly
// when every basic event reachable from it is visited strictly within the
// gate's own enter/exit interval, so nothing outside the gate shares a
// leaf with it.
func DetectModules(g *graph.Graph) map[int]bool {
	g.ClearVisits()

	// First and last visit times per basic event. A shared basic event
	// spreads its interval beyond any single parent's span.
	visitBasics := make([][2]int, g.NumBasic()+1)
	assignTiming(g, 0, g.Top(), visitBasics)

	modules := make(map[int]bool)
	visitedGates := make(map[int][2]int)
	findModules(g, g.Top(), visitBasics, visitedGates, modules)
	return modules
}

// assignTiming stamps every gate with DFS enter/exit times and records
// the first and last visit of each basic event.
func assignTiming(g *graph.Graph, time int, gate *graph.Gate, visitBasics [][2]int) int {
	time++
	if gate.Visit(time) {
		return time // Revisited gate.
	}
	for _, c := range gate.Children() {
		index := abs(c)
		if g.IsBasic(index) {
			time++
			if visitBasics[index][0] == 0 {
				visitBasics[index][0] = time
			}
			visitBasics[index][1] = time
		} else if g.IsGate(index) {
			child, _ := g.Gate(index)
			time = assignTiming(g, time, child, visitBasics)
		}
	}
	time++
	gate.Visit(time) // Exit stamp; cannot revisit on first completion.
	return time
}

// findModules computes the [min, max] visit interval of every gate
// post-order, marks gates whose interval matches their own timestamps as
// modules, and extracts child groups that can become submodules.
func findModules(g *graph.Graph, gate *graph.Gate, visitBasics [][2]int, visitedGates map[int][2]int, modules map[int]bool) {
	if _, ok := visitedGates[gate.Index()]; ok {
		return
	}
	enterTime := gate.EnterTime()
	exitTime := gate.ExitTime()
	minTime := enterTime
	maxTime := exitTime

	// Children split three ways: visited only inside this gate, nested
	// within its interval, or shared with the outside.
	var nonShared, modular, nonModular []int
	for _, c := range gate.Children() {
		index := abs(c)
		var min, max int
		if g.IsBasic(index) {
			min, max = visitBasics[index][0], visitBasics[index][1]
			if min == max {
				nonShared = append(nonShared, c)
				continue
			}
		} else {
			child, _ := g.Gate(index)
			findModules(g, child, visitBasics, visitedGates, modules)
			interval := visitedGates[index]
			min, max = interval[0], interval[1]
			if modules[index] && !child.Revisited() {
				nonShared = append(nonShared, c)
				continue
			}
		}
		if min > enterTime && max < exitTime {
			modular = append(modular, c)
		} else {
			nonModular = append(nonModular, c)
		}
		if min < minTime {
			minTime = min
		}
		if max > maxTime {
			maxTime = max
		}
	}

	if minTime == enterTime && maxTime == exitTime {
		modules[gate.Index()] = true
	}
	if len(nonShared) > 1 {
		createModule(g, gate, nonShared, modules)
	}
	// Modular children may share events among themselves through a
	// non-modular sibling; demote any candidate whose interval overlaps
	// a non-modular one, transitively.
	modular = filterModularChildren(g, visitBasics, visitedGates, modular, &nonModular)
	if len(modular) > 1 {
		createModule(g, gate, modular, modules)
	}

	if last := gate.LastVisit(); last > maxTime {
		maxTime = last
	}
	visitedGates[gate.Index()] = [2]int{minTime, maxTime}
}

// createModule pulls the given children out of gate into a fresh module
// gate of the same type. If the children are the whole child set, the
// gate itself is the module and nothing is created.
func createModule(g *graph.Graph, gate *graph.Gate, children []int, modules map[int]bool) {
	if len(children) == gate.NumChildren() {
		modules[gate.Index()] = true
		return
	}
	module := g.AddGate(gate.Type())
	modules[module.Index()] = true
	for _, c := range children {
		gate.EraseChild(c)
		module.AddChild(c)
	}
	gate.AddChild(module.Index())
}

// filterModularChildren re-checks modular candidates pairwise against the
// non-modular children: interval overlap demotes the candidate. Demotions
// cascade until a fixpoint.
func filterModularChildren(g *graph.Graph, visitBasics [][2]int, visitedGates map[int][2]int, modular []int, nonModular *[]int) []int {
	if len(modular) == 0 || len(*nonModular) == 0 {
		return modular
	}
	interval := func(c int) (int, int) {
		index := abs(c)
		if g.IsBasic(index) {
			return visitBasics[index][0], visitBasics[index][1]
		}
		iv := visitedGates[index]
		return iv[0], iv[1]
	}

	var demoted []int
	var stillModular []int
	for _, c := range modular {
		min, max := interval(c)
		clean := true
		for _, n := range *nonModular {
			lower, upper := interval(n)
			a, b := min, upper
			if lower > a {
				a = lower
			}
			if max < b {
				b = max
			}
			if a <= b { // The intervals overlap.
				demoted = append(demoted, c)
				clean = false
				break
			}
		}
		if clean {
			stillModular = append(stillModular, c)
		}
	}
	stillModular = filterModularChildren(g, visitBasics, visitedGates, stillModular, &demoted)
	*nonModular = append(*nonModular, demoted...)
	return stillModular
}
