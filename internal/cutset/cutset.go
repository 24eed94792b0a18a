// Package cutset computes minimal cut sets from a normalized fault-tree
// graph by successive bottom-up product expansion.
//
// A cut set is a set of signed basic-event literals: a positive literal
// requires the event to fail, a negative literal requires it not to.
// Every OR family is minimized right after its union, and the top family
// once more at the end; AND products are not minimized on their own.
// Minimizing at each OR keeps the intermediate families small instead of
// letting them blow up exponentially before one final sweep.
package cutset

import "sort"

// CutSet is a sorted set of signed basic-event literals.
//
// The slice is ordered ascending and free of duplicates. Cut sets are
// immutable once built; operations return fresh slices.
type CutSet []int

// Size returns the cut-set order.
func (c CutSet) Size() int { return len(c) }

// Contains reports whether the literal is in the set.
func (c CutSet) Contains(literal int) bool {
	i := sort.SearchInts(c, literal)
	return i < len(c) && c[i] == literal
}

// IsSubsetOf reports whether every literal of c is in other.
// Both sets are sorted, so this is a linear merge scan.
func (c CutSet) IsSubsetOf(other CutSet) bool {
	if len(c) > len(other) {
		return false
	}
	j := 0
	for _, lit := range c {
		for j < len(other) && other[j] < lit {
			j++
		}
		if j == len(other) || other[j] != lit {
			return false
		}
		j++
	}
	return true
}

// merge unions two sorted cut sets. The second result is false when the
// union is contradictory, containing both +i and -i for some event.
func merge(a, b CutSet) (CutSet, bool) {
	out := make(CutSet, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i, j = i+1, j+1
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	for _, lit := range out {
		if lit > 0 {
			continue
		}
		if out.Contains(-lit) {
			return nil, false
		}
	}
	return out, true
}

// less orders cut sets by size, then lexicographically by literal.
func less(a, b CutSet) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// minimize removes every cut set that is a strict superset of another in
// the family. The result is sorted by (size, lexicographic) order.
func minimize(family []CutSet) []CutSet {
	sort.Slice(family, func(i, j int) bool { return less(family[i], family[j]) })
	var out []CutSet
	for _, candidate := range family {
		dominated := false
		for _, kept := range out {
			if kept.IsSubsetOf(candidate) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, candidate)
		}
	}
	return out
}
