// Package graph provides the integer-indexed mirror of a frozen model
// that all rewriting passes operate on.
//
// Node identity is separated from polarity: a child reference i > 0 names
// node i positively, i < 0 names node -i under logical complement. Basic
// events occupy indices 1..B, house events B+1..B+H, model gates from
// B+H+1, and synthetic gates created during rewriting take indices from a
// monotonically increasing counter above that. Index 0 is reserved.
//
// The graph exclusively owns its gates. All cross-references are indices,
// never pointers, which keeps the DAG safely mutable under the rewrite
// passes and rules out ownership cycles by construction.
//
// Iteration over gates and children is sorted by index so that every pass
// is deterministic.
package graph
