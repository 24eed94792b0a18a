// Package compile rewrites an indexed fault-tree graph into the canonical
// form consumed by cut-set enumeration and BDD construction.
//
// The passes run in a fixed order:
//
//  1. Normalize: only AND and OR connectives remain; NOR/NAND fold into
//     reference signs, XOR and ATLEAST expand structurally, and the top
//     event's polarity folds into the graph's top sign.
//  2. PropagateConstants: house events and constant subgates are pruned
//     with the OR/AND absorption rules.
//  3. PropagateComplements: residual negative gate references are pushed
//     down until complements survive only on basic-event leaves.
//  4. Simplification to fixpoint: constant-state gates are absorbed and
//     same-type parent/child gates coalesce; one-child gates splice out.
//  5. DetectModules: maximal independent subtrees are identified with a
//     DFS interval scheme and extracted as synthetic gates.
//
// After simplification the reachable graph is checked once against the
// post-pass invariants (AND/OR only, normal state, positive gate
// references, no house events, at least two children below the top); a
// breach is a LogicError and aborts the analysis. No check runs between
// the earlier passes. The passes recover from nothing.
package compile
