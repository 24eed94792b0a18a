// Package model provides the validated in-memory fault-tree model.
//
// This package contains the input-side types only. All analysis packages
// consume a frozen Model; model imports nothing internal. This keeps the
// model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - A Model is mutable while it is being populated and immutable after
//     Freeze. Analysis code must only ever see a frozen Model.
//   - Event identities are NFC-normalized strings; two ids that normalize
//     to the same string are the same event.
//   - Gate formulas form a DAG. Freeze rejects cycles; analysis assumes
//     their absence.
package model
