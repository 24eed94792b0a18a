package model

import (
	"errors"
	"fmt"
)

// Model error codes (M100-M199)
const (
	// ErrDuplicateEvent indicates an id registered more than once.
	ErrDuplicateEvent = "M101"

	// ErrUndefinedEvent indicates a formula argument naming an unknown id.
	ErrUndefinedEvent = "M102"

	// ErrProbabilityRange indicates a basic-event probability outside [0, 1].
	ErrProbabilityRange = "M103"

	// ErrVoteNumber indicates an ATLEAST vote number out of range.
	ErrVoteNumber = "M104"

	// ErrCyclicGate indicates a gate reachable from itself.
	ErrCyclicGate = "M105"

	// ErrNoTopEvent indicates Freeze was called without a top event.
	ErrNoTopEvent = "M106"

	// ErrFrozen indicates mutation of a frozen model.
	ErrFrozen = "M107"

	// ErrFormulaArity indicates a formula with the wrong number of arguments
	// for its connective (NOT/NULL take one, XOR takes two).
	ErrFormulaArity = "M108"
)

// Error represents a structural defect in the model.
//
// Model errors are raised while the model is being populated or at Freeze.
// The analysis core never produces them; it asserts their absence.
type Error struct {
	Code    string // One of the M1xx constants.
	ID      string // Offending event or gate id, if known.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.ID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// IsModelError reports whether err is a model Error.
// Uses errors.As to handle wrapped errors.
func IsModelError(err error) bool {
	var me *Error
	return errors.As(err, &me)
}
