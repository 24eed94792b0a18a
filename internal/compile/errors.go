package compile

import (
	"errors"
	"fmt"
)

// LogicError reports an internal invariant violation detected mid-pass.
//
// Logic errors are fatal: the graph is in an undefined state and the
// analysis must abort. They indicate a defect in the rewriting passes,
// never in user input.
type LogicError struct {
	// Pass names the rewriting pass that detected the breach.
	Pass string

	// GateIndex identifies the offending gate, or zero.
	GateIndex int

	// Message describes the violated invariant.
	Message string
}

// Error implements the error interface.
func (e *LogicError) Error() string {
	if e.GateIndex != 0 {
		return fmt.Sprintf("logic error in %s at gate %d: %s", e.Pass, e.GateIndex, e.Message)
	}
	return fmt.Sprintf("logic error in %s: %s", e.Pass, e.Message)
}

// IsLogicError reports whether err is a LogicError.
// Uses errors.As to handle wrapped errors.
func IsLogicError(err error) bool {
	var le *LogicError
	return errors.As(err, &le)
}
