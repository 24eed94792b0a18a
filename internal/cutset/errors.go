package cutset

import (
	"errors"
	"fmt"
)

// LimitError reports that enumeration would exceed the configured
// product cap. The analysis aborts; a partial family is never returned.
type LimitError struct {
	// Products is the configured cap on intermediate products.
	Products int

	// GateIndex identifies the gate whose expansion blew the cap.
	GateIndex int
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("cut-set expansion at gate %d exceeds the product cap of %d",
		e.GateIndex, e.Products)
}

// IsLimitError reports whether err is a LimitError.
// Uses errors.As to handle wrapped errors.
func IsLimitError(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}
