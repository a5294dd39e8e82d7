package instance

import (
	"errors"
	"fmt"
)

// InvalidStateError reports an operation on an instance that is not in a
// state to accept it, such as compose on an instance that was never ensured.
type InvalidStateError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("instance %s: %s", e.Name, e.Reason)
}

// IsInvalidState checks if an error is, or wraps, an InvalidStateError.
func IsInvalidState(err error) bool {
	var serr *InvalidStateError
	return errors.As(err, &serr)
}
