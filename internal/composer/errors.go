package composer

import (
	"errors"
	"fmt"

	"github.com/smartleave/leave-composer/internal/model"
)

// ErrSubmitInFlight is returned when Submit is invoked while an earlier
// submission is still pending. The duplicate attempt is a no-op.
var ErrSubmitInFlight = errors.New("a leave submission is already in progress")

// ValidationError is a local precondition failure. No network call was made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ConflictError indicates the requested range overlaps an existing
// non-cancelled leave request. Nothing was submitted.
type ConflictError struct {
	Existing model.DateRange
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("requested dates overlap an existing leave request (%v)", e.Existing)
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict reports whether err is an overlap conflict.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
