package condition

import (
	"errors"
	"fmt"
)

// InvalidConditionError reports a malformed masterlist condition: an unknown
// token, a bad function argument, an invalid pattern or an out-of-root path.
// It is always recoverable at the scope of the single condition being
// evaluated.
type InvalidConditionError struct {
	Reason string
	Cause  error
}

func (e *InvalidConditionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid condition: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid condition: %s", e.Reason)
}

func (e *InvalidConditionError) Unwrap() error {
	return e.Cause
}

func invalidCondition(format string, args ...interface{}) error {
	return &InvalidConditionError{Reason: fmt.Sprintf(format, args...)}
}

func invalidConditionCause(cause error, format string, args ...interface{}) error {
	return &InvalidConditionError{Reason: fmt.Sprintf(format, args...), Cause: cause}
}

// IsInvalidCondition reports whether err is an InvalidConditionError.
func IsInvalidCondition(err error) bool {
	var ice *InvalidConditionError
	return errors.As(err, &ice)
}
