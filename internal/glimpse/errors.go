package glimpse

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks argument-validation failures: mismatched batch
// sizes, non-positive patch dimensions, malformed image batches. Test with
// errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// ExtractionError wraps a failure in one stage of glimpse extraction.
type ExtractionError struct {
	Operation string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("glimpse error in %s: %v", e.Operation, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func invalidArg(op, format string, args ...any) error {
	return &ExtractionError{
		Operation: op,
		Err:       fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument),
	}
}
