package gcbuild

import (
	"errors"
	"fmt"
)

// HarnessError means a benchmark harness exited nonzero. The build and
// archive stages before it already completed, so the staged artifacts stay
// usable and the remaining harnesses still run; the process exit code
// records the failure.
type HarnessError struct {
	Harness string
	Err     error
}

func (e *HarnessError) Error() string {
	return fmt.Sprintf("harness %s failed: %v", e.Harness, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *HarnessError) Unwrap() error {
	return e.Err
}

// NewHarnessError creates a new HarnessError
func NewHarnessError(harness string, err error) *HarnessError {
	return &HarnessError{Harness: harness, Err: err}
}

// IsHarnessError checks if the error is or wraps a HarnessError
func IsHarnessError(err error) bool {
	var harnessErr *HarnessError
	return err != nil && errors.As(err, &harnessErr)
}
