package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration runs.
var (
	// ErrUnstable indicates the trajectory diverged (NaN or Inf detected).
	ErrUnstable = errors.New("dynamo: integration unstable (state diverged)")

	// ErrCanceled indicates the run was interrupted by its context.
	ErrCanceled = errors.New("dynamo: run canceled by context")
)

// StepError wraps an error with the step at which it happened.
type StepError struct {
	Step    int
	State   State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d at %v: %v", e.Step, e.State, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
