package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownTermination indicates an unrecognised termination rule name.
	ErrUnknownTermination = errors.New("dynamo: unknown termination rule")

	// ErrUnknownForceModel indicates an unrecognised force model name.
	ErrUnknownForceModel = errors.New("dynamo: unknown force model")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

func boundsError(name string, value float64, want string) error {
	return fmt.Errorf("%w: %s must be %s, got %g", ErrParameterBounds, name, want, value)
}
