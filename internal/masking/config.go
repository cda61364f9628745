package masking

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/chaoscrypt/internal/physics"
)

// MaxGraceSteps caps the grace prefix; longer prefixes cannot be held in
// memory and would overflow the step arithmetic.
const MaxGraceSteps = math.MaxInt32

// ErrInvalidConfig indicates a run configuration that cannot be integrated.
var ErrInvalidConfig = errors.New("masking: invalid run configuration")

// Config holds everything both ends must agree on, plus the seed of the
// private initial state.
type Config struct {
	Grace     float64 // time units integrated before the message starts
	Frequency float64 // steps per time unit; h = 1/Frequency
	Ratio     int     // integrator steps per message sample
	Epsilon   float64 // mask amplitude
	Params    physics.Params
	Seed      int64
}

func (c Config) Validate() error {
	switch {
	case !(c.Frequency > 0) || math.IsInf(c.Frequency, 0):
		return fmt.Errorf("%w: sampling frequency must be positive, got %v", ErrInvalidConfig, c.Frequency)
	case c.Ratio < 1:
		return fmt.Errorf("%w: decimation ratio must be >= 1, got %d", ErrInvalidConfig, c.Ratio)
	case c.Epsilon == 0 || math.IsNaN(c.Epsilon) || math.IsInf(c.Epsilon, 0):
		return fmt.Errorf("%w: epsilon must be a nonzero finite number, got %v", ErrInvalidConfig, c.Epsilon)
	case !(c.Grace >= 0) || math.IsInf(c.Grace, 0):
		return fmt.Errorf("%w: grace must be non-negative, got %v", ErrInvalidConfig, c.Grace)
	case math.Round(c.Grace*c.Frequency) > MaxGraceSteps:
		return fmt.Errorf("%w: grace of %v at %v steps per unit exceeds %d steps", ErrInvalidConfig, c.Grace, c.Frequency, MaxGraceSteps)
	}
	return nil
}

// StepSize is the fixed integrator step h.
func (c Config) StepSize() float64 { return 1 / c.Frequency }

// GraceSteps is the number of unmodulated samples preceding the message.
func (c Config) GraceSteps() int { return GraceSteps(c.Grace, c.Frequency) }

// GraceSteps converts a grace duration into a whole number of steps. Both the
// transmitter and the signal conditioner use it so the emitted and dropped
// prefixes agree exactly. The result saturates at MaxGraceSteps.
func GraceSteps(grace, frequency float64) int {
	n := math.Round(grace * frequency)
	switch {
	case !(n > 0):
		return 0
	case n >= MaxGraceSteps:
		return MaxGraceSteps
	}
	return int(n)
}

// SignalLength is the composite signal length for a message of n samples.
func (c Config) SignalLength(n int) int {
	return c.GraceSteps() + n*c.Ratio
}
