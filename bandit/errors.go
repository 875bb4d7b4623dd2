package bandit

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is wrapped by every InputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSingular reports a design matrix that could not be inverted.
	ErrSingular = errors.New("design matrix is not invertible")
	// ErrUnknownPolicy reports an unrecognized policy name.
	ErrUnknownPolicy = errors.New("unknown policy")
)

// InputError represents an input validation error.
type InputError struct {
	Type     string
	Expected int
	Got      int
	// Msg replaces the size message when set.
	Msg string
}

func (e *InputError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Msg)
	}
	return fmt.Sprintf("%s must have size %d, got %d", e.Type, e.Expected, e.Got)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// Invalid builds an InputError with a free-form message.
func Invalid(typ, format string, args ...any) *InputError {
	return &InputError{Type: typ, Msg: fmt.Sprintf(format, args...)}
}

// CheckContext validates a context vector against the feature dimension d.
func CheckContext(x []float64, d int) error {
	if x == nil {
		return &InputError{Type: "context", Expected: d, Got: 0, Msg: "missing context vector"}
	}
	if len(x) != d {
		return &InputError{Type: "context", Expected: d, Got: len(x)}
	}
	return nil
}

// CheckArm validates an arm index against the number of arms.
func CheckArm(arm, nArms int) error {
	if arm < 0 || arm >= nArms {
		return Invalid("arm", "index %d out of range [0, %d)", arm, nArms)
	}
	return nil
}
