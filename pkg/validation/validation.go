// Package validation provides range checks for user supplied simulation settings.
package validation

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalid is wrapped by every error returned from this package
var ErrInvalid = errors.New("invalid value")

// Finite rejects NaN and infinite values
func Finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be finite, got %v: %w", name, v, ErrInvalid)
	}
	return nil
}

// Positive requires v > 0
func Positive(name string, v float64) error {
	if err := Finite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %v: %w", name, v, ErrInvalid)
	}
	return nil
}

// NonNegative requires v >= 0
func NonNegative(name string, v float64) error {
	if err := Finite(name, v); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%s cannot be negative, got %v: %w", name, v, ErrInvalid)
	}
	return nil
}

// InRange requires lo < v <= hi
func InRange(name string, v, lo, hi float64) error {
	if err := Finite(name, v); err != nil {
		return err
	}
	if v <= lo || v > hi {
		return fmt.Errorf("%s must be in (%v, %v], got %v: %w", name, lo, hi, v, ErrInvalid)
	}
	return nil
}

// AtLeast requires an integer setting to be >= minimum
func AtLeast(name string, v, minimum int) error {
	if v < minimum {
		return fmt.Errorf("%s must be at least %d, got %d: %w", name, minimum, v, ErrInvalid)
	}
	return nil
}

// MultipleOf requires v to be a positive multiple of step
func MultipleOf(name string, v, step int) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %d: %w", name, v, ErrInvalid)
	}
	if step <= 0 || v%step != 0 {
		return fmt.Errorf("%s %d is not a multiple of %d: %w", name, v, step, ErrInvalid)
	}
	return nil
}

// All runs every check and joins the failures. It returns nil when all pass.
func All(checks ...error) error {
	return errors.Join(checks...)
}
