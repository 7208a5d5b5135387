package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeValue is returned when a count, quantity, distance or price is below zero.
	ErrNegativeValue = errors.New("negative values are not allowed")
	// ErrOutOfRange is returned when a bounded field (the discount percentage) leaves its range.
	ErrOutOfRange = errors.New("value is outside the allowed range")
	// ErrNotInteger is returned when a whole-number field receives a fractional value.
	ErrNotInteger = errors.New("value must be a whole number")
	// ErrNotFinite is returned for NaN and infinite inputs.
	ErrNotFinite = errors.New("value must be a finite number")
	// ErrUnknownField is returned when a field identity does not name a trip input field.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownVehicle is returned when a vehicle category name cannot be resolved.
	ErrUnknownVehicle = errors.New("unknown vehicle category")
	// ErrConfiguration is returned when the rate table cannot serve a trip input.
	ErrConfiguration = errors.New("pricing configuration error")
	// ErrComputation is returned when a derived display value cannot be computed reliably.
	ErrComputation = errors.New("pricing computation error")
)

// FieldError reports a rejected value for a single trip input field.
type FieldError struct {
	Field Field
	Value float64
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
