// Package pricing computes trip quotes. Compute is a pure function of a
// TripInput and a RateTable: it derives vehicle and driver costs, applies the
// discount and the tax multiplier, and never keeps state between calls.
// ValidateField holds the per-field input rules enforced before a value is
// committed to a TripInput.
package pricing
