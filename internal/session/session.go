package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/eugenenazirov/trip-quoter/internal/catalog"
	"github.com/eugenenazirov/trip-quoter/internal/pricing"
	"github.com/eugenenazirov/trip-quoter/internal/quote"
)

// ErrReadOnlyField is returned when a caller tries to edit catalog reference data.
var ErrReadOnlyField = errors.New("field is read-only reference data")

// Session owns the trip input of one quote and keeps its price breakdown
// current. A Session is not safe for concurrent use; MemoryStore serialises
// access to the sessions it holds.
type Session struct {
	id      string
	catalog catalog.Catalog
	rates   pricing.RateTable
	clock   func() time.Time

	input   pricing.TripInput
	details quote.Details
	result  pricing.Result
	errors  map[pricing.Field]error

	updatedAt time.Time
}

// Snapshot is an immutable view of a session.
type Snapshot struct {
	ID        string            `json:"id"`
	Input     pricing.TripInput `json:"input"`
	Result    pricing.Result    `json:"result"`
	Details   quote.Details     `json:"details"`
	Errors    map[string]string `json:"errors,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// New starts a session with the catalog defaults.
func New(id string, cat catalog.Catalog, clock func() time.Time) (*Session, error) {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	s := &Session{
		id:      id,
		catalog: cat,
		rates:   cat.Rates(),
		clock:   clock,
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Reset discards every edit and returns to the catalog defaults.
func (s *Session) Reset() error {
	input := s.catalog.NewTripInput()
	result, err := pricing.Compute(input, s.rates)
	if err != nil {
		return fmt.Errorf("price default trip: %w", err)
	}

	s.input = input
	s.result = result
	s.details = quote.NewDetails(s.clock())
	s.errors = make(map[pricing.Field]error)
	s.touch()
	return nil
}

// Set validates value for field and, when accepted, commits it and reprices
// the trip. A rejected value is recorded against the field and the previously
// committed value stays in place.
func (s *Session) Set(field pricing.Field, value float64) error {
	if _, _, attr, ok := field.ItemParts(); ok && attr == pricing.AttrUnitPrice {
		return &pricing.FieldError{Field: field, Value: value, Err: ErrReadOnlyField}
	}
	if !field.Valid() {
		return &pricing.FieldError{Field: field, Value: value, Err: pricing.ErrUnknownField}
	}

	candidate := s.input
	if err := candidate.Apply(field, value); err != nil {
		s.errors[field] = err
		s.touch()
		return err
	}

	if err := s.commit(candidate); err != nil {
		return err
	}
	delete(s.errors, field)
	return nil
}

// SetVehicle switches the vehicle category and reprices the trip.
func (s *Session) SetVehicle(v pricing.VehicleCategory) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %q", pricing.ErrUnknownVehicle, v)
	}
	candidate := s.input
	candidate.Vehicle = v
	return s.commit(candidate)
}

// SetDetails replaces the trip metadata printed on the quote.
func (s *Session) SetDetails(d quote.Details) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.details = d.Normalized()
	s.touch()
	return nil
}

// Input returns a copy of the committed trip input.
func (s *Session) Input() pricing.TripInput {
	return s.input
}

// Result returns the price breakdown of the committed input.
func (s *Session) Result() pricing.Result {
	return s.result
}

// Details returns the trip metadata.
func (s *Session) Details() quote.Details {
	return s.details
}

// FieldError returns the recorded validation error for field, if any.
func (s *Session) FieldError(field pricing.Field) error {
	return s.errors[field]
}

// UpdatedAt reports when the session last changed.
func (s *Session) UpdatedAt() time.Time {
	return s.updatedAt
}

// Document assembles the printable quote for the current state.
func (s *Session) Document() quote.Document {
	return quote.Build(s.input, s.result, s.details, s.catalog.Company())
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:        s.id,
		Input:     s.input,
		Result:    s.result,
		Details:   s.details,
		UpdatedAt: s.updatedAt,
	}
	if len(s.errors) > 0 {
		snap.Errors = make(map[string]string, len(s.errors))
		for field, err := range s.errors {
			snap.Errors[string(field)] = errorMessage(err)
		}
	}
	return snap
}

func (s *Session) commit(candidate pricing.TripInput) error {
	result, err := pricing.Compute(candidate, s.rates)
	if err != nil {
		return err
	}
	s.input = candidate
	s.result = result
	s.touch()
	return nil
}

func (s *Session) touch() {
	s.updatedAt = s.clock()
}

// errorMessage strips the field prefix; the field is already the map key.
func errorMessage(err error) string {
	var fieldErr *pricing.FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr.Err.Error()
	}
	return err.Error()
}
