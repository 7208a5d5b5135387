package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/trip-quoter/internal/catalog"
	"github.com/eugenenazirov/trip-quoter/internal/pricing"
	"github.com/eugenenazirov/trip-quoter/internal/quote"
	"github.com/eugenenazirov/trip-quoter/internal/session"
)

const (
	formatText = "text"
	formatHTML = "html"
)

// tripFile is the YAML shape accepted by the quote command. Field names match
// the API field identifiers, e.g. "productiveKm" or "national.lunch.quantity".
type tripFile struct {
	Vehicle string             `yaml:"vehicle"`
	Fields  map[string]float64 `yaml:"fields"`
	Details *quote.Details     `yaml:"details"`
}

func loadTripFile(path string) (tripFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tripFile{}, fmt.Errorf("read trip file: %w", err)
	}

	var trip tripFile
	if err := yaml.Unmarshal(data, &trip); err != nil {
		return tripFile{}, fmt.Errorf("parse trip file: %w", err)
	}
	return trip, nil
}

// runQuote prices the trip in path through a session and writes the document to w.
// Every rejected field is reported before giving up.
func runQuote(path, format string, cat catalog.Catalog, w io.Writer) error {
	trip, err := loadTripFile(path)
	if err != nil {
		return err
	}

	sess, err := session.New("cli", cat, nil)
	if err != nil {
		return err
	}

	if trip.Vehicle != "" {
		vehicle, err := pricing.ParseVehicle(trip.Vehicle)
		if err != nil {
			return err
		}
		if err := sess.SetVehicle(vehicle); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(trip.Fields))
	for name := range trip.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		field, err := pricing.ParseField(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := sess.Set(field, trip.Fields[name]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid trip: %w", errors.Join(errs...))
	}

	if trip.Details != nil {
		details := *trip.Details
		if details.IssueDate == "" {
			details.IssueDate = sess.Details().IssueDate
		}
		if err := sess.SetDetails(details); err != nil {
			return err
		}
	}

	doc := sess.Document()
	switch format {
	case formatHTML:
		return quote.RenderHTML(w, doc)
	case formatText, "":
		return quote.RenderText(w, doc)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
