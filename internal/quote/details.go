package quote

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultDescription is the service description used when none is given.
	DefaultDescription = "Traslado privado"

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ErrInvalidDetails is returned when a date or time in Details is malformed.
var ErrInvalidDetails = errors.New("invalid quote details")

// Details is the trip metadata printed alongside the price.
// Dates use YYYY-MM-DD and times HH:MM.
type Details struct {
	ContactName   string `json:"contactName" yaml:"contact_name"`
	Phone         string `json:"phone" yaml:"phone"`
	IssueDate     string `json:"issueDate" yaml:"issue_date"`
	DepartureDate string `json:"departureDate" yaml:"departure_date"`
	DepartureTime string `json:"departureTime" yaml:"departure_time"`
	ReturnDate    string `json:"returnDate" yaml:"return_date"`
	ReturnTime    string `json:"returnTime" yaml:"return_time"`
	Origin        string `json:"origin" yaml:"origin"`
	Destination   string `json:"destination" yaml:"destination"`
	ReturnTo      string `json:"returnTo" yaml:"return_to"`
	Description   string `json:"description" yaml:"description"`
}

// NewDetails returns empty metadata issued on the day of now.
func NewDetails(now time.Time) Details {
	return Details{
		IssueDate:     now.Format(dateLayout),
		DepartureTime: "00:00",
		ReturnTime:    "00:00",
		Description:   DefaultDescription,
	}
}

// Validate checks that every non-empty date and time is well formed once
// surrounding whitespace is trimmed. Fields are checked in document order.
func (d Details) Validate() error {
	n := d.Normalized()
	checks := []struct {
		name   string
		value  string
		layout string
		want   string
	}{
		{"issueDate", n.IssueDate, dateLayout, "YYYY-MM-DD date"},
		{"departureDate", n.DepartureDate, dateLayout, "YYYY-MM-DD date"},
		{"departureTime", n.DepartureTime, timeLayout, "HH:MM time"},
		{"returnDate", n.ReturnDate, dateLayout, "YYYY-MM-DD date"},
		{"returnTime", n.ReturnTime, timeLayout, "HH:MM time"},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		if _, err := time.Parse(c.layout, c.value); err != nil {
			return fmt.Errorf("%w: %s %q is not a %s", ErrInvalidDetails, c.name, c.value, c.want)
		}
	}
	return nil
}

// Normalized trims every field and fills the description default.
func (d Details) Normalized() Details {
	fields := []*string{
		&d.ContactName, &d.Phone, &d.IssueDate, &d.DepartureDate, &d.DepartureTime,
		&d.ReturnDate, &d.ReturnTime, &d.Origin, &d.Destination, &d.ReturnTo, &d.Description,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
	if d.Description == "" {
		d.Description = DefaultDescription
	}
	return d
}
