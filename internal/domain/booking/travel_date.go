package booking

import (
	"fmt"
	"strings"
	"time"
)

const travelDateLayout = "2006-01-02"

// TravelDate is a calendar date without a time component. The zero value is
// the zero date.
type TravelDate struct {
	t time.Time
}

// NewTravelDate creates a TravelDate for the given calendar day.
func NewTravelDate(year int, month time.Month, day int) TravelDate {
	return TravelDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// TravelDateOf truncates a timestamp to its UTC calendar date.
func TravelDateOf(t time.Time) TravelDate {
	u := t.UTC()
	return NewTravelDate(u.Year(), u.Month(), u.Day())
}

// ParseTravelDate parses an ISO date string (2006-01-02).
func ParseTravelDate(s string) (TravelDate, error) {
	t, err := time.Parse(travelDateLayout, strings.TrimSpace(s))
	if err != nil {
		return TravelDate{}, fmt.Errorf("invalid travel date %q: %w", s, err)
	}
	return TravelDate{t: t}, nil
}

// Time returns the date as midnight UTC.
func (d TravelDate) Time() time.Time { return d.t }

// IsZero reports whether the date is unset.
func (d TravelDate) IsZero() bool { return d.t.IsZero() }

// Before reports whether d falls before other.
func (d TravelDate) Before(other TravelDate) bool { return d.t.Before(other.t) }

// Equal reports whether two dates are the same calendar day.
func (d TravelDate) Equal(other TravelDate) bool { return d.t.Equal(other.t) }

// String formats the date as ISO 8601 (2006-01-02).
func (d TravelDate) String() string { return d.t.Format(travelDateLayout) }

// MarshalJSON encodes the date as an ISO date string.
func (d TravelDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes an ISO date string.
func (d *TravelDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = TravelDate{}
		return nil
	}
	parsed, err := ParseTravelDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
