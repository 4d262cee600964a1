// Package caltime holds the calendar date, wall clock and display timezone
// primitives every other package builds on.
//
// Stored instants are always UTC. Anything shown to a person or compared
// against "now" is first projected into the display zone.
package caltime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout    = "2006-01-02"
	altDateLayout = "02-01-2006"
)

// genericLayouts are tried after the two canonical date layouts.
var genericLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date with no time of day and no zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf takes the year, month and day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDateStrict accepts YYYY-MM-DD, then DD-MM-YYYY, then a few generic
// layouts and returns ErrInvalidDate when nothing matches. An input carrying
// an offset is an instant and yields its UTC date; use Zone.ParseDateStrict
// for the display-local date.
func ParseDateStrict(s string) (Date, error) {
	return parseDateIn(s, time.UTC)
}

// parseDateIn projects offset-carrying inputs into loc before taking the date.
func parseDateIn(s string, loc *time.Location) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	for _, layout := range append([]string{DateLayout, altDateLayout}, genericLayouts...) {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == time.RFC3339Nano {
			t = t.In(loc)
		}
		return DateOf(t), nil
	}

	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.In(time.UTC).Before(o.In(time.UTC))
}

func (d Date) After(o Date) bool {
	return o.Before(d)
}

// SameDate compares year, month and day only.
func SameDate(a, b Date) bool {
	return a.Year == b.Year && a.Month == b.Month && a.Day == b.Day
}

// SameDay reports whether a and b fall on the same calendar date, each read
// in its own location.
func SameDay(a, b time.Time) bool {
	return SameDate(DateOf(a), DateOf(b))
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDateStrict(string(b))
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}
