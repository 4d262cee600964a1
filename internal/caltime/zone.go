package caltime

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
)

const DefaultZone = "Asia/Singapore"

// storedLayouts are tried when a stored instant has no offset. Such values
// are read as UTC, never as display-local time.
var storedLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Zone is the fixed display timezone together with the clock used for "now".
type Zone struct {
	loc    *time.Location
	now    func() time.Time
	logger *zap.SugaredLogger
}

func NewZone(name string, logger *zap.SugaredLogger) (*Zone, error) {
	if name == "" {
		name = DefaultZone
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", name, err)
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Zone{loc: loc, now: time.Now, logger: logger}, nil
}

// WithClock returns a copy of z reading "now" from now.
func (z *Zone) WithClock(now func() time.Time) *Zone {
	c := *z
	c.now = now
	return &c
}

func (z *Zone) Location() *time.Location {
	return z.loc
}

func (z *Zone) Name() string {
	return z.loc.String()
}

// Now is the current instant in the display zone.
func (z *Zone) Now() time.Time {
	return z.now().In(z.loc)
}

func (z *Zone) Today() Date {
	return DateOf(z.Now())
}

// Local projects t into the display zone.
func (z *Zone) Local(t time.Time) time.Time {
	return t.In(z.loc)
}

// Date is the display-local calendar date of t.
func (z *Zone) Date(t time.Time) Date {
	return DateOf(t.In(z.loc))
}

// Clock is the display-local wall clock of t.
func (z *Zone) Clock(t time.Time) Clock {
	return ClockOf(t.In(z.loc))
}

// Instant is the UTC instant of wall clock c on date d in the display zone.
// 24:00 maps to midnight of the following day.
func (z *Zone) Instant(d Date, c Clock) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, z.loc).UTC()
}

// DayBounds returns the UTC instants of the start and end of d in the display zone.
func (z *Zone) DayBounds(d Date) (time.Time, time.Time) {
	return z.Instant(d, Midnight), z.Instant(d.AddDays(1), Midnight)
}

// ParseStored parses an instant read from the store. Values carrying an
// offset keep it, values without one are UTC. The result is in UTC.
func (z *Zone) ParseStored(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}

	for _, layout := range storedLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized instant %q", s)
}

// ParseDateStrict is ParseDateStrict with instants projected into the
// display zone, so 2024-06-01T20:00:00Z is 2024-06-02 in Singapore.
func (z *Zone) ParseDateStrict(s string) (Date, error) {
	return parseDateIn(s, z.loc)
}

// ParseDate never fails: when s matches no known layout the current display
// date is returned and the fallback is logged as a data quality warning.
func (z *Zone) ParseDate(s string) Date {
	d, err := z.ParseDateStrict(s)
	if err != nil {
		today := z.Today()
		z.logger.Warnw("date parse fallback", "input", s, "fallback", today.String(), "err", err)
		return today
	}

	return d
}
