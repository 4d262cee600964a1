package caltime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const ClockLayout = "15:04"

var ErrInvalidClock = errors.New("invalid time of day")

// Clock is a wall clock time of day with minute precision.
// 24:00 is allowed and means the end of the day.
type Clock struct {
	Hour   int
	Minute int
}

var (
	Midnight  = Clock{}
	EndOfDay  = Clock{Hour: 24}
	clockForm = []string{"15:04", "15:04:05"}
)

func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// ClockFromMinutes converts minutes since midnight.
func ClockFromMinutes(m int) Clock {
	return Clock{Hour: m / 60, Minute: m % 60}
}

// ParseClock parses HH:MM (seconds are accepted and dropped).
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return EndOfDay, nil
	}

	for _, layout := range clockForm {
		t, err := time.Parse(layout, s)
		if err == nil {
			return ClockOf(t), nil
		}
	}

	return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) Valid() bool {
	if c.Hour == 24 {
		return c.Minute == 0
	}
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

func (c Clock) Before(o Clock) bool {
	return c.Minutes() < o.Minutes()
}

func (c Clock) After(o Clock) bool {
	return c.Minutes() > o.Minutes()
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}
