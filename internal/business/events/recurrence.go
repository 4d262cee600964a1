package events

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

// getRule builds the recurrence of e. The series starts at the display-local
// wall clock of the first occurrence, so that wall clock stays fixed for every
// occurrence. Until covers the whole of the RepeatUntil date.
func getRule(e *model.Event, loc *time.Location) (*rrule.RRule, error) {
	var freq rrule.Frequency
	var interval int

	switch e.Repeat {
	case model.RepeatTypeNone:
		return nil, nil
	case model.RepeatTypeEveryDay:
		freq = rrule.DAILY
		interval = 1
	case model.RepeatTypeEveryThreeDays:
		freq = rrule.DAILY
		interval = 3
	case model.RepeatTypeEveryWeek:
		freq = rrule.WEEKLY
		interval = 1
	case model.RepeatTypeEveryMonth:
		freq = rrule.MONTHLY
		interval = 1
	case model.RepeatTypeEveryYear:
		freq = rrule.YEARLY
		interval = 1
	default:
		return nil, fmt.Errorf("unknown repeat type: %v", e.Repeat)
	}

	opt := rrule.ROption{
		Freq:     freq,
		Interval: interval,
		Dtstart:  time.Date(e.Date.Year, e.Date.Month, e.Date.Day, e.Start.Hour, e.Start.Minute, 0, 0, loc),
	}

	if e.RepeatUntil != nil && !e.RepeatUntil.IsZero() {
		u := e.RepeatUntil
		opt.Until = time.Date(u.Year, u.Month, u.Day, 23, 59, 59, 0, loc)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}

	return rule, nil
}

// expand returns the occurrences of e intersecting [from, to).
func expand(e *model.Event, zone *caltime.Zone, from, to time.Time) ([]*model.Occurrence, error) {
	duration := e.EndsAt.Sub(e.StartsAt)

	if e.Repeat == model.RepeatTypeNone {
		if !e.StartsAt.Before(to) || !e.EndsAt.After(from) {
			return nil, nil
		}
		return []*model.Occurrence{{
			Event:    e,
			Date:     e.Date,
			StartsAt: e.StartsAt,
			EndsAt:   e.EndsAt,
		}}, nil
	}

	rule, err := getRule(e, zone.Location())
	if err != nil {
		return nil, err
	}

	var res []*model.Occurrence
	for _, start := range rule.Between(from.Add(-duration), to, true) {
		end := start.Add(duration)
		if !start.Before(to) || !end.After(from) {
			continue
		}

		res = append(res, &model.Occurrence{
			Event:    e,
			Date:     zone.Date(start),
			StartsAt: start.UTC(),
			EndsAt:   end.UTC(),
		})
	}

	return res, nil
}
