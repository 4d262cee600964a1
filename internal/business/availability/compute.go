package availability

import (
	"time"

	"go.uber.org/zap"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

const (
	TickMinutes = 15
	Ticks       = 24 * 60 / TickMinutes
)

// ComputeFree marks tick t busy for a user when the start of t lies in
// [start, end) of an occurrence the user organizes or attends, and free when
// no roster user is busy. Runs of free ticks become intervals.
//
// Occurrences with a missing or non-positive time range are skipped with a
// warning.
func ComputeFree(zone *caltime.Zone, logger *zap.SugaredLogger, roster []int64, occurrences []*model.Occurrence, day caltime.Date) *model.Availability {
	res := &model.Availability{
		Date:    day,
		UserIDs: roster,
		Busy:    make(map[int64][]model.Interval, len(roster)),
		Vacuous: len(roster) == 0,
	}

	busy := make(map[int64]*[Ticks]bool, len(roster))
	for _, id := range roster {
		busy[id] = &[Ticks]bool{}
	}

	for _, o := range occurrences {
		if o == nil || o.Event == nil || o.StartsAt.IsZero() || o.EndsAt.IsZero() || !o.EndsAt.After(o.StartsAt) {
			if logger != nil {
				logger.Warnw("skipping malformed event in availability", "occurrence", describe(o))
			}
			continue
		}

		startMin := minuteOfDay(zone, day, o.StartsAt.UTC())
		endMin := minuteOfDay(zone, day, o.EndsAt.UTC())
		if endMin <= 0 || startMin >= 24*60 {
			continue
		}

		for _, userID := range o.Event.Participants() {
			ticks, ok := busy[userID]
			if !ok {
				continue
			}
			for t := 0; t < Ticks; t++ {
				m := t * TickMinutes
				if m >= startMin && m < endMin {
					ticks[t] = true
				}
			}
		}
	}

	var free [Ticks]bool
	for t := range free {
		free[t] = true
		for _, ticks := range busy {
			if ticks[t] {
				free[t] = false
				break
			}
		}
	}

	res.Free = runs(free)
	for _, id := range roster {
		res.Busy[id] = runs(*busy[id])
	}

	return res
}

// minuteOfDay is the display-local wall clock of t in minutes on day,
// clamped to [0, 1440] when t falls on another date.
func minuteOfDay(zone *caltime.Zone, day caltime.Date, t time.Time) int {
	d := zone.Date(t)
	switch {
	case d.Before(day):
		return 0
	case d.After(day):
		return 24 * 60
	}
	return zone.Clock(t).Minutes()
}

// runs merges consecutive set ticks into intervals.
func runs(ticks [Ticks]bool) []model.Interval {
	var res []model.Interval
	start := -1

	for t := 0; t <= Ticks; t++ {
		set := t < Ticks && ticks[t]
		switch {
		case set && start < 0:
			start = t
		case !set && start >= 0:
			res = append(res, model.Interval{
				Start: caltime.ClockFromMinutes(start * TickMinutes),
				End:   caltime.ClockFromMinutes(t * TickMinutes),
			})
			start = -1
		}
	}

	return res
}

func describe(o *model.Occurrence) interface{} {
	if o == nil || o.Event == nil {
		return nil
	}
	return map[string]interface{}{
		"event_id":  o.Event.ID,
		"starts_at": o.StartsAt,
		"ends_at":   o.EndsAt,
	}
}
