package availability

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3
)

var day = caltime.Date{Year: 2024, Month: time.June, Day: 3}

func testZone(t *testing.T) *caltime.Zone {
	t.Helper()

	zone, err := caltime.NewZone("Asia/Singapore", nil)
	if err != nil {
		t.Fatalf("zone: %v", err)
	}
	return zone
}

func occurrence(zone *caltime.Zone, id int64, start, end caltime.Clock, organizers []int64, attendees ...int64) *model.Occurrence {
	e := &model.Event{ID: id}
	e.Organizers = organizers
	for _, a := range attendees {
		e.Attendees = append(e.Attendees, &model.Attendee{UserID: a, Status: model.StatusAccepted})
	}
	return &model.Occurrence{
		Event:    e,
		Date:     day,
		StartsAt: zone.Instant(day, start),
		EndsAt:   zone.Instant(day, end),
	}
}

func clock(h, m int) caltime.Clock {
	return caltime.Clock{Hour: h, Minute: m}
}

func containsInterval(intervals []model.Interval, start, end caltime.Clock) bool {
	for _, iv := range intervals {
		if !iv.Start.After(start) && !iv.End.Before(end) {
			return true
		}
	}
	return false
}

func overlaps(intervals []model.Interval, start, end caltime.Clock) bool {
	for _, iv := range intervals {
		if iv.Start.Before(end) && iv.End.After(start) {
			return true
		}
	}
	return false
}

func freeTicks(a *model.Availability) int {
	n := 0
	for _, iv := range a.Free {
		n += (iv.End.Minutes() - iv.Start.Minutes()) / TickMinutes
	}
	return n
}

func TestAliceBusyBobFree(t *testing.T) {
	zone := testZone(t)
	occurrences := []*model.Occurrence{
		occurrence(zone, 1, clock(9, 0), clock(10, 0), []int64{alice}),
	}

	got := ComputeFree(zone, zap.NewNop().Sugar(), []int64{alice, bob}, occurrences, day)

	if overlaps(got.Free, clock(9, 0), clock(10, 0)) {
		t.Fatalf("free=%v includes 09:00-10:00", got.Free)
	}
	if !containsInterval(got.Free, clock(8, 0), clock(9, 0)) {
		t.Fatalf("free=%v misses 08:00-09:00", got.Free)
	}

	want := []model.Interval{
		{Start: caltime.Midnight, End: clock(9, 0)},
		{Start: clock(10, 0), End: caltime.EndOfDay},
	}
	if len(got.Free) != len(want) {
		t.Fatalf("free=%v want=%v", got.Free, want)
	}
	for i := range want {
		if got.Free[i] != want[i] {
			t.Fatalf("free=%v want=%v", got.Free, want)
		}
	}

	if len(got.Busy[alice]) != 1 || got.Busy[alice][0] != (model.Interval{Start: clock(9, 0), End: clock(10, 0)}) {
		t.Fatalf("alice busy=%v", got.Busy[alice])
	}
	if len(got.Busy[bob]) != 0 {
		t.Fatalf("bob busy=%v", got.Busy[bob])
	}
	if got.Vacuous {
		t.Fatalf("vacuous=true for a non-empty roster")
	}
}

func TestAttendeeIsBusyAndPartialTicks(t *testing.T) {
	zone := testZone(t)
	occurrences := []*model.Occurrence{
		// ticks are sampled at their start, so only 09:15 and 09:30 fall inside
		occurrence(zone, 1, clock(9, 10), clock(9, 40), nil, bob),
	}

	got := ComputeFree(zone, nil, []int64{bob}, occurrences, day)

	want := model.Interval{Start: clock(9, 15), End: clock(9, 45)}
	if len(got.Busy[bob]) != 1 || got.Busy[bob][0] != want {
		t.Fatalf("busy=%v want=%v", got.Busy[bob], want)
	}
}

func TestAddingUserNeverAddsFreeTime(t *testing.T) {
	zone := testZone(t)
	occurrences := []*model.Occurrence{
		occurrence(zone, 1, clock(9, 0), clock(10, 0), []int64{alice}),
		occurrence(zone, 2, clock(13, 0), clock(15, 30), nil, bob),
		occurrence(zone, 3, clock(14, 0), clock(18, 0), []int64{carol}, alice),
	}

	rosters := [][]int64{{alice}, {alice, bob}, {alice, bob, carol}}
	prev := Ticks + 1
	for _, roster := range rosters {
		got := freeTicks(ComputeFree(zone, nil, roster, occurrences, day))
		if got > prev {
			t.Fatalf("roster=%v free ticks=%d grew from %d", roster, got, prev)
		}
		prev = got
	}
}

// freeSet expands free intervals back into ticks.
func freeSet(a *model.Availability) [Ticks]bool {
	var res [Ticks]bool
	for _, iv := range a.Free {
		for m := iv.Start.Minutes(); m < iv.End.Minutes(); m += TickMinutes {
			res[m/TickMinutes] = true
		}
	}
	return res
}

func TestAddingEventNeverAddsFreeTicks(t *testing.T) {
	zone := testZone(t)
	roster := []int64{alice, bob}

	added := []*model.Occurrence{
		occurrence(zone, 1, clock(9, 0), clock(10, 0), []int64{alice}),
		occurrence(zone, 2, clock(11, 0), clock(12, 0), nil, bob),
		occurrence(zone, 3, clock(9, 30), clock(11, 15), []int64{bob}),
		occurrence(zone, 4, clock(20, 0), clock(21, 0), []int64{carol}),
		occurrence(zone, 5, clock(23, 45), caltime.EndOfDay, nil, alice),
	}

	var occurrences []*model.Occurrence
	prev := freeSet(ComputeFree(zone, nil, roster, occurrences, day))
	for _, o := range added {
		occurrences = append(occurrences, o)
		got := freeSet(ComputeFree(zone, nil, roster, occurrences, day))

		for tick := 0; tick < Ticks; tick++ {
			if got[tick] && !prev[tick] {
				t.Fatalf("event %d freed tick %d", o.Event.ID, tick)
			}
		}
		prev = got
	}

	if prev[11*60/TickMinutes] || !prev[12*60/TickMinutes] {
		t.Fatalf("11:00 free=%v 12:00 free=%v want=false true", prev[11*60/TickMinutes], prev[12*60/TickMinutes])
	}
	if !prev[20*60/TickMinutes] {
		t.Fatalf("event outside the roster took 20:00")
	}
}

func TestEmptyRosterIsVacuous(t *testing.T) {
	zone := testZone(t)
	occurrences := []*model.Occurrence{
		occurrence(zone, 1, clock(9, 0), clock(10, 0), []int64{alice}),
	}

	got := ComputeFree(zone, nil, nil, occurrences, day)

	if !got.Vacuous {
		t.Fatalf("vacuous=false want=true")
	}
	if len(got.Free) != 1 || got.Free[0] != (model.Interval{Start: caltime.Midnight, End: caltime.EndOfDay}) {
		t.Fatalf("free=%v want whole day", got.Free)
	}
}

func TestMalformedOccurrenceIsSkipped(t *testing.T) {
	zone := testZone(t)
	broken := occurrence(zone, 1, clock(10, 0), clock(9, 0), []int64{alice})
	missing := &model.Occurrence{Event: &model.Event{ID: 2, EventCreate: model.EventCreate{Organizers: []int64{alice}}}}
	good := occurrence(zone, 3, clock(12, 0), clock(13, 0), []int64{alice})

	got := ComputeFree(zone, zap.NewNop().Sugar(), []int64{alice}, []*model.Occurrence{broken, nil, missing, good}, day)

	if len(got.Busy[alice]) != 1 || got.Busy[alice][0] != (model.Interval{Start: clock(12, 0), End: clock(13, 0)}) {
		t.Fatalf("busy=%v want only 12:00-13:00", got.Busy[alice])
	}
}

func TestOccurrenceFromPreviousDayIsClipped(t *testing.T) {
	zone := testZone(t)
	o := &model.Occurrence{
		Event:    &model.Event{ID: 1, EventCreate: model.EventCreate{Organizers: []int64{alice}}},
		StartsAt: zone.Instant(day.AddDays(-1), clock(23, 0)),
		EndsAt:   zone.Instant(day, clock(1, 0)),
	}

	got := ComputeFree(zone, nil, []int64{alice}, []*model.Occurrence{o}, day)

	if len(got.Free) != 1 || got.Free[0].Start != clock(1, 0) {
		t.Fatalf("free=%v want from 01:00", got.Free)
	}
}

type stubSource struct {
	calls  int
	filter model.EventsFilter
	res    []*model.Occurrence
}

func (s *stubSource) GetEvents(_ context.Context, filter model.EventsFilter) ([]*model.Occurrence, error) {
	s.calls++
	s.filter = filter
	return s.res, nil
}

func TestEngineFreeIntervals(t *testing.T) {
	zone := testZone(t)
	src := &stubSource{res: []*model.Occurrence{
		occurrence(zone, 1, clock(9, 0), clock(10, 0), []int64{alice}),
	}}
	engine := NewEngine(zone, zap.NewNop().Sugar(), src)

	got, err := engine.FreeIntervals(context.Background(), 7, []int64{alice, bob}, day)
	if err != nil {
		t.Fatalf("FreeIntervals: %v", err)
	}
	if overlaps(got.Free, clock(9, 0), clock(10, 0)) {
		t.Fatalf("free=%v", got.Free)
	}

	from, to := zone.DayBounds(day)
	if !src.filter.From.Equal(from) || !src.filter.To.Equal(to) || src.filter.WorkspaceIDs[0] != 7 {
		t.Fatalf("filter=%+v", src.filter)
	}

	if _, err := engine.FreeIntervals(context.Background(), 7, nil, day); err != nil {
		t.Fatalf("FreeIntervals: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("calls=%d want store untouched for an empty roster", src.calls)
	}
}
