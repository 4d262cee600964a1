package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeyKozhin/workspace-calendar/internal/business/availability"
	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/database/dbtest"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
	"github.com/SergeyKozhin/workspace-calendar/internal/notifications"
	"github.com/SergeyKozhin/workspace-calendar/internal/pkg/jwt"
)

type stubMembers struct {
	members map[int64][]int64
}

func (s *stubMembers) IsMember(_ context.Context, _ database.Queryable, workspaceID, userID int64) (bool, error) {
	for _, id := range s.members[workspaceID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

type stubEvents struct {
	events      map[int64]*model.Event
	occurrences []*model.Occurrence
	createErr   error

	created     *model.EventCreate
	createdBy   int64
	createdIn   int64
	patched     *model.EventPatch
	deleted     int64
	lastFilter  model.EventsFilter
	filterCalls int
}

func (s *stubEvents) CreateEvent(_ context.Context, workspaceID, creatorID int64, info *model.EventCreate) (*model.Event, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created, s.createdIn, s.createdBy = info, workspaceID, creatorID
	return &model.Event{ID: 42, WorkspaceID: workspaceID, CreatorID: creatorID, EventCreate: *info}, nil
}

func (s *stubEvents) UpdateEvent(_ context.Context, id int64, patch *model.EventPatch) (*model.Event, error) {
	s.patched = patch
	e := *s.events[id]
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	return &e, nil
}

func (s *stubEvents) DeleteEvent(_ context.Context, id int64) error {
	s.deleted = id
	return nil
}

func (s *stubEvents) GetEvent(_ context.Context, id int64) (*model.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, model.ErrNoRecord
	}
	return e, nil
}

func (s *stubEvents) GetEvents(_ context.Context, filter model.EventsFilter) ([]*model.Occurrence, error) {
	s.lastFilter = filter
	s.filterCalls++
	return s.occurrences, nil
}

type stubCron struct {
	report *notifications.Report
	err    error
}

func (s *stubCron) Execute(context.Context) (*notifications.Report, error) {
	return s.report, s.err
}

type fixture struct {
	api    *Api
	zone   *caltime.Zone
	events *stubEvents
	cron   *stubCron
}

func newFixture(t *testing.T, jwts tokenVerifier) *fixture {
	t.Helper()

	logger := zap.NewNop().Sugar()
	zone, err := caltime.NewZone(caltime.DefaultZone, logger)
	if err != nil {
		t.Fatalf("NewZone: %v", err)
	}
	zone = zone.WithClock(func() time.Time { return time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC) })

	f := &fixture{
		zone: zone,
		events: &stubEvents{events: map[int64]*model.Event{
			7: {ID: 7, WorkspaceID: 1, EventCreate: model.EventCreate{Title: "Standup", Category: model.CategoryMeeting}},
			8: {ID: 8, WorkspaceID: 2, EventCreate: model.EventCreate{Title: "Foreign"}},
		}},
		cron: &stubCron{},
	}
	members := &stubMembers{members: map[int64][]int64{1: {10, 11}, 2: {20}}}

	a, err := NewApi(logger, zone, jwts, dbtest.New(), members, f.events,
		availability.NewEngine(zone, logger, f.events), f.cron, nil)
	if err != nil {
		t.Fatalf("NewApi: %v", err)
	}
	f.api = a

	return f
}

func (f *fixture) do(method, target, userID string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, target, &buf)
	for k, v := range header {
		req.Header[k] = v
	}
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}

	rec := httptest.NewRecorder()
	f.api.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	res := map[string]interface{}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return res
}

func TestCronTriggerSuccess(t *testing.T) {
	f := newFixture(t, nil)
	local := f.zone.Now()
	f.cron.report = &notifications.Report{
		Summary:       &model.RunSummary{EventsFound: 3, NotificationsSent: 5, Errors: 1},
		Timezone:      f.zone.Name(),
		LocalTime:     local,
		UTCTime:       local.UTC(),
		ExecutionTime: 1500 * time.Millisecond,
	}

	rec := f.do(http.MethodGet, "/cron/upcoming-events", "", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%v want=%v body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	resp := decode(t, rec)
	if resp["success"] != true {
		t.Fatalf("success=%v want=true", resp["success"])
	}
	if resp["timezone"] != "Asia/Singapore" {
		t.Fatalf("timezone=%v want=Asia/Singapore", resp["timezone"])
	}
	if resp["localTime"] != "2025-03-10T10:00:00+08:00" {
		t.Fatalf("localTime=%v want=2025-03-10T10:00:00+08:00", resp["localTime"])
	}
	if resp["utcTime"] != "2025-03-10T02:00:00Z" {
		t.Fatalf("utcTime=%v want=2025-03-10T02:00:00Z", resp["utcTime"])
	}
	if resp["executionTimeMs"] != float64(1500) {
		t.Fatalf("executionTimeMs=%v want=1500", resp["executionTimeMs"])
	}

	result, _ := resp["result"].(map[string]interface{})
	if result["eventsFound"] != float64(3) || result["notificationsSent"] != float64(5) || result["errors"] != float64(1) {
		t.Fatalf("result=%v want eventsFound=3 notificationsSent=5 errors=1", result)
	}
}

func TestCronTriggerFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.cron.err = errors.New("database is down")

	rec := f.do(http.MethodGet, "/cron/upcoming-events", "", nil, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code=%v want=%v", rec.Code, http.StatusInternalServerError)
	}

	resp := decode(t, rec)
	if resp["success"] != false {
		t.Fatalf("success=%v want=false", resp["success"])
	}
	if resp["error"] != "database is down" {
		t.Fatalf("error=%v want=database is down", resp["error"])
	}
	if _, ok := resp["message"].(string); !ok {
		t.Fatalf("message missing in %v", resp)
	}
}

func TestCronAuth(t *testing.T) {
	manager := jwt.NewManager("cron-secret")
	f := newFixture(t, manager)
	f.cron.report = &notifications.Report{Summary: &model.RunSummary{}, LocalTime: f.zone.Now()}

	valid, err := manager.CreateToken("scheduler", time.Minute)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	forged, err := jwt.NewManager("other").CreateToken("scheduler", time.Minute)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no token", header: "", want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + forged, want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + valid, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}

			rec := f.do(http.MethodGet, "/cron/upcoming-events", "", nil, h)
			if rec.Code != tt.want {
				t.Fatalf("code=%v want=%v", rec.Code, tt.want)
			}
		})
	}
}

func TestAuthAndMembership(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name   string
		target string
		user   string
		want   int
	}{
		{name: "no user", target: "/workspaces/1/events", user: "", want: http.StatusUnauthorized},
		{name: "bad user", target: "/workspaces/1/events", user: "abc", want: http.StatusUnauthorized},
		{name: "not a member", target: "/workspaces/1/events", user: "20", want: http.StatusNotFound},
		{name: "member", target: "/workspaces/1/events", user: "10", want: http.StatusOK},
		{name: "foreign event", target: "/events/8", user: "10", want: http.StatusNotFound},
		{name: "missing event", target: "/events/99", user: "10", want: http.StatusNotFound},
		{name: "own event", target: "/events/7", user: "10", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodGet, tt.target, tt.user, nil, nil)
			if rec.Code != tt.want {
				t.Fatalf("code=%v want=%v body=%s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestCreateEvent(t *testing.T) {
	f := newFixture(t, nil)

	body := map[string]interface{}{
		"title":      "Planning",
		"date":       "2025-03-12",
		"start_time": "09:30",
		"end_time":   "10:15",
		"category":   "meeting",
		"organizers": []int64{10},
		"attendees":  []map[string]interface{}{{"user_id": 11, "status": "accepted"}},
		"agenda":     []map[string]interface{}{{"time": "09:30", "title": "Intro"}},
	}

	rec := f.do(http.MethodPost, "/workspaces/1/events", "10", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code=%v want=%v body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	if f.events.createdIn != 1 || f.events.createdBy != 10 {
		t.Fatalf("workspace=%v creator=%v want=1 10", f.events.createdIn, f.events.createdBy)
	}

	got := f.events.created
	if got.Date != (caltime.Date{Year: 2025, Month: time.March, Day: 12}) {
		t.Fatalf("date=%v want=2025-03-12", got.Date)
	}
	if got.Start != (caltime.Clock{Hour: 9, Minute: 30}) || got.End != (caltime.Clock{Hour: 10, Minute: 15}) {
		t.Fatalf("start=%v end=%v want=09:30 10:15", got.Start, got.End)
	}
	if len(got.Attendees) != 1 || got.Attendees[0].Status != model.StatusAccepted {
		t.Fatalf("attendees=%v want one accepted", got.Attendees)
	}
	if len(got.Agenda) != 1 || got.Agenda[0].Time != (caltime.Clock{Hour: 9, Minute: 30}) {
		t.Fatalf("agenda=%v want one item at 09:30", got.Agenda)
	}

	resp := decode(t, rec)
	if resp["start_time"] != "09:30" || resp["date"] != "2025-03-12" {
		t.Fatalf("start_time=%v date=%v want=09:30 2025-03-12", resp["start_time"], resp["date"])
	}
}

func TestCreateEventDateInstantUsesDisplayDate(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/workspaces/1/events", "10", map[string]interface{}{
		"title":      "Late sync",
		"date":       "2024-06-01T20:00:00Z",
		"start_time": "09:00",
		"end_time":   "10:00",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code=%v want=%v body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	want := caltime.Date{Year: 2024, Month: time.June, Day: 2}
	if f.events.created.Date != want {
		t.Fatalf("date=%v want=%v", f.events.created.Date, want)
	}
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/workspaces/1/events", "10", map[string]interface{}{
		"title":      "Planning",
		"date":       "someday",
		"start_time": "9.30",
		"end_time":   "10:15",
	}, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code=%v want=%v", rec.Code, http.StatusUnprocessableEntity)
	}

	errs, _ := decode(t, rec)["error"].(map[string]interface{})
	for _, key := range []string{"date", "start_time"} {
		if _, ok := errs[key]; !ok {
			t.Fatalf("errors=%v missing %v", errs, key)
		}
	}
	if f.events.created != nil {
		t.Fatalf("service called despite invalid input")
	}

	f.events.createErr = &model.ValidationError{Errors: map[string]string{"end": "end must be after start"}}
	rec = f.do(http.MethodPost, "/workspaces/1/events", "10", map[string]interface{}{
		"title":      "Planning",
		"date":       "2025-03-12",
		"start_time": "11:00",
		"end_time":   "10:00",
	}, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code=%v want=%v", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestCreateEventUnknownField(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/workspaces/1/events", "10", map[string]interface{}{"titel": "x"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code=%v want=%v", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateEventPatch(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPatch, "/events/7", "11", map[string]interface{}{
		"title":     "Daily",
		"attendees": []interface{}{},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%v want=%v body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	p := f.events.patched
	if p.Title == nil || *p.Title != "Daily" {
		t.Fatalf("title=%v want=Daily", p.Title)
	}
	if p.Attendees == nil || len(p.Attendees) != 0 {
		t.Fatalf("attendees=%v want empty replacement", p.Attendees)
	}
	if p.Organizers != nil || p.Agenda != nil || p.Date != nil || p.Start != nil {
		t.Fatalf("untouched fields set in patch %+v", p)
	}
}

func TestDeleteEvent(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodDelete, "/events/7", "10", nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code=%v want=%v", rec.Code, http.StatusNoContent)
	}
	if f.events.deleted != 7 {
		t.Fatalf("deleted=%v want=7", f.events.deleted)
	}
}

func TestGetEventsRange(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/workspaces/1/events?from=2025-03-10&to=2025-03-11", "10", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%v want=%v", rec.Code, http.StatusOK)
	}

	// display-local days 10 and 11 March in Singapore
	wantFrom := time.Date(2025, 3, 9, 16, 0, 0, 0, time.UTC)
	wantTo := time.Date(2025, 3, 11, 16, 0, 0, 0, time.UTC)
	if !f.events.lastFilter.From.Equal(wantFrom) || !f.events.lastFilter.To.Equal(wantTo) {
		t.Fatalf("from=%v to=%v want=%v %v", f.events.lastFilter.From, f.events.lastFilter.To, wantFrom, wantTo)
	}

	rec = f.do(http.MethodGet, "/workspaces/1/events?from=2025-03-11&to=2025-03-10", "10", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code=%v want=%v", rec.Code, http.StatusBadRequest)
	}
}

func TestAvailabilityVacuous(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/workspaces/1/availability?date=2025-03-10", "10", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%v want=%v body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	resp := decode(t, rec)
	if resp["vacuous"] != true {
		t.Fatalf("vacuous=%v want=true", resp["vacuous"])
	}
	if f.events.filterCalls != 0 {
		t.Fatalf("store read %v times for an empty roster", f.events.filterCalls)
	}

	rec = f.do(http.MethodGet, "/workspaces/1/availability", "10", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code=%v want=%v", rec.Code, http.StatusBadRequest)
	}
}

func TestAvailabilityBusy(t *testing.T) {
	f := newFixture(t, nil)
	day := caltime.Date{Year: 2025, Month: time.March, Day: 10}
	e := &model.Event{ID: 7, WorkspaceID: 1, EventCreate: model.EventCreate{Organizers: []int64{10}}}
	f.events.occurrences = []*model.Occurrence{{
		Event:    e,
		Date:     day,
		StartsAt: f.zone.Instant(day, caltime.Clock{Hour: 9}),
		EndsAt:   f.zone.Instant(day, caltime.Clock{Hour: 10}),
	}}

	rec := f.do(http.MethodGet, "/workspaces/1/availability?date=2025-03-10&user_ids=10,11", "10", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%v want=%v body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	resp := decode(t, rec)
	if resp["vacuous"] != false {
		t.Fatalf("vacuous=%v want=false", resp["vacuous"])
	}
	free, _ := resp["free"].([]interface{})
	if len(free) != 2 {
		t.Fatalf("free=%v want two intervals around 09:00-10:00", free)
	}
}

func TestCalendarExport(t *testing.T) {
	f := newFixture(t, nil)
	day := caltime.Date{Year: 2025, Month: time.March, Day: 10}
	f.events.occurrences = []*model.Occurrence{{
		Event:    f.events.events[7],
		Date:     day,
		StartsAt: f.zone.Instant(day, caltime.Clock{Hour: 9}),
		EndsAt:   f.zone.Instant(day, caltime.Clock{Hour: 10}),
	}}

	rec := f.do(http.MethodGet, "/workspaces/1/calendar.ics?from=2025-03-10&to=2025-03-10", "10", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%v want=%v", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Fatalf("content type=%v want=text/calendar", ct)
	}
	if !strings.Contains(rec.Body.String(), "SUMMARY:Standup") {
		t.Fatalf("body=%s want SUMMARY:Standup", rec.Body.String())
	}
}

func TestEventsStreamUnconfigured(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/workspaces/1/events/stream", "10", nil, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code=%v want=%v", rec.Code, http.StatusServiceUnavailable)
	}
}
