package api

import (
	"fmt"
	"net/http"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
	"github.com/SergeyKozhin/workspace-calendar/internal/pkg/validator"
)

type agendaItemReq struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Speaker     string `json:"speaker"`
}

type eventCreateReq struct {
	Title       string              `json:"title"`
	Date        string              `json:"date"`
	StartTime   string              `json:"start_time"`
	EndTime     string              `json:"end_time"`
	Location    string              `json:"location"`
	Description string              `json:"description"`
	Category    model.Category      `json:"category"`
	Color       string              `json:"color"`
	Repeat      model.RepeatType    `json:"repeat"`
	RepeatUntil string              `json:"repeat_until"`
	Organizers  []int64             `json:"organizers"`
	Attendees   []attendeeJSON      `json:"attendees"`
	Agenda      []agendaItemReq     `json:"agenda"`
	Checklist   []checklistItemJSON `json:"checklist"`
}

type eventPatchReq struct {
	Title       *string             `json:"title"`
	Date        *string             `json:"date"`
	StartTime   *string             `json:"start_time"`
	EndTime     *string             `json:"end_time"`
	Location    *string             `json:"location"`
	Description *string             `json:"description"`
	Category    *model.Category     `json:"category"`
	Color       *string             `json:"color"`
	Repeat      *model.RepeatType   `json:"repeat"`
	RepeatUntil *string             `json:"repeat_until"`
	Organizers  []int64             `json:"organizers"`
	Attendees   []attendeeJSON      `json:"attendees"`
	Agenda      []agendaItemReq     `json:"agenda"`
	Checklist   []checklistItemJSON `json:"checklist"`
}

// parseDateField reads a date in the display zone, so an instant such as
// 2024-06-01T20:00:00Z lands on its Singapore date.
func (a *Api) parseDateField(v *validator.Validator, key, value string) caltime.Date {
	d, err := a.zone.ParseDateStrict(value)
	v.Check(err == nil, key, "must be a valid date")
	return d
}

func parseClockField(v *validator.Validator, key, value string) caltime.Clock {
	c, err := caltime.ParseClock(value)
	v.Check(err == nil, key, "must be a valid time in HH:MM format")
	return c
}

// mapAttendees keeps nil and empty input apart: nil leaves a patch untouched.
func mapAttendees(in []attendeeJSON) []*model.Attendee {
	if in == nil {
		return nil
	}

	res := make([]*model.Attendee, len(in))
	for i, a := range in {
		res[i] = &model.Attendee{UserID: a.UserID, Status: model.ResponseStatus(a.Status)}
	}
	return res
}

func mapAgenda(v *validator.Validator, in []agendaItemReq) []*model.AgendaItem {
	if in == nil {
		return nil
	}

	res := make([]*model.AgendaItem, len(in))
	for i, item := range in {
		res[i] = &model.AgendaItem{
			Time:        parseClockField(v, fmt.Sprintf("agenda[%d].time", i), item.Time),
			Title:       item.Title,
			Description: item.Description,
			Speaker:     item.Speaker,
		}
	}
	return res
}

func mapChecklist(in []checklistItemJSON) []*model.ChecklistItem {
	if in == nil {
		return nil
	}

	res := make([]*model.ChecklistItem, len(in))
	for i, item := range in {
		res[i] = &model.ChecklistItem{Task: item.Task, Completed: item.Completed, AssignedTo: item.AssignedTo}
	}
	return res
}

func (a *Api) createEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	workspaceID, ok := r.Context().Value(contextKeyWorkspace).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveWorkspace)
		return
	}

	req := &eventCreateReq{}
	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	info := &model.EventCreate{
		Title:       req.Title,
		Date:        a.parseDateField(v, "date", req.Date),
		Start:       parseClockField(v, "start_time", req.StartTime),
		End:         parseClockField(v, "end_time", req.EndTime),
		Location:    req.Location,
		Description: req.Description,
		Category:    req.Category,
		Color:       req.Color,
		Repeat:      req.Repeat,
		Organizers:  req.Organizers,
		Attendees:   mapAttendees(req.Attendees),
		Agenda:      mapAgenda(v, req.Agenda),
		Checklist:   mapChecklist(req.Checklist),
	}
	if req.RepeatUntil != "" {
		until := a.parseDateField(v, "repeat_until", req.RepeatUntil)
		info.RepeatUntil = &until
	}

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	event, err := a.eventsService.CreateEvent(r.Context(), workspaceID, userID, info)
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("create event: %w", err))
		return
	}

	if err := a.writeJSON(w, http.StatusCreated, mapToEventResp(event), nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) getEventHandler(w http.ResponseWriter, r *http.Request) {
	event, ok := r.Context().Value(contextKeyEvent).(*model.Event)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveEvent)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, mapToEventResp(event), nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) updateEventHandler(w http.ResponseWriter, r *http.Request) {
	event, ok := r.Context().Value(contextKeyEvent).(*model.Event)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveEvent)
		return
	}

	req := &eventPatchReq{}
	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	patch := &model.EventPatch{
		Title:       req.Title,
		Location:    req.Location,
		Description: req.Description,
		Category:    req.Category,
		Color:       req.Color,
		Repeat:      req.Repeat,
		Organizers:  req.Organizers,
		Attendees:   mapAttendees(req.Attendees),
		Agenda:      mapAgenda(v, req.Agenda),
		Checklist:   mapChecklist(req.Checklist),
	}
	if req.Date != nil {
		d := a.parseDateField(v, "date", *req.Date)
		patch.Date = &d
	}
	if req.StartTime != nil {
		c := parseClockField(v, "start_time", *req.StartTime)
		patch.Start = &c
	}
	if req.EndTime != nil {
		c := parseClockField(v, "end_time", *req.EndTime)
		patch.End = &c
	}
	if req.RepeatUntil != nil {
		// an empty string clears the end of the series
		var until caltime.Date
		if *req.RepeatUntil != "" {
			until = a.parseDateField(v, "repeat_until", *req.RepeatUntil)
		}
		patch.RepeatUntil = &until
	}

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	updated, err := a.eventsService.UpdateEvent(r.Context(), event.ID, patch)
	if err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("update event: %w", err))
		return
	}

	if err := a.writeJSON(w, http.StatusOK, mapToEventResp(updated), nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	event, ok := r.Context().Value(contextKeyEvent).(*model.Event)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveEvent)
		return
	}

	if err := a.eventsService.DeleteEvent(r.Context(), event.ID); err != nil {
		a.serviceErrorResponse(w, r, fmt.Errorf("delete event: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) getEventsHandler(w http.ResponseWriter, r *http.Request) {
	occurrences, ok := a.occurrencesInRange(w, r)
	if !ok {
		return
	}

	resp, err := mapSlice(occurrences, mapToOccurrenceResp)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

// occurrencesInRange reads the workspace occurrences between the from and to
// query dates, both inclusive. It writes the error response itself.
func (a *Api) occurrencesInRange(w http.ResponseWriter, r *http.Request) ([]*model.Occurrence, bool) {
	workspaceID, ok := r.Context().Value(contextKeyWorkspace).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveWorkspace)
		return nil, false
	}

	from, to, err := a.parseRange(r)
	if err != nil {
		a.badRequestResponse(w, r, err)
		return nil, false
	}

	start, _ := a.zone.DayBounds(from)
	_, end := a.zone.DayBounds(to)

	occurrences, err := a.eventsService.GetEvents(r.Context(), model.EventsFilter{
		WorkspaceIDs: []int64{workspaceID},
		From:         start,
		To:           end,
	})
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("get events: %w", err))
		return nil, false
	}

	return occurrences, true
}
