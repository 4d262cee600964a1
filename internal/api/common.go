package api

import (
	"time"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

type attendeeJSON struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status,omitempty"`
}

type agendaItemJSON struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Speaker     string `json:"speaker,omitempty"`
}

type checklistItemJSON struct {
	Task       string `json:"task"`
	Completed  bool   `json:"completed"`
	AssignedTo *int64 `json:"assigned_to,omitempty"`
}

type eventResp struct {
	ID          int64               `json:"id"`
	WorkspaceID int64               `json:"workspace_id"`
	CreatorID   int64               `json:"creator_id"`
	Title       string              `json:"title"`
	Date        caltime.Date        `json:"date"`
	StartTime   caltime.Clock       `json:"start_time"`
	EndTime     caltime.Clock       `json:"end_time"`
	Location    string              `json:"location,omitempty"`
	Description string              `json:"description,omitempty"`
	Category    model.Category      `json:"category"`
	Color       string              `json:"color"`
	Repeat      model.RepeatType    `json:"repeat"`
	RepeatUntil *caltime.Date       `json:"repeat_until,omitempty"`
	StartsAt    time.Time           `json:"starts_at"`
	EndsAt      time.Time           `json:"ends_at"`
	Organizers  []int64             `json:"organizers"`
	Attendees   []attendeeJSON      `json:"attendees"`
	Agenda      []agendaItemJSON    `json:"agenda"`
	Checklist   []checklistItemJSON `json:"checklist"`
}

type occurrenceResp struct {
	eventResp
	OccurrenceDate caltime.Date `json:"occurrence_date"`
	OccurrenceFrom time.Time    `json:"occurrence_starts_at"`
	OccurrenceTo   time.Time    `json:"occurrence_ends_at"`
}

func mapToEventResp(e *model.Event) *eventResp {
	resp := &eventResp{
		ID:          e.ID,
		WorkspaceID: e.WorkspaceID,
		CreatorID:   e.CreatorID,
		Title:       e.Title,
		Date:        e.Date,
		StartTime:   e.Start,
		EndTime:     e.End,
		Location:    e.Location,
		Description: e.Description,
		Category:    e.Category,
		Color:       e.Color,
		Repeat:      e.Repeat,
		RepeatUntil: e.RepeatUntil,
		StartsAt:    e.StartsAt.UTC(),
		EndsAt:      e.EndsAt.UTC(),
		Organizers:  append([]int64{}, e.Organizers...),
		Attendees:   make([]attendeeJSON, len(e.Attendees)),
		Agenda:      make([]agendaItemJSON, len(e.Agenda)),
		Checklist:   make([]checklistItemJSON, len(e.Checklist)),
	}

	for i, a := range e.Attendees {
		resp.Attendees[i] = attendeeJSON{UserID: a.UserID, Status: string(a.Status)}
	}
	for i, item := range e.Agenda {
		resp.Agenda[i] = agendaItemJSON{
			Time:        item.Time.String(),
			Title:       item.Title,
			Description: item.Description,
			Speaker:     item.Speaker,
		}
	}
	for i, item := range e.Checklist {
		resp.Checklist[i] = checklistItemJSON{
			Task:       item.Task,
			Completed:  item.Completed,
			AssignedTo: item.AssignedTo,
		}
	}

	return resp
}

func mapToOccurrenceResp(o *model.Occurrence) (*occurrenceResp, error) {
	return &occurrenceResp{
		eventResp:      *mapToEventResp(o.Event),
		OccurrenceDate: o.Date,
		OccurrenceFrom: o.StartsAt.UTC(),
		OccurrenceTo:   o.EndsAt.UTC(),
	}, nil
}
