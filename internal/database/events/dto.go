package events

import (
	"time"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

type eventDTO struct {
	ID          int64      `db:"id"`
	WorkspaceID int64      `db:"workspace_id"`
	CreatorID   int64      `db:"creator_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Location    string     `db:"location"`
	Category    string     `db:"category"`
	Color       string     `db:"color"`
	StartsAt    time.Time  `db:"starts_at"`
	EndsAt      time.Time  `db:"ends_at"`
	RepeatType  int        `db:"repeat_type"`
	RepeatUntil *time.Time `db:"repeat_until"`
	CreatedAt   time.Time  `db:"created_at"`
}

type participantDTO struct {
	EventID int64  `db:"event_id"`
	UserID  int64  `db:"user_id"`
	Role    string `db:"role"`
	Status  string `db:"status"`
}

type agendaDTO struct {
	EventID     int64  `db:"event_id"`
	Position    int    `db:"position"`
	TimeLabel   string `db:"time_label"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Speaker     string `db:"speaker"`
}

type checklistDTO struct {
	EventID    int64  `db:"event_id"`
	Position   int    `db:"position"`
	Task       string `db:"task"`
	Completed  bool   `db:"completed"`
	AssignedTo *int64 `db:"assigned_to"`
}

func (r *Repository) mapToEvent(dto *eventDTO) *model.Event {
	start := dto.StartsAt.UTC()
	end := dto.EndsAt.UTC()

	date := r.zone.Date(start)
	endClock := r.zone.Clock(end)
	if r.zone.Date(end).After(date) && endClock == caltime.Midnight {
		endClock = caltime.EndOfDay
	}

	var until *caltime.Date
	if dto.RepeatUntil != nil {
		d := caltime.DateOf(*dto.RepeatUntil)
		until = &d
	}

	return &model.Event{
		ID:          dto.ID,
		WorkspaceID: dto.WorkspaceID,
		CreatorID:   dto.CreatorID,
		StartsAt:    start,
		EndsAt:      end,
		CreatedAt:   dto.CreatedAt,
		EventCreate: model.EventCreate{
			Title:       dto.Title,
			Date:        date,
			Start:       r.zone.Clock(start),
			End:         endClock,
			Location:    dto.Location,
			Description: dto.Description,
			Category:    model.Category(dto.Category),
			Color:       dto.Color,
			Repeat:      model.RepeatType(dto.RepeatType),
			RepeatUntil: until,
		},
	}
}

func mapToAgendaItem(dto *agendaDTO) *model.AgendaItem {
	// time labels are written by this package as HH:MM, a bad one reads as 00:00
	clock, _ := caltime.ParseClock(dto.TimeLabel)

	return &model.AgendaItem{
		Time:        clock,
		Title:       dto.Title,
		Description: dto.Description,
		Speaker:     dto.Speaker,
	}
}

func mapToChecklistItem(dto *checklistDTO) *model.ChecklistItem {
	return &model.ChecklistItem{
		Task:       dto.Task,
		Completed:  dto.Completed,
		AssignedTo: dto.AssignedTo,
	}
}

// dateArg encodes an optional date for a DATE column.
func dateArg(d *caltime.Date) interface{} {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.In(time.UTC)
}
