package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

func (r *Repository) GetEventByID(ctx context.Context, q database.Queryable, id int64) (*model.Event, error) {
	return r.getEvent(ctx, q, baseQuery.Where(sq.Eq{"id": id}))
}

// GetEventForUpdate locks the event row until the end of the transaction.
func (r *Repository) GetEventForUpdate(ctx context.Context, q database.Queryable, id int64) (*model.Event, error) {
	return r.getEvent(ctx, q, baseQuery.Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"))
}

func (r *Repository) getEvent(ctx context.Context, q database.Queryable, qb sq.SelectBuilder) (*model.Event, error) {
	dto := &eventDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	event := r.mapToEvent(dto)
	if err := r.loadChildren(ctx, q, []*model.Event{event}); err != nil {
		return nil, err
	}

	return event, nil
}

// GetEvents returns every event that may have an occurrence intersecting
// [filter.From, filter.To). Recurring events are returned once, callers
// expand them.
func (r *Repository) GetEvents(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error) {
	// repeat_until is a display-local date, one day of margin covers any offset
	untilFrom := caltime.DateOf(filter.From.UTC()).AddDays(-1).In(time.UTC)

	qb := baseQuery.
		Where(sq.Lt{"starts_at": filter.To}).
		Where(sq.Or{
			sq.And{
				sq.Eq{"repeat_type": int(model.RepeatTypeNone)},
				sq.Gt{"ends_at": filter.From},
			},
			sq.And{
				sq.NotEq{"repeat_type": int(model.RepeatTypeNone)},
				sq.Or{sq.Eq{"repeat_until": nil}, sq.GtOrEq{"repeat_until": untilFrom}},
			},
		}).
		OrderBy("starts_at", "id")

	if len(filter.WorkspaceIDs) != 0 {
		qb = qb.Where(sq.Eq{"workspace_id": filter.WorkspaceIDs})
	}

	var dtos []*eventDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Event, len(dtos))
	for i, d := range dtos {
		res[i] = r.mapToEvent(d)
	}

	if err := r.loadChildren(ctx, q, res); err != nil {
		return nil, err
	}

	return res, nil
}

// loadChildren fills the nested collections of events with one query per table.
func (*Repository) loadChildren(ctx context.Context, q database.Queryable, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]int64, len(events))
	byID := make(map[int64]*model.Event, len(events))
	for i, e := range events {
		ids[i] = e.ID
		byID[e.ID] = e
	}

	var participants []*participantDTO
	pq := database.PSQL.
		Select("event_id", "user_id", "role", "status").
		From(database.ParticipantsTable).
		Where(sq.Eq{"event_id": ids}).
		OrderBy("event_id", "id")
	if err := q.Select(ctx, &participants, pq); err != nil {
		return fmt.Errorf("select participants: %w", err)
	}

	for _, p := range participants {
		e, ok := byID[p.EventID]
		if !ok {
			continue
		}
		switch model.Role(p.Role) {
		case model.RoleOrganizer:
			e.Organizers = append(e.Organizers, p.UserID)
		default:
			e.Attendees = append(e.Attendees, &model.Attendee{UserID: p.UserID, Status: model.ResponseStatus(p.Status)})
		}
	}

	var agenda []*agendaDTO
	aq := database.PSQL.
		Select("event_id", "position", "time_label", "title", "description", "speaker").
		From(database.AgendaTable).
		Where(sq.Eq{"event_id": ids}).
		OrderBy("event_id", "position")
	if err := q.Select(ctx, &agenda, aq); err != nil {
		return fmt.Errorf("select agenda: %w", err)
	}

	for _, a := range agenda {
		if e, ok := byID[a.EventID]; ok {
			e.Agenda = append(e.Agenda, mapToAgendaItem(a))
		}
	}

	var checklist []*checklistDTO
	cq := database.PSQL.
		Select("event_id", "position", "task", "completed", "assigned_to").
		From(database.ChecklistTable).
		Where(sq.Eq{"event_id": ids}).
		OrderBy("event_id", "position")
	if err := q.Select(ctx, &checklist, cq); err != nil {
		return fmt.Errorf("select checklist: %w", err)
	}

	for _, c := range checklist {
		if e, ok := byID[c.EventID]; ok {
			e.Checklist = append(e.Checklist, mapToChecklistItem(c))
		}
	}

	return nil
}
