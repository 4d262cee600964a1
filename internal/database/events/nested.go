package events

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

// ReplaceParticipants deletes every participant row of the event and inserts
// organizers, then attendees.
func (*Repository) ReplaceParticipants(ctx context.Context, q database.Queryable, eventID int64, organizers []int64, attendees []*model.Attendee) error {
	if err := deleteChildren(ctx, q, database.ParticipantsTable, eventID); err != nil {
		return err
	}

	if len(organizers)+len(attendees) == 0 {
		return nil
	}

	qb := database.PSQL.
		Insert(database.ParticipantsTable).
		Columns("event_id", "user_id", "role", "status")

	for _, id := range organizers {
		qb = qb.Values(eventID, id, string(model.RoleOrganizer), string(model.StatusAccepted))
	}
	for _, a := range attendees {
		qb = qb.Values(eventID, a.UserID, string(model.RoleAttendee), string(a.Status))
	}

	if _, err := q.Exec(ctx, qb); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("participant listed twice: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

// ReplaceAgenda deletes the agenda of the event and inserts items keeping their order.
func (*Repository) ReplaceAgenda(ctx context.Context, q database.Queryable, eventID int64, items []*model.AgendaItem) error {
	if err := deleteChildren(ctx, q, database.AgendaTable, eventID); err != nil {
		return err
	}

	if len(items) == 0 {
		return nil
	}

	qb := database.PSQL.
		Insert(database.AgendaTable).
		Columns("event_id", "position", "time_label", "title", "description", "speaker")

	for i, item := range items {
		qb = qb.Values(eventID, i, item.Time.String(), item.Title, item.Description, item.Speaker)
	}

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func (*Repository) ReplaceChecklist(ctx context.Context, q database.Queryable, eventID int64, items []*model.ChecklistItem) error {
	if err := deleteChildren(ctx, q, database.ChecklistTable, eventID); err != nil {
		return err
	}

	if len(items) == 0 {
		return nil
	}

	qb := database.PSQL.
		Insert(database.ChecklistTable).
		Columns("event_id", "position", "task", "completed", "assigned_to")

	for i, item := range items {
		qb = qb.Values(eventID, i, item.Task, item.Completed, item.AssignedTo)
	}

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func deleteChildren(ctx context.Context, q database.Queryable, table string, eventID int64) error {
	qb := database.PSQL.
		Delete(table).
		Where(sq.Eq{"event_id": eventID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
