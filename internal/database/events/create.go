package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

// CreateEvent inserts the event row only. Nested collections are written
// with the Replace* methods, in the same transaction.
func (r *Repository) CreateEvent(ctx context.Context, q database.Queryable, workspaceID, creatorID int64, event *model.EventCreate) (int64, error) {
	qb := database.PSQL.
		Insert(database.EventsTable).
		Columns(
			"workspace_id",
			"creator_id",
			"title",
			"description",
			"location",
			"category",
			"color",
			"starts_at",
			"ends_at",
			"repeat_type",
			"repeat_until",
		).
		Values(
			workspaceID,
			creatorID,
			event.Title,
			event.Description,
			event.Location,
			string(event.Category),
			event.Color,
			r.zone.Instant(event.Date, event.Start),
			r.zone.Instant(event.Date, event.End),
			int(event.Repeat),
			dateArg(event.RepeatUntil),
		).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return id, nil
}
