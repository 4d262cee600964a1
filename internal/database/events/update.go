package events

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

// UpdateEvent writes the scalar columns present in patch. Values are taken
// from merged, the normalized event with the patch applied.
func (r *Repository) UpdateEvent(ctx context.Context, q database.Queryable, id int64, patch *model.EventPatch, merged *model.Event) error {
	set := map[string]interface{}{
		"updated_at": sq.Expr("now()"),
	}

	if patch.Title != nil {
		set["title"] = merged.Title
	}
	if patch.Location != nil {
		set["location"] = merged.Location
	}
	if patch.Description != nil {
		set["description"] = merged.Description
	}
	if patch.Category != nil {
		set["category"] = string(merged.Category)
	}
	if patch.Color != nil {
		set["color"] = merged.Color
	}
	if patch.Repeat != nil {
		set["repeat_type"] = int(merged.Repeat)
	}
	if patch.RepeatUntil != nil {
		set["repeat_until"] = dateArg(merged.RepeatUntil)
	}
	if patch.Date != nil || patch.Start != nil || patch.End != nil {
		set["starts_at"] = r.zone.Instant(merged.Date, merged.Start)
		set["ends_at"] = r.zone.Instant(merged.Date, merged.End)
	}

	qb := database.PSQL.
		Update(database.EventsTable).
		SetMap(set).
		Where(sq.Eq{"id": id})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrNoRecord
	}

	return nil
}
