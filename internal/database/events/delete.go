package events

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

// DeleteEvent removes the event and its nested rows. Notification records
// go with it through the foreign key.
func (*Repository) DeleteEvent(ctx context.Context, q database.Queryable, id int64) error {
	for _, table := range []string{database.ParticipantsTable, database.AgendaTable, database.ChecklistTable} {
		if err := deleteChildren(ctx, q, table, id); err != nil {
			return err
		}
	}

	qb := database.PSQL.
		Delete(database.EventsTable).
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
