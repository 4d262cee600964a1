package notifications

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

// Repository is the ledger of delivered notifications. Rows are only ever
// inserted.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func keyPredicate(key model.NotificationKey) sq.Eq {
	return sq.Eq{
		"event_id":        key.EventID,
		"user_id":         key.UserID,
		"type":            string(key.Type),
		"occurrence_date": key.Occurrence.In(time.UTC),
	}
}

func (*Repository) WasSent(ctx context.Context, q database.Queryable, key model.NotificationKey) (bool, error) {
	qb := database.PSQL.
		Select("count(*)").
		From(database.NotificationsTable).
		Where(keyPredicate(key))

	var count int64
	if err := q.Get(ctx, &count, qb); err != nil {
		return false, fmt.Errorf("SQL request: %w", err)
	}

	return count > 0, nil
}

// Record stores a delivery. It reports false when the key was already
// recorded, which happens when two runs race on the same notification.
func (*Repository) Record(ctx context.Context, q database.Queryable, key model.NotificationKey, sentAt time.Time) (bool, error) {
	qb := database.PSQL.
		Insert(database.NotificationsTable).
		Columns("event_id", "user_id", "type", "occurrence_date", "sent_at").
		Values(key.EventID, key.UserID, string(key.Type), key.Occurrence.In(time.UTC), sentAt.UTC()).
		Suffix("ON CONFLICT (event_id, user_id, type, occurrence_date) DO NOTHING")

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return false, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
