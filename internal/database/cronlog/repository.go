package cronlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

// Repository writes rows of the generic cron log sink.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (*Repository) Create(ctx context.Context, q database.Queryable, entry *model.CronLog) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	qb := database.PSQL.
		Insert(database.CronLogsTable).
		Columns("type", "run_id", "timezone", "message", "details", "created_at").
		Values(
			string(entry.Type),
			entry.RunID,
			entry.Timezone,
			entry.Message,
			string(details),
			entry.CreatedAt.UTC(),
		)

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
