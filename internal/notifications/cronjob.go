package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

type runner interface {
	RunWithID(ctx context.Context, runID string) (*model.RunSummary, error)
}

type cronLogRepository interface {
	Create(ctx context.Context, q database.Queryable, entry *model.CronLog) error
}

// CronJob wraps a dispatch run with cron log rows: cron_execution before the
// run, then cron_completion or cron_error.
type CronJob struct {
	db         database.PGX
	zone       *caltime.Zone
	logger     *zap.SugaredLogger
	dispatcher runner
	cronLogs   cronLogRepository
}

func NewCronJob(
	db database.PGX,
	zone *caltime.Zone,
	logger *zap.SugaredLogger,
	dispatcher runner,
	cronLogs cronLogRepository,
) *CronJob {
	return &CronJob{
		db:         db,
		zone:       zone,
		logger:     logger,
		dispatcher: dispatcher,
		cronLogs:   cronLogs,
	}
}

type Report struct {
	Summary   *model.RunSummary
	Timezone  string
	LocalTime time.Time
	UTCTime   time.Time
	// ExecutionTime covers the whole job, log writes included.
	ExecutionTime time.Duration
}

func (j *CronJob) Execute(ctx context.Context) (*Report, error) {
	started := j.zone.Now()
	runID := uuid.NewString()

	j.log(ctx, model.CronExecution, runID, "Upcoming events notification job started", map[string]interface{}{
		"localTime": started.Format(time.RFC3339),
		"utcTime":   started.UTC().Format(time.RFC3339),
	})

	summary, err := j.dispatcher.RunWithID(ctx, runID)
	if err != nil {
		j.log(ctx, model.CronError, runID, "Upcoming events notification job failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	j.log(ctx, model.CronCompletion, runID, "Upcoming events notification job completed", map[string]interface{}{
		"eventsFound":       summary.EventsFound,
		"notificationsSent": summary.NotificationsSent,
		"skipped":           summary.Skipped,
		"duplicates":        summary.Duplicates,
		"errors":            summary.Errors,
		"executionTimeMs":   summary.ExecutionTimeMs,
	})

	return &Report{
		Summary:       summary,
		Timezone:      j.zone.Name(),
		LocalTime:     started,
		UTCTime:       started.UTC(),
		ExecutionTime: j.zone.Now().Sub(started),
	}, nil
}

// log writes a cron log row. A failed write is logged and never fails the job.
func (j *CronJob) log(ctx context.Context, typ model.CronLogType, runID, message string, details map[string]interface{}) {
	entry := &model.CronLog{
		Type:      typ,
		RunID:     runID,
		Timezone:  j.zone.Name(),
		Message:   message,
		Details:   details,
		CreatedAt: j.zone.Now().UTC(),
	}

	if err := j.cronLogs.Create(ctx, j.db, entry); err != nil {
		j.logger.Errorw("failed to write cron log", "type", typ, "run_id", runID, "err", err)
	}
}
