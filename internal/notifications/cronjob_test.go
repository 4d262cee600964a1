package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/database/dbtest"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

type stubRunner struct {
	summary *model.RunSummary
	err     error
	runID   string
}

func (r *stubRunner) RunWithID(_ context.Context, runID string) (*model.RunSummary, error) {
	r.runID = runID
	return r.summary, r.err
}

type memCronLogs struct {
	entries []*model.CronLog
	err     error
}

func (m *memCronLogs) Create(_ context.Context, _ database.Queryable, entry *model.CronLog) error {
	m.entries = append(m.entries, entry)
	return m.err
}

func newCronJob(t *testing.T, r runner, logs cronLogRepository) *CronJob {
	t.Helper()

	zone, err := caltime.NewZone("Asia/Singapore", nil)
	if err != nil {
		t.Fatalf("zone: %v", err)
	}
	zone = zone.WithClock(func() time.Time { return now })

	return NewCronJob(dbtest.New(), zone, zap.NewNop().Sugar(), r, logs)
}

func logTypes(entries []*model.CronLog) []model.CronLogType {
	res := make([]model.CronLogType, len(entries))
	for i, e := range entries {
		res[i] = e.Type
	}
	return res
}

func TestCronJobSuccess(t *testing.T) {
	r := &stubRunner{summary: &model.RunSummary{EventsFound: 2, NotificationsSent: 3}}
	logs := &memCronLogs{}

	report, err := newCronJob(t, r, logs).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	types := logTypes(logs.entries)
	if len(types) != 2 || types[0] != model.CronExecution || types[1] != model.CronCompletion {
		t.Fatalf("log types=%v", types)
	}
	for _, e := range logs.entries {
		if e.Timezone != "Asia/Singapore" || e.RunID != r.runID {
			t.Fatalf("entry=%+v run=%q", e, r.runID)
		}
	}
	if logs.entries[1].Details["notificationsSent"] != 3 {
		t.Fatalf("details=%v", logs.entries[1].Details)
	}

	if report.Summary.EventsFound != 2 || report.Timezone != "Asia/Singapore" {
		t.Fatalf("report=%+v", report)
	}
	if report.LocalTime.Format("15:04") != "10:00" || report.UTCTime.Format("15:04") != "02:00" {
		t.Fatalf("local=%v utc=%v", report.LocalTime, report.UTCTime)
	}
}

func TestCronJobFailure(t *testing.T) {
	r := &stubRunner{err: errors.New("db down")}
	logs := &memCronLogs{}

	if _, err := newCronJob(t, r, logs).Execute(context.Background()); err == nil {
		t.Fatalf("err=nil want error")
	}

	types := logTypes(logs.entries)
	if len(types) != 2 || types[0] != model.CronExecution || types[1] != model.CronError {
		t.Fatalf("log types=%v", types)
	}
	if logs.entries[1].Details["error"] != "db down" {
		t.Fatalf("details=%v", logs.entries[1].Details)
	}
}

func TestCronJobIgnoresLogFailures(t *testing.T) {
	r := &stubRunner{summary: &model.RunSummary{}}
	logs := &memCronLogs{err: errors.New("insert failed")}

	if _, err := newCronJob(t, r, logs).Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}
