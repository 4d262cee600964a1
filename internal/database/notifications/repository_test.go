package notifications

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgconn"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/database/dbtest"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

var key = model.NotificationKey{
	EventID:    1,
	UserID:     2,
	Type:       model.NotificationUpcoming,
	Occurrence: caltime.Date{Year: 2024, Month: time.May, Day: 1},
}

func TestRecordConflictIsNotInserted(t *testing.T) {
	repo := NewRepository()

	tests := []struct {
		name string
		tag  string
		want bool
	}{
		{name: "inserted", tag: "INSERT 0 1", want: true},
		{name: "conflict", tag: "INSERT 0 0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := dbtest.New()
			db.ExecFn = func(string, []interface{}) (pgconn.CommandTag, error) {
				return pgconn.CommandTag(tt.tag), nil
			}

			got, err := repo.Record(context.Background(), db, key, time.Now())
			if err != nil {
				t.Fatalf("Record: %v", err)
			}
			if got != tt.want {
				t.Fatalf("inserted=%v want=%v", got, tt.want)
			}
			if !strings.Contains(db.Statements[0].SQL, "ON CONFLICT") {
				t.Fatalf("sql=%q", db.Statements[0].SQL)
			}
		})
	}
}

func TestWasSent(t *testing.T) {
	repo := NewRepository()
	db := dbtest.New()
	db.GetFn = func(dst interface{}, _ string, _ []interface{}) error {
		*(dst.(*int64)) = 1
		return nil
	}

	sent, err := repo.WasSent(context.Background(), db, key)
	if err != nil {
		t.Fatalf("WasSent: %v", err)
	}
	if !sent {
		t.Fatalf("sent=false want=true")
	}
}
