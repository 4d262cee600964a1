package notifications

import (
	"testing"
	"time"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

func TestBuildMessage(t *testing.T) {
	zone, err := caltime.NewZone("Asia/Singapore", nil)
	if err != nil {
		t.Fatalf("zone: %v", err)
	}

	// 15:30 UTC is 23:30 of the same date in Singapore
	start := time.Date(2024, time.June, 1, 15, 30, 0, 0, time.UTC)
	o := startingAt(4, start)
	o.Event.WorkspaceID = 2
	o.Event.Title = "Late sync"
	o.Event.Location = "Room 1"
	member := &model.WorkspaceMember{UserID: 10, Email: "a@example.com", DisplayName: "Ana"}

	msg := buildMessage(zone, "https://cal.example.com/", o, member)

	if msg.Params.EventTime != "23:30" || msg.Params.EventDate != "2024-06-01" {
		t.Fatalf("time=%q date=%q", msg.Params.EventTime, msg.Params.EventDate)
	}
	if msg.Params.Message != "Late sync starts at 23:30 on 2024-06-01 in Room 1." {
		t.Fatalf("message=%q", msg.Params.Message)
	}
	if msg.Params.Link != "https://cal.example.com/workspaces/2/events/4" {
		t.Fatalf("link=%q", msg.Params.Link)
	}
	if msg.Email != "a@example.com" || msg.Subject != "Upcoming: Late sync" {
		t.Fatalf("msg=%+v", msg)
	}
}
