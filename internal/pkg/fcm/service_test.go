package fcm

import (
	"testing"

	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

func TestToMessage(t *testing.T) {
	m := toMessage(&model.Message{
		UserID:  17,
		Subject: "Upcoming: Demo",
		Params:  model.MessageParams{EventTitle: "Demo", EventTime: "09:30", EventDate: "2024-05-01"},
	})

	if m.Topic != "user_17" {
		t.Fatalf("topic=%q want=user_17", m.Topic)
	}
	if m.Notification.Body != "Demo at 09:30, 2024-05-01" {
		t.Fatalf("body=%q", m.Notification.Body)
	}
	if m.Data["type"] != "upcoming" {
		t.Fatalf("type=%q", m.Data["type"])
	}
}
