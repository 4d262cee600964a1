package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

func TestRender(t *testing.T) {
	event := &model.Event{
		ID: 3,
		EventCreate: model.EventCreate{
			Title:    "Retro",
			Location: "Room 4",
			Category: model.CategoryMeeting,
		},
	}
	o := &model.Occurrence{
		Event:    event,
		Date:     caltime.Date{Year: 2024, Month: time.May, Day: 1},
		StartsAt: time.Date(2024, time.May, 1, 6, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2024, time.May, 1, 7, 0, 0, 0, time.UTC),
	}

	out := Render("Team", []*model.Occurrence{o}, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"BEGIN:VEVENT",
		"UID:event-3-2024-05-01@workspace-calendar",
		"DTSTART:20240501T060000Z",
		"DTEND:20240501T070000Z",
		"SUMMARY:Retro",
		"LOCATION:Room 4",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "DESCRIPTION") {
		t.Fatalf("empty description rendered")
	}
}
