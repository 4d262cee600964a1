package notifications

import (
	"fmt"
	"strings"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

// buildMessage renders the upcoming-event message with the time and date of
// the occurrence in the display zone.
func buildMessage(zone *caltime.Zone, baseURL string, o *model.Occurrence, m *model.WorkspaceMember) *model.Message {
	start := zone.Local(o.StartsAt)
	clock := caltime.ClockOf(start).String()
	date := caltime.DateOf(start).String()

	text := fmt.Sprintf("%s starts at %s on %s.", o.Event.Title, clock, date)
	if o.Event.Location != "" {
		text = fmt.Sprintf("%s starts at %s on %s in %s.", o.Event.Title, clock, date, o.Event.Location)
	}

	var link string
	if baseURL != "" {
		link = fmt.Sprintf("%s/workspaces/%d/events/%d", strings.TrimRight(baseURL, "/"), o.Event.WorkspaceID, o.Event.ID)
	}

	return &model.Message{
		UserID:      m.UserID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		Subject:     "Upcoming: " + o.Event.Title,
		Params: model.MessageParams{
			EventTitle: o.Event.Title,
			EventTime:  clock,
			EventDate:  date,
			Message:    text,
			Link:       link,
		},
	}
}
