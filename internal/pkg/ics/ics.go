// Package ics renders occurrences as an iCalendar feed.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

const productID = "-//workspace-calendar//EN"

// UID is stable per occurrence so calendar clients update instead of
// duplicating entries on refresh.
func UID(o *model.Occurrence) string {
	return fmt.Sprintf("event-%d-%s@workspace-calendar", o.Event.ID, o.Date.String())
}

func Render(name string, occurrences []*model.Occurrence, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)

	for _, o := range occurrences {
		ev := cal.AddEvent(UID(o))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetCreatedTime(o.Event.CreatedAt.UTC())
		ev.SetStartAt(o.StartsAt.UTC())
		ev.SetEndAt(o.EndsAt.UTC())
		ev.SetSummary(o.Event.Title)
		if o.Event.Location != "" {
			ev.SetLocation(o.Event.Location)
		}
		if o.Event.Description != "" {
			ev.SetDescription(o.Event.Description)
		}
		ev.AddProperty(ical.ComponentPropertyCategories, string(o.Event.Category))
	}

	return cal.Serialize()
}
