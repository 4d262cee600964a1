package events

import (
	"fmt"
	"strings"

	"github.com/gerow/go-color"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
	"github.com/SergeyKozhin/workspace-calendar/internal/pkg/validator"
)

const DefaultColor = "#3b82f6"

// normalizeColor returns c as a lower case #rrggbb string.
func normalizeColor(c string) (string, error) {
	hex := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c), "#"))
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	if !validator.Matches(hex, validator.HexRX) || len(hex) != 6 {
		return "", fmt.Errorf("invalid color %q", c)
	}
	if _, err := color.HTMLToRGB(hex); err != nil {
		return "", fmt.Errorf("parse color %q: %w", c, err)
	}

	return "#" + hex, nil
}

// normalize fills defaults and canonical forms before validation.
func normalize(e *model.EventCreate) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Category == "" {
		e.Category = model.CategoryOther
	}
	if e.Color == "" {
		e.Color = DefaultColor
	} else if c, err := normalizeColor(e.Color); err == nil {
		e.Color = c
	}
	for _, a := range e.Attendees {
		if a != nil && a.Status == "" {
			a.Status = model.StatusPending
		}
	}
	if e.RepeatUntil != nil && e.RepeatUntil.IsZero() {
		e.RepeatUntil = nil
	}
}

// validateEvent checks a complete aggregate. It is used for creation and for
// the merged result of an update.
func validateEvent(e *model.EventCreate) error {
	v := validator.New()

	v.Check(e.Title != "", "title", "title must be provided")
	v.Check(!e.Date.IsZero(), "date", "date must be provided")
	v.Check(e.Start.Valid() && e.Start != caltime.EndOfDay, "start", "start must be a valid time")
	v.Check(e.End.Valid(), "end", "end must be a valid time")
	v.Check(e.End.After(e.Start), "end", "end must be after start")
	v.Check(e.Category.Valid(), "category", "category must be one of meeting, course, social, other")

	_, err := normalizeColor(e.Color)
	v.Check(err == nil, "color", "color must be valid HEX color")

	v.Check(e.Repeat >= model.RepeatTypeNone && e.Repeat <= model.RepeatTypeEveryYear, "repeat", "unknown repeat type")
	if e.RepeatUntil != nil {
		v.Check(e.Repeat != model.RepeatTypeNone, "repeat_until", "repeat_until requires a repeating event")
		v.Check(!e.RepeatUntil.Before(e.Date), "repeat_until", "repeat_until must not be before date")
	}

	organizers := make(map[int64]struct{}, len(e.Organizers))
	for i, id := range e.Organizers {
		_, dup := organizers[id]
		v.Check(!dup, fmt.Sprintf("organizers[%d]", i), "duplicate organizer")
		organizers[id] = struct{}{}
	}

	attendeeIDs := make([]int64, 0, len(e.Attendees))
	seen := make(map[int64]struct{}, len(e.Attendees))
	for i, a := range e.Attendees {
		if a == nil {
			v.AddError(fmt.Sprintf("attendees[%d]", i), "attendee must be provided")
			continue
		}
		v.Check(a.Status.Valid(), fmt.Sprintf("attendees[%d].status", i), "status must be one of pending, accepted, declined")
		_, dup := seen[a.UserID]
		v.Check(!dup, fmt.Sprintf("attendees[%d].user_id", i), "duplicate attendee")
		seen[a.UserID] = struct{}{}
		attendeeIDs = append(attendeeIDs, a.UserID)
	}
	v.Check(validator.Disjoint(e.Organizers, attendeeIDs), "attendees", "user can't be both organizer and attendee")

	for i, item := range e.Agenda {
		if item == nil {
			v.AddError(fmt.Sprintf("agenda[%d]", i), "agenda item must be provided")
			continue
		}
		v.Check(strings.TrimSpace(item.Title) != "", fmt.Sprintf("agenda[%d].title", i), "title must be provided")
		v.Check(item.Time.Valid(), fmt.Sprintf("agenda[%d].time", i), "time must be a valid time")
	}

	for i, item := range e.Checklist {
		if item == nil {
			v.AddError(fmt.Sprintf("checklist[%d]", i), "checklist item must be provided")
			continue
		}
		v.Check(strings.TrimSpace(item.Task) != "", fmt.Sprintf("checklist[%d].task", i), "task must be provided")
	}

	if !v.Valid() {
		return &model.ValidationError{Errors: v.Errors}
	}

	return nil
}
