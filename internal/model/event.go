package model

import (
	"time"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
)

type Category string

const (
	CategoryMeeting Category = "meeting"
	CategoryCourse  Category = "course"
	CategorySocial  Category = "social"
	CategoryOther   Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMeeting, CategoryCourse, CategorySocial, CategoryOther:
		return true
	}
	return false
}

type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleAttendee  Role = "attendee"
)

type ResponseStatus string

const (
	StatusPending  ResponseStatus = "pending"
	StatusAccepted ResponseStatus = "accepted"
	StatusDeclined ResponseStatus = "declined"
)

func (s ResponseStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

type RepeatType int

const (
	RepeatTypeNone RepeatType = iota
	RepeatTypeEveryDay
	RepeatTypeEveryThreeDays
	RepeatTypeEveryWeek
	RepeatTypeEveryMonth
	RepeatTypeEveryYear
)

type Attendee struct {
	UserID int64
	Status ResponseStatus
}

type AgendaItem struct {
	Time        caltime.Clock
	Title       string
	Description string
	Speaker     string
}

type ChecklistItem struct {
	Task       string
	Completed  bool
	AssignedTo *int64
}

// EventCreate is everything a caller supplies for a new event.
// Start and End are wall clock times on Date in the display timezone.
type EventCreate struct {
	Title       string
	Date        caltime.Date
	Start       caltime.Clock
	End         caltime.Clock
	Location    string
	Description string
	Category    Category
	Color       string
	Repeat      RepeatType
	RepeatUntil *caltime.Date

	Organizers []int64
	Attendees  []*Attendee
	Agenda     []*AgendaItem
	Checklist  []*ChecklistItem
}

type Event struct {
	ID          int64
	WorkspaceID int64
	CreatorID   int64
	// StartsAt and EndsAt are the UTC instants of the first occurrence.
	StartsAt  time.Time
	EndsAt    time.Time
	CreatedAt time.Time
	EventCreate
}

// Participants returns organizers followed by attendees, without duplicates.
func (e *Event) Participants() []int64 {
	seen := make(map[int64]struct{}, len(e.Organizers)+len(e.Attendees))
	res := make([]int64, 0, len(e.Organizers)+len(e.Attendees))

	add := func(id int64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}

	for _, id := range e.Organizers {
		add(id)
	}
	for _, a := range e.Attendees {
		add(a.UserID)
	}

	return res
}

// EventPatch is a partial update. A nil scalar field is left unchanged.
//
// Collections are NOT merged: a non-nil Organizers, Attendees, Agenda or
// Checklist replaces the stored collection entirely, so callers must send the
// complete desired list. A non-nil empty slice clears the collection.
type EventPatch struct {
	Title       *string
	Date        *caltime.Date
	Start       *caltime.Clock
	End         *caltime.Clock
	Location    *string
	Description *string
	Category    *Category
	Color       *string
	Repeat      *RepeatType
	// RepeatUntil pointing at a zero Date removes the end of the series.
	RepeatUntil *caltime.Date

	Organizers []int64
	Attendees  []*Attendee
	Agenda     []*AgendaItem
	Checklist  []*ChecklistItem
}

// Occurrence is one concrete instance of an event, after recurrence expansion.
type Occurrence struct {
	Event    *Event
	Date     caltime.Date
	StartsAt time.Time
	EndsAt   time.Time
}

type EventsFilter struct {
	WorkspaceIDs []int64
	From         time.Time
	To           time.Time
}

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

type EventChange struct {
	Kind        ChangeKind `json:"kind"`
	EventID     int64      `json:"event_id"`
	WorkspaceID int64      `json:"workspace_id"`
	At          time.Time  `json:"at"`
}
