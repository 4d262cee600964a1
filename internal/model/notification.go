package model

import (
	"time"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
)

type NotificationType string

const NotificationUpcoming NotificationType = "upcoming"

// NotificationKey identifies one delivery. Occurrence is the display-local
// date of the occurrence, which for a one-off event is its own date.
type NotificationKey struct {
	EventID    int64
	UserID     int64
	Type       NotificationType
	Occurrence caltime.Date
}

type WorkspaceMember struct {
	UserID      int64
	WorkspaceID int64
	Role        string
	Email       string
	DisplayName string
}

type MembersFilter struct {
	WorkspaceID int64
	UserIDs     []int64
}

// Message is what a messenger delivers to one recipient.
type Message struct {
	UserID      int64
	Email       string
	DisplayName string
	Subject     string
	Params      MessageParams
}

type MessageParams struct {
	EventTitle string
	EventTime  string
	EventDate  string
	Message    string
	Link       string
}

type RunSummary struct {
	RunID             string    `json:"run_id"`
	EventsFound       int       `json:"eventsFound"`
	NotificationsSent int       `json:"notificationsSent"`
	Skipped           int       `json:"skipped"`
	Duplicates        int       `json:"duplicates"`
	Errors            int       `json:"errors"`
	StartTime         time.Time `json:"startTime"`
	EndTime           time.Time `json:"endTime"`
	ExecutionTimeMs   int64     `json:"executionTimeMs"`
	Logs              []string  `json:"logs"`
}

type CronLogType string

const (
	CronExecution  CronLogType = "cron_execution"
	CronCompletion CronLogType = "cron_completion"
	CronError      CronLogType = "cron_error"
)

type CronLog struct {
	Type      CronLogType
	RunID     string
	Timezone  string
	Message   string
	Details   map[string]interface{}
	CreatedAt time.Time
}
