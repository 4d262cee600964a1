package database

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
)

var PSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	EventsTable        = "events"
	ParticipantsTable  = "event_participants"
	AgendaTable        = "event_agenda_items"
	ChecklistTable     = "event_checklist_items"
	NotificationsTable = "notification_records"
	MembersTable       = "workspace_members"
	UsersTable         = "users"
	CronLogsTable      = "cron_logs"
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err comes from a unique constraint.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
