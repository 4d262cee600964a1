package events

import (
	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/database"
)

// Repository reads and writes the event aggregate: the event row plus its
// participants, agenda and checklist rows.
type Repository struct {
	zone *caltime.Zone
}

func NewRepository(zone *caltime.Zone) *Repository {
	return &Repository{zone: zone}
}

var baseQuery = database.PSQL.
	Select(
		"id",
		"workspace_id",
		"creator_id",
		"title",
		"description",
		"location",
		"category",
		"color",
		"starts_at",
		"ends_at",
		"repeat_type",
		"repeat_until",
		"created_at",
	).
	From(database.EventsTable)
