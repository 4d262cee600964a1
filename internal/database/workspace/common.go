package workspace

import (
	"github.com/SergeyKozhin/workspace-calendar/internal/database"
)

// Repository reads workspace membership. Memberships are managed elsewhere,
// this package never writes them.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"m.user_id",
		"m.workspace_id",
		"m.role",
		"u.email",
		"u.display_name",
	).
	From(database.MembersTable + " m").
	Join(database.UsersTable + " u ON u.id = m.user_id")
