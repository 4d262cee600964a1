package workspace

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

// ListMembers returns the members of filter.WorkspaceID, narrowed to
// filter.UserIDs when it is not empty.
func (*Repository) ListMembers(ctx context.Context, q database.Queryable, filter model.MembersFilter) ([]*model.WorkspaceMember, error) {
	qb := baseQuery.
		Where(sq.Eq{"m.workspace_id": filter.WorkspaceID}).
		OrderBy("m.user_id")

	if len(filter.UserIDs) != 0 {
		qb = qb.Where(sq.Eq{"m.user_id": filter.UserIDs})
	}

	var dtos []*memberDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.WorkspaceMember, len(dtos))
	for i, d := range dtos {
		res[i] = mapToMember(d)
	}

	return res, nil
}

func (*Repository) IsMember(ctx context.Context, q database.Queryable, workspaceID, userID int64) (bool, error) {
	qb := database.PSQL.
		Select("count(*)").
		From(database.MembersTable).
		Where(sq.Eq{"workspace_id": workspaceID, "user_id": userID})

	var count int64
	if err := q.Get(ctx, &count, qb); err != nil {
		return false, fmt.Errorf("SQL request: %w", err)
	}

	return count > 0, nil
}
