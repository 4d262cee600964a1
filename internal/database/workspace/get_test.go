package workspace

import (
	"context"
	"strings"
	"testing"

	"github.com/SergeyKozhin/workspace-calendar/internal/database/dbtest"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

func TestListMembersNarrowsToUsers(t *testing.T) {
	repo := NewRepository()
	db := dbtest.New()
	db.SelectFn = func(dst interface{}, _ string, _ []interface{}) error {
		*(dst.(*[]*memberDTO)) = []*memberDTO{
			{UserID: 1, WorkspaceID: 5, Email: "a@example.com"},
			{UserID: 2, WorkspaceID: 5, Email: "b@example.com"},
		}
		return nil
	}

	members, err := repo.ListMembers(context.Background(), db, model.MembersFilter{WorkspaceID: 5, UserIDs: []int64{1, 2}})
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 2 || members[1].Email != "b@example.com" {
		t.Fatalf("members=%v", members)
	}

	sql := db.Statements[0].SQL
	if !strings.Contains(sql, "JOIN users u") || !strings.Contains(sql, "m.user_id IN") {
		t.Fatalf("sql=%q", sql)
	}
}
