package workspace

import (
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

type memberDTO struct {
	UserID      int64  `db:"user_id"`
	WorkspaceID int64  `db:"workspace_id"`
	Role        string `db:"role"`
	Email       string `db:"email"`
	DisplayName string `db:"display_name"`
}

func mapToMember(dto *memberDTO) *model.WorkspaceMember {
	return &model.WorkspaceMember{
		UserID:      dto.UserID,
		WorkspaceID: dto.WorkspaceID,
		Role:        dto.Role,
		Email:       dto.Email,
		DisplayName: dto.DisplayName,
	}
}
