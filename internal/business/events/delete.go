package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

func (s *Service) DeleteEvent(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	event, err := s.eventsRepository.GetEventForUpdate(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("eventsRepository.GetEventForUpdate: %w", err)
	}

	if err := s.eventsRepository.DeleteEvent(ctx, tx, id); err != nil {
		return fmt.Errorf("eventsRepository.DeleteEvent: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.logger.Infow("event deleted", "event_id", id, "workspace_id", event.WorkspaceID)
	s.publish(ctx, model.ChangeDeleted, id, event.WorkspaceID)

	return nil
}
