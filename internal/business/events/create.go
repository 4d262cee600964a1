package events

import (
	"context"
	"fmt"
	"sort"

	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

// CreateEvent validates info and stores the whole aggregate in one
// transaction: the event, its participants (organizers first), agenda and
// checklist.
func (s *Service) CreateEvent(ctx context.Context, workspaceID, creatorID int64, info *model.EventCreate) (*model.Event, error) {
	normalize(info)
	if err := validateEvent(info); err != nil {
		return nil, err
	}
	sortAgenda(info.Agenda)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	id, err := s.eventsRepository.CreateEvent(ctx, tx, workspaceID, creatorID, info)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.CreateEvent: %w", err)
	}

	if err := s.writeCollections(ctx, tx, id, info, true, true, true); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	event := &model.Event{
		ID:          id,
		WorkspaceID: workspaceID,
		CreatorID:   creatorID,
		StartsAt:    s.zone.Instant(info.Date, info.Start),
		EndsAt:      s.zone.Instant(info.Date, info.End),
		CreatedAt:   s.zone.Now().UTC(),
		EventCreate: *info,
	}

	s.logger.Infow("event created", "event_id", id, "workspace_id", workspaceID, "creator_id", creatorID)
	s.publish(ctx, model.ChangeCreated, id, workspaceID)

	return event, nil
}

func (s *Service) writeCollections(ctx context.Context, tx database.Queryable, id int64, e *model.EventCreate, participants, agenda, checklist bool) error {
	if participants {
		if err := s.eventsRepository.ReplaceParticipants(ctx, tx, id, e.Organizers, e.Attendees); err != nil {
			return fmt.Errorf("eventsRepository.ReplaceParticipants: %w", err)
		}
	}

	if agenda {
		if err := s.eventsRepository.ReplaceAgenda(ctx, tx, id, e.Agenda); err != nil {
			return fmt.Errorf("eventsRepository.ReplaceAgenda: %w", err)
		}
	}

	if checklist {
		if err := s.eventsRepository.ReplaceChecklist(ctx, tx, id, e.Checklist); err != nil {
			return fmt.Errorf("eventsRepository.ReplaceChecklist: %w", err)
		}
	}

	return nil
}

func sortAgenda(items []*model.AgendaItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Time.Before(items[j].Time)
	})
}
