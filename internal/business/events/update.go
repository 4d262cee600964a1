package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

// UpdateEvent applies patch to the stored event. The merged result is
// validated as a whole before anything is written. Participants are stored
// together, so a patch touching either organizers or attendees rewrites both
// from the merged event.
func (s *Service) UpdateEvent(ctx context.Context, id int64, patch *model.EventPatch) (*model.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	old, err := s.eventsRepository.GetEventForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventForUpdate: %w", err)
	}

	merged := applyPatch(old, patch)
	normalize(&merged.EventCreate)
	if err := validateEvent(&merged.EventCreate); err != nil {
		return nil, err
	}
	sortAgenda(merged.Agenda)

	if err := s.eventsRepository.UpdateEvent(ctx, tx, id, patch, merged); err != nil {
		return nil, fmt.Errorf("eventsRepository.UpdateEvent: %w", err)
	}

	err = s.writeCollections(ctx, tx, id, &merged.EventCreate,
		patch.Organizers != nil || patch.Attendees != nil,
		patch.Agenda != nil,
		patch.Checklist != nil,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	merged.StartsAt = s.zone.Instant(merged.Date, merged.Start)
	merged.EndsAt = s.zone.Instant(merged.Date, merged.End)

	s.publish(ctx, model.ChangeUpdated, id, merged.WorkspaceID)

	return merged, nil
}

func applyPatch(old *model.Event, patch *model.EventPatch) *model.Event {
	merged := *old

	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Date != nil {
		merged.Date = *patch.Date
	}
	if patch.Start != nil {
		merged.Start = *patch.Start
	}
	if patch.End != nil {
		merged.End = *patch.End
	}
	if patch.Location != nil {
		merged.Location = *patch.Location
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Category != nil {
		merged.Category = *patch.Category
	}
	if patch.Color != nil {
		merged.Color = *patch.Color
	}
	if patch.Repeat != nil {
		merged.Repeat = *patch.Repeat
	}
	if patch.RepeatUntil != nil {
		until := *patch.RepeatUntil
		merged.RepeatUntil = &until
	}

	if patch.Organizers != nil {
		merged.Organizers = patch.Organizers
	}
	if patch.Attendees != nil {
		merged.Attendees = patch.Attendees
	}
	if patch.Agenda != nil {
		merged.Agenda = patch.Agenda
	}
	if patch.Checklist != nil {
		merged.Checklist = patch.Checklist
	}

	return &merged
}
