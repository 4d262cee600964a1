package events

import (
	"context"
	"fmt"
	"sort"

	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

func (s *Service) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	event, err := s.eventsRepository.GetEventByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventByID: %w", err)
	}

	return event, nil
}

// GetEvents returns the occurrences intersecting [filter.From, filter.To),
// ordered by start.
func (s *Service) GetEvents(ctx context.Context, filter model.EventsFilter) ([]*model.Occurrence, error) {
	baseEvents, err := s.eventsRepository.GetEvents(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEvents: %w", err)
	}

	var res []*model.Occurrence
	for _, e := range baseEvents {
		occurrences, err := expand(e, s.zone, filter.From, filter.To)
		if err != nil {
			s.logger.Warnw("skipping event with broken recurrence", "event_id", e.ID, "err", err)
			continue
		}
		res = append(res, occurrences...)
	}

	sort.SliceStable(res, func(i, j int) bool {
		if res[i].StartsAt.Equal(res[j].StartsAt) {
			return res[i].Event.ID < res[j].Event.ID
		}
		return res[i].StartsAt.Before(res[j].StartsAt)
	})

	return res, nil
}
