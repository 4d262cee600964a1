package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

type Service struct {
	db               database.PGX
	zone             *caltime.Zone
	logger           *zap.SugaredLogger
	eventsRepository eventsRepository
	changes          changePublisher
}

type eventsRepository interface {
	CreateEvent(ctx context.Context, q database.Queryable, workspaceID, creatorID int64, event *model.EventCreate) (int64, error)
	ReplaceParticipants(ctx context.Context, q database.Queryable, eventID int64, organizers []int64, attendees []*model.Attendee) error
	ReplaceAgenda(ctx context.Context, q database.Queryable, eventID int64, items []*model.AgendaItem) error
	ReplaceChecklist(ctx context.Context, q database.Queryable, eventID int64, items []*model.ChecklistItem) error
	GetEventByID(ctx context.Context, q database.Queryable, id int64) (*model.Event, error)
	GetEventForUpdate(ctx context.Context, q database.Queryable, id int64) (*model.Event, error)
	GetEvents(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.Event, error)
	UpdateEvent(ctx context.Context, q database.Queryable, id int64, patch *model.EventPatch, merged *model.Event) error
	DeleteEvent(ctx context.Context, q database.Queryable, id int64) error
}

type changePublisher interface {
	Publish(ctx context.Context, change *model.EventChange) error
}

// NewService builds the scheduling service. changes may be nil, then no
// live updates are published.
func NewService(
	db database.PGX,
	zone *caltime.Zone,
	logger *zap.SugaredLogger,
	repo eventsRepository,
	changes changePublisher,
) *Service {
	return &Service{
		db:               db,
		zone:             zone,
		logger:           logger,
		eventsRepository: repo,
		changes:          changes,
	}
}

// publish never fails the write that caused it, subscribers refetch anyway.
func (s *Service) publish(ctx context.Context, kind model.ChangeKind, eventID, workspaceID int64) {
	if s.changes == nil {
		return
	}

	change := &model.EventChange{
		Kind:        kind,
		EventID:     eventID,
		WorkspaceID: workspaceID,
		At:          s.zone.Now().UTC(),
	}
	if err := s.changes.Publish(ctx, change); err != nil {
		s.logger.Warnw("failed to publish event change", "event_id", eventID, "kind", kind, "err", err)
	}
}
