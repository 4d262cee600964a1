package availability

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

type occurrenceSource interface {
	GetEvents(ctx context.Context, filter model.EventsFilter) ([]*model.Occurrence, error)
}

// Engine computes when a roster of users is free on one display-local day.
type Engine struct {
	zone   *caltime.Zone
	logger *zap.SugaredLogger
	events occurrenceSource
}

func NewEngine(zone *caltime.Zone, logger *zap.SugaredLogger, events occurrenceSource) *Engine {
	return &Engine{zone: zone, logger: logger, events: events}
}

// FreeIntervals returns the intervals of day during which none of userIDs has
// an event in the workspace. An empty roster is answered without reading the
// store and is flagged Vacuous.
func (e *Engine) FreeIntervals(ctx context.Context, workspaceID int64, userIDs []int64, day caltime.Date) (*model.Availability, error) {
	if len(userIDs) == 0 {
		return ComputeFree(e.zone, e.logger, nil, nil, day), nil
	}

	from, to := e.zone.DayBounds(day)
	occurrences, err := e.events.GetEvents(ctx, model.EventsFilter{
		WorkspaceIDs: []int64{workspaceID},
		From:         from,
		To:           to,
	})
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}

	return ComputeFree(e.zone, e.logger, userIDs, occurrences, day), nil
}
