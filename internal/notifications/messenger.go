package notifications

import (
	"context"

	"go.uber.org/zap"

	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

// Messenger delivers one message to one recipient. A nil error means the
// message was handed over and may be recorded as sent.
type Messenger interface {
	Send(ctx context.Context, msg *model.Message) error
}

// LogMessenger only logs messages. It is meant for development.
type LogMessenger struct {
	logger *zap.SugaredLogger
}

func NewLogMessenger(logger *zap.SugaredLogger) *LogMessenger {
	return &LogMessenger{logger: logger}
}

func (m *LogMessenger) Send(_ context.Context, msg *model.Message) error {
	m.logger.Infow("notification",
		"user_id", msg.UserID,
		"email", msg.Email,
		"subject", msg.Subject,
		"event_time", msg.Params.EventTime,
		"event_date", msg.Params.EventDate,
	)
	return nil
}
