package fcm

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"

	"github.com/SergeyKozhin/workspace-calendar/internal/model"
)

type Service struct {
	client *messaging.Client
}

func NewService(ctx context.Context) (*Service, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining messaging client: %w", err)
	}

	return &Service{client: client}, nil
}

// Topic is the per-user topic devices subscribe to.
func Topic(userID int64) string {
	return "user_" + strconv.FormatInt(userID, 10)
}

func toMessage(m *model.Message) *messaging.Message {
	return &messaging.Message{
		Topic: Topic(m.UserID),
		Notification: &messaging.Notification{
			Title: m.Subject,
			Body:  fmt.Sprintf("%s at %s, %s", m.Params.EventTitle, m.Params.EventTime, m.Params.EventDate),
		},
		Data: map[string]string{
			"type":  string(model.NotificationUpcoming),
			"title": m.Params.EventTitle,
			"time":  m.Params.EventTime,
			"date":  m.Params.EventDate,
			"link":  m.Params.Link,
		},
	}
}

func (s *Service) Send(ctx context.Context, m *model.Message) error {
	if _, err := s.client.Send(ctx, toMessage(m)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}
