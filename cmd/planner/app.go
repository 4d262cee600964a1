package main

import (
	"context"
	"fmt"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	availability_engine "github.com/SergeyKozhin/workspace-calendar/internal/business/availability"
	events_service "github.com/SergeyKozhin/workspace-calendar/internal/business/events"
	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/config"
	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/database/cronlog"
	"github.com/SergeyKozhin/workspace-calendar/internal/database/events"
	notifications_repo "github.com/SergeyKozhin/workspace-calendar/internal/database/notifications"
	"github.com/SergeyKozhin/workspace-calendar/internal/database/workspace"
	"github.com/SergeyKozhin/workspace-calendar/internal/notifications"
	"github.com/SergeyKozhin/workspace-calendar/internal/pkg/fcm"
	"github.com/SergeyKozhin/workspace-calendar/internal/pkg/mailer"
	"github.com/SergeyKozhin/workspace-calendar/internal/pkg/oauth"
	redis_store "github.com/SergeyKozhin/workspace-calendar/internal/redis"
)

// app holds everything the commands share.
type app struct {
	logger *zap.SugaredLogger
	zone   *caltime.Zone
	db     database.PGX
	pool   *redis.Pool
	hub    *redis_store.Hub

	members       *workspace.Repository
	eventsService *events_service.Service
	availability  *availability_engine.Engine
	dispatcher    *notifications.Dispatcher
	cronJob       *notifications.CronJob
}

func newApp(ctx context.Context, logger *zap.SugaredLogger) (*app, error) {
	zone, err := caltime.NewZone(config.DisplayTimezone(), logger)
	if err != nil {
		return nil, fmt.Errorf("display timezone: %w", err)
	}

	db, err := database.NewPGX(ctx, config.PostgresURL(), logger)
	if err != nil {
		return nil, fmt.Errorf("unable to initializae db: %w", err)
	}

	pool := redis_store.NewRedisPool(logger, config.RedisURL())
	hub := redis_store.NewHub(pool, logger)
	locker := redis_store.NewLocker(pool)

	eventsRepository := events.NewRepository(zone)
	membersRepository := workspace.NewRepository()
	notificationsRepository := notifications_repo.NewRepository()
	cronLogRepository := cronlog.NewRepository()

	eventsService := events_service.NewService(db, zone, logger, eventsRepository, hub)

	messenger, err := newMessenger(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("messenger: %w", err)
	}

	opts := notifications.DefaultOptions()
	opts.Lookahead = config.NotifyLookahead()
	opts.Buffer = config.NotifyBuffer()
	opts.Audience = config.NotifyAudience()
	opts.Concurrency = config.NotifyConcurrency()
	opts.LockTTL = config.DispatchLockTTL()
	opts.BaseURL = config.AppBaseURL()

	dispatcher, err := notifications.NewDispatcher(
		db,
		zone,
		logger,
		eventsService,
		membersRepository,
		notificationsRepository,
		messenger,
		locker,
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}

	return &app{
		logger:        logger,
		zone:          zone,
		db:            db,
		pool:          pool,
		hub:           hub,
		members:       membersRepository,
		eventsService: eventsService,
		availability:  availability_engine.NewEngine(zone, logger, eventsService),
		dispatcher:    dispatcher,
		cronJob:       notifications.NewCronJob(db, zone, logger, dispatcher, cronLogRepository),
	}, nil
}

func newMessenger(ctx context.Context, logger *zap.SugaredLogger) (notifications.Messenger, error) {
	switch config.Messenger() {
	case "log", "":
		return notifications.NewLogMessenger(logger), nil

	case "email":
		ts, err := oauth.GmailTokenSource(ctx, config.GmailCredentialsPath(), config.MailSender())
		if err != nil {
			return nil, fmt.Errorf("gmail token source: %w", err)
		}
		m, err := mailer.New(ctx, config.MailSender(), ts, logger)
		if err != nil {
			return nil, err
		}
		return m, nil

	case "push":
		s, err := fcm.NewService(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown messenger %q", config.Messenger())
	}
}
