package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/xlab/closer"
	"go.uber.org/zap"

	"github.com/SergeyKozhin/workspace-calendar/internal/api"
	"github.com/SergeyKozhin/workspace-calendar/internal/config"
	"github.com/SergeyKozhin/workspace-calendar/internal/pkg/jwt"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(logger *zap.SugaredLogger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API and the cron trigger endpoint.",
		Action: func(c *cli.Context) error {
			a, err := newApp(c.Context, logger)
			if err != nil {
				return err
			}

			// interfaces stay nil unless configured
			var jwts interface {
				Verify(token string) (*jwt.Claims, error)
			}
			if config.CronSecret() != "" {
				jwts = jwt.NewManager(config.CronSecret())
			} else {
				logger.Warnw("CRON_SECRET is not set, the cron trigger is unprotected")
			}

			handler, err := api.NewApi(
				logger,
				a.zone,
				jwts,
				a.db,
				a.members,
				a.eventsService,
				a.availability,
				a.cronJob,
				a.hub,
			)
			if err != nil {
				return fmt.Errorf("init api: %w", err)
			}

			errLogger, err := zap.NewStdLogAt(logger.Desugar(), zap.ErrorLevel)
			if err != nil {
				return fmt.Errorf("error initiating server logger: %w", err)
			}

			server := &http.Server{
				Addr:     ":" + config.Port(),
				Handler:  handler,
				ErrorLog: errLogger,
			}

			closer.Bind(func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(ctx); err != nil {
					logger.Errorw("server shutdown", "err", err)
				}
			})

			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatalw("server error", "err", err)
				}
			}()

			logger.Infow("Started server", "port", config.Port(), "timezone", a.zone.Name())
			closer.Hold()

			return nil
		},
	}
}
