package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"github.com/xlab/closer"
	"go.uber.org/zap"

	"github.com/SergeyKozhin/workspace-calendar/internal/config"
	"github.com/SergeyKozhin/workspace-calendar/internal/pkg/jwt"
)

const (
	triggerTimeout = 2 * time.Minute
	tokenTTL       = 5 * time.Minute
	scheduleSubj   = "scheduler"
)

func scheduleCommand(logger *zap.SugaredLogger) *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Call the cron trigger endpoint on a cron schedule.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "spec", Value: config.CronSchedule(), Usage: "cron spec, five fields"},
			&cli.StringFlag{Name: "url", Value: config.TriggerURL(), Usage: "trigger endpoint"},
		},
		Action: func(c *cli.Context) error {
			t := &trigger{
				client: &http.Client{Timeout: triggerTimeout},
				url:    c.String("url"),
			}
			if config.CronSecret() != "" {
				t.tokens = jwt.NewManager(config.CronSecret())
			}

			sched := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
			if _, err := sched.AddFunc(c.String("spec"), func() {
				ctx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
				defer cancel()

				resp, err := t.call(ctx)
				if err != nil {
					logger.Errorw("trigger failed", "url", t.url, "err", err)
					return
				}
				logger.Infow("trigger done",
					"events_found", resp.Result.EventsFound,
					"notifications_sent", resp.Result.NotificationsSent,
					"errors", resp.Result.Errors,
					"execution_time_ms", resp.ExecutionTimeMs,
				)
			}); err != nil {
				return fmt.Errorf("invalid cron spec %q: %w", c.String("spec"), err)
			}

			sched.Start()
			closer.Bind(func() {
				<-sched.Stop().Done()
				logger.Infow("scheduler stopped")
			})

			logger.Infow("scheduler started", "spec", c.String("spec"), "url", t.url)
			closer.Hold()

			return nil
		},
	}
}

type triggerResp struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Error           string `json:"error"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
	Result          struct {
		EventsFound       int `json:"eventsFound"`
		NotificationsSent int `json:"notificationsSent"`
		Errors            int `json:"errors"`
	} `json:"result"`
}

type trigger struct {
	client *http.Client
	url    string
	tokens *jwt.Manager
}

// call performs one GET of the trigger endpoint, signed when a cron secret
// is configured.
func (t *trigger) call(ctx context.Context) (*triggerResp, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if t.tokens != nil {
		token, err := t.tokens.CreateToken(scheduleSubj, tokenTTL)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	resp := &triggerResp{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, fmt.Errorf("status %d: decode body: %w", res.StatusCode, err)
	}

	if res.StatusCode != http.StatusOK || !resp.Success {
		return resp, fmt.Errorf("status %d: %s: %s", res.StatusCode, resp.Message, resp.Error)
	}

	return resp, nil
}
