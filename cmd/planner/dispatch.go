package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func dispatchCommand(logger *zap.SugaredLogger) *cli.Command {
	return &cli.Command{
		Name:  "dispatch",
		Usage: "Run the upcoming events notification job once and exit.",
		Action: func(c *cli.Context) error {
			a, err := newApp(c.Context, logger)
			if err != nil {
				return err
			}

			report, err := a.cronJob.Execute(c.Context)
			if err != nil {
				return fmt.Errorf("dispatch: %w", err)
			}

			logger.Infow("dispatch finished",
				"run_id", report.Summary.RunID,
				"events_found", report.Summary.EventsFound,
				"notifications_sent", report.Summary.NotificationsSent,
				"skipped", report.Summary.Skipped,
				"duplicates", report.Summary.Duplicates,
				"errors", report.Summary.Errors,
				"execution_time", report.ExecutionTime,
			)

			return nil
		},
	}
}
