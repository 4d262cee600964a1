package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/SergeyKozhin/workspace-calendar/internal/config"
)

func main() {
	logger, err := initLogger()
	if err != nil {
		log.Fatalf("unable to initializae logger: %v", err)
	}

	app := &cli.App{
		Name:  "planner",
		Usage: "Workspace calendar: scheduling API and upcoming event notifications.",
		Commands: []*cli.Command{
			serveCommand(logger),
			dispatchCommand(logger),
			scheduleCommand(logger),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Errorw("application failed", "err", err)
		closer.Fatalln(err)
	}

	closer.Close()
}

func initLogger() (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if config.Production() {
		logger, err = zap.NewProduction()
	} else {
		conf := zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = conf.Build()
	}

	if err != nil {
		return nil, err
	}

	closer.Bind(func() {
		_ = logger.Sync()
	})

	return logger.Sugar(), nil
}
