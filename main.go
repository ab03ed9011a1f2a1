package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var Flags = []cli.Flag{
	FlagLogLevel,
	FlagLogWriter,
	FlagMQTTHost,
	FlagMQTTPort,
	FlagMQTTTLS,
	FlagMQTTClientID,
	FlagMQTTUsername,
	FlagMQTTPassword,
	FlagMQTTTopic,
	FlagAPIUrl,
	FlagAPIUsername,
	FlagAPIPassword,
	FlagStore,
	FlagStorePath,
	FlagRedisURL,
}

var logger zerolog.Logger

func main() {
	// values from .env only fill variables that are not already set
	_ = godotenv.Load()

	app := cli.App{
		Name:    "sensor-monitor",
		Usage:   "live room sensor readings and monitoring device management",
		Version: "v0.1.0",
		Flags:   Flags,
		Before: func(ctx *cli.Context) error {
			var logWriter io.Writer
			if ctx.String(FlagLogWriter.Name) == "console" {
				logWriter = zerolog.ConsoleWriter{
					Out:        os.Stderr,
					TimeFormat: time.RFC3339Nano,
				}
			} else if ctx.String(FlagLogWriter.Name) == "json" {
				logWriter = os.Stderr
			}

			logger = zerolog.New(logWriter).With().Timestamp().
				Str("service", "sensor-monitor").
				Str("module", "main").
				Logger()

			level, err := zerolog.ParseLevel(ctx.String(FlagLogLevel.Name))
			if err != nil {
				return err
			}

			zerolog.SetGlobalLevel(level)

			return nil
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "interactive console (default)",
				Action: runAction,
			},
			{
				Name:   "watch",
				Usage:  "log every reading received on the telemetry topic",
				Action: watchAction,
			},
			{
				Name:   "publish",
				Usage:  "send one reading to the telemetry topic",
				Flags:  []cli.Flag{FlagTemperature, FlagHumidity, FlagPressure, FlagLuminosity},
				Action: publishAction,
			},
			{
				Name:  "devices",
				Usage: "manage the local device list",
				Subcommands: []*cli.Command{
					{Name: "list", Action: devicesListAction},
					{Name: "add", ArgsUsage: "<id> <name>", Action: devicesAddAction},
					{Name: "delete", ArgsUsage: "<id> <name>", Action: devicesDeleteAction},
				},
			},
			{
				Name:  "remote",
				Usage: "devices on the backend",
				Subcommands: []*cli.Command{
					{Name: "list", Action: remoteListAction},
					{Name: "add", ArgsUsage: "<id> <name>", Action: remoteAddAction},
				},
			},
		},
		Authors: []*cli.Author{
			{
				Name: "sensor-monitor developers",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Err(err).Msg("terminated")
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	appCtx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-c:
			logger.Warn().Msg("interrupt signal received")
			cancel()
		case <-appCtx.Done():
		}
		signal.Stop(c)
	}()
	return appCtx, cancel
}
