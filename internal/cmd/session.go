package cmd

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/rohitnohwar/parking-lot/internal/config"
	"github.com/rohitnohwar/parking-lot/internal/logging"
	"github.com/rohitnohwar/parking-lot/internal/parking"
)

// Options are the flags shared by every command.
type Options struct {
	ConfigFile  string
	MetricsFile string
}

func runSession(ctx context.Context, opts *Options, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if opts.MetricsFile != "" {
		cfg.MetricsTextfile = opts.MetricsFile
	}

	logging.Init(cfg.LogLevel, cfg.LogPretty)

	telemetry, err := parking.NewTelemetryProvider(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to initialize telemetry")
	}
	defer shutdownTelemetry(telemetry)

	shell := parking.NewShell(in, out, telemetry)
	runErr := shell.Run(ctx)

	if lot := shell.ParkingLot(); lot != nil && cfg.MetricsTextfile != "" {
		if err := parking.WriteMetricsTextfile(cfg.MetricsTextfile, lot); err != nil {
			return errors.CombineErrors(runErr, errors.Wrap(err, "failed to write metrics"))
		}
	}

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func shutdownTelemetry(telemetry *parking.TelemetryProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := telemetry.Shutdown(ctx); err != nil {
		logging.Warn(ctx).Err(err).Msg("error shutting down telemetry")
	}
}
