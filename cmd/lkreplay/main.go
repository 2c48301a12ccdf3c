// lkreplay replays a recorded point tracking session and exports the resulting trajectories
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LdDl/lktrack-go/internal/config"
	"github.com/LdDl/lktrack-go/internal/exportdb"
	"github.com/LdDl/lktrack-go/internal/logging"
	"github.com/LdDl/lktrack-go/internal/replay"
	"github.com/LdDl/lktrack-go/lktrack"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

var (
	configPath = pflag.StringP("config", "c", "", "Configuration file (JSON, YAML or TOML)")
	scriptPath = pflag.StringP("script", "s", "", "Session script to replay (JSON)")
	outDir     = pflag.StringP("out", "o", "", "Directory for the CSV export, overrides configuration")
	sqlitePath = pflag.String("sqlite", "", "SQLite database for the export, overrides configuration")
)

func main() {
	pflag.Parse()
	if *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "--script is required")
		pflag.Usage()
		os.Exit(2)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *outDir != "" {
		settings.ExportDir = *outDir
	}
	if *sqlitePath != "" {
		settings.SQLitePath = *sqlitePath
	}

	logger, err := logging.New(settings.LogLevel, settings.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, settings, *scriptPath, logger); err != nil {
		logger.Error().Err(err).Msg("Replay failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, settings config.Settings, scriptPath string, logger zerolog.Logger) error {
	script, err := replay.ReadScriptFile(scriptPath)
	if err != nil {
		return err
	}

	engine := replay.NewScriptedEngine()
	session, err := lktrack.NewSession(engine, lktrack.WithConfig(settings.Tracker), lktrack.WithLogger(logger))
	if err != nil {
		return errors.Wrap(err, "can't create session")
	}
	frame := lktrack.BlankFrame{Width: settings.FrameWidth, Height: settings.FrameHeight}
	runner, err := replay.NewRunner(session, engine, frame, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("script", scriptPath).Int("events", len(script.Events)).Str("config", settings.Tracker.String()).Msg("Replaying")
	st := time.Now()
	summary, err := runner.Run(ctx, script)
	if err != nil {
		return err
	}
	logger.Info().
		Int("events", summary.Events).
		Int("tracked", summary.Tracked).
		Int("advisories", summary.Advisories).
		Int("invalidated", summary.Invalidated).
		Int("pauses", summary.Pauses).
		Int("trajectories", session.Count()).
		Dur("elapsed", time.Since(st)).
		Msg("Replay done")

	rows := session.ExportRows()
	exportedAt := time.Now()
	fileName := lktrack.ExportFileName(settings.ExportDir, exportedAt)
	if err := writeCSV(fileName, rows); err != nil {
		return err
	}
	logger.Info().Str("file", fileName).Int("rows", len(rows)).Msg("CSV export written")

	if settings.SQLitePath == "" {
		return nil
	}
	db, err := exportdb.Open(ctx, settings.SQLitePath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.WriteRows(ctx, session.GetID(), exportedAt.Unix(), rows); err != nil {
		return err
	}
	logger.Info().Str("db", settings.SQLitePath).Str("session_id", session.GetID().String()).Msg("SQLite export written")
	return nil
}

func writeCSV(fileName string, rows []lktrack.ExportRow) error {
	file, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "can't create '%s'", fileName)
	}
	err = lktrack.WriteCSV(file, rows)
	if err != nil {
		file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "can't close '%s'", fileName)
}
