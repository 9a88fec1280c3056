package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/syncagent/syncagent/internal/config"
	"github.com/syncagent/syncagent/internal/dispatch"
	"github.com/syncagent/syncagent/internal/logger"
	"github.com/syncagent/syncagent/internal/poller"
	"github.com/syncagent/syncagent/internal/status"
	"github.com/syncagent/syncagent/internal/telemetry"
	"github.com/syncagent/syncagent/internal/transport"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	if !cfg.Debug && !cfg.Verbose {
		if level, lerr := logger.ParseLevel(cfg.LogLevel); lerr == nil {
			logger.SetLogLevel(level)
		}
	}
	logger.Debug().Msg("Config loaded")

	session, err := transport.NewSession(transport.Config{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		UserAgent: "syncagentd",
		Timeout:   cfg.TimeoutDuration(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transport session")
	}

	// The standalone binary has no game engine attached; actions are
	// enforced against a logging stub. Hosts embedding the agent supply
	// their own dispatch.Engine.
	engine := newLogEngine()
	dispatcher := dispatch.New(engine)

	archive, err := telemetry.NewArchive(telemetry.ArchiveConfig{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry archive")
	}

	metrics, err := telemetry.NewRegistry(telemetry.Config{
		Session:       session,
		FlushInterval: cfg.FlushIntervalDuration(),
		Archive:       archive,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	actions, err := poller.New(poller.Config{
		Session:   session,
		Deliverer: dispatcher,
		Monitor:   cfg.Monitor,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize action poller")
	}

	reporter, err := status.NewReporter(status.Config{
		Session:  session,
		Interval: cfg.StatusIntervalDuration(),
		ServerID: cfg.ServerID,
		Players:  engine,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize status reporter")
	}

	if cfg.Monitor {
		logger.Info().Msg("Monitor mode activated. Logging received actions...")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := actions.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("error in action poller")
		}
	}()
	go func() {
		defer wg.Done()
		if err := reporter.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("error in status reporter")
		}
	}()
	wg.Wait()

	cleanup(session, metrics, archive)
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup(session transport.Session, metrics *telemetry.Registry, archive telemetry.Archive) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	status.ReportClosing(ctx, session, "process exit")
	metrics.Flush(ctx)

	if err := archive.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close telemetry archive")
	}
	if err := session.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close session")
	}
	logger.Info().Msg("Exiting...")
}
