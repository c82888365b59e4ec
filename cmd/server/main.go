package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"socialpulse/internal/config"
	"socialpulse/internal/db"
	"socialpulse/internal/email"
	"socialpulse/internal/ingest"
	"socialpulse/internal/jobs"
	"socialpulse/internal/logging"
	"socialpulse/internal/metrics"
	"socialpulse/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		return fmt.Errorf("load yaml config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	st, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()
	logger.Info("database ready")

	metrics.Init(st)

	engine := ingest.NewEngine(st, cfg.LoaderOptions(yamlCfg), logger)
	notifier := email.NewNotifier(cfg, yamlCfg.Recipients())
	if notifier.Enabled() {
		logger.Info("email notifications enabled", "recipients", len(yamlCfg.Recipients()))
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	srv.RegisterRoutes(st, engine)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.InboxDir != "" {
		inbox, err := jobs.NewInbox(cfg.InboxDir, cfg.InboxSchedule, engine, notifier, logger)
		if err != nil {
			return fmt.Errorf("create inbox job: %w", err)
		}
		g.Go(func() error {
			return inbox.Start(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}
