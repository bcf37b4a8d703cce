package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"sentinel/internal/adapters/esi"
	httpadapter "sentinel/internal/adapters/http"
	pg "sentinel/internal/adapters/postgres"
	"sentinel/internal/adapters/zkill"
	"sentinel/internal/config"
	"sentinel/internal/ports"
	"sentinel/internal/services/analyzer"
	"sentinel/internal/services/pipeline"
	reportsvc "sentinel/internal/services/reports"
	"sentinel/internal/workers/analysisrunner"
)

func main() {
	configPath := flag.String("config", "sentinel.toml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required for the Postgres adapters")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var _ ports.ReportRepository = db
	var _ ports.JobRepository = db

	engine := analyzer.NewEngine(cfg, logger)
	svc := analyzer.NewService(engine, cfg.BatchConcurrency, logger)
	pipe := pipeline.New(
		esi.New(cfg.ESIBaseURL),
		zkill.New(cfg.ZKillBaseURL),
		nil, // auth bridge is optional; wire one here when configured
		svc, db, cfg.BatchConcurrency, logger,
	)
	reports := reportsvc.New(db)

	srv := httpadapter.New(pipe, reports, db, logger)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	if cfg.AnalysisWorkers > 0 {
		analysisrunner.Run(ctx, db, analysisrunner.PipelineProcessor{Pipeline: pipe},
			cfg.AnalysisWorkers, 500*time.Millisecond, logger)
		logger.Info("analysis workers started", "count", cfg.AnalysisWorkers)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	logger.Info("listening", "addr", cfg.ListenAddr, "env", cfg.Env)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		logger.Error("server error", "error", fmt.Errorf("serve: %w", err))
		os.Exit(1)
	}
}
