package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/stockbook/stockbook/internal/app"
	"github.com/stockbook/stockbook/internal/fiscal"
	"github.com/stockbook/stockbook/internal/ledger"
	"github.com/stockbook/stockbook/internal/masterdata/items"
	"github.com/stockbook/stockbook/internal/masterdata/locations"
	"github.com/stockbook/stockbook/internal/platform/db"
	"github.com/stockbook/stockbook/internal/reporting"
	"github.com/stockbook/stockbook/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	itemsService := items.NewService(items.NewRepository(pool))
	locationsService := locations.NewService(locations.NewRepository(pool))
	fiscalService := fiscal.NewService(fiscal.NewRepository(pool))
	ledgerRepo := ledger.NewRepository(pool)

	// Exports replay from Postgres directly; the worker does not keep
	// a report cache of its own.
	reportingService := reporting.NewService(ledgerRepo, itemsService, locationsService, fiscalService, nil)
	exportJob := reporting.NewExportJob(reportingService, cfg.ExportDir, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPeriodExport, Handler: exportJob.Handle},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
