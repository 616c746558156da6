package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockbook/stockbook/internal/app"
	"github.com/stockbook/stockbook/internal/fiscal"
	"github.com/stockbook/stockbook/internal/ledger"
	"github.com/stockbook/stockbook/internal/masterdata/items"
	"github.com/stockbook/stockbook/internal/masterdata/locations"
	"github.com/stockbook/stockbook/internal/observability"
	"github.com/stockbook/stockbook/internal/platform/cache"
	"github.com/stockbook/stockbook/internal/platform/db"
	"github.com/stockbook/stockbook/internal/reporting"
	"github.com/stockbook/stockbook/internal/shared"
	"github.com/stockbook/stockbook/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis connect", slog.Any("error", err))
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	store := cache.NewStore(redisClient, cfg.SnapshotCacheTTL)
	auditLogger := shared.NewAuditLogger(pool)

	itemsService := items.NewService(items.NewRepository(pool))
	itemsHandler := items.NewHandler(logger, itemsService)

	locationsService := locations.NewService(locations.NewRepository(pool))
	locationsHandler := locations.NewHandler(logger, locationsService)

	fiscalService := fiscal.NewService(fiscal.NewRepository(pool))
	fiscalHandler := fiscal.NewHandler(logger, fiscalService)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, itemsService, auditLogger, store).
		WithReplayWorkers(cfg.ReplayWorkers)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	reportingService := reporting.NewService(ledgerRepo, itemsService, locationsService, fiscalService, store)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	reportingHandler := reporting.NewHandler(logger, reportingService, jobClient)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		LedgerHandler:    ledgerHandler,
		ReportingHandler: reportingHandler,
		ItemsHandler:     itemsHandler,
		LocationsHandler: locationsHandler,
		FiscalHandler:    fiscalHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
