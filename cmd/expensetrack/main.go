package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"expensetrack/internal/amqp"
	"expensetrack/internal/analytics"
	"expensetrack/internal/backend"
	"expensetrack/internal/cache"
	"expensetrack/internal/config"
	apphttp "expensetrack/internal/http"
	"expensetrack/internal/identity"
	applog "expensetrack/internal/log"
	"expensetrack/internal/sheets"
	gsheet "expensetrack/internal/sheets/google"
	"expensetrack/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	id := identity.NewStatic(cfg.APIAuthToken, cfg.PreferredCurrency)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Backend configuration failed", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(id, logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	engine := analytics.NewEngine(result.Fetcher, id,
		analytics.WithTTL(cfg.CacheTTL),
		analytics.WithPageLimit(cfg.RawPageLimit),
		analytics.WithLogger(logger.WithComponent(applog.ComponentAnalytics).Logger))

	cacheManager := cache.NewManager()
	engine.RegisterCaches(cacheManager)
	cacheManager.StartCleanup(5 * time.Minute)
	defer cacheManager.Stop()

	// Optional Google Sheets export
	var exporter sheets.SummaryExporter
	if cfg.GoogleSpreadsheetID != "" {
		cli, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = cli
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional AMQP invalidation feed: mutation messages from the expenses
	// backend flush the in-process caches.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without invalidation feed", "error", err)
		} else {
			defer amqpClient.Close()
			invalidation := worker.NewInvalidationWorker(engine, amqpClient)
			go func() {
				if err := invalidation.Run(ctx); err != nil && ctx.Err() == nil {
					logger.Error("Invalidation worker stopped", "error", err)
				}
			}()
			logger.Info("AMQP invalidation feed enabled",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, engine, exporter, logger.WithComponent(applog.ComponentHTTP))

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received",
			applog.FieldOperation, applog.OpShutdown,
			"signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting expensetrack server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"cache_ttl", cfg.CacheTTL.String())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
