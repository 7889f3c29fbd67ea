package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/cli"
	"cashflow/internal/config"
	apphttp "cashflow/internal/http"
	"cashflow/internal/log"
	"cashflow/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	store, res := cli.OpenLedger(context.Background(), logger, cfg)
	defer res.Close()

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	svc := services.NewLedgerService(store, publisher, services.WithLogger(logger))
	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:      logger,
		TrendMonths: cfg.TrendMonths,
		CacheSize:   cfg.CacheSize,
		CacheTTL:    cfg.CacheTTL,
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting cashflow server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"notifications", cfg.HasAMQP(),
		log.FieldVersion, store.Version())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// newPublisher connects the change notifier when AMQP is configured. A broker
// that is down at startup only disables notifications; the ledger still works.
func newPublisher(cfg *config.Config, logger *log.Logger) (services.ChangePublisher, func()) {
	if !cfg.HasAMQP() {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil, func() {}
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client, continuing without notifications", log.FieldError, err)
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}
