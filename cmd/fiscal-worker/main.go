package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"fiscal/internal/amqp"
	"fiscal/internal/backend"
	"fiscal/internal/cli"
	"fiscal/internal/config"
	"fiscal/internal/log"
	"fiscal/internal/storage"
	"fiscal/internal/worker"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		os.Stderr.WriteString("load .env: " + err.Error() + "\n")
	}

	cfg, logger := cli.LoadAndValidateConfig("fiscal-worker", (*config.Config).ValidateWorker)
	logger.Info("Starting fiscal-worker", log.FieldOperation, log.OpStartup)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	exporter, err := backend.NewFactory(logger).Exporter(ctx, backendCfg)
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	w := worker.NewExportWorker(repo, exporter, cfg.SyncBatchSize, logger)
	if n, err := w.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", log.FieldError, err)
	} else {
		logger.Info("Startup export check complete", "exported", n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, w.HandleMessage)
	})
	g.Go(func() error {
		return w.Run(gctx, cfg.SyncInterval)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
