package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fiscal/internal/backend"
	"fiscal/internal/bills"
	"fiscal/internal/cache"
	"fiscal/internal/cli"
	"fiscal/internal/config"
	apphttp "fiscal/internal/http"
	"fiscal/internal/ledger"
	"fiscal/internal/log"
	"fiscal/internal/report"
	"fiscal/internal/services"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		os.Stderr.WriteString("load .env: " + err.Error() + "\n")
	}

	cfg, logger := cli.LoadAndValidateConfig("fiscal", (*config.Config).Validate)
	logger.Info("Starting fiscal", "port", cfg.Port, "backend", cfg.DataBackend, log.FieldOperation, log.OpStartup)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	collab, err := backend.NewFactory(logger).Collaborators(ctx, backendCfg)
	if err != nil {
		return err
	}

	store := ledger.New()
	book := bills.NewBook()
	ledgerSvc := services.NewLedgerService(store, book, collab.Snapshot(), collab.EventPublisher(), logger)
	defer func() {
		if err := ledgerSvc.Close(); err != nil {
			logger.Error("Failed to close ledger collaborators", log.FieldError, err)
		}
	}()

	if collab.Repository != nil {
		if err := ledgerSvc.RestoreFrom(ctx, collab.Repository); err != nil {
			return err
		}
	}
	if store.Len() == 0 && cfg.SeedFile != "" {
		txs, err := ledger.ReadSeedFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := ledgerSvc.Seed(ctx, txs); err != nil {
			return err
		}
	}

	dashboards := cache.NewLRUCache[report.Dashboard](cfg.CacheSize, cfg.CacheTTL)
	insights := cache.NewLRUCache[report.Insights](cfg.CacheSize, cfg.CacheTTL)
	insightsSvc := services.NewInsightsService(store, book, cfg.ReportOptions(), dashboards, insights, logger)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:          ":" + cfg.Port,
		RateLimitRPM:  cfg.RateLimitRPM,
		UpcomingBills: cfg.UpcomingBillsLimit,
	}, ledgerSvc, insightsSvc, logger)

	g, gctx := errgroup.WithContext(ctx)

	cacheManager := cache.NewManager(logger)
	cacheManager.Register(dashboards)
	cacheManager.Register(insights)
	if cfg.CacheTTL > 0 {
		cacheManager.StartCleanup(gctx, cfg.CacheTTL)
	}
	defer cacheManager.Wait()

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		logger.Info("Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
