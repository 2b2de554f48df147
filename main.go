package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-scheduling/api"
	"clinic-scheduling/appointment"
	"clinic-scheduling/block"
	"clinic-scheduling/cache"
	"clinic-scheduling/config"
	"clinic-scheduling/database"
	"clinic-scheduling/jobs"
	"clinic-scheduling/logging"
	"clinic-scheduling/professional"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}

	err = run(cfg, logger)
	os.Exit(exitCode(logger, err))
}

// exitCode logs err and flushes the logger before the process exits, since
// os.Exit skips deferred calls.
func exitCode(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to database")
	db, err := database.Connect(ctx, cfg.PostgresDSN, cfg.DBMaxIdleConns, cfg.DBMaxOpenConns)
	if err != nil {
		return fmt.Errorf("database connect: %w", err)
	}
	defer db.Close()
	logger.Info("successfully connected to database")

	if cfg.DBAutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("database schema ready")
	}

	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	opts := []api.Option{
		api.WithLogger(logger),
		api.WithTrustedProxies(proxies...),
		api.WithSlotLength(cfg.SlotLength()),
		api.WithOverlapRule(cfg.OverlapRule()),
		api.WithLocation(cfg.Location()),
		api.WithRateLimit(cfg.RateLimitPerMinute),
	}

	var invalidator jobs.CacheInvalidator
	if cfg.CacheEnabled {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("cache connect: %w", err)
		}
		defer client.Close()

		slotCache := cache.NewSlotCache(client, cfg.SlotCacheTTL())
		opts = append(opts, api.WithSlotCache(slotCache))
		invalidator = slotCache
		logger.Info("slot cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	service := api.NewAPI(db, opts...)
	service.RegisterRoutes()

	appointments := appointment.NewAccessor(db, professional.NewAccessor(db), block.NewAccessor(db))
	sweeper := jobs.NewCompletionSweeper(appointments, invalidator, logger, time.Now)

	scheduler := cron.New(cron.WithLocation(cfg.Location()))
	if _, err := sweeper.Register(scheduler, cfg.CompletionSweepSchedule); err != nil {
		return fmt.Errorf("register completion sweep: %w", err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           service.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
