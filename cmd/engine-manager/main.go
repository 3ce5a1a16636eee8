// cmd/engine-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"match-engine/internal/api"
	"match-engine/internal/common/config"
	"match-engine/internal/common/database"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/observability"
	"match-engine/internal/matching/actions"
	"match-engine/internal/matching/compatibility"
	"match-engine/internal/matching/feed"
	"match-engine/internal/matching/generator"
	"match-engine/internal/matching/scenario"
	"match-engine/internal/matching/sweep"
	"match-engine/internal/scheduler"
	"match-engine/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// sweepJob adapts the sweeper to the scheduler's Job interface.
type sweepJob struct {
	sweeper *sweep.Sweeper
	timeout time.Duration
}

func (j *sweepJob) Name() string { return "nightly-sweep" }

func (j *sweepJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_, err := j.sweeper.Run(ctx)
	return err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting engine manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("engine-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if err := pg.ApplyMigrations(ctx); err != nil {
		zapLog.Fatal("migrations failed", zap.Error(err))
	}

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Wire the engine ---
	profiles := store.NewProfileStore(pg.DB, rdb.Client, cfg.Matching.ProfileCacheTTLDuration(), log)
	matches := store.NewMatchStore(pg.DB, log)

	scenarioProvider := scenario.NewProvider(pg.DB, rdb.Client, cfg.Matching.ScenarioTimeoutDuration(), log)
	calculator := compatibility.NewCalculator(scenarioProvider, log)
	gen := generator.New(profiles, calculator, cfg.Matching.ScoringConcurrency, log)
	sweeper := sweep.New(profiles, gen, matches, sweep.Config{
		MinScore:    cfg.Sweep.MinScore,
		Limit:       cfg.Sweep.Limit,
		Concurrency: cfg.Sweep.OpeningConcurrency,
	}, obs, log)
	actionService := actions.NewService(matches, log)
	feedSelector := feed.NewSelector(matches, cfg.Matching.DefaultLimit, log)

	// --- Nightly schedule ---
	sched := scheduler.New(log)
	job := &sweepJob{sweeper: sweeper, timeout: 2 * time.Hour}
	if err := sched.AddJob(cfg.Sweep.Schedule, job); err != nil {
		zapLog.Fatal("sweep schedule registration failed", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	// --- HTTP surface ---
	server := api.NewServer(calculator, profiles, gen, actionService, feedSelector, sweeper, matches, cfg.Matching, log)
	go func() {
		if err := server.Start(fmt.Sprintf("%d", cfg.Server.Port)); err != nil {
			zapLog.Info("http server stopped", zap.Error(err))
		}
	}()
	zapLog.Info("Engine manager running", zap.Int("port", cfg.Server.Port))

	// --- Wait for shutdown signal ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("http shutdown error", zap.Error(err))
	}
	zapLog.Info("Engine manager stopped")
}
