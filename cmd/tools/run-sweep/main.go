// cmd/tools/run-sweep/main.go
//
// Runs one match sweep from the command line and prints the summary.
// Intended for operators and local development; the engine-manager binary
// runs the same sweep on its nightly schedule.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"match-engine/internal/common/config"
	"match-engine/internal/common/database"
	"match-engine/internal/common/logger"
	"match-engine/internal/matching/compatibility"
	"match-engine/internal/matching/generator"
	"match-engine/internal/matching/scenario"
	"match-engine/internal/matching/sweep"
	"match-engine/internal/store"
)

func main() {
	minScore := flag.Int("minScore", 0, "override minimum score (0 = use config)")
	limit := flag.Int("limit", 0, "override per-opening candidate cap (0 = use config)")
	timeout := flag.Duration("timeout", 2*time.Hour, "overall sweep timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres connection failed: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres ping failed: %v\n", err)
		os.Exit(1)
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer rdb.Close()

	sweepCfg := sweep.Config{
		MinScore:    cfg.Sweep.MinScore,
		Limit:       cfg.Sweep.Limit,
		Concurrency: cfg.Sweep.OpeningConcurrency,
	}
	if *minScore > 0 {
		sweepCfg.MinScore = *minScore
	}
	if *limit > 0 {
		sweepCfg.Limit = *limit
	}

	profiles := store.NewProfileStore(pg.DB, rdb.Client, cfg.Matching.ProfileCacheTTLDuration(), log)
	matches := store.NewMatchStore(pg.DB, log)
	provider := scenario.NewProvider(pg.DB, rdb.Client, cfg.Matching.ScenarioTimeoutDuration(), log)
	calculator := compatibility.NewCalculator(provider, log)
	gen := generator.New(profiles, calculator, cfg.Matching.ScoringConcurrency, log)
	sweeper := sweep.New(profiles, gen, matches, sweepCfg, nil, log)

	sum, err := sweeper.Run(ctx)
	if err != nil && sum == nil {
		fmt.Fprintf(os.Stderr, "sweep failed: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(sum, "", "  ")
	fmt.Println(string(out))
	if err != nil {
		fmt.Fprintf(os.Stderr, "sweep ended early: %v\n", err)
		os.Exit(1)
	}
}
