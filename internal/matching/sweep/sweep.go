// Package sweep implements the nightly orchestrator that regenerates matches
// for every active opening.
package sweep

import (
	"context"
	"sync"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/common/observability"
	"match-engine/internal/matching/generator"
	"match-engine/internal/models"

	engerr "match-engine/internal/common/errors"
)

// OpeningLister streams every active, visible opening.
type OpeningLister interface {
	ListActiveOpenings(ctx context.Context, fn func(*models.OpeningSnapshot) error) error
}

// CandidateGenerator is the ranked-candidate source for one opening.
type CandidateGenerator interface {
	ForOpening(ctx context.Context, openingID string, opts generator.Options) ([]*generator.RankedCandidate, error)
}

// MatchWriter persists sweep output.
type MatchWriter interface {
	UpsertMatch(ctx context.Context, founderID, builderID, openingID string, score int, breakdown map[string]models.FactorBreakdown) (*models.Match, bool, error)
	RecordSweepRun(ctx context.Context, sum *models.SweepSummary) error
}

// Config carries the tunables of one sweep.
type Config struct {
	MinScore    int
	Limit       int
	Concurrency int
}

// Sweeper runs the nightly match refresh. One failing opening never aborts
// the run; it is counted and the sweep moves on.
type Sweeper struct {
	openings  OpeningLister
	generator CandidateGenerator
	matches   MatchWriter
	cfg       Config
	obs       *observability.Observability
	logger    logger.Logger
}

func New(openings OpeningLister, gen CandidateGenerator, matches MatchWriter, cfg Config, obs *observability.Observability, log logger.Logger) *Sweeper {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Sweeper{
		openings:  openings,
		generator: gen,
		matches:   matches,
		cfg:       cfg,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "sweep"}),
	}
}

// Run executes one full sweep and returns its summary. Cancellation between
// openings stops the run early; the partial summary is still recorded so an
// interrupted night shows up in the run history.
func (s *Sweeper) Run(ctx context.Context) (*models.SweepSummary, error) {
	start := time.Now().UTC()
	sum := &models.SweepSummary{StartedAt: start}

	s.logger.Info("sweep starting", map[string]interface{}{
		"minScore":    s.cfg.MinScore,
		"limit":       s.cfg.Limit,
		"concurrency": s.cfg.Concurrency,
	})

	var openings []*models.OpeningSnapshot
	err := s.openings.ListActiveOpenings(ctx, func(o *models.OpeningSnapshot) error {
		openings = append(openings, o)
		return nil
	})
	if err != nil {
		if s.obs != nil {
			s.obs.RecordRun(ctx, "sweep", "failed")
		}
		return nil, engerr.NewSweepOpeningError("all", err)
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		canceled bool
	)
	sem := make(chan struct{}, s.cfg.Concurrency)

	for _, opening := range openings {
		if ctx.Err() != nil {
			canceled = true
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(o *models.OpeningSnapshot) {
			defer wg.Done()
			defer func() { <-sem }()

			created, updated, err := s.sweepOpening(ctx, o)

			mu.Lock()
			defer mu.Unlock()
			sum.OpeningsProcessed++
			if err != nil {
				sum.Errors++
				metrics.SweepOpenings.WithLabelValues("failed").Inc()
				s.logger.Error("sweep failed for opening", map[string]interface{}{
					"openingId": o.ID,
					"error":     err,
					"retryable": engerr.IsRetryable(err),
				})
				return
			}
			sum.MatchesCreated += created
			sum.MatchesUpdated += updated
			metrics.SweepOpenings.WithLabelValues("ok").Inc()
		}(opening)
	}
	wg.Wait()

	if canceled {
		// An interrupted night counts as one error in the run record.
		sum.Errors++
	}

	sum.FinishedAt = time.Now().UTC()
	sum.DurationMs = sum.FinishedAt.Sub(sum.StartedAt).Milliseconds()

	metrics.SweepDuration.Observe(sum.FinishedAt.Sub(sum.StartedAt).Seconds())
	if s.obs != nil {
		status := "ok"
		if canceled {
			status = "canceled"
		}
		s.obs.RecordRun(ctx, "sweep", status)
		s.obs.RecordRunDuration(ctx, sum.FinishedAt.Sub(sum.StartedAt), "sweep")
	}

	// Summary persistence must not depend on the canceled request context.
	recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.matches.RecordSweepRun(recordCtx, sum)

	s.logger.Info("sweep finished", map[string]interface{}{
		"sweepId":           sum.ID,
		"openingsProcessed": sum.OpeningsProcessed,
		"matchesCreated":    sum.MatchesCreated,
		"matchesUpdated":    sum.MatchesUpdated,
		"errors":            sum.Errors,
		"durationMs":        sum.DurationMs,
		"canceled":          canceled,
	})

	if canceled {
		return sum, ctx.Err()
	}
	return sum, nil
}

// sweepOpening regenerates one opening's matches and upserts every ranked
// candidate. A failed upsert skips that candidate, not the opening.
func (s *Sweeper) sweepOpening(ctx context.Context, opening *models.OpeningSnapshot) (created, updated int, err error) {
	ranked, err := s.generator.ForOpening(ctx, opening.ID, generator.Options{
		Limit:    s.cfg.Limit,
		MinScore: s.cfg.MinScore,
	})
	if err != nil {
		return 0, 0, err
	}

	for _, c := range ranked {
		_, inserted, err := s.matches.UpsertMatch(ctx,
			opening.FounderID, c.Builder.UserID, opening.ID,
			c.Result.Score, c.Result.Breakdown,
		)
		if err != nil {
			metrics.MatchesUpserted.WithLabelValues("failed").Inc()
			s.logger.Warn("match upsert failed", map[string]interface{}{
				"openingId": opening.ID,
				"builderId": c.Builder.UserID,
				"error":     err,
			})
			continue
		}
		if inserted {
			created++
			metrics.MatchesUpserted.WithLabelValues("created").Inc()
		} else {
			updated++
			metrics.MatchesUpserted.WithLabelValues("updated").Inc()
		}
	}
	return created, updated, nil
}
