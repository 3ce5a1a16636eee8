// Package generator runs the compatibility calculator over a candidate set
// and produces ranked, thresholded candidate lists for one opening or one
// builder.
package generator

import (
	"context"
	"sort"
	"sync"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"

	engerr "match-engine/internal/common/errors"
)

// ProfileSource is the slice of the profile store the generator needs.
type ProfileSource interface {
	GetOpening(ctx context.Context, id string) (*models.OpeningSnapshot, error)
	GetBuilderProfile(ctx context.Context, userID string) (*models.BuilderSnapshot, error)
	CandidatesForOpening(ctx context.Context, opening *models.OpeningSnapshot, fn func(*models.BuilderSnapshot) error) error
	CandidatesForBuilder(ctx context.Context, builderUserID string, fn func(*models.OpeningSnapshot) error) error
}

// Scorer scores one (opening, builder) pair.
type Scorer interface {
	Calculate(ctx context.Context, opening *models.OpeningSnapshot, builder *models.BuilderSnapshot) (*models.CompatibilityResult, error)
}

// RankedCandidate is one scored entry of a generated list. Builder is set
// when generating for an opening, Opening when generating for a builder.
type RankedCandidate struct {
	Builder *models.BuilderSnapshot    `json:"builder,omitempty"`
	Opening *models.OpeningSnapshot    `json:"opening,omitempty"`
	Result  *models.CompatibilityResult `json:"result"`
}

// Options control one generation run.
type Options struct {
	Limit    int
	MinScore int
}

// Generator fans candidate scoring out across a bounded worker pool.
// Scoring one candidate never depends on another, so the only ordering
// obligation is the final stable rank.
type Generator struct {
	profiles    ProfileSource
	scorer      Scorer
	concurrency int
	logger      logger.Logger
}

func New(profiles ProfileSource, scorer Scorer, concurrency int, log logger.Logger) *Generator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Generator{
		profiles:    profiles,
		scorer:      scorer,
		concurrency: concurrency,
		logger:      log.WithFields(map[string]interface{}{"component": "generator"}),
	}
}

// ForOpening scores every eligible builder against the opening and returns
// the passing candidates at or above MinScore, ranked by score descending.
// Re-running with unchanged data yields the identical list.
func (g *Generator) ForOpening(ctx context.Context, openingID string, opts Options) ([]*RankedCandidate, error) {
	start := time.Now()
	opening, err := g.profiles.GetOpening(ctx, openingID)
	if err != nil {
		return nil, err
	}

	var candidates []*RankedCandidate
	err = g.profiles.CandidatesForOpening(ctx, opening, func(b *models.BuilderSnapshot) error {
		candidates = append(candidates, &RankedCandidate{Builder: b})
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.scoreAll(ctx, candidates, func(c *RankedCandidate) (*models.CompatibilityResult, error) {
		return g.scorer.Calculate(ctx, opening, c.Builder)
	}, "for_opening")

	ranked := rank(candidates, opts)
	metrics.ScoringDuration.WithLabelValues("for_opening").Observe(time.Since(start).Seconds())

	g.logger.Info("generated candidates for opening", map[string]interface{}{
		"openingId":  openingID,
		"candidates": len(candidates),
		"ranked":     len(ranked),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return ranked, nil
}

// ForBuilder is the symmetric direction: every active opening scored against
// one builder.
func (g *Generator) ForBuilder(ctx context.Context, builderUserID string, opts Options) ([]*RankedCandidate, error) {
	start := time.Now()
	builder, err := g.profiles.GetBuilderProfile(ctx, builderUserID)
	if err != nil {
		return nil, err
	}

	var candidates []*RankedCandidate
	err = g.profiles.CandidatesForBuilder(ctx, builderUserID, func(o *models.OpeningSnapshot) error {
		candidates = append(candidates, &RankedCandidate{Opening: o})
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.scoreAll(ctx, candidates, func(c *RankedCandidate) (*models.CompatibilityResult, error) {
		return g.scorer.Calculate(ctx, c.Opening, builder)
	}, "for_builder")

	ranked := rank(candidates, opts)
	metrics.ScoringDuration.WithLabelValues("for_builder").Observe(time.Since(start).Seconds())

	g.logger.Info("generated openings for builder", map[string]interface{}{
		"builderId":  builderUserID,
		"candidates": len(candidates),
		"ranked":     len(ranked),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return ranked, nil
}

// scoreAll scores candidates in place across the worker pool. A failing
// candidate is logged, counted and left with a nil Result; it must never
// abort the batch.
func (g *Generator) scoreAll(ctx context.Context, candidates []*RankedCandidate, score func(*RankedCandidate) (*models.CompatibilityResult, error), direction string) {
	jobs := make(chan *RankedCandidate)
	var wg sync.WaitGroup

	workers := g.concurrency
	if workers > len(candidates) {
		workers = len(candidates)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				result, err := score(c)
				if err != nil {
					metrics.CandidatesSkipped.WithLabelValues(direction).Inc()
					metrics.PairsScored.WithLabelValues("failed").Inc()
					g.logger.Warn("candidate scoring failed, skipping", map[string]interface{}{
						"error": engerr.NewCandidateScoringError(c.candidateID(), err),
					})
					continue
				}
				c.Result = result
			}
		}()
	}

	for _, c := range candidates {
		select {
		case jobs <- c:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}

func (c *RankedCandidate) candidateID() string {
	if c.Builder != nil {
		return c.Builder.UserID
	}
	if c.Opening != nil {
		return c.Opening.ID
	}
	return ""
}

// rank filters to passing candidates at or above the threshold and sorts by
// score descending. The sort is stable so equal scores keep enumeration
// order, which keeps repeated runs identical.
func rank(candidates []*RankedCandidate, opts Options) []*RankedCandidate {
	ranked := make([]*RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Result == nil || !c.Result.Passes || c.Result.Score < opts.MinScore {
			continue
		}
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.Score > ranked[j].Result.Score
	})

	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}
	return ranked
}
