// Package scenario implements the quiz-based compatibility provider feeding
// the scenario factor of the compatibility calculator.
package scenario

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/matching/compatibility"

	"github.com/redis/go-redis/v9"
)

// Provider scores how similarly two users answered the scenario quiz. It is
// the one external lookup inside the scoring hot loop, so every call is
// bounded by a timeout; callers fall back to the neutral score on failure.
type Provider struct {
	db       *sql.DB
	redis    *redis.Client
	timeout  time.Duration
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewProvider(db *sql.DB, rdb *redis.Client, timeout time.Duration, log logger.Logger) *Provider {
	return &Provider{
		db:       db,
		redis:    rdb,
		timeout:  timeout,
		cacheTTL: 10 * time.Minute,
		logger:   log.WithFields(map[string]interface{}{"component": "scenario-provider"}),
	}
}

// Score returns the 0..100 answer-overlap between two users, or
// compatibility.ErrScenarioUnavailable when either has not completed the quiz.
func (p *Provider) Score(ctx context.Context, userA, userB string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	answersA, err := p.responsesFor(ctx, userA)
	if err != nil {
		return 0, err
	}
	answersB, err := p.responsesFor(ctx, userB)
	if err != nil {
		return 0, err
	}

	common := 0
	matching := 0
	for question, a := range answersA {
		b, ok := answersB[question]
		if !ok {
			continue
		}
		common++
		if a == b {
			matching++
		}
	}
	if common == 0 {
		return 0, compatibility.ErrScenarioUnavailable
	}

	return int(math.Round(float64(matching) / float64(common) * 100)), nil
}

// responsesFor loads one user's quiz answers, consulting the redis cache
// first. A missing row means the quiz was never completed.
func (p *Provider) responsesFor(ctx context.Context, userID string) (map[string]string, error) {
	cacheKey := "scenario:responses:" + userID
	if p.redis != nil {
		if val, err := p.redis.Get(ctx, cacheKey).Result(); err == nil {
			var answers map[string]string
			if err := json.Unmarshal([]byte(val), &answers); err == nil {
				return answers, nil
			}
		}
	}

	var raw []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT answers FROM scenario_responses WHERE user_id = $1`, userID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, compatibility.ErrScenarioUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("scenario responses lookup: %w", err)
	}

	var answers map[string]string
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("scenario responses decode: %w", err)
	}
	if len(answers) == 0 {
		return nil, compatibility.ErrScenarioUnavailable
	}

	if p.redis != nil {
		if err := p.redis.Set(ctx, cacheKey, raw, p.cacheTTL).Err(); err != nil {
			p.logger.Debug("scenario cache write failed", map[string]interface{}{
				"userId": userID,
				"error":  err,
			})
		}
	}

	return answers, nil
}
