// Package feed selects the daily ranked match feed for one side of the
// marketplace.
package feed

import (
	"context"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"

	engerr "match-engine/internal/common/errors"
)

// FeedStore is the query slice behind the selector.
type FeedStore interface {
	FeedFor(ctx context.Context, userID, side string, limit int) ([]*models.Match, error)
}

// Selector builds the per-user feed. Ranking and filtering live in the
// store's query; the selector owns input validation and defaults.
type Selector struct {
	store        FeedStore
	defaultLimit int
	logger       logger.Logger
}

func NewSelector(store FeedStore, defaultLimit int, log logger.Logger) *Selector {
	if defaultLimit < 1 {
		defaultLimit = 50
	}
	return &Selector{
		store:        store,
		defaultLimit: defaultLimit,
		logger:       log.WithFields(map[string]interface{}{"component": "feed"}),
	}
}

// For returns the caller's feed: matches still awaiting their decision,
// highest score first. role must be "founder" or "builder". limit <= 0 uses
// the configured default.
func (s *Selector) For(ctx context.Context, userID, role string, limit int) ([]*models.Match, error) {
	if userID == "" {
		return nil, engerr.NewInvalidInputError("userId is required")
	}
	if role != "founder" && role != "builder" {
		return nil, engerr.NewInvalidInputError("role must be founder or builder")
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	matches, err := s.store.FeedFor(ctx, userID, role, limit)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("feed built", map[string]interface{}{
		"userId": userID,
		"role":   role,
		"count":  len(matches),
	})
	return matches, nil
}
