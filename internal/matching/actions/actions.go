// Package actions implements the match action state machine: recording
// LIKE / SKIP / SAVE decisions and detecting the mutual-match transition.
package actions

import (
	"context"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"

	engerr "match-engine/internal/common/errors"
)

// MatchStore is the persistence slice the action service needs.
type MatchStore interface {
	FindMatch(ctx context.Context, id string) (*models.Match, error)
	SaveActions(ctx context.Context, m *models.Match) error
}

// Service applies swipe actions to matches.
type Service struct {
	matches MatchStore
	logger  logger.Logger
}

func NewService(matches MatchStore, log logger.Logger) *Service {
	return &Service{
		matches: matches,
		logger:  log.WithFields(map[string]interface{}{"component": "actions"}),
	}
}

// RecordAction applies one user's action to a match and returns the updated
// match plus whether this call is the one that made it mutual. The mutual
// flag fires exactly once per match; replays and later actions return false.
func (s *Service) RecordAction(ctx context.Context, matchID, userID string, action models.MatchAction) (*models.Match, bool, error) {
	if !models.ValidAction(action) {
		return nil, false, engerr.NewInvalidInputError("action must be one of LIKE, SKIP, SAVE")
	}

	m, err := s.matches.FindMatch(ctx, matchID)
	if err != nil {
		return nil, false, err
	}

	side := m.SideOf(userID)
	if side == "" {
		return nil, false, engerr.NewForbiddenError("user is not a participant of this match")
	}

	now := time.Now().UTC()
	if side == "founder" {
		m.FounderAction = &action
		m.FounderActionAt = &now
	} else {
		m.BuilderAction = &action
		m.BuilderActionAt = &now
	}

	newlyMutual := s.applyTransition(m, action, now)

	if err := s.matches.SaveActions(ctx, m); err != nil {
		return nil, false, err
	}

	metrics.ActionsRecorded.WithLabelValues(string(action)).Inc()
	s.logger.Info("action recorded", map[string]interface{}{
		"matchId":     m.ID,
		"side":        side,
		"action":      string(action),
		"status":      string(m.Status),
		"newlyMutual": newlyMutual,
	})
	return m, newlyMutual, nil
}

// applyTransition moves the match between the engine-owned states. States
// past MUTUAL belong to the trial/hire flow and are never touched here;
// actions are still recorded on them. SKIPPED is sticky: a later LIKE is
// stored but the match stays skipped.
func (s *Service) applyTransition(m *models.Match, action models.MatchAction, now time.Time) bool {
	if !engineOwned(m.Status) {
		return false
	}

	switch action {
	case models.ActionSkip:
		m.Status = models.MatchSkipped
		return false

	case models.ActionSave:
		return false

	case models.ActionLike:
		if m.Status == models.MatchSkipped {
			return false
		}
		if bothLiked(m) {
			wasMutual := m.IsMutual
			m.Status = models.MatchMutual
			m.IsMutual = true
			if m.MatchedAt == nil {
				m.MatchedAt = &now
			}
			return !wasMutual
		}
		if m.Status == models.MatchPending {
			m.Status = models.MatchLiked
		}
		return false
	}
	return false
}

func engineOwned(status models.MatchStatus) bool {
	switch status {
	case models.MatchPending, models.MatchLiked, models.MatchSkipped, models.MatchMutual:
		return true
	}
	return false
}

func bothLiked(m *models.Match) bool {
	return m.FounderAction != nil && *m.FounderAction == models.ActionLike &&
		m.BuilderAction != nil && *m.BuilderAction == models.ActionLike
}
