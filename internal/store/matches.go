package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"

	engerr "match-engine/internal/common/errors"

	"github.com/google/uuid"
)

// MatchStore owns the matches table. Score and breakdown fields are written
// by the batch generator; action and status fields only by the action service.
type MatchStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewMatchStore(db *sql.DB, log logger.Logger) *MatchStore {
	return &MatchStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "match-store"}),
	}
}

const matchColumns = `id, founder_id, builder_id, opening_id, compatibility_score,
	score_breakdown, status, founder_action, founder_action_at, builder_action,
	builder_action_at, is_mutual, matched_at, created_at, updated_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	var breakdown []byte
	var founderAction, builderAction sql.NullString
	err := row.Scan(
		&m.ID, &m.FounderID, &m.BuilderID, &m.OpeningID, &m.CompatibilityScore,
		&breakdown, &m.Status, &founderAction, &m.FounderActionAt, &builderAction,
		&m.BuilderActionAt, &m.IsMutual, &m.MatchedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(breakdown, &m.ScoreBreakdown); err != nil {
		m.ScoreBreakdown = map[string]models.FactorBreakdown{}
	}
	if founderAction.Valid {
		a := models.MatchAction(founderAction.String)
		m.FounderAction = &a
	}
	if builderAction.Valid {
		a := models.MatchAction(builderAction.String)
		m.BuilderAction = &a
	}
	return &m, nil
}

// UpsertMatch creates or refreshes the match row for the (founder, builder,
// opening) triple. On conflict only score, breakdown and updated_at change;
// action and status state survives every refresh. Returns the row and whether
// it was newly created.
func (s *MatchStore) UpsertMatch(ctx context.Context, founderID, builderID, openingID string, score int, breakdown map[string]models.FactorBreakdown) (*models.Match, bool, error) {
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return nil, false, engerr.NewDatabaseUpsertError(err)
	}

	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO matches (
			id, founder_id, builder_id, opening_id, compatibility_score,
			score_breakdown, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 'PENDING', $7, $7)
		ON CONFLICT (founder_id, builder_id, opening_id) DO UPDATE SET
			compatibility_score = EXCLUDED.compatibility_score,
			score_breakdown     = EXCLUDED.score_breakdown,
			updated_at          = EXCLUDED.updated_at
		RETURNING `+matchColumns+`, (xmax = 0) AS inserted`,
		uuid.New().String(), founderID, builderID, openingID, score, breakdownJSON, now,
	)

	var m models.Match
	var breakdownOut []byte
	var founderAction, builderAction sql.NullString
	var inserted bool
	err = row.Scan(
		&m.ID, &m.FounderID, &m.BuilderID, &m.OpeningID, &m.CompatibilityScore,
		&breakdownOut, &m.Status, &founderAction, &m.FounderActionAt, &builderAction,
		&m.BuilderActionAt, &m.IsMutual, &m.MatchedAt, &m.CreatedAt, &m.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return nil, false, engerr.NewDatabaseUpsertError(err)
	}
	if err := json.Unmarshal(breakdownOut, &m.ScoreBreakdown); err != nil {
		m.ScoreBreakdown = map[string]models.FactorBreakdown{}
	}
	if founderAction.Valid {
		a := models.MatchAction(founderAction.String)
		m.FounderAction = &a
	}
	if builderAction.Valid {
		a := models.MatchAction(builderAction.String)
		m.BuilderAction = &a
	}
	return &m, inserted, nil
}

// FindMatch returns one match by id.
func (s *MatchStore) FindMatch(ctx context.Context, id string) (*models.Match, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engerr.NewNotFoundError("match", id)
	}
	if err != nil {
		return nil, engerr.NewDatabaseQueryError("find match", err)
	}
	return m, nil
}

// SaveActions persists the mutable action-side fields of a match. Score and
// breakdown are deliberately excluded; only the generator writes those.
func (s *MatchStore) SaveActions(ctx context.Context, m *models.Match) error {
	var founderAction, builderAction interface{}
	if m.FounderAction != nil {
		founderAction = string(*m.FounderAction)
	}
	if m.BuilderAction != nil {
		builderAction = string(*m.BuilderAction)
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE matches SET
			status = $2,
			founder_action = $3,
			founder_action_at = $4,
			builder_action = $5,
			builder_action_at = $6,
			is_mutual = $7,
			matched_at = $8,
			updated_at = $9
		WHERE id = $1`,
		m.ID, m.Status, founderAction, m.FounderActionAt, builderAction,
		m.BuilderActionAt, m.IsMutual, m.MatchedAt, time.Now().UTC(),
	)
	if err != nil {
		return engerr.NewDatabaseQueryError("save match actions", err)
	}
	return nil
}

// FeedFor returns the score-ranked feed slice for one side of the market:
// matches still awaiting that side's decision (own action null or SAVE),
// status PENDING or LIKED. Equal scores tie-break on id so pagination is
// reproducible.
func (s *MatchStore) FeedFor(ctx context.Context, userID, side string, limit int) ([]*models.Match, error) {
	column := "builder_action"
	owner := "builder_id"
	if side == "founder" {
		column = "founder_action"
		owner = "founder_id"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE `+owner+` = $1
		  AND status IN ('PENDING', 'LIKED')
		  AND (`+column+` IS NULL OR `+column+` = 'SAVE')
		ORDER BY compatibility_score DESC, id ASC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, engerr.NewDatabaseQueryError("feed query", err)
	}
	defer rows.Close()

	var out []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, engerr.NewDatabaseQueryError("scan match", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// RecordSweepRun persists one sweep summary.
func (s *MatchStore) RecordSweepRun(ctx context.Context, sum *models.SweepSummary) error {
	if sum.ID == "" {
		sum.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sweep_runs (
			id, started_at, finished_at, openings_processed,
			matches_created, matches_updated, errors, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sum.ID, sum.StartedAt, sum.FinishedAt, sum.OpeningsProcessed,
		sum.MatchesCreated, sum.MatchesUpdated, sum.Errors, sum.DurationMs,
	)
	if err != nil {
		// Summary persistence is best-effort; the run itself already happened.
		s.logger.Warn("sweep run insert failed", map[string]interface{}{
			"sweepId": sum.ID,
			"error":   err,
		})
	}
	return nil
}

// LatestSweepRun returns the most recent sweep summary.
func (s *MatchStore) LatestSweepRun(ctx context.Context) (*models.SweepSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, openings_processed,
		       matches_created, matches_updated, errors, duration_ms
		FROM sweep_runs
		ORDER BY started_at DESC
		LIMIT 1`)

	var sum models.SweepSummary
	err := row.Scan(
		&sum.ID, &sum.StartedAt, &sum.FinishedAt, &sum.OpeningsProcessed,
		&sum.MatchesCreated, &sum.MatchesUpdated, &sum.Errors, &sum.DurationMs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engerr.NewNotFoundError("sweep run", "latest")
	}
	if err != nil {
		return nil, engerr.NewDatabaseQueryError("latest sweep run", err)
	}
	return &sum, nil
}
