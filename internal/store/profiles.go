// Package store implements the persistence interfaces the engine consumes:
// the read-only profile/opening projections and the engine-owned match store.
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

	"github.com/redis/go-redis/v9"
)

// ProfileStore reads opening and builder snapshots. It never writes profile
// data; the profile service owns those tables.
type ProfileStore struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewProfileStore(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *ProfileStore {
	return &ProfileStore{
		db:       db,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "profile-store"}),
	}
}

const openingColumns = `id, founder_id, role_type, required_skills, equity_min, equity_max,
	cash_min, cash_max, currency, hours_per_week, remote_preference, stage, city, country, status`

func scanOpening(row interface{ Scan(...interface{}) error }) (*models.OpeningSnapshot, error) {
	var o models.OpeningSnapshot
	var skills []byte
	err := row.Scan(
		&o.ID, &o.FounderID, &o.RoleType, &skills, &o.EquityMin, &o.EquityMax,
		&o.CashMin, &o.CashMax, &o.Currency, &o.HoursPerWeek, &o.RemotePreference,
		&o.Stage, &o.City, &o.Country, &o.Status,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skills, &o.RequiredSkills); err != nil {
		o.RequiredSkills = []string{}
	}
	return &o, nil
}

// GetOpening returns the scoring snapshot of one opening.
func (s *ProfileStore) GetOpening(ctx context.Context, id string) (*models.OpeningSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+openingColumns+` FROM openings WHERE id = $1`, id)
	o, err := scanOpening(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engerr.NewNotFoundError("opening", id)
	}
	if err != nil {
		return nil, engerr.NewDatabaseQueryError("get opening", err)
	}
	return o, nil
}

const builderColumns = `user_id, skills, risk_appetite, comp_openness, hours_per_week,
	roles_interested, remote_preference, city, country`

func scanBuilder(row interface{ Scan(...interface{}) error }) (*models.BuilderSnapshot, error) {
	var b models.BuilderSnapshot
	var skills, openness, roles []byte
	err := row.Scan(
		&b.UserID, &skills, &b.RiskAppetite, &openness, &b.HoursPerWeek,
		&roles, &b.RemotePreference, &b.City, &b.Country,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skills, &b.Skills); err != nil {
		b.Skills = []string{}
	}
	if err := json.Unmarshal(openness, &b.CompOpenness); err != nil {
		b.CompOpenness = []models.CompOpenness{}
	}
	if err := json.Unmarshal(roles, &b.RolesInterested); err != nil {
		b.RolesInterested = []string{}
	}
	return &b, nil
}

// GetBuilderProfile returns the scoring snapshot of one builder, consulting
// the redis cache first. Cache failures are soft: the database read decides.
func (s *ProfileStore) GetBuilderProfile(ctx context.Context, userID string) (*models.BuilderSnapshot, error) {
	cacheKey := "profile:builder:" + userID
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var b models.BuilderSnapshot
			if err := json.Unmarshal([]byte(val), &b); err == nil {
				return &b, nil
			}
		}
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+builderColumns+` FROM builder_profiles WHERE user_id = $1`, userID)
	b, err := scanBuilder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engerr.NewNotFoundError("builder profile", userID)
	}
	if err != nil {
		return nil, engerr.NewDatabaseQueryError("get builder profile", err)
	}

	if s.redis != nil {
		if data, err := json.Marshal(b); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("builder snapshot cache write failed", map[string]interface{}{
					"userId": userID,
					"error":  err,
				})
			}
		}
	}

	return b, nil
}

// ListActiveOpenings streams every ACTIVE opening to fn in a deterministic
// order. Streaming keeps memory flat on platforms with many openings.
func (s *ProfileStore) ListActiveOpenings(ctx context.Context, fn func(*models.OpeningSnapshot) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+openingColumns+`
		FROM openings
		WHERE status = 'ACTIVE'
		ORDER BY created_at, id`)
	if err != nil {
		return engerr.NewDatabaseQueryError("list active openings", err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOpening(rows)
		if err != nil {
			return engerr.NewDatabaseQueryError("scan opening", err)
		}
		if err := fn(o); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CandidatesForOpening streams builders eligible for the opening: profile
// complete, visible, open to opportunities, and not the opening's own founder.
func (s *ProfileStore) CandidatesForOpening(ctx context.Context, opening *models.OpeningSnapshot, fn func(*models.BuilderSnapshot) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+builderColumns+`
		FROM builder_profiles
		WHERE is_complete = TRUE
		  AND is_visible = TRUE
		  AND open_to_opportunities = TRUE
		  AND user_id <> $1
		ORDER BY created_at, user_id`, opening.FounderID)
	if err != nil {
		return engerr.NewDatabaseQueryError("candidates for opening", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBuilder(rows)
		if err != nil {
			return engerr.NewDatabaseQueryError("scan builder", err)
		}
		if err := fn(b); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CandidatesForBuilder streams ACTIVE openings, excluding ones the builder
// owns through a founder profile (dual-profile self-match prevention).
func (s *ProfileStore) CandidatesForBuilder(ctx context.Context, builderUserID string, fn func(*models.OpeningSnapshot) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+openingColumns+`
		FROM openings
		WHERE status = 'ACTIVE'
		  AND founder_id <> $1
		ORDER BY created_at, id`, builderUserID)
	if err != nil {
		return engerr.NewDatabaseQueryError("candidates for builder", err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOpening(rows)
		if err != nil {
			return engerr.NewDatabaseQueryError("scan opening", err)
		}
		if err := fn(o); err != nil {
			return err
		}
	}
	return rows.Err()
}
