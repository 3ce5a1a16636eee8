package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"testing"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"

	engerr "match-engine/internal/common/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProfileStore(t *testing.T) (*ProfileStore, sqlmock.Sqlmock, *miniredis.Miniredis) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return NewProfileStore(db, rdb, 10*time.Minute, logger.NewTestLogger(t)), mock, mr
}

var openingRowColumns = []string{
	"id", "founder_id", "role_type", "required_skills", "equity_min", "equity_max",
	"cash_min", "cash_max", "currency", "hours_per_week", "remote_preference",
	"stage", "city", "country", "status",
}

var builderRowColumns = []string{
	"user_id", "skills", "risk_appetite", "comp_openness", "hours_per_week",
	"roles_interested", "remote_preference", "city", "country",
}

func openingRow(id string) []driver.Value {
	return []driver.Value{
		id, "founder-1", "CTO", []byte(`["Go"]`), 1.0, 5.0,
		0.0, 3000.0, "EUR", 20, "REMOTE", "MVP_LIVE", "Berlin", "Germany", "ACTIVE",
	}
}

func TestGetOpening(t *testing.T) {
	store, mock, _ := setupProfileStore(t)

	mock.ExpectQuery(`FROM openings WHERE id = \$1`).
		WithArgs("opening-1").
		WillReturnRows(sqlmock.NewRows(openingRowColumns).AddRow(openingRow("opening-1")...))

	o, err := store.GetOpening(context.Background(), "opening-1")
	require.NoError(t, err)

	assert.Equal(t, "opening-1", o.ID)
	assert.Equal(t, "founder-1", o.FounderID)
	assert.Equal(t, []string{"Go"}, o.RequiredSkills)
	assert.Equal(t, models.StageMVPLive, o.Stage)
	assert.False(t, o.OffersEquityOnly())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOpening_NotFound(t *testing.T) {
	store, mock, _ := setupProfileStore(t)

	mock.ExpectQuery(`FROM openings WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(openingRowColumns))

	_, err := store.GetOpening(context.Background(), "missing")
	assert.True(t, engerr.IsNotFound(err))
}

func TestGetBuilderProfile_CachesSnapshot(t *testing.T) {
	store, mock, mr := setupProfileStore(t)

	mock.ExpectQuery(`FROM builder_profiles WHERE user_id = \$1`).
		WithArgs("builder-1").
		WillReturnRows(sqlmock.NewRows(builderRowColumns).AddRow(
			"builder-1", []byte(`["Go","React"]`), "MEDIUM",
			[]byte(`["EQUITY_STIPEND"]`), 25, []byte(`["CTO"]`),
			"REMOTE", "Berlin", "Germany",
		))

	b, err := store.GetBuilderProfile(context.Background(), "builder-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "React"}, b.Skills)
	assert.Equal(t, models.RiskMedium, b.RiskAppetite)
	assert.True(t, mr.Exists("profile:builder:builder-1"))

	// Second read hits the cache only.
	again, err := store.GetBuilderProfile(context.Background(), "builder-1")
	require.NoError(t, err)
	assert.Equal(t, b, again)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBuilderProfile_CacheHit(t *testing.T) {
	store, mock, mr := setupProfileStore(t)

	cached, _ := json.Marshal(&models.BuilderSnapshot{UserID: "builder-9", HoursPerWeek: 30})
	mr.Set("profile:builder:builder-9", string(cached))

	b, err := store.GetBuilderProfile(context.Background(), "builder-9")
	require.NoError(t, err)
	assert.Equal(t, 30, b.HoursPerWeek)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query expected on cache hit")
}

func TestListActiveOpenings_StreamsInOrder(t *testing.T) {
	store, mock, _ := setupProfileStore(t)

	mock.ExpectQuery(`(?s)FROM openings\s+WHERE status = 'ACTIVE'\s+ORDER BY`).
		WillReturnRows(sqlmock.NewRows(openingRowColumns).
			AddRow(openingRow("o1")...).
			AddRow(openingRow("o2")...))

	var ids []string
	err := store.ListActiveOpenings(context.Background(), func(o *models.OpeningSnapshot) error {
		ids = append(ids, o.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"o1", "o2"}, ids)
}

func TestCandidatesForOpening_ExcludesFounder(t *testing.T) {
	store, mock, _ := setupProfileStore(t)

	mock.ExpectQuery(`(?s)FROM builder_profiles\s+WHERE is_complete`).
		WithArgs("founder-1").
		WillReturnRows(sqlmock.NewRows(builderRowColumns).AddRow(
			"builder-1", []byte(`[]`), "HIGH", []byte(`["EQUITY_ONLY"]`), 40,
			[]byte(`[]`), "REMOTE", "", "",
		))

	opening := &models.OpeningSnapshot{ID: "o1", FounderID: "founder-1"}
	var got []string
	err := store.CandidatesForOpening(context.Background(), opening, func(b *models.BuilderSnapshot) error {
		got = append(got, b.UserID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"builder-1"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidatesForBuilder_ExcludesOwnOpenings(t *testing.T) {
	store, mock, _ := setupProfileStore(t)

	mock.ExpectQuery(`(?s)FROM openings\s+WHERE status = 'ACTIVE'\s+AND founder_id <> \$1`).
		WithArgs("builder-1").
		WillReturnRows(sqlmock.NewRows(openingRowColumns).AddRow(openingRow("o7")...))

	var got []string
	err := store.CandidatesForBuilder(context.Background(), "builder-1", func(o *models.OpeningSnapshot) error {
		got = append(got, o.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"o7"}, got)
}
