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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMatchStore(t *testing.T) (*MatchStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMatchStore(db, logger.NewTestLogger(t)), mock
}

var matchRowColumns = []string{
	"id", "founder_id", "builder_id", "opening_id", "compatibility_score",
	"score_breakdown", "status", "founder_action", "founder_action_at",
	"builder_action", "builder_action_at", "is_mutual", "matched_at",
	"created_at", "updated_at",
}

func matchRow(id string, score int, status string) []driver.Value {
	now := time.Now().UTC()
	return []driver.Value{
		id, "founder-1", "builder-1", "opening-1", score,
		[]byte(`{}`), status, nil, nil, nil, nil, false, nil, now, now,
	}
}

func testBreakdown() map[string]models.FactorBreakdown {
	return map[string]models.FactorBreakdown{
		"compensation": {Score: 100, Weight: 0.30, Weighted: 30},
	}
}

func TestUpsertMatch_Created(t *testing.T) {
	store, mock := setupMatchStore(t)

	breakdownJSON, _ := json.Marshal(testBreakdown())
	now := time.Now().UTC()
	rows := sqlmock.NewRows(append(matchRowColumns, "inserted")).AddRow(
		"match-1", "founder-1", "builder-1", "opening-1", 88,
		breakdownJSON, "PENDING", nil, nil, nil, nil, false, nil, now, now,
		true,
	)
	mock.ExpectQuery(`(?s)INSERT INTO matches.+ON CONFLICT \(founder_id, builder_id, opening_id\) DO UPDATE`).
		WillReturnRows(rows)

	m, created, err := store.UpsertMatch(context.Background(), "founder-1", "builder-1", "opening-1", 88, testBreakdown())
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, 88, m.CompatibilityScore)
	assert.Equal(t, models.MatchPending, m.Status)
	assert.Equal(t, 30, m.ScoreBreakdown["compensation"].Weighted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertMatch_UpdatedKeepsActionState(t *testing.T) {
	store, mock := setupMatchStore(t)

	// Existing row with a recorded like; the refresh only moves the score.
	likedAt := time.Now().UTC().Add(-time.Hour)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(append(matchRowColumns, "inserted")).AddRow(
		"match-1", "founder-1", "builder-1", "opening-1", 91,
		[]byte(`{}`), "LIKED", "LIKE", likedAt, nil, nil, false, nil, now.Add(-24*time.Hour), now,
		false,
	)
	mock.ExpectQuery(`(?s)INSERT INTO matches.+DO UPDATE`).WillReturnRows(rows)

	m, created, err := store.UpsertMatch(context.Background(), "founder-1", "builder-1", "opening-1", 91, nil)
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, 91, m.CompatibilityScore)
	assert.Equal(t, models.MatchLiked, m.Status)
	require.NotNil(t, m.FounderAction)
	assert.Equal(t, models.ActionLike, *m.FounderAction)
}

func TestFindMatch_NotFound(t *testing.T) {
	store, mock := setupMatchStore(t)

	mock.ExpectQuery(`(?s)FROM matches WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(matchRowColumns))

	_, err := store.FindMatch(context.Background(), "missing")
	assert.True(t, engerr.IsNotFound(err))
}

func TestSaveActions(t *testing.T) {
	store, mock := setupMatchStore(t)

	like := models.ActionLike
	now := time.Now().UTC()
	m := &models.Match{
		ID:              "match-1",
		Status:          models.MatchMutual,
		FounderAction:   &like,
		FounderActionAt: &now,
		BuilderAction:   &like,
		BuilderActionAt: &now,
		IsMutual:        true,
		MatchedAt:       &now,
	}

	mock.ExpectExec(`(?s)UPDATE matches SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SaveActions(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedFor_BuilderSide(t *testing.T) {
	store, mock := setupMatchStore(t)

	mock.ExpectQuery(`(?s)FROM matches\s+WHERE builder_id = \$1\s+AND status IN \('PENDING', 'LIKED'\)`).
		WithArgs("builder-1", 20).
		WillReturnRows(sqlmock.NewRows(matchRowColumns).
			AddRow(matchRow("m1", 95, "PENDING")...).
			AddRow(matchRow("m2", 80, "LIKED")...))

	matches, err := store.FeedFor(context.Background(), "builder-1", "builder", 20)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "m1", matches[0].ID)
	assert.Equal(t, "m2", matches[1].ID)
}

func TestFeedFor_FounderSideUsesFounderColumns(t *testing.T) {
	store, mock := setupMatchStore(t)

	mock.ExpectQuery(`(?s)FROM matches\s+WHERE founder_id = \$1.+\(founder_action IS NULL OR founder_action = 'SAVE'\)`).
		WithArgs("founder-1", 10).
		WillReturnRows(sqlmock.NewRows(matchRowColumns))

	matches, err := store.FeedFor(context.Background(), "founder-1", "founder", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestSweepRun(t *testing.T) {
	store, mock := setupMatchStore(t)

	started := time.Now().UTC().Add(-time.Hour)
	finished := started.Add(10 * time.Minute)
	mock.ExpectQuery(`(?s)FROM sweep_runs\s+ORDER BY started_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "started_at", "finished_at", "openings_processed",
			"matches_created", "matches_updated", "errors", "duration_ms",
		}).AddRow("sweep-1", started, finished, 12, 40, 8, 1, int64(600000)))

	sum, err := store.LatestSweepRun(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "sweep-1", sum.ID)
	assert.Equal(t, 12, sum.OpeningsProcessed)
	assert.Equal(t, 40, sum.MatchesCreated)
	assert.Equal(t, int64(600000), sum.DurationMs)
}

func TestLatestSweepRun_Empty(t *testing.T) {
	store, mock := setupMatchStore(t)

	mock.ExpectQuery(`(?s)FROM sweep_runs`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.LatestSweepRun(context.Background())
	assert.True(t, engerr.IsNotFound(err))
}
