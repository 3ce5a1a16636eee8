package scenario

import (
	"context"
	"testing"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/matching/compatibility"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProvider(t *testing.T) (*Provider, sqlmock.Sqlmock, *miniredis.Miniredis) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return NewProvider(db, rdb, 2*time.Second, logger.NewTestLogger(t)), mock, mr
}

func expectAnswers(mock sqlmock.Sqlmock, userID, answersJSON string) {
	mock.ExpectQuery("SELECT answers FROM scenario_responses").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"answers"}).AddRow([]byte(answersJSON)))
}

func TestScore_AnswerOverlap(t *testing.T) {
	tests := []struct {
		name    string
		answersA string
		answersB string
		want    int
	}{
		{
			name:     "all answers match",
			answersA: `{"q1":"a","q2":"b","q3":"c"}`,
			answersB: `{"q1":"a","q2":"b","q3":"c"}`,
			want:     100,
		},
		{
			name:     "partial overlap",
			answersA: `{"q1":"a","q2":"b","q3":"c"}`,
			answersB: `{"q1":"a","q2":"x","q3":"c"}`,
			want:     67,
		},
		{
			name:     "no matching answers",
			answersA: `{"q1":"a"}`,
			answersB: `{"q1":"b"}`,
			want:     0,
		},
		{
			name:     "only common questions count",
			answersA: `{"q1":"a","q2":"b","q9":"z"}`,
			answersB: `{"q1":"a","q2":"x","q8":"y"}`,
			want:     50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, mock, _ := setupProvider(t)
			expectAnswers(mock, "user-a", tt.answersA)
			expectAnswers(mock, "user-b", tt.answersB)

			score, err := p.Score(context.Background(), "user-a", "user-b")
			require.NoError(t, err)
			assert.Equal(t, tt.want, score)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestScore_MissingResponses(t *testing.T) {
	p, mock, _ := setupProvider(t)
	mock.ExpectQuery("SELECT answers FROM scenario_responses").
		WithArgs("user-a").
		WillReturnRows(sqlmock.NewRows([]string{"answers"}))

	_, err := p.Score(context.Background(), "user-a", "user-b")
	assert.ErrorIs(t, err, compatibility.ErrScenarioUnavailable)
}

func TestScore_EmptyAnswers(t *testing.T) {
	p, mock, _ := setupProvider(t)
	expectAnswers(mock, "user-a", `{}`)

	_, err := p.Score(context.Background(), "user-a", "user-b")
	assert.ErrorIs(t, err, compatibility.ErrScenarioUnavailable)
}

func TestScore_NoCommonQuestions(t *testing.T) {
	p, mock, _ := setupProvider(t)
	expectAnswers(mock, "user-a", `{"q1":"a"}`)
	expectAnswers(mock, "user-b", `{"q2":"b"}`)

	_, err := p.Score(context.Background(), "user-a", "user-b")
	assert.ErrorIs(t, err, compatibility.ErrScenarioUnavailable)
}

func TestScore_CachesResponses(t *testing.T) {
	p, mock, mr := setupProvider(t)
	expectAnswers(mock, "user-a", `{"q1":"a"}`)
	expectAnswers(mock, "user-b", `{"q1":"a"}`)

	score, err := p.Score(context.Background(), "user-a", "user-b")
	require.NoError(t, err)
	assert.Equal(t, 100, score)

	assert.True(t, mr.Exists("scenario:responses:user-a"))
	assert.True(t, mr.Exists("scenario:responses:user-b"))

	// Second call is served entirely from cache; no further query expected.
	score, err = p.Score(context.Background(), "user-a", "user-b")
	require.NoError(t, err)
	assert.Equal(t, 100, score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScore_SurvivesRedisOutage(t *testing.T) {
	p, mock, mr := setupProvider(t)
	mr.Close()

	expectAnswers(mock, "user-a", `{"q1":"a"}`)
	expectAnswers(mock, "user-b", `{"q1":"a"}`)

	score, err := p.Score(context.Background(), "user-a", "user-b")
	require.NoError(t, err)
	assert.Equal(t, 100, score)
}
