package feed

import (
	"context"
	"testing"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"

	engerr "match-engine/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeedStore struct {
	gotUserID string
	gotSide   string
	gotLimit  int
	matches   []*models.Match
	err       error
}

func (f *fakeFeedStore) FeedFor(ctx context.Context, userID, side string, limit int) ([]*models.Match, error) {
	f.gotUserID = userID
	f.gotSide = side
	f.gotLimit = limit
	return f.matches, f.err
}

func TestFor_PassesThrough(t *testing.T) {
	store := &fakeFeedStore{matches: []*models.Match{
		{ID: "m1", CompatibilityScore: 91},
		{ID: "m2", CompatibilityScore: 78},
	}}
	sel := NewSelector(store, 50, logger.NewTestLogger(t))

	matches, err := sel.For(context.Background(), "builder-1", "builder", 10)
	require.NoError(t, err)

	assert.Len(t, matches, 2)
	assert.Equal(t, "builder-1", store.gotUserID)
	assert.Equal(t, "builder", store.gotSide)
	assert.Equal(t, 10, store.gotLimit)
}

func TestFor_DefaultLimit(t *testing.T) {
	store := &fakeFeedStore{}
	sel := NewSelector(store, 25, logger.NewNoOpLogger())

	_, err := sel.For(context.Background(), "founder-1", "founder", 0)
	require.NoError(t, err)
	assert.Equal(t, 25, store.gotLimit)
}

func TestFor_Validation(t *testing.T) {
	sel := NewSelector(&fakeFeedStore{}, 50, logger.NewNoOpLogger())

	_, err := sel.For(context.Background(), "", "founder", 10)
	assert.True(t, engerr.IsInvalidInput(err))

	_, err = sel.For(context.Background(), "user-1", "admin", 10)
	assert.True(t, engerr.IsInvalidInput(err))
}
