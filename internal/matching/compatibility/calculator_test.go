package compatibility

import (
	"context"
	"errors"
	"testing"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"

	engerr "match-engine/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScenario struct {
	score int
	err   error
	calls int
}

func (s *stubScenario) Score(ctx context.Context, userA, userB string) (int, error) {
	s.calls++
	return s.score, s.err
}

func TestCalculate_FullBreakdown(t *testing.T) {
	// Every factor at 100 except the scenario quiz at 80:
	// 30 + 20 + 15 + 15 + 8 + 10 = 98.
	calc := NewCalculator(&stubScenario{score: 80}, logger.NewNoOpLogger())

	result, err := calc.Calculate(context.Background(), baseOpening(), baseBuilder())
	require.NoError(t, err)

	assert.True(t, result.Passes)
	assert.Empty(t, result.Reason)
	assert.Equal(t, 98, result.Score)
	assert.Equal(t, models.QualityExcellent, result.Quality)

	require.Len(t, result.Breakdown, 6)
	assert.Equal(t, models.FactorBreakdown{Score: 100, Weight: 0.30, Weighted: 30}, result.Breakdown[FactorCompensation])
	assert.Equal(t, models.FactorBreakdown{Score: 100, Weight: 0.20, Weighted: 20}, result.Breakdown[FactorCommitment])
	assert.Equal(t, models.FactorBreakdown{Score: 100, Weight: 0.15, Weighted: 15}, result.Breakdown[FactorStage])
	assert.Equal(t, models.FactorBreakdown{Score: 100, Weight: 0.15, Weighted: 15}, result.Breakdown[FactorSkills])
	assert.Equal(t, models.FactorBreakdown{Score: 80, Weight: 0.10, Weighted: 8}, result.Breakdown[FactorScenario])
	assert.Equal(t, models.FactorBreakdown{Score: 100, Weight: 0.10, Weighted: 10}, result.Breakdown[FactorGeography])
}

func TestCalculate_QualityBands(t *testing.T) {
	tests := []struct {
		score int
		want  models.Quality
	}{
		{100, models.QualityExcellent},
		{90, models.QualityExcellent},
		{89, models.QualityGood},
		{75, models.QualityGood},
		{74, models.QualityFair},
		{60, models.QualityFair},
		{59, models.QualityWeak},
		{0, models.QualityWeak},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, models.QualityForScore(tt.score), "score %d", tt.score)
	}
}

func TestCalculate_HardFilterShortCircuit(t *testing.T) {
	scen := &stubScenario{score: 100}
	calc := NewCalculator(scen, logger.NewNoOpLogger())

	opening := baseOpening()
	opening.CashMax = 0
	builder := baseBuilder()
	builder.CompOpenness = []models.CompOpenness{models.CompPaidOnly}

	result, err := calc.Calculate(context.Background(), opening, builder)
	require.NoError(t, err)

	assert.False(t, result.Passes)
	assert.Equal(t, ReasonEquityOnlyVsPaid, result.Reason)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, models.QualityWeak, result.Quality)
	assert.Nil(t, result.Breakdown)
	assert.Zero(t, scen.calls, "no factor scorer should run for a filtered pair")
}

func TestCalculate_ScenarioFallbacks(t *testing.T) {
	tests := []struct {
		name string
		scen ScenarioScorer
	}{
		{"nil provider", nil},
		{"responses unavailable", &stubScenario{err: ErrScenarioUnavailable}},
		{"provider failure", &stubScenario{err: errors.New("connection refused")}},
		{"out of range score", &stubScenario{score: 250}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator(tt.scen, logger.NewNoOpLogger())

			result, err := calc.Calculate(context.Background(), baseOpening(), baseBuilder())
			require.NoError(t, err)
			require.True(t, result.Passes)

			// 30 + 20 + 15 + 15 + 5 + 10 with the neutral scenario score.
			assert.Equal(t, 95, result.Score)
			assert.Equal(t, NeutralScenarioScore, result.Breakdown[FactorScenario].Score)
		})
	}
}

func TestCalculate_InputValidation(t *testing.T) {
	calc := NewCalculator(&stubScenario{score: 50}, logger.NewNoOpLogger())

	_, err := calc.Calculate(context.Background(), nil, baseBuilder())
	assert.True(t, engerr.IsInvalidInput(err))

	_, err = calc.Calculate(context.Background(), baseOpening(), nil)
	assert.True(t, engerr.IsInvalidInput(err))

	opening := baseOpening()
	opening.HoursPerWeek = 0
	_, err = calc.Calculate(context.Background(), opening, baseBuilder())
	assert.True(t, engerr.IsInvalidInput(err), "bad snapshot data is a request error, not an internal one")
}

func TestCalculate_Deterministic(t *testing.T) {
	calc := NewCalculator(&stubScenario{score: 65}, logger.NewNoOpLogger())

	first, err := calc.Calculate(context.Background(), baseOpening(), baseBuilder())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := calc.Calculate(context.Background(), baseOpening(), baseBuilder())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
