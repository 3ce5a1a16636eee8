package compatibility

import (
	"context"
	"errors"
	"math"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"

	engerr "match-engine/internal/common/errors"
)

// ErrScenarioUnavailable is returned by a ScenarioScorer when either side has
// no quiz responses. The calculator maps it to the neutral score.
var ErrScenarioUnavailable = errors.New("scenario compatibility unavailable")

// ScenarioScorer is the quiz-response collaborator behind the scenario
// factor. Implementations bound the lookup with their own timeout.
type ScenarioScorer interface {
	Score(ctx context.Context, userA, userB string) (int, error)
}

// Calculator aggregates the hard filters and the six weighted factors into
// one CompatibilityResult.
type Calculator struct {
	scenario ScenarioScorer
	logger   logger.Logger
}

func NewCalculator(scenario ScenarioScorer, log logger.Logger) *Calculator {
	return &Calculator{
		scenario: scenario,
		logger:   log.WithFields(map[string]interface{}{"component": "compatibility"}),
	}
}

// Calculate scores one (opening, builder) pair. Filtered-out pairs short-
// circuit with score 0 and a nil breakdown; no factor scorer runs for them.
func (c *Calculator) Calculate(ctx context.Context, opening *models.OpeningSnapshot, builder *models.BuilderSnapshot) (*models.CompatibilityResult, error) {
	if opening == nil || builder == nil {
		return nil, engerr.NewInvalidInputError("opening and builder snapshots are required")
	}
	if opening.HoursPerWeek <= 0 || builder.HoursPerWeek <= 0 {
		return nil, engerr.NewInvalidInputError("hours per week must be positive on both sides")
	}

	if passes, reason := EvaluateHardFilters(opening, builder); !passes {
		metrics.PairsScored.WithLabelValues("filtered").Inc()
		return &models.CompatibilityResult{
			Passes:  false,
			Reason:  reason,
			Score:   0,
			Quality: models.QualityForScore(0),
		}, nil
	}

	factors := map[string]struct {
		score  int
		weight float64
	}{
		FactorCompensation: {scoreCompensation(opening, builder), WeightCompensation},
		FactorCommitment:   {scoreCommitment(opening, builder), WeightCommitment},
		FactorStage:        {scoreStage(opening, builder), WeightStage},
		FactorSkills:       {scoreSkills(opening, builder), WeightSkills},
		FactorScenario:     {c.scenarioScore(ctx, opening.FounderID, builder.UserID), WeightScenario},
		FactorGeography:    {scoreGeography(opening, builder), WeightGeography},
	}

	breakdown := make(map[string]models.FactorBreakdown, len(factors))
	weightedSum := 0.0
	for name, f := range factors {
		weightedSum += float64(f.score) * f.weight
		breakdown[name] = models.FactorBreakdown{
			Score:  f.score,
			Weight: f.weight,
			// Rounded per factor; may drift one point from the total.
			Weighted: int(math.Round(float64(f.score) * f.weight)),
		}
	}

	total := int(math.Round(weightedSum))
	metrics.PairsScored.WithLabelValues("passed").Inc()

	return &models.CompatibilityResult{
		Passes:    true,
		Score:     total,
		Quality:   models.QualityForScore(total),
		Breakdown: breakdown,
	}, nil
}

// scenarioScore delegates to the provider and substitutes the neutral score
// when it is unavailable or failing. Provider trouble never fails a pair.
func (c *Calculator) scenarioScore(ctx context.Context, founderID, builderID string) int {
	if c.scenario == nil {
		return NeutralScenarioScore
	}

	score, err := c.scenario.Score(ctx, founderID, builderID)
	if err != nil {
		if !errors.Is(err, ErrScenarioUnavailable) {
			c.logger.Warn("scenario lookup failed, using neutral score", map[string]interface{}{
				"founderId": founderID,
				"builderId": builderID,
				"error":     err,
			})
		}
		return NeutralScenarioScore
	}

	if score < 0 || score > 100 {
		c.logger.Warn("scenario score out of range, using neutral score", map[string]interface{}{
			"score": score,
		})
		return NeutralScenarioScore
	}
	return score
}
