package compatibility

import (
	"math"
	"strings"

	"match-engine/internal/models"
)

// Factor names used as breakdown keys.
const (
	FactorCompensation = "compensation"
	FactorCommitment   = "commitment"
	FactorStage        = "stage"
	FactorSkills       = "skills"
	FactorScenario     = "scenario"
	FactorGeography    = "geography"
)

// Factor weights. Fixed constants summing to 1.0.
const (
	WeightCompensation = 0.30
	WeightCommitment   = 0.20
	WeightStage        = 0.15
	WeightSkills       = 0.15
	WeightScenario     = 0.10
	WeightGeography    = 0.10
)

// NeutralScenarioScore is substituted when either side has no quiz responses
// or the provider is unavailable.
const NeutralScenarioScore = 50

// scoreCompensation walks a ladder of exact and partial matches between the
// opening's offer class and the builder's declared openness set.
func scoreCompensation(opening *models.OpeningSnapshot, builder *models.BuilderSnapshot) int {
	switch {
	case opening.OffersEquityOnly():
		switch {
		case builder.OpenTo(models.CompEquityOnly):
			return 100
		case builder.OpenTo(models.CompEquityStipend):
			return 75
		case builder.OpenTo(models.CompInternship):
			return 50
		default:
			return 0
		}
	case opening.OffersCashOnly():
		switch {
		case builder.OpenTo(models.CompPaidOnly):
			return 100
		case builder.OpenTo(models.CompInternship):
			return 75
		case builder.OpenTo(models.CompEquityStipend):
			return 50
		case builder.OpenTo(models.CompEquityOnly):
			return 25
		default:
			return 0
		}
	default: // equity plus cash
		switch {
		case builder.OpenTo(models.CompEquityStipend):
			return 100
		case builder.OpenTo(models.CompEquityOnly), builder.OpenTo(models.CompPaidOnly):
			return 75
		case builder.OpenTo(models.CompInternship):
			return 50
		default:
			return 0
		}
	}
}

// scoreCommitment compares available against required hours in stepped bands.
// The sub-0.4 band exists only when the hard filter is bypassed.
func scoreCommitment(opening *models.OpeningSnapshot, builder *models.BuilderSnapshot) int {
	if builder.HoursPerWeek >= opening.HoursPerWeek {
		return 100
	}
	ratio := float64(builder.HoursPerWeek) / float64(opening.HoursPerWeek)
	switch {
	case ratio >= 0.8:
		return 80
	case ratio >= 0.6:
		return 60
	case ratio >= 0.4:
		return 40
	default:
		return 0
	}
}

// stageMatrix maps (risk appetite, startup stage) to a fit score. The LOW+IDEA
// cell is unreachable behind the risk/stage hard filter but kept for when the
// filters are loosened.
var stageMatrix = map[models.RiskAppetite]map[models.StartupStage]int{
	models.RiskLow: {
		models.StageIdea:    0,
		models.StageMVPLive: 60,
		models.StageRevenue: 80,
		models.StageFunded:  100,
	},
	models.RiskMedium: {
		models.StageIdea:    60,
		models.StageMVPLive: 100,
		models.StageRevenue: 100,
		models.StageFunded:  80,
	},
	models.RiskHigh: {
		models.StageIdea:    100,
		models.StageMVPLive: 100,
		models.StageRevenue: 80,
		models.StageFunded:  60,
	},
}

func scoreStage(opening *models.OpeningSnapshot, builder *models.BuilderSnapshot) int {
	if row, ok := stageMatrix[builder.RiskAppetite]; ok {
		if v, ok := row[opening.Stage]; ok {
			return v
		}
	}
	return 50
}

// scoreSkills computes the case-insensitive substring-overlap ratio of
// required vs available skills. An opening with no required skills accepts
// anyone at full marks.
func scoreSkills(opening *models.OpeningSnapshot, builder *models.BuilderSnapshot) int {
	if len(opening.RequiredSkills) == 0 {
		return 100
	}

	matched := 0
	for _, required := range opening.RequiredSkills {
		req := strings.ToLower(strings.TrimSpace(required))
		if req == "" {
			matched++
			continue
		}
		for _, have := range builder.Skills {
			h := strings.ToLower(strings.TrimSpace(have))
			if h == "" {
				continue
			}
			if strings.Contains(h, req) || strings.Contains(req, h) {
				matched++
				break
			}
		}
	}

	return int(math.Round(float64(matched) / float64(len(opening.RequiredSkills)) * 100))
}

// scoreGeography ranks location fit. Same-country is checked before the
// hybrid fallback, so compatriots beat a hybrid stranger.
func scoreGeography(opening *models.OpeningSnapshot, builder *models.BuilderSnapshot) int {
	if opening.RemotePreference == models.RemoteRemote && builder.RemotePreference == models.RemoteRemote {
		return 100
	}
	if sameFold(opening.City, builder.City) && sameFold(opening.Country, builder.Country) {
		return 100
	}
	if sameFold(opening.Country, builder.Country) {
		return 75
	}
	if opening.RemotePreference == models.RemoteHybrid || builder.RemotePreference == models.RemoteHybrid {
		return 50
	}
	return 25
}

func sameFold(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}
