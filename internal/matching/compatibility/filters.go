// Package compatibility implements the deal-breaker filters, the six factor
// scorers and the weighted aggregation that decide how well an opening and a
// builder fit each other.
package compatibility

import "match-engine/internal/models"

// Hard-filter reason strings. These are part of the engine's contract with
// its tests and must stay stable.
const (
	ReasonEquityOnlyVsPaid  = "opening is equity-only but builder requires paid compensation"
	ReasonCommitmentGap     = "builder availability is below 40% of required hours"
	ReasonRiskStageMismatch = "low risk appetite is incompatible with idea-stage startup"
	ReasonRoleMismatch      = "builder is not interested in this role type"
	ReasonOnsiteVsRemote    = "opening is onsite-only but builder is remote-only"
)

// minCommitmentRatio is the availability floor below which a pair is not
// worth scoring at all.
const minCommitmentRatio = 0.4

// EvaluateHardFilters applies the deal-breaker checks in order and returns
// on the first failure. Pure function of its inputs.
func EvaluateHardFilters(opening *models.OpeningSnapshot, builder *models.BuilderSnapshot) (bool, string) {
	if opening.OffersEquityOnly() && builder.PaidOnly() {
		return false, ReasonEquityOnlyVsPaid
	}

	if opening.HoursPerWeek > 0 {
		ratio := float64(builder.HoursPerWeek) / float64(opening.HoursPerWeek)
		if ratio < minCommitmentRatio {
			return false, ReasonCommitmentGap
		}
	}

	if builder.RiskAppetite == models.RiskLow && opening.Stage == models.StageIdea {
		return false, ReasonRiskStageMismatch
	}

	if len(builder.RolesInterested) > 0 && !containsFold(builder.RolesInterested, opening.RoleType) {
		return false, ReasonRoleMismatch
	}

	if opening.RemotePreference == models.RemoteOnsite && builder.RemotePreference == models.RemoteRemote {
		return false, ReasonOnsiteVsRemote
	}

	return true, ""
}
