package models

import "time"

// MatchStatus is the lifecycle state of a persisted match. The engine only
// ever moves matches between PENDING, LIKED, SKIPPED and MUTUAL; the later
// states belong to the downstream trial/hire flow and are preserved untouched.
type MatchStatus string

const (
	MatchPending   MatchStatus = "PENDING"
	MatchLiked     MatchStatus = "LIKED"
	MatchSkipped   MatchStatus = "SKIPPED"
	MatchMutual    MatchStatus = "MUTUAL"
	MatchActive    MatchStatus = "ACTIVE"
	MatchInTrial   MatchStatus = "IN_TRIAL"
	MatchCompleted MatchStatus = "COMPLETED"
	MatchHired     MatchStatus = "HIRED"
	MatchEnded     MatchStatus = "ENDED"
	MatchExpired   MatchStatus = "EXPIRED"
)

// MatchAction is a swipe action one side records on a match.
type MatchAction string

const (
	ActionLike MatchAction = "LIKE"
	ActionSkip MatchAction = "SKIP"
	ActionSave MatchAction = "SAVE"
)

// ValidAction reports whether a is one of the accepted swipe actions.
func ValidAction(a MatchAction) bool {
	return a == ActionLike || a == ActionSkip || a == ActionSave
}

// Quality is the score band of a compatibility result.
type Quality string

const (
	QualityWeak      Quality = "WEAK"
	QualityFair      Quality = "FAIR"
	QualityGood      Quality = "GOOD"
	QualityExcellent Quality = "EXCELLENT"
)

// QualityForScore maps a 0..100 score onto its band.
func QualityForScore(score int) Quality {
	switch {
	case score >= 90:
		return QualityExcellent
	case score >= 75:
		return QualityGood
	case score >= 60:
		return QualityFair
	default:
		return QualityWeak
	}
}

// FactorBreakdown is the per-factor contribution to a compatibility score.
// Weighted is rounded independently of the aggregate total, so the breakdown
// may sum to one more or less than the reported score.
type FactorBreakdown struct {
	Score    int     `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted int     `json:"weighted"`
}

// CompatibilityResult is the outcome of scoring one (opening, builder) pair.
// Breakdown is nil whenever Passes is false.
type CompatibilityResult struct {
	Passes    bool                       `json:"passes"`
	Reason    string                     `json:"reason,omitempty"`
	Score     int                        `json:"score"`
	Quality   Quality                    `json:"quality"`
	Breakdown map[string]FactorBreakdown `json:"breakdown,omitempty"`
}

// Match is the persisted record of one (founder-opening, builder) pair,
// unique on the (founder, builder, opening) triple.
type Match struct {
	ID                 string                     `json:"id"`
	FounderID          string                     `json:"founderId"`
	BuilderID          string                     `json:"builderId"`
	OpeningID          string                     `json:"openingId"`
	CompatibilityScore int                        `json:"compatibilityScore"`
	ScoreBreakdown     map[string]FactorBreakdown `json:"scoreBreakdown"`
	Status             MatchStatus                `json:"status"`
	FounderAction      *MatchAction               `json:"founderAction"`
	FounderActionAt    *time.Time                 `json:"founderActionAt"`
	BuilderAction      *MatchAction               `json:"builderAction"`
	BuilderActionAt    *time.Time                 `json:"builderActionAt"`
	IsMutual           bool                       `json:"isMutual"`
	MatchedAt          *time.Time                 `json:"matchedAt"`
	CreatedAt          time.Time                  `json:"createdAt"`
	UpdatedAt          time.Time                  `json:"updatedAt"`
}

// SideOf resolves which side of the match a user is on. Returns "founder",
// "builder", or "" when the user is not a participant.
func (m *Match) SideOf(userID string) string {
	switch userID {
	case m.FounderID:
		return "founder"
	case m.BuilderID:
		return "builder"
	default:
		return ""
	}
}

// SweepSummary is the run report of one nightly sweep.
type SweepSummary struct {
	ID                string    `json:"id"`
	StartedAt         time.Time `json:"startedAt"`
	FinishedAt        time.Time `json:"finishedAt"`
	OpeningsProcessed int       `json:"openingsProcessed"`
	MatchesCreated    int       `json:"matchesCreated"`
	MatchesUpdated    int       `json:"matchesUpdated"`
	Errors            int       `json:"errors"`
	DurationMs        int64     `json:"durationMs"`
}
