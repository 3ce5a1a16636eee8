package models

// RemotePreference is the declared working-location preference of either side.
type RemotePreference string

const (
	RemoteOnsite RemotePreference = "ONSITE"
	RemoteRemote RemotePreference = "REMOTE"
	RemoteHybrid RemotePreference = "HYBRID"
)

// RiskAppetite is a builder's tolerance for startup risk.
type RiskAppetite string

const (
	RiskLow    RiskAppetite = "LOW"
	RiskMedium RiskAppetite = "MEDIUM"
	RiskHigh   RiskAppetite = "HIGH"
)

// StartupStage is the maturity of the founder's startup.
type StartupStage string

const (
	StageIdea    StartupStage = "IDEA"
	StageMVPLive StartupStage = "MVP_LIVE"
	StageRevenue StartupStage = "REVENUE"
	StageFunded  StartupStage = "FUNDED"
)

// CompOpenness is one compensation arrangement a builder is open to.
type CompOpenness string

const (
	CompEquityOnly    CompOpenness = "EQUITY_ONLY"
	CompEquityStipend CompOpenness = "EQUITY_STIPEND"
	CompInternship    CompOpenness = "INTERNSHIP"
	CompPaidOnly      CompOpenness = "PAID_ONLY"
)

// OpeningStatus is the lifecycle state of an opening.
type OpeningStatus string

const (
	OpeningActive OpeningStatus = "ACTIVE"
	OpeningPaused OpeningStatus = "PAUSED"
	OpeningClosed OpeningStatus = "CLOSED"
)

// OpeningSnapshot is the read-only projection of an opening used for scoring.
// It carries the owning founder's stage and location so a single snapshot is
// enough to evaluate every factor. Immutable for the duration of one scoring call.
type OpeningSnapshot struct {
	ID               string           `json:"id"`
	FounderID        string           `json:"founderId"`
	RoleType         string           `json:"roleType"`
	RequiredSkills   []string         `json:"requiredSkills"`
	EquityMin        float64          `json:"equityMin"`
	EquityMax        float64          `json:"equityMax"`
	CashMin          float64          `json:"cashMin"`
	CashMax          float64          `json:"cashMax"`
	Currency         string           `json:"currency"`
	HoursPerWeek     int              `json:"hoursPerWeek"`
	RemotePreference RemotePreference `json:"remotePreference"`
	Stage            StartupStage     `json:"stage"`
	City             string           `json:"city"`
	Country          string           `json:"country"`
	Status           OpeningStatus    `json:"status"`
}

// OffersEquityOnly reports whether the opening carries no cash component.
func (o *OpeningSnapshot) OffersEquityOnly() bool {
	return o.CashMax == 0
}

// OffersCashOnly reports whether the opening carries no equity component.
func (o *OpeningSnapshot) OffersCashOnly() bool {
	return o.EquityMax == 0 && o.CashMax > 0
}

// BuilderSnapshot is the read-only projection of a builder profile used for scoring.
type BuilderSnapshot struct {
	UserID           string           `json:"userId"`
	Skills           []string         `json:"skills"`
	RiskAppetite     RiskAppetite     `json:"riskAppetite"`
	CompOpenness     []CompOpenness   `json:"compOpenness"`
	HoursPerWeek     int              `json:"hoursPerWeek"`
	RolesInterested  []string         `json:"rolesInterested"`
	RemotePreference RemotePreference `json:"remotePreference"`
	City             string           `json:"city"`
	Country          string           `json:"country"`
}

// OpenTo reports whether the builder declared openness to the given arrangement.
func (b *BuilderSnapshot) OpenTo(c CompOpenness) bool {
	for _, o := range b.CompOpenness {
		if o == c {
			return true
		}
	}
	return false
}

// PaidOnly reports whether the builder's openness set is exactly {PAID_ONLY}.
func (b *BuilderSnapshot) PaidOnly() bool {
	return len(b.CompOpenness) == 1 && b.CompOpenness[0] == CompPaidOnly
}
