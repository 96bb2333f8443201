package router

import (
	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/scorer"
	"github.com/sells-group/claim-router/internal/vocab"
)

// Team names.
const (
	TeamFraud          = "Fraud Investigation Unit"
	TeamHighValue      = "High Value Claims"
	TeamLegal          = "Legal Claims Department"
	TeamSeniorHighRisk = "Senior High-Risk Claims"
	TeamVIP            = "VIP Customer Service"
	TeamSouth          = "Regional Team - South"
	TeamUrgentHighRisk = "Urgent High-Risk Claims"
	TeamUrgent         = "Urgent Claims Processing"
	TeamHighRisk       = "High-Risk Claims Processing"
	TeamStandard       = "Standard Claims Processing"
)

// DefaultRegion stands in for an unknown region in regional team names.
const DefaultRegion = "Central"

// highRiskAt is the risk score above which a claim counts as high risk.
const highRiskAt = 0.7

// facts is everything a cascade rule may look at.
type facts struct {
	claim      model.ClaimRecord
	assessment *scorer.Assessment
}

// rule is one step of the cascade.
type rule struct {
	name  string
	match func(f facts) bool
	team  func(f facts) string
}

func fixed(team string) func(facts) string {
	return func(facts) string { return team }
}

// HighValueTeam names the regional high value desk for c.
func HighValueTeam(c model.ClaimRecord) string {
	return TeamHighValue + " - " + c.RegionOr(DefaultRegion)
}

// cascade is evaluated top to bottom; the first match assigns the team.
var cascade = []rule{
	{
		name:  "high_value",
		match: func(f facts) bool { return f.claim.AmountAbove(15000) },
		team:  func(f facts) string { return HighValueTeam(f.claim) },
	},
	{
		name:  "third_party_legal",
		match: func(f facts) bool { return f.claim.IsThirdParty() },
		team:  fixed(TeamLegal),
	},
	{
		name:  "senior_high_amount",
		match: func(f facts) bool { return f.claim.AgeAbove(60) && f.claim.AmountAbove(10000) },
		team:  fixed(TeamSeniorHighRisk),
	},
	{
		name:  "vip_customer",
		match: func(f facts) bool { return f.assessment.Value.Tier == model.ValueVIP },
		team:  fixed(TeamVIP),
	},
	{
		name:  "southern_region",
		match: func(f facts) bool { return vocab.In(vocab.SouthernRegions, f.claim.ClaimRegion) },
		team:  fixed(TeamSouth),
	},
	{
		name: "urgent_high_risk",
		match: func(f facts) bool {
			return f.assessment.Urgency.Level == model.UrgencyHigh && f.assessment.Risk.Score > highRiskAt
		},
		team: fixed(TeamUrgentHighRisk),
	},
	{
		name:  "urgent",
		match: func(f facts) bool { return f.assessment.Urgency.Level == model.UrgencyHigh },
		team:  fixed(TeamUrgent),
	},
	{
		name:  "high_risk",
		match: func(f facts) bool { return f.assessment.Risk.Score > highRiskAt },
		team:  fixed(TeamHighRisk),
	},
}

// ruleStandard is reported when no cascade rule matched.
const ruleStandard = "standard"

// assignByRules returns the team and the name of the rule that chose it.
func assignByRules(f facts) (string, string) {
	for _, r := range cascade {
		if r.match(f) {
			return r.team(f), r.name
		}
	}
	return TeamStandard, ruleStandard
}

// RuleNames lists the cascade in evaluation order, ending with the
// catch-all.
func RuleNames() []string {
	names := make([]string, 0, len(cascade)+1)
	for _, r := range cascade {
		names = append(names, r.name)
	}
	return append(names, ruleStandard)
}
