package router

import (
	"github.com/sells-group/claim-router/internal/classifier"
	"github.com/sells-group/claim-router/internal/model"
)

// departmentTeams maps classifier labels to teams. "Standard" and unknown
// labels are absent so they fall through to the rule cascade.
var departmentTeams = map[string]func(model.ClaimRecord) string{
	classifier.DeptHighValue: HighValueTeam,
	classifier.DeptLegal:     func(model.ClaimRecord) string { return TeamLegal },
	classifier.DeptSenior:    func(model.ClaimRecord) string { return TeamSeniorHighRisk },
	classifier.DeptVIP:       func(model.ClaimRecord) string { return TeamVIP },
	classifier.DeptSouth:     func(model.ClaimRecord) string { return TeamSouth },
	classifier.DeptUrgent:    func(model.ClaimRecord) string { return TeamUrgent },
	classifier.DeptHighRisk:  func(model.ClaimRecord) string { return TeamHighRisk },
}

func teamForDepartment(dept string, c model.ClaimRecord) (string, bool) {
	fn, ok := departmentTeams[dept]
	if !ok {
		return "", false
	}
	return fn(c), true
}
