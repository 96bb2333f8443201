// Package rules evaluates operator-configured fraud rules written in CEL
// against a claim record.
package rules

import (
	"github.com/google/cel-go/cel"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/claim-router/internal/model"
)

// Rule is one configured fraud trigger. When Expression evaluates to true
// the claim's fraud score grows by Weight and Indicator is reported.
type Rule struct {
	Name       string  `json:"name" yaml:"name"`
	Expression string  `json:"expression" yaml:"expression"`
	Weight     float64 `json:"weight" yaml:"weight"`
	Indicator  string  `json:"indicator" yaml:"indicator"`
}

// Hit is a rule that matched a claim.
type Hit struct {
	Name      string
	Weight    float64
	Indicator string
}

type compiled struct {
	Rule
	program cel.Program
}

// Set is an ordered list of compiled rules. It is immutable after Compile
// and safe for concurrent use.
type Set struct {
	rules []compiled
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("claim", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
}

// Compile type-checks every rule. The expression must yield a bool.
func Compile(rules []Rule) (*Set, error) {
	set := &Set{}
	if len(rules) == 0 {
		return set, nil
	}

	env, err := newEnv()
	if err != nil {
		return nil, eris.Wrap(err, "rules: create cel env")
	}

	for _, r := range rules {
		if r.Name == "" {
			return nil, eris.New("rules: rule name is required")
		}
		ast, iss := env.Compile(r.Expression)
		if iss != nil && iss.Err() != nil {
			return nil, eris.Wrapf(iss.Err(), "rules: compile %q", r.Name)
		}
		if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
			return nil, eris.Errorf("rules: %q must evaluate to bool, got %s", r.Name, out)
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, eris.Wrapf(err, "rules: program %q", r.Name)
		}
		indicator := r.Indicator
		if indicator == "" {
			indicator = "Matched fraud rule: " + r.Name
		}
		r.Indicator = indicator
		set.rules = append(set.rules, compiled{Rule: r, program: prg})
	}
	return set, nil
}

// Len returns the number of compiled rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Evaluate returns the rules that match c, in configured order. Evaluation
// errors and non-bool results count as no match and are logged.
func (s *Set) Evaluate(c model.ClaimRecord) []Hit {
	if s.Len() == 0 {
		return nil
	}

	vars := map[string]any{"claim": Vars(c)}
	var hits []Hit
	for _, r := range s.rules {
		out, _, err := r.program.Eval(vars)
		if err != nil {
			zap.L().Warn("rules: evaluation failed",
				zap.String("rule", r.Name),
				zap.Error(err),
			)
			continue
		}
		matched, ok := out.Value().(bool)
		if !ok {
			zap.L().Warn("rules: non-bool result",
				zap.String("rule", r.Name),
				zap.Any("value", out.Value()),
			)
			continue
		}
		if matched {
			hits = append(hits, Hit{Name: r.Name, Weight: r.Weight, Indicator: r.Indicator})
		}
	}
	return hits
}

// Vars flattens the known fields of c into the map bound to the "claim"
// variable. Unset fields are omitted so expressions can test them with
// has(claim.field).
func Vars(c model.ClaimRecord) map[string]any {
	m := make(map[string]any, 10)
	if c.PolicyholderAge != nil {
		m["age"] = int64(*c.PolicyholderAge)
	}
	if c.PolicyholderGender != nil {
		m["gender"] = *c.PolicyholderGender
	}
	if c.Warranty != nil {
		m["warranty"] = *c.Warranty
	}
	if c.ClaimAmountPaid != nil {
		m["amount"] = *c.ClaimAmountPaid
	}
	if c.PremiumAmountPaid != nil {
		m["premium"] = *c.PremiumAmountPaid
	}
	if c.ClaimRegion != nil {
		m["region"] = *c.ClaimRegion
	}
	if c.ClaimProvince != nil {
		m["province"] = *c.ClaimProvince
	}
	if c.VehicleBrand != nil {
		m["brand"] = *c.VehicleBrand
	}
	if c.VehicleModel != nil {
		m["model"] = *c.VehicleModel
	}
	if c.ClaimDate != nil {
		m["claim_date"] = *c.ClaimDate
	}
	return m
}
