// Package router composes scores, the classifier suggestion and the rule
// cascade into a DecisionRecord.
package router

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/claim-router/internal/classifier"
	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/scorer"
)

// DefaultConfidenceThreshold is the classifier confidence a suggestion must
// exceed to be applied.
const DefaultConfidenceThreshold = 0.7

// MLReasonPrefix marks reasons contributed by the classifier.
const MLReasonPrefix = "[ML] "

// Router routes claims. It is safe for concurrent use.
type Router struct {
	scorer     *scorer.Scorer
	classifier classifier.Classifier
	threshold  float64
}

// Option configures a Router.
type Option func(*Router)

// WithScorer replaces the default scorer, e.g. to add configured fraud rules.
func WithScorer(s *scorer.Scorer) Option {
	return func(r *Router) { r.scorer = s }
}

// WithClassifier enables classifier suggestions.
func WithClassifier(c classifier.Classifier) Option {
	return func(r *Router) { r.classifier = c }
}

// WithConfidenceThreshold overrides DefaultConfidenceThreshold.
func WithConfidenceThreshold(t float64) Option {
	return func(r *Router) { r.threshold = t }
}

// New creates a Router. Without options it routes by rules alone.
func New(opts ...Option) *Router {
	r := &Router{
		scorer:     scorer.New(nil),
		classifier: classifier.Unavailable(),
		threshold:  DefaultConfidenceThreshold,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Route scores c, consults the classifier and assigns a team. The input
// is not modified; the returned record holds a copy of it. DecidedAt is
// left zero for the store to set. A classifier panic degrades to rule-based
// routing; any other panic is converted to an error and no record is
// returned.
func (r *Router) Route(ctx context.Context, c model.ClaimRecord) (dec *model.DecisionRecord, err error) {
	defer func() {
		if p := recover(); p != nil {
			zap.L().Error("router: panic while routing claim",
				zap.String("claim_id", c.ClaimID),
				zap.Any("panic", p),
			)
			dec, err = nil, eris.Errorf("router: route: internal error: %v", p)
		}
	}()

	claim := c.Clone()

	var (
		assessment *scorer.Assessment
		prediction classifier.Prediction
	)
	useML := r.classifier != nil && r.classifier.Available()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, assessErr := r.scorer.Assess(gctx, claim)
		if assessErr != nil {
			return assessErr
		}
		assessment = a
		return nil
	})
	if useML {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					zap.L().Warn("router: classifier panicked, routing by rules",
						zap.String("claim_id", claim.ClaimID),
						zap.Any("panic", p),
					)
					prediction = classifier.Prediction{}
				}
			}()
			prediction = r.classifier.Predict(claim)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "router: route")
	}

	fraud := assessment.Fraud
	claim.Fraud = fraud.Clone()
	hasSuggestion := useML && prediction.Department != ""

	dec = &model.DecisionRecord{
		Urgency:          assessment.Urgency.Level,
		RiskScore:        assessment.Risk.Score,
		CustomerValue:    assessment.Value.Tier,
		IsPotentialFraud: fraud.IsPotentialFraud,
		FraudIndicators:  append([]string{}, fraud.Indicators...),
	}
	if hasSuggestion {
		dec.Classifier = &model.ClassifierSuggestion{
			Department: prediction.Department,
			Confidence: prediction.Confidence,
		}
	}

	switch {
	case fraud.IsPotentialFraud:
		dec.AssignedTeam = TeamFraud
		dec.RoutedBy = model.RoutedByFraud
	case hasSuggestion && prediction.Confidence > r.threshold:
		if team, ok := teamForDepartment(prediction.Department, claim); ok {
			dec.AssignedTeam = team
			dec.RoutedBy = model.RoutedByClassifier
			dec.Classifier.Applied = true
		}
	}
	if dec.AssignedTeam == "" {
		dec.AssignedTeam, dec.MatchedRule = assignByRules(facts{claim: claim, assessment: assessment})
		dec.RoutedBy = model.RoutedByRules
	}

	dec.Reasoning = reasoning(assessment, fraud, prediction, hasSuggestion)

	if claim.ClaimID == "" {
		claim.ClaimID = model.NewClaimID()
	}
	dec.ClaimID = claim.ClaimID
	dec.ClaimData = claim

	zap.L().Debug("router: claim routed",
		zap.String("claim_id", dec.ClaimID),
		zap.String("team", dec.AssignedTeam),
		zap.String("routed_by", string(dec.RoutedBy)),
		zap.String("urgency", string(dec.Urgency)),
		zap.Float64("risk_score", dec.RiskScore),
		zap.Bool("fraud", dec.IsPotentialFraud),
		zap.Stringer("classifier", prediction),
	)
	return dec, nil
}

// reasoning concatenates urgency, risk and value reasons, then fraud
// indicators when flagged, then classifier reasons. Classifier reasons are
// left out for flagged claims since the suggestion played no part.
func reasoning(a *scorer.Assessment, fraud model.FraudAssessment, p classifier.Prediction, hasSuggestion bool) []string {
	out := make([]string, 0, len(a.Urgency.Reasons)+len(a.Risk.Reasons)+len(a.Value.Reasons)+len(fraud.Indicators)+len(p.Reasons))
	out = append(out, a.Urgency.Reasons...)
	out = append(out, a.Risk.Reasons...)
	out = append(out, a.Value.Reasons...)
	if fraud.IsPotentialFraud {
		out = append(out, fraud.Indicators...)
		return out
	}
	if hasSuggestion {
		for _, reason := range p.Reasons {
			out = append(out, MLReasonPrefix+reason)
		}
	}
	return out
}
