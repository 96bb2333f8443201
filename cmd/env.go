package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/claim-router/internal/classifier"
	"github.com/sells-group/claim-router/internal/config"
	"github.com/sells-group/claim-router/internal/extract"
	"github.com/sells-group/claim-router/internal/pipeline"
	"github.com/sells-group/claim-router/internal/router"
	"github.com/sells-group/claim-router/internal/rules"
	"github.com/sells-group/claim-router/internal/scorer"
	"github.com/sells-group/claim-router/internal/store"
)

// routerEnv holds everything the serve/route/batch commands share.
type routerEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *routerEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates cfg for mode, opens the store, loads the classifier
// and compiles fraud rules. Callers should defer env.Close().
func initEnv(ctx context.Context, c *config.Config, mode string) (*routerEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	ruleSet, err := rules.Compile(fraudRules(c.Fraud.Rules))
	if err != nil {
		return nil, eris.Wrap(err, "compile fraud rules")
	}

	clf := classifier.Load(classifier.Paths{
		Model:    c.Classifier.ModelPath,
		Encoders: c.Classifier.EncodersPath,
		Metadata: c.Classifier.MetadataPath,
	}, classifier.WithCacheTTL(time.Duration(c.Classifier.CacheTTLMinutes)*time.Minute))

	rt := router.New(
		router.WithScorer(scorer.New(ruleSet)),
		router.WithClassifier(clf),
		router.WithConfidenceThreshold(c.Classifier.ConfidenceThreshold),
	)

	var exOpts []extract.Option
	if c.Extract.EntityRecognizer {
		exOpts = append(exOpts, extract.WithRecognizer(extract.NewLexiconRecognizer()))
	}

	st, err := store.New(c.Store.Driver, c.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	zap.L().Info("claim router ready",
		zap.String("store", c.Store.Driver),
		zap.Bool("classifier", clf.Available()),
		zap.Int("fraud_rules", ruleSet.Len()),
		zap.Bool("entity_recognizer", c.Extract.EntityRecognizer),
	)

	return &routerEnv{
		Store:    st,
		Pipeline: pipeline.New(extract.New(exOpts...), rt, st),
	}, nil
}

func fraudRules(in []config.FraudRuleConfig) []rules.Rule {
	out := make([]rules.Rule, 0, len(in))
	for _, r := range in {
		out = append(out, rules.Rule{
			Name:       r.Name,
			Expression: r.Expression,
			Weight:     r.Weight,
			Indicator:  r.Indicator,
		})
	}
	return out
}
