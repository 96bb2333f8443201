// Package pipeline runs claims through extraction, routing and storage.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/claim-router/internal/extract"
	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/router"
	"github.com/sells-group/claim-router/internal/store"
)

// Pipeline wires the extractor, the router and the decision store.
type Pipeline struct {
	extractor *extract.Extractor
	router    *router.Router
	store     store.Store
}

// New creates a Pipeline. A nil store disables persistence; Submit then
// behaves like Route.
func New(ex *extract.Extractor, rt *router.Router, st store.Store) *Pipeline {
	if ex == nil {
		ex = extract.New()
	}
	if rt == nil {
		rt = router.New()
	}
	return &Pipeline{extractor: ex, router: rt, store: st}
}

// Store returns the decision store, which may be nil.
func (p *Pipeline) Store() store.Store {
	return p.store
}

// WithStore returns a copy of p that saves to st.
func (p *Pipeline) WithStore(st store.Store) *Pipeline {
	cp := *p
	cp.store = st
	return &cp
}

// Route extracts and routes one claim without saving the decision.
// Invalid input is reported as extract.ErrInvalidInput.
func (p *Pipeline) Route(ctx context.Context, in model.ClaimInput) (*model.DecisionRecord, error) {
	claim, err := p.extractor.Extract(in)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: extract")
	}
	dec, err := p.router.Route(ctx, claim)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: route")
	}
	return dec, nil
}

// Submit routes one claim and saves the decision.
func (p *Pipeline) Submit(ctx context.Context, in model.ClaimInput) (*model.DecisionRecord, error) {
	dec, err := p.Route(ctx, in)
	if err != nil {
		return nil, err
	}
	if p.store == nil {
		return dec, nil
	}

	// Stores keep their own copy and stamp DecidedAt on dec.
	if err := p.store.SaveDecision(ctx, dec); err != nil {
		return nil, eris.Wrapf(err, "pipeline: save decision %s", dec.ClaimID)
	}

	zap.L().Info("pipeline: claim submitted",
		zap.String("claim_id", dec.ClaimID),
		zap.String("team", dec.AssignedTeam),
		zap.String("routed_by", string(dec.RoutedBy)),
	)
	return dec, nil
}
