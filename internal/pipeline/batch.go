package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/claim-router/internal/model"
)

// Result is the outcome of one claim in a batch.
type Result struct {
	Index    int                   `json:"index"`
	Decision *model.DecisionRecord `json:"decision,omitempty"`
	Err      error                 `json:"-"`
	Error    string                `json:"error,omitempty"`
}

// BatchOptions controls RunBatch.
type BatchOptions struct {
	// Concurrency bounds in-flight claims; values below 1 mean 1.
	Concurrency int
	// Save stores each decision, as Submit does.
	Save bool
}

// RunBatch routes claims independently with bounded concurrency. Results
// are returned in input order. A failing claim is recorded in its Result
// and does not stop the batch; only context cancellation does.
func (p *Pipeline) RunBatch(ctx context.Context, claims []model.ClaimInput, opts BatchOptions) ([]Result, error) {
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(claims))
	for i := range results {
		results[i].Index = i
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, in := range claims {
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			run := p.Route
			if opts.Save {
				run = p.Submit
			}
			dec, err := run(gctx, in)

			results[i] = Result{Index: i, Decision: dec, Err: err}
			if err != nil {
				results[i].Error = err.Error()
				zap.L().Warn("pipeline: batch claim failed", zap.Int("index", i), zap.Error(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Decisions returns the successful decisions of results in order.
func Decisions(results []Result) []model.DecisionRecord {
	out := make([]model.DecisionRecord, 0, len(results))
	for _, r := range results {
		if r.Decision != nil {
			out = append(out, *r.Decision)
		}
	}
	return out
}
