package store

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/claim-router/internal/model"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	decisions []*model.DecisionRecord
	latest    map[string]int
}

var _ Store = (*MemoryStore)(nil)

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{latest: make(map[string]int)}
}

func (s *MemoryStore) SaveDecision(ctx context.Context, dec *model.DecisionRecord) error {
	if dec == nil {
		return eris.New("memory: nil decision")
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "memory: save decision")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	assignID(dec)
	s.decisions = append(s.decisions, dec.Clone())
	s.latest[dec.ClaimID] = len(s.decisions) - 1
	return nil
}

func (s *MemoryStore) GetDecision(_ context.Context, claimID string) (*model.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.latest[claimID]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "memory: get decision %s", claimID)
	}
	return s.decisions[i].Clone(), nil
}

func (s *MemoryStore) ListDecisions(_ context.Context, filter DecisionFilter) ([]model.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.DecisionRecord{}
	skipped := 0
	for _, d := range s.decisions {
		if filter.Team != "" && d.AssignedTeam != filter.Team {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		out = append(out, *d.Clone())
	}
	return out, nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
