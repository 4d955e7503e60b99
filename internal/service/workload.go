package service

import (
	"context"

	"github.com/spec-kit/support-router/internal/repository"
)

// WorkloadIndex computes current open-item counts per agent. Counts are read
// fresh per invocation and reflect store state at call time only; they are
// not locked against concurrent assignment batches.
type WorkloadIndex struct {
	items repository.ItemRepository
}

// NewWorkloadIndex builds the index over the item store.
func NewWorkloadIndex(items repository.ItemRepository) *WorkloadIndex {
	return &WorkloadIndex{items: items}
}

// Load returns the open-item count for every requested agent id. Agents with
// no open items are present with a zero count.
func (w *WorkloadIndex) Load(ctx context.Context, agentIDs []string) (map[string]int, error) {
	counts, err := w.items.CountOpenByOwner(ctx, agentIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range agentIDs {
		if _, ok := counts[id]; !ok {
			counts[id] = 0
		}
	}
	return counts, nil
}
