package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/api-sage/business-credits/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/business-credits/src/internal/domain"
)

var _ repo_interfaces.SwapIntentRepository = (*SwapIntentRepository)(nil)

// SwapIntentRepository keeps swap intents in process memory. Intents do not
// survive a restart, so it is meant for the sandbox ledger and tests.
type SwapIntentRepository struct {
	mu      sync.RWMutex
	intents map[string]domain.SwapIntent
	now     func() time.Time
}

func NewSwapIntentRepository() *SwapIntentRepository {
	return &SwapIntentRepository{
		intents: make(map[string]domain.SwapIntent),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *SwapIntentRepository) Create(_ context.Context, intent domain.SwapIntent) (domain.SwapIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.intents[intent.ID]; ok {
		return domain.SwapIntent{}, domain.ErrDuplicateIntent
	}
	now := r.now()
	intent.CreatedAt = now
	intent.UpdatedAt = now
	r.intents[intent.ID] = cloneIntent(intent)
	return intent, nil
}

func (r *SwapIntentRepository) UpdateStatus(_ context.Context, intent domain.SwapIntent, expected domain.SwapStatus) (domain.SwapIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.intents[intent.ID]
	if !ok {
		return domain.SwapIntent{}, domain.ErrRecordNotFound
	}
	if stored.Status != expected {
		return domain.SwapIntent{}, domain.ErrStaleIntent
	}

	stored.Status = intent.Status
	stored.LastStep = intent.LastStep
	stored.LastError = intent.LastError
	stored.Attempts = intent.Attempts
	stored.UpdatedAt = r.now()
	r.intents[intent.ID] = cloneIntent(stored)
	return stored, nil
}

func (r *SwapIntentRepository) GetByID(_ context.Context, id string) (domain.SwapIntent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	intent, ok := r.intents[id]
	if !ok {
		return domain.SwapIntent{}, domain.ErrRecordNotFound
	}
	return cloneIntent(intent), nil
}

func (r *SwapIntentRepository) List(_ context.Context, status domain.SwapStatus, limit int) ([]domain.SwapIntent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SwapIntent, 0)
	for _, intent := range r.intents {
		if status != "" && intent.Status != status {
			continue
		}
		out = append(out, cloneIntent(intent))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneIntent(intent domain.SwapIntent) domain.SwapIntent {
	if intent.LastError != nil {
		value := *intent.LastError
		intent.LastError = &value
	}
	return intent
}
