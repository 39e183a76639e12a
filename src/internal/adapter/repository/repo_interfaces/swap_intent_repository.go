package repo_interfaces

import (
	"context"

	"github.com/api-sage/business-credits/src/internal/domain"
)

// SwapIntentRepository is the durable swap intent log.
type SwapIntentRepository interface {
	Create(ctx context.Context, intent domain.SwapIntent) (domain.SwapIntent, error)
	// UpdateStatus persists intent only if the stored status still equals expected.
	// It returns domain.ErrStaleIntent when another writer moved the intent first.
	UpdateStatus(ctx context.Context, intent domain.SwapIntent, expected domain.SwapStatus) (domain.SwapIntent, error)
	GetByID(ctx context.Context, id string) (domain.SwapIntent, error)
	// List returns intents newest first; an empty status matches every intent.
	List(ctx context.Context, status domain.SwapStatus, limit int) ([]domain.SwapIntent, error)
}
