package service_interfaces

import (
	"context"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/commons"
)

type SwapService interface {
	SwapCredits(ctx context.Context, req models.SwapCreditsRequest) (commons.Response[models.SwapCreditsResponse], error)
}

type ReconciliationService interface {
	GetSwap(ctx context.Context, id string) (commons.Response[models.SwapIntentResponse], error)
	ListSwaps(ctx context.Context, req models.ListSwapsRequest) (commons.Response[[]models.SwapIntentResponse], error)
	RetryDelivery(ctx context.Context, id string) (commons.Response[models.SwapIntentResponse], error)
	Refund(ctx context.Context, id string) (commons.Response[models.SwapIntentResponse], error)
	Resolve(ctx context.Context, id string, req models.ResolveSwapRequest) (commons.Response[models.SwapIntentResponse], error)
}
