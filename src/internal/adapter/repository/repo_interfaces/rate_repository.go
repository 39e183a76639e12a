package repo_interfaces

import (
	"context"

	"github.com/api-sage/business-credits/src/internal/domain"
)

type RateRepository interface {
	GetRates(ctx context.Context) ([]domain.CreditRate, error)
	GetRate(ctx context.Context, fromSymbol string, toSymbol string) (domain.CreditRate, error)
}
