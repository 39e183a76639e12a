package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/api-sage/business-credits/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/business-credits/src/internal/domain"
)

var _ repo_interfaces.RateRepository = (*RateRepository)(nil)

// RateRepository serves a fixed set of credit rates.
type RateRepository struct {
	mu    sync.RWMutex
	rates []domain.CreditRate
}

func NewRateRepository(rates ...domain.CreditRate) *RateRepository {
	stored := make([]domain.CreditRate, len(rates))
	copy(stored, rates)
	sort.SliceStable(stored, func(i, j int) bool {
		if !stored[i].RateDate.Equal(stored[j].RateDate) {
			return stored[i].RateDate.After(stored[j].RateDate)
		}
		if stored[i].FromSymbol != stored[j].FromSymbol {
			return stored[i].FromSymbol < stored[j].FromSymbol
		}
		return stored[i].ToSymbol < stored[j].ToSymbol
	})
	return &RateRepository{rates: stored}
}

func (r *RateRepository) GetRates(_ context.Context) ([]domain.CreditRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CreditRate, len(r.rates))
	copy(out, r.rates)
	return out, nil
}

func (r *RateRepository) GetRate(_ context.Context, fromSymbol string, toSymbol string) (domain.CreditRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rate := range r.rates {
		if rate.FromSymbol == fromSymbol && rate.ToSymbol == toSymbol {
			return rate, nil
		}
	}
	return domain.CreditRate{}, domain.ErrRecordNotFound
}
