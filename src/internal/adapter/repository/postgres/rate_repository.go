package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/business-credits/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/logger"
)

var _ repo_interfaces.RateRepository = (*RateRepository)(nil)

type RateRepository struct {
	db *sql.DB
}

func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

func (r *RateRepository) GetRates(ctx context.Context) ([]domain.CreditRate, error) {
	const query = `
SELECT id, from_symbol, to_symbol, rate, rate_date, created_at
FROM credit_rates
ORDER BY rate_date DESC, from_symbol ASC, to_symbol ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("rate repository get rates failed", err, nil)
		return nil, fmt.Errorf("get rates: %w", err)
	}
	defer rows.Close()

	rates := make([]domain.CreditRate, 0)
	for rows.Next() {
		var rate domain.CreditRate
		if err := rows.Scan(
			&rate.ID,
			&rate.FromSymbol,
			&rate.ToSymbol,
			&rate.Rate,
			&rate.RateDate,
			&rate.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		rates = append(rates, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rates: %w", err)
	}

	return rates, nil
}

func (r *RateRepository) GetRate(ctx context.Context, fromSymbol string, toSymbol string) (domain.CreditRate, error) {
	const query = `
SELECT id, from_symbol, to_symbol, rate, rate_date, created_at
FROM credit_rates
WHERE from_symbol = $1
  AND to_symbol = $2
ORDER BY rate_date DESC
LIMIT 1`

	var rate domain.CreditRate
	if err := r.db.QueryRowContext(ctx, query, fromSymbol, toSymbol).Scan(
		&rate.ID,
		&rate.FromSymbol,
		&rate.ToSymbol,
		&rate.Rate,
		&rate.RateDate,
		&rate.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CreditRate{}, domain.ErrRecordNotFound
		}
		logger.Error("rate repository get rate failed", err, logger.Fields{
			"fromSymbol": fromSymbol,
			"toSymbol":   toSymbol,
		})
		return domain.CreditRate{}, fmt.Errorf("get rate: %w", err)
	}

	return rate, nil
}
