package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditRate is reference data for converting between business credit symbols.
// No workflow reads it.
type CreditRate struct {
	ID         int64
	FromSymbol string
	ToSymbol   string
	Rate       decimal.Decimal
	RateDate   time.Time
	CreatedAt  time.Time
}
