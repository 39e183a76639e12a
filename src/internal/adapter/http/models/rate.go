package models

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/api-sage/business-credits/src/internal/domain"
)

type RateResponse struct {
	ID         int64           `json:"id"`
	FromSymbol string          `json:"fromSymbol"`
	ToSymbol   string          `json:"toSymbol"`
	Rate       decimal.Decimal `json:"rate"`
	RateDate   string          `json:"rateDate"`
	CreatedAt  string          `json:"createdAt"`
}

type GetRateRequest struct {
	FromSymbol string `json:"fromSymbol"`
	ToSymbol   string `json:"toSymbol"`
}

func (r GetRateRequest) Validate() error {
	var errs []string

	fromSymbol := strings.ToUpper(strings.TrimSpace(r.FromSymbol))
	toSymbol := strings.ToUpper(strings.TrimSpace(r.ToSymbol))

	if fromSymbol == "" {
		errs = append(errs, "fromSymbol is required")
	} else if utf8.RuneCountInString(fromSymbol) != domain.SymbolLength {
		errs = append(errs, "fromSymbol must be 3 characters")
	}
	if toSymbol == "" {
		errs = append(errs, "toSymbol is required")
	} else if utf8.RuneCountInString(toSymbol) != domain.SymbolLength {
		errs = append(errs, "toSymbol must be 3 characters")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}
