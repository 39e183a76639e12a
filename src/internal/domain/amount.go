package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var maxTokenAmount = decimal.RequireFromString(strconv.FormatUint(math.MaxUint64, 10))

// ParseTokenAmount accepts a positive whole number of token base units that fits in uint64.
func ParseTokenAmount(field string, raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Decimal{}, errors.New(field + " is required")
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, errors.New(field + " must be numeric")
	}
	if !amount.IsInteger() {
		return decimal.Decimal{}, errors.New(field + " must be a whole number")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, errors.New(field + " must be greater than zero")
	}
	if amount.GreaterThan(maxTokenAmount) {
		return decimal.Decimal{}, errors.New(field + " exceeds the maximum token amount")
	}

	return amount, nil
}
