package models

import (
	"errors"
	"strings"

	"github.com/api-sage/business-credits/src/internal/domain"
)

type CreateBusinessRequest struct {
	BusinessName string `json:"businessName"`
}

func (r CreateBusinessRequest) Validate() error {
	var errs []string

	if err := domain.ValidateLeafName("businessName", r.BusinessName); err != nil {
		errs = append(errs, err.Error())
	} else if _, err := domain.DeriveSymbol(r.BusinessName); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type CreateBusinessResponse struct {
	BusinessName string `json:"businessName"`
	SymbolName   string `json:"symbolName"`
}

type GetBusinessRequest struct {
	BusinessName string `json:"businessName"`
}

func (r GetBusinessRequest) Validate() error {
	return domain.ValidateLeafName("businessName", r.BusinessName)
}

type BusinessInfoResponse struct {
	BusinessName string `json:"businessName"`
	Account      string `json:"account"`
	SymbolName   string `json:"symbolName"`
	TotalSupply  string `json:"totalSupply"`
}
