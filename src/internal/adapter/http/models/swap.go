package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/business-credits/src/internal/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type SwapCreditsRequest struct {
	FromBusiness       string      `json:"fromBusiness"`
	ToBusiness         string      `json:"toBusiness"`
	FromBusinessAmount TokenAmount `json:"fromBusinessAmount"`
	ToBusinessAmount   TokenAmount `json:"toBusinessAmount"`
	UserAccount        string      `json:"userAccount"`
}

func (r SwapCreditsRequest) Validate() error {
	var errs []string

	if err := domain.ValidateLeafName("fromBusiness", r.FromBusiness); err != nil {
		errs = append(errs, err.Error())
	}
	if err := domain.ValidateLeafName("toBusiness", r.ToBusiness); err != nil {
		errs = append(errs, err.Error())
	}
	if r.FromBusiness != "" && r.FromBusiness == r.ToBusiness {
		errs = append(errs, "fromBusiness and toBusiness must differ")
	}
	if _, err := domain.ParseTokenAmount("fromBusinessAmount", r.FromBusinessAmount.String()); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := domain.ParseTokenAmount("toBusinessAmount", r.ToBusinessAmount.String()); err != nil {
		errs = append(errs, err.Error())
	}
	if err := domain.ValidateIdentity("userAccount", r.UserAccount); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type SwapCreditsResponse struct {
	FromBusiness       string `json:"fromBusiness"`
	ToBusiness         string `json:"toBusiness"`
	FromBusinessAmount string `json:"fromBusinessAmount"`
	ToBusinessAmount   string `json:"toBusinessAmount"`
	UserAccount        string `json:"userAccount"`
	Success            bool   `json:"success"`
	SwapID             string `json:"swapId"`
}

type SwapIntentResponse struct {
	ID                 string  `json:"id"`
	FromBusiness       string  `json:"fromBusiness"`
	ToBusiness         string  `json:"toBusiness"`
	FromBusinessAmount string  `json:"fromBusinessAmount"`
	ToBusinessAmount   string  `json:"toBusinessAmount"`
	UserAccount        string  `json:"userAccount"`
	Status             string  `json:"status"`
	LastStep           string  `json:"lastStep"`
	LastError          *string `json:"lastError,omitempty"`
	Attempts           int     `json:"attempts"`
	Terminal           bool    `json:"terminal"`
	CreatedAt          string  `json:"createdAt"`
	UpdatedAt          string  `json:"updatedAt"`
}

func NewSwapIntentResponse(intent domain.SwapIntent) SwapIntentResponse {
	return SwapIntentResponse{
		ID:                 intent.ID,
		FromBusiness:       intent.FromBusiness,
		ToBusiness:         intent.ToBusiness,
		FromBusinessAmount: intent.FromAmount,
		ToBusinessAmount:   intent.ToAmount,
		UserAccount:        intent.UserAccount.String(),
		Status:             string(intent.Status),
		LastStep:           intent.LastStep,
		LastError:          intent.LastError,
		Attempts:           intent.Attempts,
		Terminal:           intent.Status.IsTerminal(),
		CreatedAt:          intent.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          intent.UpdatedAt.Format(time.RFC3339),
	}
}

type ListSwapsRequest struct {
	Status string `json:"status"`
	Limit  int    `json:"limit"`
}

func (r ListSwapsRequest) Validate() error {
	var errs []string

	status := strings.ToUpper(strings.TrimSpace(r.Status))
	if status != "" && !domain.SwapStatus(status).Valid() {
		errs = append(errs, "status is not a known swap status")
	}
	if r.Limit < 0 || r.Limit > maxListLimit {
		errs = append(errs, "limit must be between 0 and 500")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (r ListSwapsRequest) SwapStatus() domain.SwapStatus {
	return domain.SwapStatus(strings.ToUpper(strings.TrimSpace(r.Status)))
}

func (r ListSwapsRequest) EffectiveLimit() int {
	if r.Limit <= 0 {
		return defaultListLimit
	}
	return r.Limit
}

type ResolveSwapRequest struct {
	Landed *bool `json:"landed"`
}

func (r ResolveSwapRequest) Validate() error {
	if r.Landed == nil {
		return errors.New("landed is required")
	}
	return nil
}
