package models

import (
	"errors"
	"strings"

	"github.com/api-sage/business-credits/src/internal/domain"
)

type CreateUserRequest struct {
	User string `json:"user"`
}

func (r CreateUserRequest) Validate() error {
	return domain.ValidateLeafName("user", r.User)
}

type CreateUserResponse struct {
	User    string `json:"user"`
	Created bool   `json:"created"`
}

type RegisterUserRequest struct {
	BusinessName string `json:"businessName"`
	User         string `json:"user"`
}

func (r RegisterUserRequest) Validate() error {
	var errs []string

	if err := domain.ValidateLeafName("businessName", r.BusinessName); err != nil {
		errs = append(errs, err.Error())
	}
	if err := domain.ValidateIdentity("user", r.User); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type RegisterUserResponse struct {
	BusinessName string `json:"businessName"`
	User         string `json:"user"`
}

type RewardUserRequest struct {
	BusinessName string      `json:"businessName"`
	User         string      `json:"user"`
	Amount       TokenAmount `json:"amount"`
}

func (r RewardUserRequest) Validate() error {
	var errs []string

	if err := domain.ValidateLeafName("businessName", r.BusinessName); err != nil {
		errs = append(errs, err.Error())
	}
	if err := domain.ValidateIdentity("user", r.User); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := domain.ParseTokenAmount("amount", r.Amount.String()); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type RewardUserResponse struct {
	BusinessName string `json:"businessName"`
	User         string `json:"user"`
	Amount       string `json:"amount"`
}

type GetBalanceRequest struct {
	BusinessName string `json:"businessName"`
	User         string `json:"user"`
}

func (r GetBalanceRequest) Validate() error {
	var errs []string

	if err := domain.ValidateLeafName("businessName", r.BusinessName); err != nil {
		errs = append(errs, err.Error())
	}
	if err := domain.ValidateIdentity("user", r.User); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

type BalanceResponse struct {
	BusinessName string `json:"businessName"`
	User         string `json:"user"`
	Balance      string `json:"balance"`
}
