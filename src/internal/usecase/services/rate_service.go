package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/business-credits/src/internal/commons"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/logger"
	"github.com/api-sage/business-credits/src/internal/usecase/service_interfaces"
)

// Verify that RateService implements the service_interfaces.RateService interface
var _ service_interfaces.RateService = (*RateService)(nil)

// RateService exposes the credit rate table. Swaps never consult it.
type RateService struct {
	rateRepo repo_interfaces.RateRepository
	now      func() time.Time
}

func NewRateService(rateRepo repo_interfaces.RateRepository) *RateService {
	return &RateService{
		rateRepo: rateRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *RateService) GetRates(ctx context.Context) (commons.Response[[]models.RateResponse], error) {
	logger.Info("rate service get rates request", nil)

	rates, err := s.rateRepo.GetRates(ctx)
	if err != nil {
		logger.Error("rate service get rates failed", err, nil)
		return commons.ErrorResponse[[]models.RateResponse]("failed to get rates", "Unable to fetch rates right now"), err
	}

	resp := make([]models.RateResponse, 0, len(rates))
	for _, rate := range rates {
		resp = append(resp, mapRateToResponse(rate))
	}

	logger.Info("rate service get rates success", logger.Fields{
		"count": len(resp),
	})

	return commons.SuccessResponse("rates fetched successfully", resp), nil
}

func (s *RateService) GetRate(ctx context.Context, req models.GetRateRequest) (commons.Response[models.RateResponse], error) {
	logger.Info("rate service get rate request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("rate service get rate validation failed", err, nil)
		return invalidRequest[models.RateResponse](err)
	}

	fromSymbol := strings.ToUpper(strings.TrimSpace(req.FromSymbol))
	toSymbol := strings.ToUpper(strings.TrimSpace(req.ToSymbol))
	if fromSymbol == toSymbol {
		now := s.now()
		return commons.SuccessResponse("rate fetched successfully", models.RateResponse{
			FromSymbol: fromSymbol,
			ToSymbol:   toSymbol,
			Rate:       decimal.NewFromInt(1),
			RateDate:   now.Format("2006-01-02"),
			CreatedAt:  now.Format(time.RFC3339),
		}), nil
	}

	rate, err := s.rateRepo.GetRate(ctx, fromSymbol, toSymbol)
	if err != nil {
		logger.Error("rate service get rate failed", err, logger.Fields{
			"fromSymbol": fromSymbol,
			"toSymbol":   toSymbol,
		})
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.RateResponse]("Rate not found", "Rate not found for symbol pair"), err
		}
		return commons.ErrorResponse[models.RateResponse]("failed to get rate", "Unable to fetch rate right now"), err
	}

	logger.Info("rate service get rate success", logger.Fields{
		"rateId":     rate.ID,
		"fromSymbol": rate.FromSymbol,
		"toSymbol":   rate.ToSymbol,
	})

	return commons.SuccessResponse("rate fetched successfully", mapRateToResponse(rate)), nil
}

func mapRateToResponse(rate domain.CreditRate) models.RateResponse {
	return models.RateResponse{
		ID:         rate.ID,
		FromSymbol: rate.FromSymbol,
		ToSymbol:   rate.ToSymbol,
		Rate:       rate.Rate,
		RateDate:   rate.RateDate.Format("2006-01-02"),
		CreatedAt:  rate.CreatedAt.Format(time.RFC3339),
	}
}
