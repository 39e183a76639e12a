package service_interfaces

import (
	"context"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/commons"
)

type BusinessService interface {
	CreateBusiness(ctx context.Context, req models.CreateBusinessRequest) (commons.Response[models.CreateBusinessResponse], error)
	GetBusiness(ctx context.Context, req models.GetBusinessRequest) (commons.Response[models.BusinessInfoResponse], error)
}
