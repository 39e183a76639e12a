package service_interfaces

import (
	"context"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/commons"
)

type UserService interface {
	CreateUser(ctx context.Context, req models.CreateUserRequest) (commons.Response[models.CreateUserResponse], error)
	RegisterUser(ctx context.Context, req models.RegisterUserRequest) (commons.Response[models.RegisterUserResponse], error)
	RewardUser(ctx context.Context, req models.RewardUserRequest) (commons.Response[models.RewardUserResponse], error)
	GetBalance(ctx context.Context, req models.GetBalanceRequest) (commons.Response[models.BalanceResponse], error)
}
