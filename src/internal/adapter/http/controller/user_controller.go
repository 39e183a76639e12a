package controller

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/usecase/service_interfaces"
)

type UserController struct {
	service service_interfaces.UserService
}

func NewUserController(service service_interfaces.UserService) *UserController {
	return &UserController{service: service}
}

func (c *UserController) RegisterRoutes(router *mux.Router, authMiddleware func(http.Handler) http.Handler) {
	router.Handle("/user/new", protect(c.createUser, authMiddleware)).Methods(http.MethodPost)
	router.Handle("/user/register", protect(c.registerUser, authMiddleware)).Methods(http.MethodPost)
	router.Handle("/user/reward", protect(c.rewardUser, authMiddleware)).Methods(http.MethodPost)
	router.Handle("/user/balance", protect(c.getBalance, authMiddleware)).Methods(http.MethodGet)
}

func (c *UserController) createUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateUserRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeBadBody[models.CreateUserResponse](w, r, start, err)
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateUser(r.Context(), req)
	writeResult(w, r, start, response, err)
}

func (c *UserController) registerUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RegisterUserRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeBadBody[models.RegisterUserResponse](w, r, start, err)
		return
	}
	logRequest(r, req)

	response, err := c.service.RegisterUser(r.Context(), req)
	writeResult(w, r, start, response, err)
}

func (c *UserController) rewardUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RewardUserRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeBadBody[models.RewardUserResponse](w, r, start, err)
		return
	}
	logRequest(r, req)

	response, err := c.service.RewardUser(r.Context(), req)
	writeResult(w, r, start, response, err)
}

// getBalance takes businessName and user from the query string, falling back
// to a JSON body for clients that send one with GET.
func (c *UserController) getBalance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.GetBalanceRequest
	query := r.URL.Query()
	if query.Get("businessName") != "" || query.Get("user") != "" {
		req.BusinessName = query.Get("businessName")
		req.User = query.Get("user")
	} else if err := decodeBody(r, &req, true); err != nil {
		writeBadBody[models.BalanceResponse](w, r, start, err)
		return
	}
	logRequest(r, req)

	response, err := c.service.GetBalance(r.Context(), req)
	writeResult(w, r, start, response, err)
}
