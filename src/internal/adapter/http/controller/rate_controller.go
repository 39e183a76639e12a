package controller

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/usecase/service_interfaces"
)

type RateController struct {
	service service_interfaces.RateService
}

func NewRateController(service service_interfaces.RateService) *RateController {
	return &RateController{service: service}
}

func (c *RateController) RegisterRoutes(router *mux.Router, authMiddleware func(http.Handler) http.Handler) {
	router.Handle("/credits/rates", protect(c.getRates, authMiddleware)).Methods(http.MethodGet)
	router.Handle("/credits/rates/{from}/{to}", protect(c.getRate, authMiddleware)).Methods(http.MethodGet)
}

func (c *RateController) getRates(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.GetRates(r.Context())
	writeResult(w, r, start, response, err)
}

func (c *RateController) getRate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	vars := mux.Vars(r)
	req := models.GetRateRequest{FromSymbol: vars["from"], ToSymbol: vars["to"]}
	logRequest(r, req)

	response, err := c.service.GetRate(r.Context(), req)
	writeResult(w, r, start, response, err)
}
