package controller

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/usecase/service_interfaces"
)

type BusinessController struct {
	service service_interfaces.BusinessService
}

func NewBusinessController(service service_interfaces.BusinessService) *BusinessController {
	return &BusinessController{service: service}
}

func (c *BusinessController) RegisterRoutes(router *mux.Router, authMiddleware func(http.Handler) http.Handler) {
	router.Handle("/business/create", protect(c.createBusiness, authMiddleware)).Methods(http.MethodPost)
	router.Handle("/business/info", protect(c.getBusiness, authMiddleware)).Methods(http.MethodGet)
}

func (c *BusinessController) createBusiness(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateBusinessRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeBadBody[models.CreateBusinessResponse](w, r, start, err)
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateBusiness(r.Context(), req)
	writeResult(w, r, start, response, err)
}

func (c *BusinessController) getBusiness(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.GetBusinessRequest
	if name := r.URL.Query().Get("businessName"); name != "" {
		req.BusinessName = name
	} else if err := decodeBody(r, &req, true); err != nil {
		writeBadBody[models.BusinessInfoResponse](w, r, start, err)
		return
	}
	logRequest(r, req)

	response, err := c.service.GetBusiness(r.Context(), req)
	writeResult(w, r, start, response, err)
}
