package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/usecase/service_interfaces"
)

type SwapController struct {
	swaps          service_interfaces.SwapService
	reconciliation service_interfaces.ReconciliationService
}

func NewSwapController(swaps service_interfaces.SwapService, reconciliation service_interfaces.ReconciliationService) *SwapController {
	return &SwapController{swaps: swaps, reconciliation: reconciliation}
}

func (c *SwapController) RegisterRoutes(router *mux.Router, authMiddleware func(http.Handler) http.Handler) {
	router.Handle("/credits/swap", protect(c.swapCredits, authMiddleware)).Methods(http.MethodPost)
	router.Handle("/credits/swaps", protect(c.listSwaps, authMiddleware)).Methods(http.MethodGet)
	router.Handle("/credits/swaps/{id}", protect(c.getSwap, authMiddleware)).Methods(http.MethodGet)
	router.Handle("/credits/swaps/{id}/retry", protect(c.retryDelivery, authMiddleware)).Methods(http.MethodPost)
	router.Handle("/credits/swaps/{id}/refund", protect(c.refund, authMiddleware)).Methods(http.MethodPost)
	router.Handle("/credits/swaps/{id}/resolve", protect(c.resolve, authMiddleware)).Methods(http.MethodPost)
}

func (c *SwapController) swapCredits(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SwapCreditsRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeBadBody[models.SwapCreditsResponse](w, r, start, err)
		return
	}
	logRequest(r, req)

	response, err := c.swaps.SwapCredits(r.Context(), req)
	writeResult(w, r, start, response, err)
}

func (c *SwapController) listSwaps(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	req := models.ListSwapsRequest{Status: r.URL.Query().Get("status")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeBadBody[[]models.SwapIntentResponse](w, r, start, err)
			return
		}
		req.Limit = limit
	}

	response, err := c.reconciliation.ListSwaps(r.Context(), req)
	writeResult(w, r, start, response, err)
}

func (c *SwapController) getSwap(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.reconciliation.GetSwap(r.Context(), mux.Vars(r)["id"])
	writeResult(w, r, start, response, err)
}

func (c *SwapController) retryDelivery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.reconciliation.RetryDelivery(r.Context(), mux.Vars(r)["id"])
	writeResult(w, r, start, response, err)
}

func (c *SwapController) refund(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.reconciliation.Refund(r.Context(), mux.Vars(r)["id"])
	writeResult(w, r, start, response, err)
}

func (c *SwapController) resolve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ResolveSwapRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeBadBody[models.SwapIntentResponse](w, r, start, err)
		return
	}
	logRequest(r, req)

	response, err := c.reconciliation.Resolve(r.Context(), mux.Vars(r)["id"], req)
	writeResult(w, r, start, response, err)
}
