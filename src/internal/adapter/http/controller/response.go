package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/api-sage/business-credits/src/internal/commons"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/logger"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeResult writes the bare data on success and the failure envelope otherwise.
func writeResult[T any](w http.ResponseWriter, r *http.Request, start time.Time, response commons.Response[T], err error) {
	if err != nil {
		status := statusFor(err)
		logError(r, err, logger.Fields{"message": response.Message, "status": status})
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response.Data)
	logResponse(r, http.StatusOK, response.Data, start)
}

func writeBadBody[T any](w http.ResponseWriter, r *http.Request, start time.Time, err error) {
	logError(r, err, nil)
	response := commons.ErrorResponse[T]("invalid request body", err.Error())
	writeJSON(w, http.StatusBadRequest, response)
	logResponse(r, http.StatusBadRequest, response, start)
}

func statusFor(err error) int {
	if wfErr, ok := domain.AsWorkflowError(err); ok {
		switch wfErr.Kind {
		case domain.FailureRemoteUnknown:
			return http.StatusGatewayTimeout
		case domain.FailureSwapNotFound, domain.FailureFeatureDisabled:
			return http.StatusNotFound
		case domain.FailureInvalidTransition:
			return http.StatusConflict
		case domain.FailureIntentLogUnavailable:
			return http.StatusServiceUnavailable
		default:
			return http.StatusBadRequest
		}
	}
	if errors.Is(err, domain.ErrRecordNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// decodeBody reads a JSON body into dst. An empty body is allowed when
// optional is set, leaving dst untouched.
func decodeBody(r *http.Request, dst any, optional bool) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func protect(handler http.HandlerFunc, authMiddleware func(http.Handler) http.Handler) http.Handler {
	if authMiddleware == nil {
		return handler
	}
	return authMiddleware(handler)
}
