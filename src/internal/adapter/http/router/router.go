package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/api-sage/business-credits/src/internal/adapter/http/middleware"
	"github.com/api-sage/business-credits/src/internal/metrics"
)

type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router, authMiddleware func(http.Handler) http.Handler)
}

type Options struct {
	AuthMiddleware func(http.Handler) http.Handler
	RateLimiter    *middleware.RateLimiter
	Metrics        *metrics.Metrics
}

// New builds the service router. /ping, /metrics and the API docs are served
// without authentication; every registrar decides which of its routes use it.
func New(opts Options, registrars ...RouteRegistrar) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Metrics(opts.Metrics))
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Middleware)
	}

	router.HandleFunc("/ping", ping).Methods(http.MethodGet)
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}
	registerSwaggerRoutes(router)

	for _, registrar := range registrars {
		if registrar != nil {
			registrar.RegisterRoutes(router, opts.AuthMiddleware)
		}
	}

	return router
}

func ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}
