package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/business-credits/src/internal/metrics"
)

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	m := metrics.New()
	router := mux.NewRouter()
	router.Use(Metrics(m))
	router.HandleFunc("/credits/swaps/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/credits/swaps/abc-123", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(scrape.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `path="/credits/swaps/{id}"`)
	assert.Contains(t, string(body), `status="404"`)
	assert.NotContains(t, string(body), "abc-123")
}
