package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/products/{sku}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := RequestTotal.WithLabelValues(http.MethodGet, "/products/{sku}", "404")
	before := testutil.ToFloat64(counter)

	for _, sku := range []string{"A", "B", "C"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/"+sku, nil))
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestHandlerExposesRegistry(t *testing.T) {
	Derivations.WithLabelValues("encoded").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shop_media_derivations_total{result="encoded"}`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
