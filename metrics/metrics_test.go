package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Delete("/api/favourites/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := APIRequestsTotal.WithLabelValues(http.MethodDelete, "/api/favourites/{id}", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/favourites/"+id, nil))
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(APIActiveRequests))
}

func TestMiddlewareDefaultsStatusTo200(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	counter := APIRequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "200")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordFavouritesOperation(t *testing.T) {
	c := FavouritesOperations.WithLabelValues("create", OutcomeRejected)
	before := testutil.ToFloat64(c)

	RecordFavouritesOperation("create", OutcomeRejected)
	RecordRateLimitHit("/api/auth/login")

	assert.Equal(t, before+1, testutil.ToFloat64(c))
	assert.GreaterOrEqual(t, testutil.ToFloat64(APIRateLimitHits.WithLabelValues("/api/auth/login")), float64(1))
}
