package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	return w.Body.String()
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/v1/portfolio/{userID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2", "3"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/portfolio/"+id, nil))
	}

	body := scrape(t)
	want := `tradedash_http_requests_total{method="GET",path="/api/v1/portfolio/{userID}",status="418"} 3`
	if !strings.Contains(body, want) {
		t.Errorf("expected %q in exposition", want)
	}
	if strings.Contains(body, `path="/api/v1/portfolio/1"`) {
		t.Error("raw paths must not be used as labels")
	}
}

func TestHandler_ExposesEngineMetrics(t *testing.T) {
	EnrichmentFailures.WithLabelValues("portfolio").Inc()

	if !strings.Contains(scrape(t), "tradedash_ranking_enrichment_failures_total") {
		t.Error("expected enrichment failure counter in exposition")
	}
}
