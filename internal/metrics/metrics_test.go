package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestMiddlewareLabelsByPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	h := Middleware(mux)

	before := counterValue(t, httpRequests.WithLabelValues("GET", "GET /widgets/{id}", "202"))
	for _, id := range []string{"a", "b", "c"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/widgets/"+id, nil))
	}
	after := counterValue(t, httpRequests.WithLabelValues("GET", "GET /widgets/{id}", "202"))
	if after-before != 3 {
		t.Fatalf("pattern counter grew by %v, want 3", after-before)
	}
}

func TestMiddlewareUnmatched(t *testing.T) {
	h := Middleware(http.NewServeMux())
	before := counterValue(t, httpRequests.WithLabelValues("GET", "unmatched", "404"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if got := counterValue(t, httpRequests.WithLabelValues("GET", "unmatched", "404")); got-before != 1 {
		t.Fatalf("unmatched counter grew by %v, want 1", got-before)
	}
}
