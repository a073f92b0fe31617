package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_CountsRequests(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.CollectAndCount(httpReqs)

	req := httptest.NewRequest(http.MethodGet, "/v1/rules", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rr.Code)
	}
	if after := testutil.CollectAndCount(httpReqs); after <= before {
		t.Fatalf("request counter did not grow: before=%d after=%d", before, after)
	}

	want := testutil.ToFloat64(httpReqs.WithLabelValues("/v1/rules", http.MethodGet, http.StatusText(http.StatusTeapot)))
	if want != 1 {
		t.Fatalf("counter = %v, want 1", want)
	}
}

func TestStatusWriter_DefaultsTo200(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/implicit", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	got := testutil.ToFloat64(httpReqs.WithLabelValues("/implicit", http.MethodGet, http.StatusText(http.StatusOK)))
	if got != 1 {
		t.Fatalf("counter = %v, want 1", got)
	}
}
