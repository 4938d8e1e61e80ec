package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	// None of these may panic.
	m.Classification("happy")
	m.SearchTier("direct", OutcomeSuccess)
	m.CatalogRequest("search_tracks", nil)
	m.Retry("search_tracks")
	m.TokenExchange(errors.New("boom"))
	m.CacheLookup("hit")
}

func TestCounters(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.Classification("sad")
	m.Classification("sad")
	m.CatalogRequest("search_tracks", nil)
	m.CatalogRequest("search_tracks", errors.New("boom"))
	m.TokenExchange(nil)

	if got := testutil.ToFloat64(m.classifications.WithLabelValues("sad")); got != 2 {
		t.Errorf("classifications{sad} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.catalogRequests.WithLabelValues("search_tracks", OutcomeError)); got != 1 {
		t.Errorf("catalog_requests{search_tracks,error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.tokenExchanges.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Errorf("token_exchanges{success} = %v, want 1", got)
	}
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Error("second New() on the same registry error = nil, want error")
	}
}
