// Package metrics defines the Prometheus counters exported by moodtune.
//
// Every method is safe to call on a nil *Metrics, so components can take an
// optional metrics handle without guarding each call site.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "moodtune"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
)

// Metrics groups the counters. Build it with New.
type Metrics struct {
	classifications *prometheus.CounterVec
	searchTiers     *prometheus.CounterVec
	catalogRequests *prometheus.CounterVec
	retries         *prometheus.CounterVec
	tokenExchanges  *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Texts classified, by resulting emotion label.",
		}, []string{"label"}),
		searchTiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_tier_total",
			Help:      "Search tiers entered, by tier and outcome.",
		}, []string{"tier", "outcome"}),
		catalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog API requests, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retried attempts after a transient failure, by operation.",
		}, []string{"op"}),
		tokenExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_exchanges_total",
			Help:      "Client credentials exchanges, by outcome.",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Search cache lookups, by result (hit, miss, stale, error).",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{
		m.classifications,
		m.searchTiers,
		m.catalogRequests,
		m.retries,
		m.tokenExchanges,
		m.cacheLookups,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Classification counts one classified text.
func (m *Metrics) Classification(label string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(label).Inc()
}

// SearchTier counts one visit to a search tier.
func (m *Metrics) SearchTier(tier, outcome string) {
	if m == nil {
		return
	}
	m.searchTiers.WithLabelValues(tier, outcome).Inc()
}

// CatalogRequest counts one catalog API call.
func (m *Metrics) CatalogRequest(endpoint string, err error) {
	if m == nil {
		return
	}
	m.catalogRequests.WithLabelValues(endpoint, outcome(err)).Inc()
}

// Retry counts one retried attempt of op.
func (m *Metrics) Retry(op string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(op).Inc()
}

// TokenExchange counts one token exchange.
func (m *Metrics) TokenExchange(err error) {
	if m == nil {
		return
	}
	m.tokenExchanges.WithLabelValues(outcome(err)).Inc()
}

// CacheLookup counts one cache lookup. result is "hit", "miss", "stale" or "error".
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
