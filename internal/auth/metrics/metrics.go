// Package metrics exposes Prometheus counters for the token endpoint and
// the /metrics handler serving them.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for TokenGrants.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	registerOnce sync.Once
	registerErr  error

	tokenGrantsTotal *prometheus.CounterVec
)

// Register initialises the collectors on the given registry (nil means the
// default one) and returns the handler for /metrics.
func Register(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	registerOnce.Do(func() {
		tokenGrantsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "passage_token_grants_total",
			Help: "Token grant requests by grant type and result.",
		}, []string{"grant_type", "result"})

		registerErr = registerCollector(reg, tokenGrantsTotal)
	})
	if registerErr != nil {
		return nil, registerErr
	}

	return promhttp.Handler(), nil
}

// RecordGrant counts one token grant attempt.
func RecordGrant(grantType, result string) {
	if tokenGrantsTotal != nil {
		tokenGrantsTotal.WithLabelValues(grantType, result).Inc()
	}
}

func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
