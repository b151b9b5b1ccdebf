package metrics

import "github.com/prometheus/client_golang/prometheus"

// AuthMetrics holds Prometheus metrics for the authentication flows.
type AuthMetrics struct {
	LoginsTotal           *prometheus.CounterVec
	RegistrationsTotal    *prometheus.CounterVec
	TokenResolutionsTotal *prometheus.CounterVec
	OriginRejectionsTotal prometheus.Counter
}

// NewAuthMetrics creates and registers authentication metrics on the given registry.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		LoginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Total number of login attempts, by result.",
		}, []string{"result"}),
		RegistrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of registration attempts, by result.",
		}, []string{"result"}),
		TokenResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_resolutions_total",
			Help:      "Total number of bearer token resolutions, by result.",
		}, []string{"result"}),
		OriginRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "origin_rejections_total",
			Help:      "Total number of requests rejected by the origin allow-list.",
		}),
	}

	reg.MustRegister(m.LoginsTotal, m.RegistrationsTotal, m.TokenResolutionsTotal, m.OriginRejectionsTotal)
	return m
}
