// Package metrics holds the Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersCreated    prometheus.Counter
	TenantsCreated  prometheus.Counter
	NewsCreated     prometheus.Counter
	NewsPublished   prometheus.Counter
	ActivityLogged  prometheus.Counter
	PolicyDenials   *prometheus.CounterVec
	LoginAttempts   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the given registerer.
// Pass prometheus.DefaultRegisterer in main; tests use a fresh registry so
// repeated construction never collides.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_users_created_total",
			Help: "Total number of users created in the system",
		}),
		TenantsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_tenants_created_total",
			Help: "Total number of tenants created in the system",
		}),
		NewsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_news_created_total",
			Help: "Total number of news articles created",
		}),
		NewsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_news_published_total",
			Help: "Total number of news articles transitioned to published",
		}),
		ActivityLogged: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_activity_events_total",
			Help: "Total number of activity log entries recorded",
		}),
		PolicyDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_policy_denials_total",
			Help: "Total number of authorization denials by resource",
		}, []string{"resource"}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_login_attempts_total",
			Help: "Total number of login attempts by outcome",
		}, []string{"outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsdesk_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// IncrementUsersCreated increments the users created counter by 1.
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

// IncrementTenantsCreated increments the tenants created counter by 1.
func (m *Metrics) IncrementTenantsCreated() {
	m.TenantsCreated.Inc()
}

// IncrementNewsCreated increments the news created counter by 1.
func (m *Metrics) IncrementNewsCreated() {
	m.NewsCreated.Inc()
}

// IncrementNewsPublished increments the news published counter by 1.
func (m *Metrics) IncrementNewsPublished() {
	m.NewsPublished.Inc()
}

// IncrementActivityLogged increments the activity log counter by 1.
func (m *Metrics) IncrementActivityLogged() {
	m.ActivityLogged.Inc()
}

// IncrementPolicyDenial increments the denial counter for a resource kind.
func (m *Metrics) IncrementPolicyDenial(resource string) {
	m.PolicyDenials.WithLabelValues(resource).Inc()
}

// IncrementLoginAttempt increments the login counter for an outcome
// ("success" or "failure").
func (m *Metrics) IncrementLoginAttempt(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}
