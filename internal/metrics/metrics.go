// Package metrics exposes Prometheus counters for the account flow and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the services and middleware report to.
type Recorder interface {
	RecordSignup(outcome string)
	RecordVerify(outcome string)
	RecordLogin(outcome string)
	RecordMessageSent(outcome string)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	signups      *prometheus.CounterVec
	verifies     *prometheus.CounterVec
	logins       *prometheus.CounterVec
	messages     *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "truefeed_signup_total",
			Help: "Signup attempts by outcome",
		}, []string{"outcome"}),
		verifies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "truefeed_verify_total",
			Help: "Verification attempts by outcome",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "truefeed_login_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "truefeed_message_sent_total",
			Help: "Anonymous message sends by outcome",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "truefeed_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "truefeed_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(c.signups, c.verifies, c.logins, c.messages, c.httpRequests, c.httpLatency)
	return c
}

func (c *Collector) RecordSignup(outcome string)      { c.signups.WithLabelValues(outcome).Inc() }
func (c *Collector) RecordVerify(outcome string)      { c.verifies.WithLabelValues(outcome).Inc() }
func (c *Collector) RecordLogin(outcome string)       { c.logins.WithLabelValues(outcome).Inc() }
func (c *Collector) RecordMessageSent(outcome string) { c.messages.WithLabelValues(outcome).Inc() }

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything; used when metrics are disabled.
type Nop struct{}

func (Nop) RecordSignup(string)                                  {}
func (Nop) RecordVerify(string)                                  {}
func (Nop) RecordLogin(string)                                   {}
func (Nop) RecordMessageSent(string)                             {}
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
