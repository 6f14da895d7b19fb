// Package metrics exports token issuance counters to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tendant/simple-token/pkg/credential"
)

// PrometheusRecorder implements credential.Recorder and counts API outcomes
type PrometheusRecorder struct {
	issued   *prometheus.CounterVec
	swept    *prometheus.CounterVec
	requests *prometheus.CounterVec
}

// NewPrometheusRecorder registers the token counters with reg
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		issued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simple_token_issued_total",
			Help: "Total number of tokens handed out",
		}, []string{"service", "reused"}),
		swept: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simple_token_swept_total",
			Help: "Total number of stale tokens deleted during issuance",
		}, []string{"reason"}), // reason: session_bound, lifetime_tightened, expired, ip_mismatch
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simple_token_requests_total",
			Help: "Total number of get-token requests by result code",
		}, []string{"code"}),
	}
}

func (m *PrometheusRecorder) TokenIssued(service string, reused bool) {
	m.issued.WithLabelValues(service, strconv.FormatBool(reused)).Inc()
}

func (m *PrometheusRecorder) TokenSwept(reason credential.Reason) {
	m.swept.WithLabelValues(string(reason)).Inc()
}

// RequestCompleted counts a get-token request; code is "OK" or an error code
func (m *PrometheusRecorder) RequestCompleted(code string) {
	m.requests.WithLabelValues(code).Inc()
}
