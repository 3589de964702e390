package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ServerMetrics exports per-connection outcomes of the static server.
type ServerMetrics struct {
	accepted    prometheus.Counter
	acceptErrs  prometheus.Counter
	responses   *prometheus.CounterVec
	parseErrors *prometheus.CounterVec
	aborted     prometheus.Counter
	bytesSent   prometheus.Counter
	duration    prometheus.Histogram
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	f := promauto.With(reg)
	return &ServerMetrics{
		accepted: f.NewCounter(prometheus.CounterOpts{
			Name: "connections_accepted_total",
			Help: "Connections accepted by the static server.",
		}),
		acceptErrs: f.NewCounter(prometheus.CounterOpts{
			Name: "accept_errors_total",
			Help: "Failed accept calls.",
		}),
		responses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "responses_total",
			Help: "Responses written, by status code.",
		}, []string{"code"}),
		parseErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "request_parse_errors_total",
			Help: "Requests that failed to parse, by error kind.",
		}, []string{"kind"}),
		aborted: f.NewCounter(prometheus.CounterOpts{
			Name: "connections_aborted_total",
			Help: "Connections closed without a response.",
		}),
		bytesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "response_body_bytes_total",
			Help: "Declared Content-Length of responses that carried a body.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "connection_duration_seconds",
			Help:    "Time from accept to close.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// All recording methods accept a nil receiver, so the server runs unchanged without prometheus.

func (m *ServerMetrics) Accepted() {
	if m != nil {
		m.accepted.Inc()
	}
}

func (m *ServerMetrics) AcceptError() {
	if m != nil {
		m.acceptErrs.Inc()
	}
}

func (m *ServerMetrics) Aborted() {
	if m != nil {
		m.aborted.Inc()
	}
}

func (m *ServerMetrics) ParseError(kind string) {
	if m != nil {
		m.parseErrors.WithLabelValues(kind).Inc()
	}
}

func (m *ServerMetrics) Response(code int, bodyBytes int64) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(strconv.Itoa(code)).Inc()
	if bodyBytes > 0 {
		m.bytesSent.Add(float64(bodyBytes))
	}
}

func (m *ServerMetrics) Closed(d time.Duration) {
	if m != nil {
		m.duration.Observe(d.Seconds())
	}
}
