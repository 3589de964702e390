package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PoolMetrics exports worker pool events. It satisfies scheduler.Observer.
type PoolMetrics struct {
	submitted prometheus.Counter
	completed prometheus.Counter
	faults    *prometheus.CounterVec
	busy      prometheus.Gauge
	live      prometheus.Gauge
	duration  prometheus.Histogram
}

// NewPoolMetrics registers the pool collectors on reg. size seeds the live gauge.
func NewPoolMetrics(reg prometheus.Registerer, size int) *PoolMetrics {
	f := promauto.With(reg)
	m := &PoolMetrics{
		submitted: f.NewCounter(prometheus.CounterOpts{
			Name: "pool_jobs_submitted_total",
			Help: "Jobs handed to the worker pool.",
		}),
		completed: f.NewCounter(prometheus.CounterOpts{
			Name: "pool_jobs_completed_total",
			Help: "Jobs that returned normally.",
		}),
		faults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pool_job_panics_total",
			Help: "Jobs that panicked, by worker.",
		}, []string{"worker"}),
		busy: f.NewGauge(prometheus.GaugeOpts{
			Name: "pool_workers_busy",
			Help: "Workers currently executing a job.",
		}),
		live: f.NewGauge(prometheus.GaugeOpts{
			Name: "pool_workers_live",
			Help: "Workers still accepting jobs.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pool_job_duration_seconds",
			Help:    "Job execution time.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}
	m.live.Set(float64(size))
	return m
}

func (m *PoolMetrics) JobSubmitted() { m.submitted.Inc() }

func (m *PoolMetrics) JobStarted(int) { m.busy.Inc() }

func (m *PoolMetrics) JobFinished(_ int, d time.Duration) {
	m.busy.Dec()
	m.completed.Inc()
	m.duration.Observe(d.Seconds())
}

func (m *PoolMetrics) WorkerFault(id int, _ any) {
	m.busy.Dec()
	m.faults.WithLabelValues(strconv.Itoa(id)).Inc()
}

func (m *PoolMetrics) WorkerExited(int) { m.live.Dec() }
