package scheduler

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/grossamos/throwscape/internal/config"
)

var ErrNoWorkers = errors.New("pool needs at least one worker")

// Observer receives pool events. Calls happen on worker goroutines and on the caller of
// HandleJob, so implementations must be safe for concurrent use.
type Observer interface {
	JobSubmitted()
	JobStarted(workerID int)
	JobFinished(workerID int, d time.Duration)
	WorkerFault(workerID int, recovered any)
	WorkerExited(workerID int)
}

type noopObserver struct{}

func (noopObserver) JobSubmitted()                  {}
func (noopObserver) JobStarted(int)                 {}
func (noopObserver) JobFinished(int, time.Duration) {}
func (noopObserver) WorkerFault(int, any)           {}
func (noopObserver) WorkerExited(int)               {}

type Option func(p *Pool)

func WithObserver(o Observer) Option {
	return func(p *Pool) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithSupervision keeps a worker serving after one of its jobs panicked.
func WithSupervision(on bool) Option {
	return func(p *Pool) { p.supervise = on }
}

// Stats is a point-in-time snapshot of the pool counters.
type Stats struct {
	Workers   int    `json:"workers"`
	Live      int64  `json:"live"`
	Busy      int64  `json:"busy"`
	Submitted uint64 `json:"submitted"`
	Completed uint64 `json:"completed"`
	Faults    uint64 `json:"faults"`
}

// Pool owns a fixed set of workers fed by a Scheduler. Workers share only cfg, read-only.
type Pool struct {
	cfg       *config.Config
	sched     *Scheduler
	observer  Observer
	supervise bool
	size      int

	live      atomic.Int64
	busy      atomic.Int64
	submitted atomic.Uint64
	completed atomic.Uint64
	faults    atomic.Uint64
}

// NewPool starts n workers. n == 0 is a setup error.
func NewPool(n int, cfg *config.Config, opts ...Option) (*Pool, error) {
	if n <= 0 {
		return nil, ErrNoWorkers
	}
	p := &Pool{
		cfg:      cfg,
		observer: noopObserver{},
		size:     n,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.sched = newScheduler(n)
	p.live.Store(int64(n))
	for i := 0; i < n; i++ {
		w := &worker{id: i, pool: p}
		go w.run()
	}
	return p, nil
}

// HandleJob submits job for execution on some idle worker. It does not wait for one.
func (p *Pool) HandleJob(job Job) {
	p.submitted.Add(1)
	p.observer.JobSubmitted()
	p.sched.Assign(job)
}

// Size is the configured worker count.
func (p *Pool) Size() int { return p.size }

func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   p.size,
		Live:      p.live.Load(),
		Busy:      p.busy.Load(),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Faults:    p.faults.Load(),
	}
}
