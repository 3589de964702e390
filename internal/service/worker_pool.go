package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/grossamos/throwscape/application/components/logging"
	"github.com/grossamos/throwscape/application/components/prometheus"
	appconsts "github.com/grossamos/throwscape/application/consts"
	"github.com/grossamos/throwscape/application/core"
	"github.com/grossamos/throwscape/internal/config"
	"github.com/grossamos/throwscape/internal/consts"
	"github.com/grossamos/throwscape/internal/metrics"
	"github.com/grossamos/throwscape/internal/scheduler"
)

var ErrPoolNotStarted = errors.New("worker pool not started")

// WorkerPool wraps scheduler.Pool as a lifecycle component. Workers are started in Start and
// live for the rest of the process; Stop only marks the component inactive.
type WorkerPool struct {
	*core.BaseComponent

	cfg  *config.Config
	prom *prometheus.Component

	mu   sync.RWMutex
	pool *scheduler.Pool
}

// NewWorkerPool creates the component. prom may be nil.
func NewWorkerPool(cfg *config.Config, prom *prometheus.Component) *WorkerPool {
	return &WorkerPool{
		BaseComponent: core.NewBaseComponent(consts.COMP_SVC_WORKER_POOL, appconsts.COMPONENT_LOGGING, appconsts.COMPONENT_PROMETHEUS),
		cfg:           cfg,
		prom:          prom,
	}
}

func (w *WorkerPool) Start(ctx context.Context) error {
	if w.IsActive() {
		return nil
	}
	if !w.cfg.Finalized() {
		if err := w.cfg.Finalize(); err != nil {
			return err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pool == nil {
		opts := []scheduler.Option{scheduler.WithSupervision(w.cfg.SuperviseWorkers)}
		if w.prom != nil {
			opts = append(opts, scheduler.WithObserver(metrics.NewPoolMetrics(w.prom.Registerer(), w.cfg.Workers)))
		}
		pool, err := scheduler.NewPool(w.cfg.Workers, w.cfg, opts...)
		if err != nil {
			return fmt.Errorf("start worker pool: %w", err)
		}
		w.pool = pool
	}
	logging.Info(ctx, "worker pool started",
		zap.Int("workers", w.cfg.Workers), zap.Bool("supervised", w.cfg.SuperviseWorkers))
	return w.BaseComponent.Start(ctx)
}

// Submit hands job to the pool without waiting for a worker.
func (w *WorkerPool) Submit(job scheduler.Job) error {
	w.mu.RLock()
	pool := w.pool
	w.mu.RUnlock()
	if pool == nil {
		return ErrPoolNotStarted
	}
	pool.HandleJob(job)
	return nil
}

func (w *WorkerPool) Stats() (scheduler.Stats, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.pool == nil {
		return scheduler.Stats{}, false
	}
	return w.pool.Stats(), true
}

// HealthCheck fails once every worker has been lost to panics.
func (w *WorkerPool) HealthCheck() error {
	if err := w.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	st, ok := w.Stats()
	if !ok {
		return ErrPoolNotStarted
	}
	if st.Live == 0 {
		return fmt.Errorf("no live workers (%d configured)", st.Workers)
	}
	return nil
}
