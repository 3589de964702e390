package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/grossamos/throwscape/application/components/logging"
)

type worker struct {
	id   int
	pool *Pool
}

// run loops announce -> receive -> execute. Without supervision a panicking job ends the
// worker for good and its slot is not replaced.
func (w *worker) run() {
	p := w.pool
	for {
		p.sched.announce(w.id)
		job := <-p.sched.jobs(w.id)
		if w.execute(job) {
			continue
		}
		if p.supervise {
			logging.Warn(context.Background(), "worker restarted after job panic", zap.Int("worker_id", w.id))
			continue
		}
		p.live.Add(-1)
		p.observer.WorkerExited(w.id)
		logging.Error(context.Background(), "worker exited after job panic", zap.Int("worker_id", w.id))
		return
	}
}

// execute runs job to completion and reports whether it returned normally.
func (w *worker) execute(job Job) (ok bool) {
	p := w.pool
	start := time.Now()
	p.busy.Add(1)
	p.observer.JobStarted(w.id)
	defer func() {
		p.busy.Add(-1)
		if r := recover(); r != nil {
			p.faults.Add(1)
			p.observer.WorkerFault(w.id, r)
			logging.Error(context.Background(), "job panicked",
				zap.Int("worker_id", w.id), zap.Any("panic", r), zap.Stack("stack"))
			ok = false
			return
		}
		p.completed.Add(1)
		p.observer.JobFinished(w.id, time.Since(start))
	}()
	job(p.cfg)
	return true
}
