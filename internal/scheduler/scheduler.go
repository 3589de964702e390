package scheduler

import (
	"github.com/grossamos/throwscape/internal/config"
)

// Job is one unit of work, typically "serve one accepted connection".
// It runs on exactly one worker, exactly once.
type Job func(cfg *config.Config)

// Scheduler pairs idle-worker announcements with submitted jobs.
//
// 拉模型：worker 空闲时把自己的 id 投递到 idle，dispatch 先等一个空闲 worker，
// 再等一个 job，然后把 job 发到该 worker 的私有通道。job 永远不会交给忙碌的 worker。
type Scheduler struct {
	idle    chan int
	workers []chan Job
	intake  chan Job
	ready   chan Job
}

// newScheduler creates the scheduler for n workers and starts its goroutines. They live for
// the rest of the process.
func newScheduler(n int) *Scheduler {
	s := &Scheduler{
		idle:    make(chan int, n),
		workers: make([]chan Job, n),
		intake:  make(chan Job),
		ready:   make(chan Job),
	}
	for i := range s.workers {
		s.workers[i] = make(chan Job, 1)
	}
	go s.pump()
	go s.dispatch()
	return s
}

// Assign queues job for the next idle worker. The backlog is unbounded, so Assign only waits
// for the intake goroutine to take the job, never for a worker.
func (s *Scheduler) Assign(job Job) {
	s.intake <- job
}

// announce marks worker id as idle. Each announcement is consumed by exactly one job.
func (s *Scheduler) announce(id int) {
	s.idle <- id
}

// jobs returns the private inbound channel of worker id.
func (s *Scheduler) jobs(id int) <-chan Job {
	return s.workers[id]
}

// pump keeps the FIFO backlog between Assign and dispatch.
func (s *Scheduler) pump() {
	var backlog []Job
	for {
		var out chan Job
		var next Job
		if len(backlog) > 0 {
			out = s.ready
			next = backlog[0]
		}
		select {
		case job := <-s.intake:
			backlog = append(backlog, job)
		case out <- next:
			backlog[0] = nil
			backlog = backlog[1:]
		}
	}
}

func (s *Scheduler) dispatch() {
	for {
		id := <-s.idle
		job := <-s.ready
		s.workers[id] <- job
	}
}
