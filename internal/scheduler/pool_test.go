package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grossamos/throwscape/internal/config"
)

type recordingObserver struct {
	submitted atomic.Int64
	started   atomic.Int64
	finished  atomic.Int64
	faults    atomic.Int64
	exited    chan int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{exited: make(chan int, 16)}
}

func (o *recordingObserver) JobSubmitted()                  { o.submitted.Add(1) }
func (o *recordingObserver) JobStarted(int)                 { o.started.Add(1) }
func (o *recordingObserver) JobFinished(int, time.Duration) { o.finished.Add(1) }
func (o *recordingObserver) WorkerFault(int, any)           { o.faults.Add(1) }
func (o *recordingObserver) WorkerExited(id int)            { o.exited <- id }

func waitGroup(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for jobs")
	}
}

func TestNewPoolZeroWorkers(t *testing.T) {
	if _, err := NewPool(0, config.Default()); !errors.Is(err, ErrNoWorkers) {
		t.Fatalf("expected ErrNoWorkers, got %v", err)
	}
}

func TestJobsRunExactlyOnceWithBoundedConcurrency(t *testing.T) {
	const workers, jobs = 3, 60
	p, err := NewPool(workers, config.Default())
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}

	var (
		wg       sync.WaitGroup
		runs     [jobs]atomic.Int32
		inFlight atomic.Int32
		maxSeen  atomic.Int32
	)
	wg.Add(jobs)
	for i := 0; i < jobs; i++ {
		i := i
		p.HandleJob(func(cfg *config.Config) {
			defer wg.Done()
			n := inFlight.Add(1)
			for {
				m := maxSeen.Load()
				if n <= m || maxSeen.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			runs[i].Add(1)
			inFlight.Add(-1)
		})
	}
	waitGroup(t, &wg, 5*time.Second)

	for i := range runs {
		if got := runs[i].Load(); got != 1 {
			t.Errorf("job %d ran %d times", i, got)
		}
	}
	if m := maxSeen.Load(); m > workers {
		t.Fatalf("max concurrency %d exceeds %d workers", m, workers)
	}
}

func TestJobReceivesSharedConfig(t *testing.T) {
	cfg := config.Default()
	p, _ := NewPool(2, cfg)
	got := make(chan *config.Config, 1)
	p.HandleJob(func(c *config.Config) { got <- c })
	select {
	case c := <-got:
		if c != cfg {
			t.Fatal("job received a different config")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job not executed")
	}
}

func TestHandleJobDoesNotWaitForWorker(t *testing.T) {
	p, _ := NewPool(1, config.Default())
	release := make(chan struct{})
	p.HandleJob(func(*config.Config) { <-release })

	submitted := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			p.HandleJob(func(*config.Config) {})
		}
		close(submitted)
	}()
	select {
	case <-submitted:
	case <-time.After(2 * time.Second):
		t.Fatal("HandleJob blocked while the only worker was busy")
	}
	close(release)
}

func TestPanicDoesNotBlockOtherJobs(t *testing.T) {
	obs := newRecordingObserver()
	p, _ := NewPool(2, config.Default(), WithObserver(obs))

	p.HandleJob(func(*config.Config) { panic("boom") })

	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		p.HandleJob(func(*config.Config) { wg.Done() })
	}
	waitGroup(t, &wg, 5*time.Second)

	select {
	case <-obs.exited:
	case <-time.After(2 * time.Second):
		t.Fatal("faulted worker did not exit")
	}
	st := p.Stats()
	if st.Live != 1 || st.Faults != 1 || st.Workers != 2 {
		t.Fatalf("stats = %+v", st)
	}
	if obs.submitted.Load() != 11 {
		t.Fatalf("submitted = %d", obs.submitted.Load())
	}
}

func TestUnsupervisedWorkerLosesCapacity(t *testing.T) {
	obs := newRecordingObserver()
	p, _ := NewPool(1, config.Default(), WithObserver(obs))
	p.HandleJob(func(*config.Config) { panic("boom") })

	select {
	case <-obs.exited:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit")
	}

	ran := make(chan struct{})
	p.HandleJob(func(*config.Config) { close(ran) })
	select {
	case <-ran:
		t.Fatal("job ran although the only worker is gone")
	case <-time.After(100 * time.Millisecond):
	}
	if st := p.Stats(); st.Live != 0 {
		t.Fatalf("live = %d", st.Live)
	}
}

func TestSupervisedWorkerKeepsServing(t *testing.T) {
	obs := newRecordingObserver()
	p, _ := NewPool(1, config.Default(), WithObserver(obs), WithSupervision(true))
	p.HandleJob(func(*config.Config) { panic("boom") })

	ran := make(chan struct{})
	p.HandleJob(func(*config.Config) { close(ran) })
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("supervised worker stopped serving")
	}
	st := p.Stats()
	if st.Live != 1 || st.Faults != 1 {
		t.Fatalf("stats = %+v", st)
	}
	select {
	case id := <-obs.exited:
		t.Fatalf("worker %d exited under supervision", id)
	default:
	}
}
