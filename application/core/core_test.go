package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/grossamos/throwscape/application/hooks"
)

type stubComponent struct {
	*BaseComponent
	events  *[]string
	failErr error
	block   bool
}

func newStub(name string, events *[]string, deps ...string) *stubComponent {
	return &stubComponent{BaseComponent: NewBaseComponent(name, deps...), events: events}
}

func (s *stubComponent) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if s.failErr != nil {
		return s.failErr
	}
	*s.events = append(*s.events, "start:"+s.Name())
	return s.BaseComponent.Start(ctx)
}

func (s *stubComponent) Stop(ctx context.Context) error {
	*s.events = append(*s.events, "stop:"+s.Name())
	return s.BaseComponent.Stop(ctx)
}

func names(cs []Component) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name()
	}
	return out
}

func TestSortComponentsByDependencies(t *testing.T) {
	var ev []string
	c := NewContainer()
	_ = c.Register("static_server", newStub("static_server", &ev, "worker_pool", "logging"))
	_ = c.Register("worker_pool", newStub("worker_pool", &ev, "logging", "prometheus"))
	_ = c.Register("logging", newStub("logging", &ev))

	sorted, err := c.SortComponentsByDependencies()
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	got := strings.Join(names(sorted), ",")
	if got != "logging,worker_pool,static_server" {
		t.Fatalf("order = %s", got)
	}
	if missing := c.MissingDependencies(); len(missing) != 1 || missing[0] != "worker_pool -> [prometheus]" {
		t.Fatalf("missing = %v", missing)
	}
}

func TestSortDetectsCycle(t *testing.T) {
	var ev []string
	c := NewContainer()
	_ = c.Register("a", newStub("a", &ev, "b"))
	_ = c.Register("b", newStub("b", &ev, "a"))
	if _, err := c.SortComponentsByDependencies(); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	var ev []string
	c := NewContainer()
	if err := c.Register("x", newStub("x", &ev)); err != nil {
		t.Fatal(err)
	}
	if err := c.Register("x", newStub("x", &ev)); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := c.Resolve("y"); err == nil {
		t.Fatal("expected not found")
	}
	if !c.Has("x") || c.Has("y") {
		t.Fatal("Has mismatch")
	}
}

func TestLifecycleStartStopOrder(t *testing.T) {
	var ev []string
	c := NewContainer()
	_ = c.Register("logging", newStub("logging", &ev))
	_ = c.Register("worker_pool", newStub("worker_pool", &ev, "logging"))
	_ = c.Register("static_server", newStub("static_server", &ev, "worker_pool"))

	lm := NewLifecycleManager(c)
	_ = lm.AddHook("mark", hooks.AfterStart, func(ctx context.Context) error {
		ev = append(ev, "after_start")
		return nil
	}, 1)

	if err := lm.StartAll(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	lm.StopAll(context.Background())
	lm.StopAll(context.Background()) // second call is a no-op

	want := "start:logging,start:worker_pool,start:static_server,after_start,stop:static_server,stop:worker_pool,stop:logging"
	if got := strings.Join(ev, ","); got != want {
		t.Fatalf("events = %s\nwant     %s", got, want)
	}
}

func TestLifecycleStartFailureStopsStarted(t *testing.T) {
	var ev []string
	c := NewContainer()
	_ = c.Register("logging", newStub("logging", &ev))
	broken := newStub("worker_pool", &ev, "logging")
	broken.failErr = errors.New("no workers")
	_ = c.Register("worker_pool", broken)
	_ = c.Register("static_server", newStub("static_server", &ev, "worker_pool"))

	err := NewLifecycleManager(c).StartAll(context.Background())
	if err == nil || !errors.Is(err, broken.failErr) {
		t.Fatalf("expected wrapped start error, got %v", err)
	}
	if got := strings.Join(ev, ","); got != "start:logging,stop:logging" {
		t.Fatalf("events = %s", got)
	}
}

func TestLifecycleStartTimeout(t *testing.T) {
	var ev []string
	c := NewContainer()
	_ = c.Register("logging", newStub("logging", &ev))
	stuck := newStub("worker_pool", &ev, "logging")
	stuck.block = true
	_ = c.Register("worker_pool", stuck)

	lm := NewLifecycleManager(c)
	lm.SetTimeout(50 * time.Millisecond)
	if lm.Timeout() != 50*time.Millisecond {
		t.Fatalf("timeout = %s", lm.Timeout())
	}

	begin := time.Now()
	err := lm.StartAll(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(begin); elapsed > 5*time.Second {
		t.Fatalf("start took %s", elapsed)
	}
	if got := strings.Join(ev, ","); got != "start:logging,stop:logging" {
		t.Fatalf("events = %s", got)
	}
}
