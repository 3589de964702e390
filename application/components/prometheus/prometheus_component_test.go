package prometheus

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounterAndHandler(t *testing.T) {
	off := false
	comp, err := NewFactory().Create(&Config{Enabled: true, Namespace: "throwscape", CollectGoMetrics: &off, CollectProcess: &off})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	c := comp.(*Component)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Stop(context.Background())

	if C() != c || Registry() == nil {
		t.Fatal("global component not registered")
	}

	cv := c.NewCounter("connections_total", "accepted connections", []string{"result"})
	cv.WithLabelValues("ok").Add(3)
	if got := testutil.ToFloat64(cv.WithLabelValues("ok")); got != 3 {
		t.Fatalf("counter = %v", got)
	}

	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "wrapped_gauge", Help: "h"})
	if err := c.Registerer().Register(g); err != nil {
		t.Fatalf("register: %v", err)
	}
	g.Set(7)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{`throwscape_connections_total{result="ok"} 3`, "throwscape_wrapped_gauge 7"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestFactoryRejectsBadPath(t *testing.T) {
	if _, err := NewFactory().Create(&Config{Enabled: true, Path: "metrics"}); err == nil {
		t.Fatal("expected path error")
	}
	cfg := &Config{Enabled: true}
	if _, err := NewFactory().Create(cfg); err != nil || cfg.Path != "/metrics" {
		t.Fatalf("default path not applied: %v %q", err, cfg.Path)
	}
}
