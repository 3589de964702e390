package prometheus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grossamos/throwscape/application/components/logging"
	"github.com/grossamos/throwscape/application/consts"
	"github.com/grossamos/throwscape/application/core"
)

// Component owns a private registry. It is created eagerly so that other components can
// register collectors while they are being built, before Start.
type Component struct {
	*core.BaseComponent
	cfg      *Config
	server   *http.Server
	registry *prometheus.Registry
	started  bool
}

func NewComponent(cfg *Config) *Component {
	return &Component{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_PROMETHEUS, consts.COMPONENT_LOGGING),
		cfg:           cfg,
		registry:      prometheus.NewRegistry(),
	}
}

func (c *Component) Start(ctx context.Context) error {
	if err := c.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if boolOr(c.cfg.CollectGoMetrics, true) {
		_ = c.registry.Register(collectors.NewGoCollector())
	}
	if boolOr(c.cfg.CollectProcess, true) {
		_ = c.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	if c.cfg.Address != "" {
		mux := http.NewServeMux()
		mux.Handle(c.cfg.Path, c.Handler())
		c.server = &http.Server{
			Addr:              c.cfg.Address,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logging.Infof(context.Background(), "prometheus metrics listening on %s%s", c.cfg.Address, c.cfg.Path)
			if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Errorf(context.Background(), "prometheus server error: %v", err)
			}
		}()
	}

	registerGlobal(c)
	c.started = true
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	defer c.BaseComponent.Stop(ctx)
	registerGlobal(nil)
	c.started = false
	if c.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("prometheus server shutdown: %w", err)
	}
	logging.Info(ctx, "prometheus component stopped")
	return nil
}

func (c *Component) HealthCheck() error {
	if err := c.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if !c.started {
		return fmt.Errorf("prometheus not started")
	}
	return nil
}

// Path is where the metrics handler is expected to be mounted.
func (c *Component) Path() string { return c.cfg.Path }

// Handler exposes the private registry in the text exposition format.
func (c *Component) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registerer is handed to collectors built outside this package.
func (c *Component) Registerer() prometheus.Registerer {
	return prometheus.WrapRegistererWithPrefix(c.prefix(), c.registry)
}

func (c *Component) prefix() string {
	switch {
	case c.cfg.Namespace != "" && c.cfg.Subsystem != "":
		return c.cfg.Namespace + "_" + c.cfg.Subsystem + "_"
	case c.cfg.Namespace != "":
		return c.cfg.Namespace + "_"
	case c.cfg.Subsystem != "":
		return c.cfg.Subsystem + "_"
	default:
		return ""
	}
}

// Public metric registration shortcuts. Registration errors are ignored; a duplicate
// name yields a vector that is never exported.
func (c *Component) NewCounter(name, help string, labels []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: c.prefix() + name,
		Help: help,
	}, labels)
	_ = c.registry.Register(cv)
	return cv
}

func (c *Component) NewGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: c.prefix() + name,
		Help: help,
	}, labels)
	_ = c.registry.Register(gv)
	return gv
}

func (c *Component) NewHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    c.prefix() + name,
		Help:    help,
		Buckets: buckets,
	}, labels)
	_ = c.registry.Register(hv)
	return hv
}
