package registry_ext

import (
	"fmt"

	"github.com/grossamos/throwscape/application/components/prometheus"
	"github.com/grossamos/throwscape/application/config"
	appconsts "github.com/grossamos/throwscape/application/consts"
	"github.com/grossamos/throwscape/application/core"
	"github.com/grossamos/throwscape/application/registry"
	bizConfig "github.com/grossamos/throwscape/internal/config"
	"github.com/grossamos/throwscape/internal/consts"
	"github.com/grossamos/throwscape/internal/metrics"
	"github.com/grossamos/throwscape/internal/server"
	"github.com/grossamos/throwscape/internal/service"
)

func init() {
	bizCfg := bizConfig.GetBizConfig()

	registry.RegisterWithDeps(consts.COMP_SVC_WORKER_POOL, []string{appconsts.COMPONENT_PROMETHEUS}, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return true, service.NewWorkerPool(bizCfg, resolvePrometheus(c)), nil
	})

	registry.RegisterWithDeps(consts.COMP_SVC_STATIC_SERVER, []string{consts.COMP_SVC_WORKER_POOL, appconsts.COMPONENT_PROMETHEUS}, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		comp, err := c.Resolve(consts.COMP_SVC_WORKER_POOL)
		if err != nil {
			return true, nil, fmt.Errorf("resolve %s failed: %w", consts.COMP_SVC_WORKER_POOL, err)
		}
		pool, ok := comp.(*service.WorkerPool)
		if !ok {
			return true, nil, fmt.Errorf("%s type assertion failed", consts.COMP_SVC_WORKER_POOL)
		}
		var m *metrics.ServerMetrics
		if prom := resolvePrometheus(c); prom != nil {
			m = metrics.NewServerMetrics(prom.Registerer())
		}
		return true, server.NewStaticServer(bizCfg, pool, m), nil
	})
}

// resolvePrometheus returns nil when metrics are disabled.
func resolvePrometheus(c *core.Container) *prometheus.Component {
	comp, err := c.Resolve(appconsts.COMPONENT_PROMETHEUS)
	if err != nil {
		return nil
	}
	prom, _ := comp.(*prometheus.Component)
	return prom
}
