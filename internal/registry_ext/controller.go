package registry_ext

import (
	"fmt"

	"github.com/grossamos/throwscape/application/config"
	appconsts "github.com/grossamos/throwscape/application/consts"
	"github.com/grossamos/throwscape/application/core"
	"github.com/grossamos/throwscape/application/registry"
	"github.com/grossamos/throwscape/internal/api"
	bizConfig "github.com/grossamos/throwscape/internal/config"
	"github.com/grossamos/throwscape/internal/consts"
	"github.com/grossamos/throwscape/internal/server"
	"github.com/grossamos/throwscape/internal/service"
)

func init() {
	// admin routes are mounted when http_server starts, so the controller must be up first
	registry.ExtendRuntimeDependencies(appconsts.COMPONENT_HTTP_SERVER, consts.COMP_CTRL_STATUS)

	registry.RegisterWithDeps(consts.COMP_CTRL_STATUS, []string{consts.COMP_SVC_WORKER_POOL, consts.COMP_SVC_STATIC_SERVER}, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.HTTPServer == nil || !cfg.HTTPServer.Enabled {
			return false, nil, nil
		}
		poolComp, err := c.Resolve(consts.COMP_SVC_WORKER_POOL)
		if err != nil {
			return true, nil, fmt.Errorf("resolve %s failed: %w", consts.COMP_SVC_WORKER_POOL, err)
		}
		pool, ok := poolComp.(*service.WorkerPool)
		if !ok {
			return true, nil, fmt.Errorf("%s type assertion failed", consts.COMP_SVC_WORKER_POOL)
		}
		srvComp, err := c.Resolve(consts.COMP_SVC_STATIC_SERVER)
		if err != nil {
			return true, nil, fmt.Errorf("resolve %s failed: %w", consts.COMP_SVC_STATIC_SERVER, err)
		}
		srv, ok := srvComp.(*server.StaticServer)
		if !ok {
			return true, nil, fmt.Errorf("%s type assertion failed", consts.COMP_SVC_STATIC_SERVER)
		}
		return true, api.NewStatusController(bizConfig.GetBizConfig(), pool, srv), nil
	})
}
