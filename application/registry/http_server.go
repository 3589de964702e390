package registry

import (
	"github.com/grossamos/throwscape/application/components/http_server"
	"github.com/grossamos/throwscape/application/config"
	"github.com/grossamos/throwscape/application/consts"
	"github.com/grossamos/throwscape/application/core"
)

func init() {
	RegisterWithDeps(consts.COMPONENT_HTTP_SERVER, []string{consts.COMPONENT_PROMETHEUS},
		func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
			if cfg.HTTPServer == nil || !cfg.HTTPServer.Enabled {
				return false, nil, nil
			}
			if cfg.HTTPServer.ServiceName == "" && cfg.APPInfo != nil {
				cfg.HTTPServer.ServiceName = cfg.APPInfo.APPName + "-admin"
			}
			comp, err := http_server.NewFactory(c).Create(cfg.HTTPServer)
			if err != nil {
				return true, nil, err
			}
			return true, comp, nil
		})
}
