// config/schema.go
package config

import (
	"time"

	"github.com/grossamos/throwscape/application/components/http_server"
	"github.com/grossamos/throwscape/application/components/logging"
	"github.com/grossamos/throwscape/application/components/prometheus"
	"github.com/grossamos/throwscape/application/components/telemetry"
)

// AppConfig 应用程序配置结构
type AppConfig struct {
	APPInfo    *APPInfo                      `yaml:"app_info" json:"app_info"`
	Logging    *logging.LoggingConfig        `yaml:"logging" json:"logging"`
	Prometheus *prometheus.Config            `yaml:"prometheus" json:"prometheus"`
	Telemetry  *telemetry.Config             `yaml:"telemetry" json:"telemetry"`
	HTTPServer *http_server.HTTPServerConfig `yaml:"http_server" json:"http_server"`
	// BizConfig 业务配置小节, 加载后替换为 SetBizConfig 传入的指针
	BizConfig any `yaml:"biz_config" json:"biz_config"`
}

type APPInfo struct {
	APPName string `yaml:"app_name" json:"app_name"`
	ENV     string `yaml:"env" json:"env"`
	// ComponentTimeout 单个组件 Start/Stop 的超时, 0 表示使用默认 30s
	ComponentTimeout time.Duration `yaml:"component_timeout" json:"component_timeout"`
}
