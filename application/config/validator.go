// config/validator.go
package config

import (
	"fmt"

	"github.com/grossamos/throwscape/application/consts"
)

// Validator 配置验证器
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAppConfig 校验组件间的组合约束, 组件自身字段由各自 factory 校验
func (v *Validator) ValidateAppConfig(config *AppConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := v.validateEnv(config.APPInfo.ENV); err != nil {
		return err
	}
	if hs := config.HTTPServer; hs != nil && hs.Enabled && hs.EnableMetrics {
		if config.Prometheus == nil || !config.Prometheus.Enabled {
			return fmt.Errorf("http_server.enable_metrics requires prometheus.enabled")
		}
	}
	if t := config.Telemetry; t != nil && t.Enabled && t.Exporter == "otlp" && (t.OTLP == nil || t.OTLP.Endpoint == "") {
		return fmt.Errorf("telemetry.otlp.endpoint is required for the otlp exporter")
	}
	return nil
}

func (v *Validator) validateConfigFilePath(path string, explicit bool) error {
	if path == "" {
		return fmt.Errorf("config file path cannot be empty")
	}
	if len(path) > 255 {
		return fmt.Errorf("config file path is too long")
	}
	if explicit && !fileExists(path) {
		return fmt.Errorf("config file does not exist: %s", path)
	}
	return nil
}

func (v *Validator) validateEnv(env string) error {
	switch env {
	case consts.ENV_DEVELOPMENT, consts.ENV_PRODUCTION, consts.ENV_TEST:
		return nil
	default:
		return fmt.Errorf("running environment is not valid: %s", env)
	}
}
