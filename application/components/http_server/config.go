package http_server

import "time"

// HTTPServerConfig configures the admin endpoint server (health, metrics, status).
type HTTPServerConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	Address         string        `yaml:"address" json:"address"` // e.g. "127.0.0.1:9100"
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	GracefulTimeout time.Duration `yaml:"graceful_timeout" json:"graceful_timeout"`
	EnableHealth    bool          `yaml:"enable_health" json:"enable_health"`
	EnableMetrics   bool          `yaml:"enable_metrics" json:"enable_metrics"` // mounts the prometheus handler when that component is enabled
	AccessLog       bool          `yaml:"access_log" json:"access_log"`
	// ServiceName injected from APPInfo.APPName
	ServiceName string `yaml:"-" json:"-"`
}
