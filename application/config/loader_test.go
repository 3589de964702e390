package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type bizConfig struct {
	Source  string        `yaml:"source" json:"source"`
	Workers int           `yaml:"workers" json:"workers"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadYAMLWithBizSection(t *testing.T) {
	path := writeFile(t, "app.yaml", `
app_info:
  app_name: files
  env: production
logging:
  enabled: true
  level: DEBUG
prometheus:
  enabled: true
  namespace: throwscape
http_server:
  enabled: true
  address: 127.0.0.1:9100
  enable_metrics: true
biz_config:
  source: /srv/www
  timeout: 5s
`)
	biz := &bizConfig{Workers: 4}
	cm := NewConfigManagerWithBiz("", path, biz)
	if err := cm.LoadConfig(); err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := cm.GetConfig()
	if cfg.APPInfo.APPName != "files" || cfg.APPInfo.ENV != "production" {
		t.Fatalf("app info = %+v", cfg.APPInfo)
	}
	if cfg.Logging.Level != "DEBUG" || cfg.Prometheus.Namespace != "throwscape" || cfg.HTTPServer.Address != "127.0.0.1:9100" {
		t.Fatalf("component sections not decoded: %+v", cfg)
	}
	if cm.BizConfig() != biz {
		t.Fatal("biz config pointer replaced")
	}
	if biz.Source != "/srv/www" || biz.Timeout != 5*time.Second || biz.Workers != 4 {
		t.Fatalf("biz = %+v", biz)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "app.json", `{"app_info":{"app_name":"j"},"biz_config":{"workers":9}}`)
	biz := &bizConfig{Source: "./"}
	cm := NewConfigManagerWithBiz("test", path, biz)
	if err := cm.LoadConfig(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if biz.Workers != 9 || biz.Source != "./" {
		t.Fatalf("biz = %+v", biz)
	}
	if cm.GetConfig().APPInfo.ENV != "test" {
		t.Fatalf("env = %q", cm.GetConfig().APPInfo.ENV)
	}
}

func TestExplicitMissingFile(t *testing.T) {
	cm := NewConfigManager("", filepath.Join(t.TempDir(), "nope.yaml"))
	if err := cm.LoadConfig(); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestDefaultPathMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	biz := &bizConfig{Workers: 2}
	cm := NewConfigManagerWithBiz("", "", biz)
	if err := cm.LoadConfig(); err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := cm.GetConfig()
	if cfg.APPInfo.APPName != defaultAppName || !cfg.Logging.Enabled || cfg.BizConfig != biz {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestValidatorRules(t *testing.T) {
	cases := map[string]string{
		"bad env":             "app_info:\n  env: staging\n",
		"metrics without reg": "http_server:\n  enabled: true\n  enable_metrics: true\n",
		"otlp no endpoint":    "telemetry:\n  enabled: true\n  exporter: otlp\n",
		"unknown extension":   "",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			file := "app.yaml"
			if name == "unknown extension" {
				file = "app.toml"
			}
			cm := NewConfigManager("", writeFile(t, file, content))
			if err := cm.LoadConfig(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSetBizConfigRequiresPointer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewLoader("", "").SetBizConfig(bizConfig{})
}
