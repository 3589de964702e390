// config/loader.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grossamos/throwscape/application/components/logging"
	"github.com/grossamos/throwscape/application/consts"
)

const defaultAppName = "throwscape"

// Loader 配置加载器
type Loader struct {
	env        string
	configPath string
	// explicit 为 false 时使用默认路径, 文件缺失不算错误
	explicit bool
	// bizConfig: 业务方传入的指针, 用于填充 biz_config 小节
	bizConfig any
}

// NewLoader 创建配置加载器
func NewLoader(env string, configPath string) *Loader {
	if env == "" {
		env = consts.ENV_DEVELOPMENT
	}
	explicit := configPath != ""
	if !explicit {
		configPath = consts.DEFAULT_CONFIG_PATH
	}
	return &Loader{env: env, configPath: configPath, explicit: explicit}
}

// SetBizConfig 注入业务方自定义配置结构指针 (例如: &MyBizConfig{}), 需要在 LoadConfig 之前调用。
func (l *Loader) SetBizConfig(b any) {
	if b == nil {
		return
	}
	if reflect.TypeOf(b).Kind() != reflect.Ptr {
		panic("SetBizConfig expects a pointer, e.g. &MyBizConfig{}")
	}
	l.bizConfig = b
}

// LoadConfig 先整体解析 AppConfig, 再把 biz_config 子树二次反序列化到业务指针。
// 默认路径下没有配置文件时返回只含 app_info 和 logging 的配置。
func (l *Loader) LoadConfig() (*AppConfig, error) {
	var cfg AppConfig
	ext := strings.ToLower(filepath.Ext(l.configPath))

	data, err := os.ReadFile(l.configPath)
	switch {
	case err == nil:
		if err := unmarshal(ext, data, &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist) && !l.explicit:
		// fall through with an empty config
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if l.bizConfig != nil {
		if cfg.BizConfig != nil {
			if err := decodeBizSection(ext, cfg.BizConfig, l.bizConfig); err != nil {
				return nil, fmt.Errorf("decode biz_config failed: %w", err)
			}
		}
		cfg.BizConfig = l.bizConfig
	}

	l.applyDefaults(&cfg)
	return &cfg, nil
}

func unmarshal(ext string, data []byte, out any) error {
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
	return nil
}

// decodeBizSection 将已解析到的 interface{} 子树再序列化 + 反序列化到业务指针, 保留指针里的默认值。
func decodeBizSection(ext string, raw any, target any) error {
	var (
		bytes []byte
		err   error
	)
	switch ext {
	case ".json":
		bytes, err = json.Marshal(raw)
	default:
		bytes, err = yaml.Marshal(raw)
	}
	if err != nil {
		return fmt.Errorf("re-marshal biz_config failed: %w", err)
	}
	if ext == ".json" {
		return json.Unmarshal(bytes, target)
	}
	return yaml.Unmarshal(bytes, target)
}

func (l *Loader) applyDefaults(cfg *AppConfig) {
	if cfg.APPInfo == nil {
		cfg.APPInfo = &APPInfo{}
	}
	if cfg.APPInfo.APPName == "" {
		cfg.APPInfo.APPName = defaultAppName
	}
	if cfg.APPInfo.ENV == "" {
		cfg.APPInfo.ENV = l.env
	}
	// 日志始终开启, 其余组件按配置启用
	if cfg.Logging == nil {
		cfg.Logging = &logging.LoggingConfig{Enabled: true}
	}
}

// fileExists 检查文件是否存在
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
