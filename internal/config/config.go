package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

var (
	ErrInvalidPort     = errors.New("invalid port number")
	ErrMissingSource   = errors.New("missing source path")
	ErrSourceNotDir    = errors.New("source path is not a directory")
	ErrInvalidIndex    = errors.New("invalid index file name")
	ErrNegativeTimeout = errors.New("timeout must be >= 0")
)

// Config 静态文件服务的业务配置。Finalize 之后视为只读，通过指针在所有 worker 间共享。
type Config struct {
	Host             string        `yaml:"host" json:"host"`
	Port             int           `yaml:"port" json:"port"`
	Source           string        `yaml:"source" json:"source"`                 // serve root
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`               // per-connection read timeout
	IndexFile        string        `yaml:"index_file" json:"index_file"`         // appended to directory requests
	NotFoundFile     string        `yaml:"not_found_file" json:"not_found_file"` // optional 404 body
	Debug            bool          `yaml:"debug" json:"debug"`
	Workers          int           `yaml:"workers" json:"workers"`
	SuperviseWorkers bool          `yaml:"supervise_workers" json:"supervise_workers"`

	finalized bool
}

const (
	DefaultHost      = "0.0.0.0"
	DefaultPort      = 8080
	DefaultSource    = "./"
	DefaultTimeout   = 30 * time.Second
	DefaultIndexFile = "index.html"
	DefaultWorkers   = 4
)

var (
	bizOnce sync.Once
	bizCfg  *Config
)

// GetBizConfig 返回进程级业务配置指针，供 config loader 填充 biz_config 小节。
func GetBizConfig() *Config {
	bizOnce.Do(func() {
		bizCfg = Default()
	})
	return bizCfg
}

func Default() *Config {
	return &Config{
		Host:      DefaultHost,
		Port:      DefaultPort,
		Source:    DefaultSource,
		Timeout:   DefaultTimeout,
		IndexFile: DefaultIndexFile,
		Workers:   DefaultWorkers,
	}
}

// UnmarshalJSON 让 JSON 配置中的 timeout 与 YAML 一致, 既接受 "30s" 也接受纳秒整数
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		Timeout json.RawMessage `json:"timeout"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	raw := bytes.TrimSpace(aux.Timeout)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
		return nil
	}
	var ns int64
	if err := json.Unmarshal(raw, &ns); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	c.Timeout = time.Duration(ns)
	return nil
}

// Address returns the listen address of the static server.
func (c *Config) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// ServeRoot returns the canonical serve root. Only meaningful after Finalize.
func (c *Config) ServeRoot() string { return c.Source }

func (c *Config) Finalized() bool { return c.finalized }

// Validate checks field ranges without touching the filesystem.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.Source == "" {
		return ErrMissingSource
	}
	if c.Timeout < 0 {
		return ErrNegativeTimeout
	}
	if c.IndexFile == "" || filepath.Base(c.IndexFile) != c.IndexFile {
		return fmt.Errorf("%w: %q", ErrInvalidIndex, c.IndexFile)
	}
	return nil
}

// Finalize validates the config and canonicalizes the serve root (absolute, symlink free).
// A relative not_found_file is resolved against the serve root.
func (c *Config) Finalize() error {
	if c.finalized {
		return nil
	}
	if err := c.Validate(); err != nil {
		return err
	}

	root, err := canonicalize(c.Source)
	if err != nil {
		return fmt.Errorf("canonicalize source %q: %w", c.Source, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat source %q: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrSourceNotDir, root)
	}
	c.Source = root

	if c.NotFoundFile != "" && !filepath.IsAbs(c.NotFoundFile) {
		c.NotFoundFile = filepath.Join(root, c.NotFoundFile)
	}

	c.finalized = true
	return nil
}

func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
