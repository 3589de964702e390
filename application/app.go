package application

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/grossamos/throwscape/application/config"
	"github.com/grossamos/throwscape/application/core"
	"github.com/grossamos/throwscape/application/hooks"
	"github.com/grossamos/throwscape/application/registry"
)

// ConfigHook runs after the config file is loaded and before any component is built.
type ConfigHook func(cfg *config.AppConfig) error

type App struct {
	container        *core.Container
	lifecycleManager *core.LifecycleManager
	configManager    *config.ConfigManager
	configHooks      []ConfigHook

	bootOnce sync.Once
	bootErr  error

	shutdownTimeout time.Duration
}

// NewApp creates an app reading configPath. An empty configPath means the default path,
// which may be absent.
func NewApp(env string, configPath string) *App {
	if configPath != "" {
		if p, err := filepath.Abs(configPath); err == nil {
			configPath = p
		}
	}
	container := core.NewContainer()
	// 使用全局钩子管理器，hooks/default.go 中的默认钩子才会生效
	lm := core.NewLifecycleManagerWithManager(container, hooks.GetGlobalHookManager())
	return &App{
		configManager:    config.NewConfigManager(env, configPath),
		container:        container,
		lifecycleManager: lm,
		shutdownTimeout:  30 * time.Second,
	}
}

// SetBizConfig 设置业务配置指针，必须在 Run 之前调用
func (app *App) SetBizConfig(b any) { app.configManager.SetBizConfig(b) }

// OnConfigLoaded registers fn to adjust the loaded config, e.g. command line overrides.
func (app *App) OnConfigLoaded(fn ConfigHook) {
	if fn != nil {
		app.configHooks = append(app.configHooks, fn)
	}
}

// SetShutdownTimeout bounds StopAll when the run context ends.
func (app *App) SetShutdownTimeout(d time.Duration) { app.shutdownTimeout = d }

// Boot loads config and builds components. Run calls it; calling it earlier is allowed.
func (app *App) Boot() error {
	app.bootOnce.Do(func() {
		if err := app.configManager.LoadConfig(); err != nil {
			app.bootErr = fmt.Errorf("load config failed: %w", err)
			return
		}
		cfg := app.configManager.GetConfig()
		if cfg.APPInfo != nil && cfg.APPInfo.ComponentTimeout > 0 {
			app.lifecycleManager.SetTimeout(cfg.APPInfo.ComponentTimeout)
		}
		for _, fn := range app.configHooks {
			if err := fn(cfg); err != nil {
				app.bootErr = fmt.Errorf("config hook failed: %w", err)
				return
			}
		}
		if err := registry.BuildAndRegisterAll(cfg, app.container); err != nil {
			app.bootErr = fmt.Errorf("register components failed: %w", err)
			return
		}
	})
	return app.bootErr
}

func (app *App) GetComponent(name string) (core.Component, error) {
	return app.container.Resolve(name)
}

func (app *App) Container() *core.Container { return app.container }

func (app *App) GetConfig() *config.AppConfig {
	if app.configManager == nil {
		return nil
	}
	return app.configManager.GetConfig()
}

func (app *App) AddHook(name string, phase hooks.Phase, fn hooks.HookFunc, priority int) error {
	return app.lifecycleManager.AddHook(name, phase, fn, priority)
}

// Run 监听 SIGINT/SIGTERM，收到信号后优雅停止
func (app *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.RunWithContext(ctx)
}

// RunWithContext starts components and blocks until ctx is done, then stops them.
func (app *App) RunWithContext(ctx context.Context) error {
	if err := app.Boot(); err != nil {
		return err
	}
	if err := app.lifecycleManager.StartAll(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	app.Shutdown(context.Background())
	return nil
}

func (app *App) Shutdown(ctx context.Context) {
	stopCtx, cancel := context.WithTimeout(ctx, app.shutdownTimeout)
	defer cancel()
	app.lifecycleManager.StopAll(stopCtx)
}
