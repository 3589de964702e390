// hooks/default.go
package hooks

import (
	"context"
	"log"
	"time"
)

// 全局钩子管理器，App 默认使用它，业务包可在 init() 中向其注册
var globalHookManager = NewManager()

var bootAt time.Time

func init() {
	mustRegister("record_boot_time", BeforeStart, func(ctx context.Context) error {
		bootAt = time.Now()
		log.Println("throwscape is starting...")
		return nil
	})
	mustRegister("log_start_duration", AfterStart, func(ctx context.Context) error {
		log.Printf("throwscape started in %s", time.Since(bootAt).Round(time.Millisecond))
		return nil
	})
	mustRegister("log_uptime", AfterShutdown, func(ctx context.Context) error {
		if !bootAt.IsZero() {
			log.Printf("throwscape stopped after %s", time.Since(bootAt).Round(time.Second))
		}
		return nil
	})
}

func mustRegister(name string, phase Phase, fn HookFunc) {
	if err := RegisterHook(name, phase, fn, 100); err != nil {
		log.Printf("Failed to register default hook %s: %v", name, err)
	}
}

// RegisterHook 向全局钩子管理器注册钩子
func RegisterHook(name string, phase Phase, function HookFunc, priority int) error {
	return globalHookManager.Register(&Hook{
		Name:     name,
		Phase:    phase,
		Function: function,
		Priority: priority,
	})
}

// GetGlobalHookManager 获取全局钩子管理器
func GetGlobalHookManager() *Manager {
	return globalHookManager
}
