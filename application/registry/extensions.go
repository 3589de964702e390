package registry

import (
	"context"
	"sync"

	"github.com/grossamos/throwscape/application/components/logging"
	"github.com/grossamos/throwscape/application/core"
)

// target component name -> extra runtime deps, applied after all components are registered.
var (
	runtimeDepExtMap = map[string][]string{}
	runtimeDepExtMu  sync.Mutex
)

// ExtendRuntimeDependencies makes target start after deps (and stop before them). It only
// affects lifecycle ordering, not builder order; use RegisterWithDeps for that.
// Must be declared before BuildAndRegisterAll, typically from init().
func ExtendRuntimeDependencies(target string, deps ...string) {
	if target == "" || len(deps) == 0 {
		return
	}
	runtimeDepExtMu.Lock()
	defer runtimeDepExtMu.Unlock()
	runtimeDepExtMap[target] = append(runtimeDepExtMap[target], deps...)
}

func applyRuntimeDepExtensions(c *core.Container) {
	runtimeDepExtMu.Lock()
	defer runtimeDepExtMu.Unlock()
	ctx := context.Background()
	for target, extra := range runtimeDepExtMap {
		comp, err := c.Resolve(target)
		if err != nil {
			logging.Warnf(ctx, "runtime dep extension target %q not registered", target)
			continue
		}
		if extender, ok := comp.(interface{ AddDependencies(...string) }); ok {
			extender.AddDependencies(extra...)
			logging.Debugf(ctx, "applied runtime dependency extension %s -> %v", target, extra)
		} else {
			logging.Warnf(ctx, "component %q does not support AddDependencies", target)
		}
	}
	runtimeDepExtMap = map[string][]string{}
}
