package registry

import (
	"reflect"
	"testing"

	"github.com/grossamos/throwscape/application/components/logging"
	"github.com/grossamos/throwscape/application/config"
	"github.com/grossamos/throwscape/application/consts"
	"github.com/grossamos/throwscape/application/core"
)

func withBuilders(t *testing.T, list []*Builder) {
	t.Helper()
	saved := builders
	builders = list
	t.Cleanup(func() { builders = saved })
}

func TestTopoSortBuilders(t *testing.T) {
	list := []*Builder{
		{Name: "static_server", Deps: []string{"worker_pool", "logging"}},
		{Name: "worker_pool", Deps: []string{"prometheus", "missing"}},
		{Name: "prometheus"},
		{Name: "logging"},
	}
	ordered, err := topoSortBuilders(list)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	var names []string
	for _, b := range ordered {
		names = append(names, b.Name)
	}
	want := []string{"logging", "prometheus", "worker_pool", "static_server"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("order = %v, want %v", names, want)
	}
}

func TestTopoSortCycle(t *testing.T) {
	_, err := topoSortBuilders([]*Builder{{Name: "a", Deps: []string{"b"}}, {Name: "b", Deps: []string{"a"}}})
	if err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestBuildAndRegisterAll(t *testing.T) {
	withBuilders(t, nil)
	Register(consts.COMPONENT_LOGGING, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return true, logging.NewLoggerComponent(cfg.Logging), nil
	})
	var sawLogging bool
	RegisterWithDeps("consumer", []string{consts.COMPONENT_LOGGING}, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		sawLogging = c.Has(consts.COMPONENT_LOGGING)
		return true, core.NewBaseComponent("consumer"), nil
	})
	Register("disabled", func(*config.AppConfig, *core.Container) (bool, core.Component, error) {
		return false, nil, nil
	})
	ExtendRuntimeDependencies("consumer", "late")

	c := core.NewContainer()
	cfg := &config.AppConfig{Logging: &logging.LoggingConfig{Enabled: true}}
	if err := BuildAndRegisterAll(cfg, c); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !sawLogging {
		t.Fatal("consumer built before its dependency")
	}
	if c.Has("disabled") {
		t.Fatal("disabled component registered")
	}
	comp, _ := c.Resolve("consumer")
	if deps := comp.Dependencies(); len(deps) != 1 || deps[0] != "late" {
		t.Fatalf("runtime deps = %v", deps)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	withBuilders(t, nil)
	fn := func(*config.AppConfig, *core.Container) (bool, core.Component, error) { return false, nil, nil }
	Register("x", fn)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Register("x", fn)
}
