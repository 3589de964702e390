package main

import (
	"flag"
	"log"
	"os"

	"github.com/grossamos/throwscape/application"
	"github.com/grossamos/throwscape/application/config"
	"github.com/grossamos/throwscape/application/consts"
	bizConfig "github.com/grossamos/throwscape/internal/config"

	_ "github.com/grossamos/throwscape/internal/api"
	_ "github.com/grossamos/throwscape/internal/registry_ext"
)

func main() {
	configPath := flag.String("config", "", "config file path (default "+consts.DEFAULT_CONFIG_PATH+")")
	env := flag.String("env", envOr("THROWSCAPE_ENV", consts.ENV_DEVELOPMENT), "running environment")
	overrides := bizConfig.BindFlags(flag.CommandLine)
	flag.Parse()

	biz := bizConfig.GetBizConfig()
	app := application.NewApp(*env, *configPath)
	app.SetBizConfig(biz)
	app.OnConfigLoaded(func(cfg *config.AppConfig) error {
		overrides.Apply(biz)
		if biz.Debug && cfg.Logging != nil && cfg.Logging.Level == "" {
			cfg.Logging.Level = "DEBUG"
		}
		return biz.Finalize()
	})

	if err := app.Run(); err != nil {
		log.Fatalf("throwscape: %v", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
