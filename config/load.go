package config

import (
	"lending/core"

	"github.com/fox-one/pkg/config"
)

// Load load config file, LENDING_ prefixed environment variables override it
func Load(cfgFile string, cfg *core.Config) error {
	config.AutomaticLoadEnv("LENDING")
	if err := config.LoadYaml(cfgFile, cfg); err != nil {
		return err
	}

	defaultConfig(cfg)
	return nil
}
