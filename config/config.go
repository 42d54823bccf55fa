package config

import (
	"time"

	"lending/core"
)

const (
	defaultSlotDuration = 500 * time.Millisecond
	defaultCacheSize    = 256
	defaultCacheTTL     = 5 * time.Second
	defaultRefreshSpec  = "@every 10s"
)

func defaultConfig(cfg *core.Config) {
	if cfg.App.SlotDuration <= 0 {
		cfg.App.SlotDuration = defaultSlotDuration
	}

	if cfg.App.Location == "" {
		cfg.App.Location = "UTC"
	}

	if cfg.Cache.Size <= 0 {
		cfg.Cache.Size = defaultCacheSize
	}

	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = defaultCacheTTL
	}

	if cfg.Worker.RefreshSpec == "" {
		cfg.Worker.RefreshSpec = defaultRefreshSpec
	}

	if cfg.PriceOracle.Static == nil {
		cfg.PriceOracle.Static = map[string]core.OraclePrice{}
	}
}
