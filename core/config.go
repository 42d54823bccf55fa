package core

import (
	"time"

	"github.com/fox-one/pkg/store/db"
)

// Config lending config
type Config struct {
	App         App         `json:"app"`
	DB          db.Config   `json:"db"`
	PriceOracle PriceOracle `json:"price_oracle"`
	Cache       Cache       `json:"cache"`
	Worker      Worker      `json:"worker"`
}

// App app config
type App struct {
	// Genesis unix seconds of slot 0
	Genesis int64 `json:"genesis"`
	// SlotDuration length of a slot, default 500ms
	SlotDuration time.Duration `json:"slot_duration"`
	Location     string        `json:"location"`
}

// PriceOracle price oracle config
type PriceOracle struct {
	EndPoint string `json:"end_point"`
	// Static fixed prices by feed id, used when no endpoint is configured
	Static map[string]OraclePrice `json:"static"`
}

// Cache reserve cache config
type Cache struct {
	Size int           `json:"size"`
	TTL  time.Duration `json:"ttl"`
}

// Worker refresher config
type Worker struct {
	// RefreshSpec cron spec of the reserve refresher
	RefreshSpec string `json:"refresh_spec"`
}
