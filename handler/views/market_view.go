package views

import (
	"lending/core"
)

// Market lending market view
type Market struct {
	*core.LendingMarket
	Reserves int `json:"reserves"`
}

// MarketView market with its reserve count
func MarketView(m *core.LendingMarket, reserves []*core.Reserve) Market {
	return Market{
		LendingMarket: m,
		Reserves:      len(reserves),
	}
}
