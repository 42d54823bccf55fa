package core

import "context"

// OraclePrice price reported by a feed, value = Price * 10^Expo
type OraclePrice struct {
	Price uint64 `json:"price"`
	Expo  int32  `json:"expo"`
}

// IPriceOracle price feed source
type IPriceOracle interface {
	GetPrice(ctx context.Context, feedID string) (*OraclePrice, error)
}
