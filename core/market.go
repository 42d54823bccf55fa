package core

import (
	"context"
	"time"
)

// LendingMarket owner and market wide outflow limit of a set of reserves
type LendingMarket struct {
	ID            string `sql:"size:36;PRIMARY_KEY" json:"id"`
	Version       int64  `sql:"default:0" json:"version"`
	Owner         string `sql:"size:64" json:"owner"`
	QuoteCurrency string `sql:"size:32" json:"quote_currency"`
	// RateLimiter outflow in quote currency across every reserve of the market
	RateLimiter RateLimiter `sql:"type:text" json:"rate_limiter"`
	// WhitelistedLiquidator empty means anyone may liquidate
	WhitelistedLiquidator string `sql:"size:64" json:"whitelisted_liquidator,omitempty"`
	// RiskAuthority may tighten limits and disable outflow
	RiskAuthority string `sql:"size:64" json:"risk_authority"`
	// FeeAuthority may change reserve fees
	FeeAuthority string    `sql:"size:64" json:"fee_authority"`
	CreatedAt    time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Clone copy used to stage changes
func (m *LendingMarket) Clone() *LendingMarket {
	c := *m
	return &c
}

// IMarketStore lending market store interface
type IMarketStore interface {
	Create(ctx context.Context, market *LendingMarket) error
	Find(ctx context.Context, id string) (*LendingMarket, error)
	All(ctx context.Context) ([]*LendingMarket, error)
	// Update optimistic update, bumps Version
	Update(ctx context.Context, market *LendingMarket) error
}

// InitMarketParams init_market arguments
type InitMarketParams struct {
	Signer        string `json:"signer"`
	QuoteCurrency string `json:"quote_currency"`
	// FeeAuthority defaults to the signer
	FeeAuthority string `json:"fee_authority"`
}

// SetMarketOwnerAndConfigParams set_market_owner_and_config arguments
type SetMarketOwnerAndConfigParams struct {
	Signer                string            `json:"signer"`
	MarketID              string            `json:"market_id"`
	NewOwner              string            `json:"new_owner"`
	RateLimiter           RateLimiterConfig `json:"rate_limiter"`
	WhitelistedLiquidator string            `json:"whitelisted_liquidator"`
	RiskAuthority         string            `json:"risk_authority"`
}

// IMarketService lending market operations
type IMarketService interface {
	Init(ctx context.Context, params InitMarketParams) (*LendingMarket, error)
	SetOwnerAndConfig(ctx context.Context, params SetMarketOwnerAndConfigParams) (*LendingMarket, error)
}
