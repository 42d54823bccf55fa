package core

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"lending/pkg/number"
)

// ReserveType risk tier of a reserve
type ReserveType int

const (
	// ReserveTypeRegular usable as collateral and borrowable with anything
	ReserveTypeRegular ReserveType = iota
	// ReserveTypeIsolated not usable as collateral, borrowed alone
	ReserveTypeIsolated
)

func (t ReserveType) String() string {
	switch t {
	case ReserveTypeRegular:
		return "Regular"
	case ReserveTypeIsolated:
		return "Isolated"
	default:
		return fmt.Sprintf("ReserveType(%d)", int(t))
	}
}

// ParseReserveType "Regular" or "Isolated", case insensitive
func ParseReserveType(s string) (ReserveType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regular":
		return ReserveTypeRegular, nil
	case "isolated":
		return ReserveTypeIsolated, nil
	default:
		return ReserveTypeRegular, fmt.Errorf("unknown reserve type %q", s)
	}
}

func (t ReserveType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ReserveType) UnmarshalText(text []byte) error {
	v, err := ParseReserveType(string(text))
	if err != nil {
		return err
	}

	*t = v
	return nil
}

// ReserveFees fee rates of a reserve
type ReserveFees struct {
	// BorrowFeeWad fee on borrowed liquidity, 10^18 = 100%
	BorrowFeeWad uint64 `json:"borrow_fee_wad" yaml:"borrow_fee_wad"`
	// FlashLoanFeeWad fee on flash loans, 10^18 = 100%
	FlashLoanFeeWad uint64 `json:"flash_loan_fee_wad" yaml:"flash_loan_fee_wad"`
	// HostFeePercentage share of a fee paid to the host, 0-100
	HostFeePercentage uint8 `json:"host_fee_percentage" yaml:"host_fee_percentage"`
}

// ReserveConfig risk parameters of a reserve, percentages are 0-100
type ReserveConfig struct {
	OptimalUtilizationRate  uint8       `json:"optimal_utilization_rate" yaml:"optimal_utilization_rate"`
	MaxUtilizationRate      uint8       `json:"max_utilization_rate" yaml:"max_utilization_rate"`
	LoanToValueRatio        uint8       `json:"loan_to_value_ratio" yaml:"loan_to_value_ratio"`
	LiquidationBonus        uint8       `json:"liquidation_bonus" yaml:"liquidation_bonus"`
	MaxLiquidationBonus     uint8       `json:"max_liquidation_bonus" yaml:"max_liquidation_bonus"`
	LiquidationThreshold    uint8       `json:"liquidation_threshold" yaml:"liquidation_threshold"`
	MaxLiquidationThreshold uint8       `json:"max_liquidation_threshold" yaml:"max_liquidation_threshold"`
	MinBorrowRate           uint8       `json:"min_borrow_rate" yaml:"min_borrow_rate"`
	OptimalBorrowRate       uint8       `json:"optimal_borrow_rate" yaml:"optimal_borrow_rate"`
	MaxBorrowRate           uint8       `json:"max_borrow_rate" yaml:"max_borrow_rate"`
	SuperMaxBorrowRate      uint64      `json:"super_max_borrow_rate" yaml:"super_max_borrow_rate"`
	Fees                    ReserveFees `json:"fees" yaml:"fees"`
	DepositLimit            uint64      `json:"deposit_limit" yaml:"deposit_limit"`
	BorrowLimit             uint64      `json:"borrow_limit" yaml:"borrow_limit"`
	FeeReceiver             string      `json:"fee_receiver" yaml:"fee_receiver"`
	// ProtocolLiquidationFee share of seized collateral kept by the protocol, deca bps
	ProtocolLiquidationFee uint8 `json:"protocol_liquidation_fee" yaml:"protocol_liquidation_fee"`
	// ProtocolTakeRate share of accrued interest kept by the protocol
	ProtocolTakeRate     uint8       `json:"protocol_take_rate" yaml:"protocol_take_rate"`
	AddedBorrowWeightBps uint64      `json:"added_borrow_weight_bps" yaml:"added_borrow_weight_bps"`
	ReserveType          ReserveType `json:"reserve_type" yaml:"reserve_type"`
	// ScaledPriceOffsetBps adjustment applied to the primary oracle price
	ScaledPriceOffsetBps int64  `json:"scaled_price_offset_bps" yaml:"scaled_price_offset_bps"`
	ExtraOracleFeedID    string `json:"extra_oracle_feed_id,omitempty" yaml:"extra_oracle_feed_id"`
	// AttributedBorrowLimitOpen no new exposure above this attributed value, quote units
	AttributedBorrowLimitOpen uint64 `json:"attributed_borrow_limit_open" yaml:"attributed_borrow_limit_open"`
	// AttributedBorrowLimitClose positions may be closed above this attributed value, quote units
	AttributedBorrowLimitClose uint64 `json:"attributed_borrow_limit_close" yaml:"attributed_borrow_limit_close"`
}

// SameFees fee related fields are equal
func (c ReserveConfig) SameFees(o ReserveConfig) bool {
	return c.Fees == o.Fees &&
		c.ProtocolLiquidationFee == o.ProtocolLiquidationFee &&
		c.ProtocolTakeRate == o.ProtocolTakeRate &&
		c.FeeReceiver == o.FeeReceiver
}

// WithFees copy of c carrying the fee related fields of o
func (c ReserveConfig) WithFees(o ReserveConfig) ReserveConfig {
	c.Fees = o.Fees
	c.ProtocolLiquidationFee = o.ProtocolLiquidationFee
	c.ProtocolTakeRate = o.ProtocolTakeRate
	c.FeeReceiver = o.FeeReceiver
	return c
}

func (c ReserveConfig) Value() (driver.Value, error) {
	return jsonValue(c)
}

func (c *ReserveConfig) Scan(src interface{}) error {
	return jsonScan(src, c)
}

// ReserveLiquidity underlying asset pool
type ReserveLiquidity struct {
	MintID       string `json:"mint_id"`
	MintDecimals uint8  `json:"mint_decimals"`
	// SupplyID ledger account holding available liquidity
	SupplyID                string         `json:"supply_id"`
	OracleFeedID            string         `json:"oracle_feed_id"`
	AvailableAmount         uint64         `json:"available_amount"`
	BorrowedAmount          number.Decimal `json:"borrowed_amount"`
	CumulativeBorrowRate    number.Decimal `json:"cumulative_borrow_rate"`
	AccumulatedProtocolFees number.Decimal `json:"accumulated_protocol_fees"`
	// prices are quote currency per whole token
	MarketPrice         number.Decimal  `json:"market_price"`
	SmoothedMarketPrice number.Decimal  `json:"smoothed_market_price"`
	ExtraMarketPrice    *number.Decimal `json:"extra_market_price,omitempty"`
}

func (l ReserveLiquidity) Value() (driver.Value, error) {
	return jsonValue(l)
}

func (l *ReserveLiquidity) Scan(src interface{}) error {
	return jsonScan(src, l)
}

// ReserveCollateral receipt token of a reserve
type ReserveCollateral struct {
	MintID string `json:"mint_id"`
	// SupplyID ledger account holding receipt tokens deposited into obligations
	SupplyID        string `json:"supply_id"`
	MintTotalSupply uint64 `json:"mint_total_supply"`
}

func (c ReserveCollateral) Value() (driver.Value, error) {
	return jsonValue(c)
}

func (c *ReserveCollateral) Scan(src interface{}) error {
	return jsonScan(src, c)
}

// Reserve single asset pool of a lending market
type Reserve struct {
	ID                    string            `sql:"size:36;PRIMARY_KEY" json:"id"`
	Version               int64             `sql:"default:0" json:"version"`
	MarketID              string            `sql:"size:36;index:idx_reserves_market" json:"market_id"`
	LastUpdate            LastUpdate        `sql:"type:varchar(64)" json:"last_update"`
	Liquidity             ReserveLiquidity  `sql:"type:text" json:"liquidity"`
	Collateral            ReserveCollateral `sql:"type:text" json:"collateral"`
	Config                ReserveConfig     `sql:"type:text" json:"config"`
	RateLimiter           RateLimiter       `sql:"type:text" json:"rate_limiter"`
	AttributedBorrowValue number.Decimal    `sql:"type:varchar(96)" json:"attributed_borrow_value"`
	CreatedAt             time.Time         `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt             time.Time         `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Clone deep copy, used to stage changes
func (r *Reserve) Clone() *Reserve {
	c := *r
	if p := r.Liquidity.ExtraMarketPrice; p != nil {
		v := *p
		c.Liquidity.ExtraMarketPrice = &v
	}
	return &c
}

// IReserveStore reserve store interface
type IReserveStore interface {
	Create(ctx context.Context, reserve *Reserve) error
	Find(ctx context.Context, id string) (*Reserve, error)
	ListByMarket(ctx context.Context, marketID string) ([]*Reserve, error)
	All(ctx context.Context) ([]*Reserve, error)
	// Update optimistic update, bumps Version
	Update(ctx context.Context, reserve *Reserve) error
}

// InitReserveParams init_reserve arguments
type InitReserveParams struct {
	Signer           string            `json:"signer"`
	MarketID         string            `json:"market_id"`
	LiquidityMintID  string            `json:"liquidity_mint_id"`
	MintDecimals     uint8             `json:"mint_decimals"`
	OracleFeedID     string            `json:"oracle_feed_id"`
	Config           ReserveConfig     `json:"config"`
	RateLimiter      RateLimiterConfig `json:"rate_limiter"`
	Source           string            `json:"source"`
	Destination      string            `json:"destination"`
	InitialLiquidity uint64            `json:"initial_liquidity"`
}

// UpdateReserveConfigParams update_reserve_config arguments
type UpdateReserveConfigParams struct {
	Signer      string            `json:"signer"`
	MarketID    string            `json:"market_id"`
	ReserveID   string            `json:"reserve_id"`
	Config      ReserveConfig     `json:"config"`
	RateLimiter RateLimiterConfig `json:"rate_limiter"`
}

// ReserveLiquidityParams deposit_reserve_liquidity and redeem_reserve_collateral arguments
type ReserveLiquidityParams struct {
	Signer    string `json:"signer"`
	ReserveID string `json:"reserve_id"`
	// Source ledger account paying the amount
	Source string `json:"source"`
	// Destination ledger account receiving the output
	Destination string `json:"destination"`
	Amount      uint64 `json:"amount"`
}

// IReserveService reserve operations
type IReserveService interface {
	Init(ctx context.Context, params InitReserveParams) (*Reserve, error)
	UpdateConfig(ctx context.Context, params UpdateReserveConfigParams) (*Reserve, error)
	Refresh(ctx context.Context, reserveID string) (*Reserve, error)
	// DepositLiquidity returns the minted collateral amount
	DepositLiquidity(ctx context.Context, params ReserveLiquidityParams) (uint64, error)
	// RedeemCollateral returns the redeemed liquidity amount
	RedeemCollateral(ctx context.Context, params ReserveLiquidityParams) (uint64, error)
	// RedeemFees moves accumulated protocol fees to the fee receiver, returns the amount
	RedeemFees(ctx context.Context, reserveID string) (uint64, error)
}
