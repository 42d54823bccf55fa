package views

import (
	"lending/core"
	"lending/pkg/compound"

	"github.com/shopspring/decimal"
)

// Reserve reserve view, rates are yearly fractions
type Reserve struct {
	ID                      string             `json:"id"`
	MarketID                string             `json:"market_id"`
	ReserveType             core.ReserveType   `json:"reserve_type"`
	LastUpdate              core.LastUpdate    `json:"last_update"`
	MintID                  string             `json:"mint_id"`
	MintDecimals            uint8              `json:"mint_decimals"`
	CollateralMintID        string             `json:"collateral_mint_id"`
	AvailableAmount         uint64             `json:"available_amount"`
	BorrowedAmount          decimal.Decimal    `json:"borrowed_amount"`
	TotalSupply             decimal.Decimal    `json:"total_supply"`
	CollateralSupply        uint64             `json:"collateral_supply"`
	ExchangeRate            decimal.Decimal    `json:"exchange_rate"`
	UtilizationRate         decimal.Decimal    `json:"utilization_rate"`
	BorrowRate              decimal.Decimal    `json:"borrow_rate"`
	SupplyRate              decimal.Decimal    `json:"supply_rate"`
	MarketPrice             decimal.Decimal    `json:"market_price"`
	SmoothedMarketPrice     decimal.Decimal    `json:"smoothed_market_price"`
	AccumulatedProtocolFees decimal.Decimal    `json:"accumulated_protocol_fees"`
	AttributedBorrowValue   decimal.Decimal    `json:"attributed_borrow_value"`
	Config                  core.ReserveConfig `json:"config"`
}

// ReserveView derive rates of r
func ReserveView(r *core.Reserve) (Reserve, error) {
	total, err := compound.TotalSupply(&r.Liquidity)
	if err != nil {
		return Reserve{}, err
	}

	rate, err := compound.ExchangeRate(r)
	if err != nil {
		return Reserve{}, err
	}

	util, err := compound.UtilizationRate(&r.Liquidity)
	if err != nil {
		return Reserve{}, err
	}

	borrowRate, err := compound.CurrentBorrowRate(r)
	if err != nil {
		return Reserve{}, err
	}

	keep := decimal.New(100-int64(r.Config.ProtocolTakeRate), -2)
	supplyRate := borrowRate.Shopspring().Mul(util.Shopspring()).Mul(keep)

	return Reserve{
		ID:                      r.ID,
		MarketID:                r.MarketID,
		ReserveType:             r.Config.ReserveType,
		LastUpdate:              r.LastUpdate,
		MintID:                  r.Liquidity.MintID,
		MintDecimals:            r.Liquidity.MintDecimals,
		CollateralMintID:        r.Collateral.MintID,
		AvailableAmount:         r.Liquidity.AvailableAmount,
		BorrowedAmount:          r.Liquidity.BorrowedAmount.Shopspring(),
		TotalSupply:             total.Shopspring(),
		CollateralSupply:        r.Collateral.MintTotalSupply,
		ExchangeRate:            rate.Rate().Shopspring(),
		UtilizationRate:         util.Shopspring(),
		BorrowRate:              borrowRate.Shopspring(),
		SupplyRate:              supplyRate.Truncate(18),
		MarketPrice:             r.Liquidity.MarketPrice.Shopspring(),
		SmoothedMarketPrice:     r.Liquidity.SmoothedMarketPrice.Shopspring(),
		AccumulatedProtocolFees: r.Liquidity.AccumulatedProtocolFees.Shopspring(),
		AttributedBorrowValue:   r.AttributedBorrowValue.Shopspring(),
		Config:                  r.Config,
	}, nil
}
