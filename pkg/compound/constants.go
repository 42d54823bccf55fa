package compound

import "lending/pkg/number"

const (
	// SlotsPerYear slots in a year at 500ms per slot
	SlotsPerYear uint64 = 63_072_000
	// InitialCollateralRate receipt tokens minted per liquidity unit while a reserve is empty
	InitialCollateralRate uint64 = 1

	// LiquidationCloseFactor percent of the borrowed value repayable in one liquidation
	LiquidationCloseFactor uint8 = 20
	// LiquidationCloseValue debt at or below this market value is closed in full
	LiquidationCloseValue uint64 = 1
	// MaxLiquidatableValueAtOnce quote value repayable in one liquidation
	MaxLiquidatableValueAtOnce uint64 = 500_000

	// MaxBonusPct cap of liquidation bonus plus protocol liquidation fee, percent
	MaxBonusPct uint8 = 25
	// MaxProtocolLiquidationFeeDecaBps cap of the protocol liquidation fee
	MaxProtocolLiquidationFeeDecaBps uint8 = 50
	// MaxScaledPriceOffsetBps bound of the scaled price offset in either direction
	MaxScaledPriceOffsetBps int64 = 2000

	// GlobalAllowedBorrowValue cap of any obligation's allowed borrow value, quote units
	GlobalAllowedBorrowValue uint64 = 65_000_000
	// GlobalUnhealthyBorrowValue cap of any obligation's unhealthy borrow values, quote units
	GlobalUnhealthyBorrowValue uint64 = 70_000_000
)

func percent(p uint8) number.Decimal {
	return number.FromPercent(p)
}
