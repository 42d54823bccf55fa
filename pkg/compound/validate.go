package compound

import (
	"fmt"

	"lending/core"
	"lending/pkg/number"
)

func invalidConfig(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", core.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// ValidateReserveConfig check the bounds and orderings of cfg
func ValidateReserveConfig(cfg *core.ReserveConfig) error {
	if cfg.OptimalUtilizationRate > 100 {
		return invalidConfig("optimal utilization rate must be in range [0, 100]")
	}

	if cfg.MaxUtilizationRate < cfg.OptimalUtilizationRate || cfg.MaxUtilizationRate > 100 {
		return invalidConfig("max utilization rate must be in range [optimal utilization rate, 100]")
	}

	if cfg.LoanToValueRatio >= 100 {
		return invalidConfig("loan to value ratio must be in range [0, 100)")
	}

	if cfg.LiquidationBonus > 100 {
		return invalidConfig("liquidation bonus must be in range [0, 100]")
	}

	if cfg.MaxLiquidationBonus < cfg.LiquidationBonus || cfg.MaxLiquidationBonus > 100 {
		return invalidConfig("max liquidation bonus must be in range [liquidation bonus, 100]")
	}

	if cfg.LiquidationThreshold < cfg.LoanToValueRatio || cfg.LiquidationThreshold > 100 {
		return invalidConfig("liquidation threshold must be in range [loan to value ratio, 100]")
	}

	if cfg.MaxLiquidationThreshold < cfg.LiquidationThreshold || cfg.MaxLiquidationThreshold > 100 {
		return invalidConfig("max liquidation threshold must be in range [liquidation threshold, 100]")
	}

	if cfg.OptimalBorrowRate < cfg.MinBorrowRate {
		return invalidConfig("optimal borrow rate must be >= min borrow rate")
	}

	if cfg.OptimalBorrowRate > cfg.MaxBorrowRate {
		return invalidConfig("optimal borrow rate must be <= max borrow rate")
	}

	if cfg.SuperMaxBorrowRate < uint64(cfg.MaxBorrowRate) {
		return invalidConfig("super max borrow rate must be >= max borrow rate")
	}

	if cfg.Fees.BorrowFeeWad >= number.WAD {
		return invalidConfig("borrow fee must be in range [0, %d)", number.WAD)
	}

	if cfg.Fees.HostFeePercentage > 100 {
		return invalidConfig("host fee percentage must be in range [0, 100]")
	}

	if cfg.ProtocolLiquidationFee > MaxProtocolLiquidationFeeDecaBps {
		return invalidConfig("protocol liquidation fee must be in range [0, %d] deca bps", MaxProtocolLiquidationFeeDecaBps)
	}

	if uint64(cfg.MaxLiquidationBonus)*100+uint64(cfg.ProtocolLiquidationFee)*10 > uint64(MaxBonusPct)*100 {
		return invalidConfig("max liquidation bonus plus protocol liquidation fee must be in range [0, %d]%%", MaxBonusPct)
	}

	if cfg.ProtocolTakeRate > 100 {
		return invalidConfig("protocol take rate must be in range [0, 100]")
	}

	if cfg.ReserveType == core.ReserveTypeIsolated && (cfg.LoanToValueRatio != 0 || cfg.LiquidationThreshold != 0) {
		return invalidConfig("loan to value ratio and liquidation threshold must be 0 for isolated reserves")
	}

	if cfg.ScaledPriceOffsetBps < -MaxScaledPriceOffsetBps || cfg.ScaledPriceOffsetBps > MaxScaledPriceOffsetBps {
		return invalidConfig("scaled price offset must be in range [%d, %d]", -MaxScaledPriceOffsetBps, MaxScaledPriceOffsetBps)
	}

	if cfg.AttributedBorrowLimitOpen > cfg.AttributedBorrowLimitClose {
		return invalidConfig("open attributed borrow limit must be <= close attributed borrow limit")
	}

	return nil
}
