package compound

import (
	"math"

	"lending/core"
	"lending/pkg/number"
)

// Bonus liquidator incentive, both fields are fractions of the repaid value
type Bonus struct {
	TotalBonus             number.Decimal
	ProtocolLiquidationFee number.Decimal
}

// CalculateBonus bonus for seizing collateral of the reserve configured by
// cfg from o, interpolated between the liquidation bonus and the max bonus by
// how far o sits between its unhealthy and super unhealthy borrow values
func CalculateBonus(cfg *core.ReserveConfig, o *core.Obligation) (Bonus, error) {
	if o.BorrowedValue.LessThan(o.UnhealthyBorrowValue) {
		if o.Closeable {
			return Bonus{TotalBonus: number.Zero(), ProtocolLiquidationFee: number.Zero()}, nil
		}

		return Bonus{}, core.ErrObligationHealthy
	}

	maxBonus := percent(MaxBonusPct)
	liquidationBonus := percent(cfg.LiquidationBonus)
	protocolFee := number.FromDecaBps(cfg.ProtocolLiquidationFee)

	if o.UnhealthyBorrowValue.Equal(o.SuperUnhealthyBorrowValue) {
		total, err := liquidationBonus.Add(protocolFee)
		if err != nil {
			return Bonus{}, err
		}

		return Bonus{
			TotalBonus:             number.Min(total, maxBonus),
			ProtocolLiquidationFee: protocolFee,
		}, nil
	}

	excess, err := o.BorrowedValue.Sub(o.UnhealthyBorrowValue)
	if err != nil {
		return Bonus{}, err
	}

	span, err := o.SuperUnhealthyBorrowValue.Sub(o.UnhealthyBorrowValue)
	if err != nil {
		return Bonus{}, err
	}

	weight, err := excess.Div(span)
	if err != nil {
		return Bonus{}, err
	}
	weight = number.Min(weight, number.One())

	bonusRange, err := percent(cfg.MaxLiquidationBonus).Sub(liquidationBonus)
	if err != nil {
		return Bonus{}, err
	}

	extra, err := weight.Mul(bonusRange)
	if err != nil {
		return Bonus{}, err
	}

	total, err := liquidationBonus.Add(extra)
	if err != nil {
		return Bonus{}, err
	}

	if total, err = total.Add(protocolFee); err != nil {
		return Bonus{}, err
	}

	return Bonus{
		TotalBonus:             number.Min(total, maxBonus),
		ProtocolLiquidationFee: protocolFee,
	}, nil
}

// MaxLiquidationAmount debt of liquidity repayable in one liquidation: the
// close factor share of the borrowed value, at most the position's value and
// MaxLiquidatableValueAtOnce
func MaxLiquidationAmount(o *core.Obligation, liquidity *core.ObligationLiquidity) (number.Decimal, error) {
	closeValue, err := o.BorrowedValue.Mul(percent(LiquidationCloseFactor))
	if err != nil {
		return number.Zero(), err
	}

	value := number.Min(closeValue, liquidity.MarketValue)
	value = number.Min(value, number.FromInteger(MaxLiquidatableValueAtOnce))

	pct, err := value.Div(liquidity.MarketValue)
	if err != nil {
		return number.Zero(), err
	}

	return liquidity.BorrowedAmount.Mul(pct)
}

// LiquidationResult amounts of a liquidation
type LiquidationResult struct {
	// SettleAmount debt removed from the obligation
	SettleAmount number.Decimal
	// RepayAmount tokens paid by the liquidator
	RepayAmount uint64
	// WithdrawAmount collateral seized
	WithdrawAmount uint64
}

// CalculateLiquidation size a liquidation of liquidity against collateral.
// math.MaxUint64 liquidates as much as allowed.
func CalculateLiquidation(amount uint64, o *core.Obligation, liquidity *core.ObligationLiquidity, collateral *core.ObligationCollateral, bonus Bonus) (*LiquidationResult, error) {
	if bonus.TotalBonus.GreaterThan(percent(MaxBonusPct)) {
		return nil, core.ErrInvalidAmount
	}

	bonusRate, err := bonus.TotalBonus.Add(number.One())
	if err != nil {
		return nil, err
	}

	maxAmount := liquidity.BorrowedAmount
	if amount != math.MaxUint64 {
		maxAmount = number.Min(number.FromInteger(amount), liquidity.BorrowedAmount)
	}

	var (
		debt           number.Decimal
		liquidationVal number.Decimal
	)

	if liquidity.MarketValue.LessThanOrEqual(number.FromInteger(LiquidationCloseValue)) {
		// dust is closed in full whatever was requested
		debt = liquidity.BorrowedAmount
		if liquidationVal, err = liquidity.MarketValue.Mul(bonusRate); err != nil {
			return nil, err
		}
	} else {
		maxLiquidation, err := MaxLiquidationAmount(o, liquidity)
		if err != nil {
			return nil, err
		}

		debt = number.Min(maxLiquidation, maxAmount)

		pct, err := debt.Div(liquidity.BorrowedAmount)
		if err != nil {
			return nil, err
		}

		v, err := liquidity.MarketValue.Mul(pct)
		if err != nil {
			return nil, err
		}

		if liquidationVal, err = v.Mul(bonusRate); err != nil {
			return nil, err
		}
	}

	var (
		settle   number.Decimal
		withdraw uint64
	)

	switch liquidationVal.Cmp(collateral.MarketValue) {
	case 1:
		pct, err := collateral.MarketValue.Div(liquidationVal)
		if err != nil {
			return nil, err
		}

		if settle, err = debt.Mul(pct); err != nil {
			return nil, err
		}
		withdraw = collateral.DepositedAmount
	case 0:
		settle = debt
		withdraw = collateral.DepositedAmount
	default:
		pct, err := liquidationVal.Div(collateral.MarketValue)
		if err != nil {
			return nil, err
		}

		v, err := number.FromInteger(collateral.DepositedAmount).Mul(pct)
		if err != nil {
			return nil, err
		}

		settle = debt
		if withdraw, err = v.Floor(); err != nil {
			return nil, err
		}
	}

	repay, err := settle.Ceil()
	if err != nil {
		return nil, err
	}

	return &LiquidationResult{
		SettleAmount:   settle,
		RepayAmount:    repay,
		WithdrawAmount: withdraw,
	}, nil
}
