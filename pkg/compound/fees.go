package compound

import (
	"lending/core"
	"lending/pkg/number"
)

// FeeCalculation how a fee rate is applied to an amount
type FeeCalculation int

const (
	// FeeExclusive fee is added on top of the amount
	FeeExclusive FeeCalculation = iota
	// FeeInclusive fee is taken out of the amount
	FeeInclusive
)

// calculateFees origination fee and host share of amount at rate
func calculateFees(amount, rate number.Decimal, hostFeePercentage uint8, calc FeeCalculation) (uint64, uint64, error) {
	if rate.IsZero() || amount.IsZero() {
		return 0, 0, nil
	}

	needsHostFee := hostFeePercentage > 0
	minimumFee := number.FromInteger(1)
	if needsHostFee {
		// one token each for the protocol and the host
		minimumFee = number.FromInteger(2)
	}

	var (
		fee number.Decimal
		err error
	)

	switch calc {
	case FeeInclusive:
		var denominator number.Decimal
		if denominator, err = rate.Add(number.One()); err != nil {
			return 0, 0, err
		}

		var gross number.Decimal
		if gross, err = amount.Mul(rate); err != nil {
			return 0, 0, err
		}

		fee, err = gross.Div(denominator)
	default:
		fee, err = amount.Mul(rate)
	}
	if err != nil {
		return 0, 0, err
	}

	fee = number.Max(fee, minimumFee)
	if fee.GreaterThanOrEqual(amount) {
		return 0, 0, core.ErrBorrowTooSmall
	}

	borrowFee, err := fee.Round()
	if err != nil {
		return 0, 0, err
	}

	var hostFee uint64
	if needsHostFee {
		v, err := fee.Mul(percent(hostFeePercentage))
		if err != nil {
			return 0, 0, err
		}

		if hostFee, err = v.Round(); err != nil {
			return 0, 0, err
		}

		if hostFee == 0 {
			hostFee = 1
		}
	}

	return borrowFee, hostFee, nil
}

// CalculateBorrowFees origination and host fee of a borrow
func CalculateBorrowFees(fees core.ReserveFees, amount number.Decimal, calc FeeCalculation) (uint64, uint64, error) {
	return calculateFees(amount, number.FromWad(fees.BorrowFeeWad), fees.HostFeePercentage, calc)
}

// CalculateFlashLoanFees protocol and host fee of a flash loan
func CalculateFlashLoanFees(fees core.ReserveFees, amount number.Decimal) (uint64, uint64, error) {
	origination, host, err := calculateFees(amount, number.FromWad(fees.FlashLoanFeeWad), fees.HostFeePercentage, FeeExclusive)
	if err != nil {
		return 0, 0, err
	}

	return origination - host, host, nil
}

// CalculateProtocolLiquidationFee protocol cut of collateral seized with a
// bonus, at least one token when the fee is configured
func CalculateProtocolLiquidationFee(cfg *core.ReserveConfig, withdrawn uint64, bonus Bonus) (uint64, error) {
	if bonus.TotalBonus.GreaterThan(percent(MaxBonusPct)) {
		return 0, core.ErrInvalidAmount
	}

	if cfg.ProtocolLiquidationFee == 0 || withdrawn == 0 {
		return 0, nil
	}

	bonusRate, err := bonus.TotalBonus.Add(number.One())
	if err != nil {
		return 0, err
	}

	base, err := number.FromInteger(withdrawn).Div(bonusRate)
	if err != nil {
		return 0, err
	}

	fee, err := base.Mul(bonus.ProtocolLiquidationFee)
	if err != nil {
		return 0, err
	}

	v, err := fee.Floor()
	if err != nil {
		return 0, err
	}

	if v == 0 {
		v = 1
	}

	return v, nil
}
