package compound

import (
	"math"

	"lending/core"
	"lending/pkg/number"
)

// BorrowResult amounts of a borrow
type BorrowResult struct {
	// BorrowAmount debt taken on, fees included
	BorrowAmount  number.Decimal
	ReceiveAmount uint64
	BorrowFee     uint64
	HostFee       uint64
}

// CalculateBorrow size a borrow of amount from r. math.MaxUint64 borrows as
// much as maxBorrowValue, the reserve's remaining borrow capacity and its
// available liquidity allow.
func CalculateBorrow(r *core.Reserve, amount uint64, maxBorrowValue, remainingReserveBorrow number.Decimal) (*BorrowResult, error) {
	weight, err := BorrowWeight(&r.Config)
	if err != nil {
		return nil, err
	}

	if amount == math.MaxUint64 {
		liquidity, err := QuoteToLiquidityLowerBound(r, maxBorrowValue)
		if err != nil {
			return nil, err
		}

		if liquidity, err = liquidity.Div(weight); err != nil {
			return nil, err
		}

		borrowAmount := number.Min(liquidity, remainingReserveBorrow)
		borrowAmount = number.Min(borrowAmount, number.FromInteger(r.Liquidity.AvailableAmount))

		borrowFee, hostFee, err := CalculateBorrowFees(r.Config.Fees, borrowAmount, FeeInclusive)
		if err != nil {
			return nil, err
		}

		floor, err := borrowAmount.Floor()
		if err != nil {
			return nil, err
		}

		if floor < borrowFee {
			return nil, core.ErrBorrowTooSmall
		}

		return &BorrowResult{
			BorrowAmount:  borrowAmount,
			ReceiveAmount: floor - borrowFee,
			BorrowFee:     borrowFee,
			HostFee:       hostFee,
		}, nil
	}

	borrowFee, hostFee, err := CalculateBorrowFees(r.Config.Fees, number.FromInteger(amount), FeeExclusive)
	if err != nil {
		return nil, err
	}

	borrowAmount, err := number.FromInteger(amount).Add(number.FromInteger(borrowFee))
	if err != nil {
		return nil, err
	}

	value, err := MarketValueUpperBound(r, borrowAmount)
	if err != nil {
		return nil, err
	}

	if value, err = value.Mul(weight); err != nil {
		return nil, err
	}

	if value.GreaterThan(maxBorrowValue) {
		return nil, core.ErrBorrowTooLarge
	}

	return &BorrowResult{
		BorrowAmount:  borrowAmount,
		ReceiveAmount: amount,
		BorrowFee:     borrowFee,
		HostFee:       hostFee,
	}, nil
}

// RepayResult amounts of a repay
type RepayResult struct {
	// SettleAmount debt removed from the obligation
	SettleAmount number.Decimal
	// RepayAmount tokens paid by the borrower
	RepayAmount uint64
}

// CalculateRepay settle up to borrowed, math.MaxUint64 settles everything
func CalculateRepay(amount uint64, borrowed number.Decimal) (*RepayResult, error) {
	settle := borrowed
	if amount != math.MaxUint64 {
		settle = number.Min(number.FromInteger(amount), borrowed)
	}

	repay, err := settle.Ceil()
	if err != nil {
		return nil, err
	}

	return &RepayResult{
		SettleAmount: settle,
		RepayAmount:  repay,
	}, nil
}
