package compound

import (
	"lending/core"
	"lending/pkg/number"
)

type obligationValues struct {
	deposited      number.Decimal
	borrowed       number.Decimal
	unweighted     number.Decimal
	upperBound     number.Decimal
	allowed        number.Decimal
	unhealthy      number.Decimal
	superUnhealthy number.Decimal
}

func addInto(sum *number.Decimal, v number.Decimal) error {
	total, err := sum.Add(v)
	if err != nil {
		return err
	}

	*sum = total
	return nil
}

func addWeighted(sum *number.Decimal, v, weight number.Decimal) error {
	w, err := v.Mul(weight)
	if err != nil {
		return err
	}

	return addInto(sum, w)
}

// CheckObligationReserves reserves must be the obligation's deposit reserves
// followed by its borrow reserves, all in the obligation's market
func CheckObligationReserves(o *core.Obligation, reserves []*core.Reserve) error {
	ids := o.ReserveIDs()
	if len(reserves) != len(ids) {
		return core.ErrInvalidAccountInput
	}

	for idx, r := range reserves {
		if r == nil || r.ID != ids[idx] {
			return core.ErrInvalidAccountInput
		}

		if r.MarketID != o.MarketID {
			return core.ErrInvalidReserveLendingMarketMatch
		}
	}

	return nil
}

func requireFresh(r *core.Reserve, slot uint64) error {
	stale, err := r.LastUpdate.IsStale(slot)
	if err != nil {
		return err
	}

	if stale {
		return core.ErrReserveStale
	}

	return nil
}

// RefreshObligation recompute the values of o from freshly refreshed
// reserves and update the borrow attribution of its deposit reserves.
//
// reserves lists the deposit reserves followed by the borrow reserves, in the
// order of o.Deposits and o.Borrows. Nothing is written unless every step
// succeeds.
func RefreshObligation(o *core.Obligation, reserves []*core.Reserve, slot uint64) error {
	if err := CheckObligationReserves(o, reserves); err != nil {
		return err
	}

	next := o.Clone()
	var values obligationValues

	for idx := range next.Deposits {
		collateral := &next.Deposits[idx]
		r := reserves[idx]

		if err := requireFresh(r, slot); err != nil {
			return err
		}

		rate, err := ExchangeRate(r)
		if err != nil {
			return err
		}

		liquidity, err := rate.DecimalCollateralToLiquidity(number.FromInteger(collateral.DepositedAmount))
		if err != nil {
			return err
		}

		marketValue, err := MarketValue(r, liquidity)
		if err != nil {
			return err
		}

		lowerBound, err := MarketValueLowerBound(r, liquidity)
		if err != nil {
			return err
		}

		collateral.MarketValue = marketValue

		if err := addInto(&values.deposited, marketValue); err != nil {
			return err
		}

		if err := addWeighted(&values.allowed, lowerBound, percent(r.Config.LoanToValueRatio)); err != nil {
			return err
		}

		if err := addWeighted(&values.unhealthy, marketValue, percent(r.Config.LiquidationThreshold)); err != nil {
			return err
		}

		if err := addWeighted(&values.superUnhealthy, marketValue, percent(r.Config.MaxLiquidationThreshold)); err != nil {
			return err
		}
	}

	var (
		borrowingIsolated bool
		maxWeightIdx      = -1
	)

	base := len(next.Deposits)
	for idx := range next.Borrows {
		liquidity := &next.Borrows[idx]
		r := reserves[base+idx]

		if err := requireFresh(r, slot); err != nil {
			return err
		}

		if r.Config.ReserveType == core.ReserveTypeIsolated {
			borrowingIsolated = true
		}

		if err := liquidity.AccrueInterest(r.Liquidity.CumulativeBorrowRate); err != nil {
			return err
		}

		if !liquidity.BorrowedAmount.IsZero() {
			if maxWeightIdx < 0 || heavierBorrow(r, reserves[base+maxWeightIdx]) {
				maxWeightIdx = idx
			}
		}

		marketValue, err := MarketValue(r, liquidity.BorrowedAmount)
		if err != nil {
			return err
		}

		upperBound, err := MarketValueUpperBound(r, liquidity.BorrowedAmount)
		if err != nil {
			return err
		}

		weight, err := BorrowWeight(&r.Config)
		if err != nil {
			return err
		}

		liquidity.MarketValue = marketValue

		if err := addWeighted(&values.borrowed, marketValue, weight); err != nil {
			return err
		}

		if err := addWeighted(&values.upperBound, upperBound, weight); err != nil {
			return err
		}

		if err := addInto(&values.unweighted, marketValue); err != nil {
			return err
		}
	}

	next.DepositedValue = values.deposited
	next.BorrowedValue = values.borrowed
	next.UnweightedBorrowedValue = values.unweighted
	next.BorrowedValueUpperBound = values.upperBound
	next.BorrowingIsolatedAsset = borrowingIsolated
	next.AllowedBorrowValue = number.Min(values.allowed, number.FromInteger(GlobalAllowedBorrowValue))
	next.UnhealthyBorrowValue = number.Min(values.unhealthy, number.FromInteger(GlobalUnhealthyBorrowValue))
	next.SuperUnhealthyBorrowValue = number.Min(values.superUnhealthy, number.FromInteger(GlobalUnhealthyBorrowValue))
	next.LastUpdate.UpdateSlot(slot)

	depositReserves := make([]*core.Reserve, len(next.Deposits))
	for idx := range next.Deposits {
		depositReserves[idx] = reserves[idx].Clone()
	}

	attribution, err := UpdateBorrowAttribution(next, depositReserves)
	if err != nil {
		return err
	}

	next.Closeable = attribution.CloseExceeded == ""

	if maxWeightIdx > 0 {
		next.Borrows[0], next.Borrows[maxWeightIdx] = next.Borrows[maxWeightIdx], next.Borrows[0]
	}

	deposits := next.Deposits[:0]
	for _, d := range next.Deposits {
		if d.DepositedAmount > 0 {
			deposits = append(deposits, d)
		}
	}
	next.Deposits = deposits

	borrows := next.Borrows[:0]
	for _, b := range next.Borrows {
		if !b.BorrowedAmount.IsZero() {
			borrows = append(borrows, b)
		}
	}
	next.Borrows = borrows

	for idx, r := range depositReserves {
		reserves[idx].AttributedBorrowValue = r.AttributedBorrowValue
	}

	*o = *next
	return nil
}

// heavierBorrow orders borrow reserves by (added borrow weight, id)
func heavierBorrow(r, than *core.Reserve) bool {
	if r.Config.AddedBorrowWeightBps != than.Config.AddedBorrowWeightBps {
		return r.Config.AddedBorrowWeightBps > than.Config.AddedBorrowWeightBps
	}

	return r.ID > than.ID
}

// Attribution last deposit reserve whose attributed borrow value crossed a limit, empty when none did
type Attribution struct {
	OpenExceeded  string
	CloseExceeded string
}

// UpdateBorrowAttribution move each deposit's share of the obligation's
// unweighted debt into its reserve's attributed borrow value.
//
// Deposit market values and the obligation's deposited and unweighted
// borrowed values must be current. o and reserves are modified in place.
func UpdateBorrowAttribution(o *core.Obligation, reserves []*core.Reserve) (Attribution, error) {
	var result Attribution

	for idx := range o.Deposits {
		collateral := &o.Deposits[idx]

		var r *core.Reserve
		for _, candidate := range reserves {
			if candidate.ID == collateral.ReserveID {
				r = candidate
				break
			}
		}

		if r == nil {
			return result, core.ErrInvalidObligationCollateral
		}

		attributed := r.AttributedBorrowValue.SaturatingSub(collateral.AttributedBorrowValue)

		share := number.Zero()
		if !o.DepositedValue.IsZero() {
			v, err := collateral.MarketValue.Mul(o.UnweightedBorrowedValue)
			if err != nil {
				return result, err
			}

			if share, err = v.Div(o.DepositedValue); err != nil {
				return result, err
			}
		}

		attributed, err := attributed.Add(share)
		if err != nil {
			return result, err
		}

		collateral.AttributedBorrowValue = share
		r.AttributedBorrowValue = attributed

		if attributed.GreaterThan(number.FromInteger(r.Config.AttributedBorrowLimitOpen)) {
			result.OpenExceeded = r.ID
		}

		if attributed.GreaterThan(number.FromInteger(r.Config.AttributedBorrowLimitClose)) {
			result.CloseExceeded = r.ID
		}
	}

	return result, nil
}

// MaxWithdrawAmount collateral of r that can leave o without exceeding its
// allowed borrow value
func MaxWithdrawAmount(o *core.Obligation, collateral *core.ObligationCollateral, r *core.Reserve) (uint64, error) {
	if len(o.Borrows) == 0 {
		return collateral.DepositedAmount, nil
	}

	if o.AllowedBorrowValue.LessThanOrEqual(o.BorrowedValueUpperBound) {
		return 0, nil
	}

	if r.Config.LoanToValueRatio == 0 {
		return collateral.DepositedAmount, nil
	}

	headroom, err := o.AllowedBorrowValue.Sub(o.BorrowedValueUpperBound)
	if err != nil {
		return 0, err
	}

	value, err := headroom.Div(percent(r.Config.LoanToValueRatio))
	if err != nil {
		return 0, err
	}

	unit, err := tokenUnit(r.Liquidity.MintDecimals)
	if err != nil {
		return 0, err
	}

	if value, err = value.Mul(unit); err != nil {
		return 0, err
	}

	liquidity, err := value.Div(PriceLowerBound(&r.Liquidity))
	if err != nil {
		return 0, err
	}

	rate, err := ExchangeRate(r)
	if err != nil {
		return 0, err
	}

	amount, err := rate.DecimalLiquidityToCollateral(liquidity)
	if err != nil {
		return 0, err
	}

	if amount.GreaterThanOrEqual(number.FromInteger(collateral.DepositedAmount)) {
		return collateral.DepositedAmount, nil
	}

	return amount.Floor()
}

// LoanToValue borrowed value over deposited value
func LoanToValue(o *core.Obligation) (number.Decimal, error) {
	return o.BorrowedValue.Div(o.DepositedValue)
}

// RemainingBorrowValue borrow value still available to o
func RemainingBorrowValue(o *core.Obligation) number.Decimal {
	return o.AllowedBorrowValue.SaturatingSub(o.BorrowedValueUpperBound)
}
