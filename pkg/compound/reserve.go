package compound

import (
	"lending/core"
	"lending/pkg/number"
)

// TotalSupply available + borrowed - accumulated protocol fees
func TotalSupply(l *core.ReserveLiquidity) (number.Decimal, error) {
	total, err := number.FromInteger(l.AvailableAmount).Add(l.BorrowedAmount)
	if err != nil {
		return number.Zero(), err
	}

	return total.Sub(l.AccumulatedProtocolFees)
}

// UtilizationRate borrowed / (borrowed + available)
func UtilizationRate(l *core.ReserveLiquidity) (number.Decimal, error) {
	total, err := number.FromInteger(l.AvailableAmount).Add(l.BorrowedAmount)
	if err != nil {
		return number.Zero(), err
	}

	if total.IsZero() {
		return number.Zero(), nil
	}

	return l.BorrowedAmount.Div(total)
}

// CollateralExchangeRate receipt tokens per liquidity unit
type CollateralExchangeRate struct {
	rate number.Decimal
}

// ExchangeRate current exchange rate of r
func ExchangeRate(r *core.Reserve) (CollateralExchangeRate, error) {
	total, err := TotalSupply(&r.Liquidity)
	if err != nil {
		return CollateralExchangeRate{}, err
	}

	if r.Collateral.MintTotalSupply == 0 || total.IsZero() {
		return CollateralExchangeRate{rate: number.FromInteger(InitialCollateralRate)}, nil
	}

	rate, err := number.FromInteger(r.Collateral.MintTotalSupply).Div(total)
	if err != nil {
		return CollateralExchangeRate{}, err
	}

	return CollateralExchangeRate{rate: rate}, nil
}

// Rate collateral per liquidity
func (e CollateralExchangeRate) Rate() number.Decimal {
	return e.rate
}

// CollateralToLiquidity floor(collateral / rate)
func (e CollateralExchangeRate) CollateralToLiquidity(collateral uint64) (uint64, error) {
	v, err := e.DecimalCollateralToLiquidity(number.FromInteger(collateral))
	if err != nil {
		return 0, err
	}
	return v.Floor()
}

// DecimalCollateralToLiquidity collateral / rate
func (e CollateralExchangeRate) DecimalCollateralToLiquidity(collateral number.Decimal) (number.Decimal, error) {
	return collateral.Div(e.rate)
}

// LiquidityToCollateral floor(liquidity * rate)
func (e CollateralExchangeRate) LiquidityToCollateral(liquidity uint64) (uint64, error) {
	v, err := e.DecimalLiquidityToCollateral(number.FromInteger(liquidity))
	if err != nil {
		return 0, err
	}
	return v.Floor()
}

// DecimalLiquidityToCollateral liquidity * rate
func (e CollateralExchangeRate) DecimalLiquidityToCollateral(liquidity number.Decimal) (number.Decimal, error) {
	return liquidity.Mul(e.rate)
}

// DepositLiquidity add liquidity to r and mint receipt tokens at the current
// exchange rate, returns the minted collateral amount
func DepositLiquidity(r *core.Reserve, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, core.ErrInvalidAmount
	}

	rate, err := ExchangeRate(r)
	if err != nil {
		return 0, err
	}

	collateral, err := rate.LiquidityToCollateral(amount)
	if err != nil {
		return 0, err
	}

	if collateral == 0 {
		return 0, core.ErrInvalidAmount
	}

	available := r.Liquidity.AvailableAmount + amount
	if available < amount {
		return 0, core.ErrMathOverflow
	}

	supply := r.Collateral.MintTotalSupply + collateral
	if supply < collateral {
		return 0, core.ErrMathOverflow
	}

	r.Liquidity.AvailableAmount = available
	r.Collateral.MintTotalSupply = supply
	return collateral, nil
}

// RedeemCollateral burn receipt tokens and release liquidity at the current
// exchange rate, returns the liquidity amount
func RedeemCollateral(r *core.Reserve, collateral uint64) (uint64, error) {
	if collateral == 0 {
		return 0, core.ErrInvalidAmount
	}

	if collateral > r.Collateral.MintTotalSupply {
		return 0, core.ErrMathOverflow
	}

	rate, err := ExchangeRate(r)
	if err != nil {
		return 0, err
	}

	liquidity, err := rate.CollateralToLiquidity(collateral)
	if err != nil {
		return 0, err
	}

	if liquidity == 0 {
		return 0, core.ErrInvalidAmount
	}

	if liquidity > r.Liquidity.AvailableAmount {
		return 0, core.ErrInsufficientLiquidity
	}

	r.Collateral.MintTotalSupply -= collateral
	r.Liquidity.AvailableAmount -= liquidity
	return liquidity, nil
}

// BorrowLiquidity move liquidity out of the pool into debt
func BorrowLiquidity(l *core.ReserveLiquidity, amount number.Decimal) error {
	out, err := amount.Floor()
	if err != nil {
		return err
	}

	if out > l.AvailableAmount {
		return core.ErrInsufficientLiquidity
	}

	borrowed, err := l.BorrowedAmount.Add(amount)
	if err != nil {
		return err
	}

	l.AvailableAmount -= out
	l.BorrowedAmount = borrowed
	return nil
}

// RepayLiquidity return repay tokens to the pool and settle debt, the
// settled amount is clamped to the outstanding debt
func RepayLiquidity(l *core.ReserveLiquidity, repay uint64, settle number.Decimal) error {
	available := l.AvailableAmount + repay
	if available < repay {
		return core.ErrMathOverflow
	}

	borrowed, err := l.BorrowedAmount.Sub(number.Min(settle, l.BorrowedAmount))
	if err != nil {
		return err
	}

	l.AvailableAmount = available
	l.BorrowedAmount = borrowed
	return nil
}

// CalculateRedeemFees protocol fees that can be paid out now
func CalculateRedeemFees(l *core.ReserveLiquidity) (uint64, error) {
	fees, err := l.AccumulatedProtocolFees.Floor()
	if err != nil {
		return 0, err
	}

	if fees > l.AvailableAmount {
		return l.AvailableAmount, nil
	}
	return fees, nil
}

// RedeemFees take amount of accumulated protocol fees out of the pool
func RedeemFees(l *core.ReserveLiquidity, amount uint64) error {
	if amount > l.AvailableAmount {
		return core.ErrInsufficientLiquidity
	}

	fees, err := l.AccumulatedProtocolFees.Sub(number.FromInteger(amount))
	if err != nil {
		return err
	}

	l.AccumulatedProtocolFees = fees
	l.AvailableAmount -= amount
	return nil
}

// CurrentBorrowRate yearly borrow rate from the three segment utilization curve
func CurrentBorrowRate(r *core.Reserve) (number.Decimal, error) {
	util, err := UtilizationRate(&r.Liquidity)
	if err != nil {
		return number.Zero(), err
	}

	cfg := &r.Config
	optimalUtil := percent(cfg.OptimalUtilizationRate)
	maxUtil := percent(cfg.MaxUtilizationRate)

	switch {
	case util.LessThanOrEqual(optimalUtil):
		if cfg.OptimalUtilizationRate == 0 {
			return percent(cfg.MinBorrowRate), nil
		}
		return interpolate(util, number.Zero(), optimalUtil, percent(cfg.MinBorrowRate), percent(cfg.OptimalBorrowRate))
	case util.LessThanOrEqual(maxUtil):
		return interpolate(util, optimalUtil, maxUtil, percent(cfg.OptimalBorrowRate), percent(cfg.MaxBorrowRate))
	default:
		// utilization never exceeds 100%, so a full max utilization has no last segment
		if cfg.MaxUtilizationRate >= 100 {
			return percent(cfg.MaxBorrowRate), nil
		}
		return interpolate(util, maxUtil, number.One(), percent(cfg.MaxBorrowRate), number.FromPercentU64(cfg.SuperMaxBorrowRate))
	}
}

// interpolate rate on the line from (x0, y0) to (x1, y1) at x, y1 >= y0
func interpolate(x, x0, x1, y0, y1 number.Decimal) (number.Decimal, error) {
	dx, err := x.Sub(x0)
	if err != nil {
		return number.Zero(), err
	}

	width, err := x1.Sub(x0)
	if err != nil {
		return number.Zero(), err
	}

	normalized, err := dx.Div(width)
	if err != nil {
		return number.Zero(), err
	}

	span, err := y1.Sub(y0)
	if err != nil {
		return number.Zero(), err
	}

	v, err := normalized.Mul(span)
	if err != nil {
		return number.Zero(), err
	}

	return v.Add(y0)
}

// AccrueInterest compound interest for the slots elapsed since the last
// update. The last update itself is left to the caller.
func AccrueInterest(r *core.Reserve, slot uint64) error {
	elapsed, err := r.LastUpdate.SlotsElapsed(slot)
	if err != nil {
		return err
	}

	if elapsed == 0 {
		return nil
	}

	rate, err := CurrentBorrowRate(r)
	if err != nil {
		return err
	}

	return compoundInterest(&r.Liquidity, rate, elapsed, r.Config.ProtocolTakeRate)
}

func compoundInterest(l *core.ReserveLiquidity, yearlyRate number.Decimal, slots uint64, takeRate uint8) error {
	slotRate, err := yearlyRate.DivInt(SlotsPerYear)
	if err != nil {
		return err
	}

	base, err := number.One().Add(slotRate)
	if err != nil {
		return err
	}

	factor, err := base.Pow(slots)
	if err != nil {
		return err
	}

	cumulative, err := l.CumulativeBorrowRate.Mul(factor)
	if err != nil {
		return err
	}

	grown, err := l.BorrowedAmount.Mul(factor)
	if err != nil {
		return err
	}

	netNewDebt, err := grown.Sub(l.BorrowedAmount)
	if err != nil {
		return err
	}

	protocolShare, err := netNewDebt.Mul(percent(takeRate))
	if err != nil {
		return err
	}

	fees, err := l.AccumulatedProtocolFees.Add(protocolShare)
	if err != nil {
		return err
	}

	l.CumulativeBorrowRate = cumulative
	l.BorrowedAmount = grown
	l.AccumulatedProtocolFees = fees
	return nil
}

// RefreshReserveInterest accrue interest and mark r fresh at slot
func RefreshReserveInterest(r *core.Reserve, slot uint64) error {
	if err := AccrueInterest(r, slot); err != nil {
		return err
	}

	r.LastUpdate.UpdateSlot(slot)
	return nil
}

// PriceUpperBound highest of the market, smoothed and extra prices
func PriceUpperBound(l *core.ReserveLiquidity) number.Decimal {
	p := number.Max(l.MarketPrice, l.SmoothedMarketPrice)
	if l.ExtraMarketPrice != nil {
		p = number.Max(p, *l.ExtraMarketPrice)
	}
	return p
}

// PriceLowerBound lowest of the market, smoothed and extra prices
func PriceLowerBound(l *core.ReserveLiquidity) number.Decimal {
	p := number.Min(l.MarketPrice, l.SmoothedMarketPrice)
	if l.ExtraMarketPrice != nil {
		p = number.Min(p, *l.ExtraMarketPrice)
	}
	return p
}

func tokenUnit(decimals uint8) (number.Decimal, error) {
	return number.FromInteger(10).Pow(uint64(decimals))
}

func valueAt(price number.Decimal, decimals uint8, amount number.Decimal) (number.Decimal, error) {
	unit, err := tokenUnit(decimals)
	if err != nil {
		return number.Zero(), err
	}

	v, err := price.Mul(amount)
	if err != nil {
		return number.Zero(), err
	}

	return v.Div(unit)
}

// MarketValue quote value of a liquidity amount at the market price
func MarketValue(r *core.Reserve, liquidity number.Decimal) (number.Decimal, error) {
	return valueAt(r.Liquidity.MarketPrice, r.Liquidity.MintDecimals, liquidity)
}

// MarketValueUpperBound quote value at the highest price, used for debt
func MarketValueUpperBound(r *core.Reserve, liquidity number.Decimal) (number.Decimal, error) {
	return valueAt(PriceUpperBound(&r.Liquidity), r.Liquidity.MintDecimals, liquidity)
}

// MarketValueLowerBound quote value at the lowest price, used for collateral
func MarketValueLowerBound(r *core.Reserve, liquidity number.Decimal) (number.Decimal, error) {
	return valueAt(PriceLowerBound(&r.Liquidity), r.Liquidity.MintDecimals, liquidity)
}

// QuoteToLiquidityLowerBound liquidity bought by a quote amount at the highest price
func QuoteToLiquidityLowerBound(r *core.Reserve, quote number.Decimal) (number.Decimal, error) {
	unit, err := tokenUnit(r.Liquidity.MintDecimals)
	if err != nil {
		return number.Zero(), err
	}

	v, err := quote.Mul(unit)
	if err != nil {
		return number.Zero(), err
	}

	return v.Div(PriceUpperBound(&r.Liquidity))
}

// BorrowWeight 1 + added_borrow_weight_bps / 10000
func BorrowWeight(cfg *core.ReserveConfig) (number.Decimal, error) {
	return number.One().Add(number.FromBps(cfg.AddedBorrowWeightBps))
}

// OraclePriceValue price * 10^expo
func OraclePriceValue(p *core.OraclePrice) (number.Decimal, error) {
	if p == nil || p.Price == 0 {
		return number.Zero(), core.ErrInvalidOraclePrice
	}

	price := number.FromInteger(p.Price)
	if p.Expo >= 0 {
		scale, err := number.FromInteger(10).Pow(uint64(p.Expo))
		if err != nil {
			return number.Zero(), err
		}
		return price.Mul(scale)
	}

	scale, err := number.FromInteger(10).Pow(uint64(-int64(p.Expo)))
	if err != nil {
		return number.Zero(), err
	}

	v, err := price.Div(scale)
	if err != nil {
		return number.Zero(), err
	}

	if v.IsZero() {
		return number.Zero(), core.ErrInvalidOraclePrice
	}
	return v, nil
}

// ScalePrice apply a bps offset in [-MaxScaledPriceOffsetBps, MaxScaledPriceOffsetBps]
func ScalePrice(price number.Decimal, offsetBps int64) (number.Decimal, error) {
	if offsetBps > MaxScaledPriceOffsetBps || offsetBps < -MaxScaledPriceOffsetBps {
		return number.Zero(), core.ErrInvalidConfig
	}

	scale := number.FromBps(uint64(10_000 + offsetBps))
	return price.Mul(scale)
}

// SetPrices store a primary oracle price, scaled by the configured offset,
// and an optional extra price on r
func SetPrices(r *core.Reserve, primary *core.OraclePrice, extra *core.OraclePrice) error {
	price, err := OraclePriceValue(primary)
	if err != nil {
		return err
	}

	scaled, err := ScalePrice(price, r.Config.ScaledPriceOffsetBps)
	if err != nil {
		return err
	}

	var extraPrice *number.Decimal
	if extra != nil {
		v, err := OraclePriceValue(extra)
		if err != nil {
			return err
		}
		extraPrice = &v
	}

	r.Liquidity.MarketPrice = scaled
	r.Liquidity.SmoothedMarketPrice = scaled
	r.Liquidity.ExtraMarketPrice = extraPrice
	return nil
}

// ChargeOutflow record liquidity leaving r against the market limiter, in
// quote value at the upper price bound, and against the reserve limiter
func ChargeOutflow(market *core.LendingMarket, r *core.Reserve, slot uint64, liquidity number.Decimal) error {
	value, err := MarketValueUpperBound(r, liquidity)
	if err != nil {
		return err
	}

	if err := market.RateLimiter.Update(slot, value); err != nil {
		return err
	}

	return r.RateLimiter.Update(slot, liquidity)
}
