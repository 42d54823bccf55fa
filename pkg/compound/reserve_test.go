package compound

import (
	"testing"

	"lending/core"
	"lending/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() core.ReserveConfig {
	return core.ReserveConfig{
		OptimalUtilizationRate:     80,
		MaxUtilizationRate:         90,
		LoanToValueRatio:           50,
		LiquidationBonus:           5,
		MaxLiquidationBonus:        10,
		LiquidationThreshold:       60,
		MaxLiquidationThreshold:    70,
		MinBorrowRate:              0,
		OptimalBorrowRate:          8,
		MaxBorrowRate:              50,
		SuperMaxBorrowRate:         100,
		DepositLimit:               1_000_000,
		BorrowLimit:                1_000_000,
		FeeReceiver:                "fees",
		ProtocolLiquidationFee:     10,
		ProtocolTakeRate:           10,
		AttributedBorrowLimitOpen:  1_000_000_000,
		AttributedBorrowLimitClose: 1_000_000_000,
	}
}

func testReserve(id, price string) *core.Reserve {
	p := number.MustParse(price)
	return &core.Reserve{
		ID:         id,
		MarketID:   "market",
		LastUpdate: core.LastUpdate{Slot: 10},
		Liquidity: core.ReserveLiquidity{
			MintID:               id + "-mint",
			CumulativeBorrowRate: number.One(),
			MarketPrice:          p,
			SmoothedMarketPrice:  p,
		},
		Config:      testConfig(),
		RateLimiter: core.DefaultRateLimiter(10),
	}
}

func TestDepositIntoEmptyReserve(t *testing.T) {
	r := testReserve("usdc", "1")

	collateral, err := DepositLiquidity(r, 100_000)
	require.Nil(t, err)
	assert.Equal(t, uint64(100_000), collateral)
	assert.Equal(t, uint64(100_000), r.Liquidity.AvailableAmount)
	assert.Equal(t, uint64(100_000), r.Collateral.MintTotalSupply)

	_, err = DepositLiquidity(r, 0)
	assert.Equal(t, core.ErrInvalidAmount, err)
}

func TestDepositRedeemRoundTrip(t *testing.T) {
	r := testReserve("usdc", "1")
	r.Liquidity.AvailableAmount = 1000
	r.Liquidity.BorrowedAmount = number.FromInteger(100)
	r.Collateral.MintTotalSupply = 1000

	collateral, err := DepositLiquidity(r, 1000)
	require.Nil(t, err)
	assert.Equal(t, uint64(909), collateral)

	liquidity, err := RedeemCollateral(r, collateral)
	require.Nil(t, err)
	assert.Equal(t, uint64(999), liquidity)
	assert.Equal(t, uint64(1001), r.Liquidity.AvailableAmount)
	assert.Equal(t, uint64(1000), r.Collateral.MintTotalSupply)
}

func TestRedeemInsufficientLiquidity(t *testing.T) {
	r := testReserve("usdc", "1")
	r.Liquidity.AvailableAmount = 10
	r.Liquidity.BorrowedAmount = number.FromInteger(990)
	r.Collateral.MintTotalSupply = 1000

	_, err := RedeemCollateral(r, 500)
	assert.Equal(t, core.ErrInsufficientLiquidity, err)
	assert.Equal(t, uint64(10), r.Liquidity.AvailableAmount)
	assert.Equal(t, uint64(1000), r.Collateral.MintTotalSupply)
}

func TestCurrentBorrowRate(t *testing.T) {
	cases := []struct {
		available uint64
		borrowed  uint64
		rate      string
	}{
		{available: 100, borrowed: 0, rate: "0"},
		{available: 60, borrowed: 40, rate: "0.04"},
		{available: 20, borrowed: 80, rate: "0.08"},
		{available: 15, borrowed: 85, rate: "0.29"},
		{available: 5, borrowed: 95, rate: "0.75"},
		{available: 0, borrowed: 100, rate: "1"},
	}

	for _, c := range cases {
		r := testReserve("usdc", "1")
		r.Liquidity.AvailableAmount = c.available
		r.Liquidity.BorrowedAmount = number.FromInteger(c.borrowed)

		rate, err := CurrentBorrowRate(r)
		require.Nil(t, err)
		assert.Equal(t, c.rate, rate.String(), "available %d borrowed %d", c.available, c.borrowed)
	}

	r := testReserve("usdc", "1")
	r.Config.OptimalUtilizationRate = 0
	r.Config.MinBorrowRate = 3
	rate, err := CurrentBorrowRate(r)
	require.Nil(t, err)
	assert.Equal(t, "0.03", rate.String())
}

func TestRefreshReserveInterest(t *testing.T) {
	r := testReserve("usdc", "1")
	r.Liquidity.AvailableAmount = 900
	r.Liquidity.BorrowedAmount = number.FromInteger(100)

	slot := r.LastUpdate.Slot + SlotsPerYear
	require.Nil(t, RefreshReserveInterest(r, slot))

	l := r.Liquidity
	assert.True(t, l.CumulativeBorrowRate.GreaterThan(number.MustParse("1.01")))
	assert.True(t, l.CumulativeBorrowRate.LessThan(number.MustParse("1.0101")))
	assert.True(t, l.BorrowedAmount.GreaterThan(number.MustParse("101")))
	assert.True(t, l.BorrowedAmount.LessThan(number.MustParse("101.01")))

	interest, err := l.BorrowedAmount.Sub(number.FromInteger(100))
	require.Nil(t, err)
	fees, err := interest.Mul(number.FromPercent(10))
	require.Nil(t, err)
	assert.Equal(t, fees.String(), l.AccumulatedProtocolFees.String())

	total, err := TotalSupply(&l)
	require.Nil(t, err)
	expect, err := number.FromInteger(900).Add(l.BorrowedAmount)
	require.Nil(t, err)
	expect, err = expect.Sub(fees)
	require.Nil(t, err)
	assert.Equal(t, expect, total)

	assert.Equal(t, slot, r.LastUpdate.Slot)
	assert.False(t, r.LastUpdate.Stale)

	// same slot again accrues nothing
	before := *r
	require.Nil(t, RefreshReserveInterest(r, slot))
	assert.Equal(t, before, *r)

	_, err = r.LastUpdate.SlotsElapsed(slot - 1)
	assert.Equal(t, core.ErrMathOverflow, err)
}

func TestPriceBounds(t *testing.T) {
	r := testReserve("sol", "2")
	extra := number.FromInteger(3)
	r.Liquidity.ExtraMarketPrice = &extra

	assert.Equal(t, "3", PriceUpperBound(&r.Liquidity).String())
	assert.Equal(t, "2", PriceLowerBound(&r.Liquidity).String())

	r.Liquidity.MintDecimals = 2
	v, err := MarketValue(r, number.FromInteger(250))
	require.Nil(t, err)
	assert.Equal(t, "5", v.String())

	v, err = MarketValueUpperBound(r, number.FromInteger(250))
	require.Nil(t, err)
	assert.Equal(t, "7.5", v.String())

	v, err = MarketValueLowerBound(r, number.FromInteger(250))
	require.Nil(t, err)
	assert.Equal(t, "5", v.String())

	v, err = QuoteToLiquidityLowerBound(r, number.FromInteger(6))
	require.Nil(t, err)
	assert.Equal(t, "200", v.String())
}

func TestSetPrices(t *testing.T) {
	r := testReserve("sol", "1")
	r.Config.ScaledPriceOffsetBps = 1000

	err := SetPrices(r, &core.OraclePrice{Price: 150, Expo: -2}, &core.OraclePrice{Price: 2, Expo: 0})
	require.Nil(t, err)
	assert.Equal(t, "1.65", r.Liquidity.MarketPrice.String())
	assert.Equal(t, "1.65", r.Liquidity.SmoothedMarketPrice.String())
	require.NotNil(t, r.Liquidity.ExtraMarketPrice)
	assert.Equal(t, "2", r.Liquidity.ExtraMarketPrice.String())

	r.Config.ScaledPriceOffsetBps = -1000
	require.Nil(t, SetPrices(r, &core.OraclePrice{Price: 3, Expo: 1}, nil))
	assert.Equal(t, "27", r.Liquidity.MarketPrice.String())
	assert.Nil(t, r.Liquidity.ExtraMarketPrice)

	err = SetPrices(r, &core.OraclePrice{Price: 0, Expo: 0}, nil)
	assert.Equal(t, core.ErrInvalidOraclePrice, err)
	assert.Equal(t, "27", r.Liquidity.MarketPrice.String())
}

func TestBorrowWeight(t *testing.T) {
	cfg := testConfig()
	w, err := BorrowWeight(&cfg)
	require.Nil(t, err)
	assert.Equal(t, "1", w.String())

	cfg.AddedBorrowWeightBps = 2500
	w, err = BorrowWeight(&cfg)
	require.Nil(t, err)
	assert.Equal(t, "1.25", w.String())
}

func TestLiquidityBorrowRepay(t *testing.T) {
	l := core.ReserveLiquidity{AvailableAmount: 100}

	assert.Equal(t, core.ErrInsufficientLiquidity, BorrowLiquidity(&l, number.FromInteger(101)))

	require.Nil(t, BorrowLiquidity(&l, number.MustParse("40.5")))
	assert.Equal(t, uint64(60), l.AvailableAmount)
	assert.Equal(t, "40.5", l.BorrowedAmount.String())

	require.Nil(t, RepayLiquidity(&l, 41, number.MustParse("40.5")))
	assert.Equal(t, uint64(101), l.AvailableAmount)
	assert.True(t, l.BorrowedAmount.IsZero())
}

func TestRedeemFees(t *testing.T) {
	l := core.ReserveLiquidity{
		AvailableAmount:         5,
		AccumulatedProtocolFees: number.MustParse("10.7"),
	}

	amount, err := CalculateRedeemFees(&l)
	require.Nil(t, err)
	assert.Equal(t, uint64(5), amount)

	l.AvailableAmount = 100
	amount, err = CalculateRedeemFees(&l)
	require.Nil(t, err)
	assert.Equal(t, uint64(10), amount)

	require.Nil(t, RedeemFees(&l, amount))
	assert.Equal(t, uint64(90), l.AvailableAmount)
	assert.Equal(t, "0.7", l.AccumulatedProtocolFees.String())
}
