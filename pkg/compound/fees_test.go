package compound

import (
	"errors"
	"math"
	"testing"

	"lending/core"
	"lending/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBorrowFees(t *testing.T) {
	fees := core.ReserveFees{
		BorrowFeeWad:      10_000_000_000_000_000, // 1%
		HostFeePercentage: 20,
	}

	fee, host, err := CalculateBorrowFees(fees, number.FromInteger(1000), FeeExclusive)
	require.Nil(t, err)
	assert.Equal(t, uint64(10), fee)
	assert.Equal(t, uint64(2), host)

	fee, host, err = CalculateBorrowFees(fees, number.FromInteger(1010), FeeInclusive)
	require.Nil(t, err)
	assert.Equal(t, uint64(10), fee)
	assert.Equal(t, uint64(2), host)

	_, _, err = CalculateBorrowFees(fees, number.FromInteger(1), FeeExclusive)
	assert.Equal(t, core.ErrBorrowTooSmall, err)

	fees.HostFeePercentage = 0
	fee, host, err = CalculateBorrowFees(fees, number.FromInteger(50), FeeExclusive)
	require.Nil(t, err)
	assert.Equal(t, uint64(1), fee)
	assert.Equal(t, uint64(0), host)

	fee, host, err = CalculateBorrowFees(core.ReserveFees{}, number.FromInteger(50), FeeExclusive)
	require.Nil(t, err)
	assert.Zero(t, fee)
	assert.Zero(t, host)
}

func TestCalculateFlashLoanFees(t *testing.T) {
	fees := core.ReserveFees{
		FlashLoanFeeWad:   3_000_000_000_000_000, // 0.3%
		HostFeePercentage: 20,
	}

	protocol, host, err := CalculateFlashLoanFees(fees, number.FromInteger(10_000))
	require.Nil(t, err)
	assert.Equal(t, uint64(24), protocol)
	assert.Equal(t, uint64(6), host)
}

func TestCalculateProtocolLiquidationFee(t *testing.T) {
	cfg := testConfig()
	bonus := Bonus{
		TotalBonus:             number.MustParse("0.06"),
		ProtocolLiquidationFee: number.MustParse("0.01"),
	}

	fee, err := CalculateProtocolLiquidationFee(&cfg, 10_600, bonus)
	require.Nil(t, err)
	assert.Equal(t, uint64(100), fee)

	fee, err = CalculateProtocolLiquidationFee(&cfg, 105, bonus)
	require.Nil(t, err)
	assert.Equal(t, uint64(1), fee)

	bonus.TotalBonus = number.MustParse("0.3")
	_, err = CalculateProtocolLiquidationFee(&cfg, 105, bonus)
	assert.Equal(t, core.ErrInvalidAmount, err)
}

func TestCalculateBorrow(t *testing.T) {
	r := testReserve("sol", "2")
	r.Liquidity.AvailableAmount = 1000
	r.Config.Fees = core.ReserveFees{BorrowFeeWad: 10_000_000_000_000_000}

	_, err := CalculateBorrow(r, 100, number.FromInteger(200), number.FromInteger(1_000_000))
	assert.Equal(t, core.ErrBorrowTooLarge, err)

	result, err := CalculateBorrow(r, 100, number.FromInteger(300), number.FromInteger(1_000_000))
	require.Nil(t, err)
	assert.Equal(t, "101", result.BorrowAmount.String())
	assert.Equal(t, uint64(100), result.ReceiveAmount)
	assert.Equal(t, uint64(1), result.BorrowFee)

	result, err = CalculateBorrow(r, math.MaxUint64, number.FromInteger(200), number.FromInteger(1_000_000))
	require.Nil(t, err)
	assert.Equal(t, "100", result.BorrowAmount.String())
	assert.Equal(t, uint64(99), result.ReceiveAmount)
	assert.Equal(t, uint64(1), result.BorrowFee)

	// the reserve's remaining capacity caps a max borrow
	result, err = CalculateBorrow(r, math.MaxUint64, number.FromInteger(200), number.FromInteger(30))
	require.Nil(t, err)
	assert.Equal(t, "30", result.BorrowAmount.String())
	assert.Equal(t, uint64(29), result.ReceiveAmount)
}

func TestCalculateRepay(t *testing.T) {
	borrowed := number.MustParse("10.5")

	result, err := CalculateRepay(math.MaxUint64, borrowed)
	require.Nil(t, err)
	assert.Equal(t, "10.5", result.SettleAmount.String())
	assert.Equal(t, uint64(11), result.RepayAmount)

	result, err = CalculateRepay(5, borrowed)
	require.Nil(t, err)
	assert.Equal(t, "5", result.SettleAmount.String())
	assert.Equal(t, uint64(5), result.RepayAmount)

	result, err = CalculateRepay(20, borrowed)
	require.Nil(t, err)
	assert.Equal(t, "10.5", result.SettleAmount.String())
}

func TestValidateReserveConfig(t *testing.T) {
	cfg := testConfig()
	require.Nil(t, ValidateReserveConfig(&cfg))

	cases := map[string]func(c *core.ReserveConfig){
		"optimal utilization":     func(c *core.ReserveConfig) { c.OptimalUtilizationRate = 101 },
		"max utilization":         func(c *core.ReserveConfig) { c.MaxUtilizationRate = 70 },
		"loan to value":           func(c *core.ReserveConfig) { c.LoanToValueRatio = 100 },
		"liquidation bonus":       func(c *core.ReserveConfig) { c.LiquidationBonus = 11 },
		"liquidation threshold":   func(c *core.ReserveConfig) { c.LiquidationThreshold = 40 },
		"max threshold":           func(c *core.ReserveConfig) { c.MaxLiquidationThreshold = 55 },
		"optimal borrow rate":     func(c *core.ReserveConfig) { c.MinBorrowRate = 9 },
		"max borrow rate":         func(c *core.ReserveConfig) { c.MaxBorrowRate = 7 },
		"super max borrow rate":   func(c *core.ReserveConfig) { c.SuperMaxBorrowRate = 49 },
		"borrow fee":              func(c *core.ReserveConfig) { c.Fees.BorrowFeeWad = number.WAD },
		"host fee":                func(c *core.ReserveConfig) { c.Fees.HostFeePercentage = 101 },
		"protocol fee":            func(c *core.ReserveConfig) { c.ProtocolLiquidationFee = 51 },
		"bonus cap":               func(c *core.ReserveConfig) { c.MaxLiquidationBonus = 25 },
		"take rate":               func(c *core.ReserveConfig) { c.ProtocolTakeRate = 101 },
		"isolated":                func(c *core.ReserveConfig) { c.ReserveType = core.ReserveTypeIsolated },
		"price offset":            func(c *core.ReserveConfig) { c.ScaledPriceOffsetBps = -2001 },
		"attributed borrow limit": func(c *core.ReserveConfig) { c.AttributedBorrowLimitClose = 1 },
	}

	for name, mutate := range cases {
		c := testConfig()
		mutate(&c)
		err := ValidateReserveConfig(&c)
		assert.True(t, errors.Is(err, core.ErrInvalidConfig), name)
	}

	isolated := testConfig()
	isolated.ReserveType = core.ReserveTypeIsolated
	isolated.LoanToValueRatio = 0
	isolated.LiquidationThreshold = 0
	isolated.MaxLiquidationThreshold = 0
	assert.Nil(t, ValidateReserveConfig(&isolated))

	full := testConfig()
	full.MaxUtilizationRate = 100
	assert.Nil(t, ValidateReserveConfig(&full))
}
