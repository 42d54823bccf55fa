package compound

import (
	"math"
	"testing"

	"lending/core"
	"lending/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBonus(t *testing.T) {
	cfg := testConfig()
	o := &core.Obligation{
		BorrowedValue:             number.FromInteger(500),
		UnhealthyBorrowValue:      number.FromInteger(600),
		SuperUnhealthyBorrowValue: number.FromInteger(700),
	}

	_, err := CalculateBonus(&cfg, o)
	assert.Equal(t, core.ErrObligationHealthy, err)

	o.Closeable = true
	bonus, err := CalculateBonus(&cfg, o)
	require.Nil(t, err)
	assert.True(t, bonus.TotalBonus.IsZero())
	assert.True(t, bonus.ProtocolLiquidationFee.IsZero())

	// halfway between unhealthy and super unhealthy
	o.BorrowedValue = number.FromInteger(650)
	bonus, err = CalculateBonus(&cfg, o)
	require.Nil(t, err)
	assert.Equal(t, "0.085", bonus.TotalBonus.String())
	assert.Equal(t, "0.01", bonus.ProtocolLiquidationFee.String())

	o.BorrowedValue = number.FromInteger(800)
	bonus, err = CalculateBonus(&cfg, o)
	require.Nil(t, err)
	assert.Equal(t, "0.11", bonus.TotalBonus.String())

	o.SuperUnhealthyBorrowValue = o.UnhealthyBorrowValue
	bonus, err = CalculateBonus(&cfg, o)
	require.Nil(t, err)
	assert.Equal(t, "0.06", bonus.TotalBonus.String())

	cfg.LiquidationBonus = 20
	cfg.MaxLiquidationBonus = 24
	cfg.ProtocolLiquidationFee = 20
	o.SuperUnhealthyBorrowValue = number.FromInteger(700)
	bonus, err = CalculateBonus(&cfg, o)
	require.Nil(t, err)
	assert.Equal(t, "0.25", bonus.TotalBonus.String())
}

func testLiquidationPosition() (*core.Obligation, *core.ObligationLiquidity, *core.ObligationCollateral) {
	liquidity := core.ObligationLiquidity{
		ReserveID:      "sol",
		BorrowedAmount: number.FromInteger(1000),
		MarketValue:    number.FromInteger(1000),
	}
	collateral := core.ObligationCollateral{
		ReserveID:       "usdc",
		DepositedAmount: 2000,
		MarketValue:     number.FromInteger(2000),
	}
	o := &core.Obligation{
		BorrowedValue: number.FromInteger(1000),
		Deposits:      core.ObligationCollaterals{collateral},
		Borrows:       core.ObligationLiquidities{liquidity},
	}

	return o, &o.Borrows[0], &o.Deposits[0]
}

func TestMaxLiquidationAmount(t *testing.T) {
	o, liquidity, _ := testLiquidationPosition()

	amount, err := MaxLiquidationAmount(o, liquidity)
	require.Nil(t, err)
	assert.Equal(t, "200", amount.String())
}

func TestCalculateLiquidation(t *testing.T) {
	bonus := Bonus{TotalBonus: number.MustParse("0.05"), ProtocolLiquidationFee: number.Zero()}

	t.Run("capped by close factor", func(t *testing.T) {
		o, liquidity, collateral := testLiquidationPosition()

		result, err := CalculateLiquidation(math.MaxUint64, o, liquidity, collateral, bonus)
		require.Nil(t, err)
		assert.Equal(t, "200", result.SettleAmount.String())
		assert.Equal(t, uint64(200), result.RepayAmount)
		assert.Equal(t, uint64(210), result.WithdrawAmount)

		result, err = CalculateLiquidation(100, o, liquidity, collateral, bonus)
		require.Nil(t, err)
		assert.Equal(t, uint64(100), result.RepayAmount)
		assert.Equal(t, uint64(105), result.WithdrawAmount)
	})

	t.Run("collateral short of the bonus", func(t *testing.T) {
		o, liquidity, collateral := testLiquidationPosition()
		collateral.DepositedAmount = 100
		collateral.MarketValue = number.FromInteger(100)

		result, err := CalculateLiquidation(math.MaxUint64, o, liquidity, collateral, bonus)
		require.Nil(t, err)
		assert.Equal(t, uint64(96), result.RepayAmount)
		assert.Equal(t, uint64(100), result.WithdrawAmount)
		assert.True(t, result.SettleAmount.LessThan(number.FromInteger(96)))
	})

	t.Run("dust closes in full", func(t *testing.T) {
		o, liquidity, collateral := testLiquidationPosition()
		liquidity.BorrowedAmount = number.FromInteger(1)
		liquidity.MarketValue = number.FromInteger(1)
		collateral.DepositedAmount = 2
		collateral.MarketValue = number.FromInteger(2)

		result, err := CalculateLiquidation(math.MaxUint64, o, liquidity, collateral, Bonus{})
		require.Nil(t, err)
		assert.Equal(t, "1", result.SettleAmount.String())
		assert.Equal(t, uint64(1), result.RepayAmount)
		assert.Equal(t, uint64(1), result.WithdrawAmount)

		collateral.DepositedAmount = 5
		collateral.MarketValue = number.FromInteger(1)
		result, err = CalculateLiquidation(math.MaxUint64, o, liquidity, collateral, Bonus{})
		require.Nil(t, err)
		assert.Equal(t, uint64(1), result.RepayAmount)
		assert.Equal(t, uint64(5), result.WithdrawAmount)
	})

	t.Run("bonus above cap", func(t *testing.T) {
		o, liquidity, collateral := testLiquidationPosition()

		_, err := CalculateLiquidation(math.MaxUint64, o, liquidity, collateral, Bonus{TotalBonus: number.MustParse("0.26")})
		assert.Equal(t, core.ErrInvalidAmount, err)
	})
}
