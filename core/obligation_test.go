package core

import (
	"fmt"
	"testing"

	"lending/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObligationReserveLimit(t *testing.T) {
	o := &Obligation{}

	for i := 0; i < MaxObligationReserves/2; i++ {
		idx, err := o.FindOrAddCollateral(fmt.Sprintf("deposit-%d", i))
		require.Nil(t, err)
		assert.Equal(t, i, idx)

		idx, err = o.FindOrAddLiquidity(fmt.Sprintf("borrow-%d", i), number.One())
		require.Nil(t, err)
		assert.Equal(t, i, idx)
	}

	// existing positions are still found
	idx, err := o.FindOrAddCollateral("deposit-2")
	require.Nil(t, err)
	assert.Equal(t, 2, idx)

	_, err = o.FindOrAddCollateral("deposit-new")
	assert.Equal(t, ErrObligationReserveLimit, err)

	_, err = o.FindOrAddLiquidity("borrow-new", number.One())
	assert.Equal(t, ErrObligationReserveLimit, err)

	assert.Len(t, o.ReserveIDs(), MaxObligationReserves)
	assert.Equal(t, "deposit-0", o.ReserveIDs()[0])
	assert.Equal(t, "borrow-0", o.ReserveIDs()[MaxObligationReserves/2])
}

func TestObligationFind(t *testing.T) {
	o := &Obligation{}

	_, err := o.FindCollateral("usdc")
	assert.Equal(t, ErrObligationDepositsEmpty, err)

	_, err = o.FindLiquidity("usdc")
	assert.Equal(t, ErrObligationBorrowsEmpty, err)

	o.Deposits = ObligationCollaterals{{ReserveID: "usdc"}}
	o.Borrows = ObligationLiquidities{{ReserveID: "sol"}}

	_, err = o.FindCollateral("sol")
	assert.Equal(t, ErrInvalidObligationCollateral, err)

	_, err = o.FindLiquidity("usdc")
	assert.Equal(t, ErrInvalidObligationLiquidity, err)
}

func TestObligationWithdrawAndRepay(t *testing.T) {
	o := &Obligation{
		Deposits: ObligationCollaterals{
			{ReserveID: "usdc", DepositedAmount: 100},
			{ReserveID: "eth", DepositedAmount: 5},
		},
		Borrows: ObligationLiquidities{
			{ReserveID: "sol", BorrowedAmount: number.MustParse("10.5")},
		},
	}

	require.Nil(t, o.WithdrawCollateral(0, 40))
	assert.Equal(t, uint64(60), o.Deposits[0].DepositedAmount)

	require.Nil(t, o.WithdrawCollateral(0, 60))
	require.Len(t, o.Deposits, 1)
	assert.Equal(t, "eth", o.Deposits[0].ReserveID)

	assert.Equal(t, ErrMathOverflow, o.WithdrawCollateral(0, 6))

	require.Nil(t, o.RepayLiquidity(0, number.FromInteger(10)))
	assert.Equal(t, "0.5", o.Borrows[0].BorrowedAmount.String())

	require.Nil(t, o.RepayLiquidity(0, number.MustParse("0.5")))
	assert.Empty(t, o.Borrows)
}

func TestObligationLiquidityAccrueInterest(t *testing.T) {
	l := ObligationLiquidity{
		CumulativeBorrowRate: number.One(),
		BorrowedAmount:       number.FromInteger(100),
	}

	require.Nil(t, l.AccrueInterest(number.MustParse("1.1")))
	assert.Equal(t, "110", l.BorrowedAmount.String())
	assert.Equal(t, "1.1", l.CumulativeBorrowRate.String())

	assert.Equal(t, ErrNegativeInterestRate, l.AccrueInterest(number.One()))
}

func TestObligationClone(t *testing.T) {
	o := &Obligation{
		Deposits: ObligationCollaterals{{ReserveID: "usdc", DepositedAmount: 1}},
	}

	c := o.Clone()
	c.Deposits[0].DepositedAmount = 2
	assert.Equal(t, uint64(1), o.Deposits[0].DepositedAmount)
}
