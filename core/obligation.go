package core

import (
	"context"
	"database/sql/driver"
	"time"

	"lending/pkg/number"
)

// MaxObligationReserves deposits plus borrows held by one obligation
const MaxObligationReserves = 10

// ObligationCollateral receipt tokens deposited into an obligation
type ObligationCollateral struct {
	ReserveID       string         `json:"reserve_id"`
	DepositedAmount uint64         `json:"deposited_amount"`
	MarketValue     number.Decimal `json:"market_value"`
	// AttributedBorrowValue share of the obligation debt backed by this deposit
	AttributedBorrowValue number.Decimal `json:"attributed_borrow_value"`
}

// Deposit add collateral
func (c *ObligationCollateral) Deposit(amount uint64) error {
	if c.DepositedAmount+amount < c.DepositedAmount {
		return ErrMathOverflow
	}
	c.DepositedAmount += amount
	return nil
}

// Withdraw remove collateral
func (c *ObligationCollateral) Withdraw(amount uint64) error {
	if amount > c.DepositedAmount {
		return ErrMathOverflow
	}
	c.DepositedAmount -= amount
	return nil
}

// ObligationLiquidity liquidity borrowed by an obligation
type ObligationLiquidity struct {
	ReserveID string `json:"reserve_id"`
	// CumulativeBorrowRate reserve index at the last accrual
	CumulativeBorrowRate number.Decimal `json:"cumulative_borrow_rate"`
	BorrowedAmount       number.Decimal `json:"borrowed_amount"`
	MarketValue          number.Decimal `json:"market_value"`
}

// Borrow add debt
func (l *ObligationLiquidity) Borrow(amount number.Decimal) error {
	v, err := l.BorrowedAmount.Add(amount)
	if err != nil {
		return err
	}
	l.BorrowedAmount = v
	return nil
}

// Repay remove settled debt
func (l *ObligationLiquidity) Repay(settle number.Decimal) error {
	v, err := l.BorrowedAmount.Sub(settle)
	if err != nil {
		return err
	}
	l.BorrowedAmount = v
	return nil
}

// AccrueInterest scale debt by the growth of the reserve index
func (l *ObligationLiquidity) AccrueInterest(cumulativeBorrowRate number.Decimal) error {
	switch cumulativeBorrowRate.Cmp(l.CumulativeBorrowRate) {
	case -1:
		return ErrNegativeInterestRate
	case 0:
		return nil
	}

	factor, err := cumulativeBorrowRate.Div(l.CumulativeBorrowRate)
	if err != nil {
		return err
	}

	borrowed, err := l.BorrowedAmount.Mul(factor)
	if err != nil {
		return err
	}

	l.BorrowedAmount = borrowed
	l.CumulativeBorrowRate = cumulativeBorrowRate
	return nil
}

// ObligationCollaterals deposits column
type ObligationCollaterals []ObligationCollateral

func (c ObligationCollaterals) Value() (driver.Value, error) {
	return jsonValue(c)
}

func (c *ObligationCollaterals) Scan(src interface{}) error {
	return jsonScan(src, c)
}

// ObligationLiquidities borrows column
type ObligationLiquidities []ObligationLiquidity

func (l ObligationLiquidities) Value() (driver.Value, error) {
	return jsonValue(l)
}

func (l *ObligationLiquidities) Scan(src interface{}) error {
	return jsonScan(src, l)
}

// Obligation one owner's deposits and borrows in a lending market
type Obligation struct {
	ID         string                `sql:"size:36;PRIMARY_KEY" json:"id"`
	Version    int64                 `sql:"default:0" json:"version"`
	MarketID   string                `sql:"size:36;index:idx_obligations_market" json:"market_id"`
	Owner      string                `sql:"size:64;index:idx_obligations_owner" json:"owner"`
	LastUpdate LastUpdate            `sql:"type:varchar(64)" json:"last_update"`
	Deposits   ObligationCollaterals `sql:"type:text" json:"deposits"`
	Borrows    ObligationLiquidities `sql:"type:text" json:"borrows"`
	// values are in quote currency
	DepositedValue number.Decimal `sql:"type:varchar(96)" json:"deposited_value"`
	// BorrowedValue debt scaled by borrow weights
	BorrowedValue             number.Decimal `sql:"type:varchar(96)" json:"borrowed_value"`
	UnweightedBorrowedValue   number.Decimal `sql:"type:varchar(96)" json:"unweighted_borrowed_value"`
	BorrowedValueUpperBound   number.Decimal `sql:"type:varchar(96)" json:"borrowed_value_upper_bound"`
	AllowedBorrowValue        number.Decimal `sql:"type:varchar(96)" json:"allowed_borrow_value"`
	UnhealthyBorrowValue      number.Decimal `sql:"type:varchar(96)" json:"unhealthy_borrow_value"`
	SuperUnhealthyBorrowValue number.Decimal `sql:"type:varchar(96)" json:"super_unhealthy_borrow_value"`
	BorrowingIsolatedAsset    bool           `json:"borrowing_isolated_asset"`
	Closeable                 bool           `json:"closeable"`
	CreatedAt                 time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt                 time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Clone deep copy, used to stage changes
func (o *Obligation) Clone() *Obligation {
	c := *o
	c.Deposits = append(ObligationCollaterals(nil), o.Deposits...)
	c.Borrows = append(ObligationLiquidities(nil), o.Borrows...)
	return &c
}

// ReserveIDs deposit reserves followed by borrow reserves, the order refresh expects
func (o *Obligation) ReserveIDs() []string {
	ids := make([]string, 0, len(o.Deposits)+len(o.Borrows))
	for _, d := range o.Deposits {
		ids = append(ids, d.ReserveID)
	}
	for _, b := range o.Borrows {
		ids = append(ids, b.ReserveID)
	}
	return ids
}

// FindCollateral index of the deposit backed by reserveID
func (o *Obligation) FindCollateral(reserveID string) (int, error) {
	if len(o.Deposits) == 0 {
		return -1, ErrObligationDepositsEmpty
	}

	for idx := range o.Deposits {
		if o.Deposits[idx].ReserveID == reserveID {
			return idx, nil
		}
	}

	return -1, ErrInvalidObligationCollateral
}

// FindLiquidity index of the borrow from reserveID
func (o *Obligation) FindLiquidity(reserveID string) (int, error) {
	if len(o.Borrows) == 0 {
		return -1, ErrObligationBorrowsEmpty
	}

	for idx := range o.Borrows {
		if o.Borrows[idx].ReserveID == reserveID {
			return idx, nil
		}
	}

	return -1, ErrInvalidObligationLiquidity
}

func (o *Obligation) reserveLimitReached() bool {
	return len(o.Deposits)+len(o.Borrows) >= MaxObligationReserves
}

// FindOrAddCollateral index of the deposit for reserveID, appended when missing
func (o *Obligation) FindOrAddCollateral(reserveID string) (int, error) {
	for idx := range o.Deposits {
		if o.Deposits[idx].ReserveID == reserveID {
			return idx, nil
		}
	}

	if o.reserveLimitReached() {
		return -1, ErrObligationReserveLimit
	}

	o.Deposits = append(o.Deposits, ObligationCollateral{ReserveID: reserveID})
	return len(o.Deposits) - 1, nil
}

// FindOrAddLiquidity index of the borrow from reserveID, appended when missing
func (o *Obligation) FindOrAddLiquidity(reserveID string, cumulativeBorrowRate number.Decimal) (int, error) {
	for idx := range o.Borrows {
		if o.Borrows[idx].ReserveID == reserveID {
			return idx, nil
		}
	}

	if o.reserveLimitReached() {
		return -1, ErrObligationReserveLimit
	}

	o.Borrows = append(o.Borrows, ObligationLiquidity{
		ReserveID:            reserveID,
		CumulativeBorrowRate: cumulativeBorrowRate,
	})
	return len(o.Borrows) - 1, nil
}

// WithdrawCollateral remove collateral, dropping the deposit at zero
func (o *Obligation) WithdrawCollateral(idx int, amount uint64) error {
	c := &o.Deposits[idx]
	if amount == c.DepositedAmount {
		o.Deposits = append(o.Deposits[:idx], o.Deposits[idx+1:]...)
		return nil
	}

	return c.Withdraw(amount)
}

// RepayLiquidity settle debt, dropping the borrow at zero
func (o *Obligation) RepayLiquidity(idx int, settle number.Decimal) error {
	l := &o.Borrows[idx]
	if settle.Equal(l.BorrowedAmount) {
		o.Borrows = append(o.Borrows[:idx], o.Borrows[idx+1:]...)
		return nil
	}

	return l.Repay(settle)
}

// IObligationStore obligation store interface
type IObligationStore interface {
	Create(ctx context.Context, obligation *Obligation) error
	Find(ctx context.Context, id string) (*Obligation, error)
	ListByOwner(ctx context.Context, marketID, owner string) ([]*Obligation, error)
	// Update optimistic update, bumps Version
	Update(ctx context.Context, obligation *Obligation) error
}

// InitObligationParams init_obligation arguments
type InitObligationParams struct {
	Signer   string `json:"signer"`
	MarketID string `json:"market_id"`
}

// ObligationCollateralParams deposit/withdraw obligation collateral arguments
type ObligationCollateralParams struct {
	Signer       string `json:"signer"`
	ObligationID string `json:"obligation_id"`
	ReserveID    string `json:"reserve_id"`
	// Source ledger account paying collateral on deposit
	Source string `json:"source"`
	// Destination ledger account receiving collateral on withdraw
	Destination string `json:"destination"`
	Amount      uint64 `json:"amount"`
}

// ObligationLiquidityParams borrow/repay arguments, math.MaxUint64 means maximum
type ObligationLiquidityParams struct {
	Signer       string `json:"signer"`
	ObligationID string `json:"obligation_id"`
	ReserveID    string `json:"reserve_id"`
	Source       string `json:"source"`
	Destination  string `json:"destination"`
	// HostFeeReceiver optional ledger account receiving the host fee on borrow
	HostFeeReceiver string `json:"host_fee_receiver,omitempty"`
	Amount          uint64 `json:"amount"`
}

// LiquidateObligationParams liquidate_obligation arguments, math.MaxUint64 means maximum
type LiquidateObligationParams struct {
	Signer            string `json:"signer"`
	ObligationID      string `json:"obligation_id"`
	RepayReserveID    string `json:"repay_reserve_id"`
	WithdrawReserveID string `json:"withdraw_reserve_id"`
	// Source ledger account paying the repay liquidity
	Source string `json:"source"`
	// Destination ledger account receiving the seized collateral
	Destination string `json:"destination"`
	Amount      uint64 `json:"amount"`
}

// LiquidationOutput amounts moved by a liquidation
type LiquidationOutput struct {
	RepayAmount        uint64 `json:"repay_amount"`
	WithdrawAmount     uint64 `json:"withdraw_amount"`
	ProtocolFee        uint64 `json:"protocol_fee"`
	LiquidatorReceived uint64 `json:"liquidator_received"`
}

// IObligationService obligation operations
type IObligationService interface {
	Init(ctx context.Context, params InitObligationParams) (*Obligation, error)
	Refresh(ctx context.Context, obligationID string) (*Obligation, error)
	DepositCollateral(ctx context.Context, params ObligationCollateralParams) error
	// WithdrawCollateral returns the withdrawn collateral amount
	WithdrawCollateral(ctx context.Context, params ObligationCollateralParams) (uint64, error)
	// Borrow returns the amount received after fees
	Borrow(ctx context.Context, params ObligationLiquidityParams) (uint64, error)
	// Repay returns the amount repaid
	Repay(ctx context.Context, params ObligationLiquidityParams) (uint64, error)
	Liquidate(ctx context.Context, params LiquidateObligationParams) (*LiquidationOutput, error)
}
