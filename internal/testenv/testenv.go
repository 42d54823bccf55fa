// Package testenv wires in-memory collaborators for service tests
package testenv

import (
	"time"

	"lending/core"
	"lending/service/oracle"
	"lending/service/slot"
	"lending/store/memory"

	"github.com/facebookgo/clock"
)

// Env in-memory stores, ledger, static oracle and a mock slot clock at slot 0
type Env struct {
	Clock       *clock.Mock
	Config      *core.Config
	Markets     *memory.MarketStore
	Reserves    *memory.ReserveStore
	Obligations *memory.ObligationStore
	Ledger      *memory.Ledger
	Slots       core.ISlotService
	Oracle      core.IPriceOracle
	Transactor  core.ITransactor
}

// New fresh environment
func New() *Env {
	cfg := &core.Config{
		App: core.App{SlotDuration: slot.DefaultSlotDuration},
		PriceOracle: core.PriceOracle{
			Static: map[string]core.OraclePrice{},
		},
	}

	clk := clock.NewMock()
	markets := memory.NewMarketStore()
	reserves := memory.NewReserveStore()
	obligations := memory.NewObligationStore()
	ledger := memory.NewLedger()

	return &Env{
		Clock:       clk,
		Config:      cfg,
		Markets:     markets,
		Reserves:    reserves,
		Obligations: obligations,
		Ledger:      ledger,
		Slots:       slot.New(cfg, clk),
		Oracle:      oracle.New(cfg),
		Transactor:  memory.NewTransactor(markets, reserves, obligations, ledger),
	}
}

// SetPrice price of feed, in quote currency per whole token
func (e *Env) SetPrice(feed string, price uint64) {
	e.Config.PriceOracle.Static[feed] = core.OraclePrice{Price: price}
}

// Advance move the clock forward by n slots
func (e *Env) Advance(n int) {
	e.Clock.Add(time.Duration(n) * e.Config.App.SlotDuration)
}

// ReserveConfig valid regular reserve config without fees
func ReserveConfig() core.ReserveConfig {
	return core.ReserveConfig{
		OptimalUtilizationRate:     80,
		MaxUtilizationRate:         90,
		LoanToValueRatio:           50,
		LiquidationBonus:           5,
		MaxLiquidationBonus:        10,
		LiquidationThreshold:       60,
		MaxLiquidationThreshold:    70,
		OptimalBorrowRate:          8,
		MaxBorrowRate:              50,
		SuperMaxBorrowRate:         100,
		DepositLimit:               1_000_000,
		BorrowLimit:                1_000_000,
		ProtocolLiquidationFee:     10,
		ProtocolTakeRate:           10,
		AttributedBorrowLimitOpen:  1_000_000_000,
		AttributedBorrowLimitClose: 1_000_000_000,
	}
}
