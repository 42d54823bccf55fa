package obligation

import (
	"context"

	"lending/core"
	"lending/pkg/compound"
	"lending/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/uuid"
)

type service struct {
	marketStore     core.IMarketStore
	reserveStore    core.IReserveStore
	obligationStore core.IObligationStore
	ledger          core.ITokenLedger
	slotSrv         core.ISlotService
	transactor      core.ITransactor
}

// New new obligation service
func New(
	marketStr core.IMarketStore,
	reserveStr core.IReserveStore,
	obligationStr core.IObligationStore,
	ledger core.ITokenLedger,
	slotSrv core.ISlotService,
	transactor core.ITransactor,
) core.IObligationService {
	return &service{
		marketStore:     marketStr,
		reserveStore:    reserveStr,
		obligationStore: obligationStr,
		ledger:          ledger,
		slotSrv:         slotSrv,
		transactor:      transactor,
	}
}

func requireFresh(last core.LastUpdate, slot uint64, errStale error) error {
	stale, e := last.IsStale(slot)
	if e != nil {
		return e
	}

	if stale {
		return errStale
	}

	return nil
}

func (s *service) findOwned(ctx context.Context, id, signer string) (*core.Obligation, error) {
	o, e := s.obligationStore.Find(ctx, id)
	if e != nil {
		return nil, e
	}

	if o.Owner != signer {
		return nil, core.ErrObligationNotOwnedBySigner
	}

	return o, nil
}

// Init open an empty obligation for the signer
func (s *service) Init(ctx context.Context, params core.InitObligationParams) (*core.Obligation, error) {
	log := logger.FromContext(ctx).WithField("service", "init_obligation")

	if params.Signer == "" {
		return nil, core.ErrInvalidArgument
	}

	market, e := s.marketStore.Find(ctx, params.MarketID)
	if e != nil {
		return nil, e
	}

	slot, e := s.slotSrv.CurrentSlot(ctx)
	if e != nil {
		return nil, e
	}

	obligation := &core.Obligation{
		ID:         uuid.New(),
		MarketID:   market.ID,
		Owner:      params.Signer,
		LastUpdate: core.NewLastUpdate(slot),
	}

	if e := s.obligationStore.Create(ctx, obligation); e != nil {
		log.WithError(e).Errorln("create obligation error")
		return nil, e
	}

	log.Infoln("obligation created:", obligation.ID, ":owner:", obligation.Owner)
	return obligation, nil
}

// Refresh revalue the obligation against its reserves, which must have been refreshed in the current slot
func (s *service) Refresh(ctx context.Context, obligationID string) (*core.Obligation, error) {
	log := logger.FromContext(ctx).WithField("service", "refresh_obligation")

	var obligation *core.Obligation
	e := s.transactor.Tx(ctx, func(ctx context.Context) error {
		o, e := s.obligationStore.Find(ctx, obligationID)
		if e != nil {
			return e
		}

		slot, e := s.slotSrv.CurrentSlot(ctx)
		if e != nil {
			return e
		}

		set := newReserveSet(s.reserveStore)
		reserves, e := set.list(ctx, o.ReserveIDs())
		if e != nil {
			return e
		}

		depositReserves := reserves[:len(o.Deposits)]
		if e := compound.RefreshObligation(o, reserves, slot); e != nil {
			return e
		}

		if e := set.save(ctx, depositReserves...); e != nil {
			return e
		}

		if e := s.obligationStore.Update(ctx, o); e != nil {
			return e
		}

		obligation = o
		return nil
	})
	if e != nil {
		log.WithError(e).Infoln("refresh rejected")
		return nil, e
	}

	return obligation, nil
}

// DepositCollateral move receipt tokens from params.Source into the obligation
func (s *service) DepositCollateral(ctx context.Context, params core.ObligationCollateralParams) error {
	log := logger.FromContext(ctx).WithField("service", "deposit_obligation_collateral")

	if params.Amount == 0 {
		return core.ErrInvalidAmount
	}

	e := s.transactor.Tx(ctx, func(ctx context.Context) error {
		o, e := s.findOwned(ctx, params.ObligationID, params.Signer)
		if e != nil {
			return e
		}

		reserve, e := s.reserveStore.Find(ctx, params.ReserveID)
		if e != nil {
			return e
		}

		if reserve.MarketID != o.MarketID {
			return core.ErrInvalidLendingMarketAccount
		}

		if params.Source == "" || params.Source == reserve.Collateral.SupplyID {
			return core.ErrInvalidArgument
		}

		slot, e := s.slotSrv.CurrentSlot(ctx)
		if e != nil {
			return e
		}

		if e := compound.RefreshReserveInterest(reserve, slot); e != nil {
			return e
		}

		// more collateral in a reserve past its open limit would attribute more debt to it
		if len(o.Borrows) > 0 && reserve.AttributedBorrowValue.GreaterThan(number.FromInteger(reserve.Config.AttributedBorrowLimitOpen)) {
			return core.ErrBorrowAttributionLimitExceeded
		}

		idx, e := o.FindOrAddCollateral(reserve.ID)
		if e != nil {
			return e
		}

		if e := o.Deposits[idx].Deposit(params.Amount); e != nil {
			return e
		}

		o.LastUpdate.MarkStale()
		reserve.LastUpdate.MarkStale()

		if e := s.reserveStore.Update(ctx, reserve); e != nil {
			return e
		}

		if e := s.obligationStore.Update(ctx, o); e != nil {
			return e
		}

		return s.ledger.Transfer(ctx, reserve.Collateral.MintID, params.Source, reserve.Collateral.SupplyID, params.Amount)
	})
	if e != nil {
		log.WithError(e).Infoln("deposit rejected")
		return e
	}

	log.Infoln("deposit collateral, obligation:", params.ObligationID, ":reserve:", params.ReserveID, ":amount:", params.Amount)
	return nil
}

// WithdrawCollateral move receipt tokens out of the obligation to
// params.Destination, at most what keeps the obligation within its allowed
// borrow value. math.MaxUint64 withdraws the maximum.
func (s *service) WithdrawCollateral(ctx context.Context, params core.ObligationCollateralParams) (uint64, error) {
	log := logger.FromContext(ctx).WithField("service", "withdraw_obligation_collateral")

	if params.Amount == 0 {
		return 0, core.ErrInvalidAmount
	}

	var amount uint64
	e := s.transactor.Tx(ctx, func(ctx context.Context) error {
		o, e := s.findOwned(ctx, params.ObligationID, params.Signer)
		if e != nil {
			return e
		}

		set := newReserveSet(s.reserveStore)
		reserve, e := set.get(ctx, params.ReserveID)
		if e != nil {
			return e
		}

		if reserve.MarketID != o.MarketID {
			return core.ErrInvalidLendingMarketAccount
		}

		if params.Destination == "" || params.Destination == reserve.Collateral.SupplyID {
			return core.ErrInvalidArgument
		}

		slot, e := s.slotSrv.CurrentSlot(ctx)
		if e != nil {
			return e
		}

		if len(o.Borrows) > 0 {
			if e := requireFresh(reserve.LastUpdate, slot, core.ErrReserveStale); e != nil {
				return e
			}

			if e := requireFresh(o.LastUpdate, slot, core.ErrObligationStale); e != nil {
				return e
			}
		}

		idx, e := o.FindCollateral(reserve.ID)
		if e != nil {
			return e
		}

		collateral := &o.Deposits[idx]
		if collateral.DepositedAmount == 0 {
			return core.ErrObligationCollateralEmpty
		}

		maxAmount, e := compound.MaxWithdrawAmount(o, collateral, reserve)
		if e != nil {
			return e
		}

		if amount = params.Amount; amount > maxAmount {
			amount = maxAmount
		}

		if amount == 0 {
			return core.ErrWithdrawTooLarge
		}

		rate, e := compound.ExchangeRate(reserve)
		if e != nil {
			return e
		}

		liquidity, e := rate.DecimalCollateralToLiquidity(number.FromInteger(amount))
		if e != nil {
			return e
		}

		value, e := compound.MarketValue(reserve, liquidity)
		if e != nil {
			return e
		}

		o.DepositedValue = o.DepositedValue.SaturatingSub(value)
		collateral.MarketValue = collateral.MarketValue.SaturatingSub(value)

		depositReserves, e := set.deposits(ctx, o)
		if e != nil {
			return e
		}

		attribution, e := compound.UpdateBorrowAttribution(o, depositReserves)
		if e != nil {
			return e
		}

		if attribution.CloseExceeded != "" {
			log.Infoln("close attribution limit exceeded:", attribution.CloseExceeded)
			return core.ErrBorrowAttributionLimitExceeded
		}

		if e := o.WithdrawCollateral(idx, amount); e != nil {
			return e
		}

		o.LastUpdate.MarkStale()

		if e := set.save(ctx, depositReserves...); e != nil {
			return e
		}

		if e := s.obligationStore.Update(ctx, o); e != nil {
			return e
		}

		return s.ledger.Transfer(ctx, reserve.Collateral.MintID, reserve.Collateral.SupplyID, params.Destination, amount)
	})
	if e != nil {
		log.WithError(e).Infoln("withdraw rejected")
		return 0, e
	}

	log.Infoln("withdraw collateral, obligation:", params.ObligationID, ":reserve:", params.ReserveID, ":amount:", amount)
	return amount, nil
}

// checkIsolatedTier an isolated asset is only ever borrowed alone
func checkIsolatedTier(o *core.Obligation, reserve *core.Reserve) error {
	alone := len(o.Borrows) == 0 || (len(o.Borrows) == 1 && o.Borrows[0].ReserveID == reserve.ID)
	if alone {
		return nil
	}

	if o.BorrowingIsolatedAsset || reserve.Config.ReserveType == core.ReserveTypeIsolated {
		return core.ErrIsolatedTierAssetViolation
	}

	return nil
}

// Borrow take liquidity against the obligation's collateral, paying the
// borrow fee to the fee receiver and the host fee to params.HostFeeReceiver.
// math.MaxUint64 borrows the maximum.
func (s *service) Borrow(ctx context.Context, params core.ObligationLiquidityParams) (uint64, error) {
	log := logger.FromContext(ctx).WithField("service", "borrow_obligation_liquidity")

	if params.Amount == 0 {
		return 0, core.ErrInvalidAmount
	}

	var result *compound.BorrowResult
	e := s.transactor.Tx(ctx, func(ctx context.Context) error {
		o, e := s.findOwned(ctx, params.ObligationID, params.Signer)
		if e != nil {
			return e
		}

		set := newReserveSet(s.reserveStore)
		reserve, e := set.get(ctx, params.ReserveID)
		if e != nil {
			return e
		}

		if reserve.MarketID != o.MarketID {
			return core.ErrInvalidLendingMarketAccount
		}

		if params.Destination == "" || params.Destination == reserve.Liquidity.SupplyID {
			return core.ErrInvalidArgument
		}

		market, e := s.marketStore.Find(ctx, o.MarketID)
		if e != nil {
			return e
		}

		slot, e := s.slotSrv.CurrentSlot(ctx)
		if e != nil {
			return e
		}

		if e := requireFresh(reserve.LastUpdate, slot, core.ErrReserveStale); e != nil {
			return e
		}

		if e := requireFresh(o.LastUpdate, slot, core.ErrObligationStale); e != nil {
			return e
		}

		if len(o.Deposits) == 0 {
			return core.ErrObligationDepositsEmpty
		}

		if e := checkIsolatedTier(o, reserve); e != nil {
			return e
		}

		remaining := compound.RemainingBorrowValue(o)
		if remaining.IsZero() {
			return core.ErrBorrowTooLarge
		}

		reserveRemaining := number.FromInteger(reserve.Config.BorrowLimit).SaturatingSub(reserve.Liquidity.BorrowedAmount)
		if result, e = compound.CalculateBorrow(reserve, params.Amount, remaining, reserveRemaining); e != nil {
			return e
		}

		if result.ReceiveAmount == 0 {
			return core.ErrBorrowTooSmall
		}

		borrowed, e := reserve.Liquidity.BorrowedAmount.Add(result.BorrowAmount)
		if e != nil {
			return e
		}

		if borrowed.GreaterThan(number.FromInteger(reserve.Config.BorrowLimit)) {
			return core.ErrBorrowedOverLimit
		}

		if e := compound.ChargeOutflow(market, reserve, slot, result.BorrowAmount); e != nil {
			return e
		}

		if e := compound.BorrowLiquidity(&reserve.Liquidity, result.BorrowAmount); e != nil {
			return e
		}

		idx, e := o.FindOrAddLiquidity(reserve.ID, reserve.Liquidity.CumulativeBorrowRate)
		if e != nil {
			return e
		}

		liquidity := &o.Borrows[idx]
		if e := liquidity.Borrow(result.BorrowAmount); e != nil {
			return e
		}

		if e := addBorrowValue(o, liquidity, reserve, result.BorrowAmount); e != nil {
			return e
		}

		depositReserves, e := set.deposits(ctx, o)
		if e != nil {
			return e
		}

		attribution, e := compound.UpdateBorrowAttribution(o, depositReserves)
		if e != nil {
			return e
		}

		if attribution.OpenExceeded != "" {
			log.Infoln("open attribution limit exceeded:", attribution.OpenExceeded)
			return core.ErrBorrowAttributionLimitExceeded
		}

		if reserve.Config.ReserveType == core.ReserveTypeIsolated {
			o.BorrowingIsolatedAsset = true
		}

		o.LastUpdate.MarkStale()
		reserve.LastUpdate.MarkStale()

		if e := set.save(ctx, append(depositReserves, reserve)...); e != nil {
			return e
		}

		if e := s.marketStore.Update(ctx, market); e != nil {
			return e
		}

		if e := s.obligationStore.Update(ctx, o); e != nil {
			return e
		}

		return s.payBorrow(ctx, reserve, params, result)
	})
	if e != nil {
		log.WithError(e).Infoln("borrow rejected")
		return 0, e
	}

	log.Infoln("borrow, obligation:", params.ObligationID, ":reserve:", params.ReserveID, ":receive:", result.ReceiveAmount, ":fee:", result.BorrowFee)
	return result.ReceiveAmount, nil
}

// addBorrowValue raise the obligation's borrowed values by the value of a new borrow
func addBorrowValue(o *core.Obligation, liquidity *core.ObligationLiquidity, reserve *core.Reserve, amount number.Decimal) error {
	value, e := compound.MarketValue(reserve, amount)
	if e != nil {
		return e
	}

	upperBound, e := compound.MarketValueUpperBound(reserve, amount)
	if e != nil {
		return e
	}

	weight, e := compound.BorrowWeight(&reserve.Config)
	if e != nil {
		return e
	}

	weighted, e := value.Mul(weight)
	if e != nil {
		return e
	}

	weightedUpper, e := upperBound.Mul(weight)
	if e != nil {
		return e
	}

	if o.BorrowedValue, e = o.BorrowedValue.Add(weighted); e != nil {
		return e
	}

	if o.BorrowedValueUpperBound, e = o.BorrowedValueUpperBound.Add(weightedUpper); e != nil {
		return e
	}

	if o.UnweightedBorrowedValue, e = o.UnweightedBorrowedValue.Add(value); e != nil {
		return e
	}

	liquidity.MarketValue, e = liquidity.MarketValue.Add(value)
	return e
}

func (s *service) payBorrow(ctx context.Context, reserve *core.Reserve, params core.ObligationLiquidityParams, result *compound.BorrowResult) error {
	mint, supply := reserve.Liquidity.MintID, reserve.Liquidity.SupplyID

	protocolFee := result.BorrowFee
	if params.HostFeeReceiver != "" && result.HostFee > 0 {
		protocolFee -= result.HostFee
		if e := s.ledger.Transfer(ctx, mint, supply, params.HostFeeReceiver, result.HostFee); e != nil {
			return e
		}
	}

	if protocolFee > 0 {
		if e := s.ledger.Transfer(ctx, mint, supply, reserve.Config.FeeReceiver, protocolFee); e != nil {
			return e
		}
	}

	return s.ledger.Transfer(ctx, mint, supply, params.Destination, result.ReceiveAmount)
}

// Repay pay back debt from params.Source. Anyone may repay any obligation;
// math.MaxUint64 repays everything.
func (s *service) Repay(ctx context.Context, params core.ObligationLiquidityParams) (uint64, error) {
	log := logger.FromContext(ctx).WithField("service", "repay_obligation_liquidity")

	if params.Amount == 0 {
		return 0, core.ErrInvalidAmount
	}

	var result *compound.RepayResult
	e := s.transactor.Tx(ctx, func(ctx context.Context) error {
		o, e := s.obligationStore.Find(ctx, params.ObligationID)
		if e != nil {
			return e
		}

		reserve, e := s.reserveStore.Find(ctx, params.ReserveID)
		if e != nil {
			return e
		}

		if reserve.MarketID != o.MarketID {
			return core.ErrInvalidLendingMarketAccount
		}

		if params.Source == "" || params.Source == reserve.Liquidity.SupplyID {
			return core.ErrInvalidArgument
		}

		slot, e := s.slotSrv.CurrentSlot(ctx)
		if e != nil {
			return e
		}

		if e := compound.RefreshReserveInterest(reserve, slot); e != nil {
			return e
		}

		idx, e := o.FindLiquidity(reserve.ID)
		if e != nil {
			return e
		}

		liquidity := &o.Borrows[idx]
		if e := liquidity.AccrueInterest(reserve.Liquidity.CumulativeBorrowRate); e != nil {
			return e
		}

		if result, e = compound.CalculateRepay(params.Amount, liquidity.BorrowedAmount); e != nil {
			return e
		}

		if result.RepayAmount == 0 {
			return core.ErrRepayTooSmall
		}

		if e := compound.RepayLiquidity(&reserve.Liquidity, result.RepayAmount, result.SettleAmount); e != nil {
			return e
		}

		if e := o.RepayLiquidity(idx, result.SettleAmount); e != nil {
			return e
		}

		o.LastUpdate.MarkStale()
		reserve.LastUpdate.MarkStale()

		if e := s.reserveStore.Update(ctx, reserve); e != nil {
			return e
		}

		if e := s.obligationStore.Update(ctx, o); e != nil {
			return e
		}

		return s.ledger.Transfer(ctx, reserve.Liquidity.MintID, params.Source, reserve.Liquidity.SupplyID, result.RepayAmount)
	})
	if e != nil {
		log.WithError(e).Infoln("repay rejected")
		return 0, e
	}

	log.Infoln("repay, obligation:", params.ObligationID, ":reserve:", params.ReserveID, ":amount:", result.RepayAmount)
	return result.RepayAmount, nil
}

// Liquidate repay debt of an unhealthy obligation and seize its collateral
// plus the bonus. The protocol liquidation fee is paid in collateral to the
// withdraw reserve's fee receiver.
func (s *service) Liquidate(ctx context.Context, params core.LiquidateObligationParams) (*core.LiquidationOutput, error) {
	log := logger.FromContext(ctx).WithField("service", "liquidate_obligation")

	if params.Amount == 0 {
		return nil, core.ErrInvalidAmount
	}

	var output core.LiquidationOutput
	e := s.transactor.Tx(ctx, func(ctx context.Context) error {
		o, e := s.obligationStore.Find(ctx, params.ObligationID)
		if e != nil {
			return e
		}

		market, e := s.marketStore.Find(ctx, o.MarketID)
		if e != nil {
			return e
		}

		if market.WhitelistedLiquidator != "" && params.Signer != market.WhitelistedLiquidator {
			return core.ErrNotWhitelistedLiquidator
		}

		set := newReserveSet(s.reserveStore)
		repayReserve, e := set.get(ctx, params.RepayReserveID)
		if e != nil {
			return e
		}

		withdrawReserve, e := set.get(ctx, params.WithdrawReserveID)
		if e != nil {
			return e
		}

		if repayReserve.MarketID != o.MarketID || withdrawReserve.MarketID != o.MarketID {
			return core.ErrInvalidLendingMarketAccount
		}

		if params.Source == "" || params.Source == repayReserve.Liquidity.SupplyID ||
			params.Destination == "" || params.Destination == withdrawReserve.Collateral.SupplyID {
			return core.ErrInvalidArgument
		}

		slot, e := s.slotSrv.CurrentSlot(ctx)
		if e != nil {
			return e
		}

		for _, r := range []*core.Reserve{repayReserve, withdrawReserve} {
			if e := requireFresh(r.LastUpdate, slot, core.ErrReserveStale); e != nil {
				return e
			}
		}

		if e := requireFresh(o.LastUpdate, slot, core.ErrObligationStale); e != nil {
			return e
		}

		liquidityIdx, e := o.FindLiquidity(repayReserve.ID)
		if e != nil {
			return e
		}

		collateralIdx, e := o.FindCollateral(withdrawReserve.ID)
		if e != nil {
			return e
		}

		bonus, e := compound.CalculateBonus(&withdrawReserve.Config, o)
		if e != nil {
			return e
		}

		result, e := compound.CalculateLiquidation(params.Amount, o, &o.Borrows[liquidityIdx], &o.Deposits[collateralIdx], bonus)
		if e != nil {
			return e
		}

		if result.RepayAmount == 0 || result.WithdrawAmount == 0 {
			return core.ErrLiquidationTooSmall
		}

		protocolFee, e := compound.CalculateProtocolLiquidationFee(&withdrawReserve.Config, result.WithdrawAmount, bonus)
		if e != nil {
			return e
		}

		if e := compound.RepayLiquidity(&repayReserve.Liquidity, result.RepayAmount, result.SettleAmount); e != nil {
			return e
		}

		if e := o.RepayLiquidity(liquidityIdx, result.SettleAmount); e != nil {
			return e
		}

		// a seized deposit leaves the obligation, so does its attribution
		if collateral := &o.Deposits[collateralIdx]; result.WithdrawAmount == collateral.DepositedAmount {
			withdrawReserve.AttributedBorrowValue = withdrawReserve.AttributedBorrowValue.SaturatingSub(collateral.AttributedBorrowValue)
		}

		if e := o.WithdrawCollateral(collateralIdx, result.WithdrawAmount); e != nil {
			return e
		}

		o.LastUpdate.MarkStale()
		repayReserve.LastUpdate.MarkStale()
		withdrawReserve.LastUpdate.MarkStale()

		if e := set.save(ctx, repayReserve, withdrawReserve); e != nil {
			return e
		}

		if e := s.obligationStore.Update(ctx, o); e != nil {
			return e
		}

		if e := s.ledger.Transfer(ctx, repayReserve.Liquidity.MintID, params.Source, repayReserve.Liquidity.SupplyID, result.RepayAmount); e != nil {
			return e
		}

		mint, supply := withdrawReserve.Collateral.MintID, withdrawReserve.Collateral.SupplyID
		if protocolFee > 0 {
			if e := s.ledger.Transfer(ctx, mint, supply, withdrawReserve.Config.FeeReceiver, protocolFee); e != nil {
				return e
			}
		}

		output = core.LiquidationOutput{
			RepayAmount:        result.RepayAmount,
			WithdrawAmount:     result.WithdrawAmount,
			ProtocolFee:        protocolFee,
			LiquidatorReceived: result.WithdrawAmount - protocolFee,
		}

		return s.ledger.Transfer(ctx, mint, supply, params.Destination, output.LiquidatorReceived)
	})
	if e != nil {
		log.WithError(e).Infoln("liquidation rejected")
		return nil, e
	}

	log.Infoln("liquidate, obligation:", params.ObligationID, ":repay:", output.RepayAmount, ":withdraw:", output.WithdrawAmount)
	return &output, nil
}

