package reserve

import (
	"context"

	"lending/core"
	"lending/pkg/compound"
	"lending/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/uuid"
)

// MaxMintDecimals largest token precision a reserve accepts
const MaxMintDecimals = 18

type service struct {
	marketStore  core.IMarketStore
	reserveStore core.IReserveStore
	ledger       core.ITokenLedger
	oracle       core.IPriceOracle
	slotSrv      core.ISlotService
	transactor   core.ITransactor
}

// New new reserve service
func New(
	marketStr core.IMarketStore,
	reserveStr core.IReserveStore,
	ledger core.ITokenLedger,
	oracle core.IPriceOracle,
	slotSrv core.ISlotService,
	transactor core.ITransactor,
) core.IReserveService {
	return &service{
		marketStore:  marketStr,
		reserveStore: reserveStr,
		ledger:       ledger,
		oracle:       oracle,
		slotSrv:      slotSrv,
		transactor:   transactor,
	}
}

// pullPrices read the primary and the optional extra oracle price into r
func (s *service) pullPrices(ctx context.Context, r *core.Reserve) error {
	primary, e := s.oracle.GetPrice(ctx, r.Liquidity.OracleFeedID)
	if e != nil {
		return e
	}

	var extra *core.OraclePrice
	if id := r.Config.ExtraOracleFeedID; id != "" {
		if extra, e = s.oracle.GetPrice(ctx, id); e != nil {
			return e
		}
	}

	return compound.SetPrices(r, primary, extra)
}

// Init create a reserve in the market, seeding it with the initial liquidity if any
func (s *service) Init(ctx context.Context, params core.InitReserveParams) (*core.Reserve, error) {
	log := logger.FromContext(ctx).WithField("service", "init_reserve")

	if params.LiquidityMintID == "" || params.OracleFeedID == "" || params.MintDecimals > MaxMintDecimals {
		return nil, core.ErrInvalidArgument
	}

	if params.InitialLiquidity > 0 && (params.Source == "" || params.Destination == "") {
		return nil, core.ErrInvalidArgument
	}

	if e := compound.ValidateReserveConfig(&params.Config); e != nil {
		return nil, e
	}

	market, e := s.marketStore.Find(ctx, params.MarketID)
	if e != nil {
		return nil, e
	}

	if params.Signer != market.Owner {
		return nil, core.ErrUnauthorized
	}

	slot, e := s.slotSrv.CurrentSlot(ctx)
	if e != nil {
		return nil, e
	}

	id := uuid.New()
	reserve := &core.Reserve{
		ID:         id,
		MarketID:   market.ID,
		LastUpdate: core.NewLastUpdate(slot),
		Liquidity: core.ReserveLiquidity{
			MintID:               params.LiquidityMintID,
			MintDecimals:         params.MintDecimals,
			SupplyID:             uuid.Modify(id, "liquidity_supply"),
			OracleFeedID:         params.OracleFeedID,
			CumulativeBorrowRate: number.One(),
		},
		Collateral: core.ReserveCollateral{
			MintID:   uuid.Modify(id, "collateral_mint"),
			SupplyID: uuid.Modify(id, "collateral_supply"),
		},
		Config:      params.Config,
		RateLimiter: core.NewRateLimiter(params.RateLimiter, slot),
	}

	if reserve.Config.FeeReceiver == "" {
		reserve.Config.FeeReceiver = uuid.Modify(id, "fee_receiver")
	}

	if e := s.pullPrices(ctx, reserve); e != nil {
		log.WithError(e).Errorln("pull prices error")
		return nil, e
	}

	var collateral uint64
	if params.InitialLiquidity > 0 {
		if collateral, e = compound.DepositLiquidity(reserve, params.InitialLiquidity); e != nil {
			return nil, e
		}
	}

	e = s.transactor.Tx(ctx, func(ctx context.Context) error {
		if e := s.reserveStore.Create(ctx, reserve); e != nil {
			return e
		}

		if params.InitialLiquidity == 0 {
			return nil
		}

		if e := s.ledger.Transfer(ctx, reserve.Liquidity.MintID, params.Source, reserve.Liquidity.SupplyID, params.InitialLiquidity); e != nil {
			return e
		}

		// the market is the mint authority of every receipt token it issues
		return s.ledger.Mint(ctx, reserve.Collateral.MintID, params.Destination, collateral, market.ID)
	})
	if e != nil {
		log.WithError(e).Errorln("create reserve error")
		return nil, e
	}

	log.Infoln("reserve created:", reserve.ID, ":market:", market.ID, ":mint:", reserve.Liquidity.MintID)
	return reserve, nil
}

// UpdateConfig apply a new config under the signer's authority over the market
func (s *service) UpdateConfig(ctx context.Context, params core.UpdateReserveConfigParams) (*core.Reserve, error) {
	log := logger.FromContext(ctx).WithField("service", "update_reserve_config")

	if e := compound.ValidateReserveConfig(&params.Config); e != nil {
		return nil, e
	}

	market, e := s.marketStore.Find(ctx, params.MarketID)
	if e != nil {
		return nil, e
	}

	reserve, e := s.reserveStore.Find(ctx, params.ReserveID)
	if e != nil {
		return nil, e
	}

	if reserve.MarketID != market.ID {
		return nil, core.ErrInvalidReserveLendingMarketMatch
	}

	slot, e := s.slotSrv.CurrentSlot(ctx)
	if e != nil {
		return nil, e
	}

	old, next := reserve.Config, params.Config
	switch signer := params.Signer; {
	case signer == market.FeeAuthority && signer != market.Owner:
		reserve.Config = old.WithFees(next)
	case signer == market.Owner:
		if signer != market.FeeAuthority && !next.SameFees(old) {
			return nil, core.ErrUnauthorizedFeeChange
		}

		reserve.Config = next
		if params.RateLimiter != reserve.RateLimiter.Config {
			reserve.RateLimiter = core.NewRateLimiter(params.RateLimiter, slot)
		}

		if e := s.pullPrices(ctx, reserve); e != nil {
			log.WithError(e).Errorln("pull prices error")
			return nil, e
		}
	case signer == market.RiskAuthority:
		if cfg := params.RateLimiter; !cfg.Disabled() && cfg.MaxOutflow == 0 {
			reserve.RateLimiter = core.NewRateLimiter(cfg, slot)
		}

		if next.BorrowLimit < old.BorrowLimit {
			reserve.Config.BorrowLimit = next.BorrowLimit
		}

		if next.DepositLimit < old.DepositLimit {
			reserve.Config.DepositLimit = next.DepositLimit
		}
	default:
		return nil, core.ErrUnauthorized
	}

	reserve.LastUpdate.MarkStale()
	if e := s.reserveStore.Update(ctx, reserve); e != nil {
		log.WithError(e).Errorln("update reserve error")
		return nil, e
	}

	log.Infoln("reserve config updated:", reserve.ID, ":signer:", params.Signer)
	return reserve, nil
}

// Refresh pull oracle prices and accrue interest up to the current slot
func (s *service) Refresh(ctx context.Context, reserveID string) (*core.Reserve, error) {
	log := logger.FromContext(ctx).WithField("service", "refresh_reserve")

	reserve, e := s.reserveStore.Find(ctx, reserveID)
	if e != nil {
		return nil, e
	}

	slot, e := s.slotSrv.CurrentSlot(ctx)
	if e != nil {
		return nil, e
	}

	if e := s.pullPrices(ctx, reserve); e != nil {
		log.WithError(e).Errorln("pull prices error")
		return nil, e
	}

	if e := compound.RefreshReserveInterest(reserve, slot); e != nil {
		return nil, e
	}

	if e := s.reserveStore.Update(ctx, reserve); e != nil {
		log.WithError(e).Errorln("update reserve error")
		return nil, e
	}

	return reserve, nil
}

// DepositLiquidity move liquidity from params.Source into the reserve and
// mint receipt tokens to params.Destination
func (s *service) DepositLiquidity(ctx context.Context, params core.ReserveLiquidityParams) (uint64, error) {
	log := logger.FromContext(ctx).WithField("service", "deposit_reserve_liquidity")

	if params.Amount == 0 {
		return 0, core.ErrInvalidAmount
	}

	var collateral uint64
	e := s.transactor.Tx(ctx, func(ctx context.Context) error {
		reserve, e := s.reserveStore.Find(ctx, params.ReserveID)
		if e != nil {
			return e
		}

		if params.Source == "" || params.Source == reserve.Liquidity.SupplyID ||
			params.Destination == "" || params.Destination == reserve.Collateral.SupplyID {
			return core.ErrInvalidArgument
		}

		slot, e := s.slotSrv.CurrentSlot(ctx)
		if e != nil {
			return e
		}

		if e := compound.RefreshReserveInterest(reserve, slot); e != nil {
			return e
		}

		total, e := compound.TotalSupply(&reserve.Liquidity)
		if e != nil {
			return e
		}

		if total, e = total.Add(number.FromInteger(params.Amount)); e != nil {
			return e
		}

		if total.GreaterThan(number.FromInteger(reserve.Config.DepositLimit)) {
			return core.ErrDepositedOverLimit
		}

		if collateral, e = compound.DepositLiquidity(reserve, params.Amount); e != nil {
			return e
		}

		reserve.LastUpdate.MarkStale()
		if e := s.reserveStore.Update(ctx, reserve); e != nil {
			return e
		}

		if e := s.ledger.Transfer(ctx, reserve.Liquidity.MintID, params.Source, reserve.Liquidity.SupplyID, params.Amount); e != nil {
			return e
		}

		return s.ledger.Mint(ctx, reserve.Collateral.MintID, params.Destination, collateral, reserve.MarketID)
	})
	if e != nil {
		log.WithError(e).Infoln("deposit rejected")
		return 0, e
	}

	log.Infoln("deposit, reserve:", params.ReserveID, ":amount:", params.Amount, ":collateral:", collateral)
	return collateral, nil
}

// RedeemCollateral burn receipt tokens from params.Source and pay the
// liquidity out to params.Destination
func (s *service) RedeemCollateral(ctx context.Context, params core.ReserveLiquidityParams) (uint64, error) {
	log := logger.FromContext(ctx).WithField("service", "redeem_reserve_collateral")

	if params.Amount == 0 {
		return 0, core.ErrInvalidAmount
	}

	var liquidity uint64
	e := s.transactor.Tx(ctx, func(ctx context.Context) error {
		reserve, e := s.reserveStore.Find(ctx, params.ReserveID)
		if e != nil {
			return e
		}

		if params.Source == "" || params.Source == reserve.Collateral.SupplyID ||
			params.Destination == "" || params.Destination == reserve.Liquidity.SupplyID {
			return core.ErrInvalidArgument
		}

		market, e := s.marketStore.Find(ctx, reserve.MarketID)
		if e != nil {
			return e
		}

		slot, e := s.slotSrv.CurrentSlot(ctx)
		if e != nil {
			return e
		}

		if e := compound.RefreshReserveInterest(reserve, slot); e != nil {
			return e
		}

		// the outflow is valued at the current oracle price, not the last refreshed one
		if e := s.pullPrices(ctx, reserve); e != nil {
			return e
		}

		if liquidity, e = compound.RedeemCollateral(reserve, params.Amount); e != nil {
			return e
		}

		if e := compound.ChargeOutflow(market, reserve, slot, number.FromInteger(liquidity)); e != nil {
			return e
		}

		reserve.LastUpdate.MarkStale()
		if e := s.reserveStore.Update(ctx, reserve); e != nil {
			return e
		}

		if e := s.marketStore.Update(ctx, market); e != nil {
			return e
		}

		if e := s.ledger.Burn(ctx, reserve.Collateral.MintID, params.Source, params.Amount, reserve.MarketID); e != nil {
			return e
		}

		return s.ledger.Transfer(ctx, reserve.Liquidity.MintID, reserve.Liquidity.SupplyID, params.Destination, liquidity)
	})
	if e != nil {
		log.WithError(e).Infoln("redeem rejected")
		return 0, e
	}

	log.Infoln("redeem, reserve:", params.ReserveID, ":collateral:", params.Amount, ":liquidity:", liquidity)
	return liquidity, nil
}

// RedeemFees pay the accumulated protocol fees to the fee receiver
func (s *service) RedeemFees(ctx context.Context, reserveID string) (uint64, error) {
	log := logger.FromContext(ctx).WithField("service", "redeem_fees")

	var amount uint64
	e := s.transactor.Tx(ctx, func(ctx context.Context) error {
		reserve, e := s.reserveStore.Find(ctx, reserveID)
		if e != nil {
			return e
		}

		slot, e := s.slotSrv.CurrentSlot(ctx)
		if e != nil {
			return e
		}

		if e := compound.RefreshReserveInterest(reserve, slot); e != nil {
			return e
		}

		if amount, e = compound.CalculateRedeemFees(&reserve.Liquidity); e != nil || amount == 0 {
			return e
		}

		if e := compound.RedeemFees(&reserve.Liquidity, amount); e != nil {
			return e
		}

		reserve.LastUpdate.MarkStale()
		if e := s.reserveStore.Update(ctx, reserve); e != nil {
			return e
		}

		return s.ledger.Transfer(ctx, reserve.Liquidity.MintID, reserve.Liquidity.SupplyID, reserve.Config.FeeReceiver, amount)
	})
	if e != nil {
		log.WithError(e).Errorln("redeem fees error")
		return 0, e
	}

	return amount, nil
}
