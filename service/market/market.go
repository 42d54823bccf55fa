package market

import (
	"context"

	"lending/core"

	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/uuid"
)

// MaxQuoteCurrencyLength bytes of a quote currency symbol
const MaxQuoteCurrencyLength = 32

type service struct {
	marketStore core.IMarketStore
	slotSrv     core.ISlotService
}

// New new market service
func New(
	marketStr core.IMarketStore,
	slotSrv core.ISlotService,
) core.IMarketService {
	return &service{
		marketStore: marketStr,
		slotSrv:     slotSrv,
	}
}

func validQuoteCurrency(s string) bool {
	return s != "" && len(s) <= MaxQuoteCurrencyLength && govalidator.IsPrintableASCII(s)
}

// Init create a lending market owned by the signer
func (s *service) Init(ctx context.Context, params core.InitMarketParams) (*core.LendingMarket, error) {
	log := logger.FromContext(ctx).WithField("service", "init_market")

	if params.Signer == "" || !validQuoteCurrency(params.QuoteCurrency) {
		return nil, core.ErrInvalidArgument
	}

	slot, e := s.slotSrv.CurrentSlot(ctx)
	if e != nil {
		return nil, e
	}

	feeAuthority := params.FeeAuthority
	if feeAuthority == "" {
		feeAuthority = params.Signer
	}

	market := &core.LendingMarket{
		ID:            uuid.New(),
		Owner:         params.Signer,
		QuoteCurrency: params.QuoteCurrency,
		RateLimiter:   core.DefaultRateLimiter(slot),
		RiskAuthority: params.Signer,
		FeeAuthority:  feeAuthority,
	}

	if e := s.marketStore.Create(ctx, market); e != nil {
		log.WithError(e).Errorln("create market error")
		return nil, e
	}

	log.Infoln("market created:", market.ID, ":owner:", market.Owner)
	return market, nil
}

// SetOwnerAndConfig hand the market over and replace its outflow limit, liquidator and risk authority
func (s *service) SetOwnerAndConfig(ctx context.Context, params core.SetMarketOwnerAndConfigParams) (*core.LendingMarket, error) {
	log := logger.FromContext(ctx).WithField("service", "set_market_owner_and_config")

	if params.NewOwner == "" {
		return nil, core.ErrInvalidArgument
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

	market.Owner = params.NewOwner
	market.RateLimiter = core.NewRateLimiter(params.RateLimiter, slot)
	market.WhitelistedLiquidator = params.WhitelistedLiquidator
	market.RiskAuthority = params.RiskAuthority

	if e := s.marketStore.Update(ctx, market); e != nil {
		log.WithError(e).Errorln("update market error")
		return nil, e
	}

	log.Infoln("market updated:", market.ID, ":owner:", market.Owner)
	return market, nil
}
