package cmd

import (
	"lending/core"
	"lending/service/market"
	"lending/service/obligation"
	"lending/service/oracle"
	"lending/service/reserve"
	"lending/service/slot"
	ledgerstore "lending/store/ledger"
	marketstore "lending/store/market"
	obligationstore "lending/store/obligation"
	reservestore "lending/store/reserve"
	"lending/store/transaction"

	"github.com/facebookgo/clock"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideMarketStore(db *db.DB) core.IMarketStore {
	return marketstore.New(db)
}

func provideReserveStore(db *db.DB) core.IReserveStore {
	return reservestore.Cache(reservestore.New(db), cfg.Cache.Size, cfg.Cache.TTL)
}

func provideObligationStore(db *db.DB) core.IObligationStore {
	return obligationstore.New(db)
}

func provideLedger(db *db.DB) core.ITokenLedger {
	return ledgerstore.New(db)
}

func provideTransactor(db *db.DB) core.ITransactor {
	return transaction.New(db)
}

// ------------------service------------------------------------

func provideSlotService() core.ISlotService {
	return slot.New(provideConfig(), clock.New())
}

func providePriceOracle() core.IPriceOracle {
	return oracle.New(provideConfig())
}

func provideMarketService(marketStr core.IMarketStore, slotSrv core.ISlotService) core.IMarketService {
	return market.New(marketStr, slotSrv)
}

func provideReserveService(
	marketStr core.IMarketStore,
	reserveStr core.IReserveStore,
	ledger core.ITokenLedger,
	slotSrv core.ISlotService,
	transactor core.ITransactor,
) core.IReserveService {
	return reserve.New(marketStr, reserveStr, ledger, providePriceOracle(), slotSrv, transactor)
}

func provideObligationService(
	marketStr core.IMarketStore,
	reserveStr core.IReserveStore,
	obligationStr core.IObligationStore,
	ledger core.ITokenLedger,
	slotSrv core.ISlotService,
	transactor core.ITransactor,
) core.IObligationService {
	return obligation.New(marketStr, reserveStr, obligationStr, ledger, slotSrv, transactor)
}

// services every cli command and the worker share one set of stores
type services struct {
	db          *db.DB
	markets     core.IMarketStore
	reserves    core.IReserveStore
	obligations core.IObligationStore
	ledger      core.ITokenLedger
	slots       core.ISlotService

	marketService     core.IMarketService
	reserveService    core.IReserveService
	obligationService core.IObligationService
}

func provideServices() *services {
	database := provideDatabase()
	s := &services{
		db:          database,
		markets:     provideMarketStore(database),
		reserves:    provideReserveStore(database),
		obligations: provideObligationStore(database),
		ledger:      provideLedger(database),
		slots:       provideSlotService(),
	}

	transactor := provideTransactor(database)
	s.marketService = provideMarketService(s.markets, s.slots)
	s.reserveService = provideReserveService(s.markets, s.reserves, s.ledger, s.slots, transactor)
	s.obligationService = provideObligationService(s.markets, s.reserves, s.obligations, s.ledger, s.slots, transactor)
	return s
}
