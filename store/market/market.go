package market

import (
	"context"

	"lending/core"
	"lending/store/transaction"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type marketStore struct {
	db *db.DB
}

// New new lending market store
func New(db *db.DB) core.IMarketStore {
	return &marketStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.LendingMarket{})
		if err := tx.AutoMigrate(core.LendingMarket{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *marketStore) Create(ctx context.Context, market *core.LendingMarket) error {
	return transaction.From(ctx, s.db).Update().Create(market).Error
}

func (s *marketStore) Find(ctx context.Context, id string) (*core.LendingMarket, error) {
	var market core.LendingMarket
	if err := transaction.From(ctx, s.db).View().Where("id=?", id).First(&market).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrMarketNotFound
		}
		return nil, err
	}

	return &market, nil
}

func (s *marketStore) All(ctx context.Context) ([]*core.LendingMarket, error) {
	var markets []*core.LendingMarket
	if err := s.db.View().Order("created_at").Find(&markets).Error; err != nil {
		return nil, err
	}
	return markets, nil
}

func (s *marketStore) Update(ctx context.Context, market *core.LendingMarket) error {
	version := market.Version
	market.Version++

	tx := transaction.From(ctx, s.db).Update().Model(core.LendingMarket{}).Where("id=? and version=?", market.ID, version).Updates(map[string]interface{}{
		"version":                market.Version,
		"owner":                  market.Owner,
		"rate_limiter":           market.RateLimiter,
		"whitelisted_liquidator": market.WhitelistedLiquidator,
		"risk_authority":         market.RiskAuthority,
		"fee_authority":          market.FeeAuthority,
	})
	if tx.Error != nil {
		market.Version = version
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		market.Version = version
		return db.ErrOptimisticLock
	}

	return nil
}
