package reserve

import (
	"context"

	"lending/core"
	"lending/store/transaction"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type reserveStore struct {
	db *db.DB
}

// New new reserve store
func New(db *db.DB) core.IReserveStore {
	return &reserveStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Reserve{})
		if err := tx.AutoMigrate(core.Reserve{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *reserveStore) Create(ctx context.Context, reserve *core.Reserve) error {
	return transaction.From(ctx, s.db).Update().Create(reserve).Error
}

func (s *reserveStore) Find(ctx context.Context, id string) (*core.Reserve, error) {
	var reserve core.Reserve
	if err := transaction.From(ctx, s.db).View().Where("id=?", id).First(&reserve).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrReserveNotFound
		}
		return nil, err
	}

	return &reserve, nil
}

func (s *reserveStore) ListByMarket(ctx context.Context, marketID string) ([]*core.Reserve, error) {
	var reserves []*core.Reserve
	if err := transaction.From(ctx, s.db).View().Where("market_id=?", marketID).Order("created_at").Find(&reserves).Error; err != nil {
		return nil, err
	}

	return reserves, nil
}

func (s *reserveStore) All(ctx context.Context) ([]*core.Reserve, error) {
	var reserves []*core.Reserve
	if err := s.db.View().Order("created_at").Find(&reserves).Error; err != nil {
		return nil, err
	}

	return reserves, nil
}

func (s *reserveStore) Update(ctx context.Context, reserve *core.Reserve) error {
	version := reserve.Version
	reserve.Version++

	tx := transaction.From(ctx, s.db).Update().Model(core.Reserve{}).Where("id=? and version=?", reserve.ID, version).Updates(map[string]interface{}{
		"version":                 reserve.Version,
		"last_update":             reserve.LastUpdate,
		"liquidity":               reserve.Liquidity,
		"collateral":              reserve.Collateral,
		"config":                  reserve.Config,
		"rate_limiter":            reserve.RateLimiter,
		"attributed_borrow_value": reserve.AttributedBorrowValue,
	})
	if tx.Error != nil {
		reserve.Version = version
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		reserve.Version = version
		return db.ErrOptimisticLock
	}

	return nil
}
