package obligation

import (
	"context"

	"lending/core"
	"lending/store/transaction"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type obligationStore struct {
	db *db.DB
}

// New new obligation store
func New(db *db.DB) core.IObligationStore {
	return &obligationStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Obligation{})
		if err := tx.AutoMigrate(core.Obligation{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *obligationStore) Create(ctx context.Context, obligation *core.Obligation) error {
	return transaction.From(ctx, s.db).Update().Create(obligation).Error
}

func (s *obligationStore) Find(ctx context.Context, id string) (*core.Obligation, error) {
	var obligation core.Obligation
	if err := transaction.From(ctx, s.db).View().Where("id=?", id).First(&obligation).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrObligationNotFound
		}
		return nil, err
	}

	return &obligation, nil
}

func (s *obligationStore) ListByOwner(ctx context.Context, marketID, owner string) ([]*core.Obligation, error) {
	query := s.db.View().Where("owner=?", owner)
	if marketID != "" {
		query = query.Where("market_id=?", marketID)
	}

	var obligations []*core.Obligation
	if err := query.Order("created_at").Find(&obligations).Error; err != nil {
		return nil, err
	}

	return obligations, nil
}

func (s *obligationStore) Update(ctx context.Context, obligation *core.Obligation) error {
	version := obligation.Version
	obligation.Version++

	tx := transaction.From(ctx, s.db).Update().Model(core.Obligation{}).Where("id=? and version=?", obligation.ID, version).Updates(map[string]interface{}{
		"version":                      obligation.Version,
		"last_update":                  obligation.LastUpdate,
		"deposits":                     obligation.Deposits,
		"borrows":                      obligation.Borrows,
		"deposited_value":              obligation.DepositedValue,
		"borrowed_value":               obligation.BorrowedValue,
		"unweighted_borrowed_value":    obligation.UnweightedBorrowedValue,
		"borrowed_value_upper_bound":   obligation.BorrowedValueUpperBound,
		"allowed_borrow_value":         obligation.AllowedBorrowValue,
		"unhealthy_borrow_value":       obligation.UnhealthyBorrowValue,
		"super_unhealthy_borrow_value": obligation.SuperUnhealthyBorrowValue,
		"borrowing_isolated_asset":     obligation.BorrowingIsolatedAsset,
		"closeable":                    obligation.Closeable,
	})
	if tx.Error != nil {
		obligation.Version = version
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		obligation.Version = version
		return db.ErrOptimisticLock
	}

	return nil
}
