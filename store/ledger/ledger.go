package ledger

import (
	"context"

	"lending/core"
	"lending/store/transaction"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type ledgerStore struct {
	db *db.DB
}

// New token ledger kept in the database
func New(db *db.DB) core.ITokenLedger {
	return &ledgerStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.LedgerMint{})
		if err := tx.AutoMigrate(core.LedgerMint{}).Error; err != nil {
			return err
		}

		tx = db.Update().Model(core.LedgerBalance{})
		if err := tx.AutoMigrate(core.LedgerBalance{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *ledgerStore) tx(ctx context.Context, fn func(tx *db.DB) error) error {
	if transaction.InTx(ctx) {
		return fn(transaction.From(ctx, s.db))
	}

	return s.db.Tx(fn)
}

func findBalance(tx *db.DB, mint, account string) (*core.LedgerBalance, error) {
	balance := core.LedgerBalance{Mint: mint, Account: account}
	if err := tx.Update().Where("mint=? and account=?", mint, account).First(&balance).Error; err != nil {
		if store.IsErrNotFound(err) {
			balance.Version = -1
			return &balance, nil
		}
		return nil, err
	}

	return &balance, nil
}

func saveBalance(tx *db.DB, balance *core.LedgerBalance) error {
	if balance.Version < 0 {
		balance.Version = 1
		return tx.Update().Create(balance).Error
	}

	version := balance.Version
	balance.Version++
	update := tx.Update().Model(core.LedgerBalance{}).Where("mint=? and account=? and version=?", balance.Mint, balance.Account, version).Updates(map[string]interface{}{
		"version": gorm.Expr("version + 1"),
		"amount":  balance.Amount,
	})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func findMint(tx *db.DB, id, authority string) (*core.LedgerMint, error) {
	mint := core.LedgerMint{ID: id}
	if err := tx.Update().Where("id=?", id).First(&mint).Error; err != nil {
		if !store.IsErrNotFound(err) {
			return nil, err
		}

		mint.Authority = authority
		if err := tx.Update().Create(&mint).Error; err != nil {
			return nil, err
		}
	}

	if mint.Authority != authority {
		return nil, core.ErrUnauthorized
	}

	return &mint, nil
}

func saveMint(tx *db.DB, mint *core.LedgerMint) error {
	version := mint.Version
	mint.Version++
	update := tx.Update().Model(core.LedgerMint{}).Where("id=? and version=?", mint.ID, version).Updates(map[string]interface{}{
		"version": gorm.Expr("version + 1"),
		"supply":  mint.Supply,
	})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *ledgerStore) Transfer(ctx context.Context, mint, from, to string, amount uint64) error {
	return s.tx(ctx, func(tx *db.DB) error {
		src, err := findBalance(tx, mint, from)
		if err != nil {
			return err
		}

		if src.Amount < amount {
			return core.ErrInsufficientBalance
		}

		if from == to || amount == 0 {
			return nil
		}

		dst, err := findBalance(tx, mint, to)
		if err != nil {
			return err
		}

		if dst.Amount+amount < dst.Amount {
			return core.ErrMathOverflow
		}

		src.Amount -= amount
		dst.Amount += amount

		if err := saveBalance(tx, src); err != nil {
			return err
		}

		return saveBalance(tx, dst)
	})
}

func (s *ledgerStore) Mint(ctx context.Context, mint, to string, amount uint64, authority string) error {
	return s.tx(ctx, func(tx *db.DB) error {
		m, err := findMint(tx, mint, authority)
		if err != nil {
			return err
		}

		dst, err := findBalance(tx, mint, to)
		if err != nil {
			return err
		}

		if m.Supply+amount < m.Supply || dst.Amount+amount < dst.Amount {
			return core.ErrMathOverflow
		}

		m.Supply += amount
		dst.Amount += amount

		if err := saveMint(tx, m); err != nil {
			return err
		}

		return saveBalance(tx, dst)
	})
}

func (s *ledgerStore) Burn(ctx context.Context, mint, from string, amount uint64, authority string) error {
	return s.tx(ctx, func(tx *db.DB) error {
		m, err := findMint(tx, mint, authority)
		if err != nil {
			return err
		}

		src, err := findBalance(tx, mint, from)
		if err != nil {
			return err
		}

		if src.Amount < amount || m.Supply < amount {
			return core.ErrInsufficientBalance
		}

		m.Supply -= amount
		src.Amount -= amount

		if err := saveMint(tx, m); err != nil {
			return err
		}

		return saveBalance(tx, src)
	})
}

func (s *ledgerStore) Balance(ctx context.Context, mint, account string) (uint64, error) {
	var balance core.LedgerBalance
	if err := transaction.From(ctx, s.db).View().Where("mint=? and account=?", mint, account).First(&balance).Error; err != nil {
		if store.IsErrNotFound(err) {
			return 0, nil
		}
		return 0, err
	}

	return balance.Amount, nil
}
