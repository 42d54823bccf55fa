package transaction

import (
	"context"

	"lending/core"

	"github.com/fox-one/pkg/store/db"
)

type txKey struct{}

type transactor struct {
	db *db.DB
}

// New transactor backed by database transactions
func New(db *db.DB) core.ITransactor {
	return &transactor{db: db}
}

func (t *transactor) Tx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}

	return t.db.Tx(func(tx *db.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// InTx ctx carries a transaction
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*db.DB)
	return ok
}

// From the transaction carried by ctx, or fallback outside one
func From(ctx context.Context, fallback *db.DB) *db.DB {
	if tx, ok := ctx.Value(txKey{}).(*db.DB); ok {
		return tx
	}

	return fallback
}
