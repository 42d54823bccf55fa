package core

import "context"

// ITransactor runs fn in one store transaction; stores and the ledger pick
// the transaction up from the context passed to fn
type ITransactor interface {
	Tx(ctx context.Context, fn func(ctx context.Context) error) error
}
