package core

import (
	"context"
	"time"
)

// LedgerMint token issued through the ledger, the first Mint or Burn fixes its authority
type LedgerMint struct {
	ID        string    `sql:"size:64;PRIMARY_KEY" json:"id"`
	Version   int64     `sql:"default:0" json:"version"`
	Authority string    `sql:"size:64" json:"authority"`
	Supply    uint64    `json:"supply"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// LedgerBalance amount of a mint held by an account
type LedgerBalance struct {
	Mint      string    `sql:"size:64;PRIMARY_KEY" json:"mint"`
	Account   string    `sql:"size:64;PRIMARY_KEY" json:"account"`
	Version   int64     `sql:"default:0" json:"version"`
	Amount    uint64    `json:"amount"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ITokenLedger external token balances. Accounts and mints are opaque ids,
// authority is the identity allowed to mint or burn a receipt token.
type ITokenLedger interface {
	Transfer(ctx context.Context, mint, from, to string, amount uint64) error
	Mint(ctx context.Context, mint, to string, amount uint64, authority string) error
	Burn(ctx context.Context, mint, from string, amount uint64, authority string) error
	Balance(ctx context.Context, mint, account string) (uint64, error)
}
