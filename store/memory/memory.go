// Package memory keeps lending state in process memory. It backs tests and
// the dry-run mode of the command line.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"lending/core"

	"github.com/fox-one/pkg/store/db"
)

type snapshotter interface {
	snapshot() (restore func())
}

// Transactor serializes transactions over memory stores and restores every
// store when fn fails
type Transactor struct {
	mu     sync.Mutex
	stores []snapshotter
}

// NewTransactor transactor covering stores
func NewTransactor(stores ...snapshotter) *Transactor {
	return &Transactor{stores: stores}
}

type txKey struct{}

func (t *Transactor) Tx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	restores := make([]func(), 0, len(t.stores))
	for _, s := range t.stores {
		restores = append(restores, s.snapshot())
	}

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}

	return nil
}

// MarketStore lending markets by id
type MarketStore struct {
	mu      sync.Mutex
	markets map[string]*core.LendingMarket
}

// NewMarketStore empty market store
func NewMarketStore() *MarketStore {
	return &MarketStore{markets: map[string]*core.LendingMarket{}}
}

func (s *MarketStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[string]*core.LendingMarket, len(s.markets))
	for id, m := range s.markets {
		saved[id] = m.Clone()
	}

	return func() {
		s.mu.Lock()
		s.markets = saved
		s.mu.Unlock()
	}
}

func (s *MarketStore) Create(ctx context.Context, market *core.LendingMarket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	market.CreatedAt, market.UpdatedAt = now, now
	s.markets[market.ID] = market.Clone()
	return nil
}

func (s *MarketStore) Find(ctx context.Context, id string) (*core.LendingMarket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.markets[id]
	if !ok {
		return nil, core.ErrMarketNotFound
	}
	return m.Clone(), nil
}

func (s *MarketStore) All(ctx context.Context) ([]*core.LendingMarket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	markets := make([]*core.LendingMarket, 0, len(s.markets))
	for _, m := range s.markets {
		markets = append(markets, m.Clone())
	}

	sort.Slice(markets, func(i, j int) bool { return markets[i].ID < markets[j].ID })
	return markets, nil
}

func (s *MarketStore) Update(ctx context.Context, market *core.LendingMarket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.markets[market.ID]
	if !ok || stored.Version != market.Version {
		return db.ErrOptimisticLock
	}

	market.Version++
	market.UpdatedAt = time.Now()
	s.markets[market.ID] = market.Clone()
	return nil
}

// ReserveStore reserves by id
type ReserveStore struct {
	mu       sync.Mutex
	reserves map[string]*core.Reserve
}

// NewReserveStore empty reserve store
func NewReserveStore() *ReserveStore {
	return &ReserveStore{reserves: map[string]*core.Reserve{}}
}

func (s *ReserveStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[string]*core.Reserve, len(s.reserves))
	for id, r := range s.reserves {
		saved[id] = r.Clone()
	}

	return func() {
		s.mu.Lock()
		s.reserves = saved
		s.mu.Unlock()
	}
}

func (s *ReserveStore) Create(ctx context.Context, reserve *core.Reserve) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	reserve.CreatedAt, reserve.UpdatedAt = now, now
	s.reserves[reserve.ID] = reserve.Clone()
	return nil
}

func (s *ReserveStore) Find(ctx context.Context, id string) (*core.Reserve, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reserves[id]
	if !ok {
		return nil, core.ErrReserveNotFound
	}
	return r.Clone(), nil
}

func (s *ReserveStore) list(match func(r *core.Reserve) bool) []*core.Reserve {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reserves []*core.Reserve
	for _, r := range s.reserves {
		if match(r) {
			reserves = append(reserves, r.Clone())
		}
	}

	sort.Slice(reserves, func(i, j int) bool { return reserves[i].ID < reserves[j].ID })
	return reserves
}

func (s *ReserveStore) ListByMarket(ctx context.Context, marketID string) ([]*core.Reserve, error) {
	return s.list(func(r *core.Reserve) bool { return r.MarketID == marketID }), nil
}

func (s *ReserveStore) All(ctx context.Context) ([]*core.Reserve, error) {
	return s.list(func(*core.Reserve) bool { return true }), nil
}

func (s *ReserveStore) Update(ctx context.Context, reserve *core.Reserve) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.reserves[reserve.ID]
	if !ok || stored.Version != reserve.Version {
		return db.ErrOptimisticLock
	}

	reserve.Version++
	reserve.UpdatedAt = time.Now()
	s.reserves[reserve.ID] = reserve.Clone()
	return nil
}

// ObligationStore obligations by id
type ObligationStore struct {
	mu          sync.Mutex
	obligations map[string]*core.Obligation
}

// NewObligationStore empty obligation store
func NewObligationStore() *ObligationStore {
	return &ObligationStore{obligations: map[string]*core.Obligation{}}
}

func (s *ObligationStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[string]*core.Obligation, len(s.obligations))
	for id, o := range s.obligations {
		saved[id] = o.Clone()
	}

	return func() {
		s.mu.Lock()
		s.obligations = saved
		s.mu.Unlock()
	}
}

func (s *ObligationStore) Create(ctx context.Context, obligation *core.Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	obligation.CreatedAt, obligation.UpdatedAt = now, now
	s.obligations[obligation.ID] = obligation.Clone()
	return nil
}

func (s *ObligationStore) Find(ctx context.Context, id string) (*core.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.obligations[id]
	if !ok {
		return nil, core.ErrObligationNotFound
	}
	return o.Clone(), nil
}

func (s *ObligationStore) ListByOwner(ctx context.Context, marketID, owner string) ([]*core.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var obligations []*core.Obligation
	for _, o := range s.obligations {
		if o.Owner == owner && (marketID == "" || o.MarketID == marketID) {
			obligations = append(obligations, o.Clone())
		}
	}

	sort.Slice(obligations, func(i, j int) bool { return obligations[i].ID < obligations[j].ID })
	return obligations, nil
}

func (s *ObligationStore) Update(ctx context.Context, obligation *core.Obligation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.obligations[obligation.ID]
	if !ok || stored.Version != obligation.Version {
		return db.ErrOptimisticLock
	}

	obligation.Version++
	obligation.UpdatedAt = time.Now()
	s.obligations[obligation.ID] = obligation.Clone()
	return nil
}

// Ledger token balances held in memory
type Ledger struct {
	mu       sync.Mutex
	mints    map[string]core.LedgerMint
	balances map[[2]string]uint64
}

// NewLedger empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		mints:    map[string]core.LedgerMint{},
		balances: map[[2]string]uint64{},
	}
}

func (l *Ledger) snapshot() func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	mints := make(map[string]core.LedgerMint, len(l.mints))
	for k, v := range l.mints {
		mints[k] = v
	}

	balances := make(map[[2]string]uint64, len(l.balances))
	for k, v := range l.balances {
		balances[k] = v
	}

	return func() {
		l.mu.Lock()
		l.mints, l.balances = mints, balances
		l.mu.Unlock()
	}
}

// Credit add amount to account without a mint authority, used to fund test accounts
func (l *Ledger) Credit(mint, account string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[[2]string{mint, account}] += amount
}

func (l *Ledger) Transfer(ctx context.Context, mint, from, to string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	src, dst := [2]string{mint, from}, [2]string{mint, to}
	if l.balances[src] < amount {
		return core.ErrInsufficientBalance
	}

	if from == to {
		return nil
	}

	if l.balances[dst]+amount < l.balances[dst] {
		return core.ErrMathOverflow
	}

	l.balances[src] -= amount
	l.balances[dst] += amount
	return nil
}

func (l *Ledger) authorize(mint, authority string) (core.LedgerMint, error) {
	m, ok := l.mints[mint]
	if !ok {
		return core.LedgerMint{ID: mint, Authority: authority}, nil
	}

	if m.Authority != authority {
		return m, core.ErrUnauthorized
	}

	return m, nil
}

func (l *Ledger) Mint(ctx context.Context, mint, to string, amount uint64, authority string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, err := l.authorize(mint, authority)
	if err != nil {
		return err
	}

	dst := [2]string{mint, to}
	if m.Supply+amount < m.Supply || l.balances[dst]+amount < l.balances[dst] {
		return core.ErrMathOverflow
	}

	m.Supply += amount
	l.mints[mint] = m
	l.balances[dst] += amount
	return nil
}

func (l *Ledger) Burn(ctx context.Context, mint, from string, amount uint64, authority string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, err := l.authorize(mint, authority)
	if err != nil {
		return err
	}

	src := [2]string{mint, from}
	if l.balances[src] < amount || m.Supply < amount {
		return core.ErrInsufficientBalance
	}

	m.Supply -= amount
	l.mints[mint] = m
	l.balances[src] -= amount
	return nil
}

func (l *Ledger) Balance(ctx context.Context, mint, account string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balances[[2]string{mint, account}], nil
}
