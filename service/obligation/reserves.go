package obligation

import (
	"context"

	"lending/core"
)

// reserveSet loads every reserve once per operation, so a reserve that is
// both deposited and borrowed is staged on a single copy
type reserveSet struct {
	store  core.IReserveStore
	loaded map[string]*core.Reserve
}

func newReserveSet(store core.IReserveStore) *reserveSet {
	return &reserveSet{
		store:  store,
		loaded: map[string]*core.Reserve{},
	}
}

func (s *reserveSet) get(ctx context.Context, id string) (*core.Reserve, error) {
	if r, ok := s.loaded[id]; ok {
		return r, nil
	}

	r, e := s.store.Find(ctx, id)
	if e != nil {
		return nil, e
	}

	s.loaded[id] = r
	return r, nil
}

func (s *reserveSet) list(ctx context.Context, ids []string) ([]*core.Reserve, error) {
	reserves := make([]*core.Reserve, 0, len(ids))
	for _, id := range ids {
		r, e := s.get(ctx, id)
		if e != nil {
			return nil, e
		}

		reserves = append(reserves, r)
	}

	return reserves, nil
}

func (s *reserveSet) deposits(ctx context.Context, o *core.Obligation) ([]*core.Reserve, error) {
	ids := make([]string, 0, len(o.Deposits))
	for _, d := range o.Deposits {
		ids = append(ids, d.ReserveID)
	}

	return s.list(ctx, ids)
}

// save update each of reserves once
func (s *reserveSet) save(ctx context.Context, reserves ...*core.Reserve) error {
	saved := make(map[string]bool, len(reserves))
	for _, r := range reserves {
		if saved[r.ID] {
			continue
		}

		if e := s.store.Update(ctx, r); e != nil {
			return e
		}

		saved[r.ID] = true
	}

	return nil
}
