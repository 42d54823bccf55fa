package reserve

import (
	"context"
	"fmt"
	"time"

	"lending/core"
	"lending/store/transaction"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache reserve reads outside transactions are served from an LRU cache,
// writes evict the cached entry
func Cache(store core.IReserveStore, size int, exp time.Duration) core.IReserveStore {
	if size <= 0 {
		size = 256
	}

	builder := gcache.New(size).LRU()
	if exp > 0 {
		builder = builder.Expiration(exp)
	}

	return &cacheReserveStore{
		IReserveStore: store,
		cache:         builder.Build(),
		sf:            &singleflight.Group{},
	}
}

type cacheReserveStore struct {
	core.IReserveStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheReserveStore) Find(ctx context.Context, id string) (*core.Reserve, error) {
	if transaction.InTx(ctx) {
		return s.IReserveStore.Find(ctx, id)
	}

	key := s.reserveKey(id)
	if v, err := s.cache.Get(key); err == nil {
		if reserve, ok := v.(*core.Reserve); ok {
			return reserve.Clone(), nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		reserve, err := s.IReserveStore.Find(ctx, id)
		if err != nil {
			return nil, err
		}

		s.cache.Set(key, reserve.Clone())
		return reserve, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Reserve).Clone(), nil
}

func (s *cacheReserveStore) Update(ctx context.Context, reserve *core.Reserve) error {
	s.cache.Remove(s.reserveKey(reserve.ID))
	if err := s.IReserveStore.Update(ctx, reserve); err != nil {
		return err
	}

	s.cache.Remove(s.reserveKey(reserve.ID))
	return nil
}

func (s *cacheReserveStore) reserveKey(id string) string {
	return fmt.Sprintf("reserve:id:%s", id)
}
