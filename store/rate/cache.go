package rate

import (
	"context"
	"fmt"
	"time"

	"veloan/core"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache read-through cache over a rate store. Rates are read on every
// borrow and claim but mutated rarely, so a short expiry is enough.
func Cache(store core.IRateStore, exp time.Duration) core.IRateStore {
	return &cacheRateStore{
		IRateStore: store,
		cache:      gcache.New(512).LRU().Expiration(exp).Build(),
		sf:         &singleflight.Group{},
	}
}

type cacheRateStore struct {
	core.IRateStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheRateStore) Find(ctx context.Context, engine string) (*core.Rates, error) {
	key := s.rateKey(engine)
	if v, err := s.cache.Get(key); err == nil {
		if rates, ok := v.(*core.Rates); ok {
			return rates, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		rates, err := s.IRateStore.Find(ctx, engine)
		if err != nil {
			return nil, err
		}

		_ = s.cache.Set(key, rates)
		return rates, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Rates), nil
}

func (s *cacheRateStore) Save(ctx context.Context, rates *core.Rates) error {
	if err := s.IRateStore.Save(ctx, rates); err != nil {
		return err
	}

	s.cache.Remove(s.rateKey(rates.Engine))
	return nil
}

func (s *cacheRateStore) Update(ctx context.Context, rates *core.Rates, version int64) error {
	if err := s.IRateStore.Update(ctx, rates, version); err != nil {
		return err
	}

	s.cache.Remove(s.rateKey(rates.Engine))
	return nil
}

func (s *cacheRateStore) rateKey(engine string) string {
	return fmt.Sprintf("rates:%s", engine)
}
