package portfolio

import (
	"context"
	"testing"

	"veloan/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPortfolioStore struct {
	items  []*core.Portfolio
	nextID uint64
}

func (s *memPortfolioStore) Create(ctx context.Context, tx *db.DB, portfolio *core.Portfolio) error {
	for _, p := range s.items {
		if p.Owner == portfolio.Owner {
			return nil
		}
	}

	s.nextID++
	portfolio.ID = s.nextID
	s.items = append(s.items, portfolio)
	return nil
}

func (s *memPortfolioStore) Find(ctx context.Context, address string) (*core.Portfolio, error) {
	for _, p := range s.items {
		if p.Address == address {
			return p, nil
		}
	}

	return &core.Portfolio{}, nil
}

func (s *memPortfolioStore) FindByOwner(ctx context.Context, owner string) (*core.Portfolio, error) {
	for _, p := range s.items {
		if p.Owner == owner {
			return p, nil
		}
	}

	return &core.Portfolio{}, nil
}

func (s *memPortfolioStore) Update(ctx context.Context, tx *db.DB, portfolio *core.Portfolio, version int64) error {
	return nil
}

func newTestService() core.IPortfolioService {
	system := &core.System{Engine: "test", Admins: []string{"admin"}}
	return New(system, &memPortfolioStore{})
}

func TestGetOrCreate(t *testing.T) {
	ctx := context.Background()
	srv := newTestService()

	first, err := srv.GetOrCreate(ctx, nil, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, first.Address)

	// same owner, same account
	second, err := srv.GetOrCreate(ctx, nil, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, first.ID, second.ID)

	other, err := srv.GetOrCreate(ctx, nil, "bob")
	require.NoError(t, err)
	assert.NotEqual(t, first.Address, other.Address)
}

func TestAuthorized(t *testing.T) {
	ctx := context.Background()
	srv := newTestService()

	portfolio, err := srv.GetOrCreate(ctx, nil, "alice")
	require.NoError(t, err)

	t.Run("owner allowed", func(t *testing.T) {
		ok, err := srv.Authorized(ctx, portfolio.Address, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("admin allowed", func(t *testing.T) {
		ok, err := srv.Authorized(ctx, portfolio.Address, "admin")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("stranger rejected", func(t *testing.T) {
		ok, err := srv.Authorized(ctx, portfolio.Address, "mallory")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := srv.Authorized(ctx, "missing", "alice")
		assert.ErrorIs(t, err, core.ErrAccountNotFound)
	})
}
