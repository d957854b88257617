package collateral

import (
	"context"
	"testing"

	"veloan/core"
	"veloan/pkg/lending"
	"veloan/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCollateralStore struct {
	accounts    map[string]*core.Account
	collaterals []*core.Collateral
	nextID      uint64
}

func newMemCollateralStore() *memCollateralStore {
	return &memCollateralStore{
		accounts: make(map[string]*core.Account),
		nextID:   1,
	}
}

func (s *memCollateralStore) FindAccount(ctx context.Context, address string) (*core.Account, error) {
	if account, ok := s.accounts[address]; ok {
		return account, nil
	}

	return &core.Account{Address: address}, nil
}

func (s *memCollateralStore) SaveAccount(ctx context.Context, tx *db.DB, account *core.Account) error {
	if account.ID == 0 {
		account.ID = s.nextID
		s.nextID++
	}

	s.accounts[account.Address] = account
	return nil
}

func (s *memCollateralStore) UpdateAccount(ctx context.Context, tx *db.DB, account *core.Account) error {
	s.accounts[account.Address] = account
	return nil
}

func (s *memCollateralStore) FindCollateral(ctx context.Context, account, tokenAddress, assetID string) (*core.Collateral, error) {
	for _, c := range s.collaterals {
		if c.Account == account && c.TokenAddress == tokenAddress && c.AssetID == assetID {
			return c, nil
		}
	}

	return &core.Collateral{}, nil
}

func (s *memCollateralStore) ListCollaterals(ctx context.Context, account string) ([]*core.Collateral, error) {
	var items []*core.Collateral
	for _, c := range s.collaterals {
		if c.Account == account {
			items = append(items, c)
		}
	}

	return items, nil
}

func (s *memCollateralStore) SaveCollateral(ctx context.Context, tx *db.DB, collateral *core.Collateral) error {
	collateral.ID = s.nextID
	s.nextID++
	s.collaterals = append(s.collaterals, collateral)
	return nil
}

func (s *memCollateralStore) UpdateCollateral(ctx context.Context, tx *db.DB, collateral *core.Collateral) error {
	return nil
}

func (s *memCollateralStore) DeleteCollateral(ctx context.Context, tx *db.DB, collateral *core.Collateral) error {
	for i, c := range s.collaterals {
		if c.ID == collateral.ID {
			s.collaterals = append(s.collaterals[:i], s.collaterals[i+1:]...)
			break
		}
	}

	return nil
}

type stubRateStore struct {
	core.IRateStore
	rates *core.Rates
}

func (s *stubRateStore) Find(ctx context.Context, engine string) (*core.Rates, error) {
	return s.rates, nil
}

func newTestService(utilizationBps int64) (core.ICollateralService, *memCollateralStore) {
	store := newMemCollateralStore()
	rates := &stubRateStore{rates: &core.Rates{
		Engine:          "test",
		UtilizationRate: utilizationBps,
	}}

	return New("test", store, rates), store
}

func lockCollateral(t *testing.T, srv core.ICollateralService, account string, value decimal.Decimal) {
	t.Helper()

	err := srv.AddLockedCollateral(context.Background(), nil, &core.Collateral{
		Account:      account,
		TokenAddress: "escrow",
		AssetID:      "1",
		Amount:       decimal.New(1, 0),
		Value:        value,
	})
	require.NoError(t, err)
}

func TestIncreaseTotalDebt(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestService(9000)
	lockCollateral(t, srv, "alice", number.Decimal("100"))

	t.Run("zero is a no-op", func(t *testing.T) {
		payout, fee, err := srv.IncreaseTotalDebt(ctx, nil, "alice", decimal.Zero)
		require.NoError(t, err)
		assert.True(t, payout.IsZero())
		assert.True(t, fee.IsZero())
	})

	t.Run("negative rejected", func(t *testing.T) {
		_, _, err := srv.IncreaseTotalDebt(ctx, nil, "alice", number.Decimal("-1"))
		assert.ErrorIs(t, err, core.ErrInvalidAmount)
	})

	t.Run("payout plus fee equals draw", func(t *testing.T) {
		amount := number.Decimal("50")
		payout, fee, err := srv.IncreaseTotalDebt(ctx, nil, "alice", amount)
		require.NoError(t, err)
		assert.True(t, payout.Add(fee).Equal(amount))
		assert.True(t, fee.Equal(lending.OriginationFee(amount)))

		debt, err := srv.TotalDebt(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, debt.Equal(amount))
	})

	t.Run("over max loan rejected", func(t *testing.T) {
		// 50 drawn already, max is 90
		_, _, err := srv.IncreaseTotalDebt(ctx, nil, "alice", number.Decimal("41"))
		assert.ErrorIs(t, err, core.ErrInsufficientCollateral)

		// and the failed draw left the debt untouched
		debt, err := srv.TotalDebt(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, debt.Equal(number.Decimal("50")))
	})
}

func TestDecreaseTotalDebt(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestService(9000)
	lockCollateral(t, srv, "bob", number.Decimal("100"))

	_, _, err := srv.IncreaseTotalDebt(ctx, nil, "bob", number.Decimal("40"))
	require.NoError(t, err)

	t.Run("partial repayment", func(t *testing.T) {
		excess, err := srv.DecreaseTotalDebt(ctx, nil, "bob", number.Decimal("15"))
		require.NoError(t, err)
		assert.True(t, excess.IsZero())

		debt, _ := srv.TotalDebt(ctx, "bob")
		assert.True(t, debt.Equal(number.Decimal("25")))
	})

	t.Run("overpayment clamps and reports excess", func(t *testing.T) {
		excess, err := srv.DecreaseTotalDebt(ctx, nil, "bob", number.Decimal("30"))
		require.NoError(t, err)
		assert.True(t, excess.Equal(number.Decimal("5")))

		debt, _ := srv.TotalDebt(ctx, "bob")
		assert.True(t, debt.IsZero())
	})
}

func TestRemoveLockedCollateral(t *testing.T) {
	ctx := context.Background()
	srv, store := newTestService(9000)
	lockCollateral(t, srv, "carol", number.Decimal("100"))

	_, _, err := srv.IncreaseTotalDebt(ctx, nil, "carol", number.Decimal("10"))
	require.NoError(t, err)

	t.Run("blocked while debt outstanding", func(t *testing.T) {
		err := srv.RemoveLockedCollateral(ctx, nil, "carol", "escrow", "1")
		assert.ErrorIs(t, err, core.ErrOutstandingDebt)
	})

	t.Run("released after full repayment", func(t *testing.T) {
		_, err := srv.DecreaseTotalDebt(ctx, nil, "carol", number.Decimal("10"))
		require.NoError(t, err)

		require.NoError(t, srv.RemoveLockedCollateral(ctx, nil, "carol", "escrow", "1"))
		assert.Equal(t, 0, len(store.collaterals))
	})
}

func TestFungibleCollateralCountedOnce(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestService(10000)

	for i := 0; i < 2; i++ {
		err := srv.AddLockedCollateral(ctx, nil, &core.Collateral{
			Account:      "dave",
			TokenAddress: "usd",
			Amount:       number.Decimal("100"),
			Value:        number.Decimal("100"),
		})
		require.NoError(t, err)
	}

	locked, err := srv.TotalLockedValue(ctx, "dave")
	require.NoError(t, err)
	assert.True(t, locked.Equal(number.Decimal("100")))
}

func TestMaxLoanScalesWithUtilization(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestService(8000)
	lockCollateral(t, srv, "erin", number.Decimal("250"))

	maxLoan, err := srv.MaxLoan(ctx, "erin")
	require.NoError(t, err)
	assert.True(t, maxLoan.Equal(number.Decimal("200")))
}
