package swap

import (
	"context"
	"testing"

	"veloan/core"
	"veloan/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRouter struct {
	minOut  decimal.Decimal
	out     decimal.Decimal
	swapped int
}

func (s *stubRouter) GetBestRoute(ctx context.Context, fromToken, toToken string, amountIn decimal.Decimal) ([]string, error) {
	return []string{fromToken, toToken}, nil
}

func (s *stubRouter) GetMinimumAmountOut(ctx context.Context, route []string, amountIn decimal.Decimal) (decimal.Decimal, error) {
	return s.minOut, nil
}

func (s *stubRouter) SwapExactTokensForTokens(ctx context.Context, amountIn, minOut decimal.Decimal, route []string, to string) (decimal.Decimal, error) {
	s.swapped++
	return s.out, nil
}

type stubToken struct {
	address   string
	transfers []decimal.Decimal
	approvals []decimal.Decimal
}

func (s *stubToken) Address() string {
	return s.address
}

func (s *stubToken) Transfer(ctx context.Context, to string, amount decimal.Decimal) error {
	s.transfers = append(s.transfers, amount)
	return nil
}

func (s *stubToken) TransferFrom(ctx context.Context, from, to string, amount decimal.Decimal) error {
	return nil
}

func (s *stubToken) Approve(ctx context.Context, spender string, amount decimal.Decimal) error {
	s.approvals = append(s.approvals, amount)
	return nil
}

func (s *stubToken) BalanceOf(ctx context.Context, owner string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func TestSwapToToken(t *testing.T) {
	ctx := context.Background()

	t.Run("zero quote returns funds unswapped", func(t *testing.T) {
		router := &stubRouter{}
		token := &stubToken{address: "usd"}
		srv := New(router, "router", map[string]core.AssetToken{"usd": token})

		out, swapped, err := srv.SwapToToken(ctx, number.Decimal("10"), "usd", "gov", "alice")
		require.NoError(t, err)
		assert.False(t, swapped)
		assert.True(t, out.IsZero())
		require.Equal(t, 1, len(token.transfers))
		assert.True(t, token.transfers[0].Equal(number.Decimal("10")))
		assert.Equal(t, 0, router.swapped)
	})

	t.Run("positive quote swaps through the router", func(t *testing.T) {
		router := &stubRouter{minOut: number.Decimal("9"), out: number.Decimal("9.5")}
		token := &stubToken{address: "usd"}
		srv := New(router, "router", map[string]core.AssetToken{"usd": token})

		out, swapped, err := srv.SwapToToken(ctx, number.Decimal("10"), "usd", "gov", "alice")
		require.NoError(t, err)
		assert.True(t, swapped)
		assert.True(t, out.Equal(number.Decimal("9.5")))

		// allowance reset to zero before the real approval
		require.Equal(t, 2, len(token.approvals))
		assert.True(t, token.approvals[0].IsZero())
		assert.True(t, token.approvals[1].Equal(number.Decimal("10")))
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		srv := New(&stubRouter{}, "router", map[string]core.AssetToken{})

		_, _, err := srv.SwapToToken(ctx, number.Decimal("10"), "usd", "gov", "alice")
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	})
}
