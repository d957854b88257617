package oracle

import (
	"context"
	"testing"
	"time"

	"veloan/core"
	"veloan/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOracle struct {
	round *core.PriceRound
}

func (s *stubOracle) LatestRoundData(ctx context.Context) (*core.PriceRound, error) {
	return s.round, nil
}

func TestConfirmPrice(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled check always passes", func(t *testing.T) {
		srv := New(core.OracleConfig{}, &stubOracle{})

		ok, err := srv.ConfirmPrice(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("fresh on-peg round passes", func(t *testing.T) {
		srv := New(core.OracleConfig{CheckEnabled: true}, &stubOracle{
			round: &core.PriceRound{
				Answer:    number.Decimal("1.0001"),
				UpdatedAt: time.Now().Add(-time.Hour),
			},
		})

		ok, err := srv.ConfirmPrice(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("stale round fails", func(t *testing.T) {
		srv := New(core.OracleConfig{CheckEnabled: true}, &stubOracle{
			round: &core.PriceRound{
				Answer:    number.Decimal("1"),
				UpdatedAt: time.Now().Add(-26 * time.Hour),
			},
		})

		ok, err := srv.ConfirmPrice(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("off peg round fails", func(t *testing.T) {
		srv := New(core.OracleConfig{CheckEnabled: true}, &stubOracle{
			round: &core.PriceRound{
				Answer:    number.Decimal("0.998"),
				UpdatedAt: time.Now(),
			},
		})

		ok, err := srv.ConfirmPrice(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("custom staleness bound", func(t *testing.T) {
		srv := New(core.OracleConfig{CheckEnabled: true, StalenessSeconds: 60}, &stubOracle{
			round: &core.PriceRound{
				Answer:    number.Decimal("1"),
				UpdatedAt: time.Now().Add(-10 * time.Minute),
			},
		})

		ok, err := srv.ConfirmPrice(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
