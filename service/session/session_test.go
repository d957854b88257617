package session

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, subject, issuer string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject: subject,
		Issuer:  issuer,
	})

	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token resolves the caller", func(t *testing.T) {
		s := New("secret", 0, nil)

		caller, err := s.Login(ctx, signToken(t, "secret", "alice", ""))
		require.NoError(t, err)
		assert.Equal(t, "alice", caller)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		s := New("secret", 0, nil)

		_, err := s.Login(ctx, signToken(t, "other", "alice", ""))
		assert.Error(t, err)
	})

	t.Run("empty subject rejected", func(t *testing.T) {
		s := New("secret", 0, nil)

		_, err := s.Login(ctx, signToken(t, "secret", "", ""))
		assert.Error(t, err)
	})

	t.Run("issuer allowlist enforced", func(t *testing.T) {
		s := New("secret", 0, []string{"veloan"})

		caller, err := s.Login(ctx, signToken(t, "secret", "alice", "veloan"))
		require.NoError(t, err)
		assert.Equal(t, "alice", caller)

		_, err = s.Login(ctx, signToken(t, "secret", "alice", "stranger"))
		assert.Error(t, err)
	})

	t.Run("cached login returns the same caller", func(t *testing.T) {
		s := New("secret", 16, nil)
		token := signToken(t, "secret", "bob", "")

		for i := 0; i < 2; i++ {
			caller, err := s.Login(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, "bob", caller)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		s := New("secret", 0, nil)

		_, err := s.Login(ctx, "not-a-token")
		assert.Error(t, err)
	})
}
