package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"veloan/handler/request"

	"github.com/stretchr/testify/assert"
)

type fakeSession struct {
	callers map[string]string
}

func (s *fakeSession) Login(ctx context.Context, accessToken string) (string, error) {
	if caller, ok := s.callers[accessToken]; ok {
		return caller, nil
	}

	return "", errors.New("invalid token")
}

func TestHandleAuthentication(t *testing.T) {
	session := &fakeSession{callers: map[string]string{"token-alice": "alice"}}

	var gotCaller string
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCaller, gotOK = request.NewContext(r.Context()).GetCaller()
	})

	handler := HandleAuthentication(session)(next)

	t.Run("valid token sets the caller", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer token-alice")
		handler.ServeHTTP(httptest.NewRecorder(), r)

		assert.True(t, gotOK)
		assert.Equal(t, "alice", gotCaller)
	})

	t.Run("missing token stays anonymous", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		handler.ServeHTTP(httptest.NewRecorder(), r)

		assert.False(t, gotOK)
	})

	t.Run("bad token stays anonymous", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer forged")
		handler.ServeHTTP(httptest.NewRecorder(), r)

		assert.False(t, gotOK)
	})
}
