package rest

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"veloan/core"
	"veloan/handler/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRateStore struct {
	core.IRateStore
	rates     *core.Rates
	updated   *core.Rates
	updateErr error
}

func (s *stubRateStore) Find(ctx context.Context, engine string) (*core.Rates, error) {
	return s.rates, nil
}

func (s *stubRateStore) Update(ctx context.Context, rates *core.Rates, version int64) error {
	if s.updateErr != nil {
		return s.updateErr
	}

	s.updated = rates
	return nil
}

func putRates(caller, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPut, "/rates", bytes.NewBufferString(body))
	if caller != "" {
		ctx := request.NewContext(r.Context()).WithCaller(caller)
		r = r.WithContext(ctx)
	}

	return r
}

func TestUpdateRatesHandler(t *testing.T) {
	system := &core.System{Engine: "test", Admins: []string{"admin"}}

	t.Run("anonymous rejected", func(t *testing.T) {
		store := &stubRateStore{rates: &core.Rates{Engine: "test"}}
		w := httptest.NewRecorder()
		updateRatesHandler(system, store)(w, putRates("", `{"rewards_rate":100}`))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("non admin rejected", func(t *testing.T) {
		store := &stubRateStore{rates: &core.Rates{Engine: "test"}}
		w := httptest.NewRecorder()
		updateRatesHandler(system, store)(w, putRates("mallory", `{"rewards_rate":100}`))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("zero fields keep stored values", func(t *testing.T) {
		store := &stubRateStore{rates: &core.Rates{Engine: "test", RewardsRate: 50, ProtocolFee: 500}}
		w := httptest.NewRecorder()
		updateRatesHandler(system, store)(w, putRates("admin", `{"rewards_rate":100}`))

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, store.updated)
		assert.EqualValues(t, 100, store.updated.RewardsRate)
		assert.EqualValues(t, 500, store.updated.ProtocolFee)
	})

	t.Run("failed update leaves the stored rates untouched", func(t *testing.T) {
		current := &core.Rates{Engine: "test", RewardsRate: 50}
		store := &stubRateStore{rates: current, updateErr: errors.New("version conflict")}

		w := httptest.NewRecorder()
		updateRatesHandler(system, store)(w, putRates("admin", `{"rewards_rate":100}`))

		// Find hands back a shared pointer, a cached entry in production;
		// a rejected update must not have scribbled on it
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.EqualValues(t, 50, current.RewardsRate)
	})
}
