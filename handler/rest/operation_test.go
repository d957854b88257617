package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"veloan/core"
	"veloan/handler/request"

	"github.com/fox-one/pkg/store/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOperationStore struct {
	items []*core.Operation
}

func (s *memOperationStore) Create(ctx context.Context, op *core.Operation) error {
	s.items = append(s.items, op)
	return nil
}

func (s *memOperationStore) FindByTraceID(ctx context.Context, traceID string) (*core.Operation, error) {
	return &core.Operation{}, nil
}

func (s *memOperationStore) List(ctx context.Context, fromID int64, limit int) ([]*core.Operation, error) {
	return s.items, nil
}

func (s *memOperationStore) Tx(fn func(tx *db.DB) error) error {
	return fn(nil)
}

func postOperation(caller, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/operations", bytes.NewBufferString(body))
	if caller != "" {
		ctx := request.NewContext(r.Context()).WithCaller(caller)
		r = r.WithContext(ctx)
	}

	return r
}

func TestCreateOperationHandler(t *testing.T) {
	system := &core.System{Engine: "test"}

	t.Run("anonymous rejected", func(t *testing.T) {
		store := &memOperationStore{}
		w := httptest.NewRecorder()
		createOperationHandler(system, store)(w, postOperation("", `{"action":2,"token_id":1,"amount":"10"}`))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, 0, len(store.items))
	})

	t.Run("sender comes from the session, not the body", func(t *testing.T) {
		store := &memOperationStore{}
		w := httptest.NewRecorder()
		body := `{"action":2,"token_id":1,"amount":"10","sender":"mallory"}`
		createOperationHandler(system, store)(w, postOperation("alice", body))

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, 1, len(store.items))
		assert.Equal(t, "alice", store.items[0].Sender)
	})

	t.Run("unknown action rejected", func(t *testing.T) {
		store := &memOperationStore{}
		w := httptest.NewRecorder()
		createOperationHandler(system, store)(w, postOperation("alice", `{"action":99}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateBatchHandler(t *testing.T) {
	system := &core.System{Engine: "test"}

	t.Run("anonymous rejected", func(t *testing.T) {
		store := &memOperationStore{}
		w := httptest.NewRecorder()
		createBatchHandler(system, store)(w, postOperation("", `{"calls":[{"action":2,"token_id":1}]}`))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("batch carries the session sender", func(t *testing.T) {
		store := &memOperationStore{}
		w := httptest.NewRecorder()
		createBatchHandler(system, store)(w, postOperation("alice", `{"calls":[{"action":2,"token_id":1,"amount":"5"}]}`))

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, 1, len(store.items))

		op := store.items[0]
		assert.Equal(t, "alice", op.Sender)
		assert.Equal(t, core.ActionTypeBatch, op.Action)

		var params struct {
			Calls []*core.SubOperation `json:"calls"`
		}
		require.NoError(t, json.Unmarshal(op.Params, &params))
		require.Equal(t, 1, len(params.Calls))
		assert.EqualValues(t, 1, params.Calls[0].TokenID)
	})
}
