package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"veloan/core"
	"veloan/handler/param"
	"veloan/handler/render"
	"veloan/handler/request"
	"veloan/pkg/id"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// createOperationHandler appends one operation to the ordered log. The
// sender is the authenticated caller, never a body field. The executor
// picks the operation up asynchronously; the response only acknowledges
// the enqueue, final settlement shows up under /transactions.
func createOperationHandler(system *core.System, operationStore core.IOperationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller, ok := request.NewContext(ctx).GetCaller()
		if !ok {
			render.ForbiddenRequest(w, errors.New("authentication required"))
			return
		}

		var body struct {
			TraceID  string          `json:"trace_id"`
			FollowID string          `json:"follow_id"`
			Action   core.ActionType `json:"action"`
			TokenID  uint64          `json:"token_id"`
			Amount   decimal.Decimal `json:"amount"`
			Params   json.RawMessage `json:"params"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		if body.Action < core.ActionTypeRequestLoan || body.Action > core.ActionTypeWithdraw {
			render.BadRequest(w, errors.New("unknown action"))
			return
		}

		if body.TraceID == "" {
			body.TraceID = id.GenTraceID()
		}

		op := &core.Operation{
			TraceID:   body.TraceID,
			Sender:    caller,
			FollowID:  body.FollowID,
			Action:    body.Action,
			TokenID:   body.TokenID,
			Amount:    body.Amount,
			Params:    types.JSONText(body.Params),
			CreatedAt: time.Now(),
		}

		if err := operationStore.Create(ctx, op); err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, op)
	}
}

func createBatchHandler(system *core.System, operationStore core.IOperationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller, ok := request.NewContext(ctx).GetCaller()
		if !ok {
			render.ForbiddenRequest(w, errors.New("authentication required"))
			return
		}

		var body struct {
			TraceID  string               `json:"trace_id"`
			FollowID string               `json:"follow_id"`
			Calls    []*core.SubOperation `json:"calls"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		if len(body.Calls) == 0 {
			render.BadRequest(w, errors.New("empty batch"))
			return
		}

		params, err := json.Marshal(render.H{"calls": body.Calls})
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if body.TraceID == "" {
			body.TraceID = id.GenTraceID()
		}

		op := &core.Operation{
			TraceID:   body.TraceID,
			Sender:    caller,
			FollowID:  body.FollowID,
			Action:    core.ActionTypeBatch,
			Params:    types.JSONText(params),
			CreatedAt: time.Now(),
		}

		if err := operationStore.Create(ctx, op); err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, op)
	}
}
