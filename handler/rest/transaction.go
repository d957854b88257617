package rest

import (
	"net/http"

	"veloan/core"
	"veloan/handler/param"
	"veloan/handler/render"
)

// response executed operations, newest first when user is given
func transactionsHandler(transactionStore core.ITransactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			User   string `json:"user"`
			Offset int64  `json:"offset"`
			Limit  int    `json:"limit"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		limit := params.Limit
		if limit <= 0 || limit > 500 {
			limit = 500
		}

		var (
			transactions []*core.Transaction
			err          error
		)

		if params.User != "" {
			transactions, err = transactionStore.ListByUser(ctx, params.User, limit)
		} else {
			transactions, err = transactionStore.List(ctx, params.Offset, limit)
		}

		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, transactions)
	}
}
