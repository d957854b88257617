package rest

import (
	"net/http"

	"veloan/core"
	"veloan/handler/render"
)

func priceHandler(oracleSrv core.IOracleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		round, err := oracleSrv.LatestRound(ctx)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		ok, err := oracleSrv.ConfirmPrice(ctx)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{
			"price":      round.Answer,
			"updated_at": round.UpdatedAt,
			"healthy":    ok,
		})
	}
}
