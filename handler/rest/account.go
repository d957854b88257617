package rest

import (
	"errors"
	"net/http"

	"veloan/core"
	"veloan/handler/codes"
	"veloan/handler/render"
	"veloan/handler/views"

	"github.com/go-chi/chi"
	"github.com/twitchtv/twirp"
)

func accountHandler(collateralStore core.ICollateralStore, collateralSrv core.ICollateralService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		address := chi.URLParam(r, "address")
		if address == "" {
			render.BadRequest(w, errors.New("address required"))
			return
		}

		account, err := collateralStore.FindAccount(ctx, address)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		collaterals, err := collateralStore.ListCollaterals(ctx, address)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		lockedValue, err := collateralSrv.TotalLockedValue(ctx, address)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		maxLoan, err := collateralSrv.MaxLoan(ctx, address)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, views.NewAccount(account, collaterals, lockedValue, maxLoan))
	}
}

func portfolioHandler(portfolioStore core.IPortfolioStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		owner := chi.URLParam(r, "owner")
		if owner == "" {
			render.BadRequest(w, errors.New("owner required"))
			return
		}

		portfolio, err := portfolioStore.FindByOwner(ctx, owner)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if portfolio.ID == 0 {
			render.Error(w, http.StatusNotFound, codes.Get(twirp.NotFound), errors.New("portfolio not found"))
			return
		}

		render.JSON(w, portfolio)
	}
}
