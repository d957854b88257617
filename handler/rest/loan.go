package rest

import (
	"errors"
	"net/http"

	"veloan/core"
	"veloan/handler/codes"
	"veloan/handler/param"
	"veloan/handler/render"
	"veloan/handler/views"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/twitchtv/twirp"
)

func loansHandler(loanStore core.ILoanStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Borrower string `json:"borrower"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Borrower == "" {
			render.BadRequest(w, errors.New("borrower required"))
			return
		}

		loans, err := loanStore.FindByBorrower(ctx, params.Borrower)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		items := make([]views.Loan, 0, len(loans))
		for _, loan := range loans {
			items = append(items, views.NewLoan(loan, decimal.Zero))
		}

		render.JSON(w, items)
	}
}

func loanHandler(system *core.System, loanStore core.ILoanStore, loanSrv core.ILoanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenID := cast.ToUint64(chi.URLParam(r, "tokenID"))
		if tokenID == 0 {
			render.BadRequest(w, errors.New("invalid token id"))
			return
		}

		loan, err := loanStore.Find(ctx, system.Engine, tokenID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if loan.ID == 0 {
			render.Error(w, http.StatusNotFound, codes.Get(twirp.NotFound), errors.New("loan not found"))
			return
		}

		maxLoan, err := loanSrv.MaxLoan(ctx, loan)
		if err != nil {
			maxLoan = decimal.Zero
		}

		render.JSON(w, views.NewLoan(loan, maxLoan))
	}
}
