package rest

import (
	"errors"
	"net/http"

	"veloan/core"
	"veloan/handler/auth"
	"veloan/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(system *core.System,
	session core.Session,
	loanStore core.ILoanStore,
	operationStore core.IOperationStore,
	transactionStore core.ITransactionStore,
	rateStore core.IRateStore,
	portfolioStore core.IPortfolioStore,
	collateralStore core.ICollateralStore,
	collateralSrv core.ICollateralService,
	loanSrv core.ILoanService,
	oracleSrv core.IOracleService) http.Handler {
	router := chi.NewRouter()
	router.Use(auth.HandleAuthentication(session))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/loans", loansHandler(loanStore))
	router.Get("/loans/{tokenID}", loanHandler(system, loanStore, loanSrv))
	router.Get("/accounts/{address}", accountHandler(collateralStore, collateralSrv))
	router.Get("/portfolios/{owner}", portfolioHandler(portfolioStore))
	router.Get("/rates", ratesHandler(system, rateStore))
	router.Get("/rates/epochs", epochRatesHandler(system, rateStore))
	router.Put("/rates", updateRatesHandler(system, rateStore))
	router.Get("/price", priceHandler(oracleSrv))
	router.Get("/transactions", transactionsHandler(transactionStore))
	router.Post("/operations", createOperationHandler(system, operationStore))
	router.Post("/operations/batch", createBatchHandler(system, operationStore))

	return router
}
