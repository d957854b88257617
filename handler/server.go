package handler

import (
	"errors"
	"net/http"

	"veloan/core"
	"veloan/handler/render"
	"veloan/handler/rest"

	"github.com/go-chi/chi"
)

var errNotFound = errors.New("not found")

// Server server
type Server struct {
	system           *core.System
	session          core.Session
	loanStore        core.ILoanStore
	operationStore   core.IOperationStore
	transactionStore core.ITransactionStore
	rateStore        core.IRateStore
	portfolioStore   core.IPortfolioStore
	collateralStore  core.ICollateralStore
	collateralSrv    core.ICollateralService
	loanSrv          core.ILoanService
	oracleSrv        core.IOracleService
}

// New new server
func New(system *core.System,
	session core.Session,
	loanStore core.ILoanStore,
	operationStore core.IOperationStore,
	transactionStore core.ITransactionStore,
	rateStore core.IRateStore,
	portfolioStore core.IPortfolioStore,
	collateralStore core.ICollateralStore,
	collateralSrv core.ICollateralService,
	loanSrv core.ILoanService,
	oracleSrv core.IOracleService) Server {
	return Server{
		system:           system,
		session:          session,
		loanStore:        loanStore,
		operationStore:   operationStore,
		transactionStore: transactionStore,
		rateStore:        rateStore,
		portfolioStore:   portfolioStore,
		collateralStore:  collateralStore,
		collateralSrv:    collateralSrv,
		loanSrv:          loanSrv,
		oracleSrv:        oracleSrv,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(resetRoutePath)
	r.Use(render.WrapResponse(true))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errNotFound)
	})

	r.Mount("/", rest.Handle(
		s.system,
		s.session,
		s.loanStore,
		s.operationStore,
		s.transactionStore,
		s.rateStore,
		s.portfolioStore,
		s.collateralStore,
		s.collateralSrv,
		s.loanSrv,
		s.oracleSrv,
	))

	return r
}

func resetRoutePath(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if c := chi.RouteContext(ctx); c != nil {
			c.RoutePath = r.URL.Path
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
