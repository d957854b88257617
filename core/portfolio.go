package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Portfolio a per-user account aggregating collateral positions. The
// diamond-proxy pattern of the on-chain model becomes an explicit row plus
// a facet registry: one portfolio per owner, facets dispatched by action.
type Portfolio struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Address   string          `sql:"size:66;unique_index:idx_portfolios_address" json:"address"`
	Owner     string          `sql:"size:66;unique_index:idx_portfolios_owner" json:"owner"`
	Balance   decimal.Decimal `sql:"type:decimal(32,16)" json:"balance"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IPortfolioStore portfolio store interface
type IPortfolioStore interface {
	Create(ctx context.Context, tx *db.DB, portfolio *Portfolio) error
	Find(ctx context.Context, address string) (*Portfolio, error)
	FindByOwner(ctx context.Context, owner string) (*Portfolio, error)
	Update(ctx context.Context, tx *db.DB, portfolio *Portfolio, version int64) error
}

// IPortfolioService portfolio account factory and authorization
type IPortfolioService interface {
	// GetOrCreate the portfolio account for owner, created on first use.
	GetOrCreate(ctx context.Context, tx *db.DB, owner string) (*Portfolio, error)
	Find(ctx context.Context, address string) (*Portfolio, error)
	// Authorized whether caller may operate the account.
	Authorized(ctx context.Context, account, caller string) (bool, error)
}

// FacetCall the context threaded through a facet handler. Tx is the
// operation's database transaction; every mutation goes through it.
type FacetCall struct {
	Operation *Operation
	Account   *Portfolio
	Tx        *db.DB
	Caller    string
	Body      []byte
}

// Facet one orchestration surface of a portfolio account. Facets own no
// accounting logic; they guard the caller and delegate to the ledger and
// the loan engine.
type Facet interface {
	Name() string
	Handle(ctx context.Context, call *FacetCall) error
}

// FacetRegistry action type to facet dispatch table
type FacetRegistry struct {
	facets map[ActionType]Facet
}

// NewFacetRegistry new registry
func NewFacetRegistry() *FacetRegistry {
	return &FacetRegistry{facets: make(map[ActionType]Facet)}
}

// Register bind a facet to an action type
func (r *FacetRegistry) Register(action ActionType, facet Facet) {
	r.facets[action] = facet
}

// Dispatch route a call to the registered facet
func (r *FacetRegistry) Dispatch(ctx context.Context, action ActionType, call *FacetCall) error {
	facet, ok := r.facets[action]
	if !ok {
		return ErrOperationForbidden
	}

	return facet.Handle(ctx, call)
}
