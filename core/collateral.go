package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Account ledger account, the debt side of the collateral ledger
type Account struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Address    string          `sql:"size:66" json:"address"`
	TotalDebt  decimal.Decimal `sql:"type:decimal(32,16)" json:"total_debt"`
	UnpaidFees decimal.Decimal `sql:"type:decimal(32,16)" json:"unpaid_fees"`
	Version    int64           `sql:"default:0" json:"version"`
	CreatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Collateral one locked collateral unit. AssetID is the token id for
// non-fungible collateral and empty for fungible collateral, so the
// row is keyed by (account, token_address, asset_id).
type Collateral struct {
	ID           uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Account      string          `sql:"size:66;unique_index:collateral_idx" json:"account"`
	TokenAddress string          `sql:"size:66;unique_index:collateral_idx" json:"token_address"`
	AssetID      string          `sql:"size:36;unique_index:collateral_idx" json:"asset_id"`
	Amount       decimal.Decimal `sql:"type:decimal(32,16)" json:"amount"`
	Value        decimal.Decimal `sql:"type:decimal(32,16)" json:"value"`
	// IsTotalCollateral marks whether this row is already counted in the
	// account aggregate, so facets sharing a token never double count it.
	IsTotalCollateral bool      `sql:"default:false" json:"is_total_collateral"`
	Version           int64     `sql:"default:0" json:"version"`
	CreatedAt         time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ICollateralStore collateral ledger store interface
type ICollateralStore interface {
	FindAccount(ctx context.Context, address string) (*Account, error)
	SaveAccount(ctx context.Context, tx *db.DB, account *Account) error
	UpdateAccount(ctx context.Context, tx *db.DB, account *Account) error
	FindCollateral(ctx context.Context, account, tokenAddress, assetID string) (*Collateral, error)
	ListCollaterals(ctx context.Context, account string) ([]*Collateral, error)
	SaveCollateral(ctx context.Context, tx *db.DB, collateral *Collateral) error
	UpdateCollateral(ctx context.Context, tx *db.DB, collateral *Collateral) error
	DeleteCollateral(ctx context.Context, tx *db.DB, collateral *Collateral) error
}

// ICollateralService the collateral ledger: exclusive owner of how much is
// locked and how much is owed per account. Mutations run on the caller's
// transaction so they commit or roll back with the whole operation.
type ICollateralService interface {
	// IncreaseTotalDebt adds amount to the account debt and returns the
	// payout net of the origination fee. Fails with ErrInsufficientCollateral
	// when the projected debt exceeds MaxLoan.
	IncreaseTotalDebt(ctx context.Context, tx *db.DB, address string, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error)
	// DecreaseTotalDebt reduces the account debt, clamping at zero; the
	// returned excess is to be refunded by the caller.
	DecreaseTotalDebt(ctx context.Context, tx *db.DB, address string, amount decimal.Decimal) (decimal.Decimal, error)
	DecreaseUnpaidFees(ctx context.Context, tx *db.DB, address string, amount decimal.Decimal) error
	AddLockedCollateral(ctx context.Context, tx *db.DB, collateral *Collateral) error
	UpdateLockedCollateral(ctx context.Context, tx *db.DB, account, tokenAddress, assetID string, amount, value decimal.Decimal) error
	// RemoveLockedCollateral fails with ErrOutstandingDebt while the
	// account still owes anything.
	RemoveLockedCollateral(ctx context.Context, tx *db.DB, account, tokenAddress, assetID string) error
	// MigrateDebt transplants an externally tracked balance into the ledger.
	MigrateDebt(ctx context.Context, tx *db.DB, address string, balance, unpaidFees decimal.Decimal) error
	TotalDebt(ctx context.Context, address string) (decimal.Decimal, error)
	TotalLockedValue(ctx context.Context, address string) (decimal.Decimal, error)
	// MaxLoan locked value scaled by the utilization rate.
	MaxLoan(ctx context.Context, address string) (decimal.Decimal, error)
}
