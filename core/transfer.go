package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Transfer a queued outbound payment, spent by the cashier worker
type Transfer struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
	TraceID   string          `sql:"size:36;unique_index:trace_idx" json:"trace_id,omitempty"`
	Opponent  string          `sql:"size:66" json:"opponent,omitempty"`
	AssetID   string          `sql:"size:66" json:"asset_id,omitempty"`
	Amount    decimal.Decimal `sql:"type:decimal(32,16)" json:"amount,omitempty"`
	Source    TransferSource  `json:"source,omitempty"`
	Memo      string          `sql:"size:140" json:"memo,omitempty"`
	Handled   bool            `sql:"default:false" json:"handled,omitempty"`
}

// ITransferStore transfer store interface
type ITransferStore interface {
	Create(ctx context.Context, tx *db.DB, transfer *Transfer) error
	Top(ctx context.Context, limit int) ([]*Transfer, error)
	Spent(ctx context.Context, transfers []*Transfer) error
}
