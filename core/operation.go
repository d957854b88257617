package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Operation one entry of the ordered operation log. The executor consumes
// operations strictly by id, so every handler observes the ledger in a
// serialized order.
type Operation struct {
	ID        int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string          `sql:"size:36" json:"trace_id"`
	Sender    string          `sql:"size:66" json:"sender"`
	FollowID  string          `sql:"size:36" json:"follow_id"`
	Action    ActionType      `json:"action"`
	TokenID   uint64          `sql:"default:0" json:"token_id"`
	Amount    decimal.Decimal `sql:"type:decimal(32,16)" json:"amount"`
	Params    types.JSONText  `sql:"type:TEXT" json:"params"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`

	// Version is the row-guard version assigned by the executor. It is
	// derived from ID with room below it for batch sub-steps, so every
	// state-mutating step of one operation carries a distinct monotonic
	// version.
	Version int64 `sql:"-" json:"-"`
}

// UnmarshalParams decode operation params into v
func (o *Operation) UnmarshalParams(v interface{}) error {
	if len(o.Params) == 0 {
		return nil
	}

	return json.Unmarshal(o.Params, v)
}

// SubOperation one call inside a batch operation
type SubOperation struct {
	Action  ActionType      `json:"action"`
	Account string          `json:"account"`
	TokenID uint64          `json:"token_id,omitempty"`
	Amount  decimal.Decimal `json:"amount,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IOperationStore operation log store interface
type IOperationStore interface {
	Create(ctx context.Context, op *Operation) error
	FindByTraceID(ctx context.Context, traceID string) (*Operation, error)
	List(ctx context.Context, fromID int64, limit int) ([]*Operation, error)
	// Tx runs fn inside one database transaction; the executor applies
	// every operation through it so a rejection rolls all writes back.
	Tx(fn func(tx *db.DB) error) error
}
