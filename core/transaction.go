package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// TransactionStatus tx status
type TransactionStatus int

const (
	// TransactionStatusNormal applied
	TransactionStatusNormal TransactionStatus = iota + 1
	// TransactionStatusAborted rejected before any side effect
	TransactionStatusAborted
)

// Transaction the per-operation record emitted for off-chain indexing
type Transaction struct {
	ID        int64             `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	Action    ActionType        `json:"action,omitempty"`
	TraceID   string            `sql:"size:36;unique_index:idx_transactions_trace_id" json:"trace_id,omitempty"`
	UserID    string            `sql:"size:66;index:idx_transactions_user_id" json:"user_id,omitempty"`
	FollowID  string            `sql:"size:36;index:idx_transactions_follow_id" json:"follow_id,omitempty"`
	TokenID   uint64            `sql:"default:0" json:"token_id,omitempty"`
	AssetID   string            `sql:"size:66" json:"asset_id,omitempty"`
	Amount    decimal.Decimal   `sql:"type:decimal(32,16)" json:"amount,omitempty"`
	Data      types.JSONText    `sql:"type:TEXT" json:"data,omitempty"`
	Status    TransactionStatus `sql:"default:1" json:"status,omitempty"`
	CreatedAt time.Time         `sql:"default:CURRENT_TIMESTAMP;index:idx_transactions_created_at" json:"created_at,omitempty"`
}

// TransactionExtra extra data
type TransactionExtra map[string]interface{}

// NewTransactionExtra new transaction extra instance
func NewTransactionExtra() TransactionExtra {
	return make(TransactionExtra)
}

// Put put data
func (t TransactionExtra) Put(key string, value interface{}) {
	t[key] = value
}

// Format format as []byte by default
func (t TransactionExtra) Format() []byte {
	bs, e := json.Marshal(t)
	if e != nil {
		return []byte("{}")
	}

	return bs
}

// BuildTransactionFromOperation build tx record from an executed operation
func BuildTransactionFromOperation(op *Operation, status TransactionStatus, extra TransactionExtra) *Transaction {
	tx := &Transaction{
		Action:   op.Action,
		TraceID:  op.TraceID,
		UserID:   op.Sender,
		FollowID: op.FollowID,
		TokenID:  op.TokenID,
		Amount:   op.Amount,
		Status:   status,
	}

	if extra != nil {
		tx.Data = extra.Format()
	}

	return tx
}

// ITransactionStore transaction store interface
type ITransactionStore interface {
	Create(ctx context.Context, tx *db.DB, transaction *Transaction) error
	FindByTraceID(ctx context.Context, traceID string) (*Transaction, error)
	List(ctx context.Context, fromID int64, limit int) ([]*Transaction, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Transaction, error)
}
