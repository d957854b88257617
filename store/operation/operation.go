package operation

import (
	"context"

	"veloan/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type operationStore struct {
	db *db.DB
}

// New new operation store
func New(db *db.DB) core.IOperationStore {
	return &operationStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Operation{})
		if err := tx.AutoMigrate(core.Operation{}).Error; err != nil {
			return err
		}

		if err := tx.AddUniqueIndex("idx_operations_trace", "trace_id").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *operationStore) Create(ctx context.Context, op *core.Operation) error {
	return s.db.Update().Where("trace_id = ?", op.TraceID).FirstOrCreate(op).Error
}

func (s *operationStore) FindByTraceID(ctx context.Context, traceID string) (*core.Operation, error) {
	var op core.Operation
	if err := s.db.View().Where("trace_id = ?", traceID).First(&op).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Operation{}, nil
		}

		return nil, err
	}

	return &op, nil
}

func (s *operationStore) List(ctx context.Context, fromID int64, limit int) ([]*core.Operation, error) {
	var ops []*core.Operation
	if err := s.db.View().Where("id > ?", fromID).Order("id").Limit(limit).Find(&ops).Error; err != nil {
		return nil, err
	}

	return ops, nil
}

func (s *operationStore) Tx(fn func(tx *db.DB) error) error {
	return s.db.Tx(fn)
}
