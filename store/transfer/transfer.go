package transfer

import (
	"context"

	"veloan/core"

	"github.com/fox-one/pkg/store/db"
)

type transferStore struct {
	db *db.DB
}

// New new transfer store
func New(db *db.DB) core.ITransferStore {
	return &transferStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Transfer{})
		if err := tx.AutoMigrate(core.Transfer{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *transferStore) Create(ctx context.Context, tx *db.DB, transfer *core.Transfer) error {
	return tx.Update().Where("trace_id = ?", transfer.TraceID).FirstOrCreate(transfer).Error
}

func (s *transferStore) Top(ctx context.Context, limit int) ([]*core.Transfer, error) {
	var transfers []*core.Transfer
	err := s.db.View().
		Where("handled = ?", false).
		Order("id").Limit(limit).
		Find(&transfers).Error
	if err != nil {
		return nil, err
	}

	return transfers, nil
}

func (s *transferStore) Spent(ctx context.Context, transfers []*core.Transfer) error {
	return s.db.Tx(func(tx *db.DB) error {
		for _, transfer := range transfers {
			update := tx.Update().Model(core.Transfer{}).
				Where("id = ? and handled = ?", transfer.ID, false).
				Update("handled", true)
			if update.Error != nil {
				return update.Error
			}
		}

		return nil
	})
}
