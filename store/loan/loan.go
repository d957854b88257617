package loan

import (
	"context"

	"veloan/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/yiplee/structs"
)

type loanStore struct {
	db *db.DB
}

// New new loan store
func New(db *db.DB) core.ILoanStore {
	return &loanStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Loan{})
		if err := tx.AutoMigrate(core.Loan{}).Error; err != nil {
			return err
		}

		if err := tx.AddIndex("idx_loans_borrower", "borrower").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *loanStore) Create(ctx context.Context, tx *db.DB, loan *core.Loan) error {
	return tx.Update().
		Where("engine = ? and token_id = ?", loan.Engine, loan.TokenID).
		FirstOrCreate(loan).Error
}

func (s *loanStore) Find(ctx context.Context, engine string, tokenID uint64) (*core.Loan, error) {
	var loan core.Loan
	err := s.db.View().Where("engine = ? and token_id = ?", engine, tokenID).First(&loan).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Loan{}, nil
		}

		return nil, err
	}

	return &loan, nil
}

func (s *loanStore) FindByBorrower(ctx context.Context, borrower string) ([]*core.Loan, error) {
	var loans []*core.Loan
	if err := s.db.View().Where("borrower = ?", borrower).Find(&loans).Error; err != nil {
		return nil, err
	}

	return loans, nil
}

func (s *loanStore) All(ctx context.Context, engine string) ([]*core.Loan, error) {
	var loans []*core.Loan
	if err := s.db.View().Where("engine = ?", engine).Find(&loans).Error; err != nil {
		return nil, err
	}

	return loans, nil
}

// Update persists the row at the given operation version. Writes within
// one operation share the version and all land; only a strictly older
// version is rejected. Replay skipping is the caller's job, guarded on
// the row version before any mutation.
func (s *loanStore) Update(ctx context.Context, tx *db.DB, loan *core.Loan, version int64) error {
	if loan.Version > version {
		return nil
	}

	loan.Version = version

	updates := structs.Map(loan)
	delete(updates, "id")
	delete(updates, "created_at")

	t := tx.Update().Model(core.Loan{}).
		Where("engine = ? and token_id = ? and version <= ?", loan.Engine, loan.TokenID, version).
		Updates(updates)

	return t.Error
}
