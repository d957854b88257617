package portfolio

import (
	"context"

	"veloan/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/yiplee/structs"
)

type portfolioStore struct {
	db *db.DB
}

// New new portfolio store
func New(db *db.DB) core.IPortfolioStore {
	return &portfolioStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Portfolio{})
		if err := tx.AutoMigrate(core.Portfolio{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *portfolioStore) Create(ctx context.Context, tx *db.DB, portfolio *core.Portfolio) error {
	return tx.Update().Where("owner = ?", portfolio.Owner).FirstOrCreate(portfolio).Error
}

func (s *portfolioStore) Find(ctx context.Context, address string) (*core.Portfolio, error) {
	var portfolio core.Portfolio
	if err := s.db.View().Where("address = ?", address).First(&portfolio).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Portfolio{}, nil
		}

		return nil, err
	}

	return &portfolio, nil
}

func (s *portfolioStore) FindByOwner(ctx context.Context, owner string) (*core.Portfolio, error) {
	var portfolio core.Portfolio
	if err := s.db.View().Where("owner = ?", owner).First(&portfolio).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Portfolio{}, nil
		}

		return nil, err
	}

	return &portfolio, nil
}

func (s *portfolioStore) Update(ctx context.Context, tx *db.DB, portfolio *core.Portfolio, version int64) error {
	if portfolio.Version > version {
		return nil
	}

	portfolio.Version = version

	updates := structs.Map(portfolio)
	delete(updates, "id")
	delete(updates, "created_at")

	t := tx.Update().Model(core.Portfolio{}).
		Where("address = ? and version <= ?", portfolio.Address, version).
		Updates(updates)

	return t.Error
}
