package collateral

import (
	"context"

	"veloan/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/yiplee/structs"
)

type collateralStore struct {
	db *db.DB
}

// New new collateral store
func New(db *db.DB) core.ICollateralStore {
	return &collateralStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Account{})
		if err := tx.AutoMigrate(core.Account{}).Error; err != nil {
			return err
		}

		if err := tx.AddUniqueIndex("idx_accounts_address", "address").Error; err != nil {
			return err
		}

		tx = db.Update().Model(core.Collateral{})
		if err := tx.AutoMigrate(core.Collateral{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *collateralStore) FindAccount(ctx context.Context, address string) (*core.Account, error) {
	var account core.Account
	if err := s.db.View().Where("address = ?", address).First(&account).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Account{Address: address}, nil
		}

		return nil, err
	}

	return &account, nil
}

func (s *collateralStore) SaveAccount(ctx context.Context, tx *db.DB, account *core.Account) error {
	return tx.Update().Where("address = ?", account.Address).FirstOrCreate(account).Error
}

func (s *collateralStore) UpdateAccount(ctx context.Context, tx *db.DB, account *core.Account) error {
	version := account.Version
	account.Version++

	updates := structs.Map(account)
	delete(updates, "id")
	delete(updates, "created_at")

	t := tx.Update().Model(core.Account{}).
		Where("address = ? and version = ?", account.Address, version).
		Updates(updates)
	if t.Error != nil {
		return t.Error
	}

	if t.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *collateralStore) FindCollateral(ctx context.Context, account, tokenAddress, assetID string) (*core.Collateral, error) {
	var collateral core.Collateral
	err := s.db.View().
		Where("account = ? and token_address = ? and asset_id = ?", account, tokenAddress, assetID).
		First(&collateral).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Collateral{}, nil
		}

		return nil, err
	}

	return &collateral, nil
}

func (s *collateralStore) ListCollaterals(ctx context.Context, account string) ([]*core.Collateral, error) {
	var collaterals []*core.Collateral
	if err := s.db.View().Where("account = ?", account).Find(&collaterals).Error; err != nil {
		return nil, err
	}

	return collaterals, nil
}

func (s *collateralStore) SaveCollateral(ctx context.Context, tx *db.DB, collateral *core.Collateral) error {
	return tx.Update().
		Where("account = ? and token_address = ? and asset_id = ?", collateral.Account, collateral.TokenAddress, collateral.AssetID).
		FirstOrCreate(collateral).Error
}

func (s *collateralStore) UpdateCollateral(ctx context.Context, tx *db.DB, collateral *core.Collateral) error {
	version := collateral.Version
	collateral.Version++

	updates := structs.Map(collateral)
	delete(updates, "id")
	delete(updates, "created_at")

	t := tx.Update().Model(core.Collateral{}).
		Where("id = ? and version = ?", collateral.ID, version).
		Updates(updates)
	if t.Error != nil {
		return t.Error
	}

	if t.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *collateralStore) DeleteCollateral(ctx context.Context, tx *db.DB, collateral *core.Collateral) error {
	return tx.Update().Where("id = ?", collateral.ID).Delete(core.Collateral{}).Error
}
