package rate

import (
	"context"

	"veloan/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/yiplee/structs"
)

type rateStore struct {
	db *db.DB
}

// New new rate store
func New(db *db.DB) core.IRateStore {
	return &rateStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Rates{})
		if err := tx.AutoMigrate(core.Rates{}).Error; err != nil {
			return err
		}

		if err := tx.AddUniqueIndex("idx_rates_engine", "engine").Error; err != nil {
			return err
		}

		tx = db.Update().Model(core.RateEpoch{})
		if err := tx.AutoMigrate(core.RateEpoch{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *rateStore) Find(ctx context.Context, engine string) (*core.Rates, error) {
	var rates core.Rates
	if err := s.db.View().Where("engine = ?", engine).First(&rates).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Rates{Engine: engine}, nil
		}

		return nil, err
	}

	return &rates, nil
}

func (s *rateStore) Save(ctx context.Context, rates *core.Rates) error {
	return s.db.Update().Where("engine = ?", rates.Engine).FirstOrCreate(rates).Error
}

func (s *rateStore) Update(ctx context.Context, rates *core.Rates, version int64) error {
	if rates.Version >= version {
		return nil
	}

	rates.Version = version

	updates := structs.Map(rates)
	delete(updates, "id")
	delete(updates, "created_at")

	tx := s.db.Update().Model(core.Rates{}).
		Where("engine = ? and version < ?", rates.Engine, version).
		Updates(updates)

	return tx.Error
}

// SaveEpochRate write once; a second write for the same epoch is a no-op.
func (s *rateStore) SaveEpochRate(ctx context.Context, engine string, epoch int64, rate decimal.Decimal) error {
	row := &core.RateEpoch{
		Engine: engine,
		Epoch:  epoch,
		Rate:   rate,
	}

	return s.db.Update().Where("engine = ? and epoch = ?", engine, epoch).FirstOrCreate(row).Error
}

func (s *rateStore) FindEpochRate(ctx context.Context, engine string, epoch int64) (*core.RateEpoch, error) {
	var row core.RateEpoch
	if err := s.db.View().Where("engine = ? and epoch = ?", engine, epoch).First(&row).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.RateEpoch{Engine: engine, Epoch: epoch}, nil
		}

		return nil, err
	}

	return &row, nil
}

func (s *rateStore) ListEpochRates(ctx context.Context, engine string, from, limit int64) ([]*core.RateEpoch, error) {
	var rows []*core.RateEpoch
	err := s.db.View().
		Where("engine = ? and epoch >= ?", engine, from).
		Order("epoch").Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}
