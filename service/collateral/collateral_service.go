package collateral

import (
	"context"

	"veloan/core"
	"veloan/pkg/lending"
	"veloan/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type collateralService struct {
	engine          string
	collateralStore core.ICollateralStore
	rateStore       core.IRateStore
}

// New new collateral service
func New(engine string,
	collateralStore core.ICollateralStore,
	rateStore core.IRateStore) core.ICollateralService {
	return &collateralService{
		engine:          engine,
		collateralStore: collateralStore,
		rateStore:       rateStore,
	}
}

func (s *collateralService) IncreaseTotalDebt(ctx context.Context, tx *db.DB, address string, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, decimal.Zero, core.ErrInvalidAmount
	}

	if amount.IsZero() {
		return decimal.Zero, decimal.Zero, nil
	}

	account, err := s.collateralStore.FindAccount(ctx, address)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	maxLoan, err := s.MaxLoan(ctx, address)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	projected := account.TotalDebt.Add(amount)
	if projected.GreaterThan(maxLoan) {
		return decimal.Zero, decimal.Zero, core.ErrInsufficientCollateral
	}

	fee := lending.OriginationFee(amount)
	afterFees := amount.Sub(fee)

	account.TotalDebt = projected
	if err := s.saveAccount(ctx, tx, account); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return afterFees, fee, nil
}

func (s *collateralService) DecreaseTotalDebt(ctx context.Context, tx *db.DB, address string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	if amount.IsZero() {
		return decimal.Zero, nil
	}

	account, err := s.collateralStore.FindAccount(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}

	applied := number.Min(amount, account.TotalDebt)
	excess := amount.Sub(applied)

	account.TotalDebt = number.NonNegative(account.TotalDebt.Sub(applied))
	if err := s.saveAccount(ctx, tx, account); err != nil {
		return decimal.Zero, err
	}

	return excess, nil
}

func (s *collateralService) DecreaseUnpaidFees(ctx context.Context, tx *db.DB, address string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return core.ErrInvalidAmount
	}

	if amount.IsZero() {
		return nil
	}

	account, err := s.collateralStore.FindAccount(ctx, address)
	if err != nil {
		return err
	}

	account.UnpaidFees = number.NonNegative(account.UnpaidFees.Sub(amount))
	return s.saveAccount(ctx, tx, account)
}

func (s *collateralService) AddLockedCollateral(ctx context.Context, tx *db.DB, collateral *core.Collateral) error {
	collateral.IsTotalCollateral = true

	// non-fungible units are distinct rows; a fungible token's aggregate
	// is counted once per account no matter how many facets record it
	if collateral.AssetID == "" {
		existing, err := s.collateralStore.ListCollaterals(ctx, collateral.Account)
		if err != nil {
			return err
		}

		for _, c := range existing {
			if c.TokenAddress == collateral.TokenAddress && c.IsTotalCollateral {
				collateral.IsTotalCollateral = false
				break
			}
		}
	}

	return s.collateralStore.SaveCollateral(ctx, tx, collateral)
}

func (s *collateralService) UpdateLockedCollateral(ctx context.Context, tx *db.DB, account, tokenAddress, assetID string, amount, value decimal.Decimal) error {
	collateral, err := s.collateralStore.FindCollateral(ctx, account, tokenAddress, assetID)
	if err != nil {
		return err
	}

	if collateral.ID == 0 {
		return core.ErrAccountNotFound
	}

	collateral.Amount = amount
	collateral.Value = value

	return s.collateralStore.UpdateCollateral(ctx, tx, collateral)
}

func (s *collateralService) RemoveLockedCollateral(ctx context.Context, tx *db.DB, account, tokenAddress, assetID string) error {
	acct, err := s.collateralStore.FindAccount(ctx, account)
	if err != nil {
		return err
	}

	if acct.TotalDebt.IsPositive() || acct.UnpaidFees.IsPositive() {
		return core.ErrOutstandingDebt
	}

	collateral, err := s.collateralStore.FindCollateral(ctx, account, tokenAddress, assetID)
	if err != nil {
		return err
	}

	if collateral.ID == 0 {
		return core.ErrAccountNotFound
	}

	return s.collateralStore.DeleteCollateral(ctx, tx, collateral)
}

func (s *collateralService) MigrateDebt(ctx context.Context, tx *db.DB, address string, balance, unpaidFees decimal.Decimal) error {
	if balance.IsNegative() || unpaidFees.IsNegative() {
		return core.ErrInvalidAmount
	}

	account, err := s.collateralStore.FindAccount(ctx, address)
	if err != nil {
		return err
	}

	account.TotalDebt = account.TotalDebt.Add(balance)
	account.UnpaidFees = account.UnpaidFees.Add(unpaidFees)

	return s.saveAccount(ctx, tx, account)
}

func (s *collateralService) TotalDebt(ctx context.Context, address string) (decimal.Decimal, error) {
	account, err := s.collateralStore.FindAccount(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}

	return account.TotalDebt, nil
}

func (s *collateralService) TotalLockedValue(ctx context.Context, address string) (decimal.Decimal, error) {
	collaterals, err := s.collateralStore.ListCollaterals(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, c := range collaterals {
		if c.IsTotalCollateral {
			total = total.Add(c.Value)
		}
	}

	return total.Truncate(lending.MaxPrecision), nil
}

func (s *collateralService) MaxLoan(ctx context.Context, address string) (decimal.Decimal, error) {
	locked, err := s.TotalLockedValue(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}

	rates, err := s.rateStore.Find(ctx, s.engine)
	if err != nil {
		return decimal.Zero, err
	}

	return lending.MaxLoan(locked, rates.UtilizationRate), nil
}

func (s *collateralService) saveAccount(ctx context.Context, tx *db.DB, account *core.Account) error {
	if account.ID == 0 {
		return s.collateralStore.SaveAccount(ctx, tx, account)
	}

	return s.collateralStore.UpdateAccount(ctx, tx, account)
}
