package executor

import (
	"context"
	"strconv"

	"veloan/core"

	"github.com/shopspring/decimal"
)

type migrationFacet struct {
	*Executor
}

func (f *migrationFacet) Name() string {
	return "migration"
}

// Handle moves a position from the borrower's personal ledger account into
// their portfolio account. Only the borrower may migrate, and only once;
// debt, fees and the collateral row all move together.
func (f *migrationFacet) Handle(ctx context.Context, call *core.FacetCall) error {
	op := call.Operation

	loan, err := f.findActiveLoan(ctx, op.TokenID)
	if err != nil {
		return err
	}

	if loan.Version >= op.Version {
		return nil
	}

	if call.Caller != loan.Borrower {
		return core.ErrNotAuthorized
	}

	if loan.Migrated {
		return core.ErrAlreadyMigrated
	}

	if err := f.accrue(ctx, call.Tx, loan, op.CreatedAt); err != nil {
		return err
	}

	portfolio, err := f.portfolioSrv.GetOrCreate(ctx, call.Tx, loan.Borrower)
	if err != nil {
		return err
	}

	// drain the old account before its collateral row can be released
	if _, err := f.collateralSrv.DecreaseTotalDebt(ctx, call.Tx, loan.Account, loan.Balance); err != nil {
		return err
	}

	if err := f.collateralSrv.DecreaseUnpaidFees(ctx, call.Tx, loan.Account, loan.UnpaidFees); err != nil {
		return err
	}

	assetID := strconv.FormatUint(op.TokenID, 10)
	if err := f.collateralSrv.RemoveLockedCollateral(ctx, call.Tx, loan.Account, f.escrow.Address(), assetID); err != nil {
		return err
	}

	if err := f.collateralSrv.AddLockedCollateral(ctx, call.Tx, &core.Collateral{
		Account:      portfolio.Address,
		TokenAddress: f.escrow.Address(),
		AssetID:      assetID,
		Amount:       decimal.New(1, 0),
		Value:        loan.CollateralValue,
	}); err != nil {
		return err
	}

	if err := f.collateralSrv.MigrateDebt(ctx, call.Tx, portfolio.Address, loan.Balance, loan.UnpaidFees); err != nil {
		return err
	}

	loan.Account = portfolio.Address
	loan.Migrated = true

	if err := f.loanStore.Update(ctx, call.Tx, loan, op.Version); err != nil {
		return err
	}

	extra := core.NewTransactionExtra()
	extra.Put("token_id", op.TokenID)
	extra.Put("portfolio", portfolio.Address)

	return f.writeTransaction(ctx, call.Tx, op, extra)
}
