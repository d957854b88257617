package executor

import (
	"context"

	"veloan/core"
)

type walletFacet struct {
	*Executor
}

func (f *walletFacet) Name() string {
	return "wallet"
}

type withdrawParams struct {
	Account string `json:"account,omitempty"`
}

// Handle pays unencumbered portfolio funds out to the caller. Locked
// collateral is tracked in its own rows and never reachable from here.
func (f *walletFacet) Handle(ctx context.Context, call *core.FacetCall) error {
	op := call.Operation

	if !op.Amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	var params withdrawParams
	if err := op.UnmarshalParams(&params); err != nil {
		return core.ErrInvalidArgument
	}

	var portfolio *core.Portfolio
	var err error
	if params.Account != "" {
		ok, err := f.portfolioSrv.Authorized(ctx, params.Account, call.Caller)
		if err != nil {
			return err
		}

		if !ok {
			return core.ErrNotAuthorized
		}

		portfolio, err = f.portfolioSrv.Find(ctx, params.Account)
		if err != nil {
			return err
		}
	} else {
		portfolio, err = f.portfolioSrv.GetOrCreate(ctx, call.Tx, call.Caller)
		if err != nil {
			return err
		}
	}

	if portfolio.Version >= op.Version {
		return nil
	}

	if op.Amount.GreaterThan(portfolio.Balance) {
		return core.ErrInvalidAmount
	}

	portfolio.Balance = portfolio.Balance.Sub(op.Amount)
	if err := f.portfolioStore.Update(ctx, call.Tx, portfolio, op.Version); err != nil {
		return err
	}

	if err := f.transferOut(ctx, call.Tx, op, call.Caller, core.TransferSourceWithdraw, f.system.Asset, op.Amount, "withdraw"); err != nil {
		return err
	}

	extra := core.NewTransactionExtra()
	extra.Put("account", portfolio.Address)

	return f.writeTransaction(ctx, call.Tx, op, extra)
}
