package executor

import (
	"context"

	"veloan/core"
)

type claimingFacet struct {
	*Executor
}

func (f *claimingFacet) Name() string {
	return "claiming"
}

type claimParams struct {
	FeeContracts []string `json:"fee_contracts,omitempty"`
	FeeTokens    []string `json:"fee_tokens,omitempty"`
}

// Handle realizes rewards for the loan. Accounting and policy settlement
// live in the loan engine; this facet only guards the caller, reconciles
// the ledger account and queues whatever the engine says is owed out.
func (f *claimingFacet) Handle(ctx context.Context, call *core.FacetCall) error {
	op := call.Operation

	loan, err := f.findActiveLoan(ctx, op.TokenID)
	if err != nil {
		return err
	}

	if loan.Version >= op.Version {
		return nil
	}

	if err := f.authorizeLoan(ctx, loan, call.Caller); err != nil {
		return err
	}

	var params claimParams
	if err := op.UnmarshalParams(&params); err != nil {
		return core.ErrInvalidArgument
	}

	// reconcile accrual into the ledger first so the engine's own accrual
	// pass inside Claim is a no-op and the account stays equal to its loans
	if err := f.accrue(ctx, call.Tx, loan, op.CreatedAt); err != nil {
		return err
	}

	result, err := f.loanSrv.Claim(ctx, call.Tx, loan, op.CreatedAt, params.FeeContracts, params.FeeTokens, op.Version)
	if err != nil {
		return err
	}

	if result.PaidOut.IsPositive() {
		token := result.PayoutToken
		if token == "" {
			token = f.system.Asset
		}

		if err := f.transferOut(ctx, call.Tx, op, loan.Borrower, core.TransferSourceReward, token, result.PaidOut, "reward"); err != nil {
			return err
		}
	}

	if result.ToppedUp.IsPositive() {
		if err := f.transferOut(ctx, call.Tx, op, loan.Borrower, core.TransferSourceBorrow, f.system.Asset, result.ToppedUp, "topup"); err != nil {
			return err
		}
	}

	extra := core.NewTransactionExtra()
	extra.Put("token_id", op.TokenID)
	extra.Put("claim", result)

	return f.writeTransaction(ctx, call.Tx, op, extra)
}
