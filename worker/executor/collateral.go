package executor

import (
	"context"
	"strconv"

	"veloan/core"

	"github.com/shopspring/decimal"
)

type collateralFacet struct {
	*Executor
}

func (f *collateralFacet) Name() string {
	return "collateral"
}

func (f *collateralFacet) Handle(ctx context.Context, call *core.FacetCall) error {
	switch call.Operation.Action {
	case core.ActionTypeConfigureLoan:
		return f.configure(ctx, call)
	case core.ActionTypeRemoveCollateral:
		return f.remove(ctx, call)
	}

	return core.ErrOperationForbidden
}

// optional fields are pointers so a configure call only touches what it
// names
type configureParams struct {
	ZeroBalanceOption     *core.ZeroBalanceOption `json:"zero_balance_option,omitempty"`
	PreferredToken        *string                 `json:"preferred_token,omitempty"`
	TopUp                 *bool                   `json:"top_up,omitempty"`
	IncreasePercentage    *int64                  `json:"increase_percentage,omitempty"`
	OptInCommunityRewards *bool                   `json:"opt_in_community_rewards,omitempty"`
	Pools                 []*core.Pool            `json:"pools,omitempty"`
}

func (f *collateralFacet) configure(ctx context.Context, call *core.FacetCall) error {
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

	var params configureParams
	if err := op.UnmarshalParams(&params); err != nil {
		return core.ErrInvalidArgument
	}

	if params.ZeroBalanceOption != nil {
		loan.ZeroBalanceOption = *params.ZeroBalanceOption
	}

	if params.PreferredToken != nil {
		loan.PreferredToken = *params.PreferredToken
	}

	if params.TopUp != nil {
		loan.TopUp = *params.TopUp
	}

	if params.IncreasePercentage != nil {
		loan.IncreasePercentage = *params.IncreasePercentage
	}

	if params.OptInCommunityRewards != nil {
		loan.OptInCommunityRewards = *params.OptInCommunityRewards
	}

	if len(params.Pools) > 0 {
		if err := loan.SetPools(params.Pools); err != nil {
			return core.ErrInvalidArgument
		}
	}

	if err := f.loanStore.Update(ctx, call.Tx, loan, op.Version); err != nil {
		return err
	}

	return f.writeTransaction(ctx, call.Tx, op, nil)
}

// remove hands the lock back to the borrower. Debt and fees must be fully
// settled; the vote is unwound before custody leaves the engine.
func (f *collateralFacet) remove(ctx context.Context, call *core.FacetCall) error {
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

	if err := f.accrue(ctx, call.Tx, loan, op.CreatedAt); err != nil {
		return err
	}

	if loan.Balance.IsPositive() || loan.UnpaidFees.IsPositive() {
		return core.ErrOutstandingDebt
	}

	if err := f.collateralSrv.RemoveLockedCollateral(ctx, call.Tx, loan.Account,
		f.escrow.Address(), strconv.FormatUint(op.TokenID, 10)); err != nil {
		return err
	}

	if err := f.voter.Reset(ctx, op.TokenID); err != nil {
		return err
	}

	if err := f.escrow.TransferFrom(ctx, f.system.Engine, loan.Borrower, op.TokenID); err != nil {
		return err
	}

	// retained rewards leave with the collateral
	rewards := loan.RewardsBalance
	if err := f.transferOut(ctx, call.Tx, op, loan.Borrower, core.TransferSourceReward, f.system.Asset, rewards, "reward"); err != nil {
		return err
	}

	loan.RewardsBalance = decimal.Zero
	loan.CollateralValue = decimal.Zero
	loan.Status = core.LoanStatusClosed

	if err := f.loanStore.Update(ctx, call.Tx, loan, op.Version); err != nil {
		return err
	}

	extra := core.NewTransactionExtra()
	extra.Put("token_id", op.TokenID)
	if rewards.IsPositive() {
		extra.Put("rewards_paid", rewards)
	}

	return f.writeTransaction(ctx, call.Tx, op, extra)
}
