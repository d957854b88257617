package executor

import (
	"context"
	"strconv"
	"time"

	"veloan/core"
	"veloan/internal/epoch"
	"veloan/pkg/lending"
	"veloan/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type lendingFacet struct {
	*Executor
}

func (f *lendingFacet) Name() string {
	return "lending"
}

func (f *lendingFacet) Handle(ctx context.Context, call *core.FacetCall) error {
	switch call.Operation.Action {
	case core.ActionTypeRequestLoan:
		return f.requestLoan(ctx, call)
	case core.ActionTypeBorrow:
		return f.borrow(ctx, call)
	case core.ActionTypePay:
		return f.pay(ctx, call)
	}

	return core.ErrOperationForbidden
}

type requestLoanParams struct {
	Pools                 []*core.Pool           `json:"pools,omitempty"`
	TopUp                 bool                   `json:"top_up,omitempty"`
	IncreasePercentage    int64                  `json:"increase_percentage,omitempty"`
	ZeroBalanceOption     core.ZeroBalanceOption `json:"zero_balance_option,omitempty"`
	PreferredToken        string                 `json:"preferred_token,omitempty"`
	OptInCommunityRewards bool                   `json:"opt_in_community_rewards,omitempty"`
}

// requestLoan takes the caller's lock into custody, pins it permanent and
// opens a loan record for it, optionally drawing an initial amount in the
// same operation.
func (f *lendingFacet) requestLoan(ctx context.Context, call *core.FacetCall) error {
	op := call.Operation
	at := op.CreatedAt

	if op.TokenID == 0 {
		return core.ErrInvalidArgument
	}

	var params requestLoanParams
	if err := op.UnmarshalParams(&params); err != nil {
		return core.ErrInvalidArgument
	}

	loan, err := f.loanStore.Find(ctx, f.system.Engine, op.TokenID)
	if err != nil {
		return err
	}

	if loan.ID > 0 && loan.Status != core.LoanStatusClosed {
		// an open loan by the same caller at this version is a replay
		if loan.Borrower == call.Caller && loan.Version >= op.Version {
			return nil
		}

		return core.ErrOperationForbidden
	}

	owner, err := f.escrow.OwnerOf(ctx, op.TokenID)
	if err != nil {
		return err
	}

	if owner != call.Caller {
		return core.ErrNotOwner
	}

	if err := f.escrow.TransferFrom(ctx, owner, f.system.Engine, op.TokenID); err != nil {
		return err
	}

	if err := f.pinLock(ctx, op.TokenID, at); err != nil {
		return err
	}

	value, err := f.escrow.BalanceOfNFTAt(ctx, op.TokenID, at)
	if err != nil {
		return err
	}

	loan = &core.Loan{
		Engine:                f.system.Engine,
		TokenID:               op.TokenID,
		Borrower:              call.Caller,
		Account:               call.Caller,
		CollateralValue:       value,
		Timestamp:             at,
		FeeEpoch:              epoch.Index(at, f.system.EpochLength),
		ZeroBalanceOption:     params.ZeroBalanceOption,
		PreferredToken:        params.PreferredToken,
		IncreasePercentage:    params.IncreasePercentage,
		TopUp:                 params.TopUp,
		OptInCommunityRewards: params.OptInCommunityRewards,
		Status:                core.LoanStatusActive,
		Version:               op.Version,
	}

	if err := loan.SetPools(params.Pools); err != nil {
		return core.ErrInvalidArgument
	}

	if err := f.loanStore.Create(ctx, call.Tx, loan); err != nil {
		return err
	}

	if err := f.collateralSrv.AddLockedCollateral(ctx, call.Tx, &core.Collateral{
		Account:      loan.Account,
		TokenAddress: f.escrow.Address(),
		AssetID:      strconv.FormatUint(op.TokenID, 10),
		Amount:       decimal.New(1, 0),
		Value:        value,
	}); err != nil {
		return err
	}

	if err := f.loanSrv.Vote(ctx, call.Tx, loan, at, params.Pools, op.Version); err != nil {
		logger.FromContext(ctx).WithError(err).Infoln("initial vote failed")
	}

	extra := core.NewTransactionExtra()
	extra.Put("token_id", op.TokenID)
	extra.Put("collateral_value", value)

	initial := op.Amount
	if !initial.IsPositive() && params.TopUp {
		// top-up opens draw straight to the cap
		if initial, err = f.loanSrv.MaxLoan(ctx, loan); err != nil {
			return err
		}
	}

	// the open stands even when the initial draw is rejected: custody has
	// already been taken, so a domain rejection here only skips the payout
	if initial.IsPositive() {
		payout, err := f.draw(ctx, call.Tx, op, loan, initial)
		if code, ok := domainError(err); ok {
			logger.FromContext(ctx).WithError(err).Infoln("initial draw rejected")
			extra.Put("borrow_error", code)
		} else if err != nil {
			return err
		} else {
			extra.Put("borrowed", initial)
			extra.Put("payout", payout)
		}
	}

	return f.writeTransaction(ctx, call.Tx, op, extra)
}

// pinLock makes the custodied lock permanent so the collateral value can
// not decay underneath the loan. An expiring lock cannot be pinned
// directly; it is extended past the next epoch first.
func (f *lendingFacet) pinLock(ctx context.Context, tokenID uint64, at time.Time) error {
	locked, err := f.escrow.Locked(ctx, tokenID)
	if err != nil {
		return err
	}

	if locked.IsPermanent {
		return nil
	}

	if locked.End.Sub(at) < f.system.EpochLength {
		if err := f.escrow.IncreaseUnlockTime(ctx, tokenID, f.system.EpochLength); err != nil {
			return err
		}
	}

	return f.escrow.LockPermanent(ctx, tokenID)
}

func (f *lendingFacet) borrow(ctx context.Context, call *core.FacetCall) error {
	op := call.Operation

	if !op.Amount.IsPositive() {
		return core.ErrInvalidAmount
	}

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

	payout, err := f.draw(ctx, call.Tx, op, loan, op.Amount)
	if err != nil {
		return err
	}

	extra := core.NewTransactionExtra()
	extra.Put("token_id", op.TokenID)
	extra.Put("borrowed", op.Amount)
	extra.Put("payout", payout)

	return f.writeTransaction(ctx, call.Tx, op, extra)
}

// draw adds amount to the loan and queues the payout net of the
// origination fee. The price guard runs before any state changes.
func (f *lendingFacet) draw(ctx context.Context, tx *db.DB, op *core.Operation, loan *core.Loan, amount decimal.Decimal) (decimal.Decimal, error) {
	ok, err := f.oracleSrv.ConfirmPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	if !ok {
		return decimal.Zero, core.ErrStaleOrDepeggedOracle
	}

	if err := f.accrue(ctx, tx, loan, op.CreatedAt); err != nil {
		return decimal.Zero, err
	}

	payout, _, err := f.collateralSrv.IncreaseTotalDebt(ctx, tx, loan.Account, amount)
	if err != nil {
		return decimal.Zero, err
	}

	loan.Balance = loan.Balance.Add(amount)
	loan.OutstandingCapital = loan.OutstandingCapital.Add(payout)

	if err := f.loanStore.Update(ctx, tx, loan, op.Version); err != nil {
		return decimal.Zero, err
	}

	if err := f.transferOut(ctx, tx, op, loan.Borrower, core.TransferSourceBorrow, f.system.Asset, payout, "borrow"); err != nil {
		return decimal.Zero, err
	}

	return payout, nil
}

// pay repays outstanding fees first and debt second. Anyone may pay on a
// loan; a payment on a token with no open loan is refunded, overpayment is
// clamped and the excess queued back to the payer.
func (f *lendingFacet) pay(ctx context.Context, call *core.FacetCall) error {
	op := call.Operation

	if !op.Amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	loan, err := f.loanStore.Find(ctx, f.system.Engine, op.TokenID)
	if err != nil {
		return err
	}

	if err := lending.Require(loan.ID > 0 && loan.Status != core.LoanStatusClosed,
		"no open loan for token", lending.FlagRefund); err != nil {
		return err
	}

	if loan.Version >= op.Version {
		return nil
	}

	if err := f.accrue(ctx, call.Tx, loan, op.CreatedAt); err != nil {
		return err
	}

	owed := loan.Balance.Add(loan.UnpaidFees)
	applied := number.Min(op.Amount, owed)
	excess := op.Amount.Sub(applied)

	feePaid := number.Min(applied, loan.UnpaidFees)
	principalPaid := applied.Sub(feePaid)

	if err := f.collateralSrv.DecreaseUnpaidFees(ctx, call.Tx, loan.Account, feePaid); err != nil {
		return err
	}

	if _, err := f.collateralSrv.DecreaseTotalDebt(ctx, call.Tx, loan.Account, principalPaid); err != nil {
		return err
	}

	loan.UnpaidFees = number.NonNegative(loan.UnpaidFees.Sub(feePaid))
	loan.Balance = number.NonNegative(loan.Balance.Sub(principalPaid))
	loan.OutstandingCapital = number.Min(loan.OutstandingCapital, loan.Balance)

	if err := f.loanStore.Update(ctx, call.Tx, loan, op.Version); err != nil {
		return err
	}

	if err := f.transferOut(ctx, call.Tx, op, op.Sender, core.TransferSourceRefund, f.system.Asset, excess, "refund"); err != nil {
		return err
	}

	extra := core.NewTransactionExtra()
	extra.Put("token_id", op.TokenID)
	extra.Put("applied", applied)
	extra.Put("fee_paid", feePaid)
	extra.Put("refunded", excess)

	return f.writeTransaction(ctx, call.Tx, op, extra)
}
