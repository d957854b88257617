package executor

import (
	"context"
	"fmt"

	"veloan/core"

	"github.com/fox-one/pkg/store/db"
	uuidutil "github.com/fox-one/pkg/uuid"
	"github.com/jmoiron/sqlx/types"
)

type batchParams struct {
	Calls []*core.SubOperation `json:"calls"`
}

// handleBatch runs an ordered list of sub operations as one unit on the
// operation's transaction: a rejection anywhere rolls back every earlier
// sub operation's writes. Every target is authorized before the first sub
// operation executes.
func (w *Executor) handleBatch(ctx context.Context, tx *db.DB, op *core.Operation) error {
	var params batchParams
	if err := op.UnmarshalParams(&params); err != nil || len(params.Calls) == 0 {
		return core.ErrInvalidArgument
	}

	if len(params.Calls) > maxBatchSize {
		return core.ErrInvalidArgument
	}

	for _, sub := range params.Calls {
		if sub.Action == core.ActionTypeBatch {
			return core.ErrInvalidArgument
		}

		if err := w.verifyTarget(ctx, op.Sender, sub); err != nil {
			return core.ErrBatchAborted
		}
	}

	for i, sub := range params.Calls {
		derived := &core.Operation{
			ID:        op.ID,
			TraceID:   uuidutil.Modify(op.TraceID, fmt.Sprintf("batch:%d", i)),
			Sender:    op.Sender,
			FollowID:  op.FollowID,
			Action:    sub.Action,
			TokenID:   sub.TokenID,
			Amount:    sub.Amount,
			Params:    types.JSONText(sub.Params),
			CreatedAt: op.CreatedAt,
			// each sub-call writes its rows at its own version, so a row
			// touched twice in one batch keeps both writes
			Version: op.ID<<versionShift + int64(i) + 1,
		}

		if err := w.registry.Dispatch(ctx, sub.Action, &core.FacetCall{
			Operation: derived,
			Caller:    op.Sender,
			Tx:        tx,
			Body:      derived.Params,
		}); err != nil {
			return err
		}
	}

	extra := core.NewTransactionExtra()
	extra.Put("calls", len(params.Calls))

	return w.writeTransaction(ctx, tx, op, extra)
}

// verifyTarget checks the sender may operate the sub operation's target
// before anything runs.
func (w *Executor) verifyTarget(ctx context.Context, sender string, sub *core.SubOperation) error {
	if sub.Account != "" && sub.Account != sender {
		ok, err := w.portfolioSrv.Authorized(ctx, sub.Account, sender)
		if err != nil {
			return err
		}

		if !ok {
			return core.ErrNotAuthorized
		}
	}

	if sub.TokenID > 0 {
		loan, err := w.loanStore.Find(ctx, w.system.Engine, sub.TokenID)
		if err != nil {
			return err
		}

		// opening a new loan inside a batch still requires ownership
		if loan.ID == 0 || loan.Status == core.LoanStatusClosed {
			if sub.Action != core.ActionTypeRequestLoan {
				return core.ErrLoanNotFound
			}

			owner, err := w.escrow.OwnerOf(ctx, sub.TokenID)
			if err != nil {
				return err
			}

			if owner != sender {
				return core.ErrNotOwner
			}

			return nil
		}

		if sub.Action != core.ActionTypePay {
			return w.authorizeLoan(ctx, loan, sender)
		}
	}

	return nil
}
