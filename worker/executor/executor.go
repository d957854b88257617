package executor

import (
	"context"
	"errors"
	"time"

	"veloan/core"
	"veloan/pkg/lending"
	"veloan/pkg/sysversion"
	"veloan/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	uuidutil "github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
)

const (
	checkpointKey = "operations_checkpoint"
	limit         = 500

	// versionShift leaves room below the operation id for batch sub-step
	// versions, so every sub-call writes its rows at a distinct version
	versionShift = 8
	maxBatchSize = 64
)

// Executor consumes the ordered operation log and applies every operation
// atomically. Operations are strictly serialized and each one runs inside
// a single database transaction, so a rejection rolls every write back.
// A replay after a crash is a no-op thanks to the per-row version guards
// keyed by the operation id.
type Executor struct {
	worker.TickWorker
	db               *db.DB
	system           *core.System
	propertyStore    property.Store
	operationStore   core.IOperationStore
	transactionStore core.ITransactionStore
	transferStore    core.ITransferStore
	loanStore        core.ILoanStore
	portfolioStore   core.IPortfolioStore
	rateStore        core.IRateStore
	collateralSrv    core.ICollateralService
	loanSrv          core.ILoanService
	oracleSrv        core.IOracleService
	portfolioSrv     core.IPortfolioService
	escrow           core.VotingEscrow
	voter            core.Voter
	registry         *core.FacetRegistry

	sysversion int64
}

// New new executor worker
func New(db *db.DB,
	system *core.System,
	propertyStore property.Store,
	operationStore core.IOperationStore,
	transactionStore core.ITransactionStore,
	transferStore core.ITransferStore,
	loanStore core.ILoanStore,
	portfolioStore core.IPortfolioStore,
	rateStore core.IRateStore,
	collateralSrv core.ICollateralService,
	loanSrv core.ILoanService,
	oracleSrv core.IOracleService,
	portfolioSrv core.IPortfolioService,
	escrow core.VotingEscrow,
	voter core.Voter) *Executor {
	e := &Executor{
		db:               db,
		system:           system,
		propertyStore:    propertyStore,
		operationStore:   operationStore,
		transactionStore: transactionStore,
		transferStore:    transferStore,
		loanStore:        loanStore,
		portfolioStore:   portfolioStore,
		rateStore:        rateStore,
		collateralSrv:    collateralSrv,
		loanSrv:          loanSrv,
		oracleSrv:        oracleSrv,
		portfolioSrv:     portfolioSrv,
		escrow:           escrow,
		voter:            voter,
		registry:         core.NewFacetRegistry(),
	}

	lendingFacet := &lendingFacet{e}
	e.registry.Register(core.ActionTypeRequestLoan, lendingFacet)
	e.registry.Register(core.ActionTypeBorrow, lendingFacet)
	e.registry.Register(core.ActionTypePay, lendingFacet)
	e.registry.Register(core.ActionTypeClaim, &claimingFacet{e})
	e.registry.Register(core.ActionTypeVote, &votingFacet{e})

	collateralFacet := &collateralFacet{e}
	e.registry.Register(core.ActionTypeConfigureLoan, collateralFacet)
	e.registry.Register(core.ActionTypeRemoveCollateral, collateralFacet)
	e.registry.Register(core.ActionTypeMigrate, &migrationFacet{e})
	e.registry.Register(core.ActionTypeWithdraw, &walletFacet{e})

	return e
}

// Run run worker
func (w *Executor) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "executor")
	ctx = logger.WithContext(ctx, log)

	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.run(ctx)
	})
}

func (w *Executor) run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if err := w.loadSysVersion(ctx); err != nil {
		return err
	}

	v, err := w.propertyStore.Get(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorln("property.Get error")
		return err
	}

	operations, err := w.operationStore.List(ctx, v.Int64(), limit)
	if err != nil {
		log.WithError(err).Errorln("operations.List")
		return err
	}

	if len(operations) == 0 {
		return errors.New("EOF")
	}

	for _, op := range operations {
		if err := w.handleOperation(ctx, op); err != nil {
			return err
		}

		if err := w.propertyStore.Save(ctx, checkpointKey, op.ID); err != nil {
			log.WithError(err).Errorln("property.Save:", op.ID)
			return err
		}
	}

	return nil
}

func (w *Executor) loadSysVersion(ctx context.Context) error {
	v, err := sysversion.ReadSysVersion(ctx, w.propertyStore)
	if err != nil {
		return err
	}

	w.sysversion = v
	return nil
}

func (w *Executor) handleOperation(ctx context.Context, op *core.Operation) error {
	log := logger.FromContext(ctx).
		WithField("operation", op.TraceID).
		WithField("action", op.Action)
	ctx = logger.WithContext(ctx, log)

	if op.Sender == "" {
		log.Infoln("skip: no sender")
		return nil
	}

	// every row written by this operation carries a version derived from
	// the operation id, with the low bits reserved for batch sub-steps
	op.Version = op.ID << versionShift

	err := w.operationStore.Tx(func(tx *db.DB) error {
		if op.Action == core.ActionTypeBatch {
			return w.handleBatch(ctx, tx, op)
		}

		return w.registry.Dispatch(ctx, op.Action, &core.FacetCall{
			Operation: op,
			Caller:    op.Sender,
			Tx:        tx,
			Body:      op.Params,
		})
	})

	if err == nil {
		return nil
	}

	// domain rejections roll the transaction back and settle as aborted;
	// everything else is infrastructure and retried without advancing the
	// checkpoint
	if code, ok := domainError(err); ok {
		log.WithError(err).Infoln("operation aborted")
		return w.abortOperation(ctx, op, err, code)
	}

	return err
}

func (w *Executor) abortOperation(ctx context.Context, op *core.Operation, cause error, code core.ErrorCode) error {
	extra := core.NewTransactionExtra()
	extra.Put("error_code", code)

	// rejections flagged for refund hand the attached funds back
	if lending.ShouldRefund(cause) && op.Amount.IsPositive() {
		if err := w.transferOut(ctx, w.db, op, op.Sender, core.TransferSourceRefund, w.system.Asset, op.Amount, "refund"); err != nil {
			return err
		}

		extra.Put("refunded", op.Amount)
	}

	tx := core.BuildTransactionFromOperation(op, core.TransactionStatusAborted, extra)
	return w.transactionStore.Create(ctx, w.db, tx)
}

func (w *Executor) writeTransaction(ctx context.Context, tx *db.DB, op *core.Operation, extra core.TransactionExtra) error {
	t := core.BuildTransactionFromOperation(op, core.TransactionStatusNormal, extra)
	return w.transactionStore.Create(ctx, tx, t)
}

// transferOut queue an outbound payment; the derived trace id keeps the
// queue idempotent across replays.
func (w *Executor) transferOut(ctx context.Context, tx *db.DB, op *core.Operation, opponent string, source core.TransferSource, assetID string, amount decimal.Decimal, memo string) error {
	if !amount.IsPositive() {
		return nil
	}

	transfer := &core.Transfer{
		TraceID:  uuidutil.Modify(op.TraceID, memo),
		Opponent: opponent,
		AssetID:  assetID,
		Amount:   amount.Truncate(8),
		Source:   source,
		Memo:     memo,
	}

	return w.transferStore.Create(ctx, tx, transfer)
}

// accrue applies pending epoch buckets to the loan and mirrors the accrued
// amounts into the ledger account, so the account aggregates stay equal to
// the sum of their loans. Both sides ride the operation's transaction, so
// an aborted operation leaves no half-applied accrual behind.
func (w *Executor) accrue(ctx context.Context, tx *db.DB, loan *core.Loan, at time.Time) error {
	balance, fees := loan.Balance, loan.UnpaidFees

	accrued, err := w.loanSrv.AccrueFees(ctx, loan, at)
	if err != nil {
		return err
	}

	if !accrued.IsPositive() {
		return nil
	}

	return w.collateralSrv.MigrateDebt(ctx, tx, loan.Account,
		loan.Balance.Sub(balance),
		loan.UnpaidFees.Sub(fees))
}

func (w *Executor) findActiveLoan(ctx context.Context, tokenID uint64) (*core.Loan, error) {
	loan, err := w.loanStore.Find(ctx, w.system.Engine, tokenID)
	if err != nil {
		return nil, err
	}

	if loan.ID == 0 || loan.Status == core.LoanStatusClosed {
		return nil, core.ErrLoanNotFound
	}

	return loan, nil
}

// authorizeLoan the borrower may always operate their loan; once the
// position has migrated, delegates authorized on the portfolio account
// may too.
func (w *Executor) authorizeLoan(ctx context.Context, loan *core.Loan, caller string) error {
	if caller == loan.Borrower {
		return nil
	}

	if loan.Migrated {
		ok, err := w.portfolioSrv.Authorized(ctx, loan.Account, caller)
		if err != nil {
			return err
		}

		if ok {
			return nil
		}
	}

	return core.ErrNotAuthorized
}

func domainError(err error) (core.ErrorCode, bool) {
	var code core.ErrorCode
	if errors.As(err, &code) {
		return code, true
	}

	if lending.ShouldRefund(err) {
		return core.ErrOperationForbidden, true
	}

	switch {
	case errors.Is(err, core.ErrDebtUnderflow):
		return core.ErrInvalidAmount, true
	case errors.Is(err, core.ErrUnpaidFees):
		return core.ErrOutstandingDebt, true
	}

	return 0, false
}
