package core

import (
	"errors"
	"strconv"
)

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001
	// ErrInvalidArgument invalid argument
	ErrInvalidArgument ErrorCode = 100002

	// ErrNotOwner caller does not own the collateral unit
	ErrNotOwner ErrorCode = 100100
	// ErrNotAuthorized caller is not the borrower or an authorized delegate
	ErrNotAuthorized ErrorCode = 100101
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100102
	// ErrLoanNotFound no loan
	ErrLoanNotFound ErrorCode = 100103
	// ErrInsufficientCollateral projected debt exceeds max loan
	ErrInsufficientCollateral ErrorCode = 100104
	// ErrOutstandingDebt collateral locked behind unpaid debt
	ErrOutstandingDebt ErrorCode = 100105
	// ErrStaleOrDepeggedOracle oracle data stale or price out of band
	ErrStaleOrDepeggedOracle ErrorCode = 100106
	// ErrAlreadyMigrated position already moved to a portfolio account
	ErrAlreadyMigrated ErrorCode = 100107
	// ErrAccountNotFound no ledger account
	ErrAccountNotFound ErrorCode = 100108
	// ErrBatchAborted batch aborted before any side effect
	ErrBatchAborted ErrorCode = 100109
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}

var (
	// ErrDebtUnderflow repayment exceeds outstanding debt on a strict path
	ErrDebtUnderflow = errors.New("repayment exceeds outstanding debt")
	// ErrUnpaidFees collateral removal blocked by accrued fees
	ErrUnpaidFees = errors.New("unpaid fees outstanding")
)
