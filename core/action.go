package core

// ActionType operation action type
type ActionType int

const (
	// ActionTypeRequestLoan lock collateral and open a loan
	ActionTypeRequestLoan ActionType = iota + 1
	// ActionTypeBorrow draw more principal against an active loan
	ActionTypeBorrow
	// ActionTypePay repay outstanding debt
	ActionTypePay
	// ActionTypeClaim claim rewards and apply the configured policy
	ActionTypeClaim
	// ActionTypeVote cast a manual vote
	ActionTypeVote
	// ActionTypeConfigureLoan update zero-balance option, preferred token, top-up
	ActionTypeConfigureLoan
	// ActionTypeRemoveCollateral withdraw collateral after full repayment
	ActionTypeRemoveCollateral
	// ActionTypeMigrate move a position into a portfolio account
	ActionTypeMigrate
	// ActionTypeBatch ordered multicall across portfolio accounts
	ActionTypeBatch
	// ActionTypeWithdraw withdraw unencumbered funds from a portfolio account
	ActionTypeWithdraw
)

// TransferSource reason attached to an outbound transfer
type TransferSource int

const (
	// TransferSourceBorrow principal paid out to the borrower
	TransferSourceBorrow TransferSource = iota + 1
	// TransferSourceRefund overpayment refunded to the payer
	TransferSourceRefund
	// TransferSourceReward rewards paid out per zero-balance option
	TransferSourceReward
	// TransferSourceWithdraw portfolio wallet withdrawal
	TransferSourceWithdraw
)
