package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AssetToken standard fungible token capability
type AssetToken interface {
	Address() string
	Transfer(ctx context.Context, to string, amount decimal.Decimal) error
	TransferFrom(ctx context.Context, from, to string, amount decimal.Decimal) error
	Approve(ctx context.Context, spender string, amount decimal.Decimal) error
	BalanceOf(ctx context.Context, owner string) (decimal.Decimal, error)
}

// LockedBalance a voting-escrow lock
type LockedBalance struct {
	Amount      decimal.Decimal `json:"amount"`
	End         time.Time       `json:"end"`
	IsPermanent bool            `json:"is_permanent"`
}

// VotingEscrow voting-escrow lock registry capability
type VotingEscrow interface {
	Address() string
	OwnerOf(ctx context.Context, tokenID uint64) (string, error)
	TransferFrom(ctx context.Context, from, to string, tokenID uint64) error
	Locked(ctx context.Context, tokenID uint64) (*LockedBalance, error)
	LockPermanent(ctx context.Context, tokenID uint64) error
	IncreaseUnlockTime(ctx context.Context, tokenID uint64, d time.Duration) error
	BalanceOfNFTAt(ctx context.Context, tokenID uint64, at time.Time) (decimal.Decimal, error)
}

// Voter voter and reward distributor capability
type Voter interface {
	Vote(ctx context.Context, tokenID uint64, pools []string, weights []decimal.Decimal) error
	Reset(ctx context.Context, tokenID uint64) error
	ClaimFees(ctx context.Context, feeContracts, feeTokens []string, tokenID uint64) (decimal.Decimal, error)
}

// SwapRouter external swap router capability
type SwapRouter interface {
	GetBestRoute(ctx context.Context, fromToken, toToken string, amountIn decimal.Decimal) ([]string, error)
	GetMinimumAmountOut(ctx context.Context, route []string, amountIn decimal.Decimal) (decimal.Decimal, error)
	SwapExactTokensForTokens(ctx context.Context, amountIn, minOut decimal.Decimal, route []string, to string) (decimal.Decimal, error)
}

// Vault reward reinvestment target for the invest zero-balance option
type Vault interface {
	Deposit(ctx context.Context, owner string, amount decimal.Decimal) (decimal.Decimal, error)
}
