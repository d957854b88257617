package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// ZeroBalanceOption borrower policy for rewards realized with zero debt
type ZeroBalanceOption int

const (
	// ZeroBalanceDoNothing leave rewards as unclaimed balance
	ZeroBalanceDoNothing ZeroBalanceOption = iota
	// ZeroBalanceInvestToVault deposit rewards into the vault
	ZeroBalanceInvestToVault
	// ZeroBalancePayToOwner forward rewards to the borrower
	ZeroBalancePayToOwner
)

// LoanStatus loan lifecycle
type LoanStatus int

const (
	// LoanStatusActive collateral locked, debt >= 0
	LoanStatusActive LoanStatus = iota + 1
	// LoanStatusPendingRemoval debt repaid, vote unwound
	LoanStatusPendingRemoval
	// LoanStatusClosed collateral withdrawn, record zeroed
	LoanStatusClosed
)

// Vote outcomes recorded on the loan for observability; the default-vote
// fallback is best effort and its failure must not fail the caller.
const (
	VoteStatusOK      = "ok"
	VoteStatusSkipped = "skipped"
	VoteStatusFailed  = "failed"
)

// Loan per collateral unit loan state
type Loan struct {
	ID       uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Engine   string `sql:"size:36;unique_index:loan_idx" json:"engine"`
	TokenID  uint64 `sql:"unique_index:loan_idx" json:"token_id"`
	Borrower string `sql:"size:66" json:"borrower"`
	// Account the ledger account owning the debt: the borrower until the
	// position migrates into a portfolio account
	Account string `sql:"size:66" json:"account"`
	// Balance outstanding debt, protocol fee inclusive
	Balance            decimal.Decimal `sql:"type:decimal(32,16)" json:"balance"`
	OutstandingCapital decimal.Decimal `sql:"type:decimal(32,16)" json:"outstanding_capital"`
	UnpaidFees         decimal.Decimal `sql:"type:decimal(32,16)" json:"unpaid_fees"`
	// RewardsBalance rewards retained under the do-nothing policy
	RewardsBalance decimal.Decimal `sql:"type:decimal(32,16)" json:"rewards_balance"`
	CollateralValue    decimal.Decimal `sql:"type:decimal(32,16)" json:"collateral_value"`
	Timestamp          time.Time       `json:"timestamp"`
	VoteTimestamp      time.Time       `json:"vote_timestamp"`
	ClaimTimestamp     time.Time       `json:"claim_timestamp"`
	// FeeEpoch the last epoch whose accrual bucket has been applied
	FeeEpoch              int64             `sql:"default:0" json:"fee_epoch"`
	ZeroBalanceOption     ZeroBalanceOption `sql:"default:0" json:"zero_balance_option"`
	PreferredToken        string            `sql:"size:66" json:"preferred_token"`
	IncreasePercentage    int64             `sql:"default:0" json:"increase_percentage"`
	TopUp                 bool              `sql:"default:false" json:"top_up"`
	Pools                 types.JSONText    `sql:"type:TEXT" json:"pools"`
	Weight                decimal.Decimal   `sql:"type:decimal(32,16)" json:"weight"`
	OptInCommunityRewards bool              `sql:"default:false" json:"opt_in_community_rewards"`
	Migrated              bool              `sql:"default:false" json:"migrated"`
	LastVoteStatus        string            `sql:"size:128" json:"last_vote_status"`
	Status                LoanStatus        `sql:"default:1" json:"status"`
	Version               int64             `sql:"default:0" json:"version"`
	CreatedAt             time.Time         `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt             time.Time         `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SetPools marshal pools into the loan row
func (l *Loan) SetPools(pools []*Pool) error {
	bs, err := json.Marshal(pools)
	if err != nil {
		return err
	}

	l.Pools = types.JSONText(bs)
	return nil
}

// GetPools unmarshal pools from the loan row
func (l *Loan) GetPools() []*Pool {
	var pools []*Pool
	_ = json.Unmarshal(l.Pools, &pools)
	return pools
}

// ILoanStore loan store interface
type ILoanStore interface {
	Create(ctx context.Context, tx *db.DB, loan *Loan) error
	Find(ctx context.Context, engine string, tokenID uint64) (*Loan, error)
	FindByBorrower(ctx context.Context, borrower string) ([]*Loan, error)
	All(ctx context.Context, engine string) ([]*Loan, error)
	Update(ctx context.Context, tx *db.DB, loan *Loan, version int64) error
}

// ClaimResult how one claim settled. PaidOut is the amount the caller
// still owes the borrower; rewards the router already delivered during a
// swap show up in SwappedOut instead.
type ClaimResult struct {
	Total          decimal.Decimal `json:"total"`
	LenderShare    decimal.Decimal `json:"lender_share"`
	ProtocolShare  decimal.Decimal `json:"protocol_share"`
	AppliedToDebt  decimal.Decimal `json:"applied_to_debt"`
	ToppedUp       decimal.Decimal `json:"topped_up"`
	Invested       decimal.Decimal `json:"invested"`
	PaidOut        decimal.Decimal `json:"paid_out"`
	SwappedOut     decimal.Decimal `json:"swapped_out,omitempty"`
	ZeroBalanceFee decimal.Decimal `json:"zero_balance_fee"`
	PayoutToken    string          `json:"payout_token,omitempty"`
}

// ILoanService the loan engine
type ILoanService interface {
	// AccrueFees applies the epoch fee buckets the loan has not seen
	// yet, mutating loan in memory only.
	AccrueFees(ctx context.Context, loan *Loan, at time.Time) (decimal.Decimal, error)
	// MaxLoan max borrowable for the loan's collateral.
	MaxLoan(ctx context.Context, loan *Loan) (decimal.Decimal, error)
	// Vote casts a manual vote when pools is non-empty, otherwise falls
	// back to the default pools inside the voting window, best effort.
	Vote(ctx context.Context, tx *db.DB, loan *Loan, at time.Time, pools []*Pool, version int64) error
	// Claim votes first, collects rewards, splits premium and protocol
	// fee, then settles per top-up / zero-balance policy. PaidOut and
	// ToppedUp are owed to the borrower and must be transferred out by
	// the caller.
	Claim(ctx context.Context, tx *db.DB, loan *Loan, at time.Time, feeContracts, feeTokens []string, version int64) (*ClaimResult, error)
}

// IOracleService price guard for the pegged asset
type IOracleService interface {
	// ConfirmPrice false when the latest round is stale or off peg.
	ConfirmPrice(ctx context.Context) (bool, error)
	LatestRound(ctx context.Context) (*PriceRound, error)
}

// ISwapService token swap with zero-quote fallback
type ISwapService interface {
	// SwapToToken returns swapped=false with funds returned to the
	// recipient when the router quotes a zero minimum output.
	SwapToToken(ctx context.Context, amountIn decimal.Decimal, fromToken, toToken, recipient string) (decimal.Decimal, bool, error)
}
