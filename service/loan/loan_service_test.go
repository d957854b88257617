package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"veloan/core"
	"veloan/internal/epoch"
	"veloan/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLoanStore struct {
	loans map[uint64]*core.Loan
}

func (s *memLoanStore) Create(ctx context.Context, tx *db.DB, loan *core.Loan) error {
	s.loans[loan.TokenID] = loan
	return nil
}

func (s *memLoanStore) Find(ctx context.Context, engine string, tokenID uint64) (*core.Loan, error) {
	if loan, ok := s.loans[tokenID]; ok {
		return loan, nil
	}

	return &core.Loan{}, nil
}

func (s *memLoanStore) FindByBorrower(ctx context.Context, borrower string) ([]*core.Loan, error) {
	return nil, nil
}

func (s *memLoanStore) All(ctx context.Context, engine string) ([]*core.Loan, error) {
	return nil, nil
}

func (s *memLoanStore) Update(ctx context.Context, tx *db.DB, loan *core.Loan, version int64) error {
	if loan.Version > version {
		return nil
	}

	loan.Version = version
	s.loans[loan.TokenID] = loan
	return nil
}

type stubRateStore struct {
	core.IRateStore
	rates *core.Rates
}

func (s *stubRateStore) Find(ctx context.Context, engine string) (*core.Rates, error) {
	return s.rates, nil
}

func (s *stubRateStore) FindEpochRate(ctx context.Context, engine string, e int64) (*core.RateEpoch, error) {
	return &core.RateEpoch{}, nil
}

type stubCollateral struct {
	core.ICollateralService
	debt map[string]decimal.Decimal
}

func (s *stubCollateral) IncreaseTotalDebt(ctx context.Context, tx *db.DB, address string, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	s.debt[address] = s.debt[address].Add(amount)
	return amount, decimal.Zero, nil
}

func (s *stubCollateral) DecreaseTotalDebt(ctx context.Context, tx *db.DB, address string, amount decimal.Decimal) (decimal.Decimal, error) {
	applied := number.Min(amount, s.debt[address])
	s.debt[address] = s.debt[address].Sub(applied)
	return amount.Sub(applied), nil
}

func (s *stubCollateral) MigrateDebt(ctx context.Context, tx *db.DB, address string, balance, unpaidFees decimal.Decimal) error {
	s.debt[address] = s.debt[address].Add(balance)
	return nil
}

type stubEscrow struct {
	core.VotingEscrow
	balance decimal.Decimal
}

func (s *stubEscrow) BalanceOfNFTAt(ctx context.Context, tokenID uint64, at time.Time) (decimal.Decimal, error) {
	return s.balance, nil
}

type stubVoter struct {
	votes   int
	resets  int
	claimed decimal.Decimal
	fail    bool
}

func (s *stubVoter) Vote(ctx context.Context, tokenID uint64, pools []string, weights []decimal.Decimal) error {
	if s.fail {
		return errors.New("voter unavailable")
	}

	s.votes++
	return nil
}

func (s *stubVoter) Reset(ctx context.Context, tokenID uint64) error {
	s.resets++
	return nil
}

func (s *stubVoter) ClaimFees(ctx context.Context, feeContracts, feeTokens []string, tokenID uint64) (decimal.Decimal, error) {
	return s.claimed, nil
}

type stubVault struct {
	deposited decimal.Decimal
	fail      bool
}

func (s *stubVault) Deposit(ctx context.Context, owner string, amount decimal.Decimal) (decimal.Decimal, error) {
	if s.fail {
		return decimal.Zero, errors.New("vault unavailable")
	}

	s.deposited = s.deposited.Add(amount)
	return amount, nil
}

type stubSwap struct {
	out     decimal.Decimal
	swapped bool
}

func (s *stubSwap) SwapToToken(ctx context.Context, amountIn decimal.Decimal, fromToken, toToken, recipient string) (decimal.Decimal, bool, error) {
	return s.out, s.swapped, nil
}

type fixture struct {
	system     *core.System
	loans      *memLoanStore
	collateral *stubCollateral
	voter      *stubVoter
	vault      *stubVault
	swap       *stubSwap
	srv        core.ILoanService
}

func newFixture(rates *core.Rates) *fixture {
	f := &fixture{
		system: &core.System{
			Engine:      "test",
			Asset:       "usd",
			EpochLength: time.Hour,
			DefaultPools: []*core.Pool{
				{Address: "pool-a", Weight: decimal.New(1, 0)},
			},
		},
		loans:      &memLoanStore{loans: make(map[uint64]*core.Loan)},
		collateral: &stubCollateral{debt: make(map[string]decimal.Decimal)},
		voter:      &stubVoter{},
		vault:      &stubVault{},
		swap:       &stubSwap{},
	}

	f.srv = New(f.system,
		f.loans,
		&stubRateStore{rates: rates},
		f.collateral,
		&stubEscrow{balance: number.Decimal("1000")},
		f.voter,
		f.vault,
		f.swap)

	return f
}

func TestAccrueFees(t *testing.T) {
	ctx := context.Background()
	at := time.Unix(1_000_000_000, 0)

	t.Run("interest across missed epochs compounds per bucket", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test", RewardsRate: 100})

		loan := &core.Loan{
			TokenID:  1,
			Account:  "alice",
			Balance:  number.Decimal("100"),
			FeeEpoch: epoch.Index(at, f.system.EpochLength) - 2,
		}

		accrued, err := f.srv.AccrueFees(ctx, loan, at)
		require.NoError(t, err)

		// 100 -> 101 -> 102.01 at 100 bps per epoch
		assert.True(t, loan.Balance.Equal(number.Decimal("102.01")))
		assert.True(t, accrued.Equal(number.Decimal("2.01")))
		assert.Equal(t, epoch.Index(at, f.system.EpochLength), loan.FeeEpoch)
	})

	t.Run("same epoch accrues nothing", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test", RewardsRate: 100})

		loan := &core.Loan{
			TokenID:  1,
			Balance:  number.Decimal("100"),
			FeeEpoch: epoch.Index(at, f.system.EpochLength),
		}

		accrued, err := f.srv.AccrueFees(ctx, loan, at)
		require.NoError(t, err)
		assert.True(t, accrued.IsZero())
		assert.True(t, loan.Balance.Equal(number.Decimal("100")))
	})

	t.Run("zero balance charges the zero balance fee on rewards", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test", RewardsRate: 100, ZeroBalanceFee: 50})

		loan := &core.Loan{
			TokenID:        1,
			RewardsBalance: number.Decimal("200"),
			FeeEpoch:       epoch.Index(at, f.system.EpochLength) - 1,
		}

		accrued, err := f.srv.AccrueFees(ctx, loan, at)
		require.NoError(t, err)
		assert.True(t, accrued.Equal(number.Decimal("1")))
		assert.True(t, loan.UnpaidFees.Equal(number.Decimal("1")))
		assert.True(t, loan.Balance.IsZero())
	})
}

func TestVote(t *testing.T) {
	ctx := context.Background()
	at := time.Unix(1_000_000_000, 0)

	t.Run("manual vote always casts", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test"})
		loan := &core.Loan{TokenID: 1, VoteTimestamp: at.Add(-time.Minute)}

		pools := []*core.Pool{{Address: "pool-b", Weight: decimal.New(1, 0)}}
		require.NoError(t, f.srv.Vote(ctx, nil, loan, at, pools, 1))

		assert.Equal(t, 1, f.voter.votes)
		assert.Equal(t, core.VoteStatusOK, loan.LastVoteStatus)
		assert.Equal(t, at, loan.VoteTimestamp)
	})

	t.Run("default vote never overrides one cast this epoch", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test"})
		loan := &core.Loan{TokenID: 1, VoteTimestamp: at.Add(-time.Minute)}

		require.NoError(t, f.srv.Vote(ctx, nil, loan, at, nil, 1))
		assert.Equal(t, 0, f.voter.votes)
	})

	t.Run("default vote failure is swallowed and recorded", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test"})
		f.voter.fail = true
		loan := &core.Loan{TokenID: 1}

		require.NoError(t, f.srv.Vote(ctx, nil, loan, at, nil, 1))
		assert.Equal(t, core.VoteStatusFailed, loan.LastVoteStatus)
	})

	t.Run("manual vote failure is returned", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test"})
		f.voter.fail = true
		loan := &core.Loan{TokenID: 1}

		pools := []*core.Pool{{Address: "pool-b", Weight: decimal.New(1, 0)}}
		assert.Error(t, f.srv.Vote(ctx, nil, loan, at, pools, 1))
	})
}

func TestClaim(t *testing.T) {
	ctx := context.Background()
	at := time.Unix(1_000_000_000, 0)

	t.Run("rewards pay down debt before anything else", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test", LenderPremium: 1000, ProtocolFee: 500})
		f.voter.claimed = number.Decimal("100")

		loan := &core.Loan{
			TokenID:            1,
			Account:            "alice",
			Borrower:           "alice",
			Balance:            number.Decimal("50"),
			OutstandingCapital: number.Decimal("50"),
			FeeEpoch:           epoch.Index(at, f.system.EpochLength),
			VoteTimestamp:      at,
		}
		f.collateral.debt["alice"] = number.Decimal("50")

		result, err := f.srv.Claim(ctx, nil, loan, at, nil, nil, 1)
		require.NoError(t, err)

		// 100 split: 10 lender, 5 protocol, 85 residual; 50 to debt, 35 retained
		assert.True(t, result.LenderShare.Equal(number.Decimal("10")))
		assert.True(t, result.ProtocolShare.Equal(number.Decimal("5")))
		assert.True(t, result.AppliedToDebt.Equal(number.Decimal("50")))
		assert.True(t, loan.Balance.IsZero())
		assert.True(t, f.collateral.debt["alice"].IsZero())
		assert.True(t, loan.RewardsBalance.Equal(number.Decimal("35")))
	})

	t.Run("invest option deposits the residual", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test"})
		f.voter.claimed = number.Decimal("40")

		loan := &core.Loan{
			TokenID:           1,
			Borrower:          "bob",
			Account:           "bob",
			ZeroBalanceOption: core.ZeroBalanceInvestToVault,
			FeeEpoch:          epoch.Index(at, f.system.EpochLength),
			VoteTimestamp:     at,
		}

		result, err := f.srv.Claim(ctx, nil, loan, at, nil, nil, 1)
		require.NoError(t, err)
		assert.True(t, result.Invested.Equal(number.Decimal("40")))
		assert.True(t, f.vault.deposited.Equal(number.Decimal("40")))
	})

	t.Run("vault failure retains rewards instead", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test"})
		f.voter.claimed = number.Decimal("40")
		f.vault.fail = true

		loan := &core.Loan{
			TokenID:           1,
			Borrower:          "bob",
			Account:           "bob",
			ZeroBalanceOption: core.ZeroBalanceInvestToVault,
			FeeEpoch:          epoch.Index(at, f.system.EpochLength),
			VoteTimestamp:     at,
		}

		result, err := f.srv.Claim(ctx, nil, loan, at, nil, nil, 1)
		require.NoError(t, err)
		assert.True(t, result.Invested.IsZero())
		assert.True(t, loan.RewardsBalance.Equal(number.Decimal("40")))
	})

	t.Run("zero balance fee charged on residual", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test", ZeroBalanceFee: 1000})
		f.voter.claimed = number.Decimal("100")

		loan := &core.Loan{
			TokenID:       1,
			Borrower:      "carol",
			Account:       "carol",
			FeeEpoch:      epoch.Index(at, f.system.EpochLength),
			VoteTimestamp: at,
		}

		result, err := f.srv.Claim(ctx, nil, loan, at, nil, nil, 1)
		require.NoError(t, err)
		assert.True(t, result.ZeroBalanceFee.Equal(number.Decimal("10")))
		assert.True(t, loan.RewardsBalance.Equal(number.Decimal("90")))
	})

	t.Run("swapped payout is delivered by the router only", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test"})
		f.voter.claimed = number.Decimal("60")
		f.swap.out = number.Decimal("59")
		f.swap.swapped = true

		loan := &core.Loan{
			TokenID:           1,
			Borrower:          "erin",
			Account:           "erin",
			ZeroBalanceOption: core.ZeroBalancePayToOwner,
			PreferredToken:    "weth",
			FeeEpoch:          epoch.Index(at, f.system.EpochLength),
			VoteTimestamp:     at,
		}

		result, err := f.srv.Claim(ctx, nil, loan, at, nil, nil, 1)
		require.NoError(t, err)

		// the router delivered to the borrower already; paying out again
		// would double the rewards
		assert.True(t, result.PaidOut.IsZero())
		assert.True(t, result.SwappedOut.Equal(number.Decimal("59")))
		assert.Equal(t, "weth", result.PayoutToken)
	})

	t.Run("zero quote leaves nothing to pay out", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test"})
		f.voter.claimed = number.Decimal("60")

		loan := &core.Loan{
			TokenID:           1,
			Borrower:          "erin",
			Account:           "erin",
			ZeroBalanceOption: core.ZeroBalancePayToOwner,
			PreferredToken:    "weth",
			FeeEpoch:          epoch.Index(at, f.system.EpochLength),
			VoteTimestamp:     at,
		}

		result, err := f.srv.Claim(ctx, nil, loan, at, nil, nil, 1)
		require.NoError(t, err)
		assert.True(t, result.PaidOut.IsZero())
		assert.True(t, result.SwappedOut.IsZero())
	})

	t.Run("top up draws back to max when opted in", func(t *testing.T) {
		f := newFixture(&core.Rates{Engine: "test", UtilizationRate: 100})
		f.voter.claimed = number.Decimal("10")

		// escrow value 1000 at 100 bps utilization -> max loan 10
		loan := &core.Loan{
			TokenID:       1,
			Borrower:      "dave",
			Account:       "dave",
			TopUp:         true,
			FeeEpoch:      epoch.Index(at, f.system.EpochLength),
			VoteTimestamp: at,
		}

		result, err := f.srv.Claim(ctx, nil, loan, at, nil, nil, 1)
		require.NoError(t, err)
		assert.True(t, result.ToppedUp.Equal(number.Decimal("10")))
		assert.True(t, loan.Balance.Equal(number.Decimal("10")))
		assert.True(t, f.collateral.debt["dave"].Equal(number.Decimal("10")))
	})
}
