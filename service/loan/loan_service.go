package loan

import (
	"context"
	"time"

	"veloan/core"
	"veloan/internal/epoch"
	"veloan/pkg/lending"
	"veloan/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type loanService struct {
	system        *core.System
	loanStore     core.ILoanStore
	rateStore     core.IRateStore
	collateralSrv core.ICollateralService
	escrow        core.VotingEscrow
	voter         core.Voter
	vault         core.Vault
	swapSrv       core.ISwapService
}

// New new loan service
func New(system *core.System,
	loanStore core.ILoanStore,
	rateStore core.IRateStore,
	collateralSrv core.ICollateralService,
	escrow core.VotingEscrow,
	voter core.Voter,
	vault core.Vault,
	swapSrv core.ISwapService) core.ILoanService {
	return &loanService{
		system:        system,
		loanStore:     loanStore,
		rateStore:     rateStore,
		collateralSrv: collateralSrv,
		escrow:        escrow,
		voter:         voter,
		vault:         vault,
		swapSrv:       swapSrv,
	}
}

// AccrueFees walks the epochs the loan has not been charged for yet and
// applies one bucket per epoch. Multiple operations inside one epoch share
// the bucket, so the walk is a no-op for all but the first.
func (s *loanService) AccrueFees(ctx context.Context, loan *core.Loan, at time.Time) (decimal.Decimal, error) {
	current := epoch.Index(at, s.system.EpochLength)
	if loan.FeeEpoch == 0 {
		loan.FeeEpoch = epoch.Index(loan.Timestamp, s.system.EpochLength)
	}

	if current <= loan.FeeEpoch {
		return decimal.Zero, nil
	}

	rates, err := s.rateStore.Find(ctx, s.system.Engine)
	if err != nil {
		return decimal.Zero, err
	}

	accrued := decimal.Zero
	for e := loan.FeeEpoch + 1; e <= current; e++ {
		rateBps := rates.RewardsRate
		if row, err := s.rateStore.FindEpochRate(ctx, s.system.Engine, e); err == nil && row.ID > 0 {
			rateBps = row.Rate.Mul(lending.BpsBase).IntPart()
		}

		if loan.Balance.IsPositive() {
			interest := lending.EpochInterest(loan.Balance, rateBps)
			loan.Balance = loan.Balance.Add(interest)
			accrued = accrued.Add(interest)
		} else if loan.RewardsBalance.IsPositive() {
			// zero-balance epochs accrue the zero-balance fee instead
			fee := lending.Bps(loan.RewardsBalance, rates.ZeroBalanceFee)
			loan.UnpaidFees = loan.UnpaidFees.Add(fee)
			accrued = accrued.Add(fee)
		}
	}

	loan.FeeEpoch = current
	return accrued, nil
}

func (s *loanService) MaxLoan(ctx context.Context, loan *core.Loan) (decimal.Decimal, error) {
	value, err := s.escrow.BalanceOfNFTAt(ctx, loan.TokenID, time.Now())
	if err != nil {
		return decimal.Zero, err
	}

	rates, err := s.rateStore.Find(ctx, s.system.Engine)
	if err != nil {
		return decimal.Zero, err
	}

	return lending.MaxLoan(value, rates.UtilizationRate), nil
}

// Vote casts the borrower's explicit vote when pools is non-empty. With no
// pools it falls back to the configured default vote, best effort: a failed
// default vote must not fail the surrounding operation, and a manual vote
// already cast this epoch is never overridden.
func (s *loanService) Vote(ctx context.Context, tx *db.DB, loan *core.Loan, at time.Time, pools []*core.Pool, version int64) error {
	log := logger.FromContext(ctx).WithField("token_id", loan.TokenID)

	if len(pools) > 0 {
		addrs, weights := splitPools(pools)
		if err := s.voter.Vote(ctx, loan.TokenID, addrs, weights); err != nil {
			return err
		}

		loan.VoteTimestamp = at
		loan.LastVoteStatus = core.VoteStatusOK
		if err := loan.SetPools(pools); err != nil {
			return err
		}

		return s.loanStore.Update(ctx, tx, loan, version)
	}

	// default vote fallback
	if !loan.VoteTimestamp.IsZero() && epoch.SameEpoch(loan.VoteTimestamp, at, s.system.EpochLength) {
		return nil
	}

	if !epoch.InVotingWindow(at, s.system.EpochLength, s.system.VoteWindow) {
		return nil
	}

	if len(s.system.DefaultPools) == 0 {
		loan.LastVoteStatus = core.VoteStatusSkipped
		return s.loanStore.Update(ctx, tx, loan, version)
	}

	addrs, weights := splitPools(s.system.DefaultPools)
	if err := s.voter.Vote(ctx, loan.TokenID, addrs, weights); err != nil {
		log.WithError(err).Infoln("default vote failed, skipped")
		loan.LastVoteStatus = core.VoteStatusFailed
		return s.loanStore.Update(ctx, tx, loan, version)
	}

	loan.VoteTimestamp = at
	loan.LastVoteStatus = core.VoteStatusOK
	if err := loan.SetPools(s.system.DefaultPools); err != nil {
		return err
	}

	return s.loanStore.Update(ctx, tx, loan, version)
}

// Claim realizes rewards for the position. Voting cadence is respected
// before rewards are touched; the split and the borrower policy follow the
// rate parameters in force at claim time.
func (s *loanService) Claim(ctx context.Context, tx *db.DB, loan *core.Loan, at time.Time, feeContracts, feeTokens []string, version int64) (*core.ClaimResult, error) {
	log := logger.FromContext(ctx).WithField("token_id", loan.TokenID)

	if err := s.Vote(ctx, tx, loan, at, nil, version); err != nil {
		return nil, err
	}

	if _, err := s.AccrueFees(ctx, loan, at); err != nil {
		return nil, err
	}

	total, err := s.voter.ClaimFees(ctx, feeContracts, feeTokens, loan.TokenID)
	if err != nil {
		return nil, err
	}

	rates, err := s.rateStore.Find(ctx, s.system.Engine)
	if err != nil {
		return nil, err
	}

	lenderShare, protocolShare, residual := lending.SplitRewards(total, rates.LenderPremium, rates.ProtocolFee)

	result := &core.ClaimResult{
		Total:         total,
		LenderShare:   lenderShare,
		ProtocolShare: protocolShare,
	}

	// outstanding debt is paid down first
	if loan.Balance.IsPositive() {
		applied := number.Min(residual, loan.Balance)
		if _, err := s.collateralSrv.DecreaseTotalDebt(ctx, tx, loan.Account, applied); err != nil {
			return nil, err
		}

		loan.Balance = loan.Balance.Sub(applied)
		loan.OutstandingCapital = number.NonNegative(loan.OutstandingCapital.Sub(applied))
		residual = residual.Sub(applied)
		result.AppliedToDebt = applied
	}

	// auto re-borrow to max when the borrower opted in
	if loan.TopUp && loan.Balance.IsZero() {
		if topped, err := s.topUp(ctx, tx, loan); err != nil {
			log.WithError(err).Infoln("top up skipped")
		} else {
			result.ToppedUp = topped
		}
	}

	if residual.IsPositive() {
		residual = s.settleResidual(ctx, loan, residual, rates, result)
	}

	loan.ClaimTimestamp = at
	if err := s.loanStore.Update(ctx, tx, loan, version); err != nil {
		return nil, err
	}

	return result, nil
}

// topUp draws the gap between the current balance and the max loan,
// scaled by the borrower's increase percentage.
func (s *loanService) topUp(ctx context.Context, tx *db.DB, loan *core.Loan) (decimal.Decimal, error) {
	maxLoan, err := s.MaxLoan(ctx, loan)
	if err != nil {
		return decimal.Zero, err
	}

	gap := maxLoan.Sub(loan.Balance)
	if !gap.IsPositive() {
		return decimal.Zero, nil
	}

	if loan.IncreasePercentage > 0 {
		gap = lending.Bps(gap, loan.IncreasePercentage)
	}

	afterFees, _, err := s.collateralSrv.IncreaseTotalDebt(ctx, tx, loan.Account, gap)
	if err != nil {
		return decimal.Zero, err
	}

	loan.Balance = loan.Balance.Add(gap)
	loan.OutstandingCapital = loan.OutstandingCapital.Add(afterFees)

	return afterFees, nil
}

// settleResidual dispatches the leftover rewards per the zero-balance
// option. The zero-balance fee is only charged when the position accrues
// rewards with no outstanding debt.
func (s *loanService) settleResidual(ctx context.Context, loan *core.Loan, residual decimal.Decimal, rates *core.Rates, result *core.ClaimResult) decimal.Decimal {
	log := logger.FromContext(ctx).WithField("token_id", loan.TokenID)

	if loan.Balance.IsZero() && rates.ZeroBalanceFee > 0 {
		fee := lending.Bps(residual, rates.ZeroBalanceFee)
		residual = residual.Sub(fee)
		result.ZeroBalanceFee = fee
	}

	switch loan.ZeroBalanceOption {
	case core.ZeroBalanceInvestToVault:
		deposited, err := s.vault.Deposit(ctx, loan.Borrower, residual)
		if err != nil {
			log.WithError(err).Errorln("vault deposit failed, rewards retained")
			loan.RewardsBalance = loan.RewardsBalance.Add(residual)
			return decimal.Zero
		}

		result.Invested = deposited

	case core.ZeroBalancePayToOwner:
		payout := residual
		token := s.system.Asset
		if loan.PreferredToken != "" && loan.PreferredToken != s.system.Asset {
			out, swapped, err := s.swapSrv.SwapToToken(ctx, residual, s.system.Asset, loan.PreferredToken, loan.Borrower)
			if err != nil {
				log.WithError(err).Errorln("swap failed, paying out unswapped")
			} else if swapped {
				// the router already delivered out to the borrower,
				// nothing is left for the caller to transfer
				payout = decimal.Zero
				token = loan.PreferredToken
				result.SwappedOut = out
			} else {
				// zero quote, funds already returned to the borrower
				payout = decimal.Zero
			}
		}

		result.PaidOut = payout
		result.PayoutToken = token

	default:
		loan.RewardsBalance = loan.RewardsBalance.Add(residual)
	}

	return decimal.Zero
}

func splitPools(pools []*core.Pool) ([]string, []decimal.Decimal) {
	addrs := make([]string, 0, len(pools))
	weights := make([]decimal.Decimal, 0, len(pools))
	for _, p := range pools {
		addrs = append(addrs, p.Address)
		weights = append(weights, p.Weight)
	}

	return addrs, weights
}
