package lending

import (
	"github.com/shopspring/decimal"
)

var (
	// BpsBase basis point denominator
	BpsBase = decimal.NewFromInt(10000)
	// OriginationFeeBps fee deducted from borrowed principal at draw time
	OriginationFeeBps int64 = 80
	// MaxPrecision max precision
	MaxPrecision int32 = 16
)

// Bps amount scaled by a basis-point rate
func Bps(amount decimal.Decimal, bps int64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(bps)).Div(BpsBase).Truncate(MaxPrecision)
}

// OriginationFee fee charged on a draw of amount
func OriginationFee(amount decimal.Decimal) decimal.Decimal {
	return Bps(amount, OriginationFeeBps)
}

// AfterFees payout net of the origination fee,
// amount == AfterFees(amount) + OriginationFee(amount)
func AfterFees(amount decimal.Decimal) decimal.Decimal {
	return amount.Sub(OriginationFee(amount))
}

// MaxLoan locked collateral value scaled by the utilization rate
func MaxLoan(lockedValue decimal.Decimal, utilizationBps int64) decimal.Decimal {
	return Bps(lockedValue, utilizationBps)
}

// EpochInterest interest accrued on balance over one epoch
func EpochInterest(balance decimal.Decimal, rateBps int64) decimal.Decimal {
	return Bps(balance, rateBps)
}

// SplitRewards split claimed rewards into the lender premium, the protocol
// fee and the residual paid toward the borrower's policy
func SplitRewards(total decimal.Decimal, lenderPremiumBps, protocolFeeBps int64) (lender, protocol, residual decimal.Decimal) {
	lender = Bps(total, lenderPremiumBps)
	protocol = Bps(total, protocolFeeBps)
	residual = total.Sub(lender).Sub(protocol)
	return
}
