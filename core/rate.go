package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Rates per-engine protocol rate parameters, all in basis points
type Rates struct {
	ID                uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Engine            string    `sql:"size:36" json:"engine"`
	ZeroBalanceFee    int64     `sql:"default:0" json:"zero_balance_fee"`
	RewardsRate       int64     `sql:"default:0" json:"rewards_rate"`
	LenderPremium     int64     `sql:"default:0" json:"lender_premium"`
	ProtocolFee       int64     `sql:"default:0" json:"protocol_fee"`
	UtilizationRate   int64     `sql:"default:0" json:"utilization_rate"`
	VaultRelayRate    int64     `sql:"default:0" json:"vault_relay_rate"`
	ActualRewardsRate int64     `sql:"default:0" json:"actual_rewards_rate"`
	Version           int64     `sql:"default:0" json:"version"`
	CreatedAt         time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// RateEpoch realized rewards rate for one epoch, written once, never rewritten
type RateEpoch struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Engine    string          `sql:"size:36;unique_index:rate_epoch_idx" json:"engine"`
	Epoch     int64           `sql:"unique_index:rate_epoch_idx" json:"epoch"`
	Rate      decimal.Decimal `sql:"type:decimal(32,16)" json:"rate"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IRateStore rate store interface
type IRateStore interface {
	Find(ctx context.Context, engine string) (*Rates, error)
	Save(ctx context.Context, rates *Rates) error
	Update(ctx context.Context, rates *Rates, version int64) error
	SaveEpochRate(ctx context.Context, engine string, epoch int64, rate decimal.Decimal) error
	FindEpochRate(ctx context.Context, engine string, epoch int64) (*RateEpoch, error)
	ListEpochRates(ctx context.Context, engine string, from, limit int64) ([]*RateEpoch, error)
}
