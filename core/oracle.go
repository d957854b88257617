package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceRound latest oracle round
type PriceRound struct {
	Answer    decimal.Decimal `json:"answer"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PriceOracle latest round data capability
type PriceOracle interface {
	LatestRoundData(ctx context.Context) (*PriceRound, error)
}
