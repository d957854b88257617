package oracle

import (
	"context"
	"time"

	"veloan/core"
	"veloan/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	defaultStaleness = 25 * time.Hour
	defaultMinPrice  = "0.999"
)

type oracleService struct {
	cfg       core.OracleConfig
	oracle    core.PriceOracle
	staleness time.Duration
	minPrice  decimal.Decimal
}

// New new oracle service
func New(cfg core.OracleConfig, oracle core.PriceOracle) core.IOracleService {
	staleness := defaultStaleness
	if cfg.StalenessSeconds > 0 {
		staleness = time.Duration(cfg.StalenessSeconds) * time.Second
	}

	minPrice := number.Decimal(defaultMinPrice)
	if cfg.MinPrice != "" {
		minPrice = number.Decimal(cfg.MinPrice)
	}

	return &oracleService{
		cfg:       cfg,
		oracle:    oracle,
		staleness: staleness,
		minPrice:  minPrice,
	}
}

// ConfirmPrice the staleness and depeg guard for every price-denominated
// operation. Deployments that forgo oracle risk disable the check in
// config and the guard passes unconditionally.
func (s *oracleService) ConfirmPrice(ctx context.Context) (bool, error) {
	if !s.cfg.CheckEnabled {
		return true, nil
	}

	round, err := s.oracle.LatestRoundData(ctx)
	if err != nil {
		return false, err
	}

	log := logger.FromContext(ctx).WithField("service", "oracle")

	if time.Since(round.UpdatedAt) > s.staleness {
		log.Infoln("oracle round stale:", round.UpdatedAt)
		return false, nil
	}

	if round.Answer.LessThan(s.minPrice) {
		log.Infoln("oracle price off peg:", round.Answer)
		return false, nil
	}

	return true, nil
}

func (s *oracleService) LatestRound(ctx context.Context) (*core.PriceRound, error) {
	return s.oracle.LatestRoundData(ctx)
}
