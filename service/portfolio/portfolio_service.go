package portfolio

import (
	"context"
	"fmt"

	"veloan/core"
	"veloan/pkg/id"

	"github.com/fox-one/pkg/store/db"
)

type portfolioService struct {
	system *core.System
	store  core.IPortfolioStore
}

// New new portfolio service
func New(system *core.System, store core.IPortfolioStore) core.IPortfolioService {
	return &portfolioService{
		system: system,
		store:  store,
	}
}

// GetOrCreate the portfolio account for owner; one account per owner,
// created on first use with a deterministic address.
func (s *portfolioService) GetOrCreate(ctx context.Context, tx *db.DB, owner string) (*core.Portfolio, error) {
	portfolio, err := s.store.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	if portfolio.ID > 0 {
		return portfolio, nil
	}

	portfolio = &core.Portfolio{
		Address: id.TraceIDFrom(fmt.Sprintf("portfolio:%s:%s", s.system.Engine, owner)),
		Owner:   owner,
	}

	if err := s.store.Create(ctx, tx, portfolio); err != nil {
		return nil, err
	}

	return portfolio, nil
}

func (s *portfolioService) Find(ctx context.Context, address string) (*core.Portfolio, error) {
	return s.store.Find(ctx, address)
}

func (s *portfolioService) Authorized(ctx context.Context, account, caller string) (bool, error) {
	portfolio, err := s.store.Find(ctx, account)
	if err != nil {
		return false, err
	}

	if portfolio.ID == 0 {
		return false, core.ErrAccountNotFound
	}

	return portfolio.Owner == caller || s.system.IsAdmin(caller), nil
}
