package swap

import (
	"context"

	"veloan/core"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type swapService struct {
	router        core.SwapRouter
	routerAddress string
	tokens        map[string]core.AssetToken
}

// New new swap service
func New(router core.SwapRouter, routerAddress string, tokens map[string]core.AssetToken) core.ISwapService {
	return &swapService{
		router:        router,
		routerAddress: routerAddress,
		tokens:        tokens,
	}
}

// SwapToToken routes amountIn through the router's best route. A zero
// minimum-output quote means the swap would destroy value, so the funds go
// straight back to the recipient instead.
func (s *swapService) SwapToToken(ctx context.Context, amountIn decimal.Decimal, fromToken, toToken, recipient string) (decimal.Decimal, bool, error) {
	log := logger.FromContext(ctx).WithField("service", "swap")

	if !amountIn.IsPositive() {
		return decimal.Zero, false, nil
	}

	token, ok := s.tokens[fromToken]
	if !ok {
		return decimal.Zero, false, core.ErrInvalidArgument
	}

	route, err := s.router.GetBestRoute(ctx, fromToken, toToken, amountIn)
	if err != nil {
		return decimal.Zero, false, err
	}

	minOut, err := s.router.GetMinimumAmountOut(ctx, route, amountIn)
	if err != nil {
		return decimal.Zero, false, err
	}

	if !minOut.IsPositive() {
		log.Infoln("zero quote, returning funds unswapped")
		if err := token.Transfer(ctx, recipient, amountIn); err != nil {
			return decimal.Zero, false, err
		}

		return decimal.Zero, false, nil
	}

	// reset the allowance before approving; some token contracts reject
	// a non-zero to non-zero approval change
	if err := token.Approve(ctx, s.routerAddress, decimal.Zero); err != nil {
		return decimal.Zero, false, err
	}

	if err := token.Approve(ctx, s.routerAddress, amountIn); err != nil {
		return decimal.Zero, false, err
	}

	out, err := s.router.SwapExactTokensForTokens(ctx, amountIn, minOut, route, recipient)
	if err != nil {
		return decimal.Zero, false, err
	}

	return out, true, nil
}
