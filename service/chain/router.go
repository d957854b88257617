package chain

import (
	"context"

	"veloan/core"

	"github.com/shopspring/decimal"
)

type swapRouter struct {
	client  *Client
	address string
}

// NewSwapRouter swap router capability over the gateway
func NewSwapRouter(client *Client, address string) core.SwapRouter {
	return &swapRouter{
		client:  client,
		address: address,
	}
}

func (r *swapRouter) GetBestRoute(ctx context.Context, fromToken, toToken string, amountIn decimal.Decimal) ([]string, error) {
	var route []string
	if err := r.client.Call(ctx, r.address, "getBestRoute", []interface{}{fromToken, toToken, amountIn}, &route); err != nil {
		return nil, err
	}

	return route, nil
}

func (r *swapRouter) GetMinimumAmountOut(ctx context.Context, route []string, amountIn decimal.Decimal) (decimal.Decimal, error) {
	var out decimal.Decimal
	if err := r.client.Call(ctx, r.address, "getMinimumAmountOut", []interface{}{route, amountIn}, &out); err != nil {
		return decimal.Zero, err
	}

	return out, nil
}

func (r *swapRouter) SwapExactTokensForTokens(ctx context.Context, amountIn, minOut decimal.Decimal, route []string, to string) (decimal.Decimal, error) {
	var out decimal.Decimal
	if err := r.client.Execute(ctx, r.address, "swapExactTokensForTokens", []interface{}{amountIn, minOut, route, to}, &out); err != nil {
		return decimal.Zero, err
	}

	return out, nil
}
