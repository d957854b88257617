package chain

import (
	"context"

	"veloan/core"

	"github.com/shopspring/decimal"
)

type assetToken struct {
	client  *Client
	address string
}

// NewAssetToken fungible token capability over the gateway
func NewAssetToken(client *Client, address string) core.AssetToken {
	return &assetToken{
		client:  client,
		address: address,
	}
}

func (t *assetToken) Address() string {
	return t.address
}

func (t *assetToken) Transfer(ctx context.Context, to string, amount decimal.Decimal) error {
	return t.client.Execute(ctx, t.address, "transfer", []interface{}{to, amount}, nil)
}

func (t *assetToken) TransferFrom(ctx context.Context, from, to string, amount decimal.Decimal) error {
	return t.client.Execute(ctx, t.address, "transferFrom", []interface{}{from, to, amount}, nil)
}

func (t *assetToken) Approve(ctx context.Context, spender string, amount decimal.Decimal) error {
	return t.client.Execute(ctx, t.address, "approve", []interface{}{spender, amount}, nil)
}

func (t *assetToken) BalanceOf(ctx context.Context, owner string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	if err := t.client.Call(ctx, t.address, "balanceOf", []interface{}{owner}, &balance); err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}
