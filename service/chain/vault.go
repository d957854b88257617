package chain

import (
	"context"

	"veloan/core"

	"github.com/shopspring/decimal"
)

type vault struct {
	client  *Client
	address string
}

// NewVault reward vault capability over the gateway
func NewVault(client *Client, address string) core.Vault {
	return &vault{
		client:  client,
		address: address,
	}
}

func (v *vault) Deposit(ctx context.Context, owner string, amount decimal.Decimal) (decimal.Decimal, error) {
	var shares decimal.Decimal
	if err := v.client.Execute(ctx, v.address, "deposit", []interface{}{owner, amount}, &shares); err != nil {
		return decimal.Zero, err
	}

	return shares, nil
}
