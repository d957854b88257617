package chain

import (
	"context"

	"veloan/core"

	"github.com/shopspring/decimal"
)

type voter struct {
	client  *Client
	address string
}

// NewVoter voter capability over the gateway
func NewVoter(client *Client, address string) core.Voter {
	return &voter{
		client:  client,
		address: address,
	}
}

func (v *voter) Vote(ctx context.Context, tokenID uint64, pools []string, weights []decimal.Decimal) error {
	return v.client.Execute(ctx, v.address, "vote", []interface{}{tokenID, pools, weights}, nil)
}

func (v *voter) Reset(ctx context.Context, tokenID uint64) error {
	return v.client.Execute(ctx, v.address, "reset", []interface{}{tokenID}, nil)
}

func (v *voter) ClaimFees(ctx context.Context, feeContracts, feeTokens []string, tokenID uint64) (decimal.Decimal, error) {
	var claimed decimal.Decimal
	if err := v.client.Execute(ctx, v.address, "claimFees", []interface{}{feeContracts, feeTokens, tokenID}, &claimed); err != nil {
		return decimal.Zero, err
	}

	return claimed, nil
}
