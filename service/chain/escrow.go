package chain

import (
	"context"
	"time"

	"veloan/core"

	"github.com/shopspring/decimal"
)

type votingEscrow struct {
	client  *Client
	address string
}

// NewVotingEscrow voting escrow capability over the gateway
func NewVotingEscrow(client *Client, address string) core.VotingEscrow {
	return &votingEscrow{
		client:  client,
		address: address,
	}
}

func (e *votingEscrow) Address() string {
	return e.address
}

func (e *votingEscrow) OwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	var owner string
	if err := e.client.Call(ctx, e.address, "ownerOf", []interface{}{tokenID}, &owner); err != nil {
		return "", err
	}

	return owner, nil
}

func (e *votingEscrow) TransferFrom(ctx context.Context, from, to string, tokenID uint64) error {
	return e.client.Execute(ctx, e.address, "transferFrom", []interface{}{from, to, tokenID}, nil)
}

func (e *votingEscrow) Locked(ctx context.Context, tokenID uint64) (*core.LockedBalance, error) {
	var body struct {
		Amount      decimal.Decimal `json:"amount"`
		End         int64           `json:"end"`
		IsPermanent bool            `json:"is_permanent"`
	}

	if err := e.client.Call(ctx, e.address, "locked", []interface{}{tokenID}, &body); err != nil {
		return nil, err
	}

	return &core.LockedBalance{
		Amount:      body.Amount,
		End:         time.Unix(body.End, 0),
		IsPermanent: body.IsPermanent,
	}, nil
}

func (e *votingEscrow) LockPermanent(ctx context.Context, tokenID uint64) error {
	return e.client.Execute(ctx, e.address, "lockPermanent", []interface{}{tokenID}, nil)
}

func (e *votingEscrow) IncreaseUnlockTime(ctx context.Context, tokenID uint64, d time.Duration) error {
	return e.client.Execute(ctx, e.address, "increaseUnlockTime", []interface{}{tokenID, int64(d / time.Second)}, nil)
}

func (e *votingEscrow) BalanceOfNFTAt(ctx context.Context, tokenID uint64, at time.Time) (decimal.Decimal, error) {
	var balance decimal.Decimal
	if err := e.client.Call(ctx, e.address, "balanceOfNFTAt", []interface{}{tokenID, at.Unix()}, &balance); err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}
