package executor

import (
	"context"

	"veloan/core"
)

type votingFacet struct {
	*Executor
}

func (f *votingFacet) Name() string {
	return "voting"
}

type voteParams struct {
	Pools []*core.Pool `json:"pools"`
}

func (f *votingFacet) Handle(ctx context.Context, call *core.FacetCall) error {
	op := call.Operation

	loan, err := f.findActiveLoan(ctx, op.TokenID)
	if err != nil {
		return err
	}

	if loan.Version >= op.Version {
		return nil
	}

	if err := f.authorizeLoan(ctx, loan, call.Caller); err != nil {
		return err
	}

	var params voteParams
	if err := op.UnmarshalParams(&params); err != nil {
		return core.ErrInvalidArgument
	}

	if len(params.Pools) == 0 {
		return core.ErrInvalidArgument
	}

	if err := f.loanSrv.Vote(ctx, call.Tx, loan, op.CreatedAt, params.Pools, op.Version); err != nil {
		return err
	}

	extra := core.NewTransactionExtra()
	extra.Put("token_id", op.TokenID)
	extra.Put("pools", params.Pools)

	return f.writeTransaction(ctx, call.Tx, op, extra)
}
