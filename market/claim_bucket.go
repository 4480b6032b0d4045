// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var (
	_ Action      = (*ClaimBucket)(nil)
	_ codec.Typed = (*ClaimBucketResult)(nil)
)

// ClaimBucket drains one of the global fee buckets to its configured
// recipient, paid out of escrow.
type ClaimBucket struct {
	Bucket storage.Bucket `json:"bucket"`
}

func (*ClaimBucket) GetTypeID() uint8 {
	return ClaimBucketID
}

func (a *ClaimBucket) recipient(env *Env) codec.Address {
	switch a.Bucket {
	case storage.BucketTreasury:
		return env.Rules.TreasuryAddress
	case storage.BucketSubsidies:
		return env.Rules.SubsidiesAddress
	case storage.BucketGovernance:
		return env.Rules.GovernanceAddress
	default:
		return codec.EmptyAddress
	}
}

func (a *ClaimBucket) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	recipient := a.recipient(env)
	if recipient == codec.EmptyAddress || actor != recipient {
		return nil, ErrUnauthorized
	}
	amount, err := storage.DrainGlobalBucket(ctx, mu, a.Bucket)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, ErrNothingToClaim
	}
	if err := env.Ledger.Transfer(ctx, mu, Escrow, recipient, amount); err != nil {
		return nil, err
	}
	return &ClaimBucketResult{Amount: amount}, nil
}

type ClaimBucketResult struct {
	Amount uint64 `json:"amount"`
}

func (*ClaimBucketResult) GetTypeID() uint8 {
	return ClaimBucketID
}
