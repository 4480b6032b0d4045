// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var (
	_ Action      = (*RecoverOrphanedPayout)(nil)
	_ codec.Typed = (*RecoverOrphanedPayoutResult)(nil)
)

// RecoverOrphanedPayout moves a provider bucket that nobody claimed
// for the orphan delay into the treasury bucket. Value stays inside
// escrow; only the claimant changes.
type RecoverOrphanedPayout struct {
	LabID uint64 `json:"labID"`
}

func (*RecoverOrphanedPayout) GetTypeID() uint8 {
	return RecoverOrphanedPayoutID
}

func (a *RecoverOrphanedPayout) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if actor != env.Rules.AdminAddress || actor == codec.EmptyAddress {
		return nil, ErrUnauthorized
	}
	amount, lastUpdate, err := storage.GetProviderBucket(ctx, mu, a.LabID)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, ErrNothingToClaim
	}
	if timestamp < lastUpdate+env.Rules.OrphanDelay {
		return nil, ErrOrphanNotReady
	}
	if _, err := storage.DrainProviderBucket(ctx, mu, a.LabID); err != nil {
		return nil, err
	}
	if err := storage.AddGlobalBucket(ctx, mu, storage.BucketTreasury, amount); err != nil {
		return nil, err
	}
	env.log().Info("orphaned payout recovered",
		zap.Uint64("lab", a.LabID),
		zap.Uint64("amount", amount),
	)
	return &RecoverOrphanedPayoutResult{Amount: amount}, nil
}

type RecoverOrphanedPayoutResult struct {
	Amount uint64 `json:"amount"`
}

func (*RecoverOrphanedPayoutResult) GetTypeID() uint8 {
	return RecoverOrphanedPayoutID
}
