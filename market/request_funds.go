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
	_ Action      = (*RequestFunds)(nil)
	_ codec.Typed = (*RequestFundsResult)(nil)
)

// RequestFunds is the provider payout pull: it pops eligible payout
// candidates for a lab (finalizing each), runs a heap compaction if
// enough stale entries accumulated, then drains the lab's provider
// bucket to the current owner from escrow. An empty heap and bucket is
// a no-op success.
type RequestFunds struct {
	LabID    uint64 `json:"labID"`
	MaxBatch int    `json:"maxBatch"`
}

func (*RequestFunds) GetTypeID() uint8 {
	return RequestFundsID
}

func (a *RequestFunds) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if a.MaxBatch <= 0 || a.MaxBatch > env.Rules.MaxSweepBatch {
		return nil, ErrInvalidBatch
	}
	owner, err := ownerOf(ctx, env, mu, a.LabID)
	if err != nil {
		return nil, err
	}
	ok, err := authorizedProvider(ctx, env, mu, owner, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	finalized := 0
	for finalized < a.MaxBatch {
		id, err := storage.PopEligiblePayout(ctx, mu, a.LabID, timestamp)
		if err != nil {
			return nil, err
		}
		if id == ids.Empty {
			break
		}
		res, err := storage.GetReservation(ctx, mu, id)
		if err != nil {
			return nil, err
		}
		if err := finalizeForPayout(ctx, env, mu, id, res, timestamp, true); err != nil {
			return nil, err
		}
		finalized++
	}
	compacted, err := storage.CompactPayoutsIfNeeded(ctx, mu, a.LabID,
		env.Rules.CompactionThresholdPct, env.Rules.MaxCompactionSize)
	if err != nil {
		return nil, err
	}
	if compacted {
		env.Metrics.recordCompaction()
	}

	amount, err := storage.DrainProviderBucket(ctx, mu, a.LabID)
	if err != nil {
		return nil, err
	}
	if amount > 0 {
		if err := env.Ledger.Transfer(ctx, mu, Escrow, owner, amount); err != nil {
			return nil, err
		}
		env.Metrics.recordPayout(amount)
	}
	env.log().Debug("funds requested",
		zap.Uint64("lab", a.LabID),
		zap.Int("finalized", finalized),
		zap.Uint64("amount", amount),
	)
	return &RequestFundsResult{
		Finalized: finalized,
		Amount:    amount,
	}, nil
}

type RequestFundsResult struct {
	Finalized int    `json:"finalized"`
	Amount    uint64 `json:"amount"`
}

func (*RequestFundsResult) GetTypeID() uint8 {
	return RequestFundsID
}
