// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/state"
)

var (
	_ Action      = (*ReleaseExpired)(nil)
	_ codec.Typed = (*ReleaseExpiredResult)(nil)
)

// ReleaseExpired runs the expiry sweeper over one tracking key's
// reservations for one lab: lapsed payable reservations are finalized
// for payout, stale pending requests are cancelled without a fee.
// Anyone may call it; re-running after all eligible work is done is a
// no-op returning zero processed.
type ReleaseExpired struct {
	LabID    uint64 `json:"labID"`
	Tracking ids.ID `json:"tracking"`
	MaxBatch int    `json:"maxBatch"`
}

func (*ReleaseExpired) GetTypeID() uint8 {
	return ReleaseExpiredID
}

func (a *ReleaseExpired) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	timestamp int64,
	_ codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if a.MaxBatch <= 0 || a.MaxBatch > env.Rules.MaxSweepBatch {
		return nil, ErrInvalidBatch
	}
	processed, err := sweepUser(ctx, env, mu, a.LabID, a.Tracking, timestamp, a.MaxBatch)
	if err != nil {
		return nil, err
	}
	return &ReleaseExpiredResult{Processed: processed}, nil
}

type ReleaseExpiredResult struct {
	Processed int `json:"processed"`
}

func (*ReleaseExpiredResult) GetTypeID() uint8 {
	return ReleaseExpiredID
}
