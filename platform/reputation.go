// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"context"

	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var _ market.ReputationTracker = (*Reputation)(nil)

// Reputation counts per-lab completions and owner cancellations. The
// engine treats these as fire-and-forget, so write failures are
// swallowed here rather than propagated.
type Reputation struct{}

func (Reputation) RecordCompletion(ctx context.Context, mu state.Mutable, labID uint64) {
	rec, err := storage.GetReputation(ctx, mu, labID)
	if err != nil {
		return
	}
	rec.Completions++
	_ = storage.SetReputation(ctx, mu, labID, rec)
}

func (Reputation) RecordOwnerCancellation(ctx context.Context, mu state.Mutable, labID uint64) {
	rec, err := storage.GetReputation(ctx, mu, labID)
	if err != nil {
		return
	}
	rec.OwnerCancellations++
	_ = storage.SetReputation(ctx, mu, labID, rec)
}
