// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

// cancelPending terminates a pending reservation without a fee. No
// funds have moved and no calendar interval exists, so teardown is
// pure bookkeeping.
func cancelPending(ctx context.Context, env *Env, mu state.Mutable, id ids.ID, res *storage.Reservation) error {
	res.Status = storage.Cancelled
	if err := storage.SetReservation(ctx, mu, id, res); err != nil {
		return err
	}
	if err := storage.RemoveFromUserIndex(ctx, mu, res.LabID, res.TrackingKey(), id); err != nil {
		return err
	}
	if err := storage.RemoveFromActiveSet(ctx, mu, res.LabID, id); err != nil {
		return err
	}
	env.Metrics.recordCancellation()
	return nil
}

// finalizeForPayout settles a payable reservation: its frozen shares
// are credited to the pending buckets, its calendar interval is
// freed, and every index entry pointing at it is dropped. [viaHeap]
// distinguishes the payout-pop path (the heap entry was physically
// removed) from the sweep path (the entry lingers and must be counted
// stale).
func finalizeForPayout(ctx context.Context, env *Env, mu state.Mutable, id ids.ID, res *storage.Reservation, now int64, viaHeap bool) error {
	wasEnqueued := res.Enqueued
	res.Status = storage.Collected
	res.Enqueued = false
	if err := storage.SetReservation(ctx, mu, id, res); err != nil {
		return err
	}
	if err := storage.RemoveCalendarInterval(ctx, mu, res.LabID, res.Start); err != nil {
		return err
	}
	if err := storage.CreditProviderBucket(ctx, mu, res.LabID, res.Shares.Provider, now); err != nil {
		return err
	}
	if err := storage.AddGlobalBucket(ctx, mu, storage.BucketTreasury, res.Shares.Treasury); err != nil {
		return err
	}
	if err := storage.AddGlobalBucket(ctx, mu, storage.BucketSubsidies, res.Shares.Subsidies); err != nil {
		return err
	}
	if err := storage.AddGlobalBucket(ctx, mu, storage.BucketGovernance, res.Shares.Governance); err != nil {
		return err
	}
	tracking := res.TrackingKey()
	if err := storage.RemoveFromUserIndex(ctx, mu, res.LabID, tracking, id); err != nil {
		return err
	}
	if err := storage.RemoveFromActiveSet(ctx, mu, res.LabID, id); err != nil {
		return err
	}
	if err := storage.ClearEarliest(ctx, mu, res.LabID, tracking, id); err != nil {
		return err
	}
	if !viaHeap && wasEnqueued {
		if err := storage.MarkPayoutStale(ctx, mu, res.LabID); err != nil {
			return err
		}
	}
	env.Reputation.RecordCompletion(ctx, mu, res.LabID)
	env.Metrics.recordCollected()
	env.log().Debug("reservation collected",
		zap.Stringer("reservation", id),
		zap.Uint64("lab", res.LabID),
		zap.Uint64("providerShare", res.Shares.Provider),
	)
	return nil
}

// sweepUser is the expiry-and-release pass over one tracking key's
// reservation index for one lab: lapsed payable reservations are
// finalized, stale pending requests are cancelled without a fee.
// The index shrinks while we iterate, so the list is re-read after
// every mutation instead of cached.
func sweepUser(ctx context.Context, env *Env, mu state.Mutable, labID uint64, tracking ids.ID, now int64, maxBatch int) (int, error) {
	processed := 0
	i := 0
	for processed < maxBatch {
		list, err := storage.GetUserIndex(ctx, mu, labID, tracking)
		if err != nil {
			return processed, err
		}
		if i >= len(list) {
			break
		}
		id := list[i]
		res, err := storage.GetReservation(ctx, mu, id)
		if err != nil {
			return processed, err
		}
		switch {
		case res.Status.Payable() && res.End <= now:
			if err := finalizeForPayout(ctx, env, mu, id, res, now, false); err != nil {
				return processed, err
			}
			processed++
		case res.Status == storage.Pending && now > res.RequestedAt+res.Window:
			if err := cancelPending(ctx, env, mu, id, res); err != nil {
				return processed, err
			}
			processed++
		default:
			i++
		}
	}
	env.Metrics.recordSwept(processed)
	return processed, nil
}
