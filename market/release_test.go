// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market_test

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/storage"
)

func TestReleaseExpired(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, f.requester, 100*uint64(hourMs))

	// One confirmed reservation that will lapse, one stale pending, and
	// one confirmed still in the future.
	lapsed := f.booked(t, hourMs)
	pending := f.request(t, f.env.Rules.RequestWindow+3*hourMs)
	future := f.booked(t, f.env.Rules.RequestWindow+6*hourMs)

	tracking := f.reservation(t, lapsed).TrackingKey()
	later := now + f.env.Rules.RequestWindow + 1

	out, err := (&market.ReleaseExpired{
		LabID:    f.labID,
		Tracking: tracking,
		MaxBatch: 8,
	}).Execute(ctx, f.env, f.store, later, addr(0x99), ids.GenerateTestID())
	require.NoError(err)
	require.Equal(2, out.(*market.ReleaseExpiredResult).Processed)

	require.Equal(storage.Collected, f.reservation(t, lapsed).Status)
	require.Equal(storage.Cancelled, f.reservation(t, pending).Status)
	require.Equal(storage.Confirmed, f.reservation(t, future).Status)

	// Finalize postconditions: interval freed, indexes cleared, shares
	// credited to the buckets.
	require.Equal(1, f.calendar(t))
	index, err := storage.GetUserIndex(ctx, f.store, f.labID, tracking)
	require.NoError(err)
	require.Len(index, 1)
	active, err := storage.GetActiveSet(ctx, f.store, f.labID)
	require.NoError(err)
	require.Len(active, 1)

	res := f.reservation(t, lapsed)
	bucket, _, err := storage.GetProviderBucket(ctx, f.store, f.labID)
	require.NoError(err)
	require.Equal(res.Shares.Provider, bucket)
	treasury, err := storage.GetGlobalBucket(ctx, f.store, storage.BucketTreasury)
	require.NoError(err)
	require.Equal(res.Shares.Treasury, treasury)

	// Idempotent: nothing left to process.
	out, err = (&market.ReleaseExpired{
		LabID:    f.labID,
		Tracking: tracking,
		MaxBatch: 8,
	}).Execute(ctx, f.env, f.store, later, addr(0x99), ids.GenerateTestID())
	require.NoError(err)
	require.Zero(out.(*market.ReleaseExpiredResult).Processed)
}

func TestReleaseExpiredBatchBounds(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	for _, batch := range []int{0, -1, f.env.Rules.MaxSweepBatch + 1} {
		_, err := (&market.ReleaseExpired{
			LabID:    f.labID,
			Tracking: ids.GenerateTestID(),
			MaxBatch: batch,
		}).Execute(ctx, f.env, f.store, now, f.requester, ids.GenerateTestID())
		require.ErrorIs(err, market.ErrInvalidBatch)
	}
}

func TestRequestFunds(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, f.requester, 100*uint64(hourMs))

	first := f.booked(t, hourMs)
	second := f.booked(t, 3*hourMs)
	res := f.reservation(t, first)

	// After both end times have passed, the provider pulls: both are
	// finalized off the heap and the bucket drains to the owner.
	later := now + 10*hourMs
	out, err := (&market.RequestFunds{LabID: f.labID, MaxBatch: 8}).Execute(
		ctx, f.env, f.store, later, f.provider, ids.GenerateTestID())
	require.NoError(err)
	result := out.(*market.RequestFundsResult)
	require.Equal(2, result.Finalized)
	require.Equal(2*res.Shares.Provider, result.Amount)
	require.Equal(result.Amount, f.balance(t, f.provider))

	require.Equal(storage.Collected, f.reservation(t, first).Status)
	require.Equal(storage.Collected, f.reservation(t, second).Status)

	size, _, err := storage.PayoutHeapSize(ctx, f.store, f.labID)
	require.NoError(err)
	require.Zero(size)

	// Empty heap and bucket: a safe no-op.
	out, err = (&market.RequestFunds{LabID: f.labID, MaxBatch: 8}).Execute(
		ctx, f.env, f.store, later, f.provider, ids.GenerateTestID())
	require.NoError(err)
	result = out.(*market.RequestFundsResult)
	require.Zero(result.Finalized)
	require.Zero(result.Amount)
}

func TestRequestFundsAuthorization(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	_, err := (&market.RequestFunds{LabID: f.labID, MaxBatch: 8}).Execute(
		ctx, f.env, f.store, now, f.requester, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrUnauthorized)
}

func TestClaimBucket(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	treasury := addr(0x77)
	f.env.Rules.TreasuryAddress = treasury

	id := f.booked(t, hourMs)
	res := f.reservation(t, id)
	later := now + 10*hourMs
	_, err := (&market.RequestFunds{LabID: f.labID, MaxBatch: 8}).Execute(
		ctx, f.env, f.store, later, f.provider, ids.GenerateTestID())
	require.NoError(err)

	_, err = (&market.ClaimBucket{Bucket: storage.BucketTreasury}).Execute(
		ctx, f.env, f.store, later, f.requester, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrUnauthorized)

	out, err := (&market.ClaimBucket{Bucket: storage.BucketTreasury}).Execute(
		ctx, f.env, f.store, later, treasury, ids.GenerateTestID())
	require.NoError(err)
	require.Equal(res.Shares.Treasury, out.(*market.ClaimBucketResult).Amount)
	require.Equal(res.Shares.Treasury, f.balance(t, treasury))

	// Drained.
	_, err = (&market.ClaimBucket{Bucket: storage.BucketTreasury}).Execute(
		ctx, f.env, f.store, later, treasury, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrNothingToClaim)
}

func TestRecoverOrphanedPayout(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	admin := addr(0x88)
	f.env.Rules.AdminAddress = admin

	id := f.booked(t, hourMs)
	res := f.reservation(t, id)

	// Finalize through a sweep so the provider bucket fills but no
	// provider pull ever happens.
	later := now + 10*hourMs
	_, err := (&market.ReleaseExpired{
		LabID:    f.labID,
		Tracking: res.TrackingKey(),
		MaxBatch: 8,
	}).Execute(ctx, f.env, f.store, later, addr(0x99), ids.GenerateTestID())
	require.NoError(err)

	_, err = (&market.RecoverOrphanedPayout{LabID: f.labID}).Execute(
		ctx, f.env, f.store, later, f.requester, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrUnauthorized)

	// Too early.
	_, err = (&market.RecoverOrphanedPayout{LabID: f.labID}).Execute(
		ctx, f.env, f.store, later+1, admin, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrOrphanNotReady)

	ready := later + f.env.Rules.OrphanDelay
	out, err := (&market.RecoverOrphanedPayout{LabID: f.labID}).Execute(
		ctx, f.env, f.store, ready, admin, ids.GenerateTestID())
	require.NoError(err)
	require.Equal(res.Shares.Provider, out.(*market.RecoverOrphanedPayoutResult).Amount)

	bucket, _, err := storage.GetProviderBucket(ctx, f.store, f.labID)
	require.NoError(err)
	require.Zero(bucket)
	treasury, err := storage.GetGlobalBucket(ctx, f.store, storage.BucketTreasury)
	require.NoError(err)
	require.Equal(res.Shares.Treasury+res.Shares.Provider, treasury)
}
