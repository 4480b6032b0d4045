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

func TestDenyReservation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.request(t, hourMs)
	_, err := (&market.DenyReservation{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.requester, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrUnauthorized)

	_, err = (&market.DenyReservation{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.NoError(err)
	require.Equal(storage.Cancelled, f.reservation(t, id).Status)

	// Terminal states are final.
	_, err = (&market.DenyReservation{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrNotPending)
}

func TestCancelRequest(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.request(t, hourMs)
	_, err := (&market.CancelRequest{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrUnauthorized)

	_, err = (&market.CancelRequest{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.requester, ids.GenerateTestID())
	require.NoError(err)

	res := f.reservation(t, id)
	require.Equal(storage.Cancelled, res.Status)
	index, err := storage.GetUserIndex(ctx, f.store, f.labID, res.TrackingKey())
	require.NoError(err)
	require.Empty(index)
}

func TestCancelBooking(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.booked(t, hourMs)
	res := f.reservation(t, id)
	price := res.Price

	out, err := (&market.CancelBooking{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.requester, ids.GenerateTestID())
	require.NoError(err)
	result := out.(*market.CancelBookingResult)

	// price=3,600,000 at 3% = 108,000 fee, above the 10,000 floor.
	require.Equal(price*3/100, result.Fee)
	require.Equal(price-result.Fee, result.Refund)

	require.Equal(storage.Cancelled, f.reservation(t, id).Status)
	require.Zero(f.calendar(t))
	require.Equal(10*uint64(hourMs)-result.Fee, f.balance(t, f.requester))

	// Fee thirds: provider bucket plus treasury and governance buckets,
	// remainder to governance.
	providerFee, _, err := storage.GetProviderBucket(ctx, f.store, f.labID)
	require.NoError(err)
	treasuryFee, err := storage.GetGlobalBucket(ctx, f.store, storage.BucketTreasury)
	require.NoError(err)
	governanceFee, err := storage.GetGlobalBucket(ctx, f.store, storage.BucketGovernance)
	require.NoError(err)
	require.Equal(result.Fee, providerFee+treasuryFee+governanceFee)
	require.Equal(result.Fee/3, providerFee)

	// The heap entry went stale rather than being removed.
	size, stale, err := storage.PayoutHeapSize(ctx, f.store, f.labID)
	require.NoError(err)
	require.Equal(1, size)
	require.Equal(1, stale)
}

func TestCancelBookingByOwner(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.booked(t, hourMs)
	_, err := (&market.CancelBooking{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.NoError(err)

	rep, err := storage.GetReputation(ctx, f.store, f.labID)
	require.NoError(err)
	require.Equal(uint64(1), rep.OwnerCancellations)
	require.Zero(rep.Completions)
}

func TestCancelBookingRequiresBooked(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.request(t, hourMs)
	_, err := (&market.CancelBooking{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.requester, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrNotBooked)
}
