// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market_test

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/platform"
	"github.com/labx-protocol/labmarket/storage"
)

func TestConfirmReservation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.request(t, hourMs)
	f.confirm(t, id)

	res := f.reservation(t, id)
	require.Equal(storage.Confirmed, res.Status)
	require.Equal(f.provider, res.Provider)
	require.True(res.Enqueued)

	// The split is frozen at confirmation and conserves the price.
	require.Equal(res.Price, res.Shares.Total())
	require.Equal(res.Price*70/100, res.Shares.Provider)

	// Funds moved into escrow and the interval is booked.
	require.Equal(10*uint64(hourMs)-res.Price, f.balance(t, f.requester))
	require.Equal(res.Price, f.balance(t, market.Escrow))
	require.Equal(1, f.calendar(t))

	size, stale, err := storage.PayoutHeapSize(ctx, f.store, f.labID)
	require.NoError(err)
	require.Equal(1, size)
	require.Zero(stale)

	// Confirmation locks the provider's stake cool-down.
	rec, err := storage.GetStake(ctx, f.store, f.provider)
	require.NoError(err)
	require.Equal(now, rec.LastReservation)
}

func TestConfirmDeniesOnTransferFailure(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.request(t, hourMs)

	// Allowance revoked between request and confirmation: the debit
	// fails, the reservation auto-cancels, and the call still succeeds.
	require.NoError(storage.SetAllowance(ctx, f.store, f.requester, market.Escrow, 0))

	out, err := (&market.ConfirmReservation{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.NoError(err)
	result := out.(*market.ConfirmReservationResult)
	require.True(result.Denied)
	require.Equal(market.DenialTransfer, result.Reason)

	res := f.reservation(t, id)
	require.Equal(storage.Cancelled, res.Status)
	require.Zero(f.calendar(t))
	require.Equal(10*uint64(hourMs), f.balance(t, f.requester))

	index, err := storage.GetUserIndex(ctx, f.store, f.labID, res.TrackingKey())
	require.NoError(err)
	require.Empty(index)
}

func TestConfirmDeniesOnElapsedWindow(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	lead := f.env.Rules.RequestWindow + 2*hourMs
	id := f.request(t, lead)

	later := now + f.env.Rules.RequestWindow + 1
	out, err := (&market.ConfirmReservation{ReservationID: id}).Execute(
		ctx, f.env, f.store, later, f.provider, ids.GenerateTestID())
	require.NoError(err)
	result := out.(*market.ConfirmReservationResult)
	require.True(result.Denied)
	require.Equal(market.DenialExpired, result.Reason)
	require.Equal(storage.Cancelled, f.reservation(t, id).Status)
}

func TestConfirmDeniesOnGateFailure(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.request(t, hourMs)
	require.NoError(storage.SubStake(ctx, f.store, f.provider, 1))

	out, err := (&market.ConfirmReservation{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.NoError(err)
	result := out.(*market.ConfirmReservationResult)
	require.True(result.Denied)
	require.Equal(market.DenialGate, result.Reason)
	require.Equal(storage.Cancelled, f.reservation(t, id).Status)
}

func TestConfirmAuthorization(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.request(t, hourMs)
	_, err := (&market.ConfirmReservation{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.requester, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrUnauthorized)

	// A backend delegate registered by the owner may confirm.
	backend := addr(0x44)
	require.NoError(platform.Roles{}.SetBackend(ctx, f.store, f.provider, backend))
	out, err := (&market.ConfirmReservation{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, backend, ids.GenerateTestID())
	require.NoError(err)
	require.False(out.(*market.ConfirmReservationResult).Denied)
}

func TestConfirmRequiresPending(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.booked(t, hourMs)
	_, err := (&market.ConfirmReservation{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrNotPending)
}

func TestConfirmDeniesOnOverlap(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	// Two pending requests with different starts but overlapping
	// ranges; the second confirmation loses at the calendar.
	first := f.request(t, 2*hourMs)
	second, err := (&market.RequestReservation{
		LabID: f.labID,
		Start: now + 2*hourMs + 30*60_000,
		End:   now + 4*hourMs,
	}).Execute(ctx, f.env, f.store, now, f.requester, ids.GenerateTestID())
	require.NoError(err)

	f.confirm(t, first)
	out, err := (&market.ConfirmReservation{
		ReservationID: second.(*market.RequestReservationResult).ReservationID,
	}).Execute(ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.NoError(err)
	result := out.(*market.ConfirmReservationResult)
	require.True(result.Denied)
	require.Equal(market.DenialSlot, result.Reason)
	require.Equal(1, f.calendar(t))
}
