// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market_test

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/labx-protocol/labmarket/crypto/ed25519"
	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/storage"
)

func TestCheckIn(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.booked(t, hourMs)

	// Before the window opens.
	_, err := (&market.CheckIn{ReservationID: id}).Execute(
		ctx, f.env, f.store, now, f.requester, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrOutsideUsageWindow)

	inWindow := now + hourMs + 60_000
	_, err = (&market.CheckIn{ReservationID: id}).Execute(
		ctx, f.env, f.store, inWindow, f.provider, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrUnauthorized)

	_, err = (&market.CheckIn{ReservationID: id}).Execute(
		ctx, f.env, f.store, inWindow, f.requester, ids.GenerateTestID())
	require.NoError(err)
	require.Equal(storage.InUse, f.reservation(t, id).Status)

	// Already in use.
	_, err = (&market.CheckIn{ReservationID: id}).Execute(
		ctx, f.env, f.store, inWindow, f.requester, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrNotConfirmed)
}

func TestComplete(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.booked(t, hourMs)
	inWindow := now + hourMs + 60_000
	_, err := (&market.CheckIn{ReservationID: id}).Execute(
		ctx, f.env, f.store, inWindow, f.requester, ids.GenerateTestID())
	require.NoError(err)

	_, err = (&market.Complete{ReservationID: id}).Execute(
		ctx, f.env, f.store, inWindow+60_000, f.provider, ids.GenerateTestID())
	require.NoError(err)

	res := f.reservation(t, id)
	require.Equal(storage.Completed, res.Status)
	// Completed stays payable; the calendar interval remains until
	// collection.
	require.True(res.Status.Payable())
	require.Equal(1, f.calendar(t))
}

func TestSignedCheckIn(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	// Rebind the requester to an address derived from a signing key so
	// the signature can authorize on its behalf.
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	signer := priv.PublicKey()
	f.requester = market.SignerAddress(signer)
	f.fund(t, f.requester, 10*uint64(hourMs))

	id := f.booked(t, hourMs)
	res := f.reservation(t, id)
	payerHash := res.TrackingKey()
	inWindow := now + hourMs + 60_000

	sign := func(ts int64) ed25519.Signature {
		return ed25519.Sign(market.CheckInMessage(signer, id, payerHash, ts), priv)
	}

	// Stale signed timestamp.
	staleTS := inWindow - f.env.Rules.CheckInFreshness - 1
	_, err = (&market.SignedCheckIn{
		ReservationID: id,
		PayerHash:     payerHash,
		Timestamp:     staleTS,
		Signer:        signer,
		Signature:     sign(staleTS),
	}).Execute(ctx, f.env, f.store, inWindow, addr(0x55), ids.GenerateTestID())
	require.ErrorIs(err, market.ErrSignatureExpired)

	// Signature over a different payer hash.
	_, err = (&market.SignedCheckIn{
		ReservationID: id,
		PayerHash:     ids.GenerateTestID(),
		Timestamp:     inWindow,
		Signer:        signer,
		Signature:     sign(inWindow),
	}).Execute(ctx, f.env, f.store, inWindow, addr(0x55), ids.GenerateTestID())
	require.ErrorIs(err, market.ErrSignerMismatch)

	// Corrupted signature.
	badSig := sign(inWindow)
	badSig[0] ^= 0x01
	_, err = (&market.SignedCheckIn{
		ReservationID: id,
		PayerHash:     payerHash,
		Timestamp:     inWindow,
		Signer:        signer,
		Signature:     badSig,
	}).Execute(ctx, f.env, f.store, inWindow, addr(0x55), ids.GenerateTestID())
	require.ErrorIs(err, market.ErrSignatureInvalid)

	// A key not bound to the reservation.
	otherPriv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	otherPub := otherPriv.PublicKey()
	_, err = (&market.SignedCheckIn{
		ReservationID: id,
		PayerHash:     payerHash,
		Timestamp:     inWindow,
		Signer:        otherPub,
		Signature:     ed25519.Sign(market.CheckInMessage(otherPub, id, payerHash, inWindow), otherPriv),
	}).Execute(ctx, f.env, f.store, inWindow, addr(0x55), ids.GenerateTestID())
	require.ErrorIs(err, market.ErrSignerMismatch)

	// A valid signature checks in regardless of who executes.
	_, err = (&market.SignedCheckIn{
		ReservationID: id,
		PayerHash:     payerHash,
		Timestamp:     inWindow,
		Signer:        signer,
		Signature:     sign(inWindow),
	}).Execute(ctx, f.env, f.store, inWindow, addr(0x55), ids.GenerateTestID())
	require.NoError(err)
	require.Equal(storage.InUse, f.reservation(t, id).Status)
}
