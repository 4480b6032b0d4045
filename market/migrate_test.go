// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/platform"
	"github.com/labx-protocol/labmarket/storage"
)

func TestMigrationRejectsPending(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	f.request(t, hourMs)
	newOwner := addr(0x66)

	registry := f.env.Assets.(*platform.AssetRegistry)
	err := registry.Transfer(ctx, f.store, f.labID, f.provider, newOwner, now)
	require.ErrorIs(err, market.ErrPendingReservations)

	// The transfer was rejected wholesale: ownership unchanged, lab
	// still listed.
	owner, err := storage.GetLabOwner(ctx, f.store, f.labID)
	require.NoError(err)
	require.Equal(f.provider, owner)
	lab, err := storage.GetLab(ctx, f.store, f.labID)
	require.NoError(err)
	require.True(lab.Listed)
}

func TestMigrationRePointsProvider(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.booked(t, hourMs)
	newOwner := addr(0x66)

	registry := f.env.Assets.(*platform.AssetRegistry)
	require.NoError(registry.Transfer(ctx, f.store, f.labID, f.provider, newOwner, now+1))

	owner, err := storage.GetLabOwner(ctx, f.store, f.labID)
	require.NoError(err)
	require.Equal(newOwner, owner)

	// The confirmed reservation follows the lab.
	res := f.reservation(t, id)
	require.Equal(newOwner, res.Provider)

	// The lab is unlisted; the new owner must re-list explicitly.
	lab, err := storage.GetLab(ctx, f.store, f.labID)
	require.NoError(err)
	require.False(lab.Listed)
	fromStake, err := storage.GetStake(ctx, f.store, f.provider)
	require.NoError(err)
	require.Zero(fromStake.Listed)

	// Migrated activity locks the new owner's stake from now.
	toStake, err := storage.GetStake(ctx, f.store, newOwner)
	require.NoError(err)
	require.Equal(now+1, toStake.LastReservation)
}

func TestMigrationRevalidatesInheritedStake(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	id := f.booked(t, hourMs)

	// The receiving provider already has a listed lab but their stake
	// no longer covers it; inheriting must not paper over that.
	newOwner := addr(0x66)
	require.NoError(platform.Roles{}.Grant(ctx, f.store, newOwner, storage.RoleProvider))
	require.NoError(storage.AddStake(ctx, f.store, newOwner, f.env.Rules.StakePerLab-1))
	require.NoError(storage.IncListed(ctx, f.store, newOwner))

	registry := f.env.Assets.(*platform.AssetRegistry)
	err := registry.Transfer(ctx, f.store, f.labID, f.provider, newOwner, now)
	require.ErrorIs(err, market.ErrInsufficientStake)

	// The rejection is all-or-nothing: ownership, the confirmed
	// reservation's provider, the listing, and the old owner's listed
	// count are all untouched.
	owner, err := storage.GetLabOwner(ctx, f.store, f.labID)
	require.NoError(err)
	require.Equal(f.provider, owner)
	require.Equal(f.provider, f.reservation(t, id).Provider)
	lab, err := storage.GetLab(ctx, f.store, f.labID)
	require.NoError(err)
	require.True(lab.Listed)
	fromStake, err := storage.GetStake(ctx, f.store, f.provider)
	require.NoError(err)
	require.Equal(uint64(1), fromStake.Listed)
}

func TestMigrationBoundsActiveSet(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.env.Rules.MaxMigrationSize = 1
	f.env.Rules.MaxUserReservations = 8

	f.fund(t, f.requester, 100*uint64(hourMs))
	f.booked(t, hourMs)
	f.booked(t, 3*hourMs)

	registry := f.env.Assets.(*platform.AssetRegistry)
	err := registry.Transfer(ctx, f.store, f.labID, f.provider, addr(0x66), now)
	require.ErrorIs(err, market.ErrTooManyActiveReservations)
}

func TestMigrationExtendsUnstakeLock(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	// The old owner carries a reservation-driven lock; the new owner's
	// lock must end no earlier even with no migrated reservations.
	require.NoError(storage.ExtendUnstakeLock(ctx, f.store, f.provider, now+5*hourMs))

	newOwner := addr(0x66)
	registry := f.env.Assets.(*platform.AssetRegistry)
	require.NoError(registry.Transfer(ctx, f.store, f.labID, f.provider, newOwner, now))

	toStake, err := storage.GetStake(ctx, f.store, newOwner)
	require.NoError(err)
	require.Equal(now+5*hourMs, toStake.LastReservation)
}
