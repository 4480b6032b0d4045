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

func TestRegisterLab(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	// The fixture provider has one listed lab backed by exactly one
	// lab's stake; a second listing fails the prospective gate.
	_, err := (&market.RegisterLab{
		URI:          "lab://second",
		PricePerHour: hourlyRate,
	}).Execute(ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrInsufficientStake)

	require.NoError(storage.AddStake(ctx, f.store, f.provider, f.env.Rules.StakePerLab))
	out, err := (&market.RegisterLab{
		URI:          "lab://second",
		PricePerHour: hourlyRate,
	}).Execute(ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.NoError(err)
	labID := out.(*market.RegisterLabResult).LabID
	require.Equal(f.labID+1, labID)

	lab, err := storage.GetLab(ctx, f.store, labID)
	require.NoError(err)
	require.True(lab.Listed)
	owner, err := storage.GetLabOwner(ctx, f.store, labID)
	require.NoError(err)
	require.Equal(f.provider, owner)

	rec, err := storage.GetStake(ctx, f.store, f.provider)
	require.NoError(err)
	require.Equal(uint64(2), rec.Listed)

	// Non-providers cannot register.
	_, err = (&market.RegisterLab{URI: "lab://nope"}).Execute(
		ctx, f.env, f.store, now, f.requester, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrNotProvider)
}

func TestSetListing(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	_, err := (&market.SetListing{LabID: f.labID, Listed: false}).Execute(
		ctx, f.env, f.store, now, f.requester, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrUnauthorized)

	_, err = (&market.SetListing{LabID: f.labID, Listed: false}).Execute(
		ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.NoError(err)
	lab, err := storage.GetLab(ctx, f.store, f.labID)
	require.NoError(err)
	require.False(lab.Listed)
	rec, err := storage.GetStake(ctx, f.store, f.provider)
	require.NoError(err)
	require.Zero(rec.Listed)

	// Re-listing passes the gate again.
	_, err = (&market.SetListing{LabID: f.labID, Listed: true}).Execute(
		ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.NoError(err)
	rec, err = storage.GetStake(ctx, f.store, f.provider)
	require.NoError(err)
	require.Equal(uint64(1), rec.Listed)
}

func TestStakeAndUnstake(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	staker := addr(0x55)
	require.NoError(platform.Roles{}.Grant(ctx, f.store, staker, storage.RoleProvider))
	f.fund(t, staker, 3*f.env.Rules.StakePerLab)

	out, err := (&market.Stake{Amount: 2 * f.env.Rules.StakePerLab}).Execute(
		ctx, f.env, f.store, now, staker, ids.GenerateTestID())
	require.NoError(err)
	require.Equal(2*f.env.Rules.StakePerLab, out.(*market.StakeResult).Staked)
	require.Equal(f.env.Rules.StakePerLab, f.balance(t, staker))

	// No activity yet, so no cool-down applies.
	out, err = (&market.Unstake{Amount: f.env.Rules.StakePerLab}).Execute(
		ctx, f.env, f.store, now, staker, ids.GenerateTestID())
	require.NoError(err)
	require.Equal(f.env.Rules.StakePerLab, out.(*market.StakeResult).Staked)

	// More than is staked.
	_, err = (&market.Unstake{Amount: 2 * f.env.Rules.StakePerLab}).Execute(
		ctx, f.env, f.store, now, staker, ids.GenerateTestID())
	require.ErrorIs(err, storage.ErrInvalidStake)
}

func TestUnstakeCooldown(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	// Confirmation stamped the provider's last-reservation time.
	f.booked(t, hourMs)

	// Extra stake beyond the listed-lab requirement, still locked by
	// the cool-down.
	require.NoError(storage.AddStake(ctx, f.store, f.provider, 1_000))
	_, err := (&market.Unstake{Amount: 1_000}).Execute(
		ctx, f.env, f.store, now+1, f.provider, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrUnstakeLocked)

	after := now + f.env.Rules.UnstakeCooldown + 1
	_, err = (&market.Unstake{Amount: 1_000}).Execute(
		ctx, f.env, f.store, after, f.provider, ids.GenerateTestID())
	require.NoError(err)
	require.Equal(uint64(1_000), f.balance(t, f.provider))

	// The remainder still has to cover the listed lab.
	_, err = (&market.Unstake{Amount: 1}).Execute(
		ctx, f.env, f.store, after, f.provider, ids.GenerateTestID())
	require.ErrorIs(err, market.ErrInsufficientStake)
}
