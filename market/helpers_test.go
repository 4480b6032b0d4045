// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market_test

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/markettest"
	"github.com/labx-protocol/labmarket/platform"
	"github.com/labx-protocol/labmarket/state/statetest"
	"github.com/labx-protocol/labmarket/storage"
)

const (
	hourMs = int64(3_600_000)

	// Hourly rate chosen so a one-hour booking prices at 3,600,000
	// base units.
	hourlyRate = uint64(3_600_000)
)

// now is an arbitrary reference time in milliseconds.
const now = int64(1_700_000_000_000)

type fixture struct {
	ctx   context.Context
	env   *market.Env
	store *statetest.InMemoryStore

	provider  codec.Address
	requester codec.Address

	labID uint64
}

func addr(b byte) codec.Address {
	return codec.CreateAddress(0x01, ids.ID{b})
}

// newFixture builds a listed lab owned by a staked provider and a
// requester funded and approved for ten hours of usage.
func newFixture(t *testing.T) *fixture {
	require := require.New(t)
	ctx := context.Background()

	f := &fixture{
		ctx:       ctx,
		env:       markettest.NewEnv(nil),
		store:     markettest.NewState(),
		provider:  addr(0x11),
		requester: addr(0x22),
	}

	require.NoError(platform.Roles{}.Grant(ctx, f.store, f.provider, storage.RoleProvider))
	require.NoError(storage.AddStake(ctx, f.store, f.provider, f.env.Rules.StakePerLab))

	labID, err := storage.NextLabID(ctx, f.store)
	require.NoError(err)
	f.labID = labID
	require.NoError(storage.SetLab(ctx, f.store, &storage.Lab{
		ID:           labID,
		URI:          "lab://optics-bench",
		AccessURI:    "wss://access.example/optics",
		PricePerHour: hourlyRate,
		CreatedAt:    now - 30*24*hourMs,
		Listed:       true,
	}))
	require.NoError(storage.SetLabOwner(ctx, f.store, labID, f.provider))
	require.NoError(storage.IncListed(ctx, f.store, f.provider))

	f.fund(t, f.requester, 10*uint64(hourMs))
	return f
}

// fund credits [amount] to [who] and approves escrow for all of it.
func (f *fixture) fund(t *testing.T, who codec.Address, amount uint64) {
	require := require.New(t)
	require.NoError(storage.AddBalance(f.ctx, f.store, who, amount))
	require.NoError(platform.Ledger{}.Approve(f.ctx, f.store, who, market.Escrow, amount))
}

// request admits a one-hour wallet reservation starting [lead] from
// now and returns its key.
func (f *fixture) request(t *testing.T, lead int64) ids.ID {
	require := require.New(t)
	act := &market.RequestReservation{
		LabID: f.labID,
		Start: now + lead,
		End:   now + lead + hourMs,
	}
	out, err := act.Execute(f.ctx, f.env, f.store, now, f.requester, ids.GenerateTestID())
	require.NoError(err)
	return out.(*market.RequestReservationResult).ReservationID
}

// confirm accepts a pending reservation as the provider and asserts it
// was not denied.
func (f *fixture) confirm(t *testing.T, id ids.ID) {
	require := require.New(t)
	act := &market.ConfirmReservation{ReservationID: id}
	out, err := act.Execute(f.ctx, f.env, f.store, now, f.provider, ids.GenerateTestID())
	require.NoError(err)
	require.False(out.(*market.ConfirmReservationResult).Denied)
}

// booked is request+confirm in one step.
func (f *fixture) booked(t *testing.T, lead int64) ids.ID {
	id := f.request(t, lead)
	f.confirm(t, id)
	return id
}

func (f *fixture) reservation(t *testing.T, id ids.ID) *storage.Reservation {
	res, err := storage.GetReservation(f.ctx, f.store, id)
	require.NoError(t, err)
	return res
}

func (f *fixture) balance(t *testing.T, who codec.Address) uint64 {
	bal, err := storage.GetBalance(f.ctx, f.store, who)
	require.NoError(t, err)
	return bal
}

func (f *fixture) calendar(t *testing.T) int {
	intervals, err := storage.GetCalendar(f.ctx, f.store, f.labID)
	require.NoError(t, err)
	return len(intervals)
}
