// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/fees"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var (
	_ Action      = (*ConfirmReservation)(nil)
	_ codec.Typed = (*ConfirmReservationResult)(nil)
)

// Denial reasons carried in [ConfirmReservationResult].
const (
	DenialGate     = "gate"
	DenialExpired  = "window"
	DenialSlot     = "slot"
	DenialTransfer = "transfer"
)

// ConfirmReservation is the owner-side acceptance of a pending
// request. Conditions that would strand the requester in a stuck
// pending state (a gate the owner now fails, an elapsed request
// window, a counterparty fund-movement failure) auto-cancel the
// reservation and report a denial instead of failing the call, so one
// uncooperative party cannot block the confirming transaction.
type ConfirmReservation struct {
	ReservationID ids.ID `json:"reservationID"`
}

func (*ConfirmReservation) GetTypeID() uint8 {
	return ConfirmReservationID
}

func (a *ConfirmReservation) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	res, err := storage.GetReservation(ctx, mu, a.ReservationID)
	if err != nil {
		return nil, err
	}
	if res.Status != storage.Pending {
		return nil, ErrNotPending
	}
	// Ownership may have changed since the request; authorization and
	// the gate run against the current owner.
	owner, err := ownerOf(ctx, env, mu, res.LabID)
	if err != nil {
		return nil, err
	}
	ok, err := authorizedProvider(ctx, env, mu, owner, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	if timestamp > res.RequestedAt+res.Window {
		return a.deny(ctx, env, mu, res, DenialExpired)
	}
	lab, err := storage.GetLab(ctx, mu, res.LabID)
	if err != nil {
		return nil, err
	}
	if err := canFulfill(ctx, env, mu, lab, owner); err != nil {
		return a.deny(ctx, env, mu, res, DenialGate)
	}

	// Internal state reaches a safe, consistent shape before the
	// external debit runs: a reentrant call observes a confirmed
	// reservation holding its calendar interval, not a half-built one.
	// A different pending reservation overlapping this range may have
	// been confirmed first; the interval insert is the authoritative
	// check.
	if err := storage.InsertCalendarInterval(ctx, mu, res.LabID, res.Start, res.End); err != nil {
		return a.deny(ctx, env, mu, res, DenialSlot)
	}
	res.Provider = owner
	res.Shares = fees.Split(
		res.Price,
		env.Rules.ProviderSharePct,
		env.Rules.SubsidiesSharePct,
		env.Rules.GovernanceSharePct,
	)
	res.Status = storage.Confirmed
	if err := storage.SetReservation(ctx, mu, a.ReservationID, res); err != nil {
		return nil, err
	}

	if err := strategyFor(res).Debit(ctx, env, mu, res); err != nil {
		// Counterparty failure: roll the reservation into Cancelled and
		// report a denial. The calendar interval and indexes are torn
		// down so the slot is immediately reusable.
		res.Status = storage.Cancelled
		res.Shares = fees.Shares{}
		if serr := storage.SetReservation(ctx, mu, a.ReservationID, res); serr != nil {
			return nil, serr
		}
		if serr := storage.RemoveCalendarInterval(ctx, mu, res.LabID, res.Start); serr != nil {
			return nil, serr
		}
		if serr := storage.RemoveFromUserIndex(ctx, mu, res.LabID, res.TrackingKey(), a.ReservationID); serr != nil {
			return nil, serr
		}
		if serr := storage.RemoveFromActiveSet(ctx, mu, res.LabID, a.ReservationID); serr != nil {
			return nil, serr
		}
		env.Metrics.recordDenial()
		env.log().Info("confirmation denied on transfer failure",
			zap.Stringer("reservation", a.ReservationID),
			zap.Error(err),
		)
		return &ConfirmReservationResult{Denied: true, Reason: DenialTransfer}, nil
	}

	res.Enqueued = true
	if err := storage.SetReservation(ctx, mu, a.ReservationID, res); err != nil {
		return nil, err
	}
	if err := storage.EnqueuePayout(ctx, mu, res.LabID, a.ReservationID, res.End); err != nil {
		return nil, err
	}
	if err := storage.ExtendUnstakeLock(ctx, mu, owner, timestamp); err != nil {
		return nil, err
	}
	if err := storage.UpdateEarliest(ctx, mu, res.LabID, res.TrackingKey(), a.ReservationID, res.Start); err != nil {
		return nil, err
	}
	env.Metrics.recordConfirmation()
	env.log().Debug("reservation confirmed",
		zap.Stringer("reservation", a.ReservationID),
		zap.Uint64("lab", res.LabID),
		zap.Stringer("provider", owner),
	)
	return &ConfirmReservationResult{}, nil
}

// deny is the soft-failure path: the pending reservation is cancelled
// without a fee and the call itself succeeds.
func (a *ConfirmReservation) deny(ctx context.Context, env *Env, mu state.Mutable, res *storage.Reservation, reason string) (codec.Typed, error) {
	if err := cancelPending(ctx, env, mu, a.ReservationID, res); err != nil {
		return nil, err
	}
	env.Metrics.recordDenial()
	env.log().Info("confirmation denied",
		zap.Stringer("reservation", a.ReservationID),
		zap.String("reason", reason),
	)
	return &ConfirmReservationResult{Denied: true, Reason: reason}, nil
}

// ConfirmReservationResult reports either a successful confirmation or
// a soft denial (the reservation was auto-cancelled).
type ConfirmReservationResult struct {
	Denied bool   `json:"denied"`
	Reason string `json:"reason,omitempty"`
}

func (*ConfirmReservationResult) GetTypeID() uint8 {
	return ConfirmReservationID
}
