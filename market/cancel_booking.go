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
	_ Action      = (*CancelBooking)(nil)
	_ codec.Typed = (*CancelBookingResult)(nil)
)

// CancelBooking cancels a confirmed or in-use reservation. The
// escrowed price is torn into a cancellation fee (credited to the
// provider, treasury, and governance buckets) and a refund returned
// through the reservation's flow. An owner-initiated cancellation
// records a reputation event against the lab.
type CancelBooking struct {
	ReservationID ids.ID `json:"reservationID"`
}

func (*CancelBooking) GetTypeID() uint8 {
	return CancelBookingID
}

func (a *CancelBooking) Execute(
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
	if res.Status != storage.Confirmed && res.Status != storage.InUse {
		return nil, ErrNotBooked
	}
	owner, err := ownerOf(ctx, env, mu, res.LabID)
	if err != nil {
		return nil, err
	}
	byOwner, err := authorizedProvider(ctx, env, mu, owner, actor)
	if err != nil {
		return nil, err
	}
	if !byOwner {
		ok, err := authorizedRequester(ctx, env, mu, res, actor)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnauthorized
		}
	}

	c := fees.Cancel(res.Price, env.Rules.CancelFeePct, env.Rules.MinCancelFee)

	// Internal accounting settles before the external refund runs.
	wasEnqueued := res.Enqueued
	res.Status = storage.Cancelled
	res.Enqueued = false
	if err := storage.SetReservation(ctx, mu, a.ReservationID, res); err != nil {
		return nil, err
	}
	if err := storage.RemoveCalendarInterval(ctx, mu, res.LabID, res.Start); err != nil {
		return nil, err
	}
	if err := storage.CreditProviderBucket(ctx, mu, res.LabID, c.ProviderFee, timestamp); err != nil {
		return nil, err
	}
	if err := storage.AddGlobalBucket(ctx, mu, storage.BucketTreasury, c.TreasuryFee); err != nil {
		return nil, err
	}
	if err := storage.AddGlobalBucket(ctx, mu, storage.BucketGovernance, c.GovernanceFee); err != nil {
		return nil, err
	}
	tracking := res.TrackingKey()
	if err := storage.RemoveFromUserIndex(ctx, mu, res.LabID, tracking, a.ReservationID); err != nil {
		return nil, err
	}
	if err := storage.RemoveFromActiveSet(ctx, mu, res.LabID, a.ReservationID); err != nil {
		return nil, err
	}
	if err := storage.ClearEarliest(ctx, mu, res.LabID, tracking, a.ReservationID); err != nil {
		return nil, err
	}
	// The heap entry stays behind; mark it so pops and compaction know
	// to discard it.
	if wasEnqueued {
		if err := storage.MarkPayoutStale(ctx, mu, res.LabID); err != nil {
			return nil, err
		}
	}
	if err := strategyFor(res).Refund(ctx, env, mu, res, c.Refund); err != nil {
		return nil, err
	}
	if byOwner {
		env.Reputation.RecordOwnerCancellation(ctx, mu, res.LabID)
	}
	env.Metrics.recordCancellation()
	env.Metrics.recordFees(c.TotalFee())
	env.log().Debug("booking cancelled",
		zap.Stringer("reservation", a.ReservationID),
		zap.Uint64("lab", res.LabID),
		zap.Bool("byOwner", byOwner),
		zap.Uint64("fee", c.TotalFee()),
		zap.Uint64("refund", c.Refund),
	)
	return &CancelBookingResult{
		Fee:    c.TotalFee(),
		Refund: c.Refund,
	}, nil
}

type CancelBookingResult struct {
	Fee    uint64 `json:"fee"`
	Refund uint64 `json:"refund"`
}

func (*CancelBookingResult) GetTypeID() uint8 {
	return CancelBookingID
}
