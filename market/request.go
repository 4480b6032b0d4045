// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"go.uber.org/zap"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/consts"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var (
	_ Action      = (*RequestReservation)(nil)
	_ codec.Typed = (*RequestReservationResult)(nil)
)

// RequestReservation admits a pending booking for a lab slot. No funds
// move here; sufficiency is checked up front and the debit happens at
// confirmation.
type RequestReservation struct {
	LabID uint64           `json:"labID"`
	Start int64            `json:"start"`
	End   int64            `json:"end"`
	Flow  storage.FlowKind `json:"flow"`

	// Institutional flow only. The institution is the collector account
	// that will be debited; the payer identifies its end user; the
	// request id references the pre-authorized intent being consumed.
	Institution codec.Address `json:"institution"`
	Payer       ids.ID        `json:"payer"`
	RequestID   ids.ID        `json:"requestID"`
}

func (*RequestReservation) GetTypeID() uint8 {
	return RequestReservationID
}

// intentPayload binds an institutional intent to the exact slot and
// payer it authorizes.
func (a *RequestReservation) intentPayload() ids.ID {
	b := make([]byte, consts.Uint64Len+2*consts.Int64Len+consts.IDLen)
	binary.BigEndian.PutUint64(b, a.LabID)
	binary.BigEndian.PutUint64(b[consts.Uint64Len:], uint64(a.Start))
	binary.BigEndian.PutUint64(b[consts.Uint64Len+consts.Int64Len:], uint64(a.End))
	copy(b[consts.Uint64Len+2*consts.Int64Len:], a.Payer[:])
	return hashing.ComputeHash256Array(b)
}

func (a *RequestReservation) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if a.Start >= a.End {
		return nil, ErrInvalidTimeRange
	}
	if a.Start < timestamp+env.Rules.ReservationMargin {
		return nil, ErrStartTooSoon
	}
	lab, err := storage.GetLab(ctx, mu, a.LabID)
	if err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, env, mu, a.LabID)
	if err != nil {
		return nil, err
	}
	if err := canFulfill(ctx, env, mu, lab, owner); err != nil {
		return nil, err
	}
	price, err := storage.LabPrice(lab, a.Start, a.End)
	if err != nil {
		return nil, err
	}
	if price > env.Rules.MaxPrice {
		return nil, ErrPriceTooLarge
	}

	res := &storage.Reservation{
		LabID:       a.LabID,
		Requester:   actor,
		Price:       price,
		Start:       a.Start,
		End:         a.End,
		Status:      storage.Pending,
		RequestedAt: timestamp,
		Window:      env.Rules.RequestWindow,
		Flow:        a.Flow,
	}
	if a.Flow == storage.InstitutionalFlow {
		isInstitution, err := env.Roles.HasRole(ctx, mu, a.Institution, storage.RoleInstitution)
		if err != nil {
			return nil, err
		}
		if !isInstitution {
			return nil, ErrNotInstitution
		}
		res.Requester = a.Institution
		res.Collector = a.Institution
		res.Payer = a.Payer
		if actor != a.Institution {
			ok, err := authorizedRequester(ctx, env, mu, res, actor)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrUnauthorized
			}
		}
		// Replay protection for the off-chain authorization backing
		// this request.
		if err := env.Intents.Consume(ctx, mu, a.RequestID, RequestReservationID, a.intentPayload(), actor); err != nil {
			return nil, err
		}
	}

	// Within headroom of the cap, sweep before counting so lapsed
	// entries make room instead of blocking the request.
	tracking := res.TrackingKey()
	list, err := storage.GetUserIndex(ctx, mu, a.LabID, tracking)
	if err != nil {
		return nil, err
	}
	if len(list) >= env.Rules.MaxUserReservations-env.Rules.ReleaseHeadroom {
		if _, err := sweepUser(ctx, env, mu, a.LabID, tracking, timestamp, env.Rules.SweepBatchOnRequest); err != nil {
			return nil, err
		}
		if list, err = storage.GetUserIndex(ctx, mu, a.LabID, tracking); err != nil {
			return nil, err
		}
	}
	if len(list) >= env.Rules.MaxUserReservations {
		return nil, ErrUserCapReached
	}

	// The key is derived from (labID, start), so a live reservation for
	// the same slot collides here before any calendar check. A stale
	// pending occupant is cancelled and the slot reused.
	id := storage.ReservationID(a.LabID, a.Start)
	existing, err := storage.GetReservation(ctx, mu, id)
	if err != nil && !errors.Is(err, storage.ErrReservationMissing) {
		return nil, err
	}
	if err == nil && !existing.Status.Terminal() {
		if existing.Status != storage.Pending || timestamp <= existing.RequestedAt+existing.Window {
			return nil, ErrSlotTaken
		}
		if err := cancelPending(ctx, env, mu, id, existing); err != nil {
			return nil, err
		}
	}

	if err := strategyFor(res).CheckFunds(ctx, env, mu, res); err != nil {
		return nil, err
	}

	if err := storage.SetReservation(ctx, mu, id, res); err != nil {
		return nil, err
	}
	if err := storage.AddToUserIndex(ctx, mu, a.LabID, tracking, id); err != nil {
		return nil, err
	}
	if err := storage.AddToActiveSet(ctx, mu, a.LabID, id); err != nil {
		return nil, err
	}
	env.Metrics.recordRequest()
	env.log().Debug("reservation requested",
		zap.Stringer("reservation", id),
		zap.Uint64("lab", a.LabID),
		zap.Int64("start", a.Start),
		zap.Int64("end", a.End),
		zap.Uint64("price", price),
	)
	return &RequestReservationResult{ReservationID: id, Price: price}, nil
}

type RequestReservationResult struct {
	ReservationID ids.ID `json:"reservationID"`
	Price         uint64 `json:"price"`
}

func (*RequestReservationResult) GetTypeID() uint8 {
	return RequestReservationID
}
