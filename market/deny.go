// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var (
	_ Action      = (*DenyReservation)(nil)
	_ codec.Typed = (*DenyReservationResult)(nil)
)

// DenyReservation is the owner-side rejection of a pending request.
// No fee; no funds have moved yet.
type DenyReservation struct {
	ReservationID ids.ID `json:"reservationID"`
}

func (*DenyReservation) GetTypeID() uint8 {
	return DenyReservationID
}

func (a *DenyReservation) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	_ int64,
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
	if err := cancelPending(ctx, env, mu, a.ReservationID, res); err != nil {
		return nil, err
	}
	env.Metrics.recordDenial()
	return &DenyReservationResult{}, nil
}

type DenyReservationResult struct{}

func (*DenyReservationResult) GetTypeID() uint8 {
	return DenyReservationID
}
