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
	_ Action      = (*CancelRequest)(nil)
	_ codec.Typed = (*CancelRequestResult)(nil)
)

// CancelRequest withdraws a pending request from the requesting side.
// No fee; no funds have moved yet.
type CancelRequest struct {
	ReservationID ids.ID `json:"reservationID"`
}

func (*CancelRequest) GetTypeID() uint8 {
	return CancelRequestID
}

func (a *CancelRequest) Execute(
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
	ok, err := authorizedRequester(ctx, env, mu, res, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}
	if err := cancelPending(ctx, env, mu, a.ReservationID, res); err != nil {
		return nil, err
	}
	return &CancelRequestResult{}, nil
}

type CancelRequestResult struct{}

func (*CancelRequestResult) GetTypeID() uint8 {
	return CancelRequestID
}
