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
	_ Action      = (*Complete)(nil)
	_ codec.Typed = (*CompleteResult)(nil)
)

// Complete marks an in-use reservation as finished early. The
// reservation stays payable; collection happens through the payout
// heap or an expiry sweep as usual.
type Complete struct {
	ReservationID ids.ID `json:"reservationID"`
}

func (*Complete) GetTypeID() uint8 {
	return CompleteID
}

func (a *Complete) Execute(
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
	if res.Status != storage.InUse {
		return nil, ErrNotInUse
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
	res.Status = storage.Completed
	if err := storage.SetReservation(ctx, mu, a.ReservationID, res); err != nil {
		return nil, err
	}
	env.Metrics.recordCompletion()
	return &CompleteResult{}, nil
}

type CompleteResult struct{}

func (*CompleteResult) GetTypeID() uint8 {
	return CompleteID
}
