// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

// canFulfill is the admission gate: the lab must be listed and its
// owner's stake must cover their current listed-lab count. A later
// stake shortfall never invalidates existing confirmed reservations;
// this gate only blocks new admission and confirmation.
func canFulfill(ctx context.Context, env *Env, im state.Immutable, lab *storage.Lab, provider codec.Address) error {
	if !lab.Listed {
		return ErrLabNotListed
	}
	rec, err := storage.GetStake(ctx, im, provider)
	if err != nil {
		return err
	}
	if rec.Staked < env.Rules.RequiredStake(rec.Listed) {
		return ErrInsufficientStake
	}
	return nil
}

// canList checks the gate against the prospective listed count before
// a listing increments it.
func canList(ctx context.Context, env *Env, im state.Immutable, provider codec.Address) error {
	rec, err := storage.GetStake(ctx, im, provider)
	if err != nil {
		return err
	}
	if rec.Staked < env.Rules.RequiredStake(rec.Listed+1) {
		return ErrInsufficientStake
	}
	return nil
}
