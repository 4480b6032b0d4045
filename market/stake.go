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
	_ Action      = (*Stake)(nil)
	_ Action      = (*Unstake)(nil)
	_ codec.Typed = (*StakeResult)(nil)
)

// Stake moves collateral from the caller's wallet into escrow and
// credits their stake record.
type Stake struct {
	Amount uint64 `json:"amount"`
}

func (*Stake) GetTypeID() uint8 {
	return StakeID
}

func (a *Stake) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if a.Amount == 0 {
		return nil, ErrValueZero
	}
	isProvider, err := env.Roles.HasRole(ctx, mu, actor, storage.RoleProvider)
	if err != nil {
		return nil, err
	}
	if !isProvider {
		return nil, ErrNotProvider
	}
	// Stake record first, external transfer last.
	if err := storage.AddStake(ctx, mu, actor, a.Amount); err != nil {
		return nil, err
	}
	if err := env.Ledger.TransferFrom(ctx, mu, Escrow, actor, Escrow, a.Amount); err != nil {
		return nil, err
	}
	rec, err := storage.GetStake(ctx, mu, actor)
	if err != nil {
		return nil, err
	}
	return &StakeResult{Staked: rec.Staked}, nil
}

// Unstake returns collateral to the caller if the cool-down since
// their last reservation has elapsed and the remainder still covers
// their listed labs.
type Unstake struct {
	Amount uint64 `json:"amount"`
}

func (*Unstake) GetTypeID() uint8 {
	return UnstakeID
}

func (a *Unstake) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if a.Amount == 0 {
		return nil, ErrValueZero
	}
	rec, err := storage.GetStake(ctx, mu, actor)
	if err != nil {
		return nil, err
	}
	if rec.LastReservation > 0 && timestamp < rec.LastReservation+env.Rules.UnstakeCooldown {
		return nil, ErrUnstakeLocked
	}
	if rec.Staked < a.Amount {
		return nil, storage.ErrInvalidStake
	}
	if rec.Staked-a.Amount < env.Rules.RequiredStake(rec.Listed) {
		return nil, ErrInsufficientStake
	}
	if err := storage.SubStake(ctx, mu, actor, a.Amount); err != nil {
		return nil, err
	}
	if err := env.Ledger.Transfer(ctx, mu, Escrow, actor, a.Amount); err != nil {
		return nil, err
	}
	return &StakeResult{Staked: rec.Staked - a.Amount}, nil
}

type StakeResult struct {
	Staked uint64 `json:"staked"`
}

func (*StakeResult) GetTypeID() uint8 {
	return StakeID
}
