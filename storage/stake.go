// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/consts"
	"github.com/labx-protocol/labmarket/state"
)

// StakeRecord tracks a provider's collateral, the number of labs they
// currently keep listed, and the timestamp of their most recent
// reservation activity (which drives the unstake cool-down).
type StakeRecord struct {
	Staked          uint64 `json:"staked"`
	Listed          uint64 `json:"listed"`
	LastReservation int64  `json:"lastReservation"`
}

const stakeRecordLen = 2*consts.Uint64Len + consts.Int64Len

func GetStake(ctx context.Context, im state.Immutable, provider codec.Address) (*StakeRecord, error) {
	v, err := im.GetValue(ctx, stakeKey(provider))
	if errors.Is(err, database.ErrNotFound) {
		return &StakeRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(v) != stakeRecordLen {
		return nil, ErrCorruptRecord
	}
	return &StakeRecord{
		Staked:          binary.BigEndian.Uint64(v),
		Listed:          binary.BigEndian.Uint64(v[consts.Uint64Len:]),
		LastReservation: int64(binary.BigEndian.Uint64(v[2*consts.Uint64Len:])),
	}, nil
}

func SetStake(ctx context.Context, mu state.Mutable, provider codec.Address, rec *StakeRecord) error {
	if rec.Staked == 0 && rec.Listed == 0 && rec.LastReservation == 0 {
		return mu.Remove(ctx, stakeKey(provider))
	}
	v := make([]byte, stakeRecordLen)
	binary.BigEndian.PutUint64(v, rec.Staked)
	binary.BigEndian.PutUint64(v[consts.Uint64Len:], rec.Listed)
	binary.BigEndian.PutUint64(v[2*consts.Uint64Len:], uint64(rec.LastReservation))
	return mu.Insert(ctx, stakeKey(provider), v)
}

func AddStake(ctx context.Context, mu state.Mutable, provider codec.Address, amount uint64) error {
	rec, err := GetStake(ctx, mu, provider)
	if err != nil {
		return err
	}
	rec.Staked, err = smath.Add64(rec.Staked, amount)
	if err != nil {
		return err
	}
	return SetStake(ctx, mu, provider, rec)
}

func SubStake(ctx context.Context, mu state.Mutable, provider codec.Address, amount uint64) error {
	rec, err := GetStake(ctx, mu, provider)
	if err != nil {
		return err
	}
	rec.Staked, err = smath.Sub(rec.Staked, amount)
	if err != nil {
		return ErrInvalidStake
	}
	return SetStake(ctx, mu, provider, rec)
}

// IncListed bumps the provider's listed-lab count.
func IncListed(ctx context.Context, mu state.Mutable, provider codec.Address) error {
	rec, err := GetStake(ctx, mu, provider)
	if err != nil {
		return err
	}
	rec.Listed++
	return SetStake(ctx, mu, provider, rec)
}

// DecListed decrements the listed-lab count, floored at zero.
func DecListed(ctx context.Context, mu state.Mutable, provider codec.Address) error {
	rec, err := GetStake(ctx, mu, provider)
	if err != nil {
		return err
	}
	if rec.Listed > 0 {
		rec.Listed--
	}
	return SetStake(ctx, mu, provider, rec)
}

// ExtendUnstakeLock moves the provider's last-reservation timestamp
// forward to [to], never backward.
func ExtendUnstakeLock(ctx context.Context, mu state.Mutable, provider codec.Address, to int64) error {
	rec, err := GetStake(ctx, mu, provider)
	if err != nil {
		return err
	}
	if rec.LastReservation >= to {
		return nil
	}
	rec.LastReservation = to
	return SetStake(ctx, mu, provider, rec)
}
