// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/state"
)

// Wallet-ledger reference records backing the platform fungible
// ledger: plain balances plus (owner, spender) allowances.

func GetBalance(ctx context.Context, im state.Immutable, addr codec.Address) (uint64, error) {
	v, err := im.GetValue(ctx, balanceKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func SetBalance(ctx context.Context, mu state.Mutable, addr codec.Address, balance uint64) error {
	return mu.Insert(ctx, balanceKey(addr), binary.BigEndian.AppendUint64(nil, balance))
}

func AddBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) error {
	bal, err := GetBalance(ctx, mu, addr)
	if err != nil {
		return err
	}
	nbal, err := smath.Add64(bal, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: could not add balance (bal=%d, addr=%v, amount=%d)",
			ErrInvalidBalance, bal, addr, amount,
		)
	}
	return SetBalance(ctx, mu, addr, nbal)
}

func SubBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) error {
	bal, err := GetBalance(ctx, mu, addr)
	if err != nil {
		return err
	}
	nbal, err := smath.Sub(bal, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: could not subtract balance (bal=%d, addr=%v, amount=%d)",
			ErrInvalidBalance, bal, addr, amount,
		)
	}
	if nbal == 0 {
		// If there is no balance left, we should delete the record
		// instead of setting it to 0.
		return mu.Remove(ctx, balanceKey(addr))
	}
	return SetBalance(ctx, mu, addr, nbal)
}

func GetAllowance(ctx context.Context, im state.Immutable, owner codec.Address, spender codec.Address) (uint64, error) {
	v, err := im.GetValue(ctx, allowanceKey(owner, spender))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func SetAllowance(ctx context.Context, mu state.Mutable, owner codec.Address, spender codec.Address, amount uint64) error {
	if amount == 0 {
		return mu.Remove(ctx, allowanceKey(owner, spender))
	}
	return mu.Insert(ctx, allowanceKey(owner, spender), binary.BigEndian.AppendUint64(nil, amount))
}

func SubAllowance(ctx context.Context, mu state.Mutable, owner codec.Address, spender codec.Address, amount uint64) error {
	cur, err := GetAllowance(ctx, mu, owner, spender)
	if err != nil {
		return err
	}
	ncur, err := smath.Sub(cur, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: could not subtract allowance (allowance=%d, owner=%v, spender=%v, amount=%d)",
			ErrInvalidAllowance, cur, owner, spender, amount,
		)
	}
	return SetAllowance(ctx, mu, owner, spender, ncur)
}
