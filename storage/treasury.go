// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/state"
)

// Treasury accounts back the platform institutional treasury: prepaid
// funds an institution holds on behalf of one of its end users.

func GetTreasuryAccount(ctx context.Context, im state.Immutable, institution codec.Address, payer ids.ID) (uint64, error) {
	v, err := im.GetValue(ctx, treasuryAccountKey(institution, payer))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func SetTreasuryAccount(ctx context.Context, mu state.Mutable, institution codec.Address, payer ids.ID, amount uint64) error {
	if amount == 0 {
		return mu.Remove(ctx, treasuryAccountKey(institution, payer))
	}
	return mu.Insert(ctx, treasuryAccountKey(institution, payer), binary.BigEndian.AppendUint64(nil, amount))
}

func AddTreasuryAccount(ctx context.Context, mu state.Mutable, institution codec.Address, payer ids.ID, amount uint64) error {
	cur, err := GetTreasuryAccount(ctx, mu, institution, payer)
	if err != nil {
		return err
	}
	ncur, err := smath.Add64(cur, amount)
	if err != nil {
		return err
	}
	return SetTreasuryAccount(ctx, mu, institution, payer, ncur)
}

func SubTreasuryAccount(ctx context.Context, mu state.Mutable, institution codec.Address, payer ids.ID, amount uint64) error {
	cur, err := GetTreasuryAccount(ctx, mu, institution, payer)
	if err != nil {
		return err
	}
	ncur, err := smath.Sub(cur, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: could not debit treasury account (available=%d, institution=%v, amount=%d)",
			ErrInvalidBalance, cur, institution, amount,
		)
	}
	return SetTreasuryAccount(ctx, mu, institution, payer, ncur)
}
