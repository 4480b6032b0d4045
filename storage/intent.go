// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/consts"
	"github.com/labx-protocol/labmarket/state"
)

// ConsumeIntent marks a pre-authorized request identifier as spent.
// A second consumption of the same identifier fails, which is the
// replay protection for off-chain-authorized institutional calls. The
// action tag, payload hash, and executor are recorded for audit.
func ConsumeIntent(ctx context.Context, mu state.Mutable, requestID ids.ID, tag uint8, payload ids.ID, executor codec.Address) error {
	k := intentKey(requestID)
	_, err := mu.GetValue(ctx, k)
	if err == nil {
		return ErrIntentConsumed
	}
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}
	v := make([]byte, consts.ByteLen+consts.IDLen+codec.AddressLen)
	v[0] = tag
	copy(v[consts.ByteLen:], payload[:])
	copy(v[consts.ByteLen+consts.IDLen:], executor[:])
	return mu.Insert(ctx, k, v)
}
