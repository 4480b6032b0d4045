// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"

	"github.com/labx-protocol/labmarket/consts"
	"github.com/labx-protocol/labmarket/state"
)

// ReputationRecord counts completed reservations and owner-initiated
// cancellations per lab.
type ReputationRecord struct {
	Completions        uint64 `json:"completions"`
	OwnerCancellations uint64 `json:"ownerCancellations"`
}

func GetReputation(ctx context.Context, im state.Immutable, labID uint64) (*ReputationRecord, error) {
	v, err := im.GetValue(ctx, reputationKey(labID))
	if errors.Is(err, database.ErrNotFound) {
		return &ReputationRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(v) != 2*consts.Uint64Len {
		return nil, ErrCorruptRecord
	}
	return &ReputationRecord{
		Completions:        binary.BigEndian.Uint64(v),
		OwnerCancellations: binary.BigEndian.Uint64(v[consts.Uint64Len:]),
	}, nil
}

func SetReputation(ctx context.Context, mu state.Mutable, labID uint64, rec *ReputationRecord) error {
	v := make([]byte, 2*consts.Uint64Len)
	binary.BigEndian.PutUint64(v, rec.Completions)
	binary.BigEndian.PutUint64(v[consts.Uint64Len:], rec.OwnerCancellations)
	return mu.Insert(ctx, reputationKey(labID), v)
}
