// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/consts"
	"github.com/labx-protocol/labmarket/state"
)

const (
	RoleProvider    uint8 = 1 << 0
	RoleInstitution uint8 = 1 << 1
	RoleAdmin       uint8 = 1 << 2
)

// RoleRecord stores an address's role bits and, for institutions, the
// backend delegate authorized to act on its behalf.
type RoleRecord struct {
	Roles   uint8         `json:"roles"`
	Backend codec.Address `json:"backend"`
}

func GetRole(ctx context.Context, im state.Immutable, addr codec.Address) (*RoleRecord, error) {
	v, err := im.GetValue(ctx, roleKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return &RoleRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(v) != consts.ByteLen+codec.AddressLen {
		return nil, ErrCorruptRecord
	}
	rec := &RoleRecord{Roles: v[0]}
	copy(rec.Backend[:], v[consts.ByteLen:])
	return rec, nil
}

func SetRole(ctx context.Context, mu state.Mutable, addr codec.Address, rec *RoleRecord) error {
	v := make([]byte, consts.ByteLen+codec.AddressLen)
	v[0] = rec.Roles
	copy(v[consts.ByteLen:], rec.Backend[:])
	return mu.Insert(ctx, roleKey(addr), v)
}
