// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"context"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var _ market.RoleRegistry = (*Roles)(nil)

// Roles is the identity registry over role-bit records.
type Roles struct{}

func (Roles) HasRole(ctx context.Context, im state.Immutable, addr codec.Address, role uint8) (bool, error) {
	rec, err := storage.GetRole(ctx, im, addr)
	if err != nil {
		return false, err
	}
	return rec.Roles&role != 0, nil
}

func (Roles) Backend(ctx context.Context, im state.Immutable, institution codec.Address) (codec.Address, error) {
	rec, err := storage.GetRole(ctx, im, institution)
	if err != nil {
		return codec.EmptyAddress, err
	}
	return rec.Backend, nil
}

// Grant adds [role] to [addr]'s role bits, preserving any existing
// backend binding.
func (Roles) Grant(ctx context.Context, mu state.Mutable, addr codec.Address, role uint8) error {
	rec, err := storage.GetRole(ctx, mu, addr)
	if err != nil {
		return err
	}
	rec.Roles |= role
	return storage.SetRole(ctx, mu, addr, rec)
}

// SetBackend binds the delegate allowed to act for [addr].
func (Roles) SetBackend(ctx context.Context, mu state.Mutable, addr codec.Address, backend codec.Address) error {
	rec, err := storage.GetRole(ctx, mu, addr)
	if err != nil {
		return err
	}
	rec.Backend = backend
	return storage.SetRole(ctx, mu, addr, rec)
}
