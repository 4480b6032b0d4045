// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"context"
	"errors"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var (
	ErrNotOwner     = errors.New("transfer sender does not own the lab")
	ErrZeroReceiver = errors.New("transfer to the zero address")

	_ market.AssetRegistry = (*AssetRegistry)(nil)
)

// AssetRegistry is the lab ownership token. Transfers between two
// non-zero owners run the market's ownership migration inside the same
// mutation, so a migration failure rejects the transfer.
type AssetRegistry struct {
	// Env is the market environment used by the migration hook. The
	// registry itself is one of Env's collaborators; wiring closes the
	// loop after both exist.
	Env *market.Env
}

func (*AssetRegistry) OwnerOf(ctx context.Context, im state.Immutable, labID uint64) (codec.Address, error) {
	return storage.GetLabOwner(ctx, im, labID)
}

func (*AssetRegistry) Mint(ctx context.Context, mu state.Mutable, labID uint64, to codec.Address) error {
	if to == codec.EmptyAddress {
		return ErrZeroReceiver
	}
	return storage.SetLabOwner(ctx, mu, labID, to)
}

// Transfer moves lab ownership from [from] to [to], running the
// ownership migration first. Any migration error aborts before the
// owner record changes.
func (r *AssetRegistry) Transfer(ctx context.Context, mu state.Mutable, labID uint64, from codec.Address, to codec.Address, now int64) error {
	owner, err := storage.GetLabOwner(ctx, mu, labID)
	if err != nil {
		return err
	}
	if owner == codec.EmptyAddress || owner != from {
		return ErrNotOwner
	}
	if to == codec.EmptyAddress {
		return ErrZeroReceiver
	}
	if err := market.MigrateOwnership(ctx, r.Env, mu, labID, from, to, now); err != nil {
		return err
	}
	return storage.SetLabOwner(ctx, mu, labID, to)
}
