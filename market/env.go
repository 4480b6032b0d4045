// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/genesis"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

// Escrow is the system account that holds reservation funds between
// confirmation and finalization or cancellation, plus provider stake
// collateral.
var Escrow = codec.CreateAddress(0xee, ids.Empty)

// Env carries the protocol rules and the external collaborators into
// every action. There are no singletons; each entry point receives
// explicit access to everything it touches.
type Env struct {
	Rules      *genesis.Rules
	Assets     AssetRegistry
	Ledger     FungibleLedger
	Treasury   InstitutionTreasury
	Roles      RoleRegistry
	Intents    IntentRegistry
	Reputation ReputationTracker

	Log     logging.Logger
	Metrics *Metrics
}

func (e *Env) log() logging.Logger {
	if e.Log == nil {
		return logging.NoLog{}
	}
	return e.Log
}

// Action is a single state-mutating marketplace operation. Execute
// either applies completely or returns an error having changed
// nothing the caller can observe.
type Action interface {
	codec.Typed

	Execute(
		ctx context.Context,
		env *Env,
		mu state.Mutable,
		timestamp int64,
		actor codec.Address,
		actionID ids.ID,
	) (codec.Typed, error)
}

// ownerOf resolves the current lab owner, failing on unknown labs.
func ownerOf(ctx context.Context, env *Env, im state.Immutable, labID uint64) (codec.Address, error) {
	owner, err := env.Assets.OwnerOf(ctx, im, labID)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if owner == codec.EmptyAddress {
		return codec.EmptyAddress, storage.ErrLabMissing
	}
	return owner, nil
}

// authorizedProvider reports whether [actor] is the lab's current
// owner or the backend delegate the owner registered.
func authorizedProvider(ctx context.Context, env *Env, im state.Immutable, owner codec.Address, actor codec.Address) (bool, error) {
	if actor == owner {
		return true, nil
	}
	backend, err := env.Roles.Backend(ctx, im, owner)
	if err != nil {
		return false, err
	}
	return backend != codec.EmptyAddress && actor == backend, nil
}

// authorizedRequester reports whether [actor] may act for the
// requesting side of [res]: the wallet requester itself, or for
// institutional reservations the institution or its backend.
func authorizedRequester(ctx context.Context, env *Env, im state.Immutable, res *storage.Reservation, actor codec.Address) (bool, error) {
	if actor == res.Requester {
		return true, nil
	}
	if res.Flow != storage.InstitutionalFlow {
		return false, nil
	}
	backend, err := env.Roles.Backend(ctx, im, res.Collector)
	if err != nil {
		return false, err
	}
	return backend != codec.EmptyAddress && actor == backend, nil
}
