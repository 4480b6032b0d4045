// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/state"
)

// The engine treats identity, token custody, and reputation as
// external collaborators: it depends only on the interfaces below.
// Reference implementations backed by the same state live in
// [platform].

// AssetRegistry resolves lab ownership. Transfers happen outside the
// engine; the registry is expected to invoke [MigrateOwnership] while
// executing one.
type AssetRegistry interface {
	// OwnerOf returns codec.EmptyAddress for unknown labs.
	OwnerOf(ctx context.Context, im state.Immutable, labID uint64) (codec.Address, error)
	Mint(ctx context.Context, mu state.Mutable, labID uint64, to codec.Address) error
}

// FungibleLedger is the ERC-20-shaped value ledger used for
// wallet-side escrow. TransferFrom and Transfer fail with an error on
// insufficient funds or allowance.
type FungibleLedger interface {
	BalanceOf(ctx context.Context, im state.Immutable, addr codec.Address) (uint64, error)
	Allowance(ctx context.Context, im state.Immutable, owner codec.Address, spender codec.Address) (uint64, error)
	TransferFrom(ctx context.Context, mu state.Mutable, spender codec.Address, from codec.Address, to codec.Address, amount uint64) error
	Transfer(ctx context.Context, mu state.Mutable, from codec.Address, to codec.Address, amount uint64) error
}

// InstitutionTreasury holds prepaid funds an institution spends on
// behalf of its end users (identified by an opaque payer id).
type InstitutionTreasury interface {
	CheckAvailability(ctx context.Context, im state.Immutable, institution codec.Address, payer ids.ID, amount uint64) (bool, error)
	Spend(ctx context.Context, mu state.Mutable, institution codec.Address, payer ids.ID, amount uint64) error
	Refund(ctx context.Context, mu state.Mutable, institution codec.Address, payer ids.ID, amount uint64) error
}

// RoleRegistry answers membership tests and resolves the backend
// delegate an institution authorized to act for it.
type RoleRegistry interface {
	HasRole(ctx context.Context, im state.Immutable, addr codec.Address, role uint8) (bool, error)
	Backend(ctx context.Context, im state.Immutable, institution codec.Address) (codec.Address, error)
}

// IntentRegistry consumes replay-protected pre-authorizations for
// off-chain-authorized institutional calls.
type IntentRegistry interface {
	Consume(ctx context.Context, mu state.Mutable, requestID ids.ID, tag uint8, payload ids.ID, executor codec.Address) error
}

// ReputationTracker receives fire-and-forget score updates. The
// engine never depends on a return value, so failures are swallowed
// by implementations.
type ReputationTracker interface {
	RecordCompletion(ctx context.Context, mu state.Mutable, labID uint64)
	RecordOwnerCancellation(ctx context.Context, mu state.Mutable, labID uint64)
}
