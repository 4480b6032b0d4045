// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package platform provides reference implementations of the market
// collaborators, backed by the same key-value state the engine uses.
// They exist so the engine can run end to end without external
// contracts; deployments with real token or identity systems supply
// their own implementations of the interfaces in [market].
package platform

import (
	"context"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var _ market.FungibleLedger = (*Ledger)(nil)

// Ledger is an ERC-20-shaped value ledger over the balance and
// allowance records.
type Ledger struct{}

func (Ledger) BalanceOf(ctx context.Context, im state.Immutable, addr codec.Address) (uint64, error) {
	return storage.GetBalance(ctx, im, addr)
}

func (Ledger) Allowance(ctx context.Context, im state.Immutable, owner codec.Address, spender codec.Address) (uint64, error) {
	return storage.GetAllowance(ctx, im, owner, spender)
}

// Approve sets [spender]'s allowance over [owner]'s funds.
func (Ledger) Approve(ctx context.Context, mu state.Mutable, owner codec.Address, spender codec.Address, amount uint64) error {
	return storage.SetAllowance(ctx, mu, owner, spender, amount)
}

// Mint credits freshly issued value to [to].
func (Ledger) Mint(ctx context.Context, mu state.Mutable, to codec.Address, amount uint64) error {
	return storage.AddBalance(ctx, mu, to, amount)
}

func (Ledger) TransferFrom(ctx context.Context, mu state.Mutable, spender codec.Address, from codec.Address, to codec.Address, amount uint64) error {
	if err := storage.SubAllowance(ctx, mu, from, spender, amount); err != nil {
		return err
	}
	return Ledger{}.Transfer(ctx, mu, from, to, amount)
}

func (Ledger) Transfer(ctx context.Context, mu state.Mutable, from codec.Address, to codec.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := storage.SubBalance(ctx, mu, from, amount); err != nil {
		return err
	}
	return storage.AddBalance(ctx, mu, to, amount)
}
