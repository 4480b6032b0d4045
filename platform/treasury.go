// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var _ market.InstitutionTreasury = (*Treasury)(nil)

// Treasury holds prepaid per-payer funds for institutions. Spends move
// value into the escrow wallet balance so downstream payouts and
// refunds flow through the same ledger as wallet reservations.
type Treasury struct{}

func (Treasury) CheckAvailability(ctx context.Context, im state.Immutable, institution codec.Address, payer ids.ID, amount uint64) (bool, error) {
	cur, err := storage.GetTreasuryAccount(ctx, im, institution, payer)
	if err != nil {
		return false, err
	}
	return cur >= amount, nil
}

func (Treasury) Spend(ctx context.Context, mu state.Mutable, institution codec.Address, payer ids.ID, amount uint64) error {
	if err := storage.SubTreasuryAccount(ctx, mu, institution, payer, amount); err != nil {
		return err
	}
	return storage.AddBalance(ctx, mu, market.Escrow, amount)
}

func (Treasury) Refund(ctx context.Context, mu state.Mutable, institution codec.Address, payer ids.ID, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := storage.SubBalance(ctx, mu, market.Escrow, amount); err != nil {
		return err
	}
	return storage.AddTreasuryAccount(ctx, mu, institution, payer, amount)
}

// Deposit moves wallet funds from the institution into one of its
// payer accounts.
func (Treasury) Deposit(ctx context.Context, mu state.Mutable, institution codec.Address, payer ids.ID, amount uint64) error {
	if err := storage.SubBalance(ctx, mu, institution, amount); err != nil {
		return err
	}
	return storage.AddTreasuryAccount(ctx, mu, institution, payer, amount)
}
