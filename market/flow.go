// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"

	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

// flowStrategy is the per-flow behavior plugged into the single
// reservation state machine: how funds are checked, debited into
// escrow, and refunded. Everything else is shared between the wallet
// and institutional flows.
type flowStrategy interface {
	// CheckFunds verifies up-front sufficiency without moving value.
	CheckFunds(ctx context.Context, env *Env, im state.Immutable, res *storage.Reservation) error
	// Debit moves the reservation price into escrow at confirmation.
	// An error is a counterparty failure, not a hard failure: callers
	// auto-cancel instead of propagating it.
	Debit(ctx context.Context, env *Env, mu state.Mutable, res *storage.Reservation) error
	// Refund returns [amount] of the escrowed price to the payer.
	Refund(ctx context.Context, env *Env, mu state.Mutable, res *storage.Reservation, amount uint64) error
}

func strategyFor(res *storage.Reservation) flowStrategy {
	if res.Flow == storage.InstitutionalFlow {
		return institutionalStrategy{}
	}
	return walletStrategy{}
}

type walletStrategy struct{}

func (walletStrategy) CheckFunds(ctx context.Context, env *Env, im state.Immutable, res *storage.Reservation) error {
	bal, err := env.Ledger.BalanceOf(ctx, im, res.Requester)
	if err != nil {
		return err
	}
	allowance, err := env.Ledger.Allowance(ctx, im, res.Requester, Escrow)
	if err != nil {
		return err
	}
	if bal < res.Price || allowance < res.Price {
		return ErrInsufficientFunds
	}
	return nil
}

func (walletStrategy) Debit(ctx context.Context, env *Env, mu state.Mutable, res *storage.Reservation) error {
	return env.Ledger.TransferFrom(ctx, mu, Escrow, res.Requester, Escrow, res.Price)
}

func (walletStrategy) Refund(ctx context.Context, env *Env, mu state.Mutable, res *storage.Reservation, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return env.Ledger.Transfer(ctx, mu, Escrow, res.Requester, amount)
}

type institutionalStrategy struct{}

func (institutionalStrategy) CheckFunds(ctx context.Context, env *Env, im state.Immutable, res *storage.Reservation) error {
	ok, err := env.Treasury.CheckAvailability(ctx, im, res.Collector, res.Payer, res.Price)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTreasuryShortfall
	}
	return nil
}

func (institutionalStrategy) Debit(ctx context.Context, env *Env, mu state.Mutable, res *storage.Reservation) error {
	return env.Treasury.Spend(ctx, mu, res.Collector, res.Payer, res.Price)
}

func (institutionalStrategy) Refund(ctx context.Context, env *Env, mu state.Mutable, res *storage.Reservation, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return env.Treasury.Refund(ctx, mu, res.Collector, res.Payer, amount)
}
