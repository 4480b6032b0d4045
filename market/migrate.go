// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

// MigrateOwnership runs inside a lab-token transfer between two
// non-zero owners (mints and burns are excluded by the caller). An
// error rejects the whole transfer; there is no partial migration.
//
// The lab is unlisted (the new owner must re-list explicitly), but if
// the new owner already has listed labs their existing stake is
// re-validated so inheriting a lab cannot paper over a shortfall.
// Pending reservations block the transfer entirely; payable ones are
// re-pointed at the new owner. The new owner's unstake lock extends to
// the later of their own lock, the old owner's lock, and now (when any
// reservation was migrated).
func MigrateOwnership(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	labID uint64,
	from codec.Address,
	to codec.Address,
	now int64,
) error {
	if from == codec.EmptyAddress || to == codec.EmptyAddress {
		return nil
	}
	lab, err := storage.GetLab(ctx, mu, labID)
	if err != nil {
		return err
	}

	active, err := storage.GetActiveSet(ctx, mu, labID)
	if err != nil {
		return err
	}
	if len(active) > env.Rules.MaxMigrationSize {
		return ErrTooManyActiveReservations
	}
	// Validation pass. Every rejection must happen before the first
	// write so a refused transfer leaves no trace in the store.
	//
	// An inherited pending request would land on an owner who never saw
	// it; the transfer is rejected instead.
	payableIDs := make([]ids.ID, 0, len(active))
	payable := make([]*storage.Reservation, 0, len(active))
	for _, id := range active {
		res, err := storage.GetReservation(ctx, mu, id)
		if err != nil {
			return err
		}
		if res.Status == storage.Pending {
			return ErrPendingReservations
		}
		if !res.Status.Payable() {
			continue
		}
		payableIDs = append(payableIDs, id)
		payable = append(payable, res)
	}
	toStake, err := storage.GetStake(ctx, mu, to)
	if err != nil {
		return err
	}
	if toStake.Listed > 0 && toStake.Staked < env.Rules.RequiredStake(toStake.Listed) {
		return ErrInsufficientStake
	}
	fromStake, err := storage.GetStake(ctx, mu, from)
	if err != nil {
		return err
	}

	for i, res := range payable {
		res.Provider = to
		if err := storage.SetReservation(ctx, mu, payableIDs[i], res); err != nil {
			return err
		}
	}
	if lab.Listed {
		lab.Listed = false
		if err := storage.SetLab(ctx, mu, lab); err != nil {
			return err
		}
		if err := storage.DecListed(ctx, mu, from); err != nil {
			return err
		}
	}
	lock := fromStake.LastReservation
	if len(payable) > 0 && now > lock {
		lock = now
	}
	if lock > 0 {
		if err := storage.ExtendUnstakeLock(ctx, mu, to, lock); err != nil {
			return err
		}
	}
	env.Metrics.recordMigration()
	env.log().Info("ownership migrated",
		zap.Uint64("lab", labID),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("reservations", len(payable)),
	)
	return nil
}
