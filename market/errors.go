// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import "errors"

var (
	// Admission errors.
	ErrInvalidTimeRange  = errors.New("start must be before end")
	ErrStartTooSoon      = errors.New("start is within the reservation margin")
	ErrLabNotListed      = errors.New("lab is not listed")
	ErrInsufficientStake = errors.New("provider stake below required amount")
	ErrSlotTaken         = errors.New("slot already has an active reservation")
	ErrUserCapReached    = errors.New("per-user reservation cap reached")
	ErrInsufficientFunds = errors.New("insufficient balance or allowance")
	ErrTreasuryShortfall = errors.New("treasury account cannot cover the price")
	ErrPriceTooLarge     = errors.New("price exceeds maximum")
	ErrValueZero         = errors.New("value is zero")

	// Authorization errors.
	ErrUnauthorized   = errors.New("actor is not authorized")
	ErrNotProvider    = errors.New("actor is not a registered provider")
	ErrNotInstitution = errors.New("address is not a registered institution")

	// State-mismatch errors.
	ErrNotPending   = errors.New("reservation is not pending")
	ErrNotBooked    = errors.New("reservation is not confirmed or in use")
	ErrNotConfirmed = errors.New("reservation is not confirmed")
	ErrNotInUse     = errors.New("reservation is not in use")

	// Check-in errors.
	ErrOutsideUsageWindow = errors.New("current time outside reservation window")
	ErrSignatureExpired   = errors.New("signed timestamp outside freshness window")
	ErrSignatureInvalid   = errors.New("signature verification failed")
	ErrSignerMismatch     = errors.New("signer not bound to reservation")

	// Capacity/batch errors.
	ErrInvalidBatch = errors.New("batch size is zero or above maximum")

	// Stake management errors.
	ErrUnstakeLocked = errors.New("unstake cool-down has not elapsed")

	// Ownership migration errors.
	ErrPendingReservations       = errors.New("lab has unresolved pending reservations")
	ErrTooManyActiveReservations = errors.New("active reservation set exceeds migration bound")

	// Payout errors.
	ErrOrphanNotReady = errors.New("orphan recovery delay has not elapsed")
	ErrNothingToClaim = errors.New("bucket is empty")
)
