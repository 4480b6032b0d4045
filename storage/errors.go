// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrLabMissing         = errors.New("lab does not exist")
	ErrReservationMissing = errors.New("reservation does not exist")
	ErrInvalidBalance     = errors.New("invalid balance")
	ErrInvalidAllowance   = errors.New("invalid allowance")
	ErrInvalidBucket      = errors.New("invalid bucket")
	ErrInvalidStake       = errors.New("invalid stake")
	ErrIntentConsumed     = errors.New("intent already consumed")
	ErrCorruptRecord      = errors.New("corrupt record")
)
