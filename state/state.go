// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "context"

// Immutable is the read-only view of the ledger state.
type Immutable interface {
	GetValue(ctx context.Context, key []byte) (value []byte, err error)
}

// Mutable is the read-write view of the ledger state handed to every
// executing action. Implementations must return
// [database.ErrNotFound] from GetValue for absent keys.
type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
	Remove(ctx context.Context, key []byte) error
}
