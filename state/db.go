// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
)

var _ Mutable = (*DatabaseStore)(nil)

// DatabaseStore adapts an avalanchego [database.Database] (or any
// key-value view of one) to [Mutable].
type DatabaseStore struct {
	db database.KeyValueReaderWriterDeleter
}

func NewDatabaseStore(db database.KeyValueReaderWriterDeleter) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return s.db.Get(key)
}

func (s *DatabaseStore) Insert(_ context.Context, key []byte, value []byte) error {
	return s.db.Put(key, value)
}

func (s *DatabaseStore) Remove(_ context.Context, key []byte) error {
	return s.db.Delete(key)
}
