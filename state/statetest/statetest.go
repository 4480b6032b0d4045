// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package statetest

import (
	"context"

	"github.com/ava-labs/avalanchego/database"

	"github.com/labx-protocol/labmarket/state"
)

var _ state.Mutable = (*InMemoryStore)(nil)

// InMemoryStore is a storage that acts as a wrapper around a map and
// implements state.Mutable.
type InMemoryStore struct {
	Storage map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		Storage: make(map[string][]byte),
	}
}

func (s *InMemoryStore) GetValue(_ context.Context, key []byte) ([]byte, error) {
	val, ok := s.Storage[string(key)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return val, nil
}

func (s *InMemoryStore) Insert(_ context.Context, key []byte, value []byte) error {
	s.Storage[string(key)] = value
	return nil
}

func (s *InMemoryStore) Remove(_ context.Context, key []byte) error {
	delete(s.Storage, string(key))
	return nil
}
