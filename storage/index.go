// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/labx-protocol/labmarket/consts"
	"github.com/labx-protocol/labmarket/state"
)

// ID-list records back both the per-user reservation index and the
// per-lab active set. Lists are short (bounded by the reservation cap
// and the migration cleanup bound respectively), so linear scans are
// fine.

func marshalIDs(list []ids.ID) []byte {
	v := make([]byte, 0, len(list)*consts.IDLen)
	for _, id := range list {
		v = append(v, id[:]...)
	}
	return v
}

func unmarshalIDs(v []byte) ([]ids.ID, error) {
	if len(v)%consts.IDLen != 0 {
		return nil, ErrCorruptRecord
	}
	list := make([]ids.ID, 0, len(v)/consts.IDLen)
	for i := 0; i < len(v); i += consts.IDLen {
		var id ids.ID
		copy(id[:], v[i:])
		list = append(list, id)
	}
	return list, nil
}

func getIDList(ctx context.Context, im state.Immutable, key []byte) ([]ids.ID, error) {
	v, err := im.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return unmarshalIDs(v)
}

func setIDList(ctx context.Context, mu state.Mutable, key []byte, list []ids.ID) error {
	if len(list) == 0 {
		return mu.Remove(ctx, key)
	}
	return mu.Insert(ctx, key, marshalIDs(list))
}

func appendIDList(ctx context.Context, mu state.Mutable, key []byte, id ids.ID) error {
	list, err := getIDList(ctx, mu, key)
	if err != nil {
		return err
	}
	return setIDList(ctx, mu, key, append(list, id))
}

func removeIDList(ctx context.Context, mu state.Mutable, key []byte, id ids.ID) error {
	list, err := getIDList(ctx, mu, key)
	if err != nil {
		return err
	}
	for i, have := range list {
		if have == id {
			return setIDList(ctx, mu, key, append(list[:i], list[i+1:]...))
		}
	}
	return nil
}

// GetUserIndex returns the requester's reservation keys for [labID].
// The length of this list is the requester's active-reservation count
// for cap purposes.
func GetUserIndex(ctx context.Context, im state.Immutable, labID uint64, tracking ids.ID) ([]ids.ID, error) {
	return getIDList(ctx, im, userIndexKey(labID, tracking))
}

func AddToUserIndex(ctx context.Context, mu state.Mutable, labID uint64, tracking ids.ID, id ids.ID) error {
	return appendIDList(ctx, mu, userIndexKey(labID, tracking), id)
}

func RemoveFromUserIndex(ctx context.Context, mu state.Mutable, labID uint64, tracking ids.ID, id ids.ID) error {
	return removeIDList(ctx, mu, userIndexKey(labID, tracking), id)
}

// GetActiveSet returns every non-terminal reservation key for [labID].
// Ownership migration scans this set, so its size bounds transfers.
func GetActiveSet(ctx context.Context, im state.Immutable, labID uint64) ([]ids.ID, error) {
	return getIDList(ctx, im, activeSetKey(labID))
}

func AddToActiveSet(ctx context.Context, mu state.Mutable, labID uint64, id ids.ID) error {
	return appendIDList(ctx, mu, activeSetKey(labID), id)
}

func RemoveFromActiveSet(ctx context.Context, mu state.Mutable, labID uint64, id ids.ID) error {
	return removeIDList(ctx, mu, activeSetKey(labID), id)
}

// GetEarliest reads the best-effort "earliest active reservation"
// pointer for a tracking key. The pointer is only replaced when a new
// reservation starts earlier, so it can go stale after cancellations
// until a sweep touches it. Callers must treat it as a hint.
func GetEarliest(ctx context.Context, im state.Immutable, labID uint64, tracking ids.ID) (ids.ID, error) {
	v, err := im.GetValue(ctx, earliestKey(labID, tracking))
	if errors.Is(err, database.ErrNotFound) {
		return ids.Empty, nil
	}
	if err != nil {
		return ids.Empty, err
	}
	var id ids.ID
	copy(id[:], v)
	return id, nil
}

// UpdateEarliest replaces the pointer only if [start] precedes the
// currently tracked reservation's start (or no pointer exists).
func UpdateEarliest(ctx context.Context, mu state.Mutable, labID uint64, tracking ids.ID, id ids.ID, start int64) error {
	cur, err := GetEarliest(ctx, mu, labID, tracking)
	if err != nil {
		return err
	}
	if cur != ids.Empty {
		res, err := GetReservation(ctx, mu, cur)
		if err == nil && res.Start <= start {
			return nil
		}
		if err != nil && !errors.Is(err, ErrReservationMissing) {
			return err
		}
	}
	return mu.Insert(ctx, earliestKey(labID, tracking), id[:])
}

// ClearEarliest drops the pointer if it references [id].
func ClearEarliest(ctx context.Context, mu state.Mutable, labID uint64, tracking ids.ID, id ids.ID) error {
	cur, err := GetEarliest(ctx, mu, labID, tracking)
	if err != nil {
		return err
	}
	if cur != id {
		return nil
	}
	return mu.Remove(ctx, earliestKey(labID, tracking))
}
