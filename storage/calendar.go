// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"

	"github.com/labx-protocol/labmarket/consts"
	"github.com/labx-protocol/labmarket/internal/interval"
	"github.com/labx-protocol/labmarket/state"
)

const intervalLen = 2 * consts.Int64Len

func marshalCalendar(set []interval.Interval) []byte {
	v := make([]byte, 0, len(set)*intervalLen)
	for _, iv := range set {
		v = binary.BigEndian.AppendUint64(v, uint64(iv.Start))
		v = binary.BigEndian.AppendUint64(v, uint64(iv.End))
	}
	return v
}

func unmarshalCalendar(v []byte) ([]interval.Interval, error) {
	if len(v)%intervalLen != 0 {
		return nil, ErrCorruptRecord
	}
	set := make([]interval.Interval, 0, len(v)/intervalLen)
	for i := 0; i < len(v); i += intervalLen {
		set = append(set, interval.Interval{
			Start: int64(binary.BigEndian.Uint64(v[i:])),
			End:   int64(binary.BigEndian.Uint64(v[i+consts.Int64Len:])),
		})
	}
	return set, nil
}

// GetCalendar returns the booked intervals of [labID] sorted by start.
func GetCalendar(ctx context.Context, im state.Immutable, labID uint64) ([]interval.Interval, error) {
	v, err := im.GetValue(ctx, calendarKey(labID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return unmarshalCalendar(v)
}

// InsertCalendarInterval books [start, end) for [labID], rejecting any
// overlap with an existing booking.
func InsertCalendarInterval(ctx context.Context, mu state.Mutable, labID uint64, start int64, end int64) error {
	set, err := GetCalendar(ctx, mu, labID)
	if err != nil {
		return err
	}
	set, err = interval.Insert(set, start, end)
	if err != nil {
		return err
	}
	return mu.Insert(ctx, calendarKey(labID), marshalCalendar(set))
}

// RemoveCalendarInterval frees the interval keyed by [start]. Callers
// must only remove intervals they know exist.
func RemoveCalendarInterval(ctx context.Context, mu state.Mutable, labID uint64, start int64) error {
	set, err := GetCalendar(ctx, mu, labID)
	if err != nil {
		return err
	}
	set, err = interval.Remove(set, start)
	if err != nil {
		return err
	}
	if len(set) == 0 {
		return mu.Remove(ctx, calendarKey(labID))
	}
	return mu.Insert(ctx, calendarKey(labID), marshalCalendar(set))
}
