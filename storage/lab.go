// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/consts"
	"github.com/labx-protocol/labmarket/state"
)

const MaxLabURILen = 256

// Lab is the reservable resource record. The owner is not stored
// here; it is resolved through the asset registry so ownership
// transfers cannot leave a stale copy behind.
type Lab struct {
	ID           uint64 `json:"id"`
	URI          string `json:"uri"`
	AccessURI    string `json:"accessURI"`
	PricePerHour uint64 `json:"pricePerHour"`
	CreatedAt    int64  `json:"createdAt"`
	Listed       bool   `json:"listed"`
}

func (l *Lab) marshal() []byte {
	uriLen := len(l.URI)
	accessLen := len(l.AccessURI)
	v := make([]byte, consts.Uint16Len+uriLen+consts.Uint16Len+accessLen+consts.Uint64Len+consts.Int64Len+consts.BoolLen)
	offset := 0
	binary.BigEndian.PutUint16(v[offset:], uint16(uriLen))
	offset += consts.Uint16Len
	copy(v[offset:], l.URI)
	offset += uriLen
	binary.BigEndian.PutUint16(v[offset:], uint16(accessLen))
	offset += consts.Uint16Len
	copy(v[offset:], l.AccessURI)
	offset += accessLen
	binary.BigEndian.PutUint64(v[offset:], l.PricePerHour)
	offset += consts.Uint64Len
	binary.BigEndian.PutUint64(v[offset:], uint64(l.CreatedAt))
	offset += consts.Int64Len
	if l.Listed {
		v[offset] = 1
	}
	return v
}

func unmarshalLab(labID uint64, v []byte) (*Lab, error) {
	if len(v) < consts.Uint16Len {
		return nil, ErrCorruptRecord
	}
	l := &Lab{ID: labID}
	offset := 0
	uriLen := int(binary.BigEndian.Uint16(v[offset:]))
	offset += consts.Uint16Len
	if len(v) < offset+uriLen+consts.Uint16Len {
		return nil, ErrCorruptRecord
	}
	l.URI = string(v[offset : offset+uriLen])
	offset += uriLen
	accessLen := int(binary.BigEndian.Uint16(v[offset:]))
	offset += consts.Uint16Len
	if len(v) != offset+accessLen+consts.Uint64Len+consts.Int64Len+consts.BoolLen {
		return nil, ErrCorruptRecord
	}
	l.AccessURI = string(v[offset : offset+accessLen])
	offset += accessLen
	l.PricePerHour = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	l.CreatedAt = int64(binary.BigEndian.Uint64(v[offset:]))
	offset += consts.Int64Len
	l.Listed = v[offset] == 1
	return l, nil
}

func GetLab(ctx context.Context, im state.Immutable, labID uint64) (*Lab, error) {
	v, err := im.GetValue(ctx, labKey(labID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrLabMissing
	}
	if err != nil {
		return nil, err
	}
	return unmarshalLab(labID, v)
}

func SetLab(ctx context.Context, mu state.Mutable, l *Lab) error {
	return mu.Insert(ctx, labKey(l.ID), l.marshal())
}

// NextLabID allocates a dense, monotonic lab identifier starting at 1.
func NextLabID(ctx context.Context, mu state.Mutable) (uint64, error) {
	v, err := mu.GetValue(ctx, labCounterKey())
	next := uint64(1)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		return 0, err
	default:
		next = binary.BigEndian.Uint64(v) + 1
	}
	if err := mu.Insert(ctx, labCounterKey(), binary.BigEndian.AppendUint64(nil, next)); err != nil {
		return 0, err
	}
	return next, nil
}

// LabCount returns the highest allocated lab id (lab ids are dense, so
// this doubles as the total count).
func LabCount(ctx context.Context, im state.Immutable) (uint64, error) {
	v, err := im.GetValue(ctx, labCounterKey())
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

// GetLabOwner reads the owner record maintained by the platform asset
// registry.
func GetLabOwner(ctx context.Context, im state.Immutable, labID uint64) (codec.Address, error) {
	v, err := im.GetValue(ctx, labOwnerKey(labID))
	if errors.Is(err, database.ErrNotFound) {
		return codec.EmptyAddress, nil
	}
	if err != nil {
		return codec.EmptyAddress, err
	}
	if len(v) != codec.AddressLen {
		return codec.EmptyAddress, ErrCorruptRecord
	}
	var owner codec.Address
	copy(owner[:], v)
	return owner, nil
}

func SetLabOwner(ctx context.Context, mu state.Mutable, labID uint64, owner codec.Address) error {
	return mu.Insert(ctx, labOwnerKey(labID), owner[:])
}

// LabPrice computes the reservation price for [start, end) at the
// lab's hourly rate. Multiply-before-divide keeps sub-hour bookings
// exact to the millisecond.
func LabPrice(l *Lab, start int64, end int64) (uint64, error) {
	duration := uint64(end - start)
	price, err := smath.Mul64(l.PricePerHour, duration)
	if err != nil {
		return 0, err
	}
	return price / consts.MillisecondsPerHour, nil
}
