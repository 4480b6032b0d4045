// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/consts"
	"github.com/labx-protocol/labmarket/fees"
	"github.com/labx-protocol/labmarket/state"
)

type Status uint8

const (
	Pending Status = iota
	Confirmed
	InUse
	Completed
	Collected
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case InUse:
		return "inUse"
	case Completed:
		return "completed"
	case Collected:
		return "collected"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal statuses are immutable.
func (s Status) Terminal() bool {
	return s == Collected || s == Cancelled
}

// Payable statuses hold escrowed funds awaiting collection.
func (s Status) Payable() bool {
	return s == Confirmed || s == InUse || s == Completed
}

// Booked statuses own a calendar interval.
func (s Status) Booked() bool {
	return s.Payable()
}

type FlowKind uint8

const (
	WalletFlow FlowKind = iota
	InstitutionalFlow
)

// Reservation is the booking entity. The key is derived from
// (labID, start), so two attempts for the same slot collide at the
// data-model level before any calendar check runs.
type Reservation struct {
	LabID     uint64        `json:"labID"`
	Requester codec.Address `json:"requester"`
	// Provider is the lab owner resolved at confirmation time. It is
	// re-pointed by ownership migration, never re-read from the asset
	// registry afterwards.
	Provider codec.Address `json:"provider"`
	Price    uint64        `json:"price"`
	Start    int64         `json:"start"`
	End      int64         `json:"end"`
	Status   Status        `json:"status"`

	// Pending-request TTL window.
	RequestedAt int64 `json:"requestedAt"`
	Window      int64 `json:"window"`

	Flow FlowKind `json:"flow"`
	// Payer identifies the institutional end user; zero for wallet
	// reservations.
	Payer ids.ID `json:"payer"`
	// Collector is the institution account debited at confirmation
	// and refunded on cancellation; zero for wallet reservations.
	Collector codec.Address `json:"collector"`

	// Revenue shares computed once and frozen at confirmation.
	Shares fees.Shares `json:"shares"`

	// Enqueued dedupes payout-heap candidates.
	Enqueued bool `json:"enqueued"`
}

// ReservationID derives the slot-exclusive key for (labID, start).
func ReservationID(labID uint64, start int64) ids.ID {
	b := make([]byte, consts.Uint64Len+consts.Int64Len)
	binary.BigEndian.PutUint64(b, labID)
	binary.BigEndian.PutUint64(b[consts.Uint64Len:], uint64(start))
	return hashing.ComputeHash256Array(b)
}

// TrackingKey buckets a requester's reservations for cap and index
// purposes: the wallet address for wallet flows, a key derived from
// (collector, payer) for institutional end users.
func (r *Reservation) TrackingKey() ids.ID {
	if r.Flow == InstitutionalFlow {
		return InstitutionTrackingKey(r.Collector, r.Payer)
	}
	return WalletTrackingKey(r.Requester)
}

func WalletTrackingKey(addr codec.Address) ids.ID {
	return hashing.ComputeHash256Array(addr[:])
}

func InstitutionTrackingKey(institution codec.Address, payer ids.ID) ids.ID {
	b := make([]byte, codec.AddressLen+consts.IDLen)
	copy(b, institution[:])
	copy(b[codec.AddressLen:], payer[:])
	return hashing.ComputeHash256Array(b)
}

const reservationLen = consts.Uint64Len + // labID
	codec.AddressLen + // requester
	codec.AddressLen + // provider
	consts.Uint64Len + // price
	consts.Int64Len + // start
	consts.Int64Len + // end
	consts.ByteLen + // status
	consts.Int64Len + // requestedAt
	consts.Int64Len + // window
	consts.ByteLen + // flow
	consts.IDLen + // payer
	codec.AddressLen + // collector
	4*consts.Uint64Len + // shares
	consts.BoolLen // enqueued

func (r *Reservation) marshal() []byte {
	v := make([]byte, reservationLen)
	offset := 0
	binary.BigEndian.PutUint64(v[offset:], r.LabID)
	offset += consts.Uint64Len
	copy(v[offset:], r.Requester[:])
	offset += codec.AddressLen
	copy(v[offset:], r.Provider[:])
	offset += codec.AddressLen
	binary.BigEndian.PutUint64(v[offset:], r.Price)
	offset += consts.Uint64Len
	binary.BigEndian.PutUint64(v[offset:], uint64(r.Start))
	offset += consts.Int64Len
	binary.BigEndian.PutUint64(v[offset:], uint64(r.End))
	offset += consts.Int64Len
	v[offset] = byte(r.Status)
	offset += consts.ByteLen
	binary.BigEndian.PutUint64(v[offset:], uint64(r.RequestedAt))
	offset += consts.Int64Len
	binary.BigEndian.PutUint64(v[offset:], uint64(r.Window))
	offset += consts.Int64Len
	v[offset] = byte(r.Flow)
	offset += consts.ByteLen
	copy(v[offset:], r.Payer[:])
	offset += consts.IDLen
	copy(v[offset:], r.Collector[:])
	offset += codec.AddressLen
	binary.BigEndian.PutUint64(v[offset:], r.Shares.Provider)
	offset += consts.Uint64Len
	binary.BigEndian.PutUint64(v[offset:], r.Shares.Treasury)
	offset += consts.Uint64Len
	binary.BigEndian.PutUint64(v[offset:], r.Shares.Subsidies)
	offset += consts.Uint64Len
	binary.BigEndian.PutUint64(v[offset:], r.Shares.Governance)
	offset += consts.Uint64Len
	if r.Enqueued {
		v[offset] = 1
	}
	return v
}

func unmarshalReservation(v []byte) (*Reservation, error) {
	if len(v) != reservationLen {
		return nil, ErrCorruptRecord
	}
	r := &Reservation{}
	offset := 0
	r.LabID = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	copy(r.Requester[:], v[offset:])
	offset += codec.AddressLen
	copy(r.Provider[:], v[offset:])
	offset += codec.AddressLen
	r.Price = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	r.Start = int64(binary.BigEndian.Uint64(v[offset:]))
	offset += consts.Int64Len
	r.End = int64(binary.BigEndian.Uint64(v[offset:]))
	offset += consts.Int64Len
	r.Status = Status(v[offset])
	offset += consts.ByteLen
	r.RequestedAt = int64(binary.BigEndian.Uint64(v[offset:]))
	offset += consts.Int64Len
	r.Window = int64(binary.BigEndian.Uint64(v[offset:]))
	offset += consts.Int64Len
	r.Flow = FlowKind(v[offset])
	offset += consts.ByteLen
	copy(r.Payer[:], v[offset:])
	offset += consts.IDLen
	copy(r.Collector[:], v[offset:])
	offset += codec.AddressLen
	r.Shares.Provider = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	r.Shares.Treasury = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	r.Shares.Subsidies = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	r.Shares.Governance = binary.BigEndian.Uint64(v[offset:])
	offset += consts.Uint64Len
	r.Enqueued = v[offset] == 1
	return r, nil
}

func GetReservation(ctx context.Context, im state.Immutable, id ids.ID) (*Reservation, error) {
	v, err := im.GetValue(ctx, reservationKey(id))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrReservationMissing
	}
	if err != nil {
		return nil, err
	}
	return unmarshalReservation(v)
}

// HasReservation avoids a decode when only existence matters.
func HasReservation(ctx context.Context, im state.Immutable, id ids.ID) (bool, error) {
	_, err := im.GetValue(ctx, reservationKey(id))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func SetReservation(ctx context.Context, mu state.Mutable, id ids.ID, r *Reservation) error {
	return mu.Insert(ctx, reservationKey(id), r.marshal())
}
