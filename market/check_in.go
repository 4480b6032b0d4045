// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"
	"encoding/binary"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/consts"
	"github.com/labx-protocol/labmarket/crypto/ed25519"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var (
	_ Action      = (*CheckIn)(nil)
	_ Action      = (*SignedCheckIn)(nil)
	_ codec.Typed = (*CheckInResult)(nil)
)

// CheckIn flips a confirmed reservation to in-use once the booked
// window has opened.
type CheckIn struct {
	ReservationID ids.ID `json:"reservationID"`
}

func (*CheckIn) GetTypeID() uint8 {
	return CheckInID
}

func (a *CheckIn) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	res, err := storage.GetReservation(ctx, mu, a.ReservationID)
	if err != nil {
		return nil, err
	}
	ok, err := authorizedRequester(ctx, env, mu, res, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}
	return checkIn(ctx, env, mu, a.ReservationID, res, timestamp)
}

const checkInDomain = "labmarket.checkin"

// CheckInMessage is the domain-separated byte string a remote party
// signs to authorize a check-in executed by someone else. The signed
// timestamp is bound by the freshness window, not the block time.
func CheckInMessage(signer ed25519.PublicKey, reservationID ids.ID, payerHash ids.ID, timestamp int64) []byte {
	msg := make([]byte, 0, len(checkInDomain)+ed25519.PublicKeyLen+2*consts.IDLen+consts.Int64Len)
	msg = append(msg, checkInDomain...)
	msg = append(msg, signer[:]...)
	msg = append(msg, reservationID[:]...)
	msg = append(msg, payerHash[:]...)
	msg = binary.BigEndian.AppendUint64(msg, uint64(timestamp))
	return msg
}

// SignerAddress derives the marketplace address controlled by an
// ed25519 key.
func SignerAddress(pk ed25519.PublicKey) codec.Address {
	return codec.CreateAddress(0x00, hashing.ComputeHash256Array(pk[:]))
}

// SignedCheckIn lets a backend check in on behalf of a remote party.
// The signature, not the transaction sender, is the authorization: it
// covers the signer key, the reservation, the payer identity hash, and
// a timestamp that must fall within a short freshness window of the
// current time.
type SignedCheckIn struct {
	ReservationID ids.ID            `json:"reservationID"`
	PayerHash     ids.ID            `json:"payerHash"`
	Timestamp     int64             `json:"timestamp"`
	Signer        ed25519.PublicKey `json:"signer"`
	Signature     ed25519.Signature `json:"signature"`
}

func (*SignedCheckIn) GetTypeID() uint8 {
	return SignedCheckInID
}

func (a *SignedCheckIn) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	timestamp int64,
	_ codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	res, err := storage.GetReservation(ctx, mu, a.ReservationID)
	if err != nil {
		return nil, err
	}
	if a.Timestamp < timestamp-env.Rules.CheckInFreshness ||
		a.Timestamp > timestamp+env.Rules.CheckInFreshness {
		return nil, ErrSignatureExpired
	}
	// The payer hash doubles as the tracking key, so it binds the
	// signature to the identity the reservation was requested under.
	if a.PayerHash != res.TrackingKey() {
		return nil, ErrSignerMismatch
	}
	if !ed25519.Verify(CheckInMessage(a.Signer, a.ReservationID, a.PayerHash, a.Timestamp), a.Signer, a.Signature) {
		return nil, ErrSignatureInvalid
	}
	ok, err := authorizedRequester(ctx, env, mu, res, SignerAddress(a.Signer))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSignerMismatch
	}
	return checkIn(ctx, env, mu, a.ReservationID, res, timestamp)
}

func checkIn(ctx context.Context, env *Env, mu state.Mutable, id ids.ID, res *storage.Reservation, now int64) (codec.Typed, error) {
	if res.Status != storage.Confirmed {
		return nil, ErrNotConfirmed
	}
	if now < res.Start || now > res.End {
		return nil, ErrOutsideUsageWindow
	}
	res.Status = storage.InUse
	if err := storage.SetReservation(ctx, mu, id, res); err != nil {
		return nil, err
	}
	env.Metrics.recordCheckIn()
	return &CheckInResult{}, nil
}

type CheckInResult struct{}

func (*CheckInResult) GetTypeID() uint8 {
	return CheckInID
}
