// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

// Action type identifiers. Results reuse the id of the action that
// produced them.
const (
	RegisterLabID uint8 = iota
	SetListingID
	StakeID
	UnstakeID
	RequestReservationID
	ConfirmReservationID
	DenyReservationID
	CancelRequestID
	CancelBookingID
	CheckInID
	SignedCheckInID
	CompleteID
	ReleaseExpiredID
	RequestFundsID
	ClaimBucketID
	RecoverOrphanedPayoutID
)
