// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"encoding/binary"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/consts"
)

// State
// 0x00/ (lab counter)
//   -> next lab id
// 0x01/ (labs)
//   -> [labID] => uriLen|uri|accessLen|access|pricePerHour|createdAt|listed
// 0x02/ (lab owners, maintained by the platform asset registry)
//   -> [labID] => owner
// 0x03/ (reservations)
//   -> [key] => labID|requester|provider|price|start|end|status|...|shares|enqueued
// 0x04/ (calendars)
//   -> [labID] => sorted (start|end) pairs for booked reservations
// 0x05/ (payout heaps)
//   -> [labID] => invalidCount|array heap of (end|key)
// 0x06/ (per-user reservation indexes)
//   -> [labID|trackingKey] => reservation keys
// 0x07/ (earliest active reservation pointers)
//   -> [labID|trackingKey] => reservation key
// 0x08/ (active reservation sets)
//   -> [labID] => non-terminal reservation keys
// 0x09/ (provider payout buckets)
//   -> [labID] => amount|lastUpdate
// 0x0a/ (global buckets)
//   -> [bucketID] => amount
// 0x0b/ (provider stakes)
//   -> [provider] => staked|listedCount|lastReservation
// 0x0c/ (wallet balances)
//   -> [address] => balance
// 0x0d/ (wallet allowances)
//   -> [owner|spender] => allowance
// 0x0e/ (treasury accounts)
//   -> [institution|payer] => available
// 0x0f/ (roles)
//   -> [address] => roleBits|backend
// 0x10/ (consumed intents)
//   -> [requestID] => tag|payloadHash|executor
// 0x11/ (lab reputation counters)
//   -> [labID] => completions|ownerCancellations

const (
	labCounterPrefix      = 0x00
	labPrefix             = 0x01
	labOwnerPrefix        = 0x02
	reservationPrefix     = 0x03
	calendarPrefix        = 0x04
	payoutHeapPrefix      = 0x05
	userIndexPrefix       = 0x06
	earliestPrefix        = 0x07
	activeSetPrefix       = 0x08
	providerBucketPrefix  = 0x09
	globalBucketPrefix    = 0x0a
	stakePrefix           = 0x0b
	balancePrefix         = 0x0c
	allowancePrefix       = 0x0d
	treasuryAccountPrefix = 0x0e
	rolePrefix            = 0x0f
	intentPrefix          = 0x10
	reputationPrefix      = 0x11
)

func labKey(labID uint64) []byte {
	k := make([]byte, 1+consts.Uint64Len)
	k[0] = labPrefix
	binary.BigEndian.PutUint64(k[1:], labID)
	return k
}

func labCounterKey() []byte {
	return []byte{labCounterPrefix}
}

func labOwnerKey(labID uint64) []byte {
	k := make([]byte, 1+consts.Uint64Len)
	k[0] = labOwnerPrefix
	binary.BigEndian.PutUint64(k[1:], labID)
	return k
}

func reservationKey(id ids.ID) []byte {
	k := make([]byte, 1+consts.IDLen)
	k[0] = reservationPrefix
	copy(k[1:], id[:])
	return k
}

func calendarKey(labID uint64) []byte {
	k := make([]byte, 1+consts.Uint64Len)
	k[0] = calendarPrefix
	binary.BigEndian.PutUint64(k[1:], labID)
	return k
}

func payoutHeapKey(labID uint64) []byte {
	k := make([]byte, 1+consts.Uint64Len)
	k[0] = payoutHeapPrefix
	binary.BigEndian.PutUint64(k[1:], labID)
	return k
}

func userIndexKey(labID uint64, tracking ids.ID) []byte {
	k := make([]byte, 1+consts.Uint64Len+consts.IDLen)
	k[0] = userIndexPrefix
	binary.BigEndian.PutUint64(k[1:], labID)
	copy(k[1+consts.Uint64Len:], tracking[:])
	return k
}

func earliestKey(labID uint64, tracking ids.ID) []byte {
	k := make([]byte, 1+consts.Uint64Len+consts.IDLen)
	k[0] = earliestPrefix
	binary.BigEndian.PutUint64(k[1:], labID)
	copy(k[1+consts.Uint64Len:], tracking[:])
	return k
}

func activeSetKey(labID uint64) []byte {
	k := make([]byte, 1+consts.Uint64Len)
	k[0] = activeSetPrefix
	binary.BigEndian.PutUint64(k[1:], labID)
	return k
}

func providerBucketKey(labID uint64) []byte {
	k := make([]byte, 1+consts.Uint64Len)
	k[0] = providerBucketPrefix
	binary.BigEndian.PutUint64(k[1:], labID)
	return k
}

func globalBucketKey(bucket Bucket) []byte {
	return []byte{globalBucketPrefix, byte(bucket)}
}

func stakeKey(provider codec.Address) []byte {
	k := make([]byte, 1+codec.AddressLen)
	k[0] = stakePrefix
	copy(k[1:], provider[:])
	return k
}

func balanceKey(addr codec.Address) []byte {
	k := make([]byte, 1+codec.AddressLen)
	k[0] = balancePrefix
	copy(k[1:], addr[:])
	return k
}

func allowanceKey(owner codec.Address, spender codec.Address) []byte {
	k := make([]byte, 1+2*codec.AddressLen)
	k[0] = allowancePrefix
	copy(k[1:], owner[:])
	copy(k[1+codec.AddressLen:], spender[:])
	return k
}

func treasuryAccountKey(institution codec.Address, payer ids.ID) []byte {
	k := make([]byte, 1+codec.AddressLen+consts.IDLen)
	k[0] = treasuryAccountPrefix
	copy(k[1:], institution[:])
	copy(k[1+codec.AddressLen:], payer[:])
	return k
}

func roleKey(addr codec.Address) []byte {
	k := make([]byte, 1+codec.AddressLen)
	k[0] = rolePrefix
	copy(k[1:], addr[:])
	return k
}

func intentKey(requestID ids.ID) []byte {
	k := make([]byte, 1+consts.IDLen)
	k[0] = intentPrefix
	copy(k[1:], requestID[:])
	return k
}

func reputationKey(labID uint64) []byte {
	k := make([]byte, 1+consts.Uint64Len)
	k[0] = reputationPrefix
	binary.BigEndian.PutUint64(k[1:], labID)
	return k
}
