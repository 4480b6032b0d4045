// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/labx-protocol/labmarket/consts"
	"github.com/labx-protocol/labmarket/internal/payheap"
	"github.com/labx-protocol/labmarket/state"
)

const heapEntryLen = consts.Int64Len + consts.IDLen

// payoutHeap is the persisted form of a lab's payout queue: a count of
// known-stale entries followed by the array heap. Stale entries are
// never removed eagerly (arbitrary removal would make single mutations
// unbounded); they are skipped at pop time and purged by compaction.
type payoutHeapRecord struct {
	invalid uint32
	entries []payheap.Entry
}

func marshalPayoutHeap(h *payoutHeapRecord) []byte {
	v := make([]byte, consts.Uint32Len, consts.Uint32Len+len(h.entries)*heapEntryLen)
	binary.BigEndian.PutUint32(v, h.invalid)
	for _, e := range h.entries {
		v = binary.BigEndian.AppendUint64(v, uint64(e.End))
		v = append(v, e.Key[:]...)
	}
	return v
}

func unmarshalPayoutHeap(v []byte) (*payoutHeapRecord, error) {
	if len(v) < consts.Uint32Len || (len(v)-consts.Uint32Len)%heapEntryLen != 0 {
		return nil, ErrCorruptRecord
	}
	h := &payoutHeapRecord{
		invalid: binary.BigEndian.Uint32(v),
		entries: make([]payheap.Entry, 0, (len(v)-consts.Uint32Len)/heapEntryLen),
	}
	for i := consts.Uint32Len; i < len(v); i += heapEntryLen {
		e := payheap.Entry{End: int64(binary.BigEndian.Uint64(v[i:]))}
		copy(e.Key[:], v[i+consts.Int64Len:])
		h.entries = append(h.entries, e)
	}
	return h, nil
}

func getPayoutHeap(ctx context.Context, im state.Immutable, labID uint64) (*payoutHeapRecord, error) {
	v, err := im.GetValue(ctx, payoutHeapKey(labID))
	if errors.Is(err, database.ErrNotFound) {
		return &payoutHeapRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	return unmarshalPayoutHeap(v)
}

func setPayoutHeap(ctx context.Context, mu state.Mutable, labID uint64, h *payoutHeapRecord) error {
	if len(h.entries) == 0 {
		return mu.Remove(ctx, payoutHeapKey(labID))
	}
	return mu.Insert(ctx, payoutHeapKey(labID), marshalPayoutHeap(h))
}

// PayoutHeapSize reports (entries, knownStale) for metrics and tests.
func PayoutHeapSize(ctx context.Context, im state.Immutable, labID uint64) (int, int, error) {
	h, err := getPayoutHeap(ctx, im, labID)
	if err != nil {
		return 0, 0, err
	}
	return len(h.entries), int(h.invalid), nil
}

// EnqueuePayout adds a payout candidate keyed by end time. Callers
// dedupe through the reservation's Enqueued flag before calling.
func EnqueuePayout(ctx context.Context, mu state.Mutable, labID uint64, id ids.ID, end int64) error {
	h, err := getPayoutHeap(ctx, mu, labID)
	if err != nil {
		return err
	}
	h.entries = payheap.Push(h.entries, payheap.Entry{End: end, Key: id})
	return setPayoutHeap(ctx, mu, labID, h)
}

// MarkPayoutStale records that an enqueued candidate became
// non-payable somewhere other than the heap root (cancellation or an
// expiry sweep). The entry itself stays put until it surfaces at the
// root or a compaction rebuilds the heap.
func MarkPayoutStale(ctx context.Context, mu state.Mutable, labID uint64) error {
	h, err := getPayoutHeap(ctx, mu, labID)
	if err != nil {
		return err
	}
	if len(h.entries) == 0 {
		return nil
	}
	h.invalid++
	return setPayoutHeap(ctx, mu, labID, h)
}

// PopEligiblePayout pops candidates whose end time has passed,
// discarding any whose reservation is no longer payable, and returns
// the first payable key. Returns ids.Empty when nothing is eligible.
func PopEligiblePayout(ctx context.Context, mu state.Mutable, labID uint64, now int64) (ids.ID, error) {
	h, err := getPayoutHeap(ctx, mu, labID)
	if err != nil {
		return ids.Empty, err
	}
	found := ids.Empty
	dirty := false
	for len(h.entries) > 0 && h.entries[0].End <= now {
		var root payheap.Entry
		root, h.entries = payheap.Pop(h.entries)
		dirty = true
		res, err := GetReservation(ctx, mu, root.Key)
		if err != nil && !errors.Is(err, ErrReservationMissing) {
			return ids.Empty, err
		}
		if err != nil || !res.Status.Payable() {
			// Lazily dropped stale entry.
			if h.invalid > 0 {
				h.invalid--
			}
			continue
		}
		found = root.Key
		break
	}
	if dirty {
		if err := setPayoutHeap(ctx, mu, labID, h); err != nil {
			return ids.Empty, err
		}
	}
	return found, nil
}

// CompactPayoutsIfNeeded rebuilds the heap keeping only payable
// entries once known-stale entries exceed [thresholdPct] of its size.
// Heaps larger than [maxCompaction] defer compaction to a later call
// so no single invocation does unbounded work.
func CompactPayoutsIfNeeded(ctx context.Context, mu state.Mutable, labID uint64, thresholdPct int, maxCompaction int) (bool, error) {
	h, err := getPayoutHeap(ctx, mu, labID)
	if err != nil {
		return false, err
	}
	size := len(h.entries)
	if size == 0 || int(h.invalid)*100 <= thresholdPct*size {
		return false, nil
	}
	if size > maxCompaction {
		return false, nil
	}
	kept := h.entries[:0]
	for _, e := range h.entries {
		res, err := GetReservation(ctx, mu, e.Key)
		if err != nil {
			if errors.Is(err, ErrReservationMissing) {
				continue
			}
			return false, err
		}
		if res.Status.Payable() {
			kept = append(kept, e)
		}
	}
	payheap.Heapify(kept)
	h.entries = kept
	h.invalid = 0
	return true, setPayoutHeap(ctx, mu, labID, h)
}

// Bucket identifies a global pending-payout bucket.
type Bucket uint8

const (
	BucketTreasury Bucket = iota
	BucketSubsidies
	BucketGovernance
)

func (b Bucket) Valid() bool {
	return b <= BucketGovernance
}

func (b Bucket) String() string {
	switch b {
	case BucketTreasury:
		return "treasury"
	case BucketSubsidies:
		return "subsidies"
	case BucketGovernance:
		return "governance"
	default:
		return "unknown"
	}
}

// GetProviderBucket returns a lab's accumulated provider payout and
// the timestamp of its last update (which drives orphan recovery).
func GetProviderBucket(ctx context.Context, im state.Immutable, labID uint64) (uint64, int64, error) {
	v, err := im.GetValue(ctx, providerBucketKey(labID))
	if errors.Is(err, database.ErrNotFound) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	if len(v) != consts.Uint64Len+consts.Int64Len {
		return 0, 0, ErrCorruptRecord
	}
	return binary.BigEndian.Uint64(v), int64(binary.BigEndian.Uint64(v[consts.Uint64Len:])), nil
}

func CreditProviderBucket(ctx context.Context, mu state.Mutable, labID uint64, amount uint64, now int64) error {
	cur, _, err := GetProviderBucket(ctx, mu, labID)
	if err != nil {
		return err
	}
	ncur, err := smath.Add64(cur, amount)
	if err != nil {
		return err
	}
	v := binary.BigEndian.AppendUint64(nil, ncur)
	v = binary.BigEndian.AppendUint64(v, uint64(now))
	return mu.Insert(ctx, providerBucketKey(labID), v)
}

// DrainProviderBucket zeroes the bucket and returns what it held.
func DrainProviderBucket(ctx context.Context, mu state.Mutable, labID uint64) (uint64, error) {
	cur, _, err := GetProviderBucket(ctx, mu, labID)
	if err != nil {
		return 0, err
	}
	if cur == 0 {
		return 0, nil
	}
	return cur, mu.Remove(ctx, providerBucketKey(labID))
}

func GetGlobalBucket(ctx context.Context, im state.Immutable, bucket Bucket) (uint64, error) {
	v, err := im.GetValue(ctx, globalBucketKey(bucket))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func AddGlobalBucket(ctx context.Context, mu state.Mutable, bucket Bucket, amount uint64) error {
	if amount == 0 {
		return nil
	}
	cur, err := GetGlobalBucket(ctx, mu, bucket)
	if err != nil {
		return err
	}
	ncur, err := smath.Add64(cur, amount)
	if err != nil {
		return err
	}
	return mu.Insert(ctx, globalBucketKey(bucket), binary.BigEndian.AppendUint64(nil, ncur))
}

func DrainGlobalBucket(ctx context.Context, mu state.Mutable, bucket Bucket) (uint64, error) {
	cur, err := GetGlobalBucket(ctx, mu, bucket)
	if err != nil {
		return 0, err
	}
	if cur == 0 {
		return 0, nil
	}
	return cur, mu.Remove(ctx, globalBucketKey(bucket))
}
