// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package payheap implements the array min-heap backing the per-lab
// payout queues. Entries are ordered by reservation end time and
// addressed with index-based parent/child math so the heap can be
// round-tripped through a state record without pointer fixups.
package payheap

import "github.com/ava-labs/avalanchego/ids"

// Entry is a payout candidate: the reservation [Key] becomes eligible
// for collection once its [End] has passed.
type Entry struct {
	End int64
	Key ids.ID
}

// Push appends [e] and sifts it up to restore the heap property.
func Push(h []Entry, e Entry) []Entry {
	h = append(h, e)
	siftUp(h, len(h)-1)
	return h
}

// Pop removes and returns the root (earliest end time). The heap must
// be non-empty.
func Pop(h []Entry) (Entry, []Entry) {
	root := h[0]
	last := len(h) - 1
	h[0] = h[last]
	h = h[:last]
	if len(h) > 0 {
		siftDown(h, 0)
	}
	return root, h
}

// Heapify reorders [h] in place into a valid min-heap using bottom-up
// construction (O(n)).
func Heapify(h []Entry) {
	for i := len(h)/2 - 1; i >= 0; i-- {
		siftDown(h, i)
	}
}

func siftUp(h []Entry, i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h[parent].End <= h[i].End {
			return
		}
		h[parent], h[i] = h[i], h[parent]
		i = parent
	}
}

func siftDown(h []Entry, i int) {
	n := len(h)
	for {
		smallest := i
		if l := 2*i + 1; l < n && h[l].End < h[smallest].End {
			smallest = l
		}
		if r := 2*i + 2; r < n && h[r].End < h[smallest].End {
			smallest = r
		}
		if smallest == i {
			return
		}
		h[i], h[smallest] = h[smallest], h[i]
		i = smallest
	}
}
