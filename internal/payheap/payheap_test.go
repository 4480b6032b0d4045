// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package payheap

import (
	"math/rand"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

func TestPushPopOrdered(t *testing.T) {
	require := require.New(t)

	var h []Entry
	ends := []int64{50, 10, 40, 20, 30}
	for _, e := range ends {
		h = Push(h, Entry{End: e, Key: ids.GenerateTestID()})
	}
	require.Len(h, 5)

	var got []int64
	for len(h) > 0 {
		var e Entry
		e, h = Pop(h)
		got = append(got, e.End)
	}
	require.Equal([]int64{10, 20, 30, 40, 50}, got)
}

func TestHeapifyMatchesPush(t *testing.T) {
	require := require.New(t)

	r := rand.New(rand.NewSource(7)) //nolint:gosec
	raw := make([]Entry, 257)
	for i := range raw {
		raw[i] = Entry{End: r.Int63n(1_000_000), Key: ids.GenerateTestID()}
	}

	built := make([]Entry, len(raw))
	copy(built, raw)
	Heapify(built)

	var pushed []Entry
	for _, e := range raw {
		pushed = Push(pushed, e)
	}

	for len(built) > 0 {
		var a, b Entry
		a, built = Pop(built)
		b, pushed = Pop(pushed)
		require.Equal(a.End, b.End)
	}
	require.Empty(pushed)
}

func TestDuplicateEnds(t *testing.T) {
	require := require.New(t)

	var h []Entry
	for i := 0; i < 4; i++ {
		h = Push(h, Entry{End: 99, Key: ids.GenerateTestID()})
	}
	seen := 0
	for len(h) > 0 {
		var e Entry
		e, h = Pop(h)
		require.Equal(int64(99), e.End)
		seen++
	}
	require.Equal(4, seen)
}
