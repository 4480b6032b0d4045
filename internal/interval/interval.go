// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interval

import (
	"errors"
	"sort"
)

var (
	ErrOverlap  = errors.New("interval overlaps an existing entry")
	ErrNotFound = errors.New("interval not found")
	ErrInvalid  = errors.New("interval start must be before end")
)

// Interval is a half-open [Start, End) booking window.
type Interval struct {
	Start int64
	End   int64
}

// search returns the index of the first interval in [set] whose start
// is >= [start]. [set] must be sorted by start.
func search(set []Interval, start int64) int {
	return sort.Search(len(set), func(i int) bool {
		return set[i].Start >= start
	})
}

// Overlaps reports whether [start, end) collides with any interval in
// [set]. [set] must be sorted by start and internally non-overlapping,
// so only the two neighbors of the insertion point need checking.
func Overlaps(set []Interval, start int64, end int64) bool {
	i := search(set, start)
	if i < len(set) && set[i].Start < end {
		return true
	}
	if i > 0 && set[i-1].End > start {
		return true
	}
	return false
}

// Insert adds [start, end) to [set], keeping it sorted by start.
// Returns ErrOverlap if the new interval collides with an existing
// one and ErrInvalid if the interval is empty or inverted.
func Insert(set []Interval, start int64, end int64) ([]Interval, error) {
	if start >= end {
		return set, ErrInvalid
	}
	if Overlaps(set, start, end) {
		return set, ErrOverlap
	}
	i := search(set, start)
	set = append(set, Interval{})
	copy(set[i+1:], set[i:])
	set[i] = Interval{Start: start, End: end}
	return set, nil
}

// Remove deletes the interval keyed by [start]. Callers must only
// remove intervals they know exist; an absent start is an error.
func Remove(set []Interval, start int64) ([]Interval, error) {
	i := search(set, start)
	if i >= len(set) || set[i].Start != start {
		return set, ErrNotFound
	}
	return append(set[:i], set[i+1:]...), nil
}
