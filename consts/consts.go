// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	IDLen     = 32
	ByteLen   = 1
	BoolLen   = 1
	Uint16Len = 2
	Uint32Len = 4
	Uint64Len = 8
	Int64Len  = 8

	// MillisecondsPerHour converts a reservation duration into the
	// price-per-hour billing unit.
	MillisecondsPerHour = 60 * 60 * 1000
)
