// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import "errors"

var (
	ErrInvalidShares    = errors.New("revenue share percentages must sum to 100")
	ErrInvalidCancelFee = errors.New("cancellation fee percentage exceeds 100")
	ErrInvalidWindow    = errors.New("invalid margin or request window")
	ErrInvalidCap       = errors.New("invalid reservation cap or headroom")
	ErrInvalidBatch     = errors.New("invalid batch bound")
	ErrInvalidMaxPrice  = errors.New("invalid max price")
)
