// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

// Typed is implemented by action and result types that carry a
// registry type identifier.
type Typed interface {
	GetTypeID() uint8
}
