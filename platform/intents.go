// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var _ market.IntentRegistry = (*Intents)(nil)

// Intents is the replay-protected pre-authorization registry.
type Intents struct{}

func (Intents) Consume(ctx context.Context, mu state.Mutable, requestID ids.ID, tag uint8, payload ids.ID, executor codec.Address) error {
	return storage.ConsumeIntent(ctx, mu, requestID, tag, payload, executor)
}
