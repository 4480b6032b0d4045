// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var (
	_ Action      = (*SetListing)(nil)
	_ codec.Typed = (*SetListingResult)(nil)
)

// SetListing lists or unlists a lab. Listing re-checks the stake gate
// against the prospective count; unlisting always succeeds and floors
// the listed count at zero.
type SetListing struct {
	LabID  uint64 `json:"labID"`
	Listed bool   `json:"listed"`
}

func (*SetListing) GetTypeID() uint8 {
	return SetListingID
}

func (a *SetListing) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	lab, err := storage.GetLab(ctx, mu, a.LabID)
	if err != nil {
		return nil, err
	}
	owner, err := ownerOf(ctx, env, mu, a.LabID)
	if err != nil {
		return nil, err
	}
	if actor != owner {
		return nil, ErrUnauthorized
	}
	if lab.Listed == a.Listed {
		return &SetListingResult{Listed: lab.Listed}, nil
	}
	if a.Listed {
		if err := canList(ctx, env, mu, actor); err != nil {
			return nil, err
		}
		if err := storage.IncListed(ctx, mu, actor); err != nil {
			return nil, err
		}
	} else {
		if err := storage.DecListed(ctx, mu, actor); err != nil {
			return nil, err
		}
	}
	lab.Listed = a.Listed
	if err := storage.SetLab(ctx, mu, lab); err != nil {
		return nil, err
	}
	return &SetListingResult{Listed: lab.Listed}, nil
}

type SetListingResult struct {
	Listed bool `json:"listed"`
}

func (*SetListingResult) GetTypeID() uint8 {
	return SetListingID
}
