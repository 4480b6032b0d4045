// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

var ErrURITooLong = errors.New("lab uri too long")

var (
	_ Action      = (*RegisterLab)(nil)
	_ codec.Typed = (*RegisterLabResult)(nil)
)

// RegisterLab mints a new lab asset to the caller and lists it.
type RegisterLab struct {
	URI          string `json:"uri"`
	AccessURI    string `json:"accessURI"`
	PricePerHour uint64 `json:"pricePerHour"`
}

func (*RegisterLab) GetTypeID() uint8 {
	return RegisterLabID
}

func (a *RegisterLab) Execute(
	ctx context.Context,
	env *Env,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if len(a.URI) > storage.MaxLabURILen || len(a.AccessURI) > storage.MaxLabURILen {
		return nil, ErrURITooLong
	}
	isProvider, err := env.Roles.HasRole(ctx, mu, actor, storage.RoleProvider)
	if err != nil {
		return nil, err
	}
	if !isProvider {
		return nil, ErrNotProvider
	}
	// The gate is checked against the prospective listed count before
	// the listing lands.
	if err := canList(ctx, env, mu, actor); err != nil {
		return nil, err
	}
	labID, err := storage.NextLabID(ctx, mu)
	if err != nil {
		return nil, err
	}
	lab := &storage.Lab{
		ID:           labID,
		URI:          a.URI,
		AccessURI:    a.AccessURI,
		PricePerHour: a.PricePerHour,
		CreatedAt:    timestamp,
		Listed:       true,
	}
	if err := storage.SetLab(ctx, mu, lab); err != nil {
		return nil, err
	}
	// Minting does not trigger ownership migration; only transfers
	// between two non-zero owners do.
	if err := env.Assets.Mint(ctx, mu, labID, actor); err != nil {
		return nil, err
	}
	if err := storage.IncListed(ctx, mu, actor); err != nil {
		return nil, err
	}
	env.log().Info("lab registered",
		zap.Uint64("lab", labID),
		zap.Stringer("owner", actor),
	)
	return &RegisterLabResult{LabID: labID}, nil
}

type RegisterLabResult struct {
	LabID uint64 `json:"labID"`
}

func (*RegisterLabResult) GetTypeID() uint8 {
	return RegisterLabID
}
