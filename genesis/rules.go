// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"encoding/json"
	"fmt"

	"github.com/labx-protocol/labmarket/codec"
)

// Rules holds every protocol parameter of the reservation engine. All
// durations are milliseconds.
type Rules struct {
	// Admission parameters.
	ReservationMargin   int64 `json:"reservationMargin"`   // min lead time before start
	RequestWindow       int64 `json:"requestWindow"`       // pending request TTL
	MaxUserReservations int   `json:"maxUserReservations"` // per lab, per tracking key
	ReleaseHeadroom     int   `json:"releaseHeadroom"`     // sweep opportunistically at cap-headroom
	SweepBatchOnRequest int   `json:"sweepBatchOnRequest"`

	// Revenue split percentages. Provider+Treasury+Subsidies+Governance
	// must equal 100; the treasury share additionally absorbs rounding.
	ProviderSharePct   uint64 `json:"providerSharePct"`
	TreasurySharePct   uint64 `json:"treasurySharePct"`
	SubsidiesSharePct  uint64 `json:"subsidiesSharePct"`
	GovernanceSharePct uint64 `json:"governanceSharePct"`

	// Cancellation fee parameters.
	CancelFeePct uint64 `json:"cancelFeePct"`
	MinCancelFee uint64 `json:"minCancelFee"`

	// Stake gate.
	StakePerLab     uint64 `json:"stakePerLab"`
	UnstakeCooldown int64  `json:"unstakeCooldown"`

	// Batch bounds.
	MaxSweepBatch          int `json:"maxSweepBatch"`
	MaxCompactionSize      int `json:"maxCompactionSize"`
	CompactionThresholdPct int `json:"compactionThresholdPct"`
	MaxMigrationSize       int `json:"maxMigrationSize"`

	// Payout reclamation.
	OrphanDelay int64 `json:"orphanDelay"`

	// Signed check-in freshness window.
	CheckInFreshness int64 `json:"checkInFreshness"`

	// MaxPrice bounds reservation prices so that fee arithmetic
	// (price * pct) can never overflow a uint64.
	MaxPrice uint64 `json:"maxPrice"`

	// Global bucket recipients.
	TreasuryAddress   codec.Address `json:"treasuryAddress"`
	SubsidiesAddress  codec.Address `json:"subsidiesAddress"`
	GovernanceAddress codec.Address `json:"governanceAddress"`

	// Admin for orphan-payout recovery.
	AdminAddress codec.Address `json:"adminAddress"`
}

func Default() *Rules {
	return &Rules{
		ReservationMargin:   15 * 60 * 1000, // 15m
		RequestWindow:       24 * 60 * 60 * 1000,
		MaxUserReservations: 5,
		ReleaseHeadroom:     2,
		SweepBatchOnRequest: 8,

		ProviderSharePct:   70,
		TreasurySharePct:   15,
		SubsidiesSharePct:  10,
		GovernanceSharePct: 5,

		CancelFeePct: 3,
		MinCancelFee: 10_000,

		StakePerLab:     1_000_000_000,
		UnstakeCooldown: 7 * 24 * 60 * 60 * 1000,

		MaxSweepBatch:          64,
		MaxCompactionSize:      128,
		CompactionThresholdPct: 20,
		MaxMigrationSize:       64,

		OrphanDelay: 90 * 24 * 60 * 60 * 1000,

		CheckInFreshness: 5 * 60 * 1000,

		MaxPrice: 1 << 48,
	}
}

// New parses [b] on top of the defaults and validates the result.
func New(b []byte) (*Rules, error) {
	r := Default()
	if len(b) > 0 {
		if err := json.Unmarshal(b, r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rules %s: %w", string(b), err)
		}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rules) Validate() error {
	if r.ProviderSharePct+r.TreasurySharePct+r.SubsidiesSharePct+r.GovernanceSharePct != 100 {
		return ErrInvalidShares
	}
	if r.CancelFeePct > 100 {
		return ErrInvalidCancelFee
	}
	if r.ReservationMargin < 0 || r.RequestWindow <= 0 {
		return ErrInvalidWindow
	}
	if r.MaxUserReservations <= 0 || r.ReleaseHeadroom < 0 ||
		r.ReleaseHeadroom >= r.MaxUserReservations {
		return ErrInvalidCap
	}
	if r.MaxSweepBatch <= 0 || r.MaxCompactionSize <= 0 ||
		r.MaxMigrationSize <= 0 {
		return ErrInvalidBatch
	}
	if r.CompactionThresholdPct <= 0 || r.CompactionThresholdPct > 100 {
		return ErrInvalidBatch
	}
	if r.MaxPrice == 0 || r.MaxPrice > 1<<48 {
		return ErrInvalidMaxPrice
	}
	return nil
}

// RequiredStake is the collateral a provider must hold to keep
// [listed] labs listed. Monotonically non-decreasing in [listed].
func (r *Rules) RequiredStake(listed uint64) uint64 {
	return r.StakePerLab * listed
}
