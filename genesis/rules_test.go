// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultValid(t *testing.T) {
	require := require.New(t)
	require.NoError(Default().Validate())
}

func TestNewOverride(t *testing.T) {
	require := require.New(t)

	r, err := New([]byte(`{"maxUserReservations": 10, "cancelFeePct": 5}`))
	require.NoError(err)
	require.Equal(10, r.MaxUserReservations)
	require.Equal(uint64(5), r.CancelFeePct)
	// Untouched fields keep defaults.
	require.Equal(uint64(70), r.ProviderSharePct)
}

func TestNewRejectsBadShares(t *testing.T) {
	require := require.New(t)

	_, err := New([]byte(`{"providerSharePct": 90}`))
	require.ErrorIs(err, ErrInvalidShares)
}

func TestRequiredStakeMonotonic(t *testing.T) {
	require := require.New(t)

	r := Default()
	prev := uint64(0)
	for listed := uint64(0); listed < 10; listed++ {
		cur := r.RequiredStake(listed)
		require.GreaterOrEqual(cur, prev)
		prev = cur
	}
}
