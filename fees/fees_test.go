// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fees

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitConservation(t *testing.T) {
	require := require.New(t)

	// Prices chosen to exercise every remainder class of /100.
	prices := []uint64{0, 1, 7, 99, 100, 101, 12345, 1_000_000, 1 << 48}
	for _, price := range prices {
		s := Split(price, 70, 10, 5)
		require.Equal(price, s.Total(), "price=%d", price)
		require.GreaterOrEqual(s.Treasury, price*15/100, "price=%d", price)
	}
}

func TestSplitExact(t *testing.T) {
	require := require.New(t)

	s := Split(1_000_000, 70, 10, 5)
	require.Equal(Shares{
		Provider:   700_000,
		Treasury:   150_000,
		Subsidies:  100_000,
		Governance: 50_000,
	}, s)
}

func TestCancelAboveMinimum(t *testing.T) {
	require := require.New(t)

	// 3% of 1,000,000 (6-decimal units) is 30,000, above the 10,000
	// minimum, split evenly.
	c := Cancel(1_000_000, 3, 10_000)
	require.Equal(uint64(10_000), c.ProviderFee)
	require.Equal(uint64(10_000), c.TreasuryFee)
	require.Equal(uint64(10_000), c.GovernanceFee)
	require.Equal(uint64(970_000), c.Refund)
}

func TestCancelMinimumClampedToPrice(t *testing.T) {
	require := require.New(t)

	// Price below the minimum fee: the whole price is consumed, with
	// the division remainder landing on governance.
	c := Cancel(100, 3, 10_000)
	require.Equal(uint64(100), c.TotalFee())
	require.Equal(uint64(0), c.Refund)
	require.Equal(uint64(33), c.ProviderFee)
	require.Equal(uint64(33), c.TreasuryFee)
	require.Equal(uint64(34), c.GovernanceFee)
}

func TestCancelConservation(t *testing.T) {
	require := require.New(t)

	for _, price := range []uint64{1, 2, 3, 100, 9_999, 10_000, 10_001, 333_334, 1 << 40} {
		c := Cancel(price, 3, 10_000)
		require.Equal(price, c.Refund+c.TotalFee(), "price=%d", price)
		expectedMin := uint64(10_000)
		if price < expectedMin {
			expectedMin = price
		}
		require.GreaterOrEqual(c.TotalFee(), expectedMin, "price=%d", price)
	}
}

func TestCancelZeroPrice(t *testing.T) {
	require := require.New(t)

	c := Cancel(0, 3, 10_000)
	require.Equal(uint64(0), c.TotalFee())
	require.Equal(uint64(0), c.Refund)
}
