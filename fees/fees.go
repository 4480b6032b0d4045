// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fees implements the deterministic integer apportionment of
// reservation prices and cancellation penalties. All arithmetic is
// multiply-before-divide on uint64; callers bound price by
// [genesis.Rules.MaxPrice] so no intermediate product can overflow.
package fees

// Shares is the confirmation-time split of a reservation price. The
// four shares always sum exactly to the price that produced them.
type Shares struct {
	Provider   uint64 `json:"provider"`
	Treasury   uint64 `json:"treasury"`
	Subsidies  uint64 `json:"subsidies"`
	Governance uint64 `json:"governance"`
}

// Split apportions [price] by the given integer percentages. The
// rounding remainder is assigned to the treasury share, so
// Provider+Treasury+Subsidies+Governance == price.
func Split(price uint64, providerPct uint64, subsidiesPct uint64, governancePct uint64) Shares {
	provider := price * providerPct / 100
	subsidies := price * subsidiesPct / 100
	governance := price * governancePct / 100
	return Shares{
		Provider:   provider,
		Treasury:   price - provider - subsidies - governance,
		Subsidies:  subsidies,
		Governance: governance,
	}
}

// Total returns the sum of all four shares.
func (s Shares) Total() uint64 {
	return s.Provider + s.Treasury + s.Subsidies + s.Governance
}

// Cancellation is the outcome of cancelling a confirmed booking:
// Refund + ProviderFee + TreasuryFee + GovernanceFee == price.
type Cancellation struct {
	ProviderFee   uint64 `json:"providerFee"`
	TreasuryFee   uint64 `json:"treasuryFee"`
	GovernanceFee uint64 `json:"governanceFee"`
	Refund        uint64 `json:"refund"`
}

// Cancel computes the cancellation fee for [price]: feePct percent,
// floored at [minFee] and clamped to never exceed price. The fee is
// split into equal thirds with the remainder going to governance.
func Cancel(price uint64, feePct uint64, minFee uint64) Cancellation {
	fee := price * feePct / 100
	if fee < minFee {
		fee = minFee
	}
	if fee > price {
		fee = price
	}
	third := fee / 3
	return Cancellation{
		ProviderFee:   third,
		TreasuryFee:   third,
		GovernanceFee: fee - 2*third,
		Refund:        price - fee,
	}
}

// TotalFee returns the sum of the three fee components.
func (c Cancellation) TotalFee() uint64 {
	return c.ProviderFee + c.TreasuryFee + c.GovernanceFee
}
