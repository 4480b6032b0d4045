// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	requests      prometheus.Counter
	confirmations prometheus.Counter
	denials       prometheus.Counter
	cancellations prometheus.Counter
	checkIns      prometheus.Counter
	completions   prometheus.Counter
	collected     prometheus.Counter
	sweptEntries  prometheus.Counter
	compactions   prometheus.Counter
	migrations    prometheus.Counter
	payoutVolume  prometheus.Counter
	feeVolume     prometheus.Counter
}

func NewMetrics(r prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "requests",
			Help:      "number of reservation requests admitted",
		}),
		confirmations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "confirmations",
			Help:      "number of reservations confirmed",
		}),
		denials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "denials",
			Help:      "number of reservations denied or auto-cancelled at confirmation",
		}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "cancellations",
			Help:      "number of reservations cancelled",
		}),
		checkIns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "check_ins",
			Help:      "number of successful check-ins",
		}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "completions",
			Help:      "number of reservations marked completed",
		}),
		collected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "collected",
			Help:      "number of reservations finalized for payout",
		}),
		sweptEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "swept_entries",
			Help:      "number of index entries processed by expiry sweeps",
		}),
		compactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "heap_compactions",
			Help:      "number of payout heap compactions",
		}),
		migrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "ownership_migrations",
			Help:      "number of completed ownership migrations",
		}),
		payoutVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "payout_volume",
			Help:      "total value released to providers",
		}),
		feeVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "market",
			Name:      "fee_volume",
			Help:      "total cancellation fees collected",
		}),
	}
	errs := []error{}
	for _, c := range []prometheus.Collector{
		m.requests, m.confirmations, m.denials, m.cancellations,
		m.checkIns, m.completions, m.collected, m.sweptEntries,
		m.compactions, m.migrations, m.payoutVolume, m.feeVolume,
	} {
		if err := r.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return m, nil
}

// The engine runs with a nil *Metrics in tests, so every recorder is
// nil-safe.

func (m *Metrics) recordRequest() {
	if m != nil {
		m.requests.Inc()
	}
}

func (m *Metrics) recordConfirmation() {
	if m != nil {
		m.confirmations.Inc()
	}
}

func (m *Metrics) recordDenial() {
	if m != nil {
		m.denials.Inc()
	}
}

func (m *Metrics) recordCancellation() {
	if m != nil {
		m.cancellations.Inc()
	}
}

func (m *Metrics) recordCheckIn() {
	if m != nil {
		m.checkIns.Inc()
	}
}

func (m *Metrics) recordCompletion() {
	if m != nil {
		m.completions.Inc()
	}
}

func (m *Metrics) recordCollected() {
	if m != nil {
		m.collected.Inc()
	}
}

func (m *Metrics) recordSwept(n int) {
	if m != nil {
		m.sweptEntries.Add(float64(n))
	}
}

func (m *Metrics) recordCompaction() {
	if m != nil {
		m.compactions.Inc()
	}
}

func (m *Metrics) recordMigration() {
	if m != nil {
		m.migrations.Inc()
	}
}

func (m *Metrics) recordPayout(amount uint64) {
	if m != nil {
		m.payoutVolume.Add(float64(amount))
	}
}

func (m *Metrics) recordFees(amount uint64) {
	if m != nil {
		m.feeVolume.Add(float64(amount))
	}
}
