// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/aether/utils/wrappers"
)

// ConsensusMetrics are the per-validator counters and gauges the state
// machine emits, per SPEC_FULL §3's domain-stack entry for
// prometheus/client_golang.
type ConsensusMetrics struct {
	CertifiedVertices prometheus.Counter
	QuorumShortfalls  prometheus.Counter
	BatchVerifyFailures prometheus.Counter
	RoundsSkipped     prometheus.Counter

	Drift              prometheus.Gauge
	InFlightVerifications prometheus.Gauge
}

// NewConsensusMetrics registers the consensus counters and gauges against
// reg. Registration errors are collected rather than returned on the first
// failure, matching the teacher's NewAveragerWithErrs idiom (utils/wrappers.Errs):
// a bad registration doesn't prevent the rest from reporting theirs.
func NewConsensusMetrics(reg prometheus.Registerer) (*ConsensusMetrics, error) {
	m := &ConsensusMetrics{
		CertifiedVertices: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aether_certified_vertices_total",
			Help: "Total number of vertices promoted to certified.",
		}),
		QuorumShortfalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aether_quorum_shortfalls_total",
			Help: "Total number of aggregate attempts below quorum.",
		}),
		BatchVerifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aether_batch_verify_failures_total",
			Help: "Total number of batched verifications that failed and required isolation.",
		}),
		RoundsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aether_rounds_skipped_total",
			Help: "Total number of rounds bypassed via a skip certificate.",
		}),
		Drift: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aether_drift",
			Help: "Current round minus committed round.",
		}),
		InFlightVerifications: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aether_inflight_verifications",
			Help: "Number of vertex hashes currently awaiting aggregate verification.",
		}),
	}

	collectors := []prometheus.Collector{
		m.CertifiedVertices, m.QuorumShortfalls, m.BatchVerifyFailures,
		m.RoundsSkipped, m.Drift, m.InFlightVerifications,
	}
	var errs wrappers.Errs
	for _, c := range collectors {
		errs.Add(reg.Register(c))
	}
	if errs.Errored() {
		return nil, errs.Err()
	}
	return m, nil
}
