// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package observability

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels shared by the counters below.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeBlocked   = "blocked"
	OutcomeSwallowed = "swallowed"
	OutcomeUsed      = "used"
	OutcomeAvailable = "available"
)

// Metrics contains the client-side Prometheus metrics for Quill.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SubmissionsTotal      *prometheus.CounterVec
	AuthChainsTotal       *prometheus.CounterVec
	UniquenessChecksTotal *prometheus.CounterVec
	StaleChecksDropped    *prometheus.CounterVec
}

// NewMetrics creates and registers Quill metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_submissions_total",
				Help: "Total number of form submit events by form and outcome",
			},
			[]string{"form", "outcome"},
		),
		AuthChainsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_auth_chains_total",
				Help: "Total number of credential exchange and hydration chains by flow and outcome",
			},
			[]string{"flow", "outcome"},
		),
		UniquenessChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_uniqueness_checks_total",
				Help: "Total number of remote uniqueness checks by field and outcome",
			},
			[]string{"field", "outcome"},
		),
		StaleChecksDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quill_stale_checks_dropped_total",
				Help: "Total number of uniqueness check responses discarded because the field changed",
			},
			[]string{"field"},
		),
	}

	reg.MustRegister(m.SubmissionsTotal)
	reg.MustRegister(m.AuthChainsTotal)
	reg.MustRegister(m.UniquenessChecksTotal)
	reg.MustRegister(m.StaleChecksDropped)

	return m
}

// RecordSubmission counts a submit event on a form.
func (m *Metrics) RecordSubmission(form, outcome string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(form, outcome).Inc()
}

// RecordAuthChain counts a completed login or signup chain.
func (m *Metrics) RecordAuthChain(flow, outcome string) {
	if m == nil {
		return
	}
	m.AuthChainsTotal.WithLabelValues(flow, outcome).Inc()
}

// RecordUniquenessCheck counts an applied uniqueness check result.
func (m *Metrics) RecordUniquenessCheck(field, outcome string) {
	if m == nil {
		return
	}
	m.UniquenessChecksTotal.WithLabelValues(field, outcome).Inc()
}

// RecordStaleCheck counts a discarded uniqueness check response.
func (m *Metrics) RecordStaleCheck(field string) {
	if m == nil {
		return
	}
	m.StaleChecksDropped.WithLabelValues(field).Inc()
}
