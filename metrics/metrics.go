// Copyright (C) 2019-2024 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

// Package metrics exposes node-internal counters and gauges (mempool depth,
// transactions admitted, blocks committed, consensus role) over a
// Prometheus-format HTTP endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric this node exports, registered against a
// private prometheus.Registry rather than the global DefaultRegisterer so
// multiple nodes can run in the same test process without collisions.
type Registry struct {
	reg *prometheus.Registry

	TransactionsAdmitted prometheus.Counter
	TransactionsRejected *prometheus.CounterVec
	MempoolDepth         prometheus.Gauge
	BlocksCommitted      prometheus.Counter
	BlockAssemblyLatency prometheus.Histogram
	ConsensusRole        *prometheus.GaugeVec
	QuorumRoundFailures  prometheus.Counter
	SyncRollbacks        prometheus.Counter
}

// New constructs and registers a fresh Registry.
func New() *Registry {
	reg := prometheus.NewRegistry()
	m := &Registry{
		reg: reg,
		TransactionsAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atlasdb_mempool_transactions_admitted_total",
			Help: "Total number of transactions admitted into the mempool.",
		}),
		TransactionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atlasdb_mempool_transactions_rejected_total",
			Help: "Total number of transactions rejected at admission, by error kind.",
		}, []string{"kind"}),
		MempoolDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "atlasdb_mempool_depth",
			Help: "Current number of pending transactions in the mempool.",
		}),
		BlocksCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atlasdb_blocks_committed_total",
			Help: "Total number of blocks committed by this node.",
		}),
		BlockAssemblyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "atlasdb_block_assembly_seconds",
			Help:    "Time spent assembling a candidate block, from mempool selection to signed header.",
			Buckets: prometheus.DefBuckets,
		}),
		ConsensusRole: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "atlasdb_consensus_role",
			Help: "1 if this node currently holds the named role (follower, candidate, leader), else 0.",
		}, []string{"role"}),
		QuorumRoundFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atlasdb_consensus_round_failures_total",
			Help: "Total number of proposal rounds that failed to reach quorum before timing out.",
		}),
		SyncRollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atlasdb_consensus_sync_rollbacks_total",
			Help: "Total number of blocks reverted during fork-recovery rollback.",
		}),
	}
	reg.MustRegister(
		m.TransactionsAdmitted,
		m.TransactionsRejected,
		m.MempoolDepth,
		m.BlocksCommitted,
		m.BlockAssemblyLatency,
		m.ConsensusRole,
		m.QuorumRoundFailures,
		m.SyncRollbacks,
	)
	return m
}

// SetRole zeroes every known role gauge and sets active to 1, so the
// exported atlasdb_consensus_role series always shows exactly one role at
// weight 1 for a given node.
func (m *Registry) SetRole(active string) {
	for _, role := range []string{"follower", "candidate", "leader"} {
		v := 0.0
		if role == active {
			v = 1.0
		}
		m.ConsensusRole.WithLabelValues(role).Set(v)
	}
}

// Handler returns the http.Handler serving this registry's metrics in
// Prometheus text exposition format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
