// Copyright 2025 Agrilink Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ledgerMetrics struct {
	mutationsTotal      prometheus.Counter
	mutationErrorsTotal prometheus.Counter
	eventsAppendedTotal prometheus.Counter
	mutationLatency     prometheus.Histogram
	outboxSeq           prometheus.Gauge
}

func (m *ledgerMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.mutationsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "sarson_ledger_mutations_total",
		Help: "total committed ledger mutations",
	})
	m.mutationErrorsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "sarson_ledger_mutation_errors_total",
		Help: "total rejected or failed ledger mutations",
	})
	m.eventsAppendedTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "sarson_ledger_events_appended_total",
		Help: "total events appended to the outbox",
	})
	m.mutationLatency = promautoFactory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sarson_ledger_mutation_latency_seconds",
			Help:    "latency of ledger mutations including commit",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
	)
	m.outboxSeq = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "sarson_ledger_outbox_seq",
		Help: "next event outbox sequence number",
	})
}
