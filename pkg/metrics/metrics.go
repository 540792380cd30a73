/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package metrics counts workflow outcomes. The client is a short lived
// process, so metrics are written to a file for the node exporter textfile
// collector rather than served.
package metrics

import (
	"time"

	"github.com/hyperledger/fabric-library-app/pkg/common/status"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

// OutcomeOK labels successful runs.
const OutcomeOK = "ok"

// Metrics of one process.
type Metrics struct {
	registry            *prometheus.Registry
	transactionsTotal   *prometheus.CounterVec
	transactionDuration *prometheus.HistogramVec
	provisionsTotal     *prometheus.CounterVec
}

// New registers the metrics with a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		transactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Total number of transactions by name and outcome",
			},
			[]string{"transaction", "outcome"},
		),
		transactionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transaction_duration_seconds",
				Help:      "Transaction duration in seconds, including connect and commit",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
			},
			[]string{"transaction"},
		),
		provisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provisions_total",
				Help:      "Total number of user provisioning runs by terminal state",
			},
			[]string{"state", "outcome"},
		),
	}
}

// Outcome of err as a label value, the error kind or OutcomeOK.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	return status.KindOf(err).String()
}

// ObserveTransaction records a finished transaction.
func (m *Metrics) ObserveTransaction(transaction string, elapsed time.Duration, err error) {
	m.transactionsTotal.WithLabelValues(transaction, Outcome(err)).Inc()
	m.transactionDuration.WithLabelValues(transaction).Observe(elapsed.Seconds())
}

// ObserveProvision records a finished provisioning run.
func (m *Metrics) ObserveProvision(state string, err error) {
	m.provisionsTotal.WithLabelValues(state, Outcome(err)).Inc()
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteToTextfile writes the metrics in the text exposition format. The file
// is replaced atomically.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}
	return nil
}
