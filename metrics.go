/*
Copyright © 2018 the InMAP authors.
This file is part of cmorph.

cmorph is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

cmorph is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with cmorph.  If not, see <http://www.gnu.org/licenses/>.
*/

package cmorph

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "cmorph"

// Metrics holds the Prometheus counters and gauges for an ingest run.
type Metrics struct {
	MonthsWritten prometheus.Counter
	DailyFiles    prometheus.Counter
	EmptyMonths   prometheus.Counter
	FilesRemoved  prometheus.Counter

	RunDuration prometheus.Gauge
	LastSuccess prometheus.Gauge
}

// NewMetrics creates the ingest metrics and registers them with reg.
// If reg is nil the metrics are not registered, which is useful
// for testing.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MonthsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "months_written_total",
			Help:      "Monthly records written to the output dataset.",
		}),
		DailyFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "daily_files_read_total",
			Help:      "Daily grid files decoded and summed.",
		}),
		EmptyMonths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "empty_months_total",
			Help:      "Months for which no daily grid files were found.",
		}),
		FilesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "files_removed_total",
			Help:      "Retrieved daily grid files removed after use.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the most recent ingest run.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time at which the most recent successful run finished.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.MonthsWritten,
			m.DailyFiles,
			m.EmptyMonths,
			m.FilesRemoved,
			m.RunDuration,
			m.LastSuccess,
		)
	}
	return m
}
