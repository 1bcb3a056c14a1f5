// Copyright 2025 Google LLC
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

// Package metrics exposes per-command Prometheus counters and latency
// histograms, following the teacher's common/oc_metrics.go pattern of one
// CounterVec/HistogramVec labeled by command name and outcome.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal counts every dispatched command, labeled by command
	// name and outcome ("ok" or "error").
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vfsengine",
		Name:      "commands_total",
		Help:      "Total number of FS.* commands dispatched.",
	}, []string{"command", "outcome"})

	// CommandDuration observes dispatch latency per command name.
	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vfsengine",
		Name:      "command_duration_seconds",
		Help:      "Latency of FS.* command dispatch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})

	// KeysResident tracks how many filesystem keys are currently
	// materialized in the registry.
	KeysResident = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vfsengine",
		Name:      "keys_resident",
		Help:      "Number of filesystem keys currently held in memory.",
	})
)

// Observe records one command's outcome and latency. Call via:
//
//	defer metrics.Observe(name, time.Now())(&err)
func Observe(command string, start time.Time) func(errp *error) {
	return func(errp *error) {
		outcome := "ok"
		if errp != nil && *errp != nil {
			outcome = "error"
		}
		CommandsTotal.WithLabelValues(command, outcome).Inc()
		CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
	}
}
