// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the Prometheus instrumentation for one analysis
// run: file counts, node/edge totals, plugin outcomes, and the
// durations spec.md §5 calls out (lock wait time, total run time).
// Grounded on the teacher's pkg/ingestion/metrics.go metricsIngestion
// struct (a once-registered bundle of Counter/Histogram fields behind a
// package-level singleton), generalized from the teacher's fixed
// five-step delta/embed/write pipeline to the discover/ANALYSIS/
// ENRICHMENT staging this module runs.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Recorder is the analysis subsystem's Prometheus instrumentation. Use
// New to build one against a specific registry (tests use a private
// registry so repeated runs don't collide on prometheus.DefaultRegisterer),
// or Default for the package-level singleton registered against
// prometheus.DefaultRegisterer exactly once.
type Recorder struct {
	filesDiscovered prometheus.Counter
	filesAnalyzed   prometheus.Counter
	parseErrors     prometheus.Counter

	nodesCreated prometheus.Counter
	edgesCreated prometheus.Counter

	pluginSuccess prometheus.Counter
	pluginFailed  prometheus.Counter
	pluginSkipped prometheus.Counter

	lockWaits   prometheus.Counter
	lockTimeout prometheus.Counter

	lockWaitDuration prometheus.Histogram
	analysisDuration prometheus.Histogram
	runDuration      prometheus.Histogram
}

// New builds a Recorder and registers its collectors against reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		filesDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grafema_files_discovered_total", Help: "Source files found during discovery",
		}),
		filesAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grafema_files_analyzed_total", Help: "Source files successfully parsed and built",
		}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grafema_parse_errors_total", Help: "Files that failed to parse or build",
		}),
		nodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grafema_nodes_created_total", Help: "Graph nodes written to the store",
		}),
		edgesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grafema_edges_created_total", Help: "Graph edges written to the store",
		}),
		pluginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grafema_plugin_success_total", Help: "Enrichment plugin executions that succeeded",
		}),
		pluginFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grafema_plugin_failed_total", Help: "Enrichment plugin executions that failed",
		}),
		pluginSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grafema_plugin_skipped_total", Help: "Enrichment plugins skipped due to a failed dependency",
		}),
		lockWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grafema_lock_waits_total", Help: "Analysis requests that had to wait for the project lock",
		}),
		lockTimeout: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grafema_lock_timeouts_total", Help: "Analysis requests that gave up waiting for the project lock",
		}),
		lockWaitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "grafema_lock_wait_seconds", Help: "Time spent waiting to acquire the analysis lock", Buckets: durationBuckets,
		}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "grafema_analysis_seconds", Help: "Duration of the discover+parse+build phase", Buckets: durationBuckets,
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "grafema_run_seconds", Help: "Total duration of one Orchestrator.Run call", Buckets: durationBuckets,
		}),
	}

	reg.MustRegister(
		r.filesDiscovered, r.filesAnalyzed, r.parseErrors,
		r.nodesCreated, r.edgesCreated,
		r.pluginSuccess, r.pluginFailed, r.pluginSkipped,
		r.lockWaits, r.lockTimeout,
		r.lockWaitDuration, r.analysisDuration, r.runDuration,
	)
	return r
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// Default returns the package-level Recorder, registered against
// prometheus.DefaultRegisterer exactly once.
func Default() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = New(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

func (r *Recorder) AddFilesDiscovered(n int) { r.filesDiscovered.Add(float64(n)) }
func (r *Recorder) AddFilesAnalyzed(n int)   { r.filesAnalyzed.Add(float64(n)) }
func (r *Recorder) AddParseErrors(n int)     { r.parseErrors.Add(float64(n)) }

func (r *Recorder) AddNodesCreated(n int) { r.nodesCreated.Add(float64(n)) }
func (r *Recorder) AddEdgesCreated(n int) { r.edgesCreated.Add(float64(n)) }

// RecordPlugin tallies one plugin's outcome: succeeded, failed outright,
// or skipped because a dependency failed first.
func (r *Recorder) RecordPlugin(succeeded, skipped bool) {
	switch {
	case skipped:
		r.pluginSkipped.Inc()
	case succeeded:
		r.pluginSuccess.Inc()
	default:
		r.pluginFailed.Inc()
	}
}

// RecordLockWait records that a caller had to wait for the analysis
// lock, and for how long.
func (r *Recorder) RecordLockWait(seconds float64) {
	r.lockWaits.Inc()
	r.lockWaitDuration.Observe(seconds)
}

func (r *Recorder) RecordLockTimeout() { r.lockTimeout.Inc() }

func (r *Recorder) ObserveAnalysisDuration(seconds float64) { r.analysisDuration.Observe(seconds) }
func (r *Recorder) ObserveRunDuration(seconds float64)      { r.runDuration.Observe(seconds) }
