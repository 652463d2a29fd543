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

// Package orchestrator drives one end-to-end analysis run: discover source
// files, parse and build the graph, flush, run enrichment plugins, flush
// again. Grounded throughout on the teacher's LocalPipeline.Run
// (pkg/ingestion/local_pipeline.go) — the same discover/parse/resolve/
// write staging, logged the same way, generalized from a fixed ingestion
// pipeline into discover -> ANALYSIS -> flush -> ENRICHMENT -> flush.
package orchestrator

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/grafema-dev/grafema/pkg/builder"
	"github.com/grafema-dev/grafema/pkg/enrich"
	"github.com/grafema-dev/grafema/pkg/grafemaerr"
	"github.com/grafema-dev/grafema/pkg/metrics"
	"github.com/grafema-dev/grafema/pkg/store"
	"github.com/grafema-dev/grafema/pkg/visitor"
)

// Config configures one Run call.
type Config struct {
	ProjectPath      string
	ProjectID        string
	ExcludeGlobs     []string
	MaxFileSizeBytes int64
	ParseWorkers     int
	Plugins          []enrich.Plugin
	PluginConfig     any
	OnProgress       func(enrich.ProgressEvent)
}

// AnalysisResult summarizes one run, the spec's renamed IngestionResult.
type AnalysisResult struct {
	ProjectID       string
	AlreadyAnalyzed bool
	FilesDiscovered int
	FilesAnalyzed   int
	ParseErrors     int
	NodesCreated    int
	EdgesCreated    int
	PluginResults   []enrich.RunResult
	Duration        time.Duration
}

// Orchestrator ties a GraphStore, an AnalysisLock, and a Parser/Builder
// pipeline together into Run.
type Orchestrator struct {
	store   store.GraphStore
	lock    *AnalysisLock
	parser  visitor.Parser
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// New returns an Orchestrator writing to g, guarded by a fresh
// AnalysisLock for projectID, instrumented against the package-level
// metrics.Default() recorder.
func New(g store.GraphStore, projectID string, logger *slog.Logger) *Orchestrator {
	return NewWithMetrics(g, projectID, logger, metrics.Default())
}

// NewWithMetrics is New with an explicit Recorder, so callers running
// several Orchestrators in one process (or in tests) can use a private
// registry instead of sharing the process-global one.
func NewWithMetrics(g store.GraphStore, projectID string, logger *slog.Logger, rec *metrics.Recorder) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:   g,
		lock:    NewAnalysisLock(projectID),
		parser:  visitor.NewTreeSitterParser(),
		logger:  logger,
		metrics: rec,
	}
}

// Run executes one full analysis per spec.md §4.7/§5. A force=true call
// against a lock already held by another run fails immediately
// (ErrForceWhileRunning) rather than waiting, because forcing implies
// clearing the store first.
func (o *Orchestrator) Run(ctx context.Context, cfg Config, force bool) (*AnalysisResult, error) {
	start := time.Now()
	lockWaitStart := time.Now()

	outcome, err := o.lock.Acquire(ctx, force)
	if waited := time.Since(lockWaitStart); waited > pollInterval {
		o.metrics.RecordLockWait(waited.Seconds())
	}
	if err != nil {
		if _, isTimeout := err.(*grafemaerr.LockTimeout); isTimeout {
			o.metrics.RecordLockTimeout()
		}
		return nil, err
	}
	if outcome == AlreadyAnalyzed {
		return &AnalysisResult{ProjectID: cfg.ProjectID, AlreadyAnalyzed: true, Duration: time.Since(start)}, nil
	}
	defer o.lock.Release()

	o.logger.Info("orchestrator.run.start", "project_id", cfg.ProjectID, "path", cfg.ProjectPath)

	if err := o.store.Clear(); err != nil {
		return nil, &grafemaerr.StoreUnavailable{Cause: err}
	}

	o.logger.Info("orchestrator.step.discover", "project_id", cfg.ProjectID)
	files, err := discoverFiles(cfg.ProjectPath, cfg.ExcludeGlobs, cfg.MaxFileSizeBytes)
	if err != nil {
		return nil, &grafemaerr.StoreUnavailable{Cause: err}
	}
	o.logger.Info("orchestrator.discover.complete", "files", len(files))
	o.metrics.AddFilesDiscovered(len(files))

	workers := cfg.ParseWorkers
	if workers <= 0 {
		workers = 4
	}

	o.logger.Info("orchestrator.step.analysis", "project_id", cfg.ProjectID, "file_count", len(files))
	analysisStart := time.Now()
	b := builder.New()
	parseErrors := o.parseFilesParallel(ctx, files, workers, b, cfg.OnProgress)
	o.metrics.ObserveAnalysisDuration(time.Since(analysisStart).Seconds())
	o.metrics.AddFilesAnalyzed(len(files) - parseErrors)
	o.metrics.AddParseErrors(parseErrors)
	o.logger.Info("orchestrator.analysis.complete",
		"files", len(files), "parse_errors", parseErrors, "pending_calls", len(b.PendingCalls()))

	for _, n := range b.Graph().Nodes() {
		if err := o.store.AddNode(n); err != nil {
			o.logger.Warn("orchestrator.store.add_node.error", "id", n.ID, "err", err)
			continue
		}
		o.metrics.AddNodesCreated(1)
	}
	for _, e := range b.Graph().Edges() {
		if err := o.store.AddEdge(e); err != nil {
			o.logger.Warn("orchestrator.store.add_edge.error", "src", e.Src, "dst", e.Dst, "err", err)
			continue
		}
		o.metrics.AddEdgesCreated(1)
	}
	if err := o.store.Flush(); err != nil {
		return nil, &grafemaerr.StoreUnavailable{Cause: err}
	}

	o.logger.Info("orchestrator.step.enrichment", "project_id", cfg.ProjectID, "plugin_count", len(cfg.Plugins))
	runner := enrich.NewRunner(o.logger)
	pluginResults, err := runner.Run(cfg.Plugins, enrich.PluginContext{
		Graph:       o.store,
		ProjectPath: cfg.ProjectPath,
		Config:      cfg.PluginConfig,
		OnProgress:  cfg.OnProgress,
	})
	if err != nil {
		return nil, err
	}
	for _, pr := range pluginResults {
		o.metrics.RecordPlugin(pr.Result.Success, false)
	}

	if err := o.store.Flush(); err != nil {
		return nil, &grafemaerr.StoreUnavailable{Cause: err}
	}

	nodeCount, err := o.store.NodeCount()
	if err != nil {
		return nil, &grafemaerr.StoreUnavailable{Cause: err}
	}
	edgeCount, err := o.store.EdgeCount()
	if err != nil {
		return nil, &grafemaerr.StoreUnavailable{Cause: err}
	}

	result := &AnalysisResult{
		ProjectID:       cfg.ProjectID,
		FilesDiscovered: len(files),
		FilesAnalyzed:   len(files) - parseErrors,
		ParseErrors:     parseErrors,
		NodesCreated:    nodeCount,
		EdgesCreated:    edgeCount,
		PluginResults:   pluginResults,
		Duration:        time.Since(start),
	}
	o.metrics.ObserveRunDuration(result.Duration.Seconds())
	o.logger.Info("orchestrator.run.complete",
		"project_id", cfg.ProjectID, "nodes", nodeCount, "edges", edgeCount,
		"duration_ms", result.Duration.Milliseconds())
	return result, nil
}

// parseFilesParallel parses files across numWorkers goroutines and merges
// every file's VisitorCollections into b sequentially (Builder is not
// safe for concurrent BuildFile calls — scope/name indexing assumes a
// single writer). Grounded on the teacher's LocalPipeline.parseFilesParallel
// (job channel + result channel + WaitGroup), generalized from producing
// flat entity slices to producing VisitorCollections consumed by the
// builder.
func (o *Orchestrator) parseFilesParallel(ctx context.Context, files []DiscoveredFile, numWorkers int, b *builder.Builder, onProgress func(enrich.ProgressEvent)) int {
	if len(files) == 0 {
		return 0
	}

	type parseOutcome struct {
		index int
		file  DiscoveredFile
		coll  *visitor.VisitorCollections
		err   error
	}

	jobs := make(chan int, len(files))
	results := make(chan parseOutcome, len(files))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				f := files[i]
				content, err := os.ReadFile(f.Path)
				if err != nil {
					results <- parseOutcome{index: i, file: f, err: err}
					continue
				}
				coll, err := o.parser.ParseFile(f.Rel, content)
				results <- parseOutcome{index: i, file: f, coll: coll, err: err}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]parseOutcome, len(files))
	for r := range results {
		outcomes[r.index] = r
	}

	errCount := 0
	processed := 0
	for _, r := range outcomes {
		processed++
		if onProgress != nil && (processed%10 == 0 || processed == len(files)) {
			onProgress(enrich.ProgressEvent{
				Phase: string(enrich.Analysis), Message: "parsing", TotalFiles: len(files), ProcessedFiles: processed,
			})
		}

		if r.err != nil {
			errCount++
			o.logger.Warn("orchestrator.parse_file.error", "path", r.file.Rel, "err", r.err)
			continue
		}
		if err := b.BuildFile(r.file.Rel, r.coll); err != nil {
			errCount++
			o.logger.Warn("orchestrator.build_file.error", "path", r.file.Rel, "err", err)
		}
	}
	return errCount
}
