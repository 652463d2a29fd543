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

package enrich

import (
	"fmt"
	"log/slog"
	"time"
)

// RunResult is the per-plugin outcome of one Runner.Run call, in the
// order plugins actually executed (topological, not registration order).
type RunResult struct {
	Plugin string
	Result PluginResult
	Err    error
}

// Runner topologically sorts a set of plugins by their declared
// Dependencies and executes them in sequence, logging each stage the way
// the teacher's LocalPipeline.Run logs its fixed five-step pipeline
// (named "phase.step" events with a duration on completion) generalized
// to an arbitrary plugin DAG.
type Runner struct {
	logger *slog.Logger
}

// NewRunner returns a Runner that logs to logger, or slog.Default() when
// logger is nil.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Run executes plugins in dependency order against ctx. A plugin whose
// Execute call errors, or whose result has Success == false, marks every
// transitive dependent as skipped (never executed) while independent
// plugins still run — one enricher's failure does not abort the pipeline.
func (r *Runner) Run(plugins []Plugin, ctx PluginContext) ([]RunResult, error) {
	order, err := topoSort(plugins)
	if err != nil {
		return nil, err
	}

	failed := make(map[string]bool)
	results := make([]RunResult, 0, len(order))

	for _, p := range order {
		if dependsOnFailed(p, failed) {
			failed[p.Name()] = true
			r.logger.Warn("enrich.plugin.skipped", "plugin", p.Name(), "phase", string(p.Phase()))
			continue
		}

		r.logger.Info("enrich.plugin.start", "plugin", p.Name(), "phase", string(p.Phase()))
		start := time.Now()

		res := safeExecute(p, ctx)

		duration := time.Since(start)
		if !res.Success {
			failed[p.Name()] = true
			r.logger.Error("enrich.plugin.failed", "plugin", p.Name(), "errors", res.Errors, "duration_ms", duration.Milliseconds())
		} else {
			r.logger.Info("enrich.plugin.complete", "plugin", p.Name(), "metadata", res.Metadata, "duration_ms", duration.Milliseconds())
		}

		results = append(results, RunResult{Plugin: p.Name(), Result: res})
	}

	return results, nil
}

// safeExecute recovers a panicking plugin into a failed PluginResult so
// one plugin's bug cannot bring down the whole enrichment run.
func safeExecute(p Plugin, ctx PluginContext) (res PluginResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = PluginResult{Success: false, Errors: []string{fmt.Sprintf("panic: %v", rec)}}
		}
	}()
	return p.Execute(ctx)
}

func dependsOnFailed(p Plugin, failed map[string]bool) bool {
	for _, dep := range p.Dependencies() {
		if failed[dep] {
			return true
		}
	}
	return false
}

// topoSort orders plugins so every plugin follows all of its
// Dependencies, detecting both cycles and references to undeclared
// plugin names.
func topoSort(plugins []Plugin) ([]Plugin, error) {
	byName := make(map[string]Plugin, len(plugins))
	for _, p := range plugins {
		byName[p.Name()] = p
	}

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(plugins))
	var order []Plugin

	var visit func(p Plugin) error
	visit = func(p Plugin) error {
		switch state[p.Name()] {
		case visited:
			return nil
		case visiting:
			return fmt.Errorf("enrich: dependency cycle detected at plugin %q", p.Name())
		}
		state[p.Name()] = visiting
		for _, depName := range p.Dependencies() {
			dep, ok := byName[depName]
			if !ok {
				return fmt.Errorf("enrich: plugin %q depends on unregistered plugin %q", p.Name(), depName)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[p.Name()] = visited
		order = append(order, p)
		return nil
	}

	for _, p := range plugins {
		if err := visit(p); err != nil {
			return nil, err
		}
	}
	return order, nil
}
