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

// Package enrich runs plugins over a fully-written graph to derive
// additional edges and metadata: linking call sites to their import
// bindings, annotating loop edges with cardinality, and whatever other
// ANALYSIS/ENRICHMENT plugin a caller registers with the runner.
package enrich

import (
	"github.com/grafema-dev/grafema/pkg/nodes"
	"github.com/grafema-dev/grafema/pkg/store"
)

// Phase identifies which half of the run a plugin belongs to: ANALYSIS
// plugins write primary nodes alongside the visitor/builder pass,
// ENRICHMENT plugins read and write only edges and metadata once the
// graph is complete.
type Phase string

const (
	Analysis   Phase = "ANALYSIS"
	Enrichment Phase = "ENRICHMENT"
)

// ProgressEvent is the payload a plugin's OnProgress callback receives.
type ProgressEvent struct {
	Phase          string
	CurrentPlugin  string
	Message        string
	TotalFiles     int
	ProcessedFiles int
}

// PluginContext is everything Execute needs: the store to read and write
// against, the project root on disk, plugin-specific config, and an
// optional progress callback. OnProgress must be fast and non-blocking —
// plugins throttle their own call rate rather than relying on the caller
// to debounce.
type PluginContext struct {
	Graph       store.GraphStore
	ProjectPath string
	Config      any
	OnProgress  func(ProgressEvent)
}

// PluginResult is what Execute returns: whether the plugin succeeded,
// free-form counters for the run summary (nodesCreated, edgesCreated,
// handledByEdgesCreated, ignoredLoops, ...), and any non-fatal errors
// encountered along the way.
type PluginResult struct {
	Success  bool
	Metadata map[string]any
	Errors   []string
}

// Plugin is one step of the enrichment pipeline. Dependencies names other
// plugins (by Name) that must run, and succeed, before this one can.
type Plugin interface {
	Name() string
	Phase() Phase
	Dependencies() []string
	Consumes() []nodes.EdgeType
	Produces() []nodes.EdgeType
	Execute(ctx PluginContext) PluginResult
}
