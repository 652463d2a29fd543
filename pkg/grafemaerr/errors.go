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

// Package grafemaerr defines the typed error kinds the core engine raises,
// distinguishing recoverable errors (absorbed and recorded in plugin
// metadata) from unrecoverable ones (surfaced to the orchestrator, which
// halts the run).
package grafemaerr

import "fmt"

// ValidationError reports a factory rejecting invalid input: a missing
// required field, or line === undefined. Recoverable: aborts analysis for
// the offending file, not the run.
type ValidationError struct {
	NodeType string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s.%s: %s", e.NodeType, e.Field, e.Reason)
}

// UnresolvedReferenceError reports a call, import, or type reference that
// could not be resolved to any in-graph entity. Always handled locally —
// this type exists for logging/metadata, never returned across a plugin
// boundary as a fatal error.
type UnresolvedReferenceError struct {
	Kind string // "call", "import", "type", "variable"
	Name string
	File string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved %s reference %q in %s", e.Kind, e.Name, e.File)
}

// UnknownEdgeType reports an edge insertion naming a type outside
// KNOWN_EDGE_TYPES. The edge insertion fails; the pipeline continues.
type UnknownEdgeType struct {
	Attempted string
}

func (e *UnknownEdgeType) Error() string {
	return fmt.Sprintf("unknown edge type %q", e.Attempted)
}

// PluginFailure reports a plugin that panicked or returned an error during
// execute(). The plugin's result is marked unsuccessful; dependent plugins
// are skipped; independent plugins continue.
type PluginFailure struct {
	Plugin string
	Cause  error
}

func (e *PluginFailure) Error() string {
	return fmt.Sprintf("plugin %q failed: %v", e.Plugin, e.Cause)
}

func (e *PluginFailure) Unwrap() error { return e.Cause }

// LockTimeout reports analysis-lock acquisition exceeding its deadline.
// Unrecoverable: surfaces to the orchestrator and halts the run.
type LockTimeout struct {
	Project string
	Waited  string
}

func (e *LockTimeout) Error() string {
	return fmt.Sprintf("lock timeout acquiring analysis lock for %q after %s", e.Project, e.Waited)
}

// StoreUnavailable reports a graph store connection failure. Unrecoverable:
// aborts the pipeline with a top-level error.
type StoreUnavailable struct {
	Cause error
}

func (e *StoreUnavailable) Error() string {
	return fmt.Sprintf("graph store unavailable: %v", e.Cause)
}

func (e *StoreUnavailable) Unwrap() error { return e.Cause }
