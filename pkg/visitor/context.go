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

package visitor

import "github.com/grafema-dev/grafema/pkg/semantic"

// AnalysisContext is the explicit, passed-by-reference state threaded
// through every handler call for one file, replacing the mutable
// visitor-instance fields (`this.scopeTracker`, per-kind counters) the
// teacher's extraction routines don't need but a stateful JS analyzer
// would carry. Counters live here, reset per file by NewAnalysisContext.
type AnalysisContext struct {
	File    string
	Content []byte
	Scope   *semantic.ScopeTracker
	Coll    *VisitorCollections

	// discriminators assigns the next sibling discriminator for
	// (parentScopePath, kind, name) triples, so "function foo(){}" declared
	// twice in the same scope gets foo and foo#1, matching §3.2's
	// discriminator contract.
	discriminators map[string]int

	// anonCounter numbers anonymous functions/object/array literals
	// per file, independent of the named-sibling discriminator map.
	anonCounter int

	// enclosingFunctionDepth tracks whether the current position is nested
	// inside any function, used for top-level-await detection (§4.3).
	enclosingFunctionDepth int
}

// NewAnalysisContext creates a fresh context for one file.
func NewAnalysisContext(file string, content []byte) *AnalysisContext {
	return &AnalysisContext{
		File:           file,
		Content:        content,
		Scope:          semantic.NewScopeTracker(file),
		Coll:           &VisitorCollections{Module: ModuleInfo{File: file}},
		discriminators: make(map[string]int),
	}
}

// nextDiscriminator returns the next discriminator for a (kind, name) pair
// within the current scope, starting at 0.
func (c *AnalysisContext) nextDiscriminator(kind, name string) int {
	key := c.Scope.Current().ScopePathString() + "|" + kind + "|" + name
	n := c.discriminators[key]
	c.discriminators[key] = n + 1
	return n
}

// nextAnon returns the next anonymous-entity counter value, used as the
// discriminator of a function named "<anonymous>".
func (c *AnalysisContext) nextAnon() int {
	n := c.anonCounter
	c.anonCounter++
	return n
}

// AtModuleLevel reports whether the context is not nested inside any
// function (used for top-level-await detection).
func (c *AnalysisContext) AtModuleLevel() bool {
	return c.enclosingFunctionDepth == 0
}

func (c *AnalysisContext) enterFunction() { c.enclosingFunctionDepth++ }
func (c *AnalysisContext) exitFunction()  { c.enclosingFunctionDepth-- }

// markTopLevelAwait records that the module contains a top-level await
// expression, per §4.3's upsert-on-first-occurrence contract.
func (c *AnalysisContext) markTopLevelAwait() {
	c.Coll.Module.HasTopLevelAwait = true
}
