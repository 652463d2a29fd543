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

package semantic

import "fmt"

// frame is one entry on the scope stack.
type frame struct {
	name         string // scope name as it appears in a scope path, e.g. "if#0"
	scopeID      string
	functionID   string // nearest enclosing function's ID, "" at module level
	isFunction   bool
}

// ScopeTracker maintains the current lexical scope stack for one file during
// AST traversal. It is not safe for concurrent use; each file gets its own
// tracker (mirroring the teacher's per-file CallResolver indices, which are
// built once and read concurrently only after construction completes).
type ScopeTracker struct {
	file    string
	stack   []frame
	counter map[string]int // counted-scope discriminators, keyed by "{parentScopeID}|{kind}"
}

// NewScopeTracker creates a tracker for a single file. The module-level
// scope is implicit: Current() returns an empty ScopePath (rendered as
// "global") until the first EnterScope/EnterCountedScope call.
func NewScopeTracker(file string) *ScopeTracker {
	return &ScopeTracker{
		file:    file,
		counter: make(map[string]int),
	}
}

// Current returns the file and scope path for the tracker's present depth.
func (t *ScopeTracker) Current() Context {
	path := make([]string, len(t.stack))
	for i, f := range t.stack {
		path[i] = f.name
	}
	return Context{File: t.file, ScopePath: path}
}

// CurrentFunctionID returns the nearest enclosing function's ID, or "" if
// the tracker is at module level or inside only non-function scopes above
// any function. Used for closure-capture analysis (CAPTURES edges).
func (t *ScopeTracker) CurrentFunctionID() string {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i].isFunction {
			return t.stack[i].functionID
		}
	}
	return ""
}

// CurrentScopeID returns the ID of the innermost scope, or "" at module level.
func (t *ScopeTracker) CurrentScopeID() string {
	if len(t.stack) == 0 {
		return ""
	}
	return t.stack[len(t.stack)-1].scopeID
}

// EnterScope pushes a scope of the given kind with an explicit, already
// disambiguated name (e.g. a named function becomes its own scope frame
// named after itself). Returns the scope's composed ID.
func (t *ScopeTracker) EnterScope(kind, name string, scopeID string, isFunction bool, functionID string) string {
	t.stack = append(t.stack, frame{
		name:       name,
		scopeID:    scopeID,
		isFunction: isFunction,
		functionID: functionID,
	})
	return scopeID
}

// EnterCountedScope pushes an anonymous/structural scope (if, else, try,
// catch, finally, switch, block, for, while, …), auto-assigning the next
// discriminator for that kind within the current parent scope: "if#0",
// "if#1", "catch#0", etc. Returns the scope name used in the path and the
// scope's composed ID.
func (t *ScopeTracker) EnterCountedScope(kind string) (scopeName, scopeID string) {
	parent := t.CurrentScopeID()
	key := fmt.Sprintf("%s|%s", parent, kind)
	n := t.counter[key]
	t.counter[key] = n + 1

	scopeName = fmt.Sprintf("%s#%d", kind, n)
	ctx := t.Current()
	scopeID = ComposeArrow("SCOPE", scopeName, ctx, 0)

	t.stack = append(t.stack, frame{
		name:    scopeName,
		scopeID: scopeID,
	})
	return scopeName, scopeID
}

// ExitScope pops the innermost scope. Calling it without a matching enter
// is a programming error and panics, matching the teacher's fail-fast
// posture on invariant violations (see pkg/grafemaerr ValidationError).
func (t *ScopeTracker) ExitScope() {
	if len(t.stack) == 0 {
		panic("semantic: ExitScope called with empty scope stack")
	}
	t.stack = t.stack[:len(t.stack)-1]
}

// Depth returns the current stack depth, primarily for tests asserting
// LIFO balance after a full traversal.
func (t *ScopeTracker) Depth() int {
	return len(t.stack)
}
