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

package builder

import (
	"testing"

	"github.com/grafema-dev/grafema/pkg/nodes"
	"github.com/grafema-dev/grafema/pkg/visitor"
)

func TestScopeIndex_ResolveWalksOutwardToGlobal(t *testing.T) {
	idx := newScopeIndex()
	idx.bindGlobal("a.js", "shared", "global-id")

	got, ok := idx.resolve("a.js", []string{"outer", "inner"}, "shared")
	if !ok || got != "global-id" {
		t.Fatalf("expected resolve to fall back to global binding, got (%q, %v)", got, ok)
	}
}

func TestScopeIndex_InnerBindingShadowsOuter(t *testing.T) {
	idx := newScopeIndex()
	idx.bindGlobal("a.js", "x", "global-id")
	idx.bind("a.js", []string{"outer"}, "x", "outer-id")
	idx.bind("a.js", []string{"outer", "inner"}, "x", "inner-id")

	got, ok := idx.resolve("a.js", []string{"outer", "inner"}, "x")
	if !ok || got != "inner-id" {
		t.Fatalf("expected innermost binding to win, got (%q, %v)", got, ok)
	}

	got, ok = idx.resolve("a.js", []string{"outer"}, "x")
	if !ok || got != "outer-id" {
		t.Fatalf("expected outer binding at outer scope, got (%q, %v)", got, ok)
	}
}

func TestScopeIndex_SameNameDifferentFilesDoNotCollide(t *testing.T) {
	idx := newScopeIndex()
	idx.bindGlobal("a.js", "run", "a-run-id")
	idx.bindGlobal("b.js", "run", "b-run-id")

	got, ok := idx.resolve("a.js", nil, "run")
	if !ok || got != "a-run-id" {
		t.Fatalf("expected a.js's own binding, got (%q, %v)", got, ok)
	}
	got, ok = idx.resolve("b.js", nil, "run")
	if !ok || got != "b-run-id" {
		t.Fatalf("expected b.js's own binding, got (%q, %v)", got, ok)
	}
}

func TestScopeIndex_UnboundNameDoesNotResolve(t *testing.T) {
	idx := newScopeIndex()
	if _, ok := idx.resolve("a.js", []string{"outer"}, "missing"); ok {
		t.Fatalf("expected no resolution for an unbound name")
	}
}

// A local function named the same as a global one must resolve to the local
// binding, not the module-level declaration, matching lexical shadowing.
func TestBuildFile_LocalBindingShadowsGlobal(t *testing.T) {
	_, g := buildFile(t, "shadow.js", `
function helper() { return 1; }

function outer() {
  function helper() { return 2; }
  return helper();
}
`)

	fns := nodesOfType(g, nodes.Function)
	var globalHelperID, localHelperID string
	for _, f := range fns {
		if f.Name != "helper" {
			continue
		}
		if parent, _ := f.Metadata["parentScopeId"].(string); parent == "" {
			globalHelperID = f.ID
		} else {
			localHelperID = f.ID
		}
	}
	if globalHelperID == "" || localHelperID == "" {
		t.Fatalf("expected two helper functions (global and nested), got %+v", fns)
	}

	calls := nodesOfType(g, nodes.Call)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call node, got %d", len(calls))
	}
	callsEdges := edgesOfType(g, nodes.Calls)
	if !hasEdge(callsEdges, calls[0].ID, localHelperID) {
		t.Fatalf("expected call to resolve to the nested helper, got edges %+v", callsEdges)
	}
	if hasEdge(callsEdges, calls[0].ID, globalHelperID) {
		t.Fatalf("call should not resolve to the shadowed global helper")
	}
}

// A binding referenced from inside a nested function with no local
// shadowing resolves by walking outward to the module-level declaration.
func TestBuildFile_ModuleLevelFallbackWhenNoLocalBinding(t *testing.T) {
	_, g := buildFile(t, "fallback.js", `
let shared = 1;

function writer(next) {
  shared = next;
}
`)

	vars := nodesOfType(g, nodes.Variable)
	var sharedID, nextID string
	for _, v := range vars {
		switch v.Name {
		case "shared":
			sharedID = v.ID
		case "next":
			nextID = v.ID
		}
	}
	if sharedID == "" {
		t.Fatalf("expected shared variable node, got %+v", vars)
	}
	if nextID == "" {
		params := nodesOfType(g, nodes.Parameter)
		for _, p := range params {
			if p.Name == "next" {
				nextID = p.ID
			}
		}
	}
	if nextID == "" {
		t.Fatalf("expected a next binding (parameter), got vars=%+v", vars)
	}

	writesTo := edgesOfType(g, nodes.WritesTo)
	if !hasEdge(writesTo, nextID, sharedID) {
		t.Fatalf("expected WRITES_TO edge from nested next -> module-level shared, got %+v", writesTo)
	}
}

// Two files each declaring a top-level function with the same name must not
// collide in the shared scope index: each file's call must resolve to its
// own file's declaration.
func TestBuildFile_CrossFileSameNameDoesNotCollide(t *testing.T) {
	p := visitor.NewTreeSitterParser()
	b := New()

	collA, err := p.ParseFile("a.js", []byte(`
function run() { return 1; }
run();
`))
	if err != nil {
		t.Fatalf("ParseFile(a.js): %v", err)
	}
	if err := b.BuildFile("a.js", collA); err != nil {
		t.Fatalf("BuildFile(a.js): %v", err)
	}

	collB, err := p.ParseFile("b.js", []byte(`
function run() { return 2; }
run();
`))
	if err != nil {
		t.Fatalf("ParseFile(b.js): %v", err)
	}
	if err := b.BuildFile("b.js", collB); err != nil {
		t.Fatalf("BuildFile(b.js): %v", err)
	}

	g := b.Graph()
	fns := nodesOfType(g, nodes.Function)
	byFile := map[string]string{}
	for _, f := range fns {
		byFile[f.File] = f.ID
	}
	if byFile["a.js"] == byFile["b.js"] {
		t.Fatalf("expected distinct function IDs per file, got same ID %s", byFile["a.js"])
	}

	calls := nodesOfType(g, nodes.Call)
	if len(calls) != 2 {
		t.Fatalf("expected 2 call nodes, got %d", len(calls))
	}
	callsEdges := edgesOfType(g, nodes.Calls)
	for _, c := range calls {
		var want string
		if c.File == "a.js" {
			want = byFile["a.js"]
		} else {
			want = byFile["b.js"]
		}
		if !hasEdge(callsEdges, c.ID, want) {
			t.Fatalf("expected call in %s to resolve to its own file's run(), got edges %+v", c.File, callsEdges)
		}
	}
}
