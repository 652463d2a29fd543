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

package testing

import (
	"testing"

	"github.com/grafema-dev/grafema/pkg/nodes"
	"github.com/grafema-dev/grafema/pkg/store"
)

// SetupTestStore creates a temp-dir-backed graph store for testing.
// The store is automatically closed when the test finishes.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    s := testing.SetupTestStore(t)
//	    testing.InsertFunction(t, s, "HandleAuth", "auth.js", 10)
//	    // Run your tests...
//	}
func SetupTestStore(t *testing.T) *store.EmbeddedStore {
	t.Helper()

	s, err := store.NewEmbeddedStore(store.EmbeddedConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func line(n int) *int { return &n }

// InsertFunction adds a FUNCTION node to s. Convenience helper for
// seeding test data.
//
// Example:
//
//	s := testing.SetupTestStore(t)
//	testing.InsertFunction(t, s, "HandleAuth", "auth.js", 10)
func InsertFunction(t *testing.T, s store.GraphStore, name, filePath string, lineNum int) *nodes.NodeRecord {
	t.Helper()

	f := nodes.NewFactory()
	n, err := f.CreateFunction(nodes.FunctionParams{
		Name: name, File: filePath, Line: line(lineNum), ScopePath: []string{},
	})
	if err != nil {
		t.Fatalf("failed to build test function: %v", err)
	}
	if err := s.AddNode(n); err != nil {
		t.Fatalf("failed to insert test function: %v", err)
	}
	return n
}

// InsertClass adds a CLASS node to s.
//
// Example:
//
//	testing.InsertClass(t, s, "UserService", "user.js", 10)
func InsertClass(t *testing.T, s store.GraphStore, name, filePath string, lineNum int) *nodes.NodeRecord {
	t.Helper()

	f := nodes.NewFactory()
	n, err := f.CreateClass(nodes.ClassParams{
		Name: name, File: filePath, Line: line(lineNum), ScopePath: []string{},
	})
	if err != nil {
		t.Fatalf("failed to build test class: %v", err)
	}
	if err := s.AddNode(n); err != nil {
		t.Fatalf("failed to insert test class: %v", err)
	}
	return n
}

// InsertModule adds a MODULE node to s, representing one source file.
//
// Example:
//
//	testing.InsertModule(t, s, "auth.js")
func InsertModule(t *testing.T, s store.GraphStore, filePath string) *nodes.NodeRecord {
	t.Helper()

	f := nodes.NewFactory()
	n, err := f.CreateModule(nodes.ModuleParams{File: filePath, Line: line(1)})
	if err != nil {
		t.Fatalf("failed to build test module: %v", err)
	}
	if err := s.AddNode(n); err != nil {
		t.Fatalf("failed to insert test module: %v", err)
	}
	return n
}

// InsertImport adds an IMPORT node to s.
//
// Example:
//
//	testing.InsertImport(t, s, "auth.js", "fmt", "fmt", 1)
func InsertImport(t *testing.T, s store.GraphStore, filePath, source, local string, lineNum int) *nodes.NodeRecord {
	t.Helper()

	f := nodes.NewFactory()
	n, err := f.CreateImport(nodes.ImportParams{
		Source: source, Local: local, Imported: local,
		File: filePath, Line: line(lineNum), ImportType: "named",
	})
	if err != nil {
		t.Fatalf("failed to build test import: %v", err)
	}
	if err := s.AddNode(n); err != nil {
		t.Fatalf("failed to insert test import: %v", err)
	}
	return n
}

// InsertCallsEdge adds a CALLS edge from caller to callee.
//
// Example:
//
//	testing.InsertCallsEdge(t, s, callerFn.ID, calleeFn.ID)
func InsertCallsEdge(t *testing.T, s store.GraphStore, callerID, calleeID string) {
	t.Helper()

	e, err := nodes.NewEdge(nodes.Calls, callerID, calleeID, nil)
	if err != nil {
		t.Fatalf("failed to build calls edge: %v", err)
	}
	if err := s.AddEdge(e); err != nil {
		t.Fatalf("failed to insert calls edge: %v", err)
	}
}

// InsertContainsEdge adds a CONTAINS edge from parent to child, the way
// a MODULE contains the declarations defined in it.
//
// Example:
//
//	testing.InsertContainsEdge(t, s, moduleNode.ID, functionNode.ID)
func InsertContainsEdge(t *testing.T, s store.GraphStore, parentID, childID string) {
	t.Helper()

	e, err := nodes.NewEdge(nodes.Contains, parentID, childID, nil)
	if err != nil {
		t.Fatalf("failed to build contains edge: %v", err)
	}
	if err := s.AddEdge(e); err != nil {
		t.Fatalf("failed to insert contains edge: %v", err)
	}
}

// QueryFunctions returns every FUNCTION node in s.
//
// Example:
//
//	funcs := testing.QueryFunctions(t, s)
//	require.Len(t, funcs, 2)
func QueryFunctions(t *testing.T, s store.GraphStore) []*nodes.NodeRecord {
	t.Helper()
	return queryByType(t, s, nodes.Function)
}

// QueryModules returns every MODULE node in s.
func QueryModules(t *testing.T, s store.GraphStore) []*nodes.NodeRecord {
	t.Helper()
	return queryByType(t, s, nodes.Module)
}

// QueryClasses returns every CLASS node in s.
func QueryClasses(t *testing.T, s store.GraphStore) []*nodes.NodeRecord {
	t.Helper()
	return queryByType(t, s, nodes.Class)
}

func queryByType(t *testing.T, s store.GraphStore, typ nodes.Type) []*nodes.NodeRecord {
	t.Helper()

	it, err := s.QueryNodes(store.NodeFilter{"type": typ})
	if err != nil {
		t.Fatalf("failed to query %s nodes: %v", typ, err)
	}
	defer it.Close()

	var out []*nodes.NodeRecord
	for it.Next() {
		out = append(out, it.Node())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error querying %s nodes: %v", typ, err)
	}
	return out
}
