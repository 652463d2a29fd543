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

// Package builder consumes pkg/visitor's per-file VisitorCollections and
// constructs the persistent graph: it calls pkg/nodes.Factory to build
// validated NodeRecords, maintains a scope-aware name index to resolve
// references within each file, and buffers unresolved calls for
// pkg/enrich's external-call resolver plugin.
package builder

import "github.com/grafema-dev/grafema/pkg/nodes"

// Graph accumulates nodes and edges across every file processed by a
// Builder. Nodes are deduplicated by ID (re-inserting an existing ID is a
// no-op keep-first, matching the builder's create-then-resolve ordering:
// a node's defining occurrence always runs before anything references it).
// Edges are deduplicated by (type, src, dst) only — metadata differences
// between two edges of the same key are dropped, since no edge kind in this
// graph is intended to appear more than once between the same pair.
type Graph struct {
	nodesByID map[string]*nodes.NodeRecord
	nodeOrder []string
	edgeKeys  map[string]bool
	edges     []*nodes.EdgeRecord
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodesByID: make(map[string]*nodes.NodeRecord),
		edgeKeys:  make(map[string]bool),
	}
}

// AddNode inserts n if its ID has not been seen before. Returns true if n
// was newly inserted.
func (g *Graph) AddNode(n *nodes.NodeRecord) bool {
	if n == nil {
		return false
	}
	if _, exists := g.nodesByID[n.ID]; exists {
		return false
	}
	g.nodesByID[n.ID] = n
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return true
}

// AddEdge inserts e unless an edge with the same (type, src, dst) already
// exists. Returns true if e was newly inserted.
func (g *Graph) AddEdge(e *nodes.EdgeRecord) bool {
	if e == nil {
		return false
	}
	key := string(e.Type) + "|" + e.Src + "|" + e.Dst
	if g.edgeKeys[key] {
		return false
	}
	g.edgeKeys[key] = true
	g.edges = append(g.edges, e)
	return true
}

// HasNode reports whether id has already been inserted.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodesByID[id]
	return ok
}

// Node returns the node with the given ID, if any.
func (g *Graph) Node(id string) (*nodes.NodeRecord, bool) {
	n, ok := g.nodesByID[id]
	return n, ok
}

// Nodes returns every inserted node in insertion order.
func (g *Graph) Nodes() []*nodes.NodeRecord {
	out := make([]*nodes.NodeRecord, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodesByID[id])
	}
	return out
}

// Edges returns every inserted edge in insertion order.
func (g *Graph) Edges() []*nodes.EdgeRecord {
	return g.edges
}
