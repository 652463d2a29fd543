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

// Package store defines the graph store contract every analysis run
// depends on, and ships one concrete implementation (embedded.go) backed
// by go.etcd.io/bbolt. Everything upstream of the store — the builder,
// the enrichment plugins, the CLI — talks only to the GraphStore
// interface, the same way the teacher's pkg/storage.Backend decouples
// CIE's tools from a specific Datalog engine.
package store

import "github.com/grafema-dev/grafema/pkg/nodes"

// NodeFilter is a conjunction of equality filters over a NodeRecord's
// intrinsic fields. An empty filter matches every node. Supported keys:
// "type", "file", "name". Unknown keys match nothing, rather than being
// silently ignored, so a typo'd filter fails loud instead of streaming
// an unfiltered result set.
type NodeFilter map[string]any

// NodeIterator streams query_nodes results without materializing the
// whole result set, per the store contract's "async iter" requirement —
// Go has no coroutine-based async iterator, so this is the synchronous
// equivalent: call Next until it returns false, then check Err.
type NodeIterator interface {
	Next() bool
	Node() *nodes.NodeRecord
	Err() error
	Close() error
}

// GraphStore is the graph store contract every analysis run depends on.
// Implementations must make AddNode/AddEdge idempotent on identical
// records, and must make writes within one caller's critical section
// visible to that same caller's subsequent reads.
type GraphStore interface {
	// Close releases resources and flushes any buffered writes.
	Close() error

	// Clear wipes every node and edge. Callers must hold whatever
	// external serialization guarantees a full re-analysis requires —
	// the store itself does not coordinate clear against concurrent
	// writers.
	Clear() error

	// AddNode inserts n, or is a no-op if a node with the same ID
	// already exists.
	AddNode(n *nodes.NodeRecord) error

	// AddEdge inserts e, or is a no-op if an edge with the same
	// (type, src, dst) already exists.
	AddEdge(e *nodes.EdgeRecord) error

	// DeleteEdge removes the edge (src, dst, edgeType) if present.
	// Implementations may no-op when the edge does not exist — callers
	// (the cardinality enricher rewriting ITERATES_OVER metadata) handle
	// absence by re-adding rather than depending on deletion semantics.
	DeleteEdge(src, dst string, edgeType nodes.EdgeType) error

	// QueryNodes streams every node matching filter.
	QueryNodes(filter NodeFilter) (NodeIterator, error)

	// GetOutgoingEdges lists edges whose Src is id, optionally restricted
	// to the given edge types. An empty or nil types slice matches all
	// types.
	GetOutgoingEdges(id string, types []nodes.EdgeType) ([]*nodes.EdgeRecord, error)

	// GetIncomingEdges lists edges whose Dst is id, optionally restricted
	// to the given edge types.
	GetIncomingEdges(id string, types []nodes.EdgeType) ([]*nodes.EdgeRecord, error)

	// NodeCount returns the total number of stored nodes.
	NodeCount() (int, error)

	// EdgeCount returns the total number of stored edges.
	EdgeCount() (int, error)

	// CountNodesByType returns, for every node type present, how many
	// nodes of that type are stored.
	CountNodesByType() (map[nodes.Type]int, error)

	// CountEdgesByType returns, for every edge type present, how many
	// edges of that type are stored.
	CountEdgesByType() (map[nodes.EdgeType]int, error)

	// Flush makes all prior writes durable. Embedded bbolt commits are
	// already durable per transaction, so the embedded implementation's
	// Flush is a no-op kept only to satisfy the interface.
	Flush() error
}
