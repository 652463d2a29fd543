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

package nodes

import "github.com/grafema-dev/grafema/pkg/grafemaerr"

// EdgeType is a member of the closed set KnownEdgeTypes.
type EdgeType string

const (
	Contains         EdgeType = "CONTAINS"
	Calls            EdgeType = "CALLS"
	CallsOn          EdgeType = "CALLS_ON"
	HandledBy        EdgeType = "HANDLED_BY"
	ImportsFrom      EdgeType = "IMPORTS_FROM"
	Extends          EdgeType = "EXTENDS"
	Implements       EdgeType = "IMPLEMENTS"
	HasProperty      EdgeType = "HAS_PROPERTY"
	HasElement       EdgeType = "HAS_ELEMENT"
	AssignedFrom     EdgeType = "ASSIGNED_FROM"
	DerivesFrom      EdgeType = "DERIVES_FROM"
	IteratesOver     EdgeType = "ITERATES_OVER"
	Captures         EdgeType = "CAPTURES"
	Shadows          EdgeType = "SHADOWS"
	WritesTo         EdgeType = "WRITES_TO"
	Modifies         EdgeType = "MODIFIES"
	PassesArgument   EdgeType = "PASSES_ARGUMENT"
	SpreadsFrom      EdgeType = "SPREADS_FROM"
	AccessesPrivate  EdgeType = "ACCESSES_PRIVATE"
	DecoratedBy      EdgeType = "DECORATED_BY"
	Uses             EdgeType = "USES"
)

// KnownEdgeTypes is the closed set an edge type must belong to; NewEdge
// rejects anything outside it.
var KnownEdgeTypes = map[EdgeType]bool{
	Contains:        true,
	Calls:           true,
	CallsOn:         true,
	HandledBy:       true,
	ImportsFrom:     true,
	Extends:         true,
	Implements:      true,
	HasProperty:     true,
	HasElement:      true,
	AssignedFrom:    true,
	DerivesFrom:     true,
	IteratesOver:    true,
	Captures:        true,
	Shadows:         true,
	WritesTo:        true,
	Modifies:        true,
	PassesArgument:  true,
	SpreadsFrom:     true,
	AccessesPrivate: true,
	DecoratedBy:     true,
	Uses:            true,
}

// EdgeRecord is the tagged-variant representation of a typed relationship
// between two nodes, identified by ID. Edges are append-only within a run
// (§3.4): there is no update, only delete-and-replace when a plugin rewrites
// metadata.
type EdgeRecord struct {
	Type     EdgeType
	Src      string
	Dst      string
	Metadata map[string]any
}

// NewEdge validates edgeType against KnownEdgeTypes before constructing the
// record. Unknown edge types fail the insertion; the caller is expected to
// log and continue (§7 UnknownEdgeType), not abort the run.
func NewEdge(edgeType EdgeType, src, dst string, metadata map[string]any) (*EdgeRecord, error) {
	if !KnownEdgeTypes[edgeType] {
		return nil, &grafemaerr.UnknownEdgeType{Attempted: string(edgeType)}
	}
	if src == "" || dst == "" {
		return nil, &grafemaerr.ValidationError{NodeType: string(edgeType), Field: "src/dst", Reason: "edge endpoints are required"}
	}
	return &EdgeRecord{Type: edgeType, Src: src, Dst: dst, Metadata: metadata}, nil
}
