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

// Package nodes is the single source of truth for node construction: one
// factory method per node kind, each validating required fields, composing
// the node's ID, and filling defaults. No other package may build a
// NodeRecord directly.
package nodes

// Type is the closed set of node kinds a NodeRecord may carry.
type Type string

const (
	Module         Type = "MODULE"
	Function       Type = "FUNCTION"
	Class          Type = "CLASS"
	Interface      Type = "INTERFACE"
	TypeAlias      Type = "TYPE"
	Enum           Type = "ENUM"
	Import         Type = "IMPORT"
	Export         Type = "EXPORT"
	Variable       Type = "VARIABLE"
	Constant       Type = "CONSTANT"
	Parameter      Type = "PARAMETER"
	Scope          Type = "SCOPE"
	Call           Type = "CALL"
	Expression     Type = "EXPRESSION"
	Loop           Type = "LOOP"
	ExternalModule Type = "EXTERNAL_MODULE"
	ObjectLiteral  Type = "OBJECT_LITERAL"
	ArrayLiteral   Type = "ARRAY_LITERAL"
)

// NodeRecord is the tagged-variant representation every node kind shares:
// common positional fields plus a Metadata bag holding type-specific
// attributes (isAsync, parentScopeId, source, operator, …). Putting
// type-specific fields in Metadata, rather than as dedicated Go struct
// fields per kind, is what lets pkg/datalog's attr(N,K,V) operate uniformly
// over every node kind without a type switch.
//
// NodeRecord is immutable once returned by a factory: only Metadata may be
// extended afterwards, and only via NodeRecord.Upsert (§3.4 lifecycle),
// never by reconstructing the record.
type NodeRecord struct {
	ID       string
	Type     Type
	Name     string
	File     string
	Line     int
	Column   int
	Metadata map[string]any
}

// Get returns a metadata value and whether it was present, for callers that
// need a type-specific field back out of a NodeRecord (e.g. the builder
// reading valueScopePath).
func (n *NodeRecord) Get(key string) (any, bool) {
	if n.Metadata == nil {
		return nil, false
	}
	v, ok := n.Metadata[key]
	return v, ok
}

// upsert extends Metadata with a single key, used by ENRICHMENT-phase
// writers (e.g. MODULE.hasTopLevelAwait) that may only add or overwrite
// metadata, never touch the positional fields.
func (n *NodeRecord) upsert(key string, value any) {
	if n.Metadata == nil {
		n.Metadata = make(map[string]any)
	}
	n.Metadata[key] = value
}

// Upsert is the exported form of upsert, used by callers outside this
// package (the builder's top-level-await handling, enrichment plugins).
func (n *NodeRecord) Upsert(key string, value any) {
	n.upsert(key, value)
}
