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

// Package datalog evaluates the attribute predicates guarantee rules are
// allowed to reference against a graph: attr(N, K, V) and
// attr_edge(S, D, T, K, V); node(N, T) and edge(S, D, T) are answered by
// store lookups outside this package. Grounded on the projection idiom
// in the teacher's pkg/storage/backend.go (ToNamedRows/FromNamedRows,
// flattening a structured Go value into queryable rows), generalized from
// row projection over CozoScript results to typed predicate evaluation over
// NodeRecord/EdgeRecord metadata — the rest of the Datalog surface (rule
// bodies, standard rule library references) is out of scope per the
// engine's narrow attr/attr_edge evaluator.
package datalog

import (
	"strconv"
	"strings"
)

// Attr evaluates attr(N, K, V) against a node's metadata: exact key match
// first (so a literal dotted key like "foo.bar" still resolves even when a
// nested "foo": {"bar": ...} shape also exists), then a dotted-path walk
// when K contains '.' and the exact lookup missed. Returns ("", false) when
// neither rule binds — callers treat that as "no match", not an error.
func Attr(metadata map[string]any, key string) (string, bool) {
	if v, ok := metadata[key]; ok {
		return primitiveToString(v)
	}
	if !strings.Contains(key, ".") {
		return "", false
	}
	segments, ok := splitPath(key)
	if !ok {
		return "", false
	}
	return walkPath(metadata, segments)
}

// AttrEdge evaluates attr_edge(S, D, T, K, V): identical semantics to Attr,
// applied to an edge's metadata instead of a node's.
func AttrEdge(metadata map[string]any, key string) (string, bool) {
	return Attr(metadata, key)
}

// splitPath splits a dotted key into segments, failing on any empty
// segment (leading, trailing, or doubled '.').
func splitPath(key string) ([]string, bool) {
	segments := strings.Split(key, ".")
	for _, s := range segments {
		if s == "" {
			return nil, false
		}
	}
	return segments, true
}

func walkPath(metadata map[string]any, segments []string) (string, bool) {
	var current any = metadata
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		v, ok := m[seg]
		if !ok {
			return "", false
		}
		current = v
	}
	return primitiveToString(current)
}

// primitiveToString converts a leaf JSON value to its Datalog binding
// string. Objects, arrays, and nil bind nothing — §4.6 rule 3.
func primitiveToString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// node(N, T) and edge(S, D, T) need no metadata walking — just a type
// equality check against an already fetched record — so the evaluator
// resolves those two predicates inline against pkg/store.GraphStore
// (QueryNodes / GetOutgoingEdges) rather than through a dedicated function
// here. Only attr/attr_edge get this package, per the engine's narrowly
// scoped Datalog evaluator.
