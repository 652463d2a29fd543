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

package enrich

import (
	"testing"

	"github.com/grafema-dev/grafema/pkg/config"
	"github.com/grafema-dev/grafema/pkg/nodes"
)

func TestCardinalityEnricher_DirectCallIterationUsesBuiltinHeuristic(t *testing.T) {
	g := newTestStore(t)
	factory := nodes.NewFactory()

	call, err := factory.CreateCall(nodes.CallParams{
		Name: "graph.queryNodes", File: "a.js", Line: line(3), ScopePath: []string{},
		Object: "graph", Method: "queryNodes",
	})
	if err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	mustAddNode(t, g, call)

	loop, err := factory.CreateLoop(nodes.LoopParams{
		File: "a.js", Line: line(3), ScopePath: []string{}, LoopKind: "for-of",
	})
	if err != nil {
		t.Fatalf("CreateLoop: %v", err)
	}
	mustAddNode(t, g, loop)

	edge, err := nodes.NewEdge(nodes.IteratesOver, loop.ID, call.ID, map[string]any{"iterates": "values"})
	if err != nil {
		t.Fatalf("NewEdge: %v", err)
	}
	if err := g.AddEdge(edge); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	result := NewCardinalityEnricher(nil).Execute(PluginContext{Graph: g})
	if !result.Success {
		t.Fatalf("Execute failed: %+v", result.Errors)
	}
	if result.Metadata["edgesCreated"] != 1 {
		t.Fatalf("expected 1 annotated edge, got %+v", result.Metadata)
	}

	out, err := g.GetOutgoingEdges(loop.ID, []nodes.EdgeType{nodes.IteratesOver})
	if err != nil {
		t.Fatalf("GetOutgoingEdges: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly one ITERATES_OVER edge, got %d", len(out))
	}
	cardinality, ok := out[0].Metadata["cardinality"].(map[string]any)
	if !ok {
		t.Fatalf("expected cardinality metadata, got %+v", out[0].Metadata)
	}
	if cardinality["scale"] != "nodes" {
		t.Fatalf("expected scale 'nodes' for a query* method, got %+v", cardinality)
	}
	if out[0].Metadata["iterates"] != "values" {
		t.Fatalf("expected pre-existing 'iterates' metadata to survive the rewrite, got %+v", out[0].Metadata)
	}
}

func TestCardinalityEnricher_ConfigEntryPointTakesPrecedenceOverHeuristic(t *testing.T) {
	g := newTestStore(t)
	factory := nodes.NewFactory()

	call, err := factory.CreateCall(nodes.CallParams{
		Name: "db.fetchAll", File: "a.js", Line: line(3), ScopePath: []string{},
		Object: "db", Method: "fetchAll",
	})
	if err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	mustAddNode(t, g, call)

	loop, err := factory.CreateLoop(nodes.LoopParams{
		File: "a.js", Line: line(3), ScopePath: []string{}, LoopKind: "for-of",
	})
	if err != nil {
		t.Fatalf("CreateLoop: %v", err)
	}
	mustAddNode(t, g, loop)

	edge, err := nodes.NewEdge(nodes.IteratesOver, loop.ID, call.ID, nil)
	if err != nil {
		t.Fatalf("NewEdge: %v", err)
	}
	if err := g.AddEdge(edge); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	cfg := &config.CardinalityConfig{EntryPoints: []config.CardinalityEntryPoint{
		{Pattern: "fetchAll", Returns: "constant", Interval: []int{0, 10}},
	}}

	result := NewCardinalityEnricher(cfg).Execute(PluginContext{Graph: g})
	if !result.Success {
		t.Fatalf("Execute failed: %+v", result.Errors)
	}

	out, err := g.GetOutgoingEdges(loop.ID, []nodes.EdgeType{nodes.IteratesOver})
	if err != nil {
		t.Fatalf("GetOutgoingEdges: %v", err)
	}
	cardinality := out[0].Metadata["cardinality"].(map[string]any)
	if cardinality["scale"] != "constant" {
		t.Fatalf("expected config entry point to override the 'fetch*' heuristic, got %+v", cardinality)
	}
}

func TestCardinalityEnricher_IgnoreCardinalitySkipsLoop(t *testing.T) {
	g := newTestStore(t)
	factory := nodes.NewFactory()

	call, err := factory.CreateCall(nodes.CallParams{
		Name: "items.query", File: "a.js", Line: line(3), ScopePath: []string{},
		Object: "items", Method: "query",
	})
	if err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	mustAddNode(t, g, call)

	loop, err := factory.CreateLoop(nodes.LoopParams{
		File: "a.js", Line: line(3), ScopePath: []string{}, LoopKind: "for-of", IgnoreCardinality: true,
	})
	if err != nil {
		t.Fatalf("CreateLoop: %v", err)
	}
	mustAddNode(t, g, loop)

	edge, err := nodes.NewEdge(nodes.IteratesOver, loop.ID, call.ID, nil)
	if err != nil {
		t.Fatalf("NewEdge: %v", err)
	}
	if err := g.AddEdge(edge); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	result := NewCardinalityEnricher(nil).Execute(PluginContext{Graph: g})
	if !result.Success {
		t.Fatalf("Execute failed: %+v", result.Errors)
	}
	if result.Metadata["ignoredLoops"] != 1 {
		t.Fatalf("expected 1 ignored loop, got %+v", result.Metadata)
	}
	if result.Metadata["edgesCreated"] != 0 {
		t.Fatalf("expected no annotation on an ignored loop, got %+v", result.Metadata)
	}

	out, err := g.GetOutgoingEdges(loop.ID, []nodes.EdgeType{nodes.IteratesOver})
	if err != nil {
		t.Fatalf("GetOutgoingEdges: %v", err)
	}
	if _, ok := out[0].Metadata["cardinality"]; ok {
		t.Fatalf("expected no cardinality metadata on an ignored loop, got %+v", out[0].Metadata)
	}
}

func TestCardinalityEnricher_TracesThroughAssignedFromToOriginatingCall(t *testing.T) {
	g := newTestStore(t)
	factory := nodes.NewFactory()

	call, err := factory.CreateCall(nodes.CallParams{
		Name: "repo.findById", File: "a.js", Line: line(2), ScopePath: []string{},
		Object: "repo", Method: "findById",
	})
	if err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	mustAddNode(t, g, call)

	variable, err := factory.CreateVariable(nodes.VariableParams{
		Name: "result", File: "a.js", Line: line(2), ScopePath: []string{}, IsConst: true,
	})
	if err != nil {
		t.Fatalf("CreateVariable: %v", err)
	}
	mustAddNode(t, g, variable)

	assignedFrom, err := nodes.NewEdge(nodes.AssignedFrom, variable.ID, call.ID, nil)
	if err != nil {
		t.Fatalf("NewEdge: %v", err)
	}
	if err := g.AddEdge(assignedFrom); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	loop, err := factory.CreateLoop(nodes.LoopParams{
		File: "a.js", Line: line(3), ScopePath: []string{}, LoopKind: "for-of",
	})
	if err != nil {
		t.Fatalf("CreateLoop: %v", err)
	}
	mustAddNode(t, g, loop)

	iteratesOver, err := nodes.NewEdge(nodes.IteratesOver, loop.ID, variable.ID, nil)
	if err != nil {
		t.Fatalf("NewEdge: %v", err)
	}
	if err := g.AddEdge(iteratesOver); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	result := NewCardinalityEnricher(nil).Execute(PluginContext{Graph: g})
	if !result.Success {
		t.Fatalf("Execute failed: %+v", result.Errors)
	}

	out, err := g.GetOutgoingEdges(loop.ID, []nodes.EdgeType{nodes.IteratesOver})
	if err != nil {
		t.Fatalf("GetOutgoingEdges: %v", err)
	}
	cardinality, ok := out[0].Metadata["cardinality"].(map[string]any)
	if !ok {
		t.Fatalf("expected cardinality metadata traced through ASSIGNED_FROM, got %+v", out[0].Metadata)
	}
	if cardinality["scale"] != "constant" {
		t.Fatalf("expected scale 'constant' for a findById method, got %+v", cardinality)
	}
}

func TestCardinalityEnricher_NoMatchLeavesEdgeUnannotated(t *testing.T) {
	g := newTestStore(t)
	factory := nodes.NewFactory()

	call, err := factory.CreateCall(nodes.CallParams{
		Name: "thing.transform", File: "a.js", Line: line(3), ScopePath: []string{},
		Object: "thing", Method: "transform",
	})
	if err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	mustAddNode(t, g, call)

	loop, err := factory.CreateLoop(nodes.LoopParams{
		File: "a.js", Line: line(3), ScopePath: []string{}, LoopKind: "for-of",
	})
	if err != nil {
		t.Fatalf("CreateLoop: %v", err)
	}
	mustAddNode(t, g, loop)

	edge, err := nodes.NewEdge(nodes.IteratesOver, loop.ID, call.ID, nil)
	if err != nil {
		t.Fatalf("NewEdge: %v", err)
	}
	if err := g.AddEdge(edge); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	result := NewCardinalityEnricher(nil).Execute(PluginContext{Graph: g})
	if !result.Success {
		t.Fatalf("Execute failed: %+v", result.Errors)
	}
	if result.Metadata["edgesCreated"] != 0 {
		t.Fatalf("expected no annotation for an unmatched call name, got %+v", result.Metadata)
	}
}
