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

func buildFile(t *testing.T, path, src string) (*Builder, *Graph) {
	t.Helper()
	p := visitor.NewTreeSitterParser()
	coll, err := p.ParseFile(path, []byte(src))
	if err != nil {
		t.Fatalf("ParseFile(%s): %v", path, err)
	}
	b := New()
	if err := b.BuildFile(path, coll); err != nil {
		t.Fatalf("BuildFile(%s): %v", path, err)
	}
	return b, b.Graph()
}

func nodesOfType(g *Graph, typ nodes.Type) []*nodes.NodeRecord {
	var out []*nodes.NodeRecord
	for _, n := range g.Nodes() {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// bindingNodes returns VARIABLE and CONSTANT nodes together, since a
// `const` declaration is stored as a CONSTANT node while `let`/`var`
// declarations are stored as VARIABLE — tests that don't care about the
// distinction can look up bindings regardless of declaration keyword.
func bindingNodes(g *Graph) []*nodes.NodeRecord {
	return append(nodesOfType(g, nodes.Variable), nodesOfType(g, nodes.Constant)...)
}

func edgesOfType(g *Graph, typ nodes.EdgeType) []*nodes.EdgeRecord {
	var out []*nodes.EdgeRecord
	for _, e := range g.Edges() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func hasEdge(edges []*nodes.EdgeRecord, src, dst string) bool {
	for _, e := range edges {
		if e.Src == src && e.Dst == dst {
			return true
		}
	}
	return false
}

// IDs are a pure function of (type, name, file, scope path, discriminator):
// building the same source twice yields identical node sets.
func TestBuildFile_DeterministicIDs(t *testing.T) {
	src := `
function greet(name) {
  return "hi " + name;
}
`
	_, g1 := buildFile(t, "greet.js", src)
	_, g2 := buildFile(t, "greet.js", src)

	if len(g1.Nodes()) != len(g2.Nodes()) {
		t.Fatalf("node count differs across builds: %d vs %d", len(g1.Nodes()), len(g2.Nodes()))
	}
	for _, n := range g1.Nodes() {
		if !g2.HasNode(n.ID) {
			t.Fatalf("node %s present in first build but not second", n.ID)
		}
	}
}

func TestBuildFile_FunctionContainedByModule(t *testing.T) {
	_, g := buildFile(t, "index.js", `
function main() {}
`)

	fns := nodesOfType(g, nodes.Function)
	if len(fns) != 1 {
		t.Fatalf("expected 1 function node, got %d", len(fns))
	}
	mods := nodesOfType(g, nodes.Module)
	if len(mods) != 1 {
		t.Fatalf("expected 1 module node, got %d", len(mods))
	}
	contains := edgesOfType(g, nodes.Contains)
	if !hasEdge(contains, mods[0].ID, fns[0].ID) {
		t.Fatalf("expected CONTAINS edge from module to function")
	}
}

func TestBuildFile_ClassExtendsAndImplementsResolve(t *testing.T) {
	_, g := buildFile(t, "shapes.ts", `
class Shape {}
interface Drawable {}
class Square extends Shape implements Drawable {
  draw() {}
}
`)

	classes := nodesOfType(g, nodes.Class)
	var shapeID, squareID string
	for _, c := range classes {
		switch c.Name {
		case "Shape":
			shapeID = c.ID
		case "Square":
			squareID = c.ID
		}
	}
	if shapeID == "" || squareID == "" {
		t.Fatalf("expected Shape and Square class nodes, got %+v", classes)
	}
	ifaces := nodesOfType(g, nodes.Interface)
	if len(ifaces) != 1 {
		t.Fatalf("expected 1 interface node, got %d", len(ifaces))
	}

	extends := edgesOfType(g, nodes.Extends)
	if !hasEdge(extends, squareID, shapeID) {
		t.Fatalf("expected EXTENDS edge Square -> Shape, got %+v", extends)
	}
	implements := edgesOfType(g, nodes.Implements)
	if !hasEdge(implements, squareID, ifaces[0].ID) {
		t.Fatalf("expected IMPLEMENTS edge Square -> Drawable, got %+v", implements)
	}
}

// An EXTENDS target not declared anywhere in this file (a cross-file or
// genuinely external base class) still gets an EXTENDS edge, pointed at a
// deduplicated isExternal placeholder CLASS node.
func TestBuildFile_ClassExtendsUnresolvedCreatesExternalPlaceholder(t *testing.T) {
	_, g := buildFile(t, "widget.ts", `
class Widget extends BaseWidget {}
`)

	classes := nodesOfType(g, nodes.Class)
	var widgetID, placeholderID string
	for _, c := range classes {
		switch c.Name {
		case "Widget":
			widgetID = c.ID
		case "BaseWidget":
			placeholderID = c.ID
		}
	}
	if widgetID == "" || placeholderID == "" {
		t.Fatalf("expected Widget and BaseWidget class nodes, got %+v", classes)
	}
	var placeholder *nodes.NodeRecord
	for _, c := range classes {
		if c.ID == placeholderID {
			placeholder = c
		}
	}
	if isExternal, _ := placeholder.Metadata["isExternal"].(bool); !isExternal {
		t.Fatalf("expected BaseWidget placeholder to have isExternal=true, got %+v", placeholder.Metadata)
	}

	extends := edgesOfType(g, nodes.Extends)
	if !hasEdge(extends, widgetID, placeholderID) {
		t.Fatalf("expected EXTENDS edge Widget -> external BaseWidget placeholder, got %+v", extends)
	}
}

// An unresolved IMPLEMENTS target gets the same external-placeholder
// treatment, deduplicated with any EXTENDS placeholder of the same name.
func TestBuildFile_ClassImplementsUnresolvedCreatesExternalPlaceholder(t *testing.T) {
	_, g := buildFile(t, "widget.ts", `
class Widget implements Serializable {}
`)

	classes := nodesOfType(g, nodes.Class)
	var widgetID string
	for _, c := range classes {
		if c.Name == "Widget" {
			widgetID = c.ID
		}
	}
	ifaces := nodesOfType(g, nodes.Interface)
	if len(ifaces) != 1 || ifaces[0].Name != "Serializable" {
		t.Fatalf("expected 1 external Serializable interface placeholder, got %+v", ifaces)
	}
	if isExternal, _ := ifaces[0].Metadata["isExternal"].(bool); !isExternal {
		t.Fatalf("expected Serializable placeholder to have isExternal=true, got %+v", ifaces[0].Metadata)
	}

	implements := edgesOfType(g, nodes.Implements)
	if !hasEdge(implements, widgetID, ifaces[0].ID) {
		t.Fatalf("expected IMPLEMENTS edge Widget -> external Serializable placeholder, got %+v", implements)
	}
}

// An interface extending an unresolved parent gets the same placeholder
// treatment as a class.
func TestBuildFile_InterfaceExtendsUnresolvedCreatesExternalPlaceholder(t *testing.T) {
	_, g := buildFile(t, "shapes.ts", `
interface Polygon extends Shape {}
`)

	ifaces := nodesOfType(g, nodes.Interface)
	var polygonID, placeholderID string
	for _, i := range ifaces {
		switch i.Name {
		case "Polygon":
			polygonID = i.ID
		case "Shape":
			placeholderID = i.ID
		}
	}
	if polygonID == "" || placeholderID == "" {
		t.Fatalf("expected Polygon and Shape interface nodes, got %+v", ifaces)
	}

	extends := edgesOfType(g, nodes.Extends)
	if !hasEdge(extends, polygonID, placeholderID) {
		t.Fatalf("expected EXTENDS edge Polygon -> external Shape placeholder, got %+v", extends)
	}
}

func TestBuildFile_WritesToEdgeAcrossAssignment(t *testing.T) {
	_, g := buildFile(t, "assign.js", `
let total = 0;
let amount = 5;
total = amount;
`)

	vars := nodesOfType(g, nodes.Variable)
	var totalID, amountID string
	for _, v := range vars {
		switch v.Name {
		case "total":
			totalID = v.ID
		case "amount":
			amountID = v.ID
		}
	}
	if totalID == "" || amountID == "" {
		t.Fatalf("expected total and amount variable nodes, got %+v", vars)
	}

	writesTo := edgesOfType(g, nodes.WritesTo)
	if !hasEdge(writesTo, amountID, totalID) {
		t.Fatalf("expected WRITES_TO edge amount -> total, got %+v", writesTo)
	}
}

func TestBuildFile_NoSelfLoopWhenAssignmentSourceUnresolvable(t *testing.T) {
	_, g := buildFile(t, "assign_literal.js", `
let total = 0;
total = 42;
`)

	writesTo := edgesOfType(g, nodes.WritesTo)
	for _, e := range writesTo {
		if e.Src == e.Dst {
			t.Fatalf("expected no self-loop WRITES_TO edge, got %+v", e)
		}
	}
	if len(writesTo) != 0 {
		t.Fatalf("expected no WRITES_TO edges when assignment source is a literal, got %+v", writesTo)
	}
}

func TestBuildFile_ArrayMutationEmitsModifiesFromCall(t *testing.T) {
	_, g := buildFile(t, "mutate.js", `
const items = [];
items.push(1);
`)

	vars := bindingNodes(g)
	if len(vars) != 1 {
		t.Fatalf("expected 1 variable node, got %d", len(vars))
	}
	itemsID := vars[0].ID

	calls := nodesOfType(g, nodes.Call)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call node, got %d", len(calls))
	}

	modifies := edgesOfType(g, nodes.Modifies)
	if !hasEdge(modifies, calls[0].ID, itemsID) {
		t.Fatalf("expected MODIFIES edge from the push() call to items, got %+v", modifies)
	}
	for _, e := range modifies {
		if e.Src == e.Dst {
			t.Fatalf("expected no self-loop MODIFIES edge, got %+v", e)
		}
	}
}

func TestBuildFile_ForOfIteratesOverEdge(t *testing.T) {
	_, g := buildFile(t, "iterate.js", `
const items = [];
for (const item of items) {
  use(item);
}
`)

	vars := bindingNodes(g)
	if len(vars) != 1 {
		t.Fatalf("expected 1 variable node, got %d", len(vars))
	}
	loops := nodesOfType(g, nodes.Loop)
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop node, got %d", len(loops))
	}
	iteratesOver := edgesOfType(g, nodes.IteratesOver)
	if !hasEdge(iteratesOver, loops[0].ID, vars[0].ID) {
		t.Fatalf("expected ITERATES_OVER edge loop -> items, got %+v", iteratesOver)
	}
}

// A loop that iterates a method call's result directly must point its
// ITERATES_OVER edge at the CALL node for that call expression, not at
// whatever "graph" happens to resolve to in scope.
func TestBuildFile_ForOfOverCallResultIteratesOverCallNode(t *testing.T) {
	_, g := buildFile(t, "iterate_call.js", `
function run(graph) {
  for (const n of graph.queryNodes()) {
    use(n);
  }
}
`)

	loops := nodesOfType(g, nodes.Loop)
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop node, got %d", len(loops))
	}
	calls := nodesOfType(g, nodes.Call)
	var queryCallID string
	for _, c := range calls {
		if c.Name == "graph.queryNodes" {
			queryCallID = c.ID
		}
	}
	if queryCallID == "" {
		t.Fatalf("expected a graph.queryNodes call node, got %+v", calls)
	}

	iteratesOver := edgesOfType(g, nodes.IteratesOver)
	if !hasEdge(iteratesOver, loops[0].ID, queryCallID) {
		t.Fatalf("expected ITERATES_OVER edge loop -> queryNodes call, got %+v", iteratesOver)
	}
}

func TestBuildFile_ObjectLiteralHasPropertyEdge(t *testing.T) {
	_, g := buildFile(t, "obj.js", `
const port = 8080;
const cfg = { port };
`)

	vars := bindingNodes(g)
	var portID string
	for _, v := range vars {
		if v.Name == "port" {
			portID = v.ID
		}
	}
	if portID == "" {
		t.Fatalf("expected port variable node, got %+v", vars)
	}
	literals := nodesOfType(g, nodes.ObjectLiteral)
	if len(literals) != 1 {
		t.Fatalf("expected 1 object literal node, got %d", len(literals))
	}
	hasProp := edgesOfType(g, nodes.HasProperty)
	if !hasEdge(hasProp, literals[0].ID, portID) {
		t.Fatalf("expected HAS_PROPERTY edge to port, got %+v", hasProp)
	}
}

func TestBuildFile_ArrayLiteralHasElementEdge(t *testing.T) {
	_, g := buildFile(t, "arr.js", `
const first = 1;
const list = [first];
`)

	vars := bindingNodes(g)
	var firstID string
	for _, v := range vars {
		if v.Name == "first" {
			firstID = v.ID
		}
	}
	if firstID == "" {
		t.Fatalf("expected first variable node, got %+v", vars)
	}
	literals := nodesOfType(g, nodes.ArrayLiteral)
	if len(literals) != 1 {
		t.Fatalf("expected 1 array literal node, got %d", len(literals))
	}
	hasElem := edgesOfType(g, nodes.HasElement)
	if !hasEdge(hasElem, literals[0].ID, firstID) {
		t.Fatalf("expected HAS_ELEMENT edge to first, got %+v", hasElem)
	}
}

// A variable initialized from a logical/binary expression of two in-scope
// identifiers gets an ASSIGNED_FROM edge to the composed EXPRESSION node,
// and that EXPRESSION node gets DERIVES_FROM edges to each operand.
func TestBuildFile_VariableAssignedFromExpressionDerivesFromOperands(t *testing.T) {
	_, g := buildFile(t, "fallback.js", `
const a = 1;
const b = 2;
const x = a || b;
`)

	vars := bindingNodes(g)
	var aID, bID, xID string
	for _, v := range vars {
		switch v.Name {
		case "a":
			aID = v.ID
		case "b":
			bID = v.ID
		case "x":
			xID = v.ID
		}
	}
	if aID == "" || bID == "" || xID == "" {
		t.Fatalf("expected a, b, and x constant nodes, got %+v", vars)
	}

	exprs := nodesOfType(g, nodes.Expression)
	if len(exprs) != 1 {
		t.Fatalf("expected 1 expression node, got %d: %+v", len(exprs), exprs)
	}
	exprID := exprs[0].ID

	assignedFrom := edgesOfType(g, nodes.AssignedFrom)
	if !hasEdge(assignedFrom, xID, exprID) {
		t.Fatalf("expected ASSIGNED_FROM edge x -> expression, got %+v", assignedFrom)
	}

	derivesFrom := edgesOfType(g, nodes.DerivesFrom)
	if !hasEdge(derivesFrom, exprID, aID) {
		t.Fatalf("expected DERIVES_FROM edge expression -> a, got %+v", derivesFrom)
	}
	if !hasEdge(derivesFrom, exprID, bID) {
		t.Fatalf("expected DERIVES_FROM edge expression -> b, got %+v", derivesFrom)
	}
}

func TestBuildFile_BareImportCreatesExternalModuleAndEdge(t *testing.T) {
	_, g := buildFile(t, "index.js", `
import React from 'react';
`)

	imports := nodesOfType(g, nodes.Import)
	if len(imports) != 1 {
		t.Fatalf("expected 1 import node, got %d", len(imports))
	}
	externals := nodesOfType(g, nodes.ExternalModule)
	if len(externals) != 1 {
		t.Fatalf("expected 1 external module node, got %d", len(externals))
	}
	importsFrom := edgesOfType(g, nodes.ImportsFrom)
	if !hasEdge(importsFrom, imports[0].ID, externals[0].ID) {
		t.Fatalf("expected IMPORTS_FROM edge import -> external module, got %+v", importsFrom)
	}
}

func TestBuildFile_RelativeImportDoesNotCreateExternalModule(t *testing.T) {
	_, g := buildFile(t, "index.js", `
import { helper } from './helper.js';
`)

	externals := nodesOfType(g, nodes.ExternalModule)
	if len(externals) != 0 {
		t.Fatalf("expected no external module node for a relative import, got %+v", externals)
	}
}

// A call whose bare name matches an IMPORT binding must not resolve to
// CALLS against the IMPORT node itself — that CALLS/HANDLED_BY pairing is
// pkg/enrich's external-call resolver's job once every file is built.
func TestBuildFile_CallMatchingImportNameIsQueuedNotResolvedToImport(t *testing.T) {
	b, g := buildFile(t, "index.js", `
import { Router } from 'express';
const r = Router();
`)

	imports := nodesOfType(g, nodes.Import)
	if len(imports) != 1 {
		t.Fatalf("expected 1 import node, got %d", len(imports))
	}

	calls := edgesOfType(g, nodes.Calls)
	for _, e := range calls {
		if e.Dst == imports[0].ID {
			t.Fatalf("expected no CALLS edge directly to an IMPORT node, got %+v", e)
		}
	}

	pending := b.PendingCalls()
	found := false
	for _, p := range pending {
		if p.Name == "Router" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the Router() call to be queued for external-call resolution, got %+v", pending)
	}
}

func TestBuildFile_UnresolvedCallIsQueued(t *testing.T) {
	b, _ := buildFile(t, "index.js", `
doSomethingExternal();
`)

	pending := b.PendingCalls()
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending call, got %d: %+v", len(pending), pending)
	}
	if pending[0].Name != "doSomethingExternal" {
		t.Fatalf("unexpected pending call: %+v", pending[0])
	}
}

func TestBuildFile_UnresolvedMethodCallIsQueuedWithObjectAndMethod(t *testing.T) {
	b, _ := buildFile(t, "index.js", `
externalThing.doWork();
`)

	pending := b.PendingCalls()
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending call, got %d: %+v", len(pending), pending)
	}
	if pending[0].Object != "externalThing" || pending[0].Method != "doWork" {
		t.Fatalf("unexpected pending call: %+v", pending[0])
	}
}

func TestBuildFile_ParameterContainedByFunction(t *testing.T) {
	_, g := buildFile(t, "index.js", `
function add(a, b) {
  return a + b;
}
`)

	fns := nodesOfType(g, nodes.Function)
	if len(fns) != 1 {
		t.Fatalf("expected 1 function node, got %d", len(fns))
	}
	params := nodesOfType(g, nodes.Parameter)
	if len(params) != 2 {
		t.Fatalf("expected 2 parameter nodes, got %d", len(params))
	}
	contains := edgesOfType(g, nodes.Contains)
	for _, p := range params {
		if !hasEdge(contains, fns[0].ID, p.ID) {
			t.Fatalf("expected CONTAINS edge function -> parameter %s", p.Name)
		}
	}
}

func TestGraph_AddNodeDedupesByID(t *testing.T) {
	g := NewGraph()
	n := &nodes.NodeRecord{ID: "x", Type: nodes.Module, Name: "x"}
	if !g.AddNode(n) {
		t.Fatalf("expected first insert to succeed")
	}
	if g.AddNode(n) {
		t.Fatalf("expected duplicate insert to be rejected")
	}
	if len(g.Nodes()) != 1 {
		t.Fatalf("expected 1 node after duplicate insert, got %d", len(g.Nodes()))
	}
}

func TestGraph_AddEdgeDedupesByTypeSrcDst(t *testing.T) {
	g := NewGraph()
	e, err := nodes.NewEdge(nodes.Contains, "a", "b", nil)
	if err != nil {
		t.Fatalf("NewEdge: %v", err)
	}
	if !g.AddEdge(e) {
		t.Fatalf("expected first insert to succeed")
	}
	dup, err := nodes.NewEdge(nodes.Contains, "a", "b", map[string]any{"ignored": true})
	if err != nil {
		t.Fatalf("NewEdge: %v", err)
	}
	if g.AddEdge(dup) {
		t.Fatalf("expected duplicate (type, src, dst) insert to be rejected")
	}
	if len(g.Edges()) != 1 {
		t.Fatalf("expected 1 edge after duplicate insert, got %d", len(g.Edges()))
	}
}

func TestBuilder_AddEdgeRejectsUnknownEdgeType(t *testing.T) {
	b := New()
	b.addEdge(nodes.EdgeType("NOT_A_REAL_EDGE_TYPE"), "a", "b", nil)
	if len(b.Graph().Edges()) != 0 {
		t.Fatalf("expected unknown edge type to be silently dropped, got %+v", b.Graph().Edges())
	}
}
