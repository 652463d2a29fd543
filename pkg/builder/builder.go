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
	"strconv"
	"strings"

	"github.com/grafema-dev/grafema/pkg/nodes"
	"github.com/grafema-dev/grafema/pkg/semantic"
	"github.com/grafema-dev/grafema/pkg/visitor"
)

// UnresolvedCall is a direct or method call the builder could not resolve
// against this file's own scope index — either a cross-file reference to
// another module's export, or a call on an imported/external symbol.
// pkg/enrich's external-call resolver plugin consumes these once every
// file in a run has been built.
type UnresolvedCall struct {
	CallID    string
	File      string
	ScopePath []string
	Name      string
	Object    string
	Method    string
}

// Builder runs the two-pass create-then-resolve algorithm across every
// file in one analysis run: BuildFile constructs and indexes every node a
// file's VisitorCollections describes; edges that need another file's
// nodes, or a later file's exports, are left for pkg/enrich.
// One Builder accumulates a single Graph across all files in a run.
type Builder struct {
	factory             *nodes.Factory
	graph               *Graph
	idx                 *scopeIndex
	pendingCalls        []UnresolvedCall
	externalModules     map[string]string // packageName -> EXTERNAL_MODULE node ID
	externalClasses     map[string]string // name -> placeholder CLASS node ID
	externalInterfaces  map[string]string // name -> placeholder INTERFACE node ID
}

// New returns a Builder with an empty Graph, ready to accept files.
func New() *Builder {
	return &Builder{
		factory:            nodes.NewFactory(),
		graph:              NewGraph(),
		idx:                newScopeIndex(),
		externalModules:    make(map[string]string),
		externalClasses:    make(map[string]string),
		externalInterfaces: make(map[string]string),
	}
}

// Graph returns the accumulated graph. Safe to call after every BuildFile,
// though edges depending on cross-file resolution are only complete after
// pkg/enrich's resolver plugin has also run.
func (b *Builder) Graph() *Graph { return b.graph }

// PendingCalls returns every call the builder could not resolve locally.
func (b *Builder) PendingCalls() []UnresolvedCall { return b.pendingCalls }

func ptr(i int) *int { return &i }

// BuildFile constructs every node in coll and binds this file's scope index
// so the file's own forward/backward references can find it. Call once per
// parsed file, in any order — intra-file edges are fully resolved here; the
// scope index is never consulted across files, and calls it cannot resolve
// are buffered in PendingCalls.
func (b *Builder) BuildFile(file string, coll *visitor.VisitorCollections) error {
	if err := b.buildModule(file, coll); err != nil {
		return err
	}
	if err := b.buildDeclarations(file, coll); err != nil {
		return err
	}
	if err := b.buildImportsExports(file, coll); err != nil {
		return err
	}
	if err := b.buildScopesAndCalls(file, coll); err != nil {
		return err
	}
	if err := b.buildExpressionsAndLiterals(file, coll); err != nil {
		return err
	}
	b.buildMutationEdges(file, coll)
	return nil
}

func (b *Builder) buildModule(file string, coll *visitor.VisitorCollections) error {
	mod, err := b.factory.CreateModule(nodes.ModuleParams{File: file, Line: ptr(0)})
	if err != nil {
		return err
	}
	if coll.Module.HasTopLevelAwait {
		mod.Upsert("hasTopLevelAwait", true)
	}
	b.graph.AddNode(mod)
	return nil
}

// addEdge constructs the edge through nodes.NewEdge, so every edge the
// builder inserts passes the same type/endpoint validation as any other
// caller — a malformed or unknown edge type is a programming error here,
// not something to smooth over, and is dropped rather than panicking.
func (b *Builder) addEdge(edgeType nodes.EdgeType, src, dst string, metadata map[string]any) {
	edge, err := nodes.NewEdge(edgeType, src, dst, metadata)
	if err != nil {
		return
	}
	b.graph.AddEdge(edge)
}

func (b *Builder) containsEdge(parentID, childID string) {
	b.addEdge(nodes.Contains, parentID, childID, nil)
}

func moduleID(file string) string {
	f := nodes.Factory{}
	rec, err := f.CreateModule(nodes.ModuleParams{File: file, Line: ptr(0)})
	if err != nil {
		return ""
	}
	return rec.ID
}

func (b *Builder) buildDeclarations(file string, coll *visitor.VisitorCollections) error {
	modID := moduleID(file)

	for _, fn := range coll.Functions {
		rec, err := b.factory.CreateFunction(nodes.FunctionParams{
			Name: fn.Name, File: file, Line: ptr(fn.Pos.Line), Column: fn.Pos.Column,
			ScopePath: fn.ScopePath, Discriminator: fn.Discriminator,
			ParentScopeID: fn.ParentScopeID, IsAsync: fn.IsAsync, IsGenerator: fn.IsGenerator, IsArrow: fn.IsArrow,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.idx.bind(file, fn.ScopePath, fn.Name, rec.ID)
		parent := fn.ParentScopeID
		if parent == "" {
			parent = modID
		}
		b.containsEdge(parent, rec.ID)
	}

	for _, cls := range coll.Classes {
		rec, err := b.factory.CreateClass(nodes.ClassParams{
			Name: cls.Name, File: file, Line: ptr(cls.Pos.Line), Column: cls.Pos.Column,
			ScopePath: cls.ScopePath, Discriminator: cls.Discriminator,
			Extends: cls.Extends, Implements: cls.Implements,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.idx.bind(file, cls.ScopePath, cls.Name, rec.ID)
		b.containsEdge(modID, rec.ID)
	}
	for _, cls := range coll.Classes {
		classID, _ := b.idx.resolve(file, cls.ScopePath, cls.Name)
		if cls.Extends != "" {
			target, ok := b.idx.resolve(file, cls.ScopePath, cls.Extends)
			if !ok {
				target = b.externalClassID(cls.Extends)
			}
			b.addEdge(nodes.Extends, classID, target, nil)
		}
		for _, iface := range cls.Implements {
			target, ok := b.idx.resolve(file, cls.ScopePath, iface)
			if !ok {
				target = b.externalInterfaceID(iface)
			}
			b.addEdge(nodes.Implements, classID, target, nil)
		}
	}

	for _, iface := range coll.Interfaces {
		rec, err := b.factory.CreateInterface(nodes.InterfaceParams{
			Name: iface.Name, File: file, Line: ptr(iface.Pos.Line), Column: iface.Pos.Column,
			Extends: iface.Extends, Properties: iface.Properties,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.idx.bindGlobal(file, iface.Name, rec.ID)
		b.containsEdge(modID, rec.ID)
	}
	for _, iface := range coll.Interfaces {
		ifaceID, _ := b.idx.resolve(file, nil, iface.Name)
		for _, parent := range iface.Extends {
			target, ok := b.idx.resolve(file, nil, parent)
			if !ok {
				target = b.externalInterfaceID(parent)
			}
			b.addEdge(nodes.Extends, ifaceID, target, nil)
		}
	}

	for _, ta := range coll.TypeAliases {
		rec, err := b.factory.CreateTypeAlias(nodes.TypeAliasParams{
			Name: ta.Name, File: file, Line: ptr(ta.Pos.Line), Column: ta.Pos.Column,
			ScopePath: ta.ScopePath, Discriminator: ta.Discriminator,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.idx.bind(file, ta.ScopePath, ta.Name, rec.ID)
		b.containsEdge(modID, rec.ID)
	}

	for _, en := range coll.Enums {
		rec, err := b.factory.CreateEnum(nodes.EnumParams{
			Name: en.Name, File: file, Line: ptr(en.Pos.Line), Column: en.Pos.Column,
			ScopePath: en.ScopePath, Discriminator: en.Discriminator,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.idx.bind(file, en.ScopePath, en.Name, rec.ID)
		b.containsEdge(modID, rec.ID)
	}

	for _, v := range coll.Variables {
		rec, err := b.factory.CreateVariable(nodes.VariableParams{
			Name: v.Name, File: file, Line: ptr(v.Pos.Line), Column: v.Pos.Column,
			ScopePath: v.ScopePath, Discriminator: v.Discriminator,
			ParentScopeID: v.ParentScopeID, IsConst: v.IsConst,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.idx.bind(file, v.ScopePath, v.Name, rec.ID)
		parent := v.ParentScopeID
		if parent == "" {
			parent = modID
		}
		b.containsEdge(parent, rec.ID)
	}
	for _, v := range coll.Variables {
		if v.AssignedFromRef == "" && v.AssignedFromExpr == "" {
			continue
		}
		varID, _ := b.idx.resolve(file, v.ScopePath, v.Name)
		if v.AssignedFromRef != "" {
			if src, ok := b.idx.resolve(file, v.ScopePath, v.AssignedFromRef); ok {
				b.addEdge(nodes.AssignedFrom, varID, src, nil)
			}
		}
		if v.AssignedFromExpr != "" {
			// AssignedFromExpr already names the EXPRESSION node's composed
			// ID (handlers_variable.go's initializerRefs derives it via the
			// same ID scheme buildExpressionsAndLiterals uses below), so no
			// scope-index resolution is needed — the target node just
			// hasn't been inserted into the graph yet.
			b.addEdge(nodes.AssignedFrom, varID, v.AssignedFromExpr, nil)
		}
	}

	for _, p := range coll.Parameters {
		rec, err := b.factory.CreateParameter(nodes.ParameterParams{
			Name: p.Name, File: file, Line: ptr(p.Pos.Line), Column: p.Pos.Column,
			ScopePath: p.ScopePath, Discriminator: p.Discriminator, FunctionID: p.FunctionID,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.idx.bind(file, p.ScopePath, p.Name, rec.ID)
		b.containsEdge(p.FunctionID, rec.ID)
	}

	return nil
}

func (b *Builder) buildImportsExports(file string, coll *visitor.VisitorCollections) error {
	modID := moduleID(file)

	for _, imp := range coll.Imports {
		rec, err := b.factory.CreateImport(nodes.ImportParams{
			Source: imp.Source, Local: imp.Local, Imported: imp.Imported,
			File: file, Line: ptr(imp.Pos.Line), Column: imp.Pos.Column,
			ImportType: imp.ImportType, ImportBinding: imp.ImportBinding,
			IsDynamic: imp.IsDynamic, IsResolvable: imp.IsResolvable,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		if imp.Local != "" && imp.Local != "*" {
			b.idx.bindGlobal(file, imp.Local, rec.ID)
		}
		b.containsEdge(modID, rec.ID)

		if isBareSpecifier(imp.Source) {
			extID := b.externalModuleID(semantic.PackageNameFromSource(imp.Source))
			b.addEdge(nodes.ImportsFrom, rec.ID, extID, nil)
		}
	}

	for _, exp := range coll.Exports {
		rec, err := b.factory.CreateExport(nodes.ExportParams{
			Name: exp.Name, Local: exp.Local, File: file, Line: ptr(exp.Pos.Line), Column: exp.Pos.Column,
			IsDefault: exp.IsDefault, ExportType: exp.ExportType, Source: exp.Source,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.containsEdge(modID, rec.ID)
	}

	return nil
}

// externalModuleID returns the deduplicated EXTERNAL_MODULE node ID for
// packageName, creating and inserting the node on first use.
func (b *Builder) externalModuleID(packageName string) string {
	if id, ok := b.externalModules[packageName]; ok {
		return id
	}
	rec, err := b.factory.CreateExternalModule(nodes.ExternalModuleParams{PackageName: packageName})
	if err != nil {
		return ""
	}
	b.graph.AddNode(rec)
	b.externalModules[packageName] = rec.ID
	return rec.ID
}

// externalClassID returns the deduplicated placeholder CLASS node ID for an
// EXTENDS target that did not resolve against this file's scope index —
// a base class declared in another file or outside the analyzed tree.
func (b *Builder) externalClassID(name string) string {
	if id, ok := b.externalClasses[name]; ok {
		return id
	}
	rec, err := b.factory.CreateClass(nodes.ClassParams{Name: name, IsExternal: true})
	if err != nil {
		return ""
	}
	b.graph.AddNode(rec)
	b.externalClasses[name] = rec.ID
	return rec.ID
}

// externalInterfaceID returns the deduplicated placeholder INTERFACE node ID
// for an EXTENDS/IMPLEMENTS target that did not resolve against this file's
// scope index.
func (b *Builder) externalInterfaceID(name string) string {
	if id, ok := b.externalInterfaces[name]; ok {
		return id
	}
	rec, err := b.factory.CreateInterface(nodes.InterfaceParams{Name: name, IsExternal: true})
	if err != nil {
		return ""
	}
	b.graph.AddNode(rec)
	b.externalInterfaces[name] = rec.ID
	return rec.ID
}

// isBareSpecifier reports whether an import source names an installed
// package rather than a relative/absolute file path.
func isBareSpecifier(source string) bool {
	return source != "" && !strings.HasPrefix(source, ".") && !strings.HasPrefix(source, "/")
}

func (b *Builder) buildScopesAndCalls(file string, coll *visitor.VisitorCollections) error {
	for _, sc := range coll.Scopes {
		rec, err := b.factory.CreateScope(nodes.ScopeParams{
			ScopeType: sc.ScopeType, File: file, Line: ptr(sc.Pos.Line), Column: sc.Pos.Column,
			ScopePath: sc.ScopePath, Discriminator: sc.Discriminator,
			ParentScopeID: sc.ParentScopeID, ParentFunctionID: sc.ParentFunctionID, Conditional: sc.Conditional,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		parent := sc.ParentScopeID
		if parent == "" {
			parent = moduleID(file)
		}
		b.containsEdge(parent, rec.ID)
	}

	type pendingLoop struct {
		recID string
		info  visitor.LoopInfo
	}
	var loopRecs []pendingLoop

	for _, l := range coll.Loops {
		rec, err := b.factory.CreateLoop(nodes.LoopParams{
			File: file, Line: ptr(l.Pos.Line), Column: l.Pos.Column,
			ScopePath: l.ScopePath, Discriminator: l.Discriminator,
			LoopKind: l.LoopKind, IgnoreCardinality: l.IgnoreCardinality,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.containsEdge(moduleID(file), rec.ID)
		loopRecs = append(loopRecs, pendingLoop{recID: rec.ID, info: l})
	}

	mutations := mutationLookup(coll)
	// callsByObjectMethodLine correlates a loop's "obj.method()" iteration
	// source with the CALL node the generic call handler separately
	// records for that same call expression, so a loop directly iterating
	// a call result (`for (const x of graph.queryNodes())`) points its
	// ITERATES_OVER edge at the CALL itself rather than at "graph".
	callsByObjectMethodLine := make(map[string]string)

	for _, c := range coll.Calls {
		rec, err := b.factory.CreateCall(nodes.CallParams{
			Name: c.Name, File: file, Line: ptr(c.Pos.Line), Column: c.Pos.Column,
			ScopePath: c.ScopePath, Discriminator: c.Discriminator,
			Object: c.Object, Method: c.Method, IsNew: c.IsNew, IsAwaited: c.IsAwaited, IsDynamic: c.IsDynamic,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.containsEdge(moduleID(file), rec.ID)

		if c.Object != "" && c.Method != "" {
			callsByObjectMethodLine[c.Object+"|"+c.Method+"|"+strconv.Itoa(c.Pos.Line)] = rec.ID
		}

		for _, arg := range c.Arguments {
			if target, ok := b.idx.resolve(file, c.ScopePath, arg); ok {
				b.addEdge(nodes.PassesArgument, rec.ID, target, nil)
			}
		}

		if mutations[mutationKey(c.Pos, c.Object, c.Method)] {
			if target, ok := b.idx.resolve(file, c.ScopePath, c.Object); ok {
				b.addEdge(nodes.Modifies, rec.ID, target, nil)
			}
		}

		b.resolveOrQueueCall(file, rec.ID, c)
	}

	for _, pl := range loopRecs {
		l := pl.info
		if l.IteratesOverRef == "" {
			continue
		}
		if l.IteratesOverMethod != "" {
			if callID, ok := callsByObjectMethodLine[l.IteratesOverRef+"|"+l.IteratesOverMethod+"|"+strconv.Itoa(l.Pos.Line)]; ok {
				b.addEdge(nodes.IteratesOver, pl.recID, callID, nil)
				continue
			}
		}
		if target, ok := b.idx.resolve(file, l.ScopePath, l.IteratesOverRef); ok {
			b.addEdge(nodes.IteratesOver, pl.recID, target, nil)
		}
	}

	return nil
}

// mutationKey identifies a call site by position and (object, method) pair,
// used to correlate a visitor.CallInfo with the separate MutationInfo the
// visitor records for the same call when it names a known in-place mutator.
func mutationKey(pos visitor.Pos, object, method string) string {
	return object + "|" + method + "|" + strconv.Itoa(pos.Line) + ":" + strconv.Itoa(pos.Column)
}

func mutationLookup(coll *visitor.VisitorCollections) map[string]bool {
	out := make(map[string]bool, len(coll.ArrayMutations)+len(coll.ObjectMutations))
	for _, m := range coll.ArrayMutations {
		out[mutationKey(m.Pos, m.Target, m.Method)] = true
	}
	for _, m := range coll.ObjectMutations {
		out[mutationKey(m.Pos, m.Target, m.Method)] = true
	}
	return out
}

// isImportNode reports whether id names an IMPORT node. A call whose name
// or object resolves to an import binding is never wired to CALLS/CALLS_ON
// here — that resolution belongs to pkg/enrich's external-call resolver,
// which is the only thing allowed to decide between an EXTERNAL_MODULE and
// a cross-file FUNCTION target and to pair it with HANDLED_BY.
func (b *Builder) isImportNode(id string) bool {
	n, ok := b.graph.Node(id)
	return ok && n.Type == nodes.Import
}

// resolveOrQueueCall attempts local resolution of a call's target: a
// direct call against the file's function index, or a method call against
// the object's own declaration. Anything it cannot resolve locally — which
// includes any call or method-call whose name/object is an import binding
// rather than a same-file declaration — is queued as an UnresolvedCall for
// pkg/enrich.
func (b *Builder) resolveOrQueueCall(file, callID string, c visitor.CallInfo) {
	if c.Object == "" {
		if target, ok := b.idx.resolve(file, c.ScopePath, c.Name); ok && !b.isImportNode(target) {
			b.addEdge(nodes.Calls, callID, target, nil)
			return
		}
		b.pendingCalls = append(b.pendingCalls, UnresolvedCall{CallID: callID, File: file, ScopePath: c.ScopePath, Name: c.Name})
		return
	}

	if target, ok := b.idx.resolve(file, c.ScopePath, c.Object); ok && !b.isImportNode(target) {
		b.addEdge(nodes.CallsOn, callID, target, nil)
		return
	}
	b.pendingCalls = append(b.pendingCalls, UnresolvedCall{
		CallID: callID, File: file, ScopePath: c.ScopePath, Name: c.Name, Object: c.Object, Method: c.Method,
	})
}

func (b *Builder) buildExpressionsAndLiterals(file string, coll *visitor.VisitorCollections) error {
	modID := moduleID(file)

	for _, e := range coll.Expressions {
		rec, err := b.factory.CreateExpression(nodes.ExpressionParams{
			Name: e.Name, File: file, Line: ptr(e.Pos.Line), Column: e.Pos.Column,
			ScopePath: e.ScopePath, Discriminator: e.Discriminator,
			ExpressionType: e.ExpressionType, Operator: e.Operator,
			LeftSourceName: e.LeftSourceName, RightSourceName: e.RightSourceName,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.containsEdge(modID, rec.ID)

		if e.LeftSourceName != "" {
			if target, ok := b.idx.resolve(file, e.ScopePath, e.LeftSourceName); ok {
				b.addEdge(nodes.DerivesFrom, rec.ID, target, nil)
			}
		}
		if e.RightSourceName != "" {
			if target, ok := b.idx.resolve(file, e.ScopePath, e.RightSourceName); ok {
				b.addEdge(nodes.DerivesFrom, rec.ID, target, nil)
			}
		}
	}

	for _, ol := range coll.ObjectLiterals {
		rec, err := b.factory.CreateObjectLiteral(nodes.ObjectLiteralParams{
			File: file, Line: ptr(ol.Pos.Line), Column: ol.Pos.Column,
			ScopePath: ol.ScopePath, Discriminator: ol.Discriminator,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.containsEdge(modID, rec.ID)
		for _, prop := range ol.Properties {
			if prop.ValueRef == "" {
				continue
			}
			if target, ok := b.idx.resolve(file, ol.ScopePath, prop.ValueRef); ok {
				b.addEdge(nodes.HasProperty, rec.ID, target, map[string]any{"key": prop.Key})
			}
		}
	}

	for _, al := range coll.ArrayLiterals {
		rec, err := b.factory.CreateArrayLiteral(nodes.ArrayLiteralParams{
			File: file, Line: ptr(al.Pos.Line), Column: al.Pos.Column,
			ScopePath: al.ScopePath, Discriminator: al.Discriminator,
		})
		if err != nil {
			return err
		}
		b.graph.AddNode(rec)
		b.containsEdge(modID, rec.ID)
		for i, elem := range al.Elements {
			if elem == "" {
				continue
			}
			if target, ok := b.idx.resolve(file, al.ScopePath, elem); ok {
				b.addEdge(nodes.HasElement, rec.ID, target, map[string]any{"index": i})
			}
		}
	}

	return nil
}

// buildMutationEdges emits WRITES_TO for `target = source` assignments
// where both sides resolve to a binding in this file. An assignment whose
// right-hand side is a literal or call result (no SourceRef) has nothing to
// connect — the VARIABLE node's own occurrence already records the write
// site via its position, so no self-loop is emitted in that case.
func (b *Builder) buildMutationEdges(file string, coll *visitor.VisitorCollections) {
	for _, wa := range coll.VariableAssignments {
		if wa.SourceRef == "" {
			continue
		}
		target, ok := b.idx.resolve(file, wa.ScopePath, wa.Target)
		if !ok {
			continue
		}
		if src, ok := b.idx.resolve(file, wa.ScopePath, wa.SourceRef); ok {
			b.addEdge(nodes.WritesTo, src, target, nil)
		}
	}
}
