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

// Package visitor walks a tree-sitter JS/TS syntax tree once per file and
// emits typed info records into a VisitorCollections bundle. Visitors never
// call pkg/nodes factories directly and never write to a store — that is
// pkg/builder's job, consuming these collections. Keeping extraction and
// construction separate is what lets the builder run its two-pass
// create-then-resolve sequence against a stable, already-complete set of
// per-file facts.
package visitor

// Pos captures a node's source position. Line is 0-indexed, matching
// tree-sitter's row numbering and the node factories' "line === 0 is valid"
// contract; this is a deliberate deviation from the teacher's 1-indexed
// convention, made to satisfy that contract literally.
type Pos struct {
	Line   int
	Column int
}

// ModuleInfo describes the single MODULE record for a file.
type ModuleInfo struct {
	File             string
	Pos              Pos
	HasTopLevelAwait bool
}

// FunctionInfo describes one function-shaped declaration: function
// declarations, arrow/function expressions bound to a name, methods, and
// TS method/function signatures.
type FunctionInfo struct {
	Name          string
	Pos           Pos
	ScopePath     []string
	Discriminator int
	ParentScopeID string
	IsAsync       bool
	IsGenerator   bool
	IsArrow       bool
}

// ClassInfo describes a class declaration.
type ClassInfo struct {
	Name          string
	Pos           Pos
	ScopePath     []string
	Discriminator int
	Extends       string
	Implements    []string
}

// InterfaceInfo describes a TypeScript interface declaration.
type InterfaceInfo struct {
	Name       string
	Pos        Pos
	Extends    []string
	Properties []string
}

// TypeAliasInfo describes a TypeScript `type X = …` declaration.
type TypeAliasInfo struct {
	Name          string
	Pos           Pos
	ScopePath     []string
	Discriminator int
}

// EnumInfo describes a TypeScript enum declaration.
type EnumInfo struct {
	Name          string
	Pos           Pos
	ScopePath     []string
	Discriminator int
}

// ImportInfo describes one IMPORT binding.
type ImportInfo struct {
	Source        string
	Local         string
	Imported      string
	Pos           Pos
	ImportType    string
	ImportBinding string
	IsDynamic     bool
	IsResolvable  bool
}

// ExportInfo describes one EXPORT specifier.
type ExportInfo struct {
	Name       string
	Local      string
	Pos        Pos
	IsDefault  bool
	ExportType string
	Source     string
}

// VariableInfo describes one variable declarator binding (one per
// destructured name).
type VariableInfo struct {
	Name          string
	Pos           Pos
	ScopePath     []string
	Discriminator int
	ParentScopeID string
	IsConst       bool
	// AssignedFromRef names the identifier this binding was initialized
	// from, when the initializer is itself an Identifier; resolved to an
	// ASSIGNED_FROM edge by the builder. Empty when the initializer is a
	// literal or an expression already captured as its own EXPRESSION info.
	AssignedFromRef string
	// AssignedFromExpr, when non-empty, holds the composed ID of the
	// EXPRESSION node this binding was initialized from (set instead of
	// AssignedFromRef for binary/logical initializers).
	AssignedFromExpr string
}

// ParameterInfo describes one function parameter.
type ParameterInfo struct {
	Name          string
	Pos           Pos
	ScopePath     []string
	Discriminator int
	FunctionID    string
}

// ScopeInfo describes one structural (non-function) scope: if/else/try/
// catch/finally/switch/block/for/while/do-while.
type ScopeInfo struct {
	ScopeType        string
	Pos              Pos
	ScopePath        []string
	Discriminator    int
	ParentScopeID    string
	ParentFunctionID string
	Conditional      bool
}

// CallInfo describes one call expression.
type CallInfo struct {
	Name          string
	Pos           Pos
	ScopePath     []string
	Discriminator int
	Object        string
	Method        string
	IsNew         bool
	IsAwaited     bool
	IsDynamic     bool
	// Arguments lists, per positional argument, the source identifier name
	// when the argument is itself an Identifier (empty otherwise); used by
	// the builder to emit PASSES_ARGUMENT edges to resolvable sources.
	Arguments []string
}

// ExpressionInfo describes a LogicalExpression/BinaryExpression/
// MemberExpression occurrence.
type ExpressionInfo struct {
	Name            string
	Pos             Pos
	ScopePath       []string
	Discriminator   int
	ExpressionType  string
	Operator        string
	LeftSourceName  string
	RightSourceName string
}

// LoopInfo describes one loop statement.
type LoopInfo struct {
	Pos               Pos
	ScopePath         []string
	Discriminator     int
	LoopKind          string
	IgnoreCardinality bool
	// IteratesOverRef names the identifier or call the loop iterates over
	// (e.g. "graph.queryNodes()" becomes "graph" with Method "queryNodes"),
	// resolved to an ITERATES_OVER edge by the builder.
	IteratesOverRef    string
	IteratesOverMethod string
}

// ObjectLiteralInfo describes one object literal occurrence.
type ObjectLiteralInfo struct {
	Pos           Pos
	ScopePath     []string
	Discriminator int
	// Properties lists each property key with the value's source identifier
	// name, when the value is an Identifier.
	Properties []ObjectPropertyInfo
}

// ObjectPropertyInfo describes one key/value pair of an object literal.
type ObjectPropertyInfo struct {
	Key             string
	ValueRef        string
	ValueScopePath  []string
}

// ArrayLiteralInfo describes one array literal occurrence.
type ArrayLiteralInfo struct {
	Pos           Pos
	ScopePath     []string
	Discriminator int
	// Elements lists, per positional element, the source identifier name
	// when the element is an Identifier (empty otherwise).
	Elements []string
}

// VariableAssignmentInfo describes a plain assignment expression
// (`x = y`), used to emit WRITES_TO edges.
type VariableAssignmentInfo struct {
	Target    string
	Pos       Pos
	ScopePath []string
	SourceRef string
}

// MutationInfo describes a mutating method call on an array or object
// (`arr.push(x)`, `obj.foo = y` already covered by VariableAssignmentInfo).
type MutationInfo struct {
	Target    string
	Method    string
	Pos       Pos
	ScopePath []string
}

// VisitorCollections bundles every typed info record collected from one
// file's AST, per §4.3.
type VisitorCollections struct {
	Module              ModuleInfo
	Functions           []FunctionInfo
	Classes             []ClassInfo
	Interfaces          []InterfaceInfo
	TypeAliases         []TypeAliasInfo
	Enums               []EnumInfo
	Imports             []ImportInfo
	Exports             []ExportInfo
	Variables           []VariableInfo
	Parameters          []ParameterInfo
	Scopes              []ScopeInfo
	Calls               []CallInfo
	MethodCalls         []CallInfo
	Expressions         []ExpressionInfo
	Loops               []LoopInfo
	ObjectLiterals      []ObjectLiteralInfo
	ArrayLiterals       []ArrayLiteralInfo
	VariableAssignments []VariableAssignmentInfo
	ArrayMutations      []MutationInfo
	ObjectMutations     []MutationInfo
}
