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

package visitor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/grafema-dev/grafema/pkg/semantic"
)

// handleFunctionDeclaration emits a FUNCTION info for `function name(){}`
// (and its generator form), enters its scope, extracts parameters, and
// recurses into the body.
func handleFunctionDeclaration(ctx *AnalysisContext, n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	name := text(ctx, nameNode)
	if name == "" {
		name = "<anonymous>"
	}

	enterFunctionScope(ctx, n, name, nodeHasChildOfType(n, "async"), n.Type() == "generator_function_declaration", false)
	defer exitFunctionScope(ctx)

	extractParameters(ctx, n)
	walkChildren(ctx, n.ChildByFieldName("body"))
}

// handleMethodDefinition emits a FUNCTION info for a class method.
func handleMethodDefinition(ctx *AnalysisContext, n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	name := text(ctx, nameNode)

	enterFunctionScope(ctx, n, name, nodeHasChildOfType(n, "async"), nodeHasChildOfType(n, "*"), false)
	defer exitFunctionScope(ctx)

	extractParameters(ctx, n)
	walkChildren(ctx, n.ChildByFieldName("body"))
}

// handleMethodSignature emits a FUNCTION info for an interface method
// signature, which has no body to recurse into.
func handleMethodSignature(ctx *AnalysisContext, n *sitter.Node) {
	name := text(ctx, n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	disc := ctx.nextDiscriminator("FUNCTION", name)
	ctx.Coll.Functions = append(ctx.Coll.Functions, FunctionInfo{
		Name:          name,
		Pos:           posOf(n),
		ScopePath:     ctx.Scope.Current().ScopePath,
		Discriminator: disc,
		ParentScopeID: ctx.Scope.CurrentScopeID(),
	})
}

// handleFunctionSignature emits a FUNCTION info for a TS `declare function`
// signature, which likewise has no body.
func handleFunctionSignature(ctx *AnalysisContext, n *sitter.Node) {
	name := text(ctx, n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	disc := ctx.nextDiscriminator("FUNCTION", name)
	ctx.Coll.Functions = append(ctx.Coll.Functions, FunctionInfo{
		Name:          name,
		Pos:           posOf(n),
		ScopePath:     ctx.Scope.Current().ScopePath,
		Discriminator: disc,
		ParentScopeID: ctx.Scope.CurrentScopeID(),
	})
}

// handleAnonymousFunction emits a FUNCTION info for a standalone arrow
// function not bound to a name by a variable_declarator (e.g. passed
// inline as a callback argument).
func handleAnonymousFunction(ctx *AnalysisContext, n *sitter.Node) {
	anon := ctx.nextAnon()
	enterFunctionScopeDiscriminated(ctx, n, "<anonymous>", anon, nodeHasChildOfType(n, "async"), false, true)
	defer exitFunctionScope(ctx)

	extractParameters(ctx, n)
	walkChildren(ctx, n.ChildByFieldName("body"))
}

// enterFunctionScope records a named FUNCTION info and pushes its scope
// frame, auto-assigning a discriminator for same-named siblings.
func enterFunctionScope(ctx *AnalysisContext, n *sitter.Node, name string, isAsync, isGenerator, isArrow bool) {
	disc := ctx.nextDiscriminator("FUNCTION", name)
	enterFunctionScopeDiscriminated(ctx, n, name, disc, isAsync, isGenerator, isArrow)
}

func enterFunctionScopeDiscriminated(ctx *AnalysisContext, n *sitter.Node, name string, disc int, isAsync, isGenerator, isArrow bool) {
	parentScopeID := ctx.Scope.CurrentScopeID()
	scopePath := ctx.Scope.Current().ScopePath

	fnID := composeFunctionID(ctx, name, disc)
	ctx.Coll.Functions = append(ctx.Coll.Functions, FunctionInfo{
		Name:          name,
		Pos:           posOf(n),
		ScopePath:     scopePath,
		Discriminator: disc,
		ParentScopeID: parentScopeID,
		IsAsync:       isAsync,
		IsGenerator:   isGenerator,
		IsArrow:       isArrow,
	})

	ctx.Scope.EnterScope("function", functionScopeName(name, disc), fnID, true, fnID)
	ctx.enterFunction()
}

func exitFunctionScope(ctx *AnalysisContext) {
	ctx.exitFunction()
	ctx.Scope.ExitScope()
}

func functionScopeName(name string, disc int) string {
	if disc == 0 {
		return name
	}
	return name + discriminatorSuffix(disc)
}

func discriminatorSuffix(disc int) string {
	digits := []byte{}
	d := disc
	for d > 0 {
		digits = append([]byte{byte('0' + d%10)}, digits...)
		d /= 10
	}
	return "#" + string(digits)
}

// composeFunctionID calls pkg/semantic directly (not pkg/nodes.Factory) so
// the FUNCTION info's ID is available immediately for scope-frame
// bookkeeping (CurrentFunctionID); the builder re-derives the same ID via
// the factory when it constructs the stored NodeRecord.
func composeFunctionID(ctx *AnalysisContext, name string, disc int) string {
	return semantic.ComposeArrow("FUNCTION", name, ctx.Scope.Current(), disc)
}

func extractParameters(ctx *AnalysisContext, fnNode *sitter.Node) {
	params := fnNode.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	fnID := ctx.Scope.CurrentFunctionID()
	for i := 0; i < int(params.ChildCount()); i++ {
		p := params.Child(i)
		name := parameterName(ctx, p)
		if name == "" {
			continue
		}
		disc := ctx.nextDiscriminator("PARAMETER", name)
		ctx.Coll.Parameters = append(ctx.Coll.Parameters, ParameterInfo{
			Name:          name,
			Pos:           posOf(p),
			ScopePath:     ctx.Scope.Current().ScopePath,
			Discriminator: disc,
			FunctionID:    fnID,
		})
	}
}

func parameterName(ctx *AnalysisContext, n *sitter.Node) string {
	switch n.Type() {
	case "identifier":
		return text(ctx, n)
	case "required_parameter", "optional_parameter":
		return parameterName(ctx, n.ChildByFieldName("pattern"))
	case "assignment_pattern":
		return parameterName(ctx, n.ChildByFieldName("left"))
	case "rest_pattern":
		if n.ChildCount() > 1 {
			return parameterName(ctx, n.Child(1))
		}
	}
	return ""
}

func nodeHasChildOfType(n *sitter.Node, t string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == t {
			return true
		}
	}
	return false
}
