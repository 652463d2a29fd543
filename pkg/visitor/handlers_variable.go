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

import sitter "github.com/smacker/go-tree-sitter"

// handleVariableDeclarator emits a VARIABLE or CONSTANT info for one
// binding of a `let`/`const`/`var` declarator. A destructuring pattern on
// the left produces one info per bound name, per §4.3's "one node per
// binding" rule. The initializer, when present, is walked last so that an
// arrow function assigned to this name picks up the name via the sibling
// check in walk's "arrow_function" case.
func handleVariableDeclarator(ctx *AnalysisContext, n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	value := n.ChildByFieldName("value")
	isConst := isConstDeclaration(n)

	names := bindingNames(ctx, nameNode)
	assignedRef, assignedExpr := initializerRefs(ctx, value)

	for _, name := range names {
		disc := ctx.nextDiscriminator(declKind(isConst), name)
		ctx.Coll.Variables = append(ctx.Coll.Variables, VariableInfo{
			Name:             name,
			Pos:              posOf(n),
			ScopePath:        ctx.Scope.Current().ScopePath,
			Discriminator:    disc,
			ParentScopeID:    ctx.Scope.CurrentScopeID(),
			IsConst:          isConst,
			AssignedFromRef:  assignedRef,
			AssignedFromExpr: assignedExpr,
		})
	}

	if value != nil && value.Type() == "arrow_function" && len(names) == 1 {
		enterFunctionScope(ctx, value, names[0], nodeHasChildOfType(value, "async"), false, true)
		extractParameters(ctx, value)
		walkChildren(ctx, value.ChildByFieldName("body"))
		exitFunctionScope(ctx)
		return
	}

	if value != nil && value.Type() == "binary_expression" {
		// initializerRefs already built and recorded this expression's info
		// (and returned its EXPRESSION ID as assignedExpr); recurse into
		// its operands directly rather than through walk's binary_expression
		// case, which would record it a second time.
		walkChildren(ctx, value)
		return
	}

	walk(ctx, value)
}

func declKind(isConst bool) string {
	if isConst {
		return "CONSTANT"
	}
	return "VARIABLE"
}

// isConstDeclaration walks up to the enclosing lexical_declaration/
// variable_declaration to read its leading `const`/`let`/`var` keyword.
func isConstDeclaration(declarator *sitter.Node) bool {
	parent := declarator.Parent()
	if parent == nil {
		return false
	}
	if parent.ChildCount() == 0 {
		return false
	}
	return parent.Child(0).Type() == "const"
}

// bindingNames flattens identifier, object-pattern, and array-pattern
// binding targets into the list of names they introduce.
func bindingNames(ctx *AnalysisContext, n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		return []string{text(ctx, n)}
	case "object_pattern":
		var names []string
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			switch c.Type() {
			case "shorthand_property_identifier_pattern":
				names = append(names, text(ctx, c))
			case "pair_pattern":
				names = append(names, bindingNames(ctx, c.ChildByFieldName("value"))...)
			case "rest_pattern":
				if c.ChildCount() > 1 {
					names = append(names, bindingNames(ctx, c.Child(1))...)
				}
			}
		}
		return names
	case "array_pattern":
		var names []string
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c.Type() == "identifier" || c.Type() == "object_pattern" || c.Type() == "array_pattern" {
				names = append(names, bindingNames(ctx, c)...)
			} else if c.Type() == "rest_pattern" && c.ChildCount() > 1 {
				names = append(names, bindingNames(ctx, c.Child(1))...)
			}
		}
		return names
	case "assignment_pattern":
		return bindingNames(ctx, n.ChildByFieldName("left"))
	}
	return nil
}

// initializerRefs reports how a declarator's initializer should be recorded:
// AssignedFromRef when the initializer is a bare identifier or member
// expression, AssignedFromExpr (the composed EXPRESSION node ID) when it is
// a binary/logical expression such as `a || b`, and both empty for literals
// and other shapes with no useful source reference.
func initializerRefs(ctx *AnalysisContext, value *sitter.Node) (ref, expr string) {
	if value == nil {
		return "", ""
	}
	switch value.Type() {
	case "identifier":
		return text(ctx, value), ""
	case "member_expression":
		return text(ctx, value), ""
	case "await_expression":
		if value.ChildCount() > 1 {
			return awaitedInitializerRefs(ctx, value.Child(1))
		}
	case "binary_expression":
		return "", appendExpressionInfo(ctx, value)
	}
	return "", ""
}

// awaitedInitializerRefs handles the shapes that can follow an `await`
// without re-entering the binary_expression case: handleVariableDeclarator
// only skips its own generic walk for a directly-bound binary/logical
// initializer, so building one here would record it without the matching
// walk bypass.
func awaitedInitializerRefs(ctx *AnalysisContext, value *sitter.Node) (ref, expr string) {
	switch value.Type() {
	case "identifier":
		return text(ctx, value), ""
	case "member_expression":
		return text(ctx, value), ""
	}
	return "", ""
}
