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

// text returns the source slice a node spans.
func text(ctx *AnalysisContext, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(ctx.Content[n.StartByte():n.EndByte()])
}

// posOf returns a node's 0-indexed line/column, per the node factories'
// "line === 0 is valid" contract.
func posOf(n *sitter.Node) Pos {
	p := n.StartPoint()
	return Pos{Line: int(p.Row), Column: int(p.Column)}
}

// leadingCommentText returns the trimmed text of the immediately preceding
// sibling if it is a line comment, or "" otherwise. Block comments
// (`/* … */`) never count, per §4.3's @grafema-ignore contract.
func leadingCommentText(ctx *AnalysisContext, n *sitter.Node) string {
	prev := n.PrevSibling()
	if prev == nil || prev.Type() != "comment" {
		return ""
	}
	raw := text(ctx, prev)
	if len(raw) >= 2 && raw[:2] == "/*" {
		return ""
	}
	trimmed := trimComment(raw)
	return trimmed
}

func trimComment(raw string) string {
	s := raw
	for len(s) > 0 && (s[0] == '/' || s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	return trimSpace(s)
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// walk is the traversal dispatcher: a switch over AST node kinds that
// delegates to one small, named handler per concern, per §4.3. Unhandled
// node kinds simply recurse into children.
func walk(ctx *AnalysisContext, n *sitter.Node) {
	if n == nil {
		return
	}

	switch n.Type() {
	case "function_declaration", "generator_function_declaration":
		handleFunctionDeclaration(ctx, n)
		return
	case "variable_declarator":
		handleVariableDeclarator(ctx, n)
		return
	case "lexical_declaration", "variable_declaration":
		walkChildren(ctx, n)
		return
	case "method_definition":
		handleMethodDefinition(ctx, n)
		return
	case "method_signature":
		handleMethodSignature(ctx, n)
		return
	case "function_signature":
		handleFunctionSignature(ctx, n)
		return
	case "arrow_function":
		if parent := n.Parent(); parent == nil || parent.Type() != "variable_declarator" {
			handleAnonymousFunction(ctx, n)
			return
		}
	case "class_declaration":
		handleClassDeclaration(ctx, n)
		return
	case "interface_declaration":
		handleInterfaceDeclaration(ctx, n)
		return
	case "type_alias_declaration":
		handleTypeAliasDeclaration(ctx, n)
		return
	case "enum_declaration":
		handleEnumDeclaration(ctx, n)
		return
	case "import_statement":
		handleImportStatement(ctx, n)
		return
	case "export_statement":
		handleExportStatement(ctx, n)
		return
	case "call_expression", "new_expression":
		handleCallExpression(ctx, n)
		return
	case "binary_expression":
		handleBinaryExpression(ctx, n)
		// fall through to recurse into operands for nested calls/vars
	case "object":
		handleObjectLiteral(ctx, n)
		return
	case "array":
		handleArrayLiteral(ctx, n)
		return
	case "assignment_expression":
		handleAssignmentExpression(ctx, n)
	case "for_statement":
		handleCountedScope(ctx, n, "for")
		return
	case "for_in_statement":
		kind := "for-in"
		if text(ctx, n.Child(1)) == "of" {
			kind = "for-of"
		}
		handleLoopStatement(ctx, n, kind)
		return
	case "while_statement":
		handleCountedScopeLoop(ctx, n, "while")
		return
	case "do_statement":
		handleCountedScopeLoop(ctx, n, "do-while")
		return
	case "if_statement":
		handleCountedScope(ctx, n, "if")
		return
	case "else_clause":
		handleCountedScope(ctx, n, "else")
		return
	case "try_statement":
		handleCountedScope(ctx, n, "try")
		return
	case "catch_clause":
		handleCountedScope(ctx, n, "catch")
		return
	case "switch_statement":
		handleCountedScope(ctx, n, "switch")
		return
	case "statement_block":
		if n.Parent() != nil && isFunctionLike(n.Parent().Type()) {
			// function bodies get their scope from the function handler.
			walkChildren(ctx, n)
			return
		}
		handleCountedScope(ctx, n, "block")
		return
	case "await_expression":
		handleAwaitExpression(ctx, n)
	}

	walkChildren(ctx, n)
}

func isFunctionLike(t string) bool {
	switch t {
	case "function_declaration", "generator_function_declaration", "function", "arrow_function", "method_definition":
		return true
	}
	return false
}

func walkChildren(ctx *AnalysisContext, n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(ctx, n.Child(i))
	}
}

// handleCountedScope pushes an anonymous structural scope of kind, recurses
// into all children, then pops. Used for if/else/try/catch/switch/block.
func handleCountedScope(ctx *AnalysisContext, n *sitter.Node, kind string) {
	parentScopeID := ctx.Scope.CurrentScopeID()
	scopeName, scopeID := ctx.Scope.EnterCountedScope(kind)
	ctx.Coll.Scopes = append(ctx.Coll.Scopes, ScopeInfo{
		ScopeType:        kind,
		Pos:              posOf(n),
		ScopePath:        pathWithout(ctx, scopeName),
		ParentScopeID:    parentScopeID,
		ParentFunctionID: ctx.Scope.CurrentFunctionID(),
		Conditional:      kind == "if" || kind == "else",
	})
	walkChildren(ctx, n)
	ctx.Scope.ExitScope()
}

// pathWithout returns the scope path up to and including the just-entered
// scope name, used to populate ScopeInfo.ScopePath without double counting.
func pathWithout(ctx *AnalysisContext, lastName string) []string {
	cur := ctx.Scope.Current().ScopePath
	_ = lastName
	return cur
}

func handleCountedScopeLoop(ctx *AnalysisContext, n *sitter.Node, kind string) {
	handleLoopStatement(ctx, n, kind)
}
