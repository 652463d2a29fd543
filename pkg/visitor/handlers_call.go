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

// handleCallExpression emits a CallInfo for both call_expression and
// new_expression nodes. A dynamic `import(...)` call is recognized by its
// callee being the bare "import" pseudo-keyword and delegated to
// handleDynamicImport instead, since it produces an IMPORT binding, not a
// CALL node.
func handleCallExpression(ctx *AnalysisContext, n *sitter.Node) {
	isNew := n.Type() == "new_expression"

	fnField := "function"
	if isNew {
		fnField = "constructor"
	}
	callee := n.ChildByFieldName(fnField)

	if !isNew && callee != nil && callee.Type() == "import" {
		args := n.ChildByFieldName("arguments")
		if args != nil && args.ChildCount() > 1 {
			handleDynamicImport(ctx, n, args.Child(1))
		}
		return
	}

	object, method, name := calleeParts(ctx, callee)
	arguments := callArguments(ctx, n.ChildByFieldName("arguments"))

	disc := ctx.nextDiscriminator("CALL", name)
	pos := posOf(n)
	ctx.Coll.Calls = append(ctx.Coll.Calls, CallInfo{
		Name:          name,
		Pos:           pos,
		ScopePath:     ctx.Scope.Current().ScopePath,
		Discriminator: disc,
		Object:        object,
		Method:        method,
		IsNew:         isNew,
		IsAwaited:     isAwaitedCall(n),
		IsDynamic:     callee != nil && (callee.Type() == "member_expression" && hasOptionalChain(callee)),
		Arguments:     arguments,
	})
	recordMutationIfApplicable(ctx, pos, object, method)

	walk(ctx, callee)
	walkChildren(ctx, n.ChildByFieldName("arguments"))
}

// calleeParts splits a callee into (object, method, displayName). A bare
// identifier callee has an empty object/method and name equal to itself; a
// member-expression callee "obj.method" reports both parts plus a combined
// display name.
func calleeParts(ctx *AnalysisContext, callee *sitter.Node) (object, method, name string) {
	if callee == nil {
		return "", "", "<anonymous>"
	}
	switch callee.Type() {
	case "identifier":
		n := text(ctx, callee)
		return "", "", n
	case "member_expression":
		obj := text(ctx, callee.ChildByFieldName("object"))
		prop := text(ctx, callee.ChildByFieldName("property"))
		return obj, prop, obj + "." + prop
	}
	return "", "", text(ctx, callee)
}

func callArguments(ctx *AnalysisContext, args *sitter.Node) []string {
	if args == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(args.ChildCount()); i++ {
		c := args.Child(i)
		if c.Type() == "identifier" {
			out = append(out, text(ctx, c))
		} else if c.Type() != "(" && c.Type() != ")" && c.Type() != "," {
			out = append(out, "")
		}
	}
	return out
}

func isAwaitedCall(n *sitter.Node) bool {
	p := n.Parent()
	return p != nil && p.Type() == "await_expression"
}

func hasOptionalChain(member *sitter.Node) bool {
	for i := 0; i < int(member.ChildCount()); i++ {
		if member.Child(i).Type() == "?." {
			return true
		}
	}
	return false
}
