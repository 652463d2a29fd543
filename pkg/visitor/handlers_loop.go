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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ignoreCardinalityMarker is the leading-comment directive that suppresses
// cardinality enrichment for the loop it immediately precedes.
const ignoreCardinalityMarker = "@grafema-ignore cardinality"

// handleLoopStatement emits a LoopInfo for for-in/for-of/while/do-while
// loops, pushes a structural scope for the loop body, and recurses. The
// iteration source (for for-in/for-of) is captured as an identifier or a
// method-call pair so the builder can emit an ITERATES_OVER edge.
func handleLoopStatement(ctx *AnalysisContext, n *sitter.Node, kind string) {
	disc := ctx.nextDiscriminator("LOOP", kind)

	ignore := strings.Contains(leadingCommentText(ctx, n), ignoreCardinalityMarker)

	var iterRef, iterMethod string
	if kind == "for-in" || kind == "for-of" {
		right := n.ChildByFieldName("right")
		iterRef, iterMethod = iterationSource(ctx, right)
	}

	scopeName, scopeID := ctx.Scope.EnterCountedScope("loop-" + kind)
	ctx.Coll.Loops = append(ctx.Coll.Loops, LoopInfo{
		Pos:                posOf(n),
		ScopePath:          pathWithout(ctx, scopeName),
		Discriminator:      disc,
		LoopKind:           kind,
		IgnoreCardinality:  ignore,
		IteratesOverRef:    iterRef,
		IteratesOverMethod: iterMethod,
	})
	_ = scopeID

	walkChildren(ctx, n)
	ctx.Scope.ExitScope()
}

// iterationSource reports the identifier (and, for a method call, the
// method name) a for-in/for-of loop iterates over.
func iterationSource(ctx *AnalysisContext, n *sitter.Node) (ref, method string) {
	if n == nil {
		return "", ""
	}
	switch n.Type() {
	case "identifier":
		return text(ctx, n), ""
	case "member_expression":
		return text(ctx, n.ChildByFieldName("object")), text(ctx, n.ChildByFieldName("property"))
	case "call_expression":
		callee := n.ChildByFieldName("function")
		obj, meth, _ := calleeParts(ctx, callee)
		if obj != "" {
			return obj, meth
		}
		return meth, ""
	}
	return "", ""
}
