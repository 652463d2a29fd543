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

// arrayMutatingMethods and objectMutatingMethods name the built-in methods
// whose receiver is mutated in place, used to emit MODIFIES edges distinct
// from a plain WRITES_TO assignment.
var arrayMutatingMethods = map[string]bool{
	"push": true, "pop": true, "shift": true, "unshift": true,
	"splice": true, "sort": true, "reverse": true, "fill": true, "copyWithin": true,
}

var objectMutatingMethods = map[string]bool{
	"assign": true, "defineProperty": true, "defineProperties": true,
}

// handleAssignmentExpression emits a VariableAssignmentInfo for `target =
// value` when the target is a plain identifier or member expression,
// capturing the source identifier when the right-hand side is itself one.
func handleAssignmentExpression(ctx *AnalysisContext, n *sitter.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")

	target := assignmentTargetName(ctx, left)
	if target == "" {
		return
	}

	ctx.Coll.VariableAssignments = append(ctx.Coll.VariableAssignments, VariableAssignmentInfo{
		Target:    target,
		Pos:       posOf(n),
		ScopePath: ctx.Scope.Current().ScopePath,
		SourceRef: identifierName(ctx, right),
	})
}

func assignmentTargetName(ctx *AnalysisContext, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier":
		return text(ctx, n)
	case "member_expression":
		return text(ctx, n.ChildByFieldName("object"))
	}
	return ""
}

// recordMutationIfApplicable appends an ArrayMutations or ObjectMutations
// entry when a call's (object, method) pair names a known in-place
// mutator, so the builder can emit a MODIFIES edge alongside the CALL node.
func recordMutationIfApplicable(ctx *AnalysisContext, pos Pos, object, method string) {
	if object == "" || method == "" {
		return
	}
	switch {
	case arrayMutatingMethods[method]:
		ctx.Coll.ArrayMutations = append(ctx.Coll.ArrayMutations, MutationInfo{
			Target:    object,
			Method:    method,
			Pos:       pos,
			ScopePath: ctx.Scope.Current().ScopePath,
		})
	case object == "Object" && objectMutatingMethods[method]:
		ctx.Coll.ObjectMutations = append(ctx.Coll.ObjectMutations, MutationInfo{
			Target:    object,
			Method:    method,
			Pos:       pos,
			ScopePath: ctx.Scope.Current().ScopePath,
		})
	}
}

// handleAwaitExpression marks top-level await when encountered outside any
// function, then recurses into the awaited expression.
func handleAwaitExpression(ctx *AnalysisContext, n *sitter.Node) {
	if ctx.AtModuleLevel() {
		ctx.markTopLevelAwait()
	}
}
