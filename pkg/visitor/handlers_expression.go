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

// logicalOperators marks the operator subset that distinguishes a
// LogicalExpression from a plain arithmetic/comparison BinaryExpression.
var logicalOperators = map[string]bool{
	"||": true, "&&": true, "??": true,
}

// handleBinaryExpression emits an ExpressionInfo for a binary/logical
// expression. Operand source names are captured only when the operand is a
// bare Identifier; the human-readable Name is truncated to 64 runes to
// match the display-name contract for expression nodes.
func handleBinaryExpression(ctx *AnalysisContext, n *sitter.Node) {
	appendExpressionInfo(ctx, n)
}

// appendExpressionInfo records the ExpressionInfo for a binary/logical
// expression node and returns its composed EXPRESSION node ID. Exposed
// separately from handleBinaryExpression so a variable's compound
// initializer (handlers_variable.go's initializerRefs) can build the same
// info and learn its ID before pkg/builder re-derives it from the stored
// info, mirroring composeFunctionID's pattern in handlers_function.go.
func appendExpressionInfo(ctx *AnalysisContext, n *sitter.Node) string {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	operator := binaryOperator(ctx, n)

	exprType := "BinaryExpression"
	if logicalOperators[operator] {
		exprType = "LogicalExpression"
	}

	leftName := identifierName(ctx, left)
	rightName := identifierName(ctx, right)

	name := truncateName(text(ctx, left) + " " + operator + " " + text(ctx, right))
	scope := ctx.Scope.Current()
	disc := ctx.nextDiscriminator("EXPRESSION", name)

	ctx.Coll.Expressions = append(ctx.Coll.Expressions, ExpressionInfo{
		Name:            name,
		Pos:             posOf(n),
		ScopePath:       scope.ScopePath,
		Discriminator:   disc,
		ExpressionType:  exprType,
		Operator:        operator,
		LeftSourceName:  leftName,
		RightSourceName: rightName,
	})

	return semantic.ComposeArrow("EXPRESSION", name, scope, disc)
}

func binaryOperator(ctx *AnalysisContext, n *sitter.Node) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == n.ChildByFieldName("left") || c == n.ChildByFieldName("right") {
			continue
		}
		return text(ctx, c)
	}
	return ""
}

func identifierName(ctx *AnalysisContext, n *sitter.Node) string {
	if n != nil && n.Type() == "identifier" {
		return text(ctx, n)
	}
	return ""
}

func truncateName(s string) string {
	r := []rune(s)
	if len(r) <= 64 {
		return s
	}
	return string(r[:64])
}
