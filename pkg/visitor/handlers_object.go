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

// handleObjectLiteral emits an ObjectLiteralInfo, one ObjectPropertyInfo per
// key, and recurses into property values so nested calls/expressions are
// still captured.
func handleObjectLiteral(ctx *AnalysisContext, n *sitter.Node) {
	disc := ctx.nextDiscriminator("OBJECT_LITERAL", "")
	var props []ObjectPropertyInfo

	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "pair":
			key := propertyKeyName(ctx, c.ChildByFieldName("key"))
			value := c.ChildByFieldName("value")
			props = append(props, ObjectPropertyInfo{
				Key:            key,
				ValueRef:       identifierName(ctx, value),
				ValueScopePath: ctx.Scope.Current().ScopePath,
			})
			walk(ctx, value)
		case "shorthand_property_identifier":
			name := text(ctx, c)
			props = append(props, ObjectPropertyInfo{
				Key:            name,
				ValueRef:       name,
				ValueScopePath: ctx.Scope.Current().ScopePath,
			})
		case "spread_element":
			walkChildren(ctx, c)
		}
	}

	ctx.Coll.ObjectLiterals = append(ctx.Coll.ObjectLiterals, ObjectLiteralInfo{
		Pos:           posOf(n),
		ScopePath:     ctx.Scope.Current().ScopePath,
		Discriminator: disc,
		Properties:    props,
	})
}

func propertyKeyName(ctx *AnalysisContext, key *sitter.Node) string {
	if key == nil {
		return ""
	}
	return text(ctx, key)
}

// handleArrayLiteral emits an ArrayLiteralInfo and recurses into each
// element.
func handleArrayLiteral(ctx *AnalysisContext, n *sitter.Node) {
	disc := ctx.nextDiscriminator("ARRAY_LITERAL", "")
	var elements []string

	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		t := c.Type()
		if t == "[" || t == "]" || t == "," {
			continue
		}
		elements = append(elements, identifierName(ctx, c))
		walk(ctx, c)
	}

	ctx.Coll.ArrayLiterals = append(ctx.Coll.ArrayLiterals, ArrayLiteralInfo{
		Pos:           posOf(n),
		ScopePath:     ctx.Scope.Current().ScopePath,
		Discriminator: disc,
		Elements:      elements,
	})
}
