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

// handleClassDeclaration emits a CLASS info, pushes a structural scope for
// its body (methods resolve their own function scopes beneath it), and
// recurses.
func handleClassDeclaration(ctx *AnalysisContext, n *sitter.Node) {
	name := text(ctx, n.ChildByFieldName("name"))
	if name == "" {
		return
	}

	var extendsName string
	var implementsNames []string
	heritage := n.ChildByFieldName("heritage")
	if heritage != nil {
		for i := 0; i < int(heritage.ChildCount()); i++ {
			c := heritage.Child(i)
			switch c.Type() {
			case "class_heritage", "extends_clause":
				if v := c.ChildByFieldName("value"); v != nil {
					extendsName = text(ctx, v)
				} else if c.ChildCount() > 1 {
					extendsName = text(ctx, c.Child(1))
				}
			case "implements_clause":
				for j := 0; j < int(c.ChildCount()); j++ {
					t := c.Child(j).Type()
					if t == "type_identifier" || t == "identifier" {
						implementsNames = append(implementsNames, text(ctx, c.Child(j)))
					}
				}
			}
		}
	}

	disc := ctx.nextDiscriminator("CLASS", name)
	ctx.Coll.Classes = append(ctx.Coll.Classes, ClassInfo{
		Name:          name,
		Pos:           posOf(n),
		ScopePath:     ctx.Scope.Current().ScopePath,
		Discriminator: disc,
		Extends:       extendsName,
		Implements:    implementsNames,
	})

	classID := classScopeID(ctx, name, disc)
	ctx.Scope.EnterScope("class", classScopeName(name, disc), classID, false, "")
	walkChildren(ctx, n.ChildByFieldName("body"))
	ctx.Scope.ExitScope()
}

func classScopeName(name string, disc int) string {
	if disc == 0 {
		return name
	}
	return name + discriminatorSuffix(disc)
}

// classScopeID mirrors the CLASS node's own eventual ID (recomputed by the
// builder via pkg/nodes.Factory) so parentScopeId references recorded here
// resolve to a real node once the builder writes the graph.
func classScopeID(ctx *AnalysisContext, name string, disc int) string {
	return semantic.ComposeArrow("CLASS", name, ctx.Scope.Current(), disc)
}
