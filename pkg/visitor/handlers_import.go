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

// handleImportStatement emits one ImportInfo per binding introduced by a
// static import statement: the default binding, each named specifier, a
// namespace binding, or — for a bare side-effect import with no clause — a
// single synthetic binding with local "*".
func handleImportStatement(ctx *AnalysisContext, n *sitter.Node) {
	sourceNode := n.ChildByFieldName("source")
	source := stringLiteralValue(ctx, sourceNode)
	if source == "" {
		return
	}

	clause := findChildOfType(n, "import_clause")
	if clause == nil {
		ctx.Coll.Imports = append(ctx.Coll.Imports, ImportInfo{
			Source:        source,
			Local:         "*",
			Pos:           posOf(n),
			ImportType:    "side-effect",
			ImportBinding: "*",
		})
		return
	}

	for i := 0; i < int(clause.ChildCount()); i++ {
		c := clause.Child(i)
		switch c.Type() {
		case "identifier":
			ctx.Coll.Imports = append(ctx.Coll.Imports, ImportInfo{
				Source:        source,
				Local:         text(ctx, c),
				Imported:      "default",
				Pos:           posOf(c),
				ImportType:    "default",
				ImportBinding: text(ctx, c),
			})
		case "namespace_import":
			local := ""
			if c.ChildCount() > 0 {
				local = text(ctx, c.Child(c.ChildCount()-1))
			}
			ctx.Coll.Imports = append(ctx.Coll.Imports, ImportInfo{
				Source:        source,
				Local:         local,
				Imported:      "*",
				Pos:           posOf(c),
				ImportType:    "namespace",
				ImportBinding: local,
			})
		case "named_imports":
			for j := 0; j < int(c.ChildCount()); j++ {
				spec := c.Child(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				imported := text(ctx, spec.ChildByFieldName("name"))
				local := imported
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					local = text(ctx, alias)
				}
				ctx.Coll.Imports = append(ctx.Coll.Imports, ImportInfo{
					Source:        source,
					Local:         local,
					Imported:      imported,
					Pos:           posOf(spec),
					ImportType:    "named",
					ImportBinding: local,
				})
			}
		}
	}
}

// handleDynamicImport emits an ImportInfo for `import(expr)`. IsResolvable
// reflects whether expr is a string literal we can follow statically.
func handleDynamicImport(ctx *AnalysisContext, n *sitter.Node, arg *sitter.Node) {
	source := stringLiteralValue(ctx, arg)
	resolvable := source != ""
	if !resolvable {
		source = text(ctx, arg)
	}
	ctx.Coll.Imports = append(ctx.Coll.Imports, ImportInfo{
		Source:        source,
		Local:         "*",
		Pos:           posOf(n),
		ImportType:    "dynamic",
		ImportBinding: "*",
		IsDynamic:     true,
		IsResolvable:  resolvable,
	})
}

func stringLiteralValue(ctx *AnalysisContext, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	raw := text(ctx, n)
	raw = strings.Trim(raw, "'\"`")
	return raw
}

func findChildOfType(n *sitter.Node, t string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == t {
			return n.Child(i)
		}
	}
	return nil
}
