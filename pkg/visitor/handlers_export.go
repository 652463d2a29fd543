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

// handleExportStatement emits one ExportInfo per specifier. Column
// positions are taken from each individual specifier node, not the
// enclosing export_statement — two names re-exported from the same
// statement are still two distinct EXPORT nodes with distinct positions.
// `export * from` (a namespace re-export) is recorded separately from
// named ExportSpecifiers, per the historical EXPORT_ALL handling this
// mirrors.
func handleExportStatement(ctx *AnalysisContext, n *sitter.Node) {
	source := ""
	if s := n.ChildByFieldName("source"); s != nil {
		source = stringLiteralValue(ctx, s)
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		handleExportedDeclaration(ctx, n, decl)
		return
	}

	isDefault := nodeHasChildOfType(n, "default")
	if isDefault {
		if v := n.ChildByFieldName("value"); v != nil {
			ctx.Coll.Exports = append(ctx.Coll.Exports, ExportInfo{
				Name:       "default",
				Local:      exportLocalName(ctx, v),
				Pos:        posOf(n),
				IsDefault:  true,
				ExportType: "default",
				Source:     source,
			})
			walk(ctx, v)
			return
		}
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "export_clause":
			for j := 0; j < int(c.ChildCount()); j++ {
				spec := c.Child(j)
				if spec.Type() != "export_specifier" {
					continue
				}
				name := text(ctx, spec.ChildByFieldName("name"))
				local := name
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					name = text(ctx, alias)
				}
				ctx.Coll.Exports = append(ctx.Coll.Exports, ExportInfo{
					Name:       name,
					Local:      local,
					Pos:        posOf(spec),
					ExportType: "named",
					Source:     source,
				})
			}
		case "namespace_export":
			ctx.Coll.Exports = append(ctx.Coll.Exports, ExportInfo{
				Name:       "*",
				Local:      "*",
				Pos:        posOf(c),
				ExportType: "namespace",
				Source:     source,
			})
		}
	}
}

func handleExportedDeclaration(ctx *AnalysisContext, exportNode, decl *sitter.Node) {
	name := exportedDeclarationName(ctx, decl)
	if name != "" {
		ctx.Coll.Exports = append(ctx.Coll.Exports, ExportInfo{
			Name:       name,
			Local:      name,
			Pos:        posOf(decl),
			ExportType: "declaration",
		})
	}
	walk(ctx, decl)
}

func exportedDeclarationName(ctx *AnalysisContext, decl *sitter.Node) string {
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration", "class_declaration",
		"interface_declaration", "type_alias_declaration", "enum_declaration":
		return text(ctx, decl.ChildByFieldName("name"))
	case "lexical_declaration", "variable_declaration":
		if decl.ChildCount() > 1 {
			if declarator := decl.Child(1); declarator.Type() == "variable_declarator" {
				return text(ctx, declarator.ChildByFieldName("name"))
			}
		}
	}
	return ""
}

func exportLocalName(ctx *AnalysisContext, v *sitter.Node) string {
	if v.Type() == "identifier" {
		return text(ctx, v)
	}
	return ""
}
