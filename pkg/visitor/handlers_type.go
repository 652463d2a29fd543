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

// handleInterfaceDeclaration emits an INTERFACE info, grounded on the
// teacher's extractTSInterface.
func handleInterfaceDeclaration(ctx *AnalysisContext, n *sitter.Node) {
	name := text(ctx, n.ChildByFieldName("name"))
	if name == "" {
		return
	}

	var extendsNames []string
	if heritage := n.ChildByFieldName("heritage"); heritage != nil {
		for i := 0; i < int(heritage.ChildCount()); i++ {
			t := heritage.Child(i).Type()
			if t == "type_identifier" || t == "identifier" {
				extendsNames = append(extendsNames, text(ctx, heritage.Child(i)))
			}
		}
	}

	var properties []string
	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			c := body.Child(i)
			if c.Type() == "property_signature" {
				if pn := c.ChildByFieldName("name"); pn != nil {
					properties = append(properties, text(ctx, pn))
				}
			}
		}
	}

	ctx.Coll.Interfaces = append(ctx.Coll.Interfaces, InterfaceInfo{
		Name:       name,
		Pos:        posOf(n),
		Extends:    extendsNames,
		Properties: properties,
	})

	walkChildren(ctx, n.ChildByFieldName("body"))
}

// handleTypeAliasDeclaration emits a TYPE info for `type X = …`.
func handleTypeAliasDeclaration(ctx *AnalysisContext, n *sitter.Node) {
	name := text(ctx, n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	disc := ctx.nextDiscriminator("TYPE", name)
	ctx.Coll.TypeAliases = append(ctx.Coll.TypeAliases, TypeAliasInfo{
		Name:          name,
		Pos:           posOf(n),
		ScopePath:     ctx.Scope.Current().ScopePath,
		Discriminator: disc,
	})
}

// handleEnumDeclaration emits an ENUM info.
func handleEnumDeclaration(ctx *AnalysisContext, n *sitter.Node) {
	name := text(ctx, n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	disc := ctx.nextDiscriminator("ENUM", name)
	ctx.Coll.Enums = append(ctx.Coll.Enums, EnumInfo{
		Name:          name,
		Pos:           posOf(n),
		ScopePath:     ctx.Scope.Current().ScopePath,
		Discriminator: disc,
	})
}
