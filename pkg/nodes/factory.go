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

package nodes

import (
	"github.com/grafema-dev/grafema/pkg/grafemaerr"
	"github.com/grafema-dev/grafema/pkg/semantic"
)

// Factory is the single façade every node kind is constructed through. No
// other package may build a NodeRecord directly.
type Factory struct{}

// NewFactory returns a ready-to-use Factory. Factory carries no state of its
// own — ID generation is a pure function of its inputs — so one instance may
// be shared across files and goroutines.
func NewFactory() *Factory {
	return &Factory{}
}

func requireText(nodeType Type, field, value string) error {
	if value == "" {
		return &grafemaerr.ValidationError{NodeType: string(nodeType), Field: field, Reason: field + " is required"}
	}
	return nil
}

func requireLine(nodeType Type, line *int) (int, error) {
	if line == nil {
		return 0, &grafemaerr.ValidationError{NodeType: string(nodeType), Field: "line", Reason: "line is required"}
	}
	return *line, nil
}

// ModuleParams constructs a MODULE node, the root container for one source
// file. ID uses arrow form with the file itself as the name, since a MODULE
// has no enclosing scope of its own.
type ModuleParams struct {
	File string
	Line *int
}

func (f *Factory) CreateModule(p ModuleParams) (*NodeRecord, error) {
	if err := requireText(Module, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(Module, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File}
	return &NodeRecord{
		ID:       semantic.ComposeArrow(string(Module), p.File, ctx, 0),
		Type:     Module,
		Name:     p.File,
		File:     p.File,
		Line:     line,
		Metadata: map[string]any{"hasTopLevelAwait": false},
	}, nil
}

// FunctionParams constructs a FUNCTION node.
type FunctionParams struct {
	Name          string
	File          string
	Line          *int
	Column        int
	ScopePath     []string
	Discriminator int
	ParentScopeID string
	IsAsync       bool
	IsGenerator   bool
	IsArrow       bool
}

func (f *Factory) CreateFunction(p FunctionParams) (*NodeRecord, error) {
	if err := requireText(Function, "name", p.Name); err != nil {
		return nil, err
	}
	if err := requireText(Function, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(Function, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File, ScopePath: p.ScopePath}
	return &NodeRecord{
		ID:     semantic.ComposeArrow(string(Function), p.Name, ctx, p.Discriminator),
		Type:   Function,
		Name:   p.Name,
		File:   p.File,
		Line:   line,
		Column: p.Column,
		Metadata: map[string]any{
			"parentScopeId": p.ParentScopeID,
			"isAsync":       p.IsAsync,
			"isGenerator":   p.IsGenerator,
			"isArrow":       p.IsArrow,
		},
	}, nil
}

// ClassParams constructs a CLASS node. Set IsExternal to build a
// placeholder node for an EXTENDS/IMPLEMENTS target that could not be
// resolved against the declaring file's own scope index — File/Line/
// ScopePath/Discriminator are ignored in that case.
type ClassParams struct {
	Name          string
	File          string
	Line          *int
	Column        int
	ScopePath     []string
	Discriminator int
	Extends       string
	Implements    []string
	IsExternal    bool
}

func (f *Factory) CreateClass(p ClassParams) (*NodeRecord, error) {
	if err := requireText(Class, "name", p.Name); err != nil {
		return nil, err
	}
	if p.IsExternal {
		return &NodeRecord{
			ID:       semantic.ComposeExternalClassID(p.Name),
			Type:     Class,
			Name:     p.Name,
			Metadata: map[string]any{"isExternal": true},
		}, nil
	}
	if err := requireText(Class, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(Class, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File, ScopePath: p.ScopePath}
	meta := map[string]any{"isExternal": false}
	if p.Extends != "" {
		meta["extends"] = p.Extends
	}
	if len(p.Implements) > 0 {
		meta["implements"] = p.Implements
	}
	return &NodeRecord{
		ID:       semantic.ComposeArrow(string(Class), p.Name, ctx, p.Discriminator),
		Type:     Class,
		Name:     p.Name,
		File:     p.File,
		Line:     line,
		Column:   p.Column,
		Metadata: meta,
	}, nil
}

// InterfaceParams constructs an INTERFACE node (colon form: identity is
// stable by position, not by enclosing scope). Set IsExternal to build a
// placeholder node for an EXTENDS/IMPLEMENTS target that could not be
// resolved against the declaring file's own scope index — File/Line are
// ignored in that case.
type InterfaceParams struct {
	Name       string
	File       string
	Line       *int
	Column     int
	Extends    []string
	Properties []string
	IsExternal bool
}

func (f *Factory) CreateInterface(p InterfaceParams) (*NodeRecord, error) {
	if err := requireText(Interface, "name", p.Name); err != nil {
		return nil, err
	}
	if p.IsExternal {
		return &NodeRecord{
			ID:       semantic.ComposeExternalInterfaceID(p.Name),
			Type:     Interface,
			Name:     p.Name,
			Metadata: map[string]any{"isExternal": true},
		}, nil
	}
	if err := requireText(Interface, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(Interface, p.Line)
	if err != nil {
		return nil, err
	}
	meta := map[string]any{"isExternal": false}
	if len(p.Extends) > 0 {
		meta["extends"] = p.Extends
	}
	if len(p.Properties) > 0 {
		meta["properties"] = p.Properties
	}
	return &NodeRecord{
		ID:       semantic.ComposeInterfaceID(p.File, p.Name, line),
		Type:     Interface,
		Name:     p.Name,
		File:     p.File,
		Line:     line,
		Column:   p.Column,
		Metadata: meta,
	}, nil
}

// TypeAliasParams constructs a TYPE node (TypeScript `type X = …`).
type TypeAliasParams struct {
	Name          string
	File          string
	Line          *int
	Column        int
	ScopePath     []string
	Discriminator int
}

func (f *Factory) CreateTypeAlias(p TypeAliasParams) (*NodeRecord, error) {
	if err := requireText(TypeAlias, "name", p.Name); err != nil {
		return nil, err
	}
	if err := requireText(TypeAlias, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(TypeAlias, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File, ScopePath: p.ScopePath}
	return &NodeRecord{
		ID:     semantic.ComposeArrow(string(TypeAlias), p.Name, ctx, p.Discriminator),
		Type:   TypeAlias,
		Name:   p.Name,
		File:   p.File,
		Line:   line,
		Column: p.Column,
	}, nil
}

// EnumParams constructs an ENUM node.
type EnumParams struct {
	Name          string
	File          string
	Line          *int
	Column        int
	ScopePath     []string
	Discriminator int
}

func (f *Factory) CreateEnum(p EnumParams) (*NodeRecord, error) {
	if err := requireText(Enum, "name", p.Name); err != nil {
		return nil, err
	}
	if err := requireText(Enum, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(Enum, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File, ScopePath: p.ScopePath}
	return &NodeRecord{
		ID:     semantic.ComposeArrow(string(Enum), p.Name, ctx, p.Discriminator),
		Type:   Enum,
		Name:   p.Name,
		File:   p.File,
		Line:   line,
		Column: p.Column,
	}, nil
}

// ImportParams constructs an IMPORT node, one per binding.
type ImportParams struct {
	Source        string
	Local         string
	Imported      string
	File          string
	Line          *int
	Column        int
	ImportType    string // "default" | "named" | "namespace"
	ImportBinding string // "value" | "type" | "typeof", defaults to "value"
	IsDynamic     bool
	IsResolvable  bool
}

func (f *Factory) CreateImport(p ImportParams) (*NodeRecord, error) {
	if err := requireText(Import, "source", p.Source); err != nil {
		return nil, err
	}
	if err := requireText(Import, "local", p.Local); err != nil {
		return nil, err
	}
	if err := requireText(Import, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(Import, p.Line)
	if err != nil {
		return nil, err
	}
	binding := p.ImportBinding
	if binding == "" {
		binding = "value"
	}
	return &NodeRecord{
		ID:     semantic.ComposeImportID(p.File, p.Source, p.Local),
		Type:   Import,
		Name:   p.Local,
		File:   p.File,
		Line:   line,
		Column: p.Column,
		Metadata: map[string]any{
			"source":        p.Source,
			"local":         p.Local,
			"imported":      p.Imported,
			"importType":    p.ImportType,
			"importBinding": binding,
			"isDynamic":     p.IsDynamic,
			"isResolvable":  p.IsResolvable,
		},
	}, nil
}

// ExportParams constructs an EXPORT node, one per specifier.
type ExportParams struct {
	Name       string // "default" for a default export
	Local      string
	File       string
	Line       *int
	Column     int
	IsDefault  bool
	ExportType string // "default" | "named" | "all"
	Source     string // for re-exports
}

func (f *Factory) CreateExport(p ExportParams) (*NodeRecord, error) {
	if err := requireText(Export, "name", p.Name); err != nil {
		return nil, err
	}
	if err := requireText(Export, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(Export, p.Line)
	if err != nil {
		return nil, err
	}
	meta := map[string]any{
		"default":    p.IsDefault,
		"exportType": p.ExportType,
	}
	if p.Local != "" {
		meta["local"] = p.Local
	}
	if p.Source != "" {
		meta["source"] = p.Source
	}
	return &NodeRecord{
		ID:       semantic.ComposeExportID(p.File, p.Name, line),
		Type:     Export,
		Name:     p.Name,
		File:     p.File,
		Line:     line,
		Column:   p.Column,
		Metadata: meta,
	}, nil
}

// VariableParams constructs a VARIABLE or CONSTANT node depending on
// IsConst. A `const` declarator becomes CONSTANT; anything else VARIABLE.
type VariableParams struct {
	Name          string
	File          string
	Line          *int
	Column        int
	ScopePath     []string
	Discriminator int
	ParentScopeID string
	IsConst       bool
}

func (f *Factory) CreateVariable(p VariableParams) (*NodeRecord, error) {
	kind := Variable
	if p.IsConst {
		kind = Constant
	}
	if err := requireText(kind, "name", p.Name); err != nil {
		return nil, err
	}
	if err := requireText(kind, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(kind, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File, ScopePath: p.ScopePath}
	return &NodeRecord{
		ID:       semantic.ComposeArrow(string(kind), p.Name, ctx, p.Discriminator),
		Type:     kind,
		Name:     p.Name,
		File:     p.File,
		Line:     line,
		Column:   p.Column,
		Metadata: map[string]any{"parentScopeId": p.ParentScopeID},
	}, nil
}

// ParameterParams constructs a PARAMETER node, scoped within its owning
// function's scope path.
type ParameterParams struct {
	Name          string
	File          string
	Line          *int
	Column        int
	ScopePath     []string
	Discriminator int
	FunctionID    string
}

func (f *Factory) CreateParameter(p ParameterParams) (*NodeRecord, error) {
	if err := requireText(Parameter, "name", p.Name); err != nil {
		return nil, err
	}
	if err := requireText(Parameter, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(Parameter, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File, ScopePath: p.ScopePath}
	return &NodeRecord{
		ID:       semantic.ComposeArrow(string(Parameter), p.Name, ctx, p.Discriminator),
		Type:     Parameter,
		Name:     p.Name,
		File:     p.File,
		Line:     line,
		Column:   p.Column,
		Metadata: map[string]any{"functionId": p.FunctionID},
	}, nil
}

// ScopeParams constructs a SCOPE node for a structural (non-function)
// scope: if/else/try/catch/finally/switch/block/for/while/….
type ScopeParams struct {
	ScopeType       string
	File            string
	Line            *int
	Column          int
	ScopePath       []string
	Discriminator   int
	ParentScopeID   string
	ParentFunctionID string
	Conditional     bool
}

func (f *Factory) CreateScope(p ScopeParams) (*NodeRecord, error) {
	if err := requireText(Scope, "scopeType", p.ScopeType); err != nil {
		return nil, err
	}
	if err := requireText(Scope, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(Scope, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File, ScopePath: p.ScopePath}
	return &NodeRecord{
		ID:     semantic.ComposeArrow(string(Scope), p.ScopeType, ctx, p.Discriminator),
		Type:   Scope,
		Name:   p.ScopeType,
		File:   p.File,
		Line:   line,
		Column: p.Column,
		Metadata: map[string]any{
			"scopeType":        p.ScopeType,
			"parentScopeId":    p.ParentScopeID,
			"parentFunctionId": p.ParentFunctionID,
			"conditional":      p.Conditional,
		},
	}, nil
}

// CallParams constructs a CALL node. Presence of Object marks a method call.
type CallParams struct {
	Name          string
	File          string
	Line          *int
	Column        int
	ScopePath     []string
	Discriminator int
	Object        string
	Method        string
	IsNew         bool
	IsAwaited     bool
	IsDynamic     bool
}

func (f *Factory) CreateCall(p CallParams) (*NodeRecord, error) {
	if err := requireText(Call, "name", p.Name); err != nil {
		return nil, err
	}
	if err := requireText(Call, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(Call, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File, ScopePath: p.ScopePath}
	meta := map[string]any{
		"isNew":     p.IsNew,
		"isAwaited": p.IsAwaited,
		"isDynamic": p.IsDynamic,
	}
	if p.Object != "" {
		meta["object"] = p.Object
		meta["method"] = p.Method
	}
	return &NodeRecord{
		ID:       semantic.ComposeArrow(string(Call), p.Name, ctx, p.Discriminator),
		Type:     Call,
		Name:     p.Name,
		File:     p.File,
		Line:     line,
		Column:   p.Column,
		Metadata: meta,
	}, nil
}

// ExpressionParams constructs an EXPRESSION node (LogicalExpression,
// BinaryExpression, MemberExpression, …).
type ExpressionParams struct {
	Name            string // human-readable, e.g. "a || b"
	File            string
	Line            *int
	Column          int
	ScopePath       []string
	Discriminator   int
	ExpressionType  string
	Operator        string
	LeftSourceName  string
	RightSourceName string
}

func (f *Factory) CreateExpression(p ExpressionParams) (*NodeRecord, error) {
	if err := requireText(Expression, "name", p.Name); err != nil {
		return nil, err
	}
	if err := requireText(Expression, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(Expression, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File, ScopePath: p.ScopePath}
	meta := map[string]any{"expressionType": p.ExpressionType}
	if p.Operator != "" {
		meta["operator"] = p.Operator
	}
	if p.LeftSourceName != "" {
		meta["leftSourceName"] = p.LeftSourceName
	}
	if p.RightSourceName != "" {
		meta["rightSourceName"] = p.RightSourceName
	}
	return &NodeRecord{
		ID:       semantic.ComposeArrow(string(Expression), p.Name, ctx, p.Discriminator),
		Type:     Expression,
		Name:     p.Name,
		File:     p.File,
		Line:     line,
		Column:   p.Column,
		Metadata: meta,
	}, nil
}

// LoopParams constructs a LOOP node.
type LoopParams struct {
	File              string
	Line              *int
	Column            int
	ScopePath         []string
	Discriminator     int
	LoopKind          string // "for" | "for-in" | "for-of" | "while" | "do-while"
	IgnoreCardinality bool
}

func (f *Factory) CreateLoop(p LoopParams) (*NodeRecord, error) {
	if err := requireText(Loop, "loopKind", p.LoopKind); err != nil {
		return nil, err
	}
	if err := requireText(Loop, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(Loop, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File, ScopePath: p.ScopePath}
	return &NodeRecord{
		ID:     semantic.ComposeArrow(string(Loop), p.LoopKind, ctx, p.Discriminator),
		Type:   Loop,
		Name:   p.LoopKind,
		File:   p.File,
		Line:   line,
		Column: p.Column,
		Metadata: map[string]any{
			"loopKind":          p.LoopKind,
			"ignoreCardinality": p.IgnoreCardinality,
		},
	}, nil
}

// ExternalModuleParams constructs an EXTERNAL_MODULE placeholder, deduped
// per package name by the builder/enricher before insertion — the factory
// itself does not deduplicate, it only shapes the record.
type ExternalModuleParams struct {
	PackageName string
}

func (f *Factory) CreateExternalModule(p ExternalModuleParams) (*NodeRecord, error) {
	if err := requireText(ExternalModule, "packageName", p.PackageName); err != nil {
		return nil, err
	}
	return &NodeRecord{
		ID:       semantic.ComposeExternalModuleID(p.PackageName),
		Type:     ExternalModule,
		Name:     p.PackageName,
		Metadata: map[string]any{"packageName": p.PackageName},
	}, nil
}

// ObjectLiteralParams constructs an OBJECT_LITERAL node.
type ObjectLiteralParams struct {
	File          string
	Line          *int
	Column        int
	ScopePath     []string
	Discriminator int
}

func (f *Factory) CreateObjectLiteral(p ObjectLiteralParams) (*NodeRecord, error) {
	if err := requireText(ObjectLiteral, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(ObjectLiteral, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File, ScopePath: p.ScopePath}
	return &NodeRecord{
		ID:     semantic.ComposeArrow(string(ObjectLiteral), "<object>", ctx, p.Discriminator),
		Type:   ObjectLiteral,
		Name:   "<object>",
		File:   p.File,
		Line:   line,
		Column: p.Column,
	}, nil
}

// ArrayLiteralParams constructs an ARRAY_LITERAL node.
type ArrayLiteralParams struct {
	File          string
	Line          *int
	Column        int
	ScopePath     []string
	Discriminator int
}

func (f *Factory) CreateArrayLiteral(p ArrayLiteralParams) (*NodeRecord, error) {
	if err := requireText(ArrayLiteral, "file", p.File); err != nil {
		return nil, err
	}
	line, err := requireLine(ArrayLiteral, p.Line)
	if err != nil {
		return nil, err
	}
	ctx := semantic.Context{File: p.File, ScopePath: p.ScopePath}
	return &NodeRecord{
		ID:     semantic.ComposeArrow(string(ArrayLiteral), "<array>", ctx, p.Discriminator),
		Type:   ArrayLiteral,
		Name:   "<array>",
		File:   p.File,
		Line:   line,
		Column: p.Column,
	}, nil
}
