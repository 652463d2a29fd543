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

// Package semantic generates deterministic, human-readable node IDs and
// tracks the lexical scope stack during AST traversal.
//
// IDs are never hashed: two runs over unchanged source must produce
// byte-identical IDs, and an ID alone must be enough for a human to locate
// the node it names without an index scan.
package semantic

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies which canonical ID layout a node type uses.
type Kind int

const (
	// Arrow form: {file}->{scope_path}->{TYPE}->{name}[#discriminator].
	// Used for scope-bearing declarations (FUNCTION, CLASS, VARIABLE, SCOPE, …).
	Arrow Kind = iota
	// Colon form: {file}:{TYPE}:{name}[:{line}].
	// Used for types whose identity is stable by position (IMPORT, EXPORT, INTERFACE).
	Colon
)

// GlobalScope is the literal scope-path entry for module-level declarations.
// It is never represented as an empty path segment in a composed ID.
const GlobalScope = "global"

// Context carries the intrinsic attributes an ID is derived from.
type Context struct {
	File      string
	ScopePath []string // from module root to the enclosing scope, exclusive of the node itself
}

// NormalizedFile returns the file path used in IDs: forward slashes, no
// leading "./", no leading "/".
func (c Context) NormalizedFile() string {
	return normalizeFile(c.File)
}

// ScopePathString joins the scope path with "->", substituting GlobalScope
// for an empty path.
func (c Context) ScopePathString() string {
	if len(c.ScopePath) == 0 {
		return GlobalScope
	}
	return strings.Join(c.ScopePath, "->")
}

func normalizeFile(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	path = filepath.ToSlash(filepath.Clean(path))
	path = strings.TrimPrefix(path, "/")
	return path
}

// ComposeArrow builds an arrow-form ID: {file}->{scope_path}->{TYPE}->{name},
// optionally suffixed with a discriminator ("#0", "#1", …) to disambiguate
// same-named siblings within one scope.
func ComposeArrow(nodeType, name string, ctx Context, discriminator int) string {
	id := fmt.Sprintf("%s->%s->%s->%s", ctx.NormalizedFile(), ctx.ScopePathString(), nodeType, name)
	if discriminator > 0 {
		id = fmt.Sprintf("%s#%d", id, discriminator)
	}
	return id
}

// ComposeColon builds a colon-form ID: {file}:{TYPE}:{name}[:{line}].
// line < 0 omits the trailing line segment. IMPORT IDs, whose identity is
// the (source, local) pair rather than a position, are built by
// ComposeImportID instead.
func ComposeColon(nodeType, name, file string, line int) string {
	if line < 0 {
		return fmt.Sprintf("%s:%s:%s", normalizeFile(file), nodeType, name)
	}
	return fmt.Sprintf("%s:%s:%s:%d", normalizeFile(file), nodeType, name, line)
}

// ComposeImportID builds the IMPORT-specific colon-form ID:
// {file}:IMPORT:{source}:{local}. IMPORT never carries a line in its ID —
// line is metadata only, since two bindings from the same source import
// statement are still two distinct IMPORT nodes disambiguated by local name.
func ComposeImportID(file, source, local string) string {
	return fmt.Sprintf("%s:IMPORT:%s:%s", normalizeFile(file), source, local)
}

// ComposeExportID builds the EXPORT-specific colon-form ID:
// {file}:EXPORT:{name}:{line}. EXPORT keeps the line because re-exports and
// multiple specifiers of the same name in different statements are distinct
// nodes, and line is the only distinguishing intrinsic attribute available.
func ComposeExportID(file, name string, line int) string {
	return ComposeColon("EXPORT", name, file, line)
}

// ComposeInterfaceID builds the INTERFACE-specific colon-form ID:
// {file}:INTERFACE:{name}:{line}.
func ComposeInterfaceID(file, name string, line int) string {
	return ComposeColon("INTERFACE", name, file, line)
}

// ComposeExternalModuleID builds the EXTERNAL_MODULE placeholder ID. These
// are deduplicated per package name, independent of file and position.
func ComposeExternalModuleID(packageName string) string {
	return fmt.Sprintf("EXTERNAL_MODULE:%s", packageName)
}

// ComposeExternalClassID and ComposeExternalInterfaceID build placeholder
// IDs for an EXTENDS/IMPLEMENTS target that could not be resolved against
// the declaring file's own scope index — a cross-file or genuinely
// external base class/interface. Deduplicated per name, independent of
// file and position, mirroring ComposeExternalModuleID.
func ComposeExternalClassID(name string) string {
	return fmt.Sprintf("EXTERNAL_CLASS:%s", name)
}

func ComposeExternalInterfaceID(name string) string {
	return fmt.Sprintf("EXTERNAL_INTERFACE:%s", name)
}

// PackageNameFromSource extracts the installable package name from a bare
// import specifier: a scoped package keeps its first two path segments
// ("@scope/name"), anything else keeps only its first segment
// ("lodash/fp" -> "lodash"). Callers are responsible for checking the
// specifier is non-relative before calling this.
func PackageNameFromSource(source string) string {
	parts := strings.Split(source, "/")
	if strings.HasPrefix(source, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}
