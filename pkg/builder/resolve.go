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

package builder

import "strings"

const globalScopeKey = "global"

// scopeIndex maps "{file}|{scopePathString}|{name}" to the node ID that
// binds name within that exact scope of that file. One index is shared
// across every file in a build session — file-qualifying every key is what
// keeps two files that each declare a top-level "main" from colliding.
// Resolution walks the scope chain outward within the same file — innermost
// scope first, then each enclosing scope, finally "global" — so a local
// binding always shadows an outer one of the same name, per the engine's
// lexical-scoping contract. There is no fallback across files: cross-file
// references (an imported function, an exported class) are resolved
// separately, from the IMPORT binding's source to another file's exports,
// which is pkg/enrich's job, not this index's.
type scopeIndex struct {
	byScopeAndName map[string]string
}

func newScopeIndex() *scopeIndex {
	return &scopeIndex{byScopeAndName: make(map[string]string)}
}

func scopePathKey(path []string) string {
	if len(path) == 0 {
		return globalScopeKey
	}
	return strings.Join(path, "->")
}

// bind records that name resolves to id within the scope identified by
// (file, path). A later bind of the same (file, path, name) overwrites the
// earlier one, which matches re-declaration/shadowing-by-redeclaration
// within one scope.
func (idx *scopeIndex) bind(file string, path []string, name, id string) {
	if name == "" || id == "" {
		return
	}
	idx.byScopeAndName[file+"|"+scopePathKey(path)+"|"+name] = id
}

// bindGlobal records a module-level binding (imports, top-level
// declarations), indexed under the file's "global" scope.
func (idx *scopeIndex) bindGlobal(file, name, id string) {
	idx.bind(file, nil, name, id)
}

// resolve walks from path outward to "global" within file, returning the
// first binding of name found.
func (idx *scopeIndex) resolve(file string, path []string, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for i := len(path); i >= 0; i-- {
		key := file + "|" + scopePathKey(path[:i]) + "|" + name
		if id, ok := idx.byScopeAndName[key]; ok {
			return id, true
		}
	}
	return "", false
}
