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

// Package testing provides test fixture helpers for grafema graph tests.
//
// It builds node and edge records through pkg/nodes.Factory and seeds
// them into a temp-dir-backed pkg/store.EmbeddedStore, so package tests
// across the module can assemble a small graph without repeating
// factory boilerplate.
//
// # Quick Start
//
// Use SetupTestStore to create an isolated store, then seed it:
//
//	func TestMyFeature(t *testing.T) {
//	    s := testing.SetupTestStore(t)
//
//	    fn := testing.InsertFunction(t, s, "HandleAuth", "auth.js", 10)
//	    mod := testing.InsertModule(t, s, "auth.js")
//	    testing.InsertContainsEdge(t, s, mod.ID, fn.ID)
//
//	    funcs := testing.QueryFunctions(t, s)
//	    // len(funcs) == 1
//	}
//
// # Seeding Test Data
//
//   - InsertFunction: Add a FUNCTION node
//   - InsertClass: Add a CLASS node
//   - InsertModule: Add a MODULE node
//   - InsertImport: Add an IMPORT node
//   - InsertCallsEdge: Link caller to callee with a CALLS edge
//   - InsertContainsEdge: Link a parent to a child it declares
//
// # Querying Test Data
//
//   - QueryFunctions: Get all FUNCTION nodes
//   - QueryClasses: Get all CLASS nodes
//   - QueryModules: Get all MODULE nodes
package testing
