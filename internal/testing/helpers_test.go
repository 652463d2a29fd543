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

package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestStore(t *testing.T) {
	s := SetupTestStore(t)
	require.NotNil(t, s)

	funcs := QueryFunctions(t, s)
	assert.Empty(t, funcs, "should start with no functions")
}

func TestInsertFunction(t *testing.T) {
	s := SetupTestStore(t)

	n := InsertFunction(t, s, "HandleAuth", "auth.js", 10)
	require.NotNil(t, n)

	funcs := QueryFunctions(t, s)
	require.Len(t, funcs, 1)
	assert.Equal(t, "HandleAuth", funcs[0].Name)
}

func TestInsertClass(t *testing.T) {
	s := SetupTestStore(t)

	InsertClass(t, s, "UserService", "user.js", 10)

	classes := QueryClasses(t, s)
	require.Len(t, classes, 1)
	assert.Equal(t, "UserService", classes[0].Name)
}

func TestInsertModule(t *testing.T) {
	s := SetupTestStore(t)

	InsertModule(t, s, "auth.js")

	modules := QueryModules(t, s)
	require.Len(t, modules, 1)
}

func TestMultipleInserts(t *testing.T) {
	s := SetupTestStore(t)

	InsertFunction(t, s, "Main", "main.js", 5)
	InsertFunction(t, s, "Helper", "util.js", 15)
	InsertFunction(t, s, "Process", "processor.js", 25)

	funcs := QueryFunctions(t, s)
	require.Len(t, funcs, 3)
}

func TestEdgeInsertion(t *testing.T) {
	s := SetupTestStore(t)

	mod := InsertModule(t, s, "main.js")
	caller := InsertFunction(t, s, "main", "main.js", 1)
	callee := InsertFunction(t, s, "helper", "main.js", 12)

	InsertContainsEdge(t, s, mod.ID, caller.ID)
	InsertCallsEdge(t, s, caller.ID, callee.ID)

	funcs := QueryFunctions(t, s)
	require.Len(t, funcs, 2)
}

func TestInsertImport(t *testing.T) {
	s := SetupTestStore(t)

	n := InsertImport(t, s, "main.js", "fs-extra", "readFile", 1)
	require.NotNil(t, n)
}

func TestStoreIsolation(t *testing.T) {
	s1 := SetupTestStore(t)
	InsertFunction(t, s1, "Test1", "file1.js", 1)

	s2 := SetupTestStore(t)
	funcs := QueryFunctions(t, s2)
	assert.Empty(t, funcs, "second store should be isolated from first")

	funcs1 := QueryFunctions(t, s1)
	assert.Len(t, funcs1, 1)
}
