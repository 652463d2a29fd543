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

package orchestrator

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, root, rel string, size int) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := make([]byte, size)
	for i := range content {
		content[i] = 'x'
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func relPaths(files []DiscoveredFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Rel
	}
	sort.Strings(out)
	return out
}

func TestDiscoverFiles_FiltersByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/index.ts", 10)
	writeFile(t, root, "src/app.jsx", 10)
	writeFile(t, root, "README.md", 10)
	writeFile(t, root, "package.json", 10)

	files, err := discoverFiles(root, nil, 0)
	if err != nil {
		t.Fatalf("discoverFiles: %v", err)
	}

	got := relPaths(files)
	want := []string{"src/app.jsx", "src/index.ts"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDiscoverFiles_PrunesExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "node_modules/dep/index.js", 10)
	writeFile(t, root, "src/index.js", 10)

	files, err := discoverFiles(root, []string{"node_modules"}, 0)
	if err != nil {
		t.Fatalf("discoverFiles: %v", err)
	}

	got := relPaths(files)
	if len(got) != 1 || got[0] != "src/index.js" {
		t.Fatalf("expected only src/index.js, got %v", got)
	}
}

func TestDiscoverFiles_ExcludeGlobMatchesAtAnyDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/generated/foo.ts", 10)
	writeFile(t, root, "src/real.ts", 10)

	files, err := discoverFiles(root, []string{"**/generated/**"}, 0)
	if err != nil {
		t.Fatalf("discoverFiles: %v", err)
	}

	got := relPaths(files)
	if len(got) != 1 || got[0] != "src/real.ts" {
		t.Fatalf("expected only src/real.ts, got %v", got)
	}
}

func TestDiscoverFiles_SkipsFilesOverMaxSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.js", 10)
	writeFile(t, root, "big.js", 1000)

	files, err := discoverFiles(root, nil, 100)
	if err != nil {
		t.Fatalf("discoverFiles: %v", err)
	}

	got := relPaths(files)
	if len(got) != 1 || got[0] != "small.js" {
		t.Fatalf("expected only small.js, got %v", got)
	}
}

func TestDiscoverFiles_ResultsAreSortedForDeterminism(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.js", 10)
	writeFile(t, root, "a.js", 10)
	writeFile(t, root, "c.js", 10)

	files, err := discoverFiles(root, nil, 0)
	if err != nil {
		t.Fatalf("discoverFiles: %v", err)
	}

	if len(files) != 3 || files[0].Rel != "a.js" || files[1].Rel != "b.js" || files[2].Rel != "c.js" {
		t.Fatalf("expected sorted order a,b,c got %v", relPaths(files))
	}
}
