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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCardinalityConfig_MissingFileReturnsEmpty(t *testing.T) {
	cfg, err := LoadCardinalityConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadCardinalityConfig: %v", err)
	}
	if len(cfg.EntryPoints) != 0 {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadCardinalityConfig_ParsesEntryPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardinality.yaml")
	content := `
entryPoints:
  - pattern: "query*"
    returns: nodes
  - pattern: "findById"
    returns: constant
    interval: [1, 1]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadCardinalityConfig(path)
	if err != nil {
		t.Fatalf("LoadCardinalityConfig: %v", err)
	}
	if len(cfg.EntryPoints) != 2 {
		t.Fatalf("expected 2 entry points, got %d", len(cfg.EntryPoints))
	}
	if cfg.EntryPoints[0].Pattern != "query*" || cfg.EntryPoints[0].Returns != "nodes" {
		t.Fatalf("unexpected first entry point: %+v", cfg.EntryPoints[0])
	}
	if cfg.EntryPoints[1].Interval[0] != 1 || cfg.EntryPoints[1].Interval[1] != 1 {
		t.Fatalf("unexpected interval: %+v", cfg.EntryPoints[1])
	}
}

func TestLoadGuarantees_MissingFileReturnsNil(t *testing.T) {
	guarantees, err := LoadGuarantees(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadGuarantees: %v", err)
	}
	if guarantees != nil {
		t.Fatalf("expected nil guarantees, got %+v", guarantees)
	}
}

func TestLoadGuarantees_ParsesList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guarantees.yaml")
	content := `
- id: no-n-squared
  uses: "standard:n-squared-same-scale"
  governs: ["src/**/*.js"]
  severity: error
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	guarantees, err := LoadGuarantees(path)
	if err != nil {
		t.Fatalf("LoadGuarantees: %v", err)
	}
	if len(guarantees) != 1 {
		t.Fatalf("expected 1 guarantee, got %d", len(guarantees))
	}
	if guarantees[0].ID != "no-n-squared" || guarantees[0].Severity != "error" {
		t.Fatalf("unexpected guarantee: %+v", guarantees[0])
	}
}
