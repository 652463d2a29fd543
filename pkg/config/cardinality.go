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

// Package config loads the project-local YAML configuration files that
// govern enrichment and Datalog rule behavior: cardinality.yaml and
// guarantees.yaml.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CardinalityEntryPoint maps one call-site pattern to the cardinality its
// loop iterations should be annotated with.
type CardinalityEntryPoint struct {
	Pattern  string `yaml:"pattern"`
	Returns  string `yaml:"returns"`
	Interval []int  `yaml:"interval,omitempty"`
}

// CardinalityConfig is the parsed shape of cardinality.yaml.
type CardinalityConfig struct {
	EntryPoints []CardinalityEntryPoint `yaml:"entryPoints"`
}

// LoadCardinalityConfig reads and parses path. A missing file is not an
// error — the cardinality enricher falls back to its built-in naming
// heuristics alone, returning an empty config rather than failing the
// whole enrichment run over an optional file.
func LoadCardinalityConfig(path string) (*CardinalityConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &CardinalityConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cardinality config %s: %w", path, err)
	}

	var cfg CardinalityConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse cardinality config %s: %w", path, err)
	}
	return &cfg, nil
}
