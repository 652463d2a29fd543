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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Guarantee is one governance rule: either a reference to a standard rule
// library ("standard:n-squared-same-scale") or an inline Datalog rule
// body, applied to every file matching Governs.
type Guarantee struct {
	ID       string   `yaml:"id"`
	Uses     string   `yaml:"uses,omitempty"`
	Rule     string   `yaml:"rule,omitempty"`
	Governs  []string `yaml:"governs"`
	Severity string   `yaml:"severity"`
}

// LoadGuarantees reads and parses path as a plain top-level YAML list. A
// missing file yields an empty rule set rather than an error.
func LoadGuarantees(path string) ([]Guarantee, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read guarantees config %s: %w", path, err)
	}

	var guarantees []Guarantee
	if err := yaml.Unmarshal(data, &guarantees); err != nil {
		return nil, fmt.Errorf("parse guarantees config %s: %w", path, err)
	}
	return guarantees, nil
}
