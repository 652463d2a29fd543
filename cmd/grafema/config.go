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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the parsed shape of .grafema/project.yaml.
type Config struct {
	ProjectID string         `yaml:"project_id"`
	Analysis  AnalysisConfig `yaml:"analysis"`
}

// AnalysisConfig holds the analyze command's defaults.
type AnalysisConfig struct {
	Exclude          []string `yaml:"exclude,omitempty"`
	MaxFileSizeBytes int64    `yaml:"max_file_size_bytes,omitempty"`
	ParseWorkers     int      `yaml:"parse_workers,omitempty"`
}

// DefaultConfig returns a Config with the given project ID and
// conservative analysis defaults.
func DefaultConfig(projectID string) *Config {
	return &Config{
		ProjectID: projectID,
		Analysis: AnalysisConfig{
			MaxFileSizeBytes: 5 << 20,
			ParseWorkers:     4,
		},
	}
}

// ConfigDir returns the .grafema directory under repoRoot.
func ConfigDir(repoRoot string) string {
	return filepath.Join(repoRoot, ".grafema")
}

// ConfigPath returns the project.yaml path under repoRoot.
func ConfigPath(repoRoot string) string {
	return filepath.Join(ConfigDir(repoRoot), "project.yaml")
}

// LoadConfig reads the project configuration from path, or from the
// current directory's default location when path is empty.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get current directory: %w", err)
		}
		path = ConfigPath(cwd)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is either a CLI flag or derived from cwd
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no configuration found at %s (run 'grafema init' first)", path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%s: project_id is required", path)
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path as YAML, creating parent directories as
// needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
