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

package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/grafema-dev/grafema/pkg/store"
)

// ProjectConfig holds configuration for initializing a project.
type ProjectConfig struct {
	// ProjectID is the logical project identifier.
	ProjectID string

	// DataDir is the directory where the graph store keeps its bbolt
	// database file. Defaults to ~/.grafema/data/<project_id>.
	DataDir string
}

// ProjectInfo holds information about an initialized project.
type ProjectInfo struct {
	ProjectID string
	DataDir   string
}

func defaultDataDir(projectID string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".grafema", "data", projectID), nil
}

// InitProject initializes a new grafema project backed by a local
// bbolt graph store. Idempotent: calling it multiple times is safe,
// since store.NewEmbeddedStore opens-or-creates the database file and
// its node/edge buckets.
func InitProject(config ProjectConfig, logger *slog.Logger) (*ProjectInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if config.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}

	if config.DataDir == "" {
		dataDir, err := defaultDataDir(config.ProjectID)
		if err != nil {
			return nil, err
		}
		config.DataDir = dataDir
	}

	logger.Info("bootstrap.project.init.start",
		"project_id", config.ProjectID,
		"data_dir", config.DataDir,
	)

	s, err := store.NewEmbeddedStore(store.EmbeddedConfig{
		DataDir:   config.DataDir,
		ProjectID: config.ProjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	defer func() { _ = s.Close() }()

	logger.Info("bootstrap.project.init.success",
		"project_id", config.ProjectID,
		"data_dir", config.DataDir,
	)

	return &ProjectInfo{
		ProjectID: config.ProjectID,
		DataDir:   config.DataDir,
	}, nil
}

// OpenProject opens an existing grafema project. Returns the graph
// store for querying and analyzing the project.
func OpenProject(config ProjectConfig, logger *slog.Logger) (*store.EmbeddedStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if config.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}

	if config.DataDir == "" {
		dataDir, err := defaultDataDir(config.ProjectID)
		if err != nil {
			return nil, err
		}
		config.DataDir = dataDir
	}

	if _, err := os.Stat(config.DataDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("project not found: %s (run 'grafema init' first)", config.DataDir)
	}

	logger.Debug("bootstrap.project.open",
		"project_id", config.ProjectID,
		"data_dir", config.DataDir,
	)

	s, err := store.NewEmbeddedStore(store.EmbeddedConfig{
		DataDir:   config.DataDir,
		ProjectID: config.ProjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return s, nil
}

// ListProjects returns a list of project IDs in the default data directory.
func ListProjects() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}

	dataDir := filepath.Join(homeDir, ".grafema", "data")
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	return projects, nil
}
