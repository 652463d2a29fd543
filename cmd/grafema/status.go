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
	"log/slog"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/grafema-dev/grafema/internal/bootstrap"
	"github.com/grafema-dev/grafema/internal/errors"
	"github.com/grafema-dev/grafema/internal/output"
	"github.com/grafema-dev/grafema/internal/ui"
	"github.com/grafema-dev/grafema/pkg/nodes"
)

// StatusResult is the project status reported by 'grafema status'.
type StatusResult struct {
	ProjectID   string                 `json:"project_id"`
	DataDir     string                 `json:"data_dir"`
	Connected   bool                   `json:"connected"`
	Nodes       int                    `json:"nodes"`
	Edges       int                    `json:"edges"`
	NodesByType map[nodes.Type]int     `json:"nodes_by_type,omitempty"`
	EdgesByType map[nodes.EdgeType]int `json:"edges_by_type,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// runStatus executes the 'status' CLI command, reporting node/edge
// counts in the project's graph store.
//
// Flags:
//   - --json: Output as JSON (default: false)
func runStatus(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *jsonOutput {
		globals.JSON = true
	}

	cfg, err := LoadConfig(globals.ConfigPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError("cannot load configuration", err.Error(), "run 'grafema init'", err), globals.JSON)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	graphStore, err := bootstrap.OpenProject(bootstrap.ProjectConfig{ProjectID: cfg.ProjectID}, logger)
	if err != nil {
		result := &StatusResult{ProjectID: cfg.ProjectID, Connected: false, Timestamp: time.Now()}
		if globals.JSON {
			_ = output.JSON(result)
		} else {
			ui.Info(fmt.Sprintf("Project '%s' not analyzed yet.", cfg.ProjectID))
			ui.Info("Run 'grafema analyze' to build its code graph.")
		}
		os.Exit(0)
	}
	defer func() { _ = graphStore.Close() }()

	result := &StatusResult{ProjectID: cfg.ProjectID, Connected: true, Timestamp: time.Now()}

	if result.Nodes, err = graphStore.NodeCount(); err != nil {
		errors.FatalError(errors.NewStoreError("cannot count nodes", err.Error(), "", err), globals.JSON)
	}
	if result.Edges, err = graphStore.EdgeCount(); err != nil {
		errors.FatalError(errors.NewStoreError("cannot count edges", err.Error(), "", err), globals.JSON)
	}
	if result.NodesByType, err = graphStore.CountNodesByType(); err != nil {
		errors.FatalError(errors.NewStoreError("cannot count nodes by type", err.Error(), "", err), globals.JSON)
	}
	if result.EdgesByType, err = graphStore.CountEdgesByType(); err != nil {
		errors.FatalError(errors.NewStoreError("cannot count edges by type", err.Error(), "", err), globals.JSON)
	}

	if globals.JSON {
		_ = output.JSON(result)
		return
	}
	printStatus(result)
}

func printStatus(result *StatusResult) {
	ui.Header("Project Status")
	ui.Info(fmt.Sprintf("Project ID: %s", result.ProjectID))
	ui.Info(fmt.Sprintf("Nodes:      %d", result.Nodes))
	ui.Info(fmt.Sprintf("Edges:      %d", result.Edges))

	ui.SubHeader("Nodes by type")
	for t, n := range result.NodesByType {
		ui.Info(fmt.Sprintf("  %-20s %d", t, n))
	}

	ui.SubHeader("Edges by type")
	for t, n := range result.EdgesByType {
		ui.Info(fmt.Sprintf("  %-20s %d", t, n))
	}
}
