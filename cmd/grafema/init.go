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
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/grafema-dev/grafema/internal/errors"
	"github.com/grafema-dev/grafema/internal/ui"
)

// runInit executes the 'init' CLI command, creating a .grafema/project.yaml
// configuration file.
//
// Flags:
//   - --force: Overwrite existing configuration (default: false)
//   - --project-id: Project identifier (default: directory name)
func runInit(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite existing configuration")
	projectID := fs.String("project-id", "", "Project identifier")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError("cannot get current directory", err.Error(), "", err), globals.JSON)
	}

	configPath := ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !*force {
		errors.FatalError(errors.NewInputError(
			"configuration already exists",
			configPath,
			"pass --force to overwrite",
		), globals.JSON)
	}

	pid := *projectID
	if pid == "" {
		pid = filepath.Base(cwd)
	}
	cfg := DefaultConfig(pid)

	if err := SaveConfig(cfg, configPath); err != nil {
		errors.FatalError(errors.NewConfigError("cannot save configuration", err.Error(), "", err), globals.JSON)
	}

	ui.Success("Created " + configPath)
	addToGitignore(cwd)

	ui.Header("Next steps")
	ui.Info("  1. Review and edit .grafema/project.yaml if needed")
	ui.Info("  2. Run 'grafema analyze' to analyze your repository")
	ui.Info("  3. Run 'grafema status' to verify the analysis")
}

// addToGitignore adds .grafema/ to the project's .gitignore file if not
// already present. Silently no-ops when .gitignore does not exist or
// cannot be written.
func addToGitignore(dir string) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == ".grafema/" || line == ".grafema" || line == "/.grafema/" || line == "/.grafema" {
			return
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	if len(content) > 0 && content[len(content)-1] != '\n' {
		_, _ = f.WriteString("\n")
	}
	_, _ = f.WriteString("\n# grafema configuration\n.grafema/\n")
	ui.Info("Added .grafema/ to .gitignore")
}
