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

	flag "github.com/spf13/pflag"

	"github.com/grafema-dev/grafema/internal/errors"
	"github.com/grafema-dev/grafema/internal/ui"
)

// runReset executes the 'reset' CLI command, deleting the project's
// local graph store so the next 'grafema analyze' starts clean.
//
// Flags:
//   - --yes: confirm the deletion (required)
func runReset(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the reset (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: grafema reset --yes

Deletes the project's local graph store, clearing all analyzed data.
Useful before a clean re-analysis.

WARNING: This operation is destructive and cannot be undone.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if !*confirm {
		fmt.Fprintln(os.Stderr, "Error: you must pass --yes to confirm the reset")
		fmt.Fprintln(os.Stderr, "This will delete all analyzed data for the project.")
		os.Exit(1)
	}

	cfg, err := LoadConfig(globals.ConfigPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError("cannot load configuration", err.Error(), "run 'grafema init'", err), globals.JSON)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		errors.FatalError(errors.NewInternalError("cannot get home directory", err.Error(), "", err), globals.JSON)
	}
	dataDir := filepath.Join(homeDir, ".grafema", "data", cfg.ProjectID)

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		ui.Info(fmt.Sprintf("No local data found for project %s", cfg.ProjectID))
		os.Exit(0)
	}

	ui.Info(fmt.Sprintf("Resetting project %s (deleting %s)...", cfg.ProjectID, dataDir))

	if err := os.RemoveAll(dataDir); err != nil {
		errors.FatalError(errors.NewPermissionError("cannot delete project data", err.Error(), "check directory permissions", err), globals.JSON)
	}

	ui.Success("Reset complete. All local analyzed data has been deleted.")
	ui.Header("Next steps")
	ui.Info("  Run 'grafema analyze' to rebuild the code graph")
}
