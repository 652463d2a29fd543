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

// Package main implements the grafema CLI for analyzing JavaScript/
// TypeScript repositories and querying the resulting code graph.
//
// Usage:
//
//	grafema init                    Create .grafema/project.yaml configuration
//	grafema analyze                 Analyze the current repository
//	grafema status [--json]         Show project status
//	grafema query <script> [--json] Evaluate a Datalog predicate query
//	grafema reset --yes             Delete local project data
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/grafema-dev/grafema/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// GlobalFlags holds flags recognized before the subcommand name.
type GlobalFlags struct {
	JSON       bool
	Quiet      bool
	NoColor    bool
	ConfigPath string
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output as JSON")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress progress output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		configPath  = flag.String("config", "", "Path to .grafema/project.yaml (default: ./.grafema/project.yaml)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `grafema - code graph engine CLI

Usage:
  grafema <command> [options]

Commands:
  init      Create .grafema/project.yaml configuration
  analyze   Analyze the current repository and build its code graph
  status    Show project status
  query     Evaluate a Datalog predicate query
  reset     Delete local project data (destructive!)

Global Options:
  --json        Output as JSON
  -q, --quiet   Suppress progress output
  --no-color    Disable colored output
  --config      Path to .grafema/project.yaml
  --version     Show version and exit

Examples:
  grafema init
  grafema analyze
  grafema analyze --force
  grafema status --json
  grafema query "node(FUNCTION)"
  grafema query "edge(CALLS)"

Data Storage:
  Data is stored locally in ~/.grafema/data/<project_id>/
`)
	}

	// Stop at the command name so flags after it (analyze --force,
	// reset --yes) reach the subcommand's own flag set.
	flag.CommandLine.SetInterspersed(false)
	flag.Parse()

	globals :=GlobalFlags{JSON: *jsonOutput, Quiet: *quiet, NoColor: *noColor, ConfigPath: *configPath}
	ui.InitColors(globals.NoColor)

	if *showVersion {
		fmt.Printf("grafema version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs, globals)
	case "analyze":
		runAnalyze(cmdArgs, globals)
	case "status":
		runStatus(cmdArgs, globals)
	case "query":
		runQuery(cmdArgs, globals)
	case "reset":
		runReset(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
