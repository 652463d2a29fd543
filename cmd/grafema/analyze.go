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
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/grafema-dev/grafema/internal/bootstrap"
	"github.com/grafema-dev/grafema/internal/errors"
	"github.com/grafema-dev/grafema/internal/output"
	"github.com/grafema-dev/grafema/internal/ui"
	"github.com/grafema-dev/grafema/pkg/config"
	"github.com/grafema-dev/grafema/pkg/enrich"
	"github.com/grafema-dev/grafema/pkg/grafemaerr"
	"github.com/grafema-dev/grafema/pkg/orchestrator"
)

// runAnalyze executes the 'analyze' CLI command, walking the current
// repository and materializing its code graph into the local store.
//
// Flags:
//   - --force: fail immediately instead of waiting if another run holds the analysis lock
//   - --cardinality: path to cardinality.yaml (default: .grafema/cardinality.yaml)
//   - --debug: enable debug logging
func runAnalyze(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	force := fs.Bool("force", false, "Fail immediately instead of waiting if another run holds the analysis lock")
	cardinalityPath := fs.String("cardinality", "", "Path to cardinality.yaml (default: .grafema/cardinality.yaml)")
	debug := fs.Bool("debug", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := LoadConfig(globals.ConfigPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError("cannot load configuration", err.Error(), "run 'grafema init'", err), globals.JSON)
	}

	logLevel := slog.LevelWarn
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError("cannot get current directory", err.Error(), "", err), globals.JSON)
	}

	project, err := bootstrap.InitProject(bootstrap.ProjectConfig{ProjectID: cfg.ProjectID}, logger)
	if err != nil {
		errors.FatalError(errors.NewStoreError("cannot initialize project store", err.Error(), "", err), globals.JSON)
	}

	graphStore, err := bootstrap.OpenProject(bootstrap.ProjectConfig{ProjectID: cfg.ProjectID, DataDir: project.DataDir}, logger)
	if err != nil {
		errors.FatalError(errors.NewStoreError("cannot open project store", err.Error(), "", err), globals.JSON)
	}
	defer func() { _ = graphStore.Close() }()

	if *cardinalityPath == "" {
		*cardinalityPath = ConfigDir(cwd) + "/cardinality.yaml"
	}
	cardinalityCfg, err := config.LoadCardinalityConfig(*cardinalityPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError("cannot load cardinality.yaml", err.Error(), "", err), globals.JSON)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	progress := NewProgressConfig(globals)
	bar := NewProgressBar(progress, -1, "analyzing")

	o := orchestrator.New(graphStore, cfg.ProjectID, logger)
	result, err := o.Run(ctx, orchestrator.Config{
		ProjectPath:      cwd,
		ProjectID:        cfg.ProjectID,
		ExcludeGlobs:     cfg.Analysis.Exclude,
		MaxFileSizeBytes: cfg.Analysis.MaxFileSizeBytes,
		ParseWorkers:     cfg.Analysis.ParseWorkers,
		Plugins: []enrich.Plugin{
			enrich.NewExternalCallResolver(),
			enrich.NewCardinalityEnricher(cardinalityCfg),
		},
		OnProgress: func(ev enrich.ProgressEvent) {
			if bar != nil {
				_ = bar.Set(ev.ProcessedFiles)
			}
		},
	}, *force)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		reportAnalyzeError(err, globals)
	}

	if globals.JSON {
		_ = output.JSON(result)
		return
	}
	printAnalyzeResult(result)
}

func reportAnalyzeError(err error, globals GlobalFlags) {
	var lockTimeout *grafemaerr.LockTimeout
	if goerrors.As(err, &lockTimeout) {
		errors.FatalError(errors.NewLockTimeoutError("analysis lock timed out", lockTimeout.Error(), "retry once the running analysis has finished", err), globals.JSON)
	}
	errors.FatalError(errors.NewInternalError("analysis failed", err.Error(), "", err), globals.JSON)
}

func printAnalyzeResult(result *orchestrator.AnalysisResult) {
	if result.AlreadyAnalyzed {
		ui.Info(fmt.Sprintf("Project '%s' already analyzed.", result.ProjectID))
		return
	}

	ui.Header("Analysis Complete")
	ui.Info(fmt.Sprintf("Project ID:       %s", result.ProjectID))
	ui.Info(fmt.Sprintf("Files discovered: %d", result.FilesDiscovered))
	ui.Info(fmt.Sprintf("Files analyzed:   %d", result.FilesAnalyzed))
	if result.ParseErrors > 0 {
		ui.Warning(fmt.Sprintf("Parse errors:     %d", result.ParseErrors))
	}
	ui.Info(fmt.Sprintf("Nodes created:    %d", result.NodesCreated))
	ui.Info(fmt.Sprintf("Edges created:    %d", result.EdgesCreated))
	for _, pr := range result.PluginResults {
		status := "ok"
		if !pr.Result.Success {
			status = "failed"
		}
		ui.Info(fmt.Sprintf("Plugin %-24s %s", pr.Plugin+":", status))
	}
	ui.Info(fmt.Sprintf("Duration:         %s", result.Duration))
}
