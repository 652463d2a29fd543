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

// Package bootstrap handles grafema project initialization and setup.
//
// This internal package provides the core initialization logic for
// grafema projects. It opens the bbolt-backed graph store at a
// project's data directory, creating the node/edge buckets on first
// use, and ensures prerequisites are met before the project can be
// analyzed or queried.
//
// # Initialization Workflow
//
// A typical workflow for setting up a new grafema project:
//
//	// Initialize the project (creates the graph store)
//	info, err := bootstrap.InitProject(bootstrap.ProjectConfig{
//	    ProjectID: "myproject",
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Project initialized at: %s\n", info.DataDir)
//
//	// Later, open the project for analysis or queries
//	graphStore, err := bootstrap.OpenProject(bootstrap.ProjectConfig{
//	    ProjectID: "myproject",
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer graphStore.Close()
//
// # Idempotency
//
// InitProject is idempotent: calling it multiple times on the same
// project is safe and will not corrupt existing data, since opening an
// existing bbolt database file is itself idempotent.
//
// # Configuration
//
// ProjectConfig controls the initialization behavior:
//
//   - ProjectID: Required. Logical identifier for the project.
//   - DataDir: Optional. Where to store the graph database. Defaults to
//     ~/.grafema/data/<project_id>.
//
// # Project Discovery
//
// List existing projects in the default data directory:
//
//	projects, err := bootstrap.ListProjects()
//	for _, id := range projects {
//	    fmt.Println(id)
//	}
package bootstrap
