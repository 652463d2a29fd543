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

package enrich

import (
	"log/slog"
	"testing"

	"github.com/grafema-dev/grafema/pkg/nodes"
)

type fakePlugin struct {
	name    string
	deps    []string
	execute func(ctx PluginContext) PluginResult
}

func (f *fakePlugin) Name() string              { return f.name }
func (f *fakePlugin) Phase() Phase              { return Enrichment }
func (f *fakePlugin) Dependencies() []string    { return f.deps }
func (f *fakePlugin) Consumes() []nodes.EdgeType { return nil }
func (f *fakePlugin) Produces() []nodes.EdgeType { return nil }

func (f *fakePlugin) Execute(ctx PluginContext) PluginResult {
	if f.execute != nil {
		return f.execute(ctx)
	}
	return PluginResult{Success: true}
}

func TestRunner_OrdersPluginsByDependency(t *testing.T) {
	var order []string
	record := func(name string) func(PluginContext) PluginResult {
		return func(PluginContext) PluginResult {
			order = append(order, name)
			return PluginResult{Success: true}
		}
	}

	a := &fakePlugin{name: "a", execute: record("a")}
	b := &fakePlugin{name: "b", deps: []string{"a"}, execute: record("b")}
	c := &fakePlugin{name: "c", deps: []string{"b"}, execute: record("c")}

	runner := NewRunner(slog.Default())
	results, err := runner.Run([]Plugin{c, a, b}, PluginContext{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("expected execution order a,b,c, got %v", order)
	}
}

func TestRunner_DetectsDependencyCycle(t *testing.T) {
	a := &fakePlugin{name: "a", deps: []string{"b"}}
	b := &fakePlugin{name: "b", deps: []string{"a"}}

	runner := NewRunner(slog.Default())
	if _, err := runner.Run([]Plugin{a, b}, PluginContext{}); err == nil {
		t.Fatalf("expected a cycle error")
	}
}

func TestRunner_DetectsUndeclaredDependency(t *testing.T) {
	a := &fakePlugin{name: "a", deps: []string{"ghost"}}

	runner := NewRunner(slog.Default())
	if _, err := runner.Run([]Plugin{a}, PluginContext{}); err == nil {
		t.Fatalf("expected an undeclared-dependency error")
	}
}

func TestRunner_FailedPluginSkipsTransitiveDependentsButNotIndependents(t *testing.T) {
	var ranIndependent bool
	var ranDependent bool

	failing := &fakePlugin{name: "failing", execute: func(PluginContext) PluginResult {
		return PluginResult{Success: false, Errors: []string{"boom"}}
	}}
	dependent := &fakePlugin{name: "dependent", deps: []string{"failing"}, execute: func(PluginContext) PluginResult {
		ranDependent = true
		return PluginResult{Success: true}
	}}
	independent := &fakePlugin{name: "independent", execute: func(PluginContext) PluginResult {
		ranIndependent = true
		return PluginResult{Success: true}
	}}

	runner := NewRunner(slog.Default())
	results, err := runner.Run([]Plugin{failing, dependent, independent}, PluginContext{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ranDependent {
		t.Fatalf("expected the dependent plugin to be skipped")
	}
	if !ranIndependent {
		t.Fatalf("expected the independent plugin to still run")
	}

	var sawFailing bool
	for _, r := range results {
		if r.Plugin == "failing" {
			sawFailing = true
			if r.Result.Success {
				t.Fatalf("expected failing plugin's result to record failure")
			}
		}
	}
	if !sawFailing {
		t.Fatalf("expected a result entry for the failing plugin")
	}
	for _, r := range results {
		if r.Plugin == "dependent" {
			t.Fatalf("expected no result entry for a skipped plugin, got %+v", r)
		}
	}
}

func TestRunner_RecoversPluginPanic(t *testing.T) {
	panicking := &fakePlugin{name: "panicking", execute: func(PluginContext) PluginResult {
		panic("something went wrong")
	}}

	runner := NewRunner(slog.Default())
	results, err := runner.Run([]Plugin{panicking}, PluginContext{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].Result.Success {
		t.Fatalf("expected a single failed result recovered from the panic, got %+v", results)
	}
}
