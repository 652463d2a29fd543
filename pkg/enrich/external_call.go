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
	"fmt"
	"strings"

	"github.com/grafema-dev/grafema/pkg/nodes"
	"github.com/grafema-dev/grafema/pkg/semantic"
	"github.com/grafema-dev/grafema/pkg/store"
)

// jsBuiltins is skipped by the external-call resolver: a bare call to one
// of these never names an import binding, so even a same-named local
// import shadows it without the resolver getting involved.
var jsBuiltins = map[string]bool{
	"parseInt": true, "parseFloat": true, "isNaN": true, "isFinite": true,
	"eval": true, "require": true, "setTimeout": true, "setInterval": true,
	"clearTimeout": true, "clearInterval": true, "encodeURIComponent": true,
	"decodeURIComponent": true, "encodeURI": true, "decodeURI": true,
	"Number": true, "String": true, "Boolean": true, "Array": true,
	"Object": true, "Promise": true, "Symbol": true, "Proxy": true,
	"Reflect": true, "structuredClone": true,
}

// ExternalCallResolver is the ENRICHMENT plugin that links call sites to
// import bindings: every bare CALL whose name matches an in-scope
// non-relative IMPORT gets a CALLS edge to a placeholder EXTERNAL_MODULE
// node and, for value imports, a HANDLED_BY edge back to the IMPORT.
// Grounded on the teacher's CallResolver (pkg/ingestion/resolver.go):
// build an index first (BuildIndex / importIndex), then resolve a queue
// of candidates against it (resolveCall / resolveOne) — generalized from
// Go package-alias resolution to JS/TS bare-specifier import bindings.
type ExternalCallResolver struct{}

func NewExternalCallResolver() *ExternalCallResolver { return &ExternalCallResolver{} }

func (r *ExternalCallResolver) Name() string               { return "external-call-resolver" }
func (r *ExternalCallResolver) Phase() Phase               { return Enrichment }
func (r *ExternalCallResolver) Dependencies() []string     { return nil }
func (r *ExternalCallResolver) Consumes() []nodes.EdgeType { return nil }

func (r *ExternalCallResolver) Produces() []nodes.EdgeType {
	return []nodes.EdgeType{nodes.Calls, nodes.HandledBy}
}

type importBinding struct {
	node          *nodes.NodeRecord
	source        string
	imported      string
	importBinding string
}

func (r *ExternalCallResolver) Execute(ctx PluginContext) PluginResult {
	g := ctx.Graph

	importIdx, err := r.buildImportIndex(g)
	if err != nil {
		return PluginResult{Success: false, Errors: []string{fmt.Sprintf("build import index: %v", err)}}
	}

	callIt, err := g.QueryNodes(store.NodeFilter{"type": nodes.Call})
	if err != nil {
		return PluginResult{Success: false, Errors: []string{fmt.Sprintf("query calls: %v", err)}}
	}
	defer callIt.Close()

	var errs []string
	callsCreated := 0
	handledByCreated := 0
	processed := 0

	for callIt.Next() {
		call := callIt.Node()
		processed++
		if ctx.OnProgress != nil && (processed%10 == 0) {
			ctx.OnProgress(ProgressEvent{Phase: string(Enrichment), CurrentPlugin: r.Name(), Message: "resolving external calls", ProcessedFiles: processed})
		}

		if _, hasObject := call.Metadata["object"]; hasObject {
			continue
		}
		if isDynamic, _ := call.Metadata["isDynamic"].(bool); isDynamic {
			continue
		}
		if jsBuiltins[call.Name] {
			continue
		}

		existing, err := g.GetOutgoingEdges(call.ID, []nodes.EdgeType{nodes.Calls})
		if err != nil {
			errs = append(errs, fmt.Sprintf("get outgoing edges for %s: %v", call.ID, err))
			continue
		}
		if len(existing) > 0 {
			continue
		}

		imp, ok := importIdx[importKey(call.File, call.Name)]
		if !ok {
			continue
		}

		extID, err := r.ensureExternalModule(g, semantic.PackageNameFromSource(imp.source))
		if err != nil {
			errs = append(errs, fmt.Sprintf("ensure external module for %s: %v", imp.source, err))
			continue
		}

		exportedName := imp.imported
		if exportedName == "" {
			exportedName = call.Name
		}
		callsEdge, err := nodes.NewEdge(nodes.Calls, call.ID, extID, map[string]any{"exportedName": exportedName})
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if err := g.AddEdge(callsEdge); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		callsCreated++

		if imp.importBinding != "type" {
			handledByEdge, err := nodes.NewEdge(nodes.HandledBy, call.ID, imp.node.ID, nil)
			if err != nil {
				errs = append(errs, err.Error())
				continue
			}
			if err := g.AddEdge(handledByEdge); err != nil {
				errs = append(errs, err.Error())
				continue
			}
			handledByCreated++
		}
	}
	if err := callIt.Err(); err != nil {
		errs = append(errs, err.Error())
	}

	if ctx.OnProgress != nil {
		ctx.OnProgress(ProgressEvent{Phase: string(Enrichment), CurrentPlugin: r.Name(), Message: "done", ProcessedFiles: processed})
	}

	return PluginResult{
		Success: len(errs) == 0,
		Metadata: map[string]any{
			"edgesCreated":          callsCreated,
			"handledByEdgesCreated": handledByCreated,
		},
		Errors: errs,
	}
}

// buildImportIndex collects every IMPORT node whose source is not a
// relative path, keyed by (file, local name). Relative imports never
// resolve to an EXTERNAL_MODULE — they name another file in the same
// project, which the builder's own scope index already wires directly.
func (r *ExternalCallResolver) buildImportIndex(g store.GraphStore) (map[string]importBinding, error) {
	it, err := g.QueryNodes(store.NodeFilter{"type": nodes.Import})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	idx := make(map[string]importBinding)
	for it.Next() {
		n := it.Node()
		source, _ := n.Metadata["source"].(string)
		if source == "" || strings.HasPrefix(source, ".") || strings.HasPrefix(source, "/") {
			continue
		}
		local, _ := n.Metadata["local"].(string)
		if local == "" || local == "*" {
			continue
		}
		imported, _ := n.Metadata["imported"].(string)
		binding, _ := n.Metadata["importBinding"].(string)
		idx[importKey(n.File, local)] = importBinding{node: n, source: source, imported: imported, importBinding: binding}
	}
	return idx, it.Err()
}

func importKey(file, local string) string { return file + "|" + local }

// ensureExternalModule relies on GraphStore.AddNode being a no-op on a
// duplicate ID (every EXTERNAL_MODULE node for the same package shares
// the same deterministic ID) rather than querying for an existing node
// first — the same dedup discipline pkg/builder.Builder.externalModuleID
// gets for free from its in-memory map, reproduced here against the
// store.
func (r *ExternalCallResolver) ensureExternalModule(g store.GraphStore, packageName string) (string, error) {
	rec, err := nodes.NewFactory().CreateExternalModule(nodes.ExternalModuleParams{PackageName: packageName})
	if err != nil {
		return "", err
	}
	if err := g.AddNode(rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}
