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
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/grafema-dev/grafema/pkg/config"
	"github.com/grafema-dev/grafema/pkg/nodes"
	"github.com/grafema-dev/grafema/pkg/store"
)

// builtinCardinalityRule is one of the small set of naming heuristics
// tried when no config entry matches.
type builtinCardinalityRule struct {
	match func(name string) bool
	scale string
}

var findByIDPattern = regexp.MustCompile(`^find[A-Z][a-zA-Z]*$`)
var getByIDPattern = regexp.MustCompile(`^get.*ById$`)

var builtinCardinalityRules = []builtinCardinalityRule{
	{scale: "nodes", match: func(n string) bool { return hasAnyPrefix(n, "query", "getAll", "list", "fetch") }},
	{scale: "constant", match: func(n string) bool {
		return strings.HasPrefix(n, "findBy") || findByIDPattern.MatchString(n) || getByIDPattern.MatchString(n)
	}},
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// CardinalityEnricher is the ENRICHMENT plugin that annotates ITERATES_OVER
// edges with a cardinality estimate for the loop's iterated collection,
// grounded on the teacher's config-driven pattern matching in
// pkg/ingestion/project_meta.go generalized from project-metadata lookup
// to loop call-site matching; glob support (cardinality.yaml's `pattern`
// field may be an exact name or a glob) is the pack's own
// github.com/bmatcuk/doublestar/v4, used the same way the teacher's pack
// sibling bennypowers-cem matches CSS import paths against configured globs.
type CardinalityEnricher struct {
	Config *config.CardinalityConfig
}

func NewCardinalityEnricher(cfg *config.CardinalityConfig) *CardinalityEnricher {
	if cfg == nil {
		cfg = &config.CardinalityConfig{}
	}
	return &CardinalityEnricher{Config: cfg}
}

func (c *CardinalityEnricher) Name() string          { return "cardinality-enricher" }
func (c *CardinalityEnricher) Phase() Phase           { return Enrichment }
func (c *CardinalityEnricher) Dependencies() []string { return nil }

func (c *CardinalityEnricher) Consumes() []nodes.EdgeType {
	return []nodes.EdgeType{nodes.IteratesOver, nodes.DerivesFrom, nodes.AssignedFrom}
}

func (c *CardinalityEnricher) Produces() []nodes.EdgeType {
	return []nodes.EdgeType{nodes.IteratesOver}
}

func (c *CardinalityEnricher) Execute(ctx PluginContext) PluginResult {
	g := ctx.Graph

	loopIt, err := g.QueryNodes(store.NodeFilter{"type": nodes.Loop})
	if err != nil {
		return PluginResult{Success: false, Errors: []string{fmt.Sprintf("query loops: %v", err)}}
	}
	defer loopIt.Close()

	var errs []string
	annotated := 0
	ignored := 0
	processed := 0

	for loopIt.Next() {
		loop := loopIt.Node()
		processed++
		if ctx.OnProgress != nil && processed%10 == 0 {
			ctx.OnProgress(ProgressEvent{Phase: string(Enrichment), CurrentPlugin: c.Name(), Message: "annotating loop cardinality", ProcessedFiles: processed})
		}

		if ignore, _ := loop.Metadata["ignoreCardinality"].(bool); ignore {
			ignored++
			continue
		}

		edges, err := g.GetOutgoingEdges(loop.ID, []nodes.EdgeType{nodes.IteratesOver})
		if err != nil {
			errs = append(errs, fmt.Sprintf("get outgoing edges for %s: %v", loop.ID, err))
			continue
		}
		if len(edges) == 0 {
			continue
		}
		edge := edges[0]

		call, err := c.traceToCall(g, edge.Dst)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if call == nil {
			continue
		}

		scale, interval, ok := c.classify(call)
		if !ok {
			continue
		}

		metadata := map[string]any{}
		for k, v := range edge.Metadata {
			metadata[k] = v
		}
		cardinality := map[string]any{"scale": scale}
		if interval != nil {
			cardinality["interval"] = interval
		}
		metadata["cardinality"] = cardinality

		if err := g.DeleteEdge(edge.Src, edge.Dst, edge.Type); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		newEdge, err := nodes.NewEdge(edge.Type, edge.Src, edge.Dst, metadata)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if err := g.AddEdge(newEdge); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		annotated++
	}
	if err := loopIt.Err(); err != nil {
		errs = append(errs, err.Error())
	}

	if ctx.OnProgress != nil {
		ctx.OnProgress(ProgressEvent{Phase: string(Enrichment), CurrentPlugin: c.Name(), Message: "done", ProcessedFiles: processed})
	}

	return PluginResult{
		Success: len(errs) == 0,
		Metadata: map[string]any{
			"edgesCreated": annotated,
			"ignoredLoops": ignored,
		},
		Errors: errs,
	}
}

// traceToCall follows a loop's iterated-collection node back to the CALL
// that produced it: the node may be the CALL itself (a direct
// `for (x of a.b())` loop, per pkg/builder's IteratesOverMethod
// correlation), or a VARIABLE/CONSTANT/EXPRESSION one ASSIGNED_FROM or
// DERIVES_FROM hop away from one. Gives up after a short, fixed hop limit
// rather than walking indefinitely through a chain of reassignments.
func (c *CardinalityEnricher) traceToCall(g store.GraphStore, nodeID string) (*nodes.NodeRecord, error) {
	const maxHops = 4
	current := nodeID
	for i := 0; i < maxHops; i++ {
		n, err := nodeByID(g, current)
		if err != nil {
			return nil, err
		}
		if n == nil {
			return nil, nil
		}
		if n.Type == nodes.Call {
			return n, nil
		}

		next, err := g.GetOutgoingEdges(current, []nodes.EdgeType{nodes.AssignedFrom, nodes.DerivesFrom})
		if err != nil {
			return nil, err
		}
		if len(next) == 0 {
			return nil, nil
		}
		current = next[0].Dst
	}
	return nil, nil
}

// nodeByID is the one place this enricher needs a single-node lookup; the
// GraphStore contract only exposes QueryNodes(filter), so this filters by
// nothing and scans — acceptable since it only runs on the short
// ITERATES_OVER-reachable chain, never over the whole graph.
func nodeByID(g store.GraphStore, id string) (*nodes.NodeRecord, error) {
	it, err := g.QueryNodes(store.NodeFilter{})
	if err != nil {
		return nil, err
	}
	defer it.Close()
	for it.Next() {
		if it.Node().ID == id {
			return it.Node(), nil
		}
	}
	return nil, it.Err()
}

// classify matches call against the configured entry points first, then
// the built-in naming heuristics, returning ok == false when neither
// matches (the loop then keeps no cardinality metadata at all).
func (c *CardinalityEnricher) classify(call *nodes.NodeRecord) (scale string, interval []int, ok bool) {
	name := call.Name
	if method, _ := call.Metadata["method"].(string); method != "" {
		name = method
	}

	for _, ep := range c.Config.EntryPoints {
		matched, err := doublestar.Match(ep.Pattern, name)
		if err != nil {
			continue
		}
		if matched || ep.Pattern == name {
			return ep.Returns, ep.Interval, true
		}
	}

	for _, rule := range builtinCardinalityRules {
		if rule.match(name) {
			return rule.scale, nil, true
		}
	}

	return "", nil, false
}
