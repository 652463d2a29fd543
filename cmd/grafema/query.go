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
	"strings"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/grafema-dev/grafema/internal/bootstrap"
	"github.com/grafema-dev/grafema/internal/contract"
	"github.com/grafema-dev/grafema/internal/errors"
	"github.com/grafema-dev/grafema/internal/output"
	"github.com/grafema-dev/grafema/pkg/datalog"
	"github.com/grafema-dev/grafema/pkg/nodes"
	"github.com/grafema-dev/grafema/pkg/store"
)

// runQuery executes the 'query' CLI command, evaluating one of the
// Datalog predicates the graph engine supports directly against the
// project's store: node(T), edge(T), attr(ID, K), attr_edge(SRC, DST, T, K).
// Rule composition beyond a single predicate is out of scope (§4.6) —
// this is a thin lookup, not a general Datalog evaluator.
//
// Examples:
//
//	grafema query "node(FUNCTION)"
//	grafema query "edge(CALLS)"
//	grafema query "attr(auth.js->global->FUNCTION->handleAuth, config.port)"
//	grafema query "attr_edge(a, b, CALLS, resolved)"
func runQuery(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *jsonOutput {
		globals.JSON = true
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a predicate argument is required")
		os.Exit(1)
	}
	script := fs.Arg(0)

	if v := contract.ValidateQueryScript(script); !v.OK {
		errors.FatalError(errors.NewInputError("query rejected", v.Message, "shorten the query"), globals.JSON)
	}

	pred, err := parsePredicate(script)
	if err != nil {
		errors.FatalError(errors.NewInputError("cannot parse query", err.Error(), "use node(TYPE), edge(TYPE), attr(ID,KEY), or attr_edge(SRC,DST,TYPE,KEY)"), globals.JSON)
	}

	cfg, err := LoadConfig(globals.ConfigPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError("cannot load configuration", err.Error(), "run 'grafema init'", err), globals.JSON)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	graphStore, err := bootstrap.OpenProject(bootstrap.ProjectConfig{ProjectID: cfg.ProjectID}, logger)
	if err != nil {
		errors.FatalError(errors.NewStoreError("cannot open project store", err.Error(), "run 'grafema analyze' first", err), globals.JSON)
	}
	defer func() { _ = graphStore.Close() }()

	rows, headers, err := pred.eval(graphStore)
	if err != nil {
		errors.FatalError(errors.NewStoreError("query failed", err.Error(), "", err), globals.JSON)
	}

	if globals.JSON {
		_ = output.JSON(map[string]any{"headers": headers, "rows": rows, "count": len(rows)})
		return
	}
	printRows(headers, rows)
}

// predicate is one of the four Datalog predicates this engine evaluates
// directly against the store, per §4.6/§6.4.
type predicate struct {
	kind string // "node", "edge", "attr", "attr_edge"
	args []string
}

func parsePredicate(script string) (*predicate, error) {
	script = strings.TrimSpace(script)
	open := strings.Index(script, "(")
	if open < 0 || !strings.HasSuffix(script, ")") {
		return nil, fmt.Errorf("expected PREDICATE(args), got %q", script)
	}
	kind := strings.TrimSpace(script[:open])
	argsPart := script[open+1 : len(script)-1]

	var args []string
	for _, a := range strings.Split(argsPart, ",") {
		args = append(args, strings.TrimSpace(a))
	}

	switch kind {
	case "node":
		if len(args) != 1 {
			return nil, fmt.Errorf("node(T) takes exactly one argument, got %d", len(args))
		}
	case "edge":
		if len(args) != 1 {
			return nil, fmt.Errorf("edge(T) takes exactly one argument, got %d", len(args))
		}
	case "attr":
		if len(args) != 2 {
			return nil, fmt.Errorf("attr(ID, KEY) takes exactly two arguments, got %d", len(args))
		}
	case "attr_edge":
		if len(args) != 4 {
			return nil, fmt.Errorf("attr_edge(SRC, DST, TYPE, KEY) takes exactly four arguments, got %d", len(args))
		}
	default:
		return nil, fmt.Errorf("unknown predicate %q", kind)
	}
	return &predicate{kind: kind, args: args}, nil
}

func (p *predicate) eval(s store.GraphStore) (rows [][]string, headers []string, err error) {
	switch p.kind {
	case "node":
		return evalNode(s, nodes.Type(p.args[0]))
	case "edge":
		return evalEdge(s, nodes.EdgeType(p.args[0]))
	case "attr":
		return evalAttr(s, p.args[0], p.args[1])
	case "attr_edge":
		return evalAttrEdge(s, p.args[0], p.args[1], nodes.EdgeType(p.args[2]), p.args[3])
	default:
		return nil, nil, fmt.Errorf("unknown predicate %q", p.kind)
	}
}

func evalNode(s store.GraphStore, typ nodes.Type) ([][]string, []string, error) {
	it, err := s.QueryNodes(store.NodeFilter{"type": typ})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = it.Close() }()

	headers := []string{"id", "name", "file", "line"}
	var rows [][]string
	for it.Next() {
		n := it.Node()
		rows = append(rows, []string{n.ID, n.Name, n.File, fmt.Sprintf("%d", n.Line)})
	}
	return rows, headers, it.Err()
}

// evalEdge lists every edge of typ. No store method enumerates edges by
// type across the whole graph (§6.1 only offers per-node outgoing/
// incoming lookups), so this walks every node and asks for its outgoing
// edges of typ — the "thin query over the store" §4.6 calls for, not a
// general Datalog engine.
func evalEdge(s store.GraphStore, typ nodes.EdgeType) ([][]string, []string, error) {
	it, err := s.QueryNodes(store.NodeFilter{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = it.Close() }()

	headers := []string{"src", "dst"}
	var rows [][]string
	for it.Next() {
		n := it.Node()
		edges, err := s.GetOutgoingEdges(n.ID, []nodes.EdgeType{typ})
		if err != nil {
			return nil, nil, err
		}
		for _, e := range edges {
			rows = append(rows, []string{e.Src, e.Dst})
		}
	}
	return rows, headers, it.Err()
}

func evalAttr(s store.GraphStore, nodeID, key string) ([][]string, []string, error) {
	it, err := s.QueryNodes(store.NodeFilter{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = it.Close() }()

	headers := []string{"value"}
	for it.Next() {
		n := it.Node()
		if n.ID != nodeID {
			continue
		}
		if v, ok := datalog.Attr(n.Metadata, key); ok {
			return [][]string{{v}}, headers, it.Err()
		}
		return nil, headers, it.Err()
	}
	return nil, headers, it.Err()
}

func evalAttrEdge(s store.GraphStore, src, dst string, typ nodes.EdgeType, key string) ([][]string, []string, error) {
	edges, err := s.GetOutgoingEdges(src, []nodes.EdgeType{typ})
	if err != nil {
		return nil, nil, err
	}
	headers := []string{"value"}
	for _, e := range edges {
		if e.Dst != dst {
			continue
		}
		if v, ok := datalog.AttrEdge(e.Metadata, key); ok {
			return [][]string{{v}}, headers, nil
		}
	}
	return nil, headers, nil
}

func printRows(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("No results")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, strings.ToUpper(h))
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()

	fmt.Printf("\n(%d rows)\n", len(rows))
}
