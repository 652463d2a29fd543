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

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/grafema-dev/grafema/pkg/nodes"
)

var (
	nodesBucket = []byte("nodes")
	edgesBucket = []byte("edges")
)

// EmbeddedConfig configures the embedded store.
type EmbeddedConfig struct {
	// DataDir is the directory the bbolt database file lives in. Defaults
	// to ~/.grafema/data/<project_id> when empty, mirroring the teacher's
	// own default data directory layout.
	DataDir string

	// ProjectID namespaces DataDir when it isn't set explicitly.
	ProjectID string
}

// EmbeddedStore implements GraphStore over a local go.etcd.io/bbolt
// database. The mutex discipline — RLock for reads, Lock for mutations,
// a closed guard checked under the same lock — is grounded directly on
// the teacher's EmbeddedBackend (pkg/storage/embedded.go), generalized
// from CozoDB's Query/Execute split to bbolt's View/Update split.
type EmbeddedStore struct {
	db     *bbolt.DB
	mu     sync.RWMutex
	closed bool
}

// NewEmbeddedStore opens (creating if necessary) a bbolt database under
// config.DataDir and ensures its node/edge buckets exist.
func NewEmbeddedStore(config EmbeddedConfig) (*EmbeddedStore, error) {
	if config.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		config.DataDir = filepath.Join(homeDir, ".grafema", "data")
		if config.ProjectID != "" {
			config.DataDir = filepath.Join(config.DataDir, config.ProjectID)
		}
	}

	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(config.DataDir, "graph.db"), 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(nodesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(edgesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure buckets: %w", err)
	}

	return &EmbeddedStore{db: db}, nil
}

func (s *EmbeddedStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *EmbeddedStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(nodesBucket); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		if err := tx.DeleteBucket(edgesBucket); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		if _, err := tx.CreateBucket(nodesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(edgesBucket)
		return err
	})
}

func (s *EmbeddedStore) AddNode(n *nodes.NodeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(nodesBucket)
		key := []byte(n.ID)
		if b.Get(key) != nil {
			return nil
		}
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshal node %s: %w", n.ID, err)
		}
		return b.Put(key, data)
	})
}

// edgeKey mirrors pkg/builder.Graph's dedup key so a node/edge pair
// re-inserted from a re-run of analysis collapses the same way in the
// store as it does in the in-memory builder graph.
func edgeKey(edgeType nodes.EdgeType, src, dst string) []byte {
	return []byte(string(edgeType) + "|" + src + "|" + dst)
}

func (s *EmbeddedStore) AddEdge(e *nodes.EdgeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(edgesBucket)
		key := edgeKey(e.Type, e.Src, e.Dst)
		if b.Get(key) != nil {
			return nil
		}
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal edge %s->%s: %w", e.Src, e.Dst, err)
		}
		return b.Put(key, data)
	})
}

func (s *EmbeddedStore) DeleteEdge(src, dst string, edgeType nodes.EdgeType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(edgesBucket)
		return b.Delete(edgeKey(edgeType, src, dst))
	})
}

func matchesFilter(n *nodes.NodeRecord, filter NodeFilter) bool {
	for key, want := range filter {
		switch key {
		case "type":
			if string(n.Type) != fmt.Sprint(want) {
				return false
			}
		case "file":
			if n.File != fmt.Sprint(want) {
				return false
			}
		case "name":
			if n.Name != fmt.Sprint(want) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// sliceNodeIterator is the simplest NodeIterator implementation: bbolt's
// View transaction closes when QueryNodes returns, so results are
// collected eagerly into a slice rather than held open across calls —
// the store contract's "stream" requirement is satisfied from the
// caller's point of view (Next/Node/Close), not by holding a live bbolt
// cursor past the read transaction's lifetime.
type sliceNodeIterator struct {
	nodes []*nodes.NodeRecord
	pos   int
}

func (it *sliceNodeIterator) Next() bool {
	if it.pos >= len(it.nodes) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceNodeIterator) Node() *nodes.NodeRecord {
	if it.pos == 0 || it.pos > len(it.nodes) {
		return nil
	}
	return it.nodes[it.pos-1]
}

func (it *sliceNodeIterator) Err() error   { return nil }
func (it *sliceNodeIterator) Close() error { return nil }

func (s *EmbeddedStore) QueryNodes(filter NodeFilter) (NodeIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	var matched []*nodes.NodeRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(nodesBucket)
		return b.ForEach(func(_, v []byte) error {
			var n nodes.NodeRecord
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			if matchesFilter(&n, filter) {
				matched = append(matched, &n)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &sliceNodeIterator{nodes: matched}, nil
}

func (s *EmbeddedStore) edgesMatching(id string, types []nodes.EdgeType, want func(e *nodes.EdgeRecord) string) ([]*nodes.EdgeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	typeSet := make(map[nodes.EdgeType]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	var matched []*nodes.EdgeRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(edgesBucket)
		return b.ForEach(func(_, v []byte) error {
			var e nodes.EdgeRecord
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			if want(&e) != id {
				return nil
			}
			if len(typeSet) > 0 && !typeSet[e.Type] {
				return nil
			}
			matched = append(matched, &e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

func (s *EmbeddedStore) GetOutgoingEdges(id string, types []nodes.EdgeType) ([]*nodes.EdgeRecord, error) {
	return s.edgesMatching(id, types, func(e *nodes.EdgeRecord) string { return e.Src })
}

func (s *EmbeddedStore) GetIncomingEdges(id string, types []nodes.EdgeType) ([]*nodes.EdgeRecord, error) {
	return s.edgesMatching(id, types, func(e *nodes.EdgeRecord) string { return e.Dst })
}

func (s *EmbeddedStore) Flush() error { return nil }
