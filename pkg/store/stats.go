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

	"go.etcd.io/bbolt"

	"github.com/grafema-dev/grafema/pkg/nodes"
)

// NodeCount and EdgeCount walk the respective bucket's keys rather than
// keeping a running counter, the same tradeoff the teacher's StatusResult
// (cmd/cie/status.go) makes by re-querying CozoDB's relations on every
// status call instead of maintaining a cached tally that could drift.

func (s *EmbeddedStore) NodeCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("store is closed")
	}

	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(nodesBucket).Stats().KeyN
		return nil
	})
	return count, err
}

func (s *EmbeddedStore) EdgeCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("store is closed")
	}

	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(edgesBucket).Stats().KeyN
		return nil
	})
	return count, err
}

func (s *EmbeddedStore) CountNodesByType() (map[nodes.Type]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	counts := make(map[nodes.Type]int)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(nodesBucket).ForEach(func(_, v []byte) error {
			var n nodes.NodeRecord
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			counts[n.Type]++
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *EmbeddedStore) CountEdgesByType() (map[nodes.EdgeType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	counts := make(map[nodes.EdgeType]int)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(edgesBucket).ForEach(func(_, v []byte) error {
			var e nodes.EdgeRecord
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			counts[e.Type]++
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
