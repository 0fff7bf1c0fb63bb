// Copyright 2025 Poiesic Systems
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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/storage"
)

// DedupIndex is the set of document ids known to be in the store during one run.
//
// The index is filled once from a store query and then only grows through
// RecordPublished. It is never refreshed from the store mid-run: a document
// written by another process after the snapshot is invisible to this run and
// will be published again. Upserts are idempotent by id, so the cost is a
// redundant embedding call, not a duplicate document.
type DedupIndex struct {
	mu  sync.RWMutex
	ids map[core.DocumentID]struct{}

	locks keyedMutex
}

// NewDedupIndex returns an index seeded with ids.
func NewDedupIndex(ids ...core.DocumentID) *DedupIndex {
	idx := &DedupIndex{ids: make(map[core.DocumentID]struct{}, len(ids))}
	for _, id := range ids {
		idx.ids[id] = struct{}{}
	}
	return idx
}

// Snapshot builds an index from a single store query. A result of exactly
// limit documents is probably truncated; it is accepted with a warning.
func Snapshot(ctx context.Context, store storage.VectorStore, filter storage.Filter, limit int, logger *slog.Logger) (*DedupIndex, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	matches, err := store.Query(ctx, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("dedup snapshot: %w", err)
	}

	idx := NewDedupIndex()
	for _, m := range matches {
		idx.ids[m.ID] = struct{}{}
	}
	if limit > 0 && len(matches) >= limit {
		logger.Warn("dedup snapshot hit query limit, stored documents beyond it will be republished",
			"limit", limit)
	}
	logger.Info("dedup snapshot loaded", "documents", len(idx.ids))
	return idx, nil
}

// Contains reports whether id was stored at snapshot time or published since.
func (d *DedupIndex) Contains(id core.DocumentID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.ids[id]
	return ok
}

// RecordPublished marks id as stored. Call it only after a successful upsert.
func (d *DedupIndex) RecordPublished(id core.DocumentID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids[id] = struct{}{}
}

// Len is the number of ids known to be stored.
func (d *DedupIndex) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.ids)
}

// Lock serializes work on a single id. Holding it from Contains through
// RecordPublished makes two in-flight references with the same id behave as
// if they ran one after the other. The returned func releases the lock.
func (d *DedupIndex) Lock(id core.DocumentID) (unlock func()) {
	return d.locks.lock(id)
}

// keyedMutex hands out one mutex per key and forgets it once nobody holds or
// waits on it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[core.DocumentID]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(id core.DocumentID) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[core.DocumentID]*refMutex)
	}
	m, ok := k.locks[id]
	if !ok {
		m = &refMutex{}
		k.locks[id] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.Unlock()
			k.mu.Lock()
			m.refs--
			if m.refs == 0 {
				delete(k.locks, id)
			}
			k.mu.Unlock()
		})
	}
}
