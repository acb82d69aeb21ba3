// Copyright 2024 Arthur Irene
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

// Package database is responsible for handling the database
// setup, configuration and abstraction.
package database

import (
	"fmt"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
)

// QueryCache memoizes read query results for a fixed TTL, keyed by a
// murmur3 hash of the statement and its parameters.
type QueryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uint64]cacheEntry
}

type cacheEntry struct {
	rows    []map[string]interface{}
	savedAt time.Time
}

// NewQueryCache returns a QueryCache with the given TTL. A zero or negative
// TTL means entries never expire.
func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		ttl:     ttl,
		entries: make(map[uint64]cacheEntry),
	}
}

// cacheKey hashes a statement and its rendered parameters.
func cacheKey(query string, args ...interface{}) uint64 {
	h := murmur3.New64()
	_, _ = h.Write([]byte(query))
	for _, a := range args {
		_, _ = fmt.Fprintf(h, "|%v", a)
	}
	return h.Sum64()
}

// get returns the cached rows for the key, if present and fresh.
func (qc *QueryCache) get(key uint64) ([]map[string]interface{}, bool) {
	qc.mu.RLock()
	entry, ok := qc.entries[key]
	qc.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if qc.ttl > 0 && time.Since(entry.savedAt) > qc.ttl {
		qc.mu.Lock()
		delete(qc.entries, key)
		qc.mu.Unlock()
		return nil, false
	}
	return entry.rows, true
}

// put stores rows under the key.
func (qc *QueryCache) put(key uint64, rows []map[string]interface{}) {
	qc.mu.Lock()
	qc.entries[key] = cacheEntry{rows: rows, savedAt: time.Now()}
	qc.mu.Unlock()
}

// Invalidate drops every cached entry. Callers use it after writes that
// affect cached reads.
func (qc *QueryCache) Invalidate() {
	qc.mu.Lock()
	qc.entries = make(map[uint64]cacheEntry)
	qc.mu.Unlock()
}

// Len returns the number of cached entries.
func (qc *QueryCache) Len() int {
	qc.mu.RLock()
	defer qc.mu.RUnlock()
	return len(qc.entries)
}

// CachedQuery runs a read query through the cache: a fresh cached result is
// returned without touching the database, otherwise the query executes and
// its rows are stored.
func CachedQuery(h Handler, qc *QueryCache, query string, args ...interface{}) ([]map[string]interface{}, error) {
	key := cacheKey(query, args...)
	if rows, ok := qc.get(key); ok {
		return rows, nil
	}

	rows, err := h.ExecuteQuery(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // Don't lint for error not checked, this is a defer statement

	out, err := rowsToMaps(rows)
	if err != nil {
		return nil, err
	}

	qc.put(key, out)
	return out, nil
}
