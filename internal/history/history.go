// Package history keeps a small local log of recently executed searches.
package history

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
	savedbiz "github.com/hareeshbabu82ns/devhub-search/internal/savedsearch/biz"
)

const (
	// Capacity is the maximum number of entries the log retains
	Capacity = 20

	storageKey = "dictionary_search_history"

	maxExportNameLength = 100
)

// Item is one remembered search
type Item struct {
	QueryText string           `json:"queryText"`
	Filter    types.UserFilter `json:"filter"`
	Timestamp time.Time        `json:"timestamp"`
}

// Storage is a small key/value persistence contract. A corrupt or
// missing value must surface as an empty read, not an error.
type Storage interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Remove(key string) error
}

// MemoryStorage is an in-process Storage, used by tests and as the
// fallback when no durable store is configured.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

func (s *MemoryStorage) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStorage) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Log is a capacity-bounded, deduplicated history of searches,
// newest first. All methods are safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	storage Storage
	items   []Item
}

// NewLog loads existing history from storage. Unreadable stored data
// is discarded and the log starts empty.
func NewLog(storage Storage) *Log {
	l := &Log{storage: storage}
	if raw, ok := storage.Get(storageKey); ok {
		var items []Item
		if err := json.Unmarshal(raw, &items); err == nil {
			if len(items) > Capacity {
				items = items[:Capacity]
			}
			l.items = items
		}
	}
	return l
}

// Add records a search at the front of the log. Blank query text is
// ignored. A re-run of an existing query moves it to the front with a
// fresh timestamp instead of creating a duplicate.
func (l *Log) Add(queryText string, filter types.UserFilter) {
	trimmed := strings.TrimSpace(queryText)
	if trimmed == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i, it := range l.items {
		if it.QueryText == trimmed {
			l.items = append(l.items[:i], l.items[i+1:]...)
			break
		}
	}

	l.items = append([]Item{{
		QueryText: trimmed,
		Filter:    filter,
		Timestamp: time.Now().UTC(),
	}}, l.items...)

	if len(l.items) > Capacity {
		l.items = l.items[:Capacity]
	}

	l.persist()
}

// Items returns a snapshot of the log, newest first
func (l *Log) Items() []Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Remove drops the entry with the given timestamp, if present
func (l *Log) Remove(timestamp time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if it.Timestamp.Equal(timestamp) {
			l.items = append(l.items[:i], l.items[i+1:]...)
			l.persist()
			return
		}
	}
}

// Clear empties the log and its persisted form
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	_ = l.storage.Remove(storageKey)
}

// Export converts an entry into saved-search input so a remembered
// query can be promoted to a named saved search.
func (l *Log) Export(item Item) savedbiz.CreateSavedSearchInput {
	name := item.QueryText
	if utf8.RuneCountInString(name) > maxExportNameLength {
		name = string([]rune(name)[:maxExportNameLength])
	}

	filters := map[string]interface{}{}
	if len(item.Filter.Origins) > 0 {
		filters["origins"] = strings.Join(item.Filter.Origins, ",")
	}
	if item.Filter.Language != "" {
		filters["language"] = item.Filter.Language
	}
	filters["operation"] = item.Filter.Operation.String()

	// a filter without an explicit sort exports the relevance/descending
	// default as a pair; an explicit sort is preserved as a pair
	sortBy := types.SortRelevance.String()
	sortOrder := types.SortDesc.String()
	if item.Filter.SortBy != types.SortWordIndex {
		sortBy = item.Filter.SortBy.String()
		sortOrder = item.Filter.SortOrder.String()
	}

	return savedbiz.CreateSavedSearchInput{
		Name:      name,
		QueryText: item.QueryText,
		Filters:   filters,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}
}

func (l *Log) persist() {
	raw, err := json.Marshal(l.items)
	if err != nil {
		return
	}
	// persistence is best effort, the in-memory log stays valid
	_ = l.storage.Set(storageKey, raw)
}
