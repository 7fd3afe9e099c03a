package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
)

func TestAddAndCapacity(t *testing.T) {
	log := NewLog(NewMemoryStorage())

	for i := 1; i <= Capacity+1; i++ {
		log.Add(fmt.Sprintf("query-%d", i), types.UserFilter{Language: "SAN"})
	}

	items := log.Items()
	require.Len(t, items, Capacity)
	// newest first, oldest entry evicted
	assert.Equal(t, "query-21", items[0].QueryText)
	assert.Equal(t, "query-2", items[Capacity-1].QueryText)
}

func TestAddIgnoresBlankQuery(t *testing.T) {
	log := NewLog(NewMemoryStorage())

	log.Add("", types.UserFilter{})
	log.Add("   ", types.UserFilter{})

	assert.Empty(t, log.Items())
}

func TestAddDeduplicatesToFront(t *testing.T) {
	log := NewLog(NewMemoryStorage())

	log.Add("rama", types.UserFilter{})
	log.Add("agni", types.UserFilter{})
	log.Add("rama", types.UserFilter{Language: "SAN"})

	items := log.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "rama", items[0].QueryText)
	assert.Equal(t, "SAN", items[0].Filter.Language)
	assert.Equal(t, "agni", items[1].QueryText)
}

func TestPersistAndReload(t *testing.T) {
	storage := NewMemoryStorage()

	log := NewLog(storage)
	log.Add("rama", types.UserFilter{Language: "SAN"})
	log.Add("agni", types.UserFilter{Language: "SAN"})

	reloaded := NewLog(storage)
	items := reloaded.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "agni", items[0].QueryText)
}

func TestReloadDiscardsCorruptData(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set("dictionary_search_history", []byte("{not json")))

	log := NewLog(storage)
	assert.Empty(t, log.Items())
}

func TestRemove(t *testing.T) {
	log := NewLog(NewMemoryStorage())
	log.Add("rama", types.UserFilter{})
	log.Add("agni", types.UserFilter{})

	items := log.Items()
	require.Len(t, items, 2)

	log.Remove(items[1].Timestamp)
	remaining := log.Items()
	require.Len(t, remaining, 1)
	assert.Equal(t, "agni", remaining[0].QueryText)
}

func TestClear(t *testing.T) {
	storage := NewMemoryStorage()
	log := NewLog(storage)
	log.Add("rama", types.UserFilter{})

	log.Clear()
	assert.Empty(t, log.Items())

	_, ok := storage.Get("dictionary_search_history")
	assert.False(t, ok)
}

func TestExport(t *testing.T) {
	log := NewLog(NewMemoryStorage())
	log.Add("rama", types.UserFilter{
		Origins:  []string{"MW", "AP90"},
		Language: "SAN",
	})

	item := log.Items()[0]
	in := log.Export(item)

	assert.Equal(t, "rama", in.Name)
	assert.Equal(t, "rama", in.QueryText)
	assert.Equal(t, "MW,AP90", in.Filters["origins"])
	assert.Equal(t, "SAN", in.Filters["language"])
	assert.Equal(t, "relevance", in.SortBy)
	assert.Equal(t, "desc", in.SortOrder)
}

func TestExportPreservesExplicitSort(t *testing.T) {
	log := NewLog(NewMemoryStorage())
	log.Add("agni", types.UserFilter{
		Language:  "SAN",
		SortBy:    types.SortPhonetic,
		SortOrder: types.SortAsc,
	})

	in := log.Export(log.Items()[0])
	assert.Equal(t, "phonetic", in.SortBy)
	assert.Equal(t, "asc", in.SortOrder)
}
