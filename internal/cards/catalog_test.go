package cards

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex(t *testing.T) {
	idx, err := BuildIndex(sampleCatalog())
	require.NoError(t, err)
	assert.Equal(t, 9, idx.Len())

	c, ok := idx.ByID("OP01-016")
	require.True(t, ok)
	assert.Equal(t, "Nami", c.Name)

	_, ok = idx.ByID("nope")
	assert.False(t, ok)
	_, err = idx.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, ids(sampleCatalog()), ids(idx.All()))
}

func TestBuildIndex_RejectsDuplicates(t *testing.T) {
	cat := append(sampleCatalog(), Card{CardID: "OP01-006", Name: "Otama (alt)", Category: Character})
	_, err := BuildIndex(cat)
	assert.ErrorIs(t, err, ErrDuplicateCard)

	_, err = BuildIndex([]Card{{Name: "nameless"}})
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

const jsonDoc = `{"cards": [
  {"card_id": "OP01-001", "name": "Roronoa Zoro", "category": "Leader", "colors": ["Red"], "power": 5000},
  {"card_id": "OP01-013", "name": "Sanji", "category": "CHARACTER", "colors": ["Red"], "cost": 2, "counter": 1000},
  {"card_id": "DON-001", "name": "DON!! Card", "category": "DON!!"}
]}`

const yamlDoc = `
- card_id: OP01-001
  name: Roronoa Zoro
  category: leader
  colors: [Red]
- card_id: OP01-039
  name: Killer
  category: Character
  colors: [Green]
  cost: 3
  text: 【ブロッカー】
`

const csvDoc = "カードID,カード名,タイプ,色,コスト,パワー,カウンター,属性,テキスト,トリガー,ブロックアイコン,画像URL\n" +
	"OP01-016,ナミ,CHARACTER,赤／緑,1,2000,1000,特殊,【ブロッカー】,-,1,https://example.test/OP01-016.png\n" +
	"OP01-029,ラディカルビーム!!,EVENT,赤,1,-,-,-,【カウンター】,【トリガー】,-,\n"

func TestParseDocument(t *testing.T) {
	got, err := ParseDocument([]byte(jsonDoc), FormatJSON)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Leader, got[0].Category)
	assert.Equal(t, Resource, got[2].Category)
	assert.Equal(t, 2, got[1].CostValue())
	assert.Equal(t, None, got[0].CounterValue())

	got, err = ParseDocument([]byte(`[{"card_id": "X", "name": "x", "category": "EVENT"}]`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, Event, got[0].Category)

	got, err = ParseDocument([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Leader, got[0].Category)
	assert.True(t, got[1].IsBlocker())

	got, err = ParseDocument([]byte(csvDoc), FormatCSV)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"赤", "緑"}, got[0].Colors)
	assert.Equal(t, 1, got[0].BlockIconValue())
	assert.False(t, got[0].HasTrigger())
	assert.Equal(t, None, got[1].PowerValue())
	assert.Empty(t, got[1].Attributes)
	assert.True(t, got[1].HasTrigger())

	_, err = ParseDocument([]byte(`[{"card_id": "X", "category": "Wizard"}]`), FormatJSON)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("data/cards.yml"))
	assert.Equal(t, FormatCSV, FormatFromPath("https://example.test/cardlist.CSV?v=2"))
	assert.Equal(t, FormatJSON, FormatFromPath("https://example.test/cards"))
}

type memCache struct {
	data map[string][]byte
	puts int
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *memCache) Put(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	m.puts++
	return nil
}

func TestFetch_NetworkThenCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(jsonDoc))
	}))
	defer srv.Close()

	cache := &memCache{data: map[string][]byte{}}
	ctx := context.Background()

	idx, err := Fetch(ctx, FetchOptions{Source: srv.URL + "/cards.json", Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, cache.puts)

	idx, err = Fetch(ctx, FetchOptions{Source: srv.URL + "/cards.json", Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 1, hits, "second fetch should be served from cache")

	_, err = Fetch(ctx, FetchOptions{Source: srv.URL + "/cards.json", Cache: cache, Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestFetch_CorruptCacheFallsBackToSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	cache := &memCache{data: map[string][]byte{CacheKey: []byte("{not json")}}
	idx, err := Fetch(context.Background(), FetchOptions{Source: path, Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 1, cache.puts)
}

func TestFetch_NoCacheNoNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), FetchOptions{Source: srv.URL, Cache: &memCache{data: map[string][]byte{}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestFetch_RefreshFailureUsesCache(t *testing.T) {
	var down atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(jsonDoc))
	}))
	defer srv.Close()

	cache := &memCache{data: map[string][]byte{}}
	ctx := context.Background()
	_, err := Fetch(ctx, FetchOptions{Source: srv.URL + "/cards.json", Cache: cache})
	require.NoError(t, err)

	down.Store(true)
	idx, err := Fetch(ctx, FetchOptions{Source: srv.URL + "/cards.json", Cache: cache, Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 1, cache.puts)

	_, err = Fetch(ctx, FetchOptions{Source: srv.URL + "/cards.json", Cache: &memCache{data: map[string][]byte{}}, Refresh: true})
	assert.ErrorIs(t, err, ErrNetwork)
}
