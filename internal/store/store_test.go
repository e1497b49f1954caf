package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_GetPutDelete(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, Namespace, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, Namespace, "a", []byte("one")))
	require.NoError(t, s.Put(ctx, Namespace, "a", []byte("two")))
	require.NoError(t, s.Put(ctx, Namespace, "b", nil))
	require.NoError(t, s.Put(ctx, "other", "c", []byte("x")))

	v, ok, err := s.Get(ctx, Namespace, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", string(v))

	keys, err := s.Keys(ctx, Namespace)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Delete(ctx, Namespace, "a"))
	require.NoError(t, s.Delete(ctx, Namespace, "a"))
	_, ok, err = s.Get(ctx, Namespace, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Bucket(Namespace).Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Bucket(Namespace).Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(v))
}

func TestStore_InMemory(t *testing.T) {
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Put(context.Background(), Namespace, "k", []byte("v")))
}

func intp(v int) *int { return &v }

func testIndex(t *testing.T) *cards.Index {
	t.Helper()
	idx, err := cards.BuildIndex([]cards.Card{
		{CardID: "L-1", Name: "Luffy", Category: cards.Leader},
		{CardID: "C-1", Name: "Nami", Category: cards.Character, Cost: intp(1)},
		{CardID: "DON", Name: "DON!!", Category: cards.Resource},
	})
	require.NoError(t, err)
	return idx
}

func TestDeckStore_SaveLoad(t *testing.T) {
	s := openTest(t)
	ds := NewDeckStore(s)
	idx := testIndex(t)
	ctx := context.Background()

	d, err := ds.Load(ctx, idx)
	require.NoError(t, err)
	assert.True(t, d.Empty())

	for _, id := range []string{"L-1", "C-1", "C-1", "DON"} {
		c, _ := idx.ByID(id)
		require.Equal(t, deck.Added, d.Add(c))
	}
	require.NoError(t, ds.Save(ctx, d))

	raw, ok, err := s.Get(ctx, Namespace, DeckKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"leader":"L-1","main":[{"id":"C-1","count":2}],"don":1}`, string(raw))

	got, err := ds.Load(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, d.Record(), got.Record())

	require.NoError(t, ds.Clear(ctx))
	got, err = ds.Load(ctx, idx)
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestDeckStore_CorruptRecordIsDiscarded(t *testing.T) {
	s := openTest(t)
	ds := NewDeckStore(s)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Namespace, DeckKey, []byte("{leader:")))

	d, err := ds.Load(ctx, testIndex(t))
	require.NoError(t, err)
	assert.True(t, d.Empty())

	_, ok, err := s.Get(ctx, Namespace, DeckKey)
	require.NoError(t, err)
	assert.False(t, ok, "corrupt record should be removed")
}

func TestDeckStore_NullLeader(t *testing.T) {
	s := openTest(t)
	ds := NewDeckStore(s)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Namespace, DeckKey, []byte(`{"leader":null,"main":[{"id":"C-1","count":3},{"id":"GONE","count":1}],"don":0}`)))

	d, err := ds.Load(ctx, testIndex(t))
	require.NoError(t, err)
	assert.Empty(t, d.Leader())
	assert.Equal(t, 3, d.Count("C-1"))
	assert.Equal(t, 3, d.MainCount())
}
