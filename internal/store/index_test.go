package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pausememo/pausememo/internal/store"
)

type testID string

type testEntity struct {
	ID   testID `json:"id"`
	Name string `json:"name"`
}

func newTestIndex(t *testing.T) (*store.Store, *store.IndexManager[testEntity, testID]) {
	t.Helper()
	s := setupTestStore(t)
	return s, store.NewIndexManager[testEntity, testID](s, "pm:thing:index", "pm:thing:event", nil)
}

func TestIndexManager_Keys(t *testing.T) {
	_, ix := newTestIndex(t)

	assert.Equal(t, "pm:thing:index", ix.IndexKey(""))
	assert.Equal(t, "pm:thing:index:parent-1", ix.IndexKey("parent-1"))
	assert.Equal(t, "pm:thing:event:abc", ix.EntityKey("abc"))
}

func TestIndexManager_AddToIndexIsIdempotent(t *testing.T) {
	_, ix := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.AddToIndex(ctx, "a", ""))
	require.NoError(t, ix.AddToIndex(ctx, "b", ""))
	require.NoError(t, ix.AddToIndex(ctx, "a", ""))

	ids, err := ix.LoadIndex(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []testID{"a", "b"}, ids)
}

func TestIndexManager_ScopedIndexesAreIndependent(t *testing.T) {
	_, ix := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.AddToIndex(ctx, "r1", "p1"))
	require.NoError(t, ix.AddToIndex(ctx, "r2", "p2"))
	require.NoError(t, ix.AddToIndex(ctx, "r3", "p1"))

	p1, err := ix.LoadIndex(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []testID{"r1", "r3"}, p1)

	unscoped, err := ix.LoadIndex(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, unscoped)
}

func TestIndexManager_CorruptIndexIsEmpty(t *testing.T) {
	s, ix := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "pm:thing:index", "{not json"))

	ids, err := ix.LoadIndex(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	// The next append heals the index.
	require.NoError(t, ix.AddToIndex(ctx, "a", ""))
	ids, err = ix.LoadIndex(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []testID{"a"}, ids)
}

func TestIndexManager_SaveIndexOverwrites(t *testing.T) {
	_, ix := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.AddToIndex(ctx, "a", ""))
	require.NoError(t, ix.SaveIndex(ctx, []testID{}, ""))

	ids, err := ix.LoadIndex(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestIndexManager_EntityRoundTrip(t *testing.T) {
	_, ix := newTestIndex(t)
	ctx := context.Background()

	e := &testEntity{ID: "a", Name: "Alpha"}
	require.NoError(t, ix.SaveEntity(ctx, e.ID, e))

	got, err := ix.LoadEntity(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, e, got)

	require.NoError(t, ix.DeleteEntity(ctx, "a"))
	got, err = ix.LoadEntity(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIndexManager_CorruptEntityIsAbsent(t *testing.T) {
	s, ix := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, ix.EntityKey("bad"), "]["))
	got, err := ix.LoadEntity(ctx, "bad")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIndexManager_LoadEntitiesDropsMissingAndCorrupt(t *testing.T) {
	s, ix := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.SaveEntity(ctx, "a", &testEntity{ID: "a", Name: "A"}))
	require.NoError(t, ix.SaveEntity(ctx, "c", &testEntity{ID: "c", Name: "C"}))
	require.NoError(t, s.Set(ctx, ix.EntityKey("d"), "nope"))

	got, err := ix.LoadEntities(ctx, []testID{"c", "b", "a", "d"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, testID("c"), got[0].ID)
	assert.Equal(t, testID("a"), got[1].ID)
}
