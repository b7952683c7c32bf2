package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pausememo/pausememo/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_GetSetRemove(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, found, err := s.Get(ctx, "pm:missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "pm:a", "hello"))

	value, found, err := s.Get(ctx, "pm:a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", value)

	require.NoError(t, s.Remove(ctx, "pm:a"))
	_, found, err = s.Get(ctx, "pm:a")
	require.NoError(t, err)
	assert.False(t, found)

	// Removing an absent key is fine.
	require.NoError(t, s.Remove(ctx, "pm:a"))
}

func TestStore_EmptyKey(t *testing.T) {
	s := setupTestStore(t)

	err := s.Set(context.Background(), "", "x")
	assert.ErrorIs(t, err, store.ErrEmptyKey)
}

func TestStore_MultiGetPreservesOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "pm:b", "2"))
	require.NoError(t, s.Set(ctx, "pm:a", "1"))

	kvs, err := s.MultiGet(ctx, []string{"pm:a", "pm:missing", "pm:b"})
	require.NoError(t, err)
	require.Len(t, kvs, 3)

	assert.Equal(t, store.KeyValue{Key: "pm:a", Value: "1", Found: true}, kvs[0])
	assert.Equal(t, store.KeyValue{Key: "pm:missing"}, kvs[1])
	assert.Equal(t, store.KeyValue{Key: "pm:b", Value: "2", Found: true}, kvs[2])
}

func TestStore_MultiRemoveAndAllKeys(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"pm:x:1", "pm:x:2", "pm:y:1", "other:1"} {
		require.NoError(t, s.Set(ctx, k, "v"))
	}

	keys, err := s.AllKeys(ctx)
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"other:1", "pm:x:1", "pm:x:2", "pm:y:1"}, keys)

	prefixed, err := s.KeysWithPrefix(ctx, "pm:x:")
	require.NoError(t, err)
	assert.Len(t, prefixed, 2)

	require.NoError(t, s.MultiRemove(ctx, []string{"pm:x:1", "pm:x:2", "pm:never"}))

	keys, err = s.AllKeys(ctx)
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"other:1", "pm:y:1"}, keys)
}

func TestStore_UpdateSkipWrite(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "pm:k", "orig"))

	err := s.Update(ctx, "pm:k", func(current string, found bool) (string, error) {
		assert.True(t, found)
		assert.Equal(t, "orig", current)
		return "", store.ErrSkipWrite
	})
	require.NoError(t, err)

	value, _, err := s.Get(ctx, "pm:k")
	require.NoError(t, err)
	assert.Equal(t, "orig", value)
}

func TestStore_UpdatePropagatesCallbackError(t *testing.T) {
	s := setupTestStore(t)
	boom := errors.New("boom")

	err := s.Update(context.Background(), "pm:k", func(string, bool) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)

	_, found, err := s.Get(context.Background(), "pm:k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_UpdateConcurrentAppends(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	ix := store.NewIndexManager[struct{}, string](s, "pm:test:index", "pm:test:event", nil)

	const writers = 20
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			assert.NoError(t, ix.AddToIndex(ctx, id, ""))
		}(i)
	}
	wg.Wait()

	ids, err := ix.LoadIndex(ctx, "")
	require.NoError(t, err)
	assert.Len(t, ids, writers)
}

func TestStore_ClosedRejectsCalls(t *testing.T) {
	s, err := store.Open("", nil, store.Options{InMemory: true})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, _, err = s.Get(context.Background(), "pm:a")
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestStore_CanceledContext(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Set(ctx, "pm:a", "1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeyspace(t *testing.T) {
	ks := store.NewKeyspace("")
	assert.Equal(t, "pm", ks.Prefix())
	assert.Equal(t, "pm:interruption:index", ks.InterruptionIndex())
	assert.Equal(t, "pm:interruption:event", ks.InterruptionEventPrefix())
	assert.Equal(t, "pm:resume:index", ks.ResumeIndex())
	assert.Equal(t, "pm:resume:event", ks.ResumeEventPrefix())
	assert.Equal(t, "pm:notificationBindings", ks.NotificationBindings())
	assert.Equal(t, "pm:triggerTags:custom", ks.CustomTriggerTags())
	assert.Equal(t, "pm:settings", ks.Settings())

	custom := store.NewKeyspace("app:")
	assert.Equal(t, "app:settings", custom.Settings())
	assert.True(t, custom.Owns("app:settings"))
	assert.False(t, custom.Owns("pm:settings"))
	assert.Equal(t, "settings", custom.Relative("app:settings"))
}
