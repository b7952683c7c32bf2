package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pausememo/pausememo/internal/store"
)

func TestBatchWriter_AutoFlush(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	bw := s.NewBatchWriter(3)
	for i := range 4 {
		require.NoError(t, bw.Set(fmt.Sprintf("pm:k:%d", i), "v"))
	}
	// Three writes flushed, one still pending.
	assert.Equal(t, 1, bw.Count())

	_, found, err := s.Get(ctx, "pm:k:2")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = s.Get(ctx, "pm:k:3")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, bw.Flush())
	assert.Zero(t, bw.Count())
	bw.Cancel()

	keys, err := s.AllKeys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 4)
}

func TestBatchWriter_CancelDropsPending(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "pm:keep", "v"))

	bw := s.NewBatchWriter(0)
	require.NoError(t, bw.Delete("pm:keep"))
	require.NoError(t, bw.Set("pm:new", "v"))
	bw.Cancel()

	_, found, err := s.Get(ctx, "pm:keep")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = s.Get(ctx, "pm:new")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBatchWriter_EmptyKey(t *testing.T) {
	s := setupTestStore(t)
	bw := s.NewBatchWriter(10)
	defer bw.Cancel()

	assert.ErrorIs(t, bw.Set("", "v"), store.ErrEmptyKey)
	assert.ErrorIs(t, bw.Delete(""), store.ErrEmptyKey)
	assert.Zero(t, bw.Count())
}
