package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	// Generate many IDs and verify they're unique
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id, err := Generate("ntf")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	id, err := Generate("ntf")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "ntf-"))
	assert.Len(t, strings.TrimPrefix(id, "ntf-"), 21, "NanoID part should be 21 characters")
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate("sse")
		assert.True(t, strings.HasPrefix(id, "sse-"))
	})
}

func TestTimeOrdered_SortsByCreation(t *testing.T) {
	prev := ""
	for range 200 {
		id, err := TimeOrdered()
		require.NoError(t, err)

		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())

		assert.Greater(t, id, prev)
		prev = id
	}
}
