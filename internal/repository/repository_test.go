package repository_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/store"
	"github.com/pausememo/pausememo/internal/store/sqlite"
)

var keys = store.NewKeyspace(store.DefaultPrefix)

// backends returns one fresh instance of every Backend implementation so
// repository behaviour is checked against each.
func backends(t *testing.T) map[string]store.Backend {
	t.Helper()

	dir := t.TempDir()

	bs, err := store.New(filepath.Join(dir, "badger"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })

	ss, err := sqlite.Open(filepath.Join(dir, "kv.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	return map[string]store.Backend{
		"badger": bs,
		"sqlite": ss,
	}
}

func setupBackend(t *testing.T) store.Backend {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// keysUnder lists every backend key starting with prefix.
func keysUnder(t *testing.T, backend store.Backend, prefix string) []string {
	t.Helper()

	all, err := backend.AllKeys(context.Background())
	require.NoError(t, err)

	var out []string
	for _, k := range all {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newInterruption(t *testing.T, recordedAt time.Time, returnAfter *int) *domain.InterruptionEvent {
	t.Helper()

	ev, err := domain.NewInterruptionEvent(domain.InterruptionParams{
		RecordedAt: recordedAt,
		Context: domain.InterruptionContext{
			TriggerTagIDs:      []domain.TriggerTagID{domain.TagSNS},
			FirstStepText:      "reopen the draft",
			ReturnAfterMinutes: returnAfter,
		},
	})
	require.NoError(t, err)
	return ev
}

func newResume(t *testing.T, iid domain.InterruptionID, status domain.ResumeStatus, at time.Time) *domain.ResumeEvent {
	t.Helper()

	ev, err := domain.NewResumeEvent(domain.ResumeParams{
		InterruptionID: iid,
		Status:         status,
		ResumedAt:      at,
	})
	require.NoError(t, err)
	return ev
}

func ptr[T any](v T) *T { return &v }

func interruptionIDs(events []*domain.InterruptionEvent) []domain.InterruptionID {
	out := make([]domain.InterruptionID, len(events))
	for i, ev := range events {
		out[i] = ev.ID
	}
	return out
}
