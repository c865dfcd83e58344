package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "groom.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestQueue_SaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, indexed, err := s.Queue(ctx)
	require.NoError(t, err)
	assert.False(t, indexed)

	queue := []string{"a.go", "b.md", "c.yaml"}
	changed, err := s.SaveQueue(ctx, queue)
	require.NoError(t, err)
	assert.True(t, changed)

	loaded, indexed, err := s.Queue(ctx)
	require.NoError(t, err)
	assert.True(t, indexed)
	assert.Equal(t, queue, loaded)
}

func TestSaveQueue_ResetsCursorAndDetectsUnchangedTree(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	queue := []string{"a.go", "b.go"}
	_, err := s.SaveQueue(ctx, queue)
	require.NoError(t, err)
	require.NoError(t, s.SaveCursor(ctx, 2))

	// Re-indexing an unchanged tree yields the same fingerprint and restarts
	// progress from zero.
	changed, err := s.SaveQueue(ctx, queue)
	require.NoError(t, err)
	assert.False(t, changed)

	cursor, err := s.Cursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, cursor)

	changed, err = s.SaveQueue(ctx, []string{"a.go"})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestCursor_Persists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cursor, err := s.Cursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, cursor)

	require.NoError(t, s.SaveCursor(ctx, 7))
	cursor, err = s.Cursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, cursor)
}

func TestModelAndRepository_Persist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	model, err := s.Model(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", model)

	require.NoError(t, s.SaveModel(ctx, "gemini-2.0-flash"))
	model, err = s.Model(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", model)

	require.NoError(t, s.SaveRepository(ctx, "owner/name"))
	repository, err := s.Repository(ctx)
	require.NoError(t, err)
	assert.Equal(t, "owner/name", repository)
}

func TestInsights_RecentNewestFirstWithLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < RecentInsightLimit+5; i++ {
		require.NoError(t, s.RecordMutation(ctx, "file.go"))
		// created_at resolution is coarse enough that inserts within the same
		// instant tie; the secondary id ordering keeps results stable either way.
		time.Sleep(2 * time.Millisecond)
	}

	insights, err := s.Recent(ctx, RecentInsightLimit)
	require.NoError(t, err)
	require.Len(t, insights, RecentInsightLimit)

	for i := 1; i < len(insights); i++ {
		assert.False(t, insights[i].CreatedAt.After(insights[i-1].CreatedAt), "insights must be ordered newest first")
	}
}

func TestInsights_EmptyStore(t *testing.T) {
	s := newTestStore(t)

	insights, err := s.Recent(context.Background(), RecentInsightLimit)
	require.NoError(t, err)
	assert.Empty(t, insights)
}
