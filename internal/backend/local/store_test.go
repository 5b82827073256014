package local

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "db", "vanta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestClipboardDedupesAgainstNewest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	added, err := s.AddClipboard(ctx, "one", 10)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddClipboard(ctx, "one", 10)
	require.NoError(t, err)
	assert.False(t, added)

	_, err = s.AddClipboard(ctx, "two", 10)
	require.NoError(t, err)
	_, err = s.AddClipboard(ctx, "one", 10)
	require.NoError(t, err)

	items, err := s.ClipboardHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "one", items[0].Content)
	assert.Equal(t, "two", items[1].Content)
	assert.False(t, items[0].Timestamp.IsZero())
}

func TestClipboardKeepsNewest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, c := range []string{"a", "b", "c", "d"} {
		_, err := s.AddClipboard(ctx, c, 2)
		require.NoError(t, err)
	}

	items, err := s.ClipboardHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "d", items[0].Content)
	assert.Equal(t, "c", items[1].Content)
}

func TestUsageCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.IncrementUsage(ctx, "firefox"))
	require.NoError(t, s.IncrementUsage(ctx, "firefox"))
	require.NoError(t, s.IncrementUsage(ctx, "foot"))

	usage, err := s.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"firefox": 2, "foot": 1}, usage)
}
