package internal

import (
	"go/token"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/gnolang/keyfold/internal/types"
)

func TestCache(t *testing.T) {
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache")
	cache, err := NewCache(cacheDir)
	require.NoError(t, err)

	source := []byte("useQuery(['todos'], fetchTodos)\n")
	result := &tt.Result{
		Filename:  "app.ts",
		Original:  source,
		Output:    []byte("useQuery({ queryKey: ['todos'] }, fetchTodos)\n"),
		Rewritten: 1,
		Issues: []tt.Issue{
			{
				Rule:     "unknown-usage",
				Category: "migration",
				Filename: "app.ts",
				Message:  "test issue",
				Severity: tt.SeverityWarning,
				Start:    token.Position{Line: 1, Column: 1, Filename: "app.ts"},
				End:      token.Position{Line: 1, Column: 10, Filename: "app.ts"},
			},
		},
	}

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, cache.Set("app.ts", source, "fp", result))

		got, found := cache.Get("app.ts", source, "fp")
		require.True(t, found)
		assert.Equal(t, result.Output, got.Output)
		assert.Equal(t, result.Issues, got.Issues)
		assert.Equal(t, 1, got.Rewritten)
		assert.Equal(t, source, got.Original)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, found := cache.Get("nonexistent.ts", source, "fp")
		assert.False(t, found)
	})

	t.Run("NilResult", func(t *testing.T) {
		assert.Error(t, cache.Set("app.ts", source, "fp", nil))
	})

	t.Run("ContentModified", func(t *testing.T) {
		require.NoError(t, cache.Set("modified.ts", source, "fp", result))

		_, found := cache.Get("modified.ts", []byte("useQuery(key)\n"), "fp")
		assert.False(t, found)

		// the stale entry is dropped
		_, found = cache.Get("modified.ts", source, "fp")
		assert.False(t, found)
	})

	t.Run("FingerprintChanged", func(t *testing.T) {
		require.NoError(t, cache.Set("config.ts", source, "fp", result))

		_, found := cache.Get("config.ts", source, "other")
		assert.False(t, found)
	})

	t.Run("MaxAge", func(t *testing.T) {
		require.NoError(t, cache.Set("old.ts", source, "fp", result))

		cache.SetMaxAge(time.Nanosecond)
		defer cache.SetMaxAge(0)
		time.Sleep(time.Millisecond)

		_, found := cache.Get("old.ts", source, "fp")
		assert.False(t, found)
	})

	t.Run("Persistence", func(t *testing.T) {
		require.NoError(t, cache.Set("persisted.ts", source, "fp", result))
		require.NoError(t, cache.Save())

		reloaded, err := NewCache(cacheDir)
		require.NoError(t, err)

		got, found := reloaded.Get("persisted.ts", source, "fp")
		require.True(t, found)
		assert.Equal(t, result.Issues, got.Issues)
	})

	t.Run("InvalidateAll", func(t *testing.T) {
		require.NoError(t, cache.Set("gone.ts", source, "fp", result))

		cache.InvalidateAll()

		_, found := cache.Get("gone.ts", source, "fp")
		assert.False(t, found)

		reloaded, err := NewCache(cacheDir)
		require.NoError(t, err)
		_, found = reloaded.Get("persisted.ts", source, "fp")
		assert.False(t, found)
	})
}

func TestCacheCorruptFile(t *testing.T) {
	t.Parallel()
	cacheDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, cacheFileName), []byte("not gob"), 0o644))

	_, err := NewCache(cacheDir)
	assert.Error(t, err)
}

func TestCacheSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()
	cacheDir := t.TempDir()
	cache, err := NewCache(cacheDir)
	require.NoError(t, err)

	require.NoError(t, cache.Set("a.ts", []byte("x"), "fp", &tt.Result{Filename: "a.ts"}))
	require.NoError(t, cache.Save())
	require.NoError(t, cache.Save())

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, cacheFileName, entries[0].Name())
}
