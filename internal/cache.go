package internal

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/xxh3"

	tt "github.com/gnolang/keyfold/internal/types"
)

const cacheFileName = "keyfold_cache.gob"

type fileMetadata struct {
	Hash        uint64
	Fingerprint uint64
}

type CacheEntry struct {
	Metadata     fileMetadata
	Output       []byte
	Rewritten    int
	Skipped      int
	Failed       int
	Issues       []tt.Issue
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Cache remembers migration results per file. An entry is only served
// when both the file content and the engine configuration are unchanged.
type Cache struct {
	CacheDir string
	entries  map[string]CacheEntry
	mutex    sync.Mutex
	maxAge   time.Duration
}

func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir: cacheDir,
		entries:  make(map[string]CacheEntry),
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	return cache, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.CacheDir, cacheFileName)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache file: %w", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	return nil
}

// Save writes the cache to disk.
func (c *Cache) Save() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.save()
}

// save replaces the cache file through a rename, so readers see either the
// old or the new contents.
func (c *Cache) save() error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	tmp, err := os.CreateTemp(c.CacheDir, cacheFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path()); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// Set stores res for filename. The entry is kept in memory; call Save to
// persist it.
func (c *Cache) Set(filename string, content []byte, fingerprint string, res *tt.Result) error {
	if res == nil {
		return fmt.Errorf("nil result for %s", filename)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.entries[filename] = CacheEntry{
		Metadata:     metadataFor(content, fingerprint),
		Output:       res.Output,
		Rewritten:    res.Rewritten,
		Skipped:      res.Skipped,
		Failed:       res.Failed,
		Issues:       res.Issues,
		CreatedAt:    now,
		LastAccessed: now,
	}
	return nil
}

// Get returns the cached result for filename when content and fingerprint
// still match what was stored.
func (c *Cache) Get(filename string, content []byte, fingerprint string) (*tt.Result, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return nil, false
	}

	if c.isEntryInvalid(entry, metadataFor(content, fingerprint)) {
		delete(c.entries, filename)
		return nil, false
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry

	return &tt.Result{
		Filename:  filename,
		Original:  content,
		Output:    entry.Output,
		Rewritten: entry.Rewritten,
		Skipped:   entry.Skipped,
		Failed:    entry.Failed,
		Issues:    entry.Issues,
	}, true
}

func (c *Cache) isEntryInvalid(entry CacheEntry, current fileMetadata) bool {
	if c.maxAge > 0 && time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}
	return entry.Metadata != current
}

// SetMaxAge expires entries older than duration. Zero disables expiry.
func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	_ = c.save() // manual operation, nothing to report to
}

func metadataFor(content []byte, fingerprint string) fileMetadata {
	return fileMetadata{
		Hash:        xxh3.Hash(content),
		Fingerprint: xxh3.HashString(fingerprint),
	}
}
