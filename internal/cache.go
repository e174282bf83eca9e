package internal

import (
	"crypto/md5"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	tt "github.com/gnolang/later/internal/types"
)

const (
	cacheFileName   = "lint_cache.gob"
	defaultCacheAge = 24 * time.Hour
)

type fileMetadata struct {
	Hash         string
	LastModified time.Time
}

type CacheEntry struct {
	Metadata     fileMetadata
	Selection    string
	Issues       []tt.Issue
	CreatedAt    time.Time
	LastAccessed time.Time
}

// cacheFile is the gob payload.
type cacheFile struct {
	Entries      map[string]CacheEntry
	Dependencies map[string]string
}

// Cache stores lint results per file, keyed by path. An entry is reused
// while the file content, the selected checks and every dependency (the
// standards manifest) are unchanged and the entry is younger than the max age.
type Cache struct {
	CacheDir         string
	entries          map[string]CacheEntry
	selection        string
	mutex            sync.RWMutex
	maxAge           time.Duration
	dependencyHashes map[string]string
}

func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir:         cacheDir,
		entries:          make(map[string]CacheEntry),
		maxAge:           defaultCacheAge,
		dependencyHashes: make(map[string]string),
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
	file, err := os.Open(c.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil // cache file doesn't exist yet. This is fine.
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	var payload cacheFile
	if err := gob.NewDecoder(file).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	if payload.Entries != nil {
		c.entries = payload.Entries
	}
	if payload.Dependencies != nil {
		c.dependencyHashes = payload.Dependencies
	}
	return nil
}

// save must be called with the mutex held.
func (c *Cache) save() error {
	file, err := os.Create(c.path())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	payload := cacheFile{Entries: c.entries, Dependencies: c.dependencyHashes}
	if err := gob.NewEncoder(file).Encode(payload); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}

	return nil
}

// AddDependency registers a file whose change invalidates every entry.
func (c *Cache) AddDependency(filename string) error {
	hash, err := getFileHash(filename)
	if err != nil {
		return fmt.Errorf("failed to get hash for %s: %w", filename, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if prev, ok := c.dependencyHashes[filename]; ok && prev == hash {
		return nil
	}
	c.dependencyHashes[filename] = hash
	c.entries = make(map[string]CacheEntry)
	return c.save()
}

// SetSelection records the checks later entries are produced with. Entries
// stored under another selection are misses.
func (c *Cache) SetSelection(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.selection = key
}

func (c *Cache) Set(filename string, issues []tt.Issue) error {
	metadata, err := getFileMetadata(filename)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.entries[filename] = CacheEntry{
		Metadata:     metadata,
		Selection:    c.selection,
		Issues:       issues,
		CreatedAt:    now,
		LastAccessed: now,
	}

	return c.save()
}

func (c *Cache) Get(filename string) ([]tt.Issue, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return nil, false
	}

	if c.isEntryInvalid(filename, entry) {
		delete(c.entries, filename)
		return nil, false
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry

	return entry.Issues, true
}

func (c *Cache) isEntryInvalid(filename string, entry CacheEntry) bool {
	// too old
	if time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}
	if entry.Selection != c.selection {
		return true
	}

	currentMetadata, err := getFileMetadata(filename)
	if err != nil {
		return true
	}
	return currentMetadata.Hash != entry.Metadata.Hash ||
		!currentMetadata.LastModified.Equal(entry.Metadata.LastModified)
}

func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	_ = c.save() // ignore error as this is a manual operation
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

func getFileMetadata(filename string) (fileMetadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fileMetadata{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to get file info: %w", err)
	}

	return fileMetadata{
		Hash:         fmt.Sprintf("%x", hash.Sum(nil)),
		LastModified: info.ModTime(),
	}, nil
}

func getFileHash(filename string) (string, error) {
	meta, err := getFileMetadata(filename)
	if err != nil {
		return "", err
	}
	return meta.Hash, nil
}
