// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists tool results as one JSON file per entry with a
// fixed expiry window per entry kind. Search results expire after 24 hours,
// scraped pages after 7 days. An expired entry is treated as absent on read
// and silently replaced on the next write.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pdiddy/research-council/pkg/types"
)

// Entry is the on-disk record for one cached payload. The format is
// internal and not a compatibility surface.
type Entry struct {
	Key       string          `json:"key"`
	Kind      types.CacheKind `json:"kind"`
	Payload   string          `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Cache is a time-bounded key-value store rooted at one directory.
type Cache struct {
	dir        string
	cfg        types.CacheConfig
	maxEntries int

	// now is the clock; tests substitute it to probe TTL boundaries.
	now func() time.Time
}

// New creates a Cache rooted at cfg.Dir, applying defaults for unset fields.
func New(cfg types.CacheConfig) (*Cache, error) {
	if cfg.Dir == "" {
		cfg.Dir = "data/research_cache"
	}
	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = 24 * time.Hour
	}
	if cfg.ScrapeTTL <= 0 {
		cfg.ScrapeTTL = 168 * time.Hour
	}
	maxEntries := cfg.MaxEntries
	if maxEntries == 0 {
		maxEntries = 2048
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	return &Cache{
		dir:        cfg.Dir,
		cfg:        cfg,
		maxEntries: maxEntries,
		now:        time.Now,
	}, nil
}

// Get returns the payload for key under the given kind, or false when the
// entry is missing, expired, or unreadable. Expiry is checked on every read
// so a stale file on disk is still reported absent.
func (c *Cache) Get(key string, kind types.CacheKind) (string, bool) {
	data, err := os.ReadFile(c.entryPath(key, kind))
	if err != nil {
		return "", false
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return "", false
	}

	if c.now().Sub(e.CreatedAt) >= c.cfg.TTL(kind) {
		return "", false
	}
	return e.Payload, true
}

// Put writes the payload for key under the given kind, replacing any
// existing entry. It then sweeps the cache if the entry bound is exceeded.
func (c *Cache) Put(key string, kind types.CacheKind, payload string) error {
	e := Entry{
		Key:       key,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: c.now(),
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	path := c.entryPath(key, kind)

	// Write to a temp file and rename so a crash never leaves a torn entry.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("committing cache entry: %w", err)
	}

	if c.maxEntries > 0 {
		c.sweep()
	}
	return nil
}

// Stats summarizes cache contents for operational inspection.
type Stats struct {
	Entries int
	Expired int
	Bytes   int64
}

// Stats walks the cache directory and counts live and expired entries.
func (c *Cache) Stats() (Stats, error) {
	entries, err := c.readEntries()
	if err != nil {
		return Stats{}, err
	}

	var s Stats
	for _, e := range entries {
		s.Entries++
		s.Bytes += e.size
		if c.now().Sub(e.createdAt) >= c.cfg.TTL(e.kind) {
			s.Expired++
		}
	}
	return s, nil
}

// Clear removes every entry. This is the out-of-band operational clear; no
// programmatic invalidation exists beyond expiry.
func (c *Cache) Clear() (int, error) {
	entries, err := c.readEntries()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if err := os.Remove(e.path); err == nil {
			removed++
		}
	}
	return removed, nil
}

// entryPath derives the file path for a key. The name is the first 16 hex
// characters of SHA-256(kind + key), so distinct kinds never collide.
func (c *Cache) entryPath(key string, kind types.CacheKind) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(key))
	return filepath.Join(c.dir, fmt.Sprintf("%x", h.Sum(nil))[:16]+".json")
}

type diskEntry struct {
	path      string
	kind      types.CacheKind
	createdAt time.Time
	size      int64
}

// readEntries loads metadata for every entry file in the cache directory.
// Unreadable files are skipped.
func (c *Cache) readEntries() ([]diskEntry, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("reading cache directory %s: %w", c.dir, err)
	}

	var entries []diskEntry
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		path := filepath.Join(c.dir, de.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, diskEntry{
			path:      path,
			kind:      e.Kind,
			createdAt: e.CreatedAt,
			size:      info.Size(),
		})
	}
	return entries, nil
}

// sweep removes expired entries, then the oldest live entries, until the
// count is within maxEntries.
func (c *Cache) sweep() {
	entries, err := c.readEntries()
	if err != nil || len(entries) <= c.maxEntries {
		return
	}

	over := len(entries) - c.maxEntries

	// Expired first.
	var live []diskEntry
	for _, e := range entries {
		if over > 0 && c.now().Sub(e.createdAt) >= c.cfg.TTL(e.kind) {
			if os.Remove(e.path) == nil {
				over--
			}
			continue
		}
		live = append(live, e)
	}

	if over <= 0 {
		return
	}

	// Then oldest.
	sort.Slice(live, func(i, j int) bool {
		return live[i].createdAt.Before(live[j].createdAt)
	})
	for i := 0; i < over && i < len(live); i++ {
		os.Remove(live[i].path)
	}
}
