// Cross-run deduplication of harvested postings, backed by a JSON file.

package dedup

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go-jobharvest/internal/models"
)

const retention = 30 * 24 * time.Hour

type seenEntry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// SeenCache remembers posting URLs across runs so downstream consumers only
// see new records. Entries expire after 30 days.
type SeenCache struct {
	mu       sync.Mutex
	filePath string
	seen     map[string]int64
}

// NewSeenCache creates or loads the cache under cacheDir.
func NewSeenCache(cacheDir string) *SeenCache {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		slog.Warn("failed to create cache directory", "error", err)
	}
	cache := &SeenCache{
		filePath: filepath.Join(cacheDir, "seen_jobs.json"),
		seen:     make(map[string]int64),
	}
	cache.load()
	return cache
}

// FilterNew returns the jobs whose URL has not been seen before and marks
// them seen. Jobs without a URL always pass through.
func (c *SeenCache) FilterNew(jobs []models.Job) []models.Job {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixMilli()
	fresh := make([]models.Job, 0, len(jobs))
	changed := false
	for _, job := range jobs {
		if job.URL == "" {
			fresh = append(fresh, job)
			continue
		}
		if _, exists := c.seen[job.URL]; exists {
			continue
		}
		c.seen[job.URL] = now
		fresh = append(fresh, job)
		changed = true
	}

	if changed {
		c.save()
	}
	return fresh
}

func (c *SeenCache) load() {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read seen cache", "error", err)
		}
		return
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("failed to parse seen cache", "error", err)
		return
	}

	cutoff := time.Now().Add(-retention).UnixMilli()
	for _, e := range entries {
		if e.Timestamp > cutoff {
			c.seen[e.URL] = e.Timestamp
		}
	}
}

func (c *SeenCache) save() {
	entries := make([]seenEntry, 0, len(c.seen))
	for url, ts := range c.seen {
		entries = append(entries, seenEntry{URL: url, Timestamp: ts})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		slog.Warn("failed to marshal seen cache", "error", err)
		return
	}
	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		slog.Warn("failed to write seen cache", "error", err)
	}
}
