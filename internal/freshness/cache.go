// Package freshness remembers the last validated context so that it is not
// re-validated on every invocation within a cooldown window.
//
// The record is a single file whose content is the raw context name and whose
// modification time is the validation time. Any failure to read it counts as
// "not fresh": losing the record costs one extra prompt, never a skipped one.
package freshness

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultWindow is how long a validated context stays fresh.
const DefaultWindow = 900 * time.Second

// Record is the persisted state of the cache.
type Record struct {
	Context     string    `json:"context"`
	ValidatedAt time.Time `json:"validated_at"`
}

// Cache is a file-backed freshness record.
// It does no locking; concurrent invocations may race on the file.
type Cache struct {
	path   string
	window time.Duration
	now    func() time.Time
}

// New creates a Cache backed by path with the given freshness window.
func New(path string, window time.Duration) *Cache {
	return &Cache{path: path, window: window, now: time.Now}
}

// Path returns the file backing the cache.
func (c *Cache) Path() string { return c.path }

// Window returns the freshness window.
func (c *Cache) Window() time.Duration { return c.window }

// IsFresh reports whether context was recorded within the window.
// The stored content must equal context exactly.
func (c *Cache) IsFresh(context string) bool {
	rec, err := c.Status()
	if err != nil {
		return false
	}
	if rec.Context != context {
		return false
	}

	elapsed := c.now().Sub(rec.ValidatedAt)
	if elapsed < 0 {
		// mtime in the future: the clock is not trustworthy.
		return false
	}
	return elapsed <= c.window
}

// Record overwrites the cache with context, stamped with the current time.
func (c *Cache) Record(context string) error {
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("freshness: create directory: %w", err)
		}
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(context), 0600); err != nil {
		return fmt.Errorf("freshness: write record: %w", err)
	}

	now := c.now()
	if err := os.Chtimes(tmp, now, now); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("freshness: stamp record: %w", err)
	}

	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("freshness: replace record: %w", err)
	}
	return nil
}

// Status returns the stored record.
func (c *Cache) Status() (Record, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return Record{}, err
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return Record{}, err
	}
	return Record{Context: string(data), ValidatedAt: info.ModTime()}, nil
}

// Forget deletes the record. A missing record is not an error.
func (c *Cache) Forget() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("freshness: remove record: %w", err)
	}
	return nil
}
