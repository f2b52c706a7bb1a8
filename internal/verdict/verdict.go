// Package verdict persists clean review verdicts keyed by revision range.
//
// One file is kept per repository, named by a short hash of the repository
// root path and overwritten on each store. Only clean verdicts are ever
// written: a findings verdict is never cached, so a previously-flagged
// revision range is always re-examined until it becomes clean or the range
// changes. Corrupt or unreadable files count as a miss, never as an error.
package verdict

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Clean is the only verdict value the cache stores.
const Clean = "clean"

// Entry is a cached review verdict for one repository.
type Entry struct {
	Head      string    `json:"head"`
	Base      string    `json:"base"`
	Mode      string    `json:"mode"`
	Verdict   string    `json:"verdict"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cache is a per-repository verdict store on the filesystem.
type Cache struct {
	dir string
	ttl time.Duration
}

// New creates a Cache rooted at dir. If dir is empty, the OS-appropriate
// user cache directory is used.
func New(dir string, ttlSeconds int) (*Cache, error) {
	if dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: time.Duration(ttlSeconds) * time.Second}, nil
}

// Lookup returns the stored entry for the repository when it is usable for
// the given request: the verdict is clean, head, base, and mode all match
// exactly, and the entry has not outlived the TTL.
func (c *Cache) Lookup(repoRoot, head, base, mode string) (Entry, bool) {
	data, err := os.ReadFile(c.entryPath(repoRoot))
	if err != nil {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false
	}
	if entry.Verdict != Clean {
		return Entry{}, false
	}
	if entry.Head != head || entry.Base != base || entry.Mode != mode {
		return Entry{}, false
	}
	if c.ttl > 0 && time.Since(entry.CreatedAt) > c.ttl {
		os.Remove(c.entryPath(repoRoot))
		return Entry{}, false
	}
	return entry, true
}

// Store writes the clean verdict for the repository, replacing any previous
// entry. Non-clean verdicts are rejected.
func (c *Cache) Store(repoRoot string, entry Entry) error {
	if entry.Verdict != Clean {
		return fmt.Errorf("refusing to cache %q verdict", entry.Verdict)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.entryPath(repoRoot), data, 0o644)
}

// Clear removes all cached verdicts.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
	return nil
}

// Stats returns cache statistics.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// GetStats returns information about the cache.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()

		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if c.ttl > 0 && time.Since(entry.CreatedAt) > c.ttl {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) entryPath(repoRoot string) string {
	h := sha256.Sum256([]byte(repoRoot))
	return filepath.Join(c.dir, fmt.Sprintf("%x", h[:8])+".json")
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "droidguard"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "droidguard"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "droidguard", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "droidguard", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "droidguard"), nil
	}
}
