package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/extract"
)

const referenceHeader = "# 보고서 작성 참고자료\n\n" +
	"아래는 손해사정서 작성 시 참고해야 할 법률, 약관, 판례 자료입니다.\n\n"

// cacheEntry pins extracted text to a source file's modification time.
type cacheEntry struct {
	Mtime string `json:"mtime"`
	Text  string `json:"text"`
}

// ReferenceCache extracts the reference PDFs (statutes, policy terms, case
// law) once per file revision. Extraction can mean a model call per
// document, so entries persist across restarts keyed by mtime.
type ReferenceCache struct {
	Dir       string
	CachePath string
	Extractor *extract.Extractor
	Logger    *slog.Logger

	mu sync.Mutex
}

func (c *ReferenceCache) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// ReferenceText returns the assembled reference section, or "" when the
// reference directory does not exist or holds no PDFs.
func (c *ReferenceCache) ReferenceText(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read reference dir: %w", err)
	}

	cache := c.loadCache()
	var parts []string
	updated := false

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(c.Dir, name)
		fi, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("failed to stat reference %s: %w", name, err)
		}
		mtime := strconv.FormatInt(fi.ModTime().UnixNano(), 10)

		entry, ok := cache[name]
		if !ok || entry.Mtime != mtime {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", fmt.Errorf("failed to read reference %s: %w", name, err)
			}
			c.logger().Info("extracting reference document", "file", name)
			entry = cacheEntry{Mtime: mtime, Text: c.Extractor.ExtractText(ctx, name, data)}
			cache[name] = entry
			updated = true
		}
		parts = append(parts, fmt.Sprintf("### 참고자료: %s\n\n%s", name, entry.Text))
	}

	if updated {
		if err := c.saveCache(cache); err != nil {
			c.logger().Warn("failed to persist reference cache", "error", err)
		}
	}

	if len(parts) == 0 {
		return "", nil
	}
	return referenceHeader + strings.Join(parts, "\n\n---\n\n"), nil
}

func (c *ReferenceCache) loadCache() map[string]cacheEntry {
	cache := make(map[string]cacheEntry)
	data, err := os.ReadFile(c.CachePath)
	if err != nil {
		return cache
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		c.logger().Warn("reference cache unreadable, rebuilding", "error", err)
		return make(map[string]cacheEntry)
	}
	return cache
}

func (c *ReferenceCache) saveCache(cache map[string]cacheEntry) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.CachePath, data, 0o600)
}
