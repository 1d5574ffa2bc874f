package prompt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/extract"
)

type countingTranscriber struct {
	calls int
	text  string
}

func (c *countingTranscriber) ExtractPDFText(_ context.Context, _ []byte) (string, error) {
	c.calls++
	return c.text, nil
}

func newTestCache(t *testing.T, stub *countingTranscriber) (*ReferenceCache, string) {
	t.Helper()
	dir := t.TempDir()
	cache := &ReferenceCache{
		Dir:       dir,
		CachePath: filepath.Join(dir, "_cache.json"),
		Extractor: &extract.Extractor{Fallback: stub, MinHangulRatio: 0.10, MinTextLength: 100},
	}
	return cache, dir
}

func TestReferenceTextCachesByMtime(t *testing.T) {
	stub := &countingTranscriber{text: "약관 전문"}
	cache, dir := newTestCache(t, stub)

	// Carries the PDF magic but is unparsable: native extraction fails and
	// the stub transcriber runs.
	path := filepath.Join(dir, "terms.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.7 garbage"), 0o600); err != nil {
		t.Fatalf("write reference: %v", err)
	}

	ctx := context.Background()
	first, err := cache.ReferenceText(ctx)
	if err != nil {
		t.Fatalf("first ReferenceText: %v", err)
	}
	if !strings.Contains(first, "### 참고자료: terms.pdf") || !strings.Contains(first, "약관 전문") {
		t.Errorf("reference text malformed:\n%s", first)
	}
	if stub.calls != 1 {
		t.Fatalf("transcriber called %d times, want 1", stub.calls)
	}

	// Unchanged file: served from cache, no new extraction.
	second, err := cache.ReferenceText(ctx)
	if err != nil {
		t.Fatalf("second ReferenceText: %v", err)
	}
	if second != first {
		t.Error("cached pass should return identical text")
	}
	if stub.calls != 1 {
		t.Errorf("transcriber called %d times after cache hit, want 1", stub.calls)
	}

	// A bumped modification time invalidates the entry.
	bumped := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, bumped, bumped); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if _, err := cache.ReferenceText(ctx); err != nil {
		t.Fatalf("third ReferenceText: %v", err)
	}
	if stub.calls != 2 {
		t.Errorf("transcriber called %d times after mtime change, want 2", stub.calls)
	}
}

func TestReferenceTextPersistsAcrossInstances(t *testing.T) {
	stub := &countingTranscriber{text: "판례 전문"}
	cache, dir := newTestCache(t, stub)

	if err := os.WriteFile(filepath.Join(dir, "caselaw.pdf"), []byte("%PDF-1.7 garbage"), 0o600); err != nil {
		t.Fatalf("write reference: %v", err)
	}
	if _, err := cache.ReferenceText(context.Background()); err != nil {
		t.Fatalf("ReferenceText: %v", err)
	}

	// A fresh instance sharing the cache file must not re-extract.
	reread := &ReferenceCache{
		Dir:       dir,
		CachePath: cache.CachePath,
		Extractor: &extract.Extractor{Fallback: stub, MinHangulRatio: 0.10, MinTextLength: 100},
	}
	if _, err := reread.ReferenceText(context.Background()); err != nil {
		t.Fatalf("ReferenceText on new instance: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("transcriber called %d times, want 1", stub.calls)
	}
}

func TestReferenceTextMissingDir(t *testing.T) {
	cache := &ReferenceCache{
		Dir:       filepath.Join(t.TempDir(), "absent"),
		CachePath: filepath.Join(t.TempDir(), "_cache.json"),
		Extractor: &extract.Extractor{MinHangulRatio: 0.10, MinTextLength: 100},
	}
	got, err := cache.ReferenceText(context.Background())
	if err != nil {
		t.Fatalf("ReferenceText: %v", err)
	}
	if got != "" {
		t.Errorf("missing dir should yield empty text, got %q", got)
	}
}
