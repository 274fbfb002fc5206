package bundler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func writeHQL(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", path, err)
	}
	return path
}

func newTestBundler(t *testing.T, dir string) *Bundler {
	t.Helper()
	cfg := DefaultConfig(dir)
	cfg.CacheDir = filepath.Join(dir, ".cache")
	b, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestBuildSimpleEntryNoImports(t *testing.T) {
	dir := t.TempDir()
	entry := writeHQL(t, dir, "main.hql", `(defn add [a b] (+ a b))`)

	b := newTestBundler(t, dir)
	result, err := b.Build(entry)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(result.Files))
	}
	ts, err := os.ReadFile(result.EntryCachePath)
	if err != nil {
		t.Fatalf("reading cached output: %v", err)
	}
	if !strings.Contains(string(ts), "function add(a, b)") {
		t.Fatalf("expected compiled function in cached output, got:\n%s", ts)
	}
	if !strings.Contains(string(ts), "sourceMappingURL") {
		t.Fatalf("expected sourceMappingURL trailer, got:\n%s", ts)
	}
}

func TestBuildRewritesHQLImport(t *testing.T) {
	dir := t.TempDir()
	writeHQL(t, dir, "util.hql", `(defn square [x] (* x x)) (export [square])`)
	entry := writeHQL(t, dir, "main.hql", `(import "./util.hql")`)

	b := newTestBundler(t, dir)
	result, err := b.Build(entry)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files (entry + import), got %d", len(result.Files))
	}

	entryTS, err := os.ReadFile(result.EntryCachePath)
	if err != nil {
		t.Fatalf("reading entry cached output: %v", err)
	}
	if strings.Contains(string(entryTS), "./util.hql") {
		t.Fatalf("expected import rewritten away from source path, got:\n%s", entryTS)
	}
}

func TestBuildBreaksCircularImport(t *testing.T) {
	dir := t.TempDir()
	writeHQL(t, dir, "a.hql", `(import "./b.hql")`)
	writeHQL(t, dir, "b.hql", `(import "./a.hql")`)
	entry := filepath.Join(dir, "a.hql")

	b := newTestBundler(t, dir)
	result, err := b.Build(entry)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected both files bundled exactly once despite the cycle, got %d", len(result.Files))
	}

	var aFile, bFile *FileResult
	for i := range result.Files {
		switch filepath.Base(result.Files[i].SourcePath) {
		case "a.hql":
			aFile = &result.Files[i]
		case "b.hql":
			bFile = &result.Files[i]
		}
	}
	if aFile == nil || bFile == nil {
		t.Fatalf("expected both a.hql and b.hql in result.Files, got %+v", result.Files)
	}

	// Every cache path handed out must correspond to a file Build actually
	// wrote: a rewritten import pointing anywhere else is dangling.
	for _, f := range []*FileResult{aFile, bFile} {
		if _, err := os.Stat(f.CachePath); err != nil {
			t.Fatalf("cache path for %s does not exist on disk: %v", f.SourcePath, err)
		}
	}

	aTS, err := os.ReadFile(aFile.CachePath)
	if err != nil {
		t.Fatalf("reading a.hql cached output: %v", err)
	}
	if !strings.Contains(string(aTS), bFile.CachePath) {
		t.Fatalf("expected a.hql's rewritten import to reference b.hql's real cache path %s, got:\n%s", bFile.CachePath, aTS)
	}
	if strings.Contains(string(aTS), "./b.hql") {
		t.Fatalf("expected a.hql's import to be rewritten away from the source path, got:\n%s", aTS)
	}

	bTS, err := os.ReadFile(bFile.CachePath)
	if err != nil {
		t.Fatalf("reading b.hql cached output: %v", err)
	}
	if !strings.Contains(string(bTS), aFile.CachePath) {
		t.Fatalf("expected b.hql's rewritten import to reference a.hql's real cache path %s (the circular re-entrant lookup must resolve to the path a.hql will actually be written to), got:\n%s", aFile.CachePath, bTS)
	}
	if strings.Contains(string(bTS), "./a.hql") {
		t.Fatalf("expected b.hql's import to be rewritten away from the source path, got:\n%s", bTS)
	}
}

func TestBuildCacheHitSkipsRecompilation(t *testing.T) {
	dir := t.TempDir()
	entry := writeHQL(t, dir, "main.hql", `(defn f [] 1)`)

	b := newTestBundler(t, dir)
	if _, err := b.Build(entry); err != nil {
		t.Fatalf("first Build: %v", err)
	}

	b2 := newTestBundler(t, dir)
	result, err := b2.Build(entry)
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if !result.Files[0].FromCache {
		t.Fatalf("expected second build to hit the cache")
	}
}
