package bundler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Cache is the content-addressed store for transpiled output: for each
// source file it holds a <hash>/<basename>.ts, a .ts.map sibling, and a
// .meta.json sidecar recording the inputs that produced it. Entries are
// immutable once written (the hash captures both content and options), so
// concurrent writers racing to the same entry is harmless: last writer
// wins and both wrote byte-identical content anyway.
type Cache struct {
	dir string
}

// NewCache opens (creating if absent) a cache rooted at dir.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("bundler: creating cache dir %s: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

// Entry is one cached compilation's on-disk artifacts.
type Entry struct {
	Hash     string
	TSPath   string
	MapPath  string
	MetaPath string
	Dir      string
}

// HashSource computes the cache key for source against a normalized
// options string (e.g. "target=ts;indent=2"): hash(source_bytes ||
// normalized_options), per spec.md §4.8.
func HashSource(source []byte, normalizedOptions string) string {
	h := sha256.New()
	h.Write(source)
	h.Write([]byte{0})
	h.Write([]byte(normalizedOptions))
	return hex.EncodeToString(h.Sum(nil))
}

// EntryFor returns the Entry paths for hash and basename, without
// touching the filesystem.
func (c *Cache) EntryFor(hash, basename string) Entry {
	dir := filepath.Join(c.dir, hash)
	return Entry{
		Hash:     hash,
		Dir:      dir,
		TSPath:   filepath.Join(dir, basename+".ts"),
		MapPath:  filepath.Join(dir, basename+".ts.map"),
		MetaPath: filepath.Join(dir, basename+".meta.json"),
	}
}

// NeedsRegeneration reports whether the cache entry for hash/basename
// must be (re)produced: no entry exists, the recorded hash in its meta
// sidecar differs (stale cache from a prior run with a colliding
// basename), or force is set.
func (c *Cache) NeedsRegeneration(hash, basename string, force bool) bool {
	if force {
		return true
	}
	entry := c.EntryFor(hash, basename)
	data, err := os.ReadFile(entry.MetaPath)
	if err != nil {
		return true
	}
	recorded := gjson.GetBytes(data, "hash").String()
	return recorded != hash
}

// Write atomically stores ts, the source map, and the meta sidecar
// recording hash and sourcePath. Each file is written to a UUID-tagged
// temp name in the same directory and renamed into place, so concurrent
// compilation units writing to the same cache directory never observe a
// partially-written file (spec.md §5's "<path>.tmp -> rename atomicity").
func (c *Cache) Write(hash, basename, sourcePath, ts, sourceMap string) (Entry, error) {
	entry := c.EntryFor(hash, basename)
	if err := os.MkdirAll(entry.Dir, 0o755); err != nil {
		return entry, fmt.Errorf("bundler: creating cache entry dir %s: %w", entry.Dir, err)
	}

	if err := atomicWrite(entry.TSPath, []byte(ts)); err != nil {
		return entry, err
	}
	if sourceMap != "" {
		if err := atomicWrite(entry.MapPath, []byte(sourceMap)); err != nil {
			return entry, err
		}
	}

	meta := "{}"
	meta, _ = sjson.Set(meta, "hash", hash)
	meta, _ = sjson.Set(meta, "sourcePath", sourcePath)
	meta, _ = sjson.Set(meta, "basename", basename)
	if err := atomicWrite(entry.MetaPath, []byte(meta)); err != nil {
		// Cache write failures are non-fatal per spec.md §4.8; the build
		// still has its in-memory result, only the on-disk cache is stale.
		return entry, fmt.Errorf("bundler: writing cache meta %s: %w", entry.MetaPath, err)
	}

	return entry, nil
}

// atomicWrite writes data to a UUID-tagged temp file beside path, then
// renames it into place. The UUID avoids collisions between concurrent
// compilation units that might otherwise pick the same ".tmp" name for
// the same final path.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("bundler: writing temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("bundler: renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}
