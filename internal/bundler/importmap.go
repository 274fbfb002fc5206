package bundler

import "sync"

// ImportMap is the process-wide bidirectional map from logical import
// paths (as written in source) to resolved cached paths, held by the
// bundler for the duration of one build. Reads vastly outnumber writes
// once a build's dependency graph stabilizes, so a single RWMutex guards
// the whole table rather than sharding it.
type ImportMap struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewImportMap returns an empty mapping table.
func NewImportMap() *ImportMap {
	return &ImportMap{m: make(map[string]string)}
}

// Lookup returns the resolved cached path registered for logical, if any.
func (im *ImportMap) Lookup(logical string) (string, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	v, ok := im.m[logical]
	return v, ok
}

// Register binds logical to its resolved cached path, overwriting any
// prior registration (last-writer-wins, matching the cache's own
// content-hash-keyed idempotence).
func (im *ImportMap) Register(logical, resolved string) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.m[logical] = resolved
}
