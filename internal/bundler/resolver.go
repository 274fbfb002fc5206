package bundler

import (
	"os"
	"path/filepath"
	"strings"
)

// remoteSchemes are import specifiers resolved externally: the bundler
// never reads these from disk, it marks them external and leaves them
// untouched in the emitted import.
var remoteSchemes = []string{"npm:", "jsr:", "node:", "http://", "https://"}

// Resolver implements the seven-step resolution order from spec.md §4.8
// for an import path written in source against the importing file's
// directory.
type Resolver struct {
	cfg Config
	// mapping holds pre-registered logical-path -> resolved-path entries,
	// consulted first (step 1) and populated by the bundler as files are
	// resolved, so re-imports of an already-seen module short-circuit.
	mapping *ImportMap
}

// NewResolver builds a Resolver over cfg, sharing m as the pre-registered
// mapping table (step 1 of the resolution order).
func NewResolver(cfg Config, m *ImportMap) *Resolver {
	return &Resolver{cfg: cfg, mapping: m}
}

// Resolution is the outcome of resolving one import specifier.
type Resolution struct {
	Path     string // absolute filesystem path, empty if External
	External bool   // true when the import is left untouched (remote or unresolvable)
}

// Resolve applies the seven-step order for specifier p as written in the
// file at dir (the importer's directory). Unresolved imports are marked
// external per the "last-resort fallback" rule in spec.md §4.8.
func (r *Resolver) Resolve(p, dir string) Resolution {
	// Step 1: a pre-registered mapping for p or for resolve(dir, p).
	if cached, ok := r.mapping.Lookup(p); ok {
		return Resolution{Path: cached}
	}
	joined := filepath.Join(dir, p)
	if cached, ok := r.mapping.Lookup(joined); ok {
		return Resolution{Path: cached}
	}

	// Step 2: remote schemes are marked external.
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(p, scheme) {
			return Resolution{External: true}
		}
	}

	// Step 3: file:// URL, stripped and verified.
	if strings.HasPrefix(p, "file://") {
		stripped := strings.TrimPrefix(p, "file://")
		if fileExists(stripped) {
			return Resolution{Path: stripped}
		}
		return Resolution{External: true}
	}

	// Step 4: relative to the importer's directory.
	if candidate := joined; fileExists(candidate) {
		return Resolution{Path: candidate}
	}

	// Step 5: relative to the configured source_dir.
	if candidate := filepath.Join(r.cfg.SourceDir, p); fileExists(candidate) {
		return Resolution{Path: candidate}
	}

	// Step 6: relative to the project root.
	if candidate := filepath.Join(r.cfg.ProjectRoot, p); fileExists(candidate) {
		return Resolution{Path: candidate}
	}

	// Step 7: relative to <project root>/lib/ (and any configured lib dirs).
	for _, libDir := range r.cfg.LibDirs {
		if candidate := filepath.Join(libDir, p); fileExists(candidate) {
			return Resolution{Path: candidate}
		}
	}

	return Resolution{External: true}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
