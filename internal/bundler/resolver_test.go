package bundler

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveRemoteSchemeIsExternal(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(DefaultConfig(dir), NewImportMap())

	for _, spec := range []string{"npm:lodash", "jsr:@std/fs", "node:fs", "http://example.com/x.js", "https://example.com/x.js"} {
		res := r.Resolve(spec, dir)
		if !res.External {
			t.Fatalf("expected %s to resolve as external", spec)
		}
	}
}

func TestResolveRelativeToImporterDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	target := filepath.Join(sub, "util.hql")
	if err := os.WriteFile(target, []byte("(defn noop [])"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := NewResolver(DefaultConfig(dir), NewImportMap())
	res := r.Resolve("util.hql", sub)
	if res.External {
		t.Fatalf("expected util.hql to resolve locally")
	}
	if res.Path != target {
		t.Fatalf("expected %s, got %s", target, res.Path)
	}
}

func TestResolveUnresolvableIsExternal(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(DefaultConfig(dir), NewImportMap())
	res := r.Resolve("./missing.hql", dir)
	if !res.External {
		t.Fatalf("expected an unresolvable import to fall back to external")
	}
}

func TestResolvePreRegisteredMappingWinsFirst(t *testing.T) {
	dir := t.TempDir()
	m := NewImportMap()
	m.Register("./anything.hql", "/cache/deadbeef/anything.ts")

	r := NewResolver(DefaultConfig(dir), m)
	res := r.Resolve("./anything.hql", dir)
	if res.External || res.Path != "/cache/deadbeef/anything.ts" {
		t.Fatalf("expected pre-registered mapping to win, got %+v", res)
	}
}
