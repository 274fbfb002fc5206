package bundler

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "hql.config.yaml"), dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Target != "js" {
		t.Fatalf("expected default target js, got %s", cfg.Target)
	}
	if cfg.ProjectRoot != dir {
		t.Fatalf("expected project root %s, got %s", dir, cfg.ProjectRoot)
	}
}

func TestLoadConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hql.config.yaml")
	content := "target: ts\nsource_dir: src\ncache_dir: .hqlcache\nlib_dirs:\n  - vendor\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path, dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Target != "ts" {
		t.Fatalf("expected target ts, got %s", cfg.Target)
	}
	if cfg.SourceDir != filepath.Join(dir, "src") {
		t.Fatalf("expected source dir resolved against project root, got %s", cfg.SourceDir)
	}
	if len(cfg.LibDirs) != 1 || cfg.LibDirs[0] != filepath.Join(dir, "vendor") {
		t.Fatalf("expected one lib dir resolved against project root, got %v", cfg.LibDirs)
	}
}
