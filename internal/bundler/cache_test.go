package bundler

import (
	"os"
	"testing"

	"github.com/tidwall/gjson"
)

func TestCacheWriteAndNeedsRegeneration(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	hash := HashSource([]byte("(defn f [] 1)"), "target=js")
	if !cache.NeedsRegeneration(hash, "f", false) {
		t.Fatalf("expected regeneration needed before any write")
	}

	entry, err := cache.Write(hash, "f", "/src/f.hql", "function f() { return 1; }\n", `{"version":3}`)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if cache.NeedsRegeneration(hash, "f", false) {
		t.Fatalf("expected no regeneration needed after a matching write")
	}
	if cache.NeedsRegeneration(hash, "f", true) != true {
		t.Fatalf("expected force to always require regeneration")
	}

	data, err := os.ReadFile(entry.MetaPath)
	if err != nil {
		t.Fatalf("reading meta sidecar: %v", err)
	}
	if got := gjson.GetBytes(data, "hash").String(); got != hash {
		t.Fatalf("expected meta hash %s, got %s", hash, got)
	}
	if got := gjson.GetBytes(data, "sourcePath").String(); got != "/src/f.hql" {
		t.Fatalf("expected meta sourcePath recorded, got %s", got)
	}
}

func TestHashSourceDiffersByOptions(t *testing.T) {
	a := HashSource([]byte("(defn f [] 1)"), "target=js")
	b := HashSource([]byte("(defn f [] 1)"), "target=ts")
	if a == b {
		t.Fatalf("expected different hashes for different normalized options")
	}
}
