package codegen

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestBuildSourceMapVersion3(t *testing.T) {
	doc, err := BuildSourceMap("add.hql", "add.ts", "(defn add [a b] (+ a b))\n")
	if err != nil {
		t.Fatalf("BuildSourceMap: %v", err)
	}

	if v := gjson.Get(doc, "version").Int(); v != 3 {
		t.Fatalf("expected version 3, got %d", v)
	}
	if sources := gjson.Get(doc, "sources").Array(); len(sources) != 1 || sources[0].String() != "add.hql" {
		t.Fatalf("unexpected sources field: %s", gjson.Get(doc, "sources").Raw)
	}
	if file := gjson.Get(doc, "file").String(); file != "add.ts" {
		t.Fatalf("expected file add.ts, got %s", file)
	}
	mappings := gjson.Get(doc, "mappings").String()
	if mappings == "" {
		t.Fatalf("expected non-empty mappings field")
	}
	if strings.Count(mappings, ";")+1 != 2 {
		t.Fatalf("expected 2 mapping lines for a 2-line source, got mappings=%q", mappings)
	}
}

func TestBuildSourceMapSourcesContent(t *testing.T) {
	src := "(defn f [] 1)\n"
	doc, err := BuildSourceMap("f.hql", "f.ts", src)
	if err != nil {
		t.Fatalf("BuildSourceMap: %v", err)
	}
	if got := gjson.Get(doc, "sourcesContent.0").String(); got != src {
		t.Fatalf("expected embedded source content %q, got %q", src, got)
	}
}
