package codegen

import (
	"strings"
	"testing"

	"github.com/hql-lang/hql/internal/lexer"
	"github.com/hql-lang/hql/internal/lowering"
	"github.com/hql-lang/hql/internal/optimizer"
	"github.com/hql-lang/hql/internal/parser"
)

func compile(t *testing.T, src string) Result {
	t.Helper()
	p := parser.New(lexer.New(src))
	forms := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	prog := optimizer.Trampoline(optimizer.Optimize(lowering.New().Lower(forms)))
	return New(DefaultOptions()).Emit(prog)
}

func TestEmitsFunctionDeclaration(t *testing.T) {
	r := compile(t, "(defn add [a b] (+ a b))")
	if !strings.Contains(r.Code, "function add(a, b)") {
		t.Fatalf("expected function declaration, got:\n%s", r.Code)
	}
}

func TestEmitsOnlyReferencedHelpers(t *testing.T) {
	r := compile(t, "(defn add [a b] (+ a b))")
	if len(r.ReferencedHelp) != 1 || r.ReferencedHelp[0] != "__hql_get_op" {
		t.Fatalf("expected only __hql_get_op referenced, got %v", r.ReferencedHelp)
	}
	if !strings.Contains(r.Code, "function __hql_get_op(name)") {
		t.Fatalf("expected __hql_get_op helper body prepended, got:\n%s", r.Code)
	}
}

func TestNoHelpersWhenUnreferenced(t *testing.T) {
	r := compile(t, `(defn greet [] "hi")`)
	if len(r.ReferencedHelp) != 0 {
		t.Fatalf("expected no helpers referenced, got %v", r.ReferencedHelp)
	}
}

func TestForRangeEmitsNativeForLoop(t *testing.T) {
	r := compile(t, "(for [i (range 0 10)] (print i))")
	if !strings.Contains(r.Code, "for (let i = 0; (i < 10); i += 1)") {
		t.Fatalf("expected native for loop, got:\n%s", r.Code)
	}
	if strings.Contains(r.Code, "__hql_for_each") {
		t.Fatalf("for_each should have been optimized away, got:\n%s", r.Code)
	}
}

func TestExportEmitsESM(t *testing.T) {
	r := compile(t, "(defn f [] 1) (export [f])")
	if !strings.Contains(r.Code, "export { f };") {
		t.Fatalf("expected ESM export, got:\n%s", r.Code)
	}
}

func TestImportEmitsESM(t *testing.T) {
	r := compile(t, `(import [a b as c] from "./mod.hql")`)
	if !strings.Contains(r.Code, `import { a, b as c } from "./mod.hql";`) {
		t.Fatalf("expected ESM import, got:\n%s", r.Code)
	}
}

func TestClassEmitsFieldsAndMethods(t *testing.T) {
	r := compile(t, `(class Point (var x 0) (var y 0) (fn dist [] (+ x y)))`)
	if !strings.Contains(r.Code, "class Point {") || !strings.Contains(r.Code, "dist() {") {
		t.Fatalf("expected class with method, got:\n%s", r.Code)
	}
}
