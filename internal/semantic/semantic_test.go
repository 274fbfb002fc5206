package semantic

import (
	"testing"

	"github.com/hql-lang/hql/internal/lexer"
	"github.com/hql-lang/hql/internal/parser"
)

func analyze(t *testing.T, src string) *Context {
	t.Helper()
	p := parser.New(lexer.New(src))
	forms := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	a := New(nil, nil)
	return a.Analyze(forms)
}

func TestResolvesFunctionParameters(t *testing.T) {
	ctx := analyze(t, "(defn add [a b] (+ a b))")
	if ctx.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", ctx.Diags.All())
	}
	sym, ok := ctx.Global.Resolve("add")
	if !ok || sym.Kind != KindFunction {
		t.Fatalf("expected 'add' hoisted as a function symbol")
	}
}

func TestUnboundSymbolReportsSuggestion(t *testing.T) {
	ctx := analyze(t, "(defn f [] (coutn 1))")
	if !ctx.Diags.HasErrors() {
		t.Fatal("expected an unbound-symbol diagnostic")
	}
}

func TestForwardReferenceResolves(t *testing.T) {
	ctx := analyze(t, "(defn a [] (b)) (defn b [] 1)")
	if ctx.Diags.HasErrors() {
		t.Fatalf("forward reference between top-level defns should resolve: %v", ctx.Diags.All())
	}
}

func TestLetBindingScoped(t *testing.T) {
	ctx := analyze(t, "(let [x 1] (+ x 1))")
	if ctx.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", ctx.Diags.All())
	}
	if _, ok := ctx.Global.Resolve("x"); ok {
		t.Fatal("let-bound 'x' must not leak into the global scope")
	}
}

func TestRecurArityMismatch(t *testing.T) {
	ctx := analyze(t, "(loop [i 0] (recur i 1))")
	if !ctx.Diags.HasErrors() {
		t.Fatal("expected a recur-arity diagnostic")
	}
}

func TestRecurOutsideTailPosition(t *testing.T) {
	ctx := analyze(t, "(defn f [] (recur))")
	if !ctx.Diags.HasErrors() {
		t.Fatal("expected a recur-not-in-tail-position diagnostic")
	}
}

func TestRecurInLoopTailPosition(t *testing.T) {
	ctx := analyze(t, "(loop [i 0] (if (< i 10) (recur i) i))")
	if ctx.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", ctx.Diags.All())
	}
}

func TestImportMarksImported(t *testing.T) {
	ctx := analyze(t, `(import [a b as c] from "./mod.hql")`)
	sym, ok := ctx.Global.Resolve("a")
	if !ok || !sym.Imported {
		t.Fatal("expected 'a' bound and marked imported")
	}
	alias, ok := ctx.Global.Resolve("c")
	if !ok || alias.AliasTarget != "b" {
		t.Fatalf("expected 'c' bound as alias of 'b', got %+v", alias)
	}
}

func TestExportMarksExported(t *testing.T) {
	ctx := analyze(t, "(defn f [] 1) (export [f])")
	sym, _ := ctx.Global.Resolve("f")
	if !sym.Exported {
		t.Fatal("expected 'f' marked exported")
	}
}

func TestQuoteBodyNotResolved(t *testing.T) {
	ctx := analyze(t, "(quote (some undefined-thing))")
	if ctx.Diags.HasErrors() {
		t.Fatalf("quoted data must not be symbol-resolved: %v", ctx.Diags.All())
	}
}

func TestTypeAnnotationParsed(t *testing.T) {
	base, typ, ok := splitTypeAnnotation("x:Number")
	if !ok || base != "x" || typ != "Number" {
		t.Fatalf("got base=%q typ=%q ok=%v", base, typ, ok)
	}
	if _, _, ok := splitTypeAnnotation("plain"); ok {
		t.Fatal("expected no annotation for a plain identifier")
	}
}

func TestDuplicateTopLevelBinding(t *testing.T) {
	ctx := analyze(t, "(defn f [] 1) (defn f [] 2)")
	if !ctx.Diags.HasErrors() {
		t.Fatal("expected a duplicate-binding diagnostic")
	}
}
