package macro

import (
	"testing"

	"github.com/hql-lang/hql/internal/ast"
	"github.com/hql-lang/hql/internal/lexer"
	"github.com/hql-lang/hql/internal/parser"
)

func expandSource(t *testing.T, src string) ([]ast.Node, *Env) {
	t.Helper()
	env, diags := NewEnv()
	if len(diags) != 0 {
		t.Fatalf("stdlib load errors: %v", diags)
	}
	p := parser.New(lexer.New(src))
	forms := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	exp := NewExpander(env)
	out, diags := exp.Expand(forms)
	if len(diags) != 0 {
		t.Fatalf("expand errors: %v", diags)
	}
	return out, env
}

func TestStdlibLoadsWithoutErrors(t *testing.T) {
	env, diags := NewEnv()
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics loading stdlib: %v", diags)
	}
	if env.Lookup("when") == nil {
		t.Fatal("expected 'when' to be defined by the standard macro table")
	}
}

func TestWhenExpandsToIf(t *testing.T) {
	out, _ := expandSource(t, "(when true (print 1) (print 2))")
	want := "(if true (do (print 1) (print 2)) nil)"
	if got := out[0].String(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestUserMacroDefinitionAndExpansion(t *testing.T) {
	out, _ := expandSource(t, "(defmacro double [x] `(* ,x 2)) (double 21)")
	if len(out) != 1 {
		t.Fatalf("expected the defmacro form to expand to nothing, got %d forms", len(out))
	}
	if got, want := out[0].String(), "(* 21 2)"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestUnquoteSplice(t *testing.T) {
	out, _ := expandSource(t, "(defmacro call-with [f & args] `(,f ,@args)) (call-with add 1 2 3)")
	if got, want := out[0].String(), "(add 1 2 3)"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestQuoteIsNotSubstituted(t *testing.T) {
	out, _ := expandSource(t, "(defmacro lit [x] (quote x)) (lit 99)")
	if got, want := out[0].String(), "x"; got != want {
		t.Fatalf("got %q want %q (quote body must not substitute the pattern variable)", got, want)
	}
}

func TestHygienicRenameAvoidsCapture(t *testing.T) {
	out, _ := expandSource(t, "(defmacro swap-test [a b] `(let [tmp ,a] (set! ,a ,b) (set! ,b tmp))) (swap-test tmp other)")
	letForm := out[0].(*ast.List)
	bindings := letForm.Elements[1].(*ast.Vector)
	introducedName := bindings.Elements[0].(*ast.Symbol).Name
	if introducedName == "tmp" {
		t.Fatalf("expected the macro's own 'tmp' binding to be renamed away from the call site's 'tmp' argument")
	}
}

func TestArityMismatchReportsDiagnostic(t *testing.T) {
	env, _ := NewEnv()
	p := parser.New(lexer.New("(when)"))
	forms := p.ParseProgram()
	exp := NewExpander(env)
	_, diags := exp.Expand(forms)
	if len(diags) == 0 {
		t.Fatal("expected an arity-mismatch diagnostic")
	}
}

func TestMacroFixedPoint(t *testing.T) {
	out, _ := expandSource(t, "(+ 1 2)")
	if got, want := out[0].String(), "(+ 1 2)"; got != want {
		t.Fatalf("non-macro form should be unchanged: got %q want %q", got, want)
	}
}
