package parser

import (
	"testing"

	"github.com/hql-lang/hql/internal/ast"
	"github.com/hql-lang/hql/internal/lexer"
)

func parse(t *testing.T, src string) ([]ast.Node, *Parser) {
	t.Helper()
	p := New(lexer.New(src))
	forms := p.ParseProgram()
	return forms, p
}

func TestParseArithmetic(t *testing.T) {
	forms, p := parse(t, "(+ (* 2 3) (- 10 5))")
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if len(forms) != 1 {
		t.Fatalf("expected 1 form, got %d", len(forms))
	}
	if got, want := forms[0].String(), "(+ (* 2 3) (- 10 5))"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestParseVectorAndMapAndSet(t *testing.T) {
	forms, p := parse(t, "[1 2 3] {:a 1 :b 2} #{1 2 3}")
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if len(forms) != 3 {
		t.Fatalf("expected 3 forms, got %d", len(forms))
	}
	if _, ok := forms[0].(*ast.Vector); !ok {
		t.Fatalf("expected Vector, got %T", forms[0])
	}
	m, ok := forms[1].(*ast.Map)
	if !ok || len(m.Entries) != 2 {
		t.Fatalf("expected 2-entry Map, got %#v", forms[1])
	}
	if _, ok := forms[2].(*ast.Set); !ok {
		t.Fatalf("expected Set, got %T", forms[2])
	}
}

func TestOddMapArityIsParseError(t *testing.T) {
	_, p := parse(t, "{:a 1 :b}")
	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error for odd map arity")
	}
}

func TestQuoteFamily(t *testing.T) {
	cases := map[string]string{
		"'x":  "(quote x)",
		"`(a)": "(quasiquote (a))",
		",x":  "(unquote x)",
		",@x": "(unquote-splice x)",
	}
	for in, want := range cases {
		forms, p := parse(t, in)
		if len(p.Errors()) != 0 {
			t.Fatalf("%s: unexpected errors %v", in, p.Errors())
		}
		if got := forms[0].String(); got != want {
			t.Fatalf("%s: got %q want %q", in, got, want)
		}
	}
}

func TestDiscardNextForm(t *testing.T) {
	forms, p := parse(t, "(a #_ (b) c)")
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	l := forms[0].(*ast.List)
	if len(l.Elements) != 2 {
		t.Fatalf("expected discard to drop the middle form, got %s", l.String())
	}
}

func TestTemplateLiteralExpansion(t *testing.T) {
	forms, p := parse(t, "`Hello ${name}!`")
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	l := forms[0].(*ast.List)
	if ast.ListHead(l) != "template-literal" {
		t.Fatalf("expected template-literal head, got %s", l.String())
	}
	if len(l.Elements) != 4 {
		t.Fatalf("expected 3 segments + head, got %s", l.String())
	}
}

func TestMissingClosingParenRecovers(t *testing.T) {
	forms, p := parse(t, "(+ 1 2")
	if len(p.Errors()) == 0 {
		t.Fatal("expected an unclosed-delimiter error")
	}
	if len(forms) != 1 {
		t.Fatalf("expected the list to still be produced, got %d forms", len(forms))
	}
}

func TestParserIdempotenceOnCanonicalForms(t *testing.T) {
	srcs := []string{"(+ 1 2)", "[1 2 3]", "(fn [x] (+ x 1))", "{:a 1}"}
	for _, src := range srcs {
		forms1, _ := parse(t, src)
		forms2, _ := parse(t, forms1[0].String())
		if !ast.Equal(forms1[0], forms2[0]) {
			t.Fatalf("re-parse of %q mismatched: %s vs %s", src, forms1[0].String(), forms2[0].String())
		}
	}
}
