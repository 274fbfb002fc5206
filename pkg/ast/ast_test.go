package ast_test

import (
	"testing"

	"github.com/hql-lang/hql/internal/lexer"
	"github.com/hql-lang/hql/internal/parser"
	"github.com/hql-lang/hql/pkg/ast"
)

func TestMirrorTypesInterchangeableWithParserOutput(t *testing.T) {
	p := parser.New(lexer.New("(defn add [a b] (+ a b))"))
	forms := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	if len(forms) != 1 {
		t.Fatalf("expected 1 top-level form, got %d", len(forms))
	}

	var n ast.Node = forms[0]
	if ast.ListHead(n) != "defn" {
		t.Fatalf("expected head symbol defn, got %q", ast.ListHead(n))
	}
}

func TestEqualAndCouldBePattern(t *testing.T) {
	p := parser.New(lexer.New("[a b] [a b]"))
	forms := p.ParseProgram()
	if len(forms) != 2 {
		t.Fatalf("expected 2 forms, got %d", len(forms))
	}
	if !ast.Equal(forms[0], forms[1]) {
		t.Fatalf("expected the two identical vectors to be structurally equal")
	}
	if !ast.CouldBePattern(forms[0]) {
		t.Fatalf("expected [a b] to be classified as a destructuring pattern")
	}
}
