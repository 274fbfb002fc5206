package printer

import (
	"strings"
	"testing"

	"github.com/hql-lang/hql/internal/lexer"
	"github.com/hql-lang/hql/internal/parser"
)

func TestCompactPrintSingleLine(t *testing.T) {
	p := parser.New(lexer.New("(defn add [a b] (+ a b))"))
	forms := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	out := New(Options{Style: StyleCompact}).Print(forms[0])
	if out != "(defn add [a b] (+ a b))" {
		t.Fatalf("unexpected compact output: %q", out)
	}
}

func TestExpandedPrintBreaksLongForm(t *testing.T) {
	src := `(defn compute-something-with-a-very-long-name [first-argument second-argument third-argument] (+ first-argument second-argument third-argument))`
	p := parser.New(lexer.New(src))
	forms := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	out := New(DefaultOptions()).Print(forms[0])
	if !strings.Contains(out, "\n") {
		t.Fatalf("expected a line break for an over-width form, got:\n%s", out)
	}
}

func TestPrintProgramBlankLinesBetweenDeclarations(t *testing.T) {
	p := parser.New(lexer.New("(defn f [] 1) (defn g [] 2)"))
	forms := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	out := Format(forms, Options{Style: StyleCompact})
	if !strings.Contains(out, "\n\n") {
		t.Fatalf("expected a blank line between top-level defns, got:\n%q", out)
	}
}
