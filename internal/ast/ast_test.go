package ast

import (
	"testing"

	"github.com/hql-lang/hql/internal/lexer"
)

func sym(name string) *Symbol { return &Symbol{Name: name} }

func TestListString(t *testing.T) {
	l := &List{Elements: []Node{sym("+"), &Literal{Kind: NumberLit, Value: 1.0}, &Literal{Kind: NumberLit, Value: 2.0}}}
	if got, want := l.String(), "(+ 1 2)"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestEqualIgnoresPosition(t *testing.T) {
	a := &Symbol{Name: "x", P: lexer.Position{Line: 1}}
	b := &Symbol{Name: "x", P: lexer.Position{Line: 99}}
	if !Equal(a, b) {
		t.Fatal("expected equal symbols regardless of position")
	}
}

func TestCouldBePattern(t *testing.T) {
	tests := []struct {
		name string
		v    *Vector
		want bool
	}{
		{"empty", &Vector{}, true},
		{"simple", &Vector{Elements: []Node{sym("x"), sym("y")}}, true},
		{"rest", &Vector{Elements: []Node{sym("x"), sym("&"), sym("rest")}}, true},
		{"rest-not-last", &Vector{Elements: []Node{sym("&"), sym("rest"), sym("x")}}, false},
		{"default", &Vector{Elements: []Node{sym("x"), &List{Elements: []Node{sym("="), &Literal{Kind: NumberLit, Value: 10.0}}}}}, true},
		{"literal-disqualifies", &Vector{Elements: []Node{&Literal{Kind: NumberLit, Value: 1.0}}}, false},
		{"nested", &Vector{Elements: []Node{&Vector{Elements: []Node{sym("a"), sym("b")}}}}, true},
		{"call-disqualifies", &Vector{Elements: []Node{&List{Elements: []Node{sym("f"), sym("x")}}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CouldBePattern(tt.v); got != tt.want {
				t.Errorf("CouldBePattern(%s) = %v, want %v", tt.v.String(), got, tt.want)
			}
		})
	}
}

func TestListHead(t *testing.T) {
	l := &List{Elements: []Node{sym("defn"), sym("f")}}
	if got := ListHead(l); got != "defn" {
		t.Fatalf("got %q", got)
	}
	if got := ListHead(&Literal{}); got != "" {
		t.Fatalf("expected empty for non-list, got %q", got)
	}
}
