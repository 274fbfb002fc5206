package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hql-lang/hql/internal/lexer"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() lexer.Position
	String() string
	node()
}

// LiteralKind tags the underlying value kind carried by a Literal node.
type LiteralKind int

const (
	NumberLit LiteralKind = iota
	StringLit
	BooleanLit
	NilLit
)

// Literal is a self-evaluating scalar: a number, string, boolean, or nil.
type Literal struct {
	Kind  LiteralKind
	Value any // float64 | string | bool | nil
	P     lexer.Position
}

func (l *Literal) Pos() lexer.Position { return l.P }
func (l *Literal) node()               {}
func (l *Literal) String() string {
	switch l.Kind {
	case StringLit:
		return strconv.Quote(l.Value.(string))
	case NilLit:
		return "nil"
	default:
		return fmt.Sprintf("%v", l.Value)
	}
}

// Symbol is an identifier reference (including operators, which are
// identifiers by form) or keyword (":name").
type Symbol struct {
	Name      string
	IsKeyword bool
	P         lexer.Position
}

func (s *Symbol) Pos() lexer.Position { return s.P }
func (s *Symbol) node()               {}
func (s *Symbol) String() string {
	if s.IsKeyword {
		return ":" + s.Name
	}
	return s.Name
}

// List is a parenthesized form: a function/macro/special-form call, or
// quoted data once macro-expanded into literal values.
type List struct {
	Elements []Node
	P        lexer.Position
}

func (l *List) Pos() lexer.Position { return l.P }
func (l *List) node()               {}
func (l *List) String() string      { return "(" + joinNodes(l.Elements) + ")" }

// Vector is a square-bracket sequence: a literal array, or (when every
// element satisfies CouldBePattern) a destructuring pattern.
type Vector struct {
	Elements []Node
	P        lexer.Position
}

func (v *Vector) Pos() lexer.Position { return v.P }
func (v *Vector) node()               {}
func (v *Vector) String() string      { return "[" + joinNodes(v.Elements) + "]" }

// MapEntry is one key/value pair of a Map node, in source order.
type MapEntry struct {
	Key   Node
	Value Node
}

// Map is a brace-delimited sequence of key/value pairs.
type Map struct {
	Entries []MapEntry
	P       lexer.Position
}

func (m *Map) Pos() lexer.Position { return m.P }
func (m *Map) node()               {}
func (m *Map) String() string {
	parts := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		parts[i] = e.Key.String() + " " + e.Value.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Set is a "#{...}" dispatch literal.
type Set struct {
	Elements []Node
	P        lexer.Position
}

func (s *Set) Pos() lexer.Position { return s.P }
func (s *Set) node()               {}
func (s *Set) String() string      { return "#{" + joinNodes(s.Elements) + "}" }

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}

// Equal reports structural equality between two AST nodes, ignoring
// source positions. Used by the macro expander's fixed-point check and by
// the parser's re-parse idempotence test.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *Literal:
		bv, ok := b.(*Literal)
		return ok && av.Kind == bv.Kind && av.Value == bv.Value
	case *Symbol:
		bv, ok := b.(*Symbol)
		return ok && av.Name == bv.Name && av.IsKeyword == bv.IsKeyword
	case *List:
		bv, ok := b.(*List)
		return ok && equalNodeSlices(av.Elements, bv.Elements)
	case *Vector:
		bv, ok := b.(*Vector)
		return ok && equalNodeSlices(av.Elements, bv.Elements)
	case *Set:
		bv, ok := b.(*Set)
		return ok && equalNodeSlices(av.Elements, bv.Elements)
	case *Map:
		bv, ok := b.(*Map)
		if !ok || len(av.Entries) != len(bv.Entries) {
			return false
		}
		for i := range av.Entries {
			if !Equal(av.Entries[i].Key, bv.Entries[i].Key) || !Equal(av.Entries[i].Value, bv.Entries[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equalNodeSlices(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// ListHead returns the symbol name at the head of a list, or "" if n is
// not a non-empty list headed by a bare symbol.
func ListHead(n Node) string {
	l, ok := n.(*List)
	if !ok || len(l.Elements) == 0 {
		return ""
	}
	sym, ok := l.Elements[0].(*Symbol)
	if !ok {
		return ""
	}
	return sym.Name
}
