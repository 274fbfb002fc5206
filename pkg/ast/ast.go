// Package ast is the stable, externally importable mirror of
// internal/ast: host tooling (editors, linters, the eventual LSP) that
// wants to walk an HQL AST should depend on this package rather than
// reaching into internal/ast, which is free to change shape between
// compiler releases. Every type here is a plain alias of its
// internal/ast counterpart, so values produced by the compiler's parser
// and values consumed by pkg/printer.Print are interchangeable without a
// conversion step.
package ast

import (
	internalast "github.com/hql-lang/hql/internal/ast"
)

type (
	Node        = internalast.Node
	LiteralKind = internalast.LiteralKind
	Literal     = internalast.Literal
	Symbol      = internalast.Symbol
	List        = internalast.List
	Vector      = internalast.Vector
	MapEntry    = internalast.MapEntry
	Map         = internalast.Map
	Set         = internalast.Set
)

const (
	NumberLit  = internalast.NumberLit
	StringLit  = internalast.StringLit
	BooleanLit = internalast.BooleanLit
	NilLit     = internalast.NilLit
)

// Equal reports structural equality between two AST nodes, ignoring
// source positions.
func Equal(a, b Node) bool { return internalast.Equal(a, b) }

// ListHead returns the symbol name at the head of a list, or "" if n is
// not a non-empty list headed by a bare symbol.
func ListHead(n Node) string { return internalast.ListHead(n) }

// CouldBePattern classifies a Vector as a destructuring pattern rather
// than a literal array.
func CouldBePattern(n Node) bool { return internalast.CouldBePattern(n) }
