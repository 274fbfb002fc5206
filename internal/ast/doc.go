// Package ast defines the S-expression Abstract Syntax Tree node types
// produced by the parser.
//
// Unlike a grammar with one node type per surface construct, HQL's AST has
// a small, closed set of node kinds: Literal, Symbol, List, Vector, Map,
// and Set. Every other construct (function definitions, classes, loops,
// imports, quote/unquote) is just a List whose head is a kernel primitive
// or macro name; the macro expander and semantic analyzer, not the parser,
// give those lists their meaning.
//
// Every list/vector/map/set preserves element insertion order.
package ast
