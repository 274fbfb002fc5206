// Package semantic annotates the macro-expanded AST and populates the
// symbol table: resolving references, inferring type annotations from
// "name:Type" identifiers, detecting recur tail positions, and marking
// import/export bindings.
package semantic

import (
	"github.com/hql-lang/hql/internal/lexer"
)

// ScopeKind identifies the kind of lexical scope a Scope represents.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeModule
	ScopeFunction
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	default:
		return "block"
	}
}

// maxScopeEntries bounds a single scope's symbol count so a long-running
// LSP session doesn't grow memory without limit; the oldest entry is
// evicted to make room for a new one once the cap is hit.
const maxScopeEntries = 50000

// Scope is one link in the global → module → function → block chain.
// Resolution walks parent-ward; a scope never sees its children's symbols.
type Scope struct {
	Kind    ScopeKind
	Parent  *Scope
	symbols map[string]*Symbol
	order   []string // insertion order, for FIFO eviction under maxScopeEntries
}

// NewScope creates a scope of the given kind, chained to parent.
func NewScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{Kind: kind, Parent: parent, symbols: make(map[string]*Symbol)}
}

// Define binds name to sym in this scope, evicting the oldest entry first
// if the scope is already at capacity. Returns false if name was already
// bound in this exact scope (a duplicate-binding diagnostic at the call
// site), true otherwise.
func (s *Scope) Define(name string, sym *Symbol) bool {
	if _, exists := s.symbols[name]; exists {
		return false
	}
	if len(s.order) >= maxScopeEntries {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.symbols, oldest)
	}
	s.symbols[name] = sym
	s.order = append(s.order, name)
	return true
}

// Resolve walks this scope and its ancestors for name.
func (s *Scope) Resolve(name string) (*Symbol, bool) {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LocalNames returns the names bound directly in this scope (not ancestors).
func (s *Scope) LocalNames() []string {
	names := make([]string, 0, len(s.symbols))
	for n := range s.symbols {
		names = append(names, n)
	}
	return names
}

// AllVisibleNames returns every name visible from this scope, walking the
// parent chain, used to build "did you mean?" suggestion pools.
func (s *Scope) AllVisibleNames() []string {
	var names []string
	for scope := s; scope != nil; scope = scope.Parent {
		names = append(names, scope.LocalNames()...)
	}
	return names
}

// Symbol is one entry of the symbol table: a binding with a kind, optional
// structural metadata (params/return type/cases/fields/methods), and
// import/export flags.
type Symbol struct {
	Name           string
	Kind           SymbolKind
	Scope          *Scope
	Params         []string
	ReturnType     string
	TypeAnnotation string
	Cases          []string
	Fields         []string
	Methods        []string
	SourceModule   string
	AliasTarget    string
	Exported       bool
	Imported       bool
	Pos            lexer.Position
	Doc            string
}

// SymbolKind classifies what a Symbol denotes.
type SymbolKind int

const (
	KindVariable SymbolKind = iota
	KindFunction
	KindMacro
	KindFnLike
	KindType
	KindEnum
	KindEnumCase
	KindClass
	KindMethod
	KindInterface
	KindModule
	KindImport
	KindExport
	KindNamespace
	KindOperator
	KindConstant
	KindProperty
	KindSpecialForm
	KindBuiltin
	KindAlias
)
