package semantic

import "github.com/hql-lang/hql/internal/diag"

// Context is the mutable state threaded through every Pass: the scope
// being built, the accumulated diagnostics, and the name pool used to
// build "did you mean?" suggestions.
type Context struct {
	Global      *Scope
	Diags       *diag.Bag
	MacroNames  []string
	StdlibNames []string
}

// NewContext builds a fresh Context with an empty global scope.
func NewContext(macroNames, stdlibNames []string) *Context {
	return &Context{
		Global:      NewScope(ScopeGlobal, nil),
		Diags:       &diag.Bag{},
		MacroNames:  macroNames,
		StdlibNames: stdlibNames,
	}
}

// suggestionPool returns every name worth offering as a "did you mean?"
// candidate for an unbound symbol at scope: kernel primitives, operators,
// loaded macros, standard library exports, and every name visible from
// scope.
func (c *Context) suggestionPool(scope *Scope) []string {
	pool := make([]string, 0, len(KernelPrimitives)+len(OperatorTable)+len(c.MacroNames)+len(c.StdlibNames))
	for n := range KernelPrimitives {
		pool = append(pool, n)
	}
	for n := range OperatorTable {
		pool = append(pool, n)
	}
	pool = append(pool, c.MacroNames...)
	pool = append(pool, c.StdlibNames...)
	pool = append(pool, scope.AllVisibleNames()...)
	return pool
}
