package semantic

import "github.com/hql-lang/hql/internal/ast"

// Analyzer runs the hoist and resolve passes over a macro-expanded forest
// and returns the populated global scope plus any diagnostics.
type Analyzer struct {
	macroNames  []string
	stdlibNames []string
}

// New builds an Analyzer. macroNames and stdlibNames feed the "did you
// mean?" suggestion pool alongside kernel primitives and the operator
// table.
func New(macroNames, stdlibNames []string) *Analyzer {
	return &Analyzer{macroNames: macroNames, stdlibNames: stdlibNames}
}

// Analyze runs the full pass pipeline over forms, returning the populated
// Context (global scope + diagnostics). forms are not mutated.
func (a *Analyzer) Analyze(forms []ast.Node) *Context {
	ctx := NewContext(a.macroNames, a.stdlibNames)
	pm := NewPassManager(HoistPass{}, ResolvePass{})
	pm.RunAll(forms, ctx)
	return ctx
}
