package semantic

import "github.com/hql-lang/hql/internal/ast"

// Pass is one stage of semantic analysis over the whole program. The
// multi-pass split exists so top-level declarations (defn/class/enum/
// import/export/macro) are visible to every sibling before any form's
// body is resolved - HQL has no forward-declaration syntax, so hoisting
// has to be a separate pass from resolution.
type Pass interface {
	Name() string
	Run(forms []ast.Node, ctx *Context)
}

// PassManager runs a fixed sequence of passes over the same forms and
// Context.
type PassManager struct {
	passes []Pass
}

// NewPassManager builds a manager that runs passes in the given order.
func NewPassManager(passes ...Pass) *PassManager {
	return &PassManager{passes: passes}
}

// RunAll executes every pass in order against forms and ctx.
func (pm *PassManager) RunAll(forms []ast.Node, ctx *Context) {
	for _, p := range pm.passes {
		p.Run(forms, ctx)
	}
}
