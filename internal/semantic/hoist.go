package semantic

import (
	"github.com/hql-lang/hql/internal/ast"
	"github.com/hql-lang/hql/internal/diag"
)

// HoistPass registers every top-level declaration into the global scope
// before resolution runs, so forward references between top-level forms
// (a function calling one defined later in the same file) resolve.
type HoistPass struct{}

func (HoistPass) Name() string { return "hoist" }

func (HoistPass) Run(forms []ast.Node, ctx *Context) {
	for _, f := range forms {
		hoistForm(f, ctx)
	}
	for _, f := range forms {
		hoistExport(f, ctx)
	}
}

func hoistForm(f ast.Node, ctx *Context) {
	l, ok := f.(*ast.List)
	if !ok {
		return
	}
	switch ast.ListHead(l) {
	case "defn":
		hoistFunction(l, ctx)
	case "class":
		hoistClass(l, ctx)
	case "enum":
		hoistEnum(l, ctx)
	case "var", "const":
		hoistBinding(l, ctx, ast.ListHead(l) == "const")
	case "import":
		hoistImport(l, ctx)
	case "defmacro", "macro":
		if len(l.Elements) >= 2 {
			if name, ok := l.Elements[1].(*ast.Symbol); ok {
				ctx.Global.Define(name.Name, &Symbol{Name: name.Name, Kind: KindMacro, Scope: ctx.Global, Pos: name.Pos()})
			}
		}
	}
}

func hoistFunction(l *ast.List, ctx *Context) {
	if len(l.Elements) < 3 {
		return
	}
	name, ok := l.Elements[1].(*ast.Symbol)
	if !ok {
		return
	}
	sym := &Symbol{Name: name.Name, Kind: KindFunction, Scope: ctx.Global, Pos: name.Pos()}
	if params, ok := l.Elements[2].(*ast.Vector); ok {
		for _, p := range params.Elements {
			if ps, ok := p.(*ast.Symbol); ok {
				base, typ, hasType := splitTypeAnnotation(ps.Name)
				if hasType {
					sym.Params = append(sym.Params, base+":"+typ)
				} else {
					sym.Params = append(sym.Params, ps.Name)
				}
			}
		}
	}
	defineOrDuplicate(ctx, name.Name, sym)
}

func hoistClass(l *ast.List, ctx *Context) {
	if len(l.Elements) < 2 {
		return
	}
	name, ok := l.Elements[1].(*ast.Symbol)
	if !ok {
		return
	}
	sym := &Symbol{Name: name.Name, Kind: KindClass, Scope: ctx.Global, Pos: name.Pos()}
	for _, member := range l.Elements[2:] {
		ml, ok := member.(*ast.List)
		if !ok || len(ml.Elements) < 2 {
			continue
		}
		switch ast.ListHead(ml) {
		case "fn", "constructor":
			if ms, ok := ml.Elements[1].(*ast.Symbol); ok {
				sym.Methods = append(sym.Methods, ms.Name)
			} else if ast.ListHead(ml) == "constructor" {
				sym.Methods = append(sym.Methods, "constructor")
			}
		case "var", "let":
			if fs, ok := ml.Elements[1].(*ast.Symbol); ok {
				sym.Fields = append(sym.Fields, fs.Name)
			}
		}
	}
	defineOrDuplicate(ctx, name.Name, sym)
}

func hoistEnum(l *ast.List, ctx *Context) {
	if len(l.Elements) < 2 {
		return
	}
	name, ok := l.Elements[1].(*ast.Symbol)
	if !ok {
		return
	}
	sym := &Symbol{Name: name.Name, Kind: KindEnum, Scope: ctx.Global, Pos: name.Pos()}
	for _, c := range l.Elements[2:] {
		cl, ok := c.(*ast.List)
		if !ok || ast.ListHead(cl) != "case" || len(cl.Elements) < 2 {
			continue
		}
		if cs, ok := cl.Elements[1].(*ast.Symbol); ok {
			sym.Cases = append(sym.Cases, cs.Name)
			ctx.Global.Define(name.Name+"."+cs.Name, &Symbol{Name: cs.Name, Kind: KindEnumCase, Scope: ctx.Global, Pos: cs.Pos()})
		}
	}
	defineOrDuplicate(ctx, name.Name, sym)
}

func hoistBinding(l *ast.List, ctx *Context, isConst bool) {
	if len(l.Elements) < 2 {
		return
	}
	name, ok := l.Elements[1].(*ast.Symbol)
	if !ok {
		return
	}
	kind := KindVariable
	if isConst {
		kind = KindConstant
	}
	defineOrDuplicate(ctx, name.Name, &Symbol{Name: name.Name, Kind: kind, Scope: ctx.Global, Pos: name.Pos()})
}

// hoistImport registers "(import [a b as c] from \"m\")", "(import m from
// \"m\")", and "(import \"m\")" bindings as imported symbols.
func hoistImport(l *ast.List, ctx *Context) {
	if len(l.Elements) < 2 {
		return
	}
	switch spec := l.Elements[1].(type) {
	case *ast.Vector:
		module := ""
		if len(l.Elements) >= 4 {
			if m, ok := l.Elements[3].(*ast.Literal); ok {
				module, _ = m.Value.(string)
			}
		}
		i := 0
		for i < len(spec.Elements) {
			s, ok := spec.Elements[i].(*ast.Symbol)
			if !ok {
				i++
				continue
			}
			local := s.Name
			if i+2 < len(spec.Elements) {
				if as, ok := spec.Elements[i+1].(*ast.Symbol); ok && as.Name == "as" {
					if alias, ok := spec.Elements[i+2].(*ast.Symbol); ok {
						local = alias.Name
						i += 3
						ctx.Global.Define(local, &Symbol{Name: local, Kind: KindImport, Scope: ctx.Global, Imported: true, SourceModule: module, AliasTarget: s.Name, Pos: s.Pos()})
						continue
					}
				}
			}
			i++
			ctx.Global.Define(local, &Symbol{Name: local, Kind: KindImport, Scope: ctx.Global, Imported: true, SourceModule: module, Pos: s.Pos()})
		}
	case *ast.Symbol:
		module := ""
		if len(l.Elements) >= 3 {
			if m, ok := l.Elements[2].(*ast.Literal); ok {
				module, _ = m.Value.(string)
			}
		}
		ctx.Global.Define(spec.Name, &Symbol{Name: spec.Name, Kind: KindModule, Scope: ctx.Global, Imported: true, SourceModule: module, Pos: spec.Pos()})
	case *ast.Literal:
		// side-effect-only import: "(import \"m\")" binds no name.
	}
}

func hoistExport(f ast.Node, ctx *Context) {
	l, ok := f.(*ast.List)
	if !ok || ast.ListHead(l) != "export" || len(l.Elements) < 2 {
		return
	}
	switch spec := l.Elements[1].(type) {
	case *ast.Vector:
		for _, e := range spec.Elements {
			if s, ok := e.(*ast.Symbol); ok {
				if sym, found := ctx.Global.Resolve(s.Name); found {
					sym.Exported = true
				}
			}
		}
	case *ast.Symbol:
		if spec.Name == "default" && len(l.Elements) >= 3 {
			if s, ok := l.Elements[2].(*ast.Symbol); ok {
				if sym, found := ctx.Global.Resolve(s.Name); found {
					sym.Exported = true
				}
			}
		}
	}
}

func defineOrDuplicate(ctx *Context, name string, sym *Symbol) {
	if !ctx.Global.Define(name, sym) {
		ctx.Diags.Add(&diag.Diagnostic{
			Severity: diag.SeverityError,
			Stage:    diag.StageSemantic,
			Code:     "E_DUPLICATE_BINDING",
			Position: sym.Pos,
			Message:  "duplicate top-level binding for '" + name + "'",
		})
	}
}
