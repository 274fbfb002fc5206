package macro

import (
	"github.com/hql-lang/hql/internal/ast"
	"github.com/hql-lang/hql/internal/diag"
)

// MaxDepth bounds re-expansion of a single top-level form: exceeding it is
// treated as a non-terminating macro and reported as a diagnostic rather
// than looping forever.
const MaxDepth = 64

// Expander drives macro expansion to a fixed point over a forest of forms.
type Expander struct {
	Env    *Env
	gensym gensymCounter
	diags  []*diag.Diagnostic
}

// NewExpander builds an Expander around env.
func NewExpander(env *Env) *Expander {
	return &Expander{Env: env}
}

// Expand walks forms top-down, expanding user and standard macros until
// each top-level form reaches a fixed point (expanding it again yields an
// equal tree) or MaxDepth is exceeded. (macro ...) and (defmacro ...) forms
// extend the environment for subsequent siblings, per traversal order, and
// themselves expand to nothing.
func (e *Expander) Expand(forms []ast.Node) ([]ast.Node, []*diag.Diagnostic) {
	var out []ast.Node
	for _, f := range forms {
		if e.Env.defineIfMacroForm(f) == nil && isMacroDefForm(f) {
			continue
		}
		out = append(out, e.expandFixedPoint(f))
	}
	return out, e.diags
}

func isMacroDefForm(f ast.Node) bool {
	l, ok := f.(*ast.List)
	if !ok {
		return false
	}
	head := ast.ListHead(l)
	return head == "macro" || head == "defmacro"
}

func (e *Expander) expandFixedPoint(n ast.Node) ast.Node {
	cur := n
	for depth := 0; depth < MaxDepth; depth++ {
		next := e.expandOnce(cur)
		if ast.Equal(cur, next) {
			return next
		}
		cur = next
	}
	e.diags = append(e.diags, &diag.Diagnostic{
		Severity: diag.SeverityError,
		Stage:    diag.StageMacro,
		Code:     "E_MACRO_DEPTH_EXCEEDED",
		Position: n.Pos(),
		Message:  "macro expansion did not reach a fixed point within the depth cap",
	})
	return cur
}

// expandOnce performs a single top-down pass: expand the outermost macro
// call if any, then recurse into children so nested calls get their turn.
func (e *Expander) expandOnce(n ast.Node) ast.Node {
	l, ok := n.(*ast.List)
	if !ok {
		return e.expandChildren(n)
	}
	if head := ast.ListHead(l); head != "" {
		if head == "quote" {
			return n
		}
		if m := e.Env.Lookup(head); m != nil {
			return e.expandCall(m, l)
		}
	}
	return e.expandChildren(n)
}

func (e *Expander) expandCall(m *Macro, call *ast.List) ast.Node {
	args := call.Elements[1:]
	bindings, err := bindArgs(m.Pattern, args)
	if err != nil {
		e.diags = append(e.diags, &diag.Diagnostic{
			Severity: diag.SeverityError,
			Stage:    diag.StageMacro,
			Code:     "E_MACRO_ARITY",
			Position: call.Pos(),
			Message:  "macro '" + m.Name + "': " + err.Error(),
		})
		return &ast.Literal{Kind: ast.NilLit, P: call.Pos()}
	}
	renames := make(map[string]string, len(m.Introduced))
	for name := range m.Introduced {
		renames[name] = e.gensym.next(name)
	}
	ctx := &instCtx{bindings: bindings, renames: renames}
	if len(m.Body) == 1 {
		return ctx.instantiate(m.Body[0])
	}
	elems := make([]ast.Node, 0, len(m.Body)+1)
	elems = append(elems, &ast.Symbol{Name: "do", P: call.Pos()})
	for _, b := range m.Body {
		elems = append(elems, ctx.instantiate(b))
	}
	return &ast.List{Elements: elems, P: call.Pos()}
}

func (e *Expander) expandChildren(n ast.Node) ast.Node {
	switch v := n.(type) {
	case *ast.List:
		elems := make([]ast.Node, len(v.Elements))
		for i, c := range v.Elements {
			elems[i] = e.expandFixedPoint(c)
		}
		return &ast.List{Elements: elems, P: v.P}
	case *ast.Vector:
		elems := make([]ast.Node, len(v.Elements))
		for i, c := range v.Elements {
			elems[i] = e.expandFixedPoint(c)
		}
		return &ast.Vector{Elements: elems, P: v.P}
	case *ast.Set:
		elems := make([]ast.Node, len(v.Elements))
		for i, c := range v.Elements {
			elems[i] = e.expandFixedPoint(c)
		}
		return &ast.Set{Elements: elems, P: v.P}
	case *ast.Map:
		entries := make([]ast.MapEntry, len(v.Entries))
		for i, en := range v.Entries {
			entries[i] = ast.MapEntry{Key: e.expandFixedPoint(en.Key), Value: e.expandFixedPoint(en.Value)}
		}
		return &ast.Map{Entries: entries, P: v.P}
	default:
		return n
	}
}
