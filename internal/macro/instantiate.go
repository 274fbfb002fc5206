package macro

import (
	"github.com/hql-lang/hql/internal/ast"
)

// instCtx threads the pattern-variable bindings and the per-expansion
// hygienic rename table through a single body-template instantiation.
type instCtx struct {
	bindings map[string]binding
	renames  map[string]string
}

func (c *instCtx) rename(name string) string {
	if r, ok := c.renames[name]; ok {
		return r
	}
	return name
}

func cloneNode(n ast.Node) ast.Node {
	switch v := n.(type) {
	case *ast.Literal:
		cp := *v
		return &cp
	case *ast.Symbol:
		cp := *v
		return &cp
	case *ast.List:
		elems := make([]ast.Node, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = cloneNode(e)
		}
		return &ast.List{Elements: elems, P: v.P}
	case *ast.Vector:
		elems := make([]ast.Node, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = cloneNode(e)
		}
		return &ast.Vector{Elements: elems, P: v.P}
	case *ast.Set:
		elems := make([]ast.Node, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = cloneNode(e)
		}
		return &ast.Set{Elements: elems, P: v.P}
	case *ast.Map:
		entries := make([]ast.MapEntry, len(v.Entries))
		for i, e := range v.Entries {
			entries[i] = ast.MapEntry{Key: cloneNode(e.Key), Value: cloneNode(e.Value)}
		}
		return &ast.Map{Entries: entries, P: v.P}
	default:
		return n
	}
}

// instantiate walks a macro body template, substituting bound pattern
// variables with their call-site AST, renaming template-introduced
// identifiers for hygiene, and honoring quote/quasiquote overrides.
func (c *instCtx) instantiate(n ast.Node) ast.Node {
	switch v := n.(type) {
	case *ast.Symbol:
		if b, ok := c.bindings[v.Name]; ok && b.isSet {
			if b.node != nil {
				return cloneNode(b.node)
			}
			// a rest-bound symbol referenced bare: splice into a List so
			// the template's own shape stays structurally valid.
			elems := make([]ast.Node, len(b.multi))
			for i, e := range b.multi {
				elems[i] = cloneNode(e)
			}
			return &ast.List{Elements: elems, P: v.P}
		}
		cp := *v
		cp.Name = c.rename(v.Name)
		return &cp
	case *ast.List:
		switch ast.ListHead(v) {
		case "quote":
			if len(v.Elements) == 2 {
				return cloneNode(v.Elements[1])
			}
		case "quasiquote":
			if len(v.Elements) == 2 {
				return c.quasi(v.Elements[1], 1)
			}
		}
		return &ast.List{Elements: c.instantiateSpliceable(v.Elements), P: v.P}
	case *ast.Vector:
		return &ast.Vector{Elements: c.instantiateSpliceable(v.Elements), P: v.P}
	case *ast.Set:
		return &ast.Set{Elements: c.instantiateSpliceable(v.Elements), P: v.P}
	case *ast.Map:
		entries := make([]ast.MapEntry, len(v.Entries))
		for i, e := range v.Entries {
			entries[i] = ast.MapEntry{Key: c.instantiate(e.Key), Value: c.instantiate(e.Value)}
		}
		return &ast.Map{Entries: entries, P: v.P}
	default:
		return cloneNode(n)
	}
	return cloneNode(n)
}

// instantiateSpliceable instantiates a list of child forms, splicing in the
// elements of any "& rest"-bound symbol referenced bare in non-quoted
// template position (e.g. a variadic macro forwarding its rest args).
func (c *instCtx) instantiateSpliceable(elems []ast.Node) []ast.Node {
	var out []ast.Node
	for _, e := range elems {
		if s, ok := e.(*ast.Symbol); ok {
			if b, ok := c.bindings[s.Name]; ok && b.isSet && b.node == nil {
				for _, m := range b.multi {
					out = append(out, cloneNode(m))
				}
				continue
			}
		}
		out = append(out, c.instantiate(e))
	}
	return out
}

// quasi instantiates a quasiquoted template: literal parts are cloned
// as-is, "(unquote E)" is replaced with E instantiated against the
// bindings, and "(unquote-splice E)" splices E's elements into the
// enclosing list. depth tracks nested quasiquote/unquote balance.
func (c *instCtx) quasi(n ast.Node, depth int) ast.Node {
	l, ok := n.(*ast.List)
	if !ok {
		switch v := n.(type) {
		case *ast.Symbol:
			cp := *v
			cp.Name = c.rename(v.Name)
			return &cp
		case *ast.Vector:
			elems := make([]ast.Node, 0, len(v.Elements))
			for _, e := range v.Elements {
				elems = append(elems, c.quasiSpliceElem(e, depth)...)
			}
			return &ast.Vector{Elements: elems, P: v.P}
		default:
			return cloneNode(n)
		}
	}
	head := ast.ListHead(l)
	switch head {
	case "unquote":
		if depth == 1 && len(l.Elements) == 2 {
			return c.instantiate(l.Elements[1])
		}
		if len(l.Elements) == 2 {
			return &ast.List{Elements: []ast.Node{&ast.Symbol{Name: "unquote", P: l.Pos()}, c.quasi(l.Elements[1], depth-1)}, P: l.Pos()}
		}
	case "quasiquote":
		if len(l.Elements) == 2 {
			return &ast.List{Elements: []ast.Node{&ast.Symbol{Name: "quasiquote", P: l.Pos()}, c.quasi(l.Elements[1], depth+1)}, P: l.Pos()}
		}
	}
	elems := make([]ast.Node, 0, len(l.Elements))
	for _, e := range l.Elements {
		elems = append(elems, c.quasiSpliceElem(e, depth)...)
	}
	return &ast.List{Elements: elems, P: l.Pos()}
}

// quasiSpliceElem instantiates one element of a quasiquoted list, handling
// "(unquote-splice E)" by returning multiple elements to splice in place.
func (c *instCtx) quasiSpliceElem(e ast.Node, depth int) []ast.Node {
	if l, ok := e.(*ast.List); ok && ast.ListHead(l) == "unquote-splice" && len(l.Elements) == 2 {
		if depth == 1 {
			val := c.instantiate(l.Elements[1])
			if seq, ok := val.(*ast.List); ok {
				return seq.Elements
			}
			if seq, ok := val.(*ast.Vector); ok {
				return seq.Elements
			}
			return []ast.Node{val}
		}
		return []ast.Node{&ast.List{Elements: []ast.Node{&ast.Symbol{Name: "unquote-splice", P: l.Pos()}, c.quasi(l.Elements[1], depth-1)}, P: l.Pos()}}
	}
	return []ast.Node{c.quasi(e, depth)}
}
