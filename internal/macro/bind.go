package macro

import (
	"fmt"

	"github.com/hql-lang/hql/internal/ast"
)

// binding is what a pattern variable is bound to: either a single AST node
// or, for a "& rest" parameter, a sequence of nodes that may later be
// spliced via unquote-splice.
type binding struct {
	node  ast.Node
	multi []ast.Node
	isSet bool
}

// bindArgs matches call arguments against a macro's parameter pattern,
// supporting positional params, "& rest", and "(= default)" forms, and
// reports an arity mismatch as an error.
func bindArgs(pattern *ast.Vector, args []ast.Node) (map[string]binding, error) {
	out := make(map[string]binding)
	if err := bindElements(pattern.Elements, args, out); err != nil {
		return nil, err
	}
	return out, nil
}

func bindElements(params []ast.Node, args []ast.Node, out map[string]binding) error {
	ai := 0
	for pi := 0; pi < len(params); pi++ {
		p := params[pi]
		if s, ok := p.(*ast.Symbol); ok && s.Name == "&" {
			if pi+1 >= len(params) {
				return fmt.Errorf("malformed rest parameter: '&' must be followed by a name")
			}
			rest, ok := params[pi+1].(*ast.Symbol)
			if !ok {
				return fmt.Errorf("malformed rest parameter: '&' must be followed by a symbol")
			}
			var tail []ast.Node
			if ai < len(args) {
				tail = args[ai:]
			}
			out[rest.Name] = binding{multi: tail, isSet: true}
			return nil
		}
		if s, ok := p.(*ast.Symbol); ok {
			if l, ok2 := peekDefault(params, pi); ok2 {
				if ai < len(args) {
					out[s.Name] = binding{node: args[ai], isSet: true}
					ai++
				} else {
					out[s.Name] = binding{node: l.Elements[1], isSet: true}
				}
				pi++
				continue
			}
		}
		if v, ok := p.(*ast.Vector); ok {
			if ai >= len(args) {
				return fmt.Errorf("too few arguments for destructured parameter")
			}
			sub, ok := args[ai].(*ast.Vector)
			if !ok {
				return fmt.Errorf("expected a vector argument to destructure, got %s", args[ai].String())
			}
			if err := bindElements(v.Elements, sub.Elements, out); err != nil {
				return err
			}
			ai++
			continue
		}
		s, ok := p.(*ast.Symbol)
		if !ok {
			return fmt.Errorf("unsupported macro parameter form: %s", p.String())
		}
		if ai >= len(args) {
			return fmt.Errorf("arity mismatch: missing argument for parameter '%s'", s.Name)
		}
		out[s.Name] = binding{node: args[ai], isSet: true}
		ai++
	}
	if ai < len(args) {
		return fmt.Errorf("arity mismatch: %d extra argument(s) supplied", len(args)-ai)
	}
	return nil
}

func isDefault(l *ast.List) bool {
	if len(l.Elements) != 2 {
		return false
	}
	s, ok := l.Elements[0].(*ast.Symbol)
	return ok && s.Name == "="
}

// peekDefault reports whether the element immediately after params[pi] is a
// "(= value)" default marker for the symbol at pi.
func peekDefault(params []ast.Node, pi int) (*ast.List, bool) {
	if pi+1 >= len(params) {
		return nil, false
	}
	l, ok := params[pi+1].(*ast.List)
	if !ok || !isDefault(l) {
		return nil, false
	}
	return l, true
}
