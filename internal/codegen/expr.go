package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hql-lang/hql/internal/ir"
)

// expr renders n as a target-text expression, marking any runtime helper
// identifier it references along the way.
func (e *Emitter) expr(n ir.Node) string {
	switch v := n.(type) {
	case *ir.Literal:
		return e.literal(v)
	case *ir.Identifier:
		e.markHelper(v.Name)
		return v.Name
	case *ir.Call:
		if id, ok := v.Callee.(*ir.Identifier); ok {
			e.markHelper(id.Name)
		}
		return fmt.Sprintf("%s(%s)", e.expr(v.Callee), e.exprList(v.Args))
	case *ir.CallMember:
		return fmt.Sprintf("%s.%s(%s)", e.expr(v.Object), v.Method, e.exprList(v.Args))
	case *ir.New:
		return fmt.Sprintf("new %s(%s)", e.expr(v.Callee), e.exprList(v.Args))
	case *ir.ArrayExpr:
		return "[" + e.exprList(v.Elements) + "]"
	case *ir.ObjectExpr:
		parts := make([]string, len(v.Props))
		for i, p := range v.Props {
			if p.Spread {
				parts[i] = "..." + e.expr(p.Value)
				continue
			}
			parts[i] = fmt.Sprintf("%s: %s", propKey(p.Key), e.expr(p.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *ir.Member:
		if v.Computed != nil {
			return fmt.Sprintf("%s[%s]", e.expr(v.Object), e.expr(v.Computed))
		}
		return e.expr(v.Object) + "." + v.Property
	case *ir.Binary:
		return fmt.Sprintf("(%s %s %s)", e.expr(v.Left), v.Op, e.expr(v.Right))
	case *ir.Unary:
		if v.Prefix {
			return v.Op + e.expr(v.Arg)
		}
		return e.expr(v.Arg) + v.Op
	case *ir.Assignment:
		return fmt.Sprintf("%s %s %s", e.expr(v.Target), v.Op, e.expr(v.Value))
	case *ir.Conditional:
		return fmt.Sprintf("(%s ? %s : %s)", e.expr(v.Test), e.expr(v.Cons), e.expr(v.Alt))
	case *ir.Await:
		return "await " + e.expr(v.Arg)
	case *ir.FuncExpr:
		return e.funcExpr(v)
	case *ir.JSMethodAccess:
		return e.expr(v.Object) + "." + v.Method
	}
	return ""
}

func (e *Emitter) funcExpr(v *ir.FuncExpr) string {
	var b strings.Builder
	if v.Async {
		b.WriteString("async ")
	}
	b.WriteString("function(")
	b.WriteString(e.paramList(v.Params))
	b.WriteString(") {\n")
	saved := e.buf
	e.buf = &strings.Builder{}
	e.indent++
	for _, s := range v.Body {
		e.writeStmt(s)
	}
	e.indent--
	inner := e.buf.String()
	e.buf = saved
	b.WriteString(inner)
	b.WriteString(e.pad())
	b.WriteString("}")
	return b.String()
}

func (e *Emitter) exprList(nodes []ir.Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = e.expr(n)
	}
	return strings.Join(parts, ", ")
}

func (e *Emitter) literal(v *ir.Literal) string {
	switch v.Kind {
	case ir.NumberLit:
		return formatNumber(v.Value)
	case ir.StringLit:
		s, _ := v.Value.(string)
		return strconv.Quote(s)
	case ir.BooleanLit:
		if b, _ := v.Value.(bool); b {
			return "true"
		}
		return "false"
	default:
		return "null"
	}
}

func formatNumber(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	case int:
		return strconv.Itoa(n)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func propKey(key string) string {
	if isValidIdentifier(key) {
		return key
	}
	return strconv.Quote(key)
}

func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}
