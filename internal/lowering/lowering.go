// Package lowering performs the deterministic, structure-preserving
// translation from macro-expanded AST forms to IR nodes.
package lowering

import (
	"strings"

	"github.com/hql-lang/hql/internal/ast"
	"github.com/hql-lang/hql/internal/diag"
	"github.com/hql-lang/hql/internal/ir"
	"github.com/hql-lang/hql/internal/semantic"
)

// Lowerer translates one file's macro-expanded forms into an ir.Program.
type Lowerer struct {
	diags *diag.Bag
}

// New builds a Lowerer.
func New() *Lowerer { return &Lowerer{diags: &diag.Bag{}} }

// Diagnostics returns every diagnostic raised while lowering.
func (l *Lowerer) Diagnostics() []*diag.Diagnostic { return l.diags.All() }

// Lower translates every top-level form into the program body.
func (l *Lowerer) Lower(forms []ast.Node) *ir.Program {
	prog := &ir.Program{}
	for _, f := range forms {
		prog.Body = append(prog.Body, l.LowerStmt(f)...)
	}
	return prog
}

func splitType(name string) (string, string) {
	base, typ, ok := splitAnnotation(name)
	if !ok {
		return name, ""
	}
	return base, typ
}

func splitAnnotation(raw string) (string, string, bool) {
	i := strings.IndexByte(raw, ':')
	if i < 0 {
		return raw, "", false
	}
	return raw[:i], raw[i+1:], true
}

// LowerStmt lowers a form in statement position, which may expand to zero,
// one, or several IR statements (e.g. "(let (x e y f) body)" introduces one
// VarDecl per pair plus the lowered body).
func (l *Lowerer) LowerStmt(n ast.Node) []ir.Node {
	lst, ok := n.(*ast.List)
	if !ok {
		return []ir.Node{&ir.ExprStmt{Expr: l.LowerExpr(n), P: n.Pos()}}
	}
	switch ast.ListHead(lst) {
	case "let":
		return l.lowerLet(lst, ir.VarConst)
	case "var":
		return l.lowerLet(lst, ir.VarVar)
	case "const":
		return l.lowerLet(lst, ir.VarConst)
	case "set!":
		return []ir.Node{&ir.ExprStmt{Expr: l.lowerSet(lst), P: lst.Pos()}}
	case "do":
		var out []ir.Node
		for _, e := range lst.Elements[1:] {
			out = append(out, l.LowerStmt(e)...)
		}
		return out
	case "if":
		return []ir.Node{l.lowerIfStmt(lst)}
	case "cond":
		return []ir.Node{l.lowerCondStmt(lst)}
	case "case":
		return []ir.Node{l.lowerCaseStmt(lst)}
	case "fn":
		return []ir.Node{&ir.ExprStmt{Expr: l.lowerFn(lst, "", 1), P: lst.Pos()}}
	case "defn":
		return []ir.Node{l.lowerDefn(lst)}
	case "class":
		return []ir.Node{l.lowerClass(lst)}
	case "enum":
		return []ir.Node{l.lowerEnum(lst)}
	case "import":
		return []ir.Node{l.lowerImport(lst)}
	case "export":
		return []ir.Node{l.lowerExport(lst)}
	case "loop":
		return []ir.Node{l.lowerLoop(lst)}
	case "while":
		return []ir.Node{l.lowerWhile(lst)}
	case "for":
		return []ir.Node{l.lowerFor(lst)}
	case "doseq":
		return []ir.Node{l.lowerDoseq(lst)}
	case "try":
		return []ir.Node{l.lowerTry(lst)}
	case "throw":
		return []ir.Node{&ir.Throw{Arg: l.LowerExpr(lst.Elements[1]), P: lst.Pos()}}
	case "macro", "defmacro":
		return nil // macros never reach lowering except as leftover defs
	}
	return []ir.Node{&ir.ExprStmt{Expr: l.LowerExpr(n), P: n.Pos()}}
}

// LowerExpr lowers a form in expression position. Statement-shaped forms
// (loop, for, while, doseq, try) that appear here have no direct JS
// expression form, so lowerListExpr wraps their statement-position
// lowering in an IIFE (spec.md §4.6 rule 1); everything else produces the
// best direct expression form it can (Conditional for if/cond/case, a Call
// for anything lowering has no dedicated expression shape for).
func (l *Lowerer) LowerExpr(n ast.Node) ir.Node {
	switch v := n.(type) {
	case *ast.Literal:
		return l.lowerLiteral(v)
	case *ast.Symbol:
		return l.lowerSymbol(v)
	case *ast.Vector:
		elems := make([]ir.Node, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = l.LowerExpr(e)
		}
		return &ir.ArrayExpr{Elements: elems, P: v.P}
	case *ast.Map:
		props := make([]ir.ObjectProp, len(v.Entries))
		for i, e := range v.Entries {
			key := e.Key.String()
			if sym, ok := e.Key.(*ast.Symbol); ok && sym.IsKeyword {
				key = sym.Name
			}
			props[i] = ir.ObjectProp{Key: key, Value: l.LowerExpr(e.Value)}
		}
		return &ir.ObjectExpr{Props: props, P: v.P}
	case *ast.Set:
		elems := make([]ir.Node, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = l.LowerExpr(e)
		}
		return &ir.New{Callee: &ir.Identifier{Name: "Set", P: v.P}, Args: []ir.Node{&ir.ArrayExpr{Elements: elems, P: v.P}}, P: v.P}
	case *ast.List:
		return l.lowerListExpr(v)
	}
	return &ir.Literal{Kind: ir.NullLit, P: n.Pos()}
}

func (l *Lowerer) lowerLiteral(lit *ast.Literal) ir.Node {
	switch lit.Kind {
	case ast.NumberLit:
		return &ir.Literal{Kind: ir.NumberLit, Value: lit.Value, P: lit.P}
	case ast.StringLit:
		return &ir.Literal{Kind: ir.StringLit, Value: lit.Value, P: lit.P}
	case ast.BooleanLit:
		return &ir.Literal{Kind: ir.BooleanLit, Value: lit.Value, P: lit.P}
	default:
		return &ir.Literal{Kind: ir.NullLit, P: lit.P}
	}
}

func (l *Lowerer) lowerSymbol(s *ast.Symbol) ir.Node {
	if s.IsKeyword {
		return &ir.Literal{Kind: ir.StringLit, Value: s.Name, P: s.P}
	}
	if strings.Contains(s.Name, ".") && !strings.HasPrefix(s.Name, ".") {
		parts := strings.Split(s.Name, ".")
		var expr ir.Node = &ir.Identifier{Name: parts[0], P: s.P}
		for _, p := range parts[1:] {
			expr = &ir.Member{Object: expr, Property: p, P: s.P}
		}
		return expr
	}
	if semantic.OperatorTable[s.Name] {
		return &ir.Call{Callee: &ir.Identifier{Name: "__hql_get_op", P: s.P}, Args: []ir.Node{&ir.Literal{Kind: ir.StringLit, Value: s.Name, P: s.P}}, P: s.P}
	}
	base, typ := splitType(s.Name)
	return &ir.Identifier{Name: sanitize(base), Type: typ, P: s.P}
}

func (l *Lowerer) lowerListExpr(lst *ast.List) ir.Node {
	if len(lst.Elements) == 0 {
		return &ir.ArrayExpr{P: lst.P}
	}
	switch ast.ListHead(lst) {
	case "if":
		return l.lowerIfExpr(lst)
	case "cond":
		return l.lowerCondExpr(lst)
	case "case":
		return l.lowerCaseExpr(lst)
	case "do":
		var last ir.Node = &ir.Literal{Kind: ir.NullLit, P: lst.P}
		for _, e := range lst.Elements[1:] {
			last = l.LowerExpr(e)
		}
		return last
	case "quote":
		return l.lowerQuote(lst.Elements[1])
	case "fn":
		return l.lowerFn(lst, "", 1)
	case "get":
		return &ir.Call{Callee: &ir.Identifier{Name: "__hql_get", P: lst.P}, Args: l.lowerArgs(lst.Elements[1:]), P: lst.P}
	case "range":
		return &ir.Call{Callee: &ir.Identifier{Name: "__hql_range", P: lst.P}, Args: l.lowerArgs(lst.Elements[1:]), P: lst.P}
	case "new":
		return &ir.New{Callee: l.LowerExpr(lst.Elements[1]), Args: l.lowerArgs(lst.Elements[2:]), P: lst.P}
	case "lazy-seq":
		body := lst.Elements[1:]
		thunk := &ir.FuncExpr{Body: l.lowerImplicitReturnBody(body), P: lst.P}
		return &ir.Call{Callee: &ir.Identifier{Name: "__hql_lazy_seq", P: lst.P}, Args: []ir.Node{thunk}, P: lst.P}
	case "await":
		return &ir.Await{Arg: l.LowerExpr(lst.Elements[1]), P: lst.P}
	case "set!":
		return l.lowerSet(lst)
	case "loop", "while", "for", "doseq", "try":
		return l.wrapStmtAsIIFE(lst)
	}
	head, ok := lst.Elements[0].(*ast.Symbol)
	if ok && !head.IsKeyword {
		if strings.Contains(head.Name, ".") {
			parts := strings.Split(head.Name, ".")
			if len(parts) >= 2 {
				var obj ir.Node = &ir.Identifier{Name: sanitize(parts[0]), P: head.P}
				for _, p := range parts[1 : len(parts)-1] {
					obj = &ir.Member{Object: obj, Property: p, P: head.P}
				}
				return &ir.CallMember{Object: obj, Method: parts[len(parts)-1], Args: l.lowerArgs(lst.Elements[1:]), P: lst.P}
			}
		}
	}
	return &ir.Call{Callee: l.LowerExpr(lst.Elements[0]), Args: l.lowerArgs(lst.Elements[1:]), P: lst.P}
}

// wrapStmtAsIIFE lowers a statement-shaped form (loop, while, for, doseq,
// try) the ordinary way, then wraps the resulting statements in an
// immediately-invoked function expression so the whole thing can sit in
// expression position and evaluate to null, per spec.md §4.6 rule 1 and
// the glossary's "IIFE-wrapped for".
func (l *Lowerer) wrapStmtAsIIFE(lst *ast.List) ir.Node {
	body := append(l.LowerStmt(lst), &ir.Return{Arg: &ir.Literal{Kind: ir.NullLit, P: lst.P}, P: lst.P})
	return &ir.Call{Callee: &ir.FuncExpr{Body: body, P: lst.P}, P: lst.P}
}

func (l *Lowerer) lowerArgs(elems []ast.Node) []ir.Node {
	out := make([]ir.Node, len(elems))
	for i, e := range elems {
		out[i] = l.LowerExpr(e)
	}
	return out
}

// lowerQuote reifies quoted data as JS literals: vectors to arrays, maps to
// object literals, symbols to symbol-tagged strings.
func (l *Lowerer) lowerQuote(n ast.Node) ir.Node {
	switch v := n.(type) {
	case *ast.Literal:
		return l.lowerLiteral(v)
	case *ast.Symbol:
		tag := v.Name
		if v.IsKeyword {
			tag = ":" + tag
		}
		return &ir.Literal{Kind: ir.StringLit, Value: "sym:" + tag, P: v.P}
	case *ast.Vector:
		elems := make([]ir.Node, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = l.lowerQuote(e)
		}
		return &ir.ArrayExpr{Elements: elems, P: v.P}
	case *ast.List:
		elems := make([]ir.Node, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = l.lowerQuote(e)
		}
		return &ir.ArrayExpr{Elements: elems, P: v.P}
	case *ast.Map:
		props := make([]ir.ObjectProp, len(v.Entries))
		for i, e := range v.Entries {
			props[i] = ir.ObjectProp{Key: e.Key.String(), Value: l.lowerQuote(e.Value)}
		}
		return &ir.ObjectExpr{Props: props, P: v.P}
	default:
		return &ir.Literal{Kind: ir.NullLit, P: n.Pos()}
	}
}

func (l *Lowerer) lowerSet(lst *ast.List) ir.Node {
	return &ir.Assignment{Op: "=", Target: l.LowerExpr(lst.Elements[1]), Value: l.LowerExpr(lst.Elements[2]), P: lst.P}
}

func (l *Lowerer) lowerLet(lst *ast.List, kind ir.VarKind) []ir.Node {
	// "(let name expr)": a single non-destructuring binding with no body,
	// as opposed to the "(let [name expr ...] body...)" multi-binding form.
	if len(lst.Elements) == 3 {
		if name, ok := lst.Elements[1].(*ast.Symbol); ok {
			base, typ := splitType(name.Name)
			return []ir.Node{&ir.VarDecl{Kind: kind, Name: sanitize(base), Type: typ, Init: l.LowerExpr(lst.Elements[2]), P: lst.P}}
		}
	}
	if len(lst.Elements) < 2 {
		return nil
	}
	var pairs []ast.Node
	switch b := lst.Elements[1].(type) {
	case *ast.Vector:
		pairs = b.Elements
	case *ast.List:
		pairs = b.Elements
	default:
		return nil
	}
	var out []ir.Node
	for i := 0; i+1 < len(pairs); i += 2 {
		if name, ok := pairs[i].(*ast.Symbol); ok {
			base, typ := splitType(name.Name)
			out = append(out, &ir.VarDecl{Kind: kind, Name: sanitize(base), Type: typ, Init: l.LowerExpr(pairs[i+1]), P: lst.P})
		}
	}
	for _, b := range lst.Elements[2:] {
		out = append(out, l.LowerStmt(b)...)
	}
	return out
}

func (l *Lowerer) lowerIfStmt(lst *ast.List) ir.Node {
	n := &ir.If{Test: l.LowerExpr(lst.Elements[1]), P: lst.P}
	if len(lst.Elements) > 2 {
		n.Then = &ir.Block{Body: l.LowerStmt(lst.Elements[2]), P: lst.Elements[2].Pos()}
	}
	if len(lst.Elements) > 3 {
		n.Else = &ir.Block{Body: l.LowerStmt(lst.Elements[3]), P: lst.Elements[3].Pos()}
	}
	return n
}

func (l *Lowerer) lowerIfExpr(lst *ast.List) ir.Node {
	cond := &ir.Conditional{Test: l.LowerExpr(lst.Elements[1]), P: lst.P}
	if len(lst.Elements) > 2 {
		cond.Cons = l.LowerExpr(lst.Elements[2])
	} else {
		cond.Cons = &ir.Literal{Kind: ir.NullLit, P: lst.P}
	}
	if len(lst.Elements) > 3 {
		cond.Alt = l.LowerExpr(lst.Elements[3])
	} else {
		cond.Alt = &ir.Literal{Kind: ir.NullLit, P: lst.P}
	}
	return cond
}

// lowerCondExpr right-folds "(cond (p1 e1) (p2 e2) ... )" into nested
// conditional expressions.
func (l *Lowerer) lowerCondExpr(lst *ast.List) ir.Node {
	return l.foldCondAt(lst.Elements[1:], 0)
}

func (l *Lowerer) foldCondAt(clauses []ast.Node, i int) ir.Node {
	if i >= len(clauses) {
		return &ir.Literal{Kind: ir.NullLit}
	}
	cl, ok := clauses[i].(*ast.List)
	if !ok || len(cl.Elements) < 2 {
		return &ir.Literal{Kind: ir.NullLit}
	}
	if sym, ok := cl.Elements[0].(*ast.Symbol); ok && sym.Name == "else" {
		return l.LowerExpr(cl.Elements[1])
	}
	return &ir.Conditional{
		Test: l.LowerExpr(cl.Elements[0]),
		Cons: l.LowerExpr(cl.Elements[1]),
		Alt:  l.foldCondAt(clauses, i+1),
		P:    cl.Pos(),
	}
}

func (l *Lowerer) lowerCondStmt(lst *ast.List) ir.Node {
	return &ir.ExprStmt{Expr: l.lowerCondExpr(lst), P: lst.P}
}

// lowerCaseExpr right-folds "(case v (k1 e1) ... (else e))" into nested
// conditionals comparing v === kN.
func (l *Lowerer) lowerCaseExpr(lst *ast.List) ir.Node {
	subject := l.LowerExpr(lst.Elements[1])
	return l.foldCaseAt(subject, lst.Elements[2:], 0)
}

func (l *Lowerer) foldCaseAt(subject ir.Node, clauses []ast.Node, i int) ir.Node {
	if i >= len(clauses) {
		return &ir.Literal{Kind: ir.NullLit}
	}
	cl, ok := clauses[i].(*ast.List)
	if !ok || len(cl.Elements) < 2 {
		return &ir.Literal{Kind: ir.NullLit}
	}
	if sym, ok := cl.Elements[0].(*ast.Symbol); ok && sym.Name == "else" {
		return l.LowerExpr(cl.Elements[1])
	}
	return &ir.Conditional{
		Test: &ir.Binary{Op: "===", Left: subject, Right: l.LowerExpr(cl.Elements[0]), P: cl.Pos()},
		Cons: l.LowerExpr(cl.Elements[1]),
		Alt:  l.foldCaseAt(subject, clauses, i+1),
		P:    cl.Pos(),
	}
}

func (l *Lowerer) lowerCaseStmt(lst *ast.List) ir.Node {
	return &ir.ExprStmt{Expr: l.lowerCaseExpr(lst), P: lst.P}
}

func (l *Lowerer) lowerParams(v *ast.Vector) []ir.Param {
	var out []ir.Param
	for i := 0; i < len(v.Elements); i++ {
		e := v.Elements[i]
		if sym, ok := e.(*ast.Symbol); ok && sym.Name == "&" {
			if i+1 < len(v.Elements) {
				if rest, ok := v.Elements[i+1].(*ast.Symbol); ok {
					base, typ := splitType(rest.Name)
					out = append(out, ir.Param{Name: sanitize(base), Type: typ, Rest: true})
				}
			}
			i++
			continue
		}
		if sym, ok := e.(*ast.Symbol); ok {
			base, typ := splitType(sym.Name)
			p := ir.Param{Name: sanitize(base), Type: typ}
			if i+1 < len(v.Elements) {
				if dl, ok := v.Elements[i+1].(*ast.List); ok && ast.ListHead(dl) == "=" && len(dl.Elements) == 2 {
					p.Default = l.LowerExpr(dl.Elements[1])
					i++
				}
			}
			out = append(out, p)
		}
	}
	return out
}

func (l *Lowerer) lowerImplicitReturnBody(forms []ast.Node) []ir.Node {
	var out []ir.Node
	for i, f := range forms {
		if i == len(forms)-1 {
			out = append(out, &ir.Return{Arg: l.LowerExpr(f), P: f.Pos()})
		} else {
			out = append(out, l.LowerStmt(f)...)
		}
	}
	return out
}

func (l *Lowerer) lowerFn(lst *ast.List, name string, paramsIdx int) ir.Node {
	if len(lst.Elements) <= paramsIdx {
		return &ir.FuncExpr{P: lst.P}
	}
	params, _ := lst.Elements[paramsIdx].(*ast.Vector)
	bodyStart := paramsIdx + 1
	retType := ""
	if bodyStart < len(lst.Elements) {
		if sym, ok := lst.Elements[bodyStart].(*ast.Symbol); ok && strings.HasPrefix(sym.Name, ":") {
			retType = strings.TrimPrefix(sym.Name, ":")
			bodyStart++
		}
	}
	body := l.lowerImplicitReturnBody(lst.Elements[bodyStart:])
	if params == nil {
		params = &ast.Vector{}
	}
	if name == "" {
		return &ir.FuncExpr{Params: l.lowerParams(params), ReturnType: retType, Body: body, P: lst.P}
	}
	return &ir.FuncDecl{Name: sanitize(name), Params: l.lowerParams(params), ReturnType: retType, Body: body, P: lst.P}
}

func (l *Lowerer) lowerDefn(lst *ast.List) ir.Node {
	name, _ := lst.Elements[1].(*ast.Symbol)
	n := l.lowerFn(lst, name.Name, 2)
	return n
}

func (l *Lowerer) lowerClass(lst *ast.List) ir.Node {
	name, _ := lst.Elements[1].(*ast.Symbol)
	cd := &ir.ClassDecl{Name: name.Name, P: lst.P}
	for _, member := range lst.Elements[2:] {
		ml, ok := member.(*ast.List)
		if !ok {
			continue
		}
		switch ast.ListHead(ml) {
		case "constructor":
			cd.HasConstructor = true
			params, _ := ml.Elements[1].(*ast.Vector)
			if params == nil {
				params = &ast.Vector{}
			}
			cd.CtorParams = l.lowerParams(params)
			cd.CtorBody = l.lowerStmtsOf(ml.Elements[2:])
		case "fn":
			mname, _ := ml.Elements[1].(*ast.Symbol)
			params, _ := ml.Elements[2].(*ast.Vector)
			if params == nil {
				params = &ast.Vector{}
			}
			cd.Methods = append(cd.Methods, ir.Method{Name: mname.Name, Params: l.lowerParams(params), Body: l.lowerImplicitReturnBody(ml.Elements[3:])})
		case "var", "let":
			fname, _ := ml.Elements[1].(*ast.Symbol)
			var init ir.Node
			if len(ml.Elements) > 2 {
				init = l.LowerExpr(ml.Elements[2])
			}
			base, typ := splitType(fname.Name)
			cd.Fields = append(cd.Fields, ir.Field{Name: sanitize(base), Type: typ, Init: init, Mutable: ast.ListHead(ml) == "var"})
		}
	}
	return cd
}

func (l *Lowerer) lowerStmtsOf(forms []ast.Node) []ir.Node {
	var out []ir.Node
	for _, f := range forms {
		out = append(out, l.LowerStmt(f)...)
	}
	return out
}

func (l *Lowerer) lowerEnum(lst *ast.List) ir.Node {
	name, _ := lst.Elements[1].(*ast.Symbol)
	ed := &ir.EnumDecl{Name: name.Name, P: lst.P}
	for _, c := range lst.Elements[2:] {
		cl, ok := c.(*ast.List)
		if !ok || ast.ListHead(cl) != "case" {
			continue
		}
		cname, _ := cl.Elements[1].(*ast.Symbol)
		ec := ir.EnumCase{Name: cname.Name}
		if len(cl.Elements) > 2 {
			ec.RawValue = l.LowerExpr(cl.Elements[2])
		}
		ed.Cases = append(ed.Cases, ec)
	}
	return ed
}

func (l *Lowerer) lowerLoop(lst *ast.List) ir.Node {
	bindings, _ := lst.Elements[1].(*ast.Vector)
	var inits []ir.Node
	var names []string
	for i := 0; i+1 < len(bindings.Elements); i += 2 {
		if sym, ok := bindings.Elements[i].(*ast.Symbol); ok {
			base, typ := splitType(sym.Name)
			names = append(names, sanitize(base))
			inits = append(inits, &ir.VarDecl{Kind: ir.VarLet, Name: sanitize(base), Type: typ, Init: l.LowerExpr(bindings.Elements[i+1]), P: lst.P})
		}
	}
	body := l.rewriteRecur(lst.Elements[2:], names)
	block := &ir.Block{Body: append(inits, &ir.While{Test: &ir.Literal{Kind: ir.BooleanLit, Value: true, P: lst.P}, Body: body, P: lst.P}), P: lst.P}
	return block
}

// rewriteRecur lowers a loop body, turning a tail-position "(recur v...)"
// into reassignments of the loop's bound names followed by "continue".
func (l *Lowerer) rewriteRecur(forms []ast.Node, names []string) []ir.Node {
	var out []ir.Node
	for i, f := range forms {
		if i == len(forms)-1 {
			out = append(out, l.lowerTailForRecur(f, names)...)
		} else {
			out = append(out, l.LowerStmt(f)...)
		}
	}
	return out
}

func (l *Lowerer) lowerTailForRecur(n ast.Node, names []string) []ir.Node {
	lst, ok := n.(*ast.List)
	if !ok {
		return []ir.Node{&ir.ExprStmt{Expr: l.LowerExpr(n), P: n.Pos()}}
	}
	switch ast.ListHead(lst) {
	case "recur":
		var out []ir.Node
		args := lst.Elements[1:]
		for i, a := range args {
			if i >= len(names) {
				break
			}
			out = append(out, &ir.ExprStmt{Expr: &ir.Assignment{Op: "=", Target: &ir.Identifier{Name: names[i], P: a.Pos()}, Value: l.LowerExpr(a), P: a.Pos()}, P: a.Pos()})
		}
		out = append(out, &ir.ExprStmt{Expr: &ir.Identifier{Name: "continue", P: lst.P}, P: lst.P})
		return out
	case "if":
		n := &ir.If{Test: l.LowerExpr(lst.Elements[1]), P: lst.P}
		if len(lst.Elements) > 2 {
			n.Then = &ir.Block{Body: l.lowerTailForRecur(lst.Elements[2], names), P: lst.Elements[2].Pos()}
		}
		if len(lst.Elements) > 3 {
			n.Else = &ir.Block{Body: l.lowerTailForRecur(lst.Elements[3], names), P: lst.Elements[3].Pos()}
		}
		return []ir.Node{n}
	case "do":
		return l.rewriteRecur(lst.Elements[1:], names)
	}
	return []ir.Node{&ir.ExprStmt{Expr: l.LowerExpr(n), P: n.Pos()}}
}

func (l *Lowerer) lowerWhile(lst *ast.List) ir.Node {
	return &ir.While{Test: l.LowerExpr(lst.Elements[1]), Body: l.lowerStmtsOf(lst.Elements[2:]), P: lst.P}
}

// lowerFor lowers a generic "(for [i range-call] body...)" form; the
// for_each/range → native for-loop pattern is the optimizer's job once
// this has gone through the general __hql_for_each path.
func (l *Lowerer) lowerFor(lst *ast.List) ir.Node {
	binding, _ := lst.Elements[1].(*ast.Vector)
	if binding == nil || len(binding.Elements) < 2 {
		return &ir.Block{P: lst.P}
	}
	iterVar, _ := binding.Elements[0].(*ast.Symbol)
	seq := l.LowerExpr(binding.Elements[1])
	fn := &ir.FuncExpr{Params: []ir.Param{{Name: sanitize(iterVar.Name)}}, Body: l.lowerStmtsOf(lst.Elements[2:]), P: lst.P}
	call := &ir.Call{Callee: &ir.Identifier{Name: "__hql_for_each", P: lst.P}, Args: []ir.Node{
		&ir.Call{Callee: &ir.Identifier{Name: "__hql_toSequence", P: lst.P}, Args: []ir.Node{seq}, P: lst.P},
		fn,
	}, P: lst.P}
	return &ir.ExprStmt{Expr: call, P: lst.P}
}

func (l *Lowerer) lowerDoseq(lst *ast.List) ir.Node {
	binding, _ := lst.Elements[1].(*ast.Vector)
	iterVar, _ := binding.Elements[0].(*ast.Symbol)
	seq := l.LowerExpr(binding.Elements[1])
	fn := &ir.FuncExpr{Params: []ir.Param{{Name: sanitize(iterVar.Name)}}, Body: l.lowerStmtsOf(lst.Elements[2:]), P: lst.P}
	call := &ir.Call{Callee: &ir.Identifier{Name: "__hql_for_each", P: lst.P}, Args: []ir.Node{
		&ir.Call{Callee: &ir.Identifier{Name: "__hql_toIterable", P: lst.P}, Args: []ir.Node{seq}, P: lst.P},
		fn,
	}, P: lst.P}
	return &ir.ExprStmt{Expr: call, P: lst.P}
}

func (l *Lowerer) lowerTry(lst *ast.List) ir.Node {
	t := &ir.Try{P: lst.P}
	for _, part := range lst.Elements[1:] {
		pl, ok := part.(*ast.List)
		if !ok {
			t.Block = append(t.Block, l.LowerStmt(part)...)
			continue
		}
		switch ast.ListHead(pl) {
		case "catch":
			t.HasCatch = true
			if p, ok := pl.Elements[1].(*ast.Symbol); ok {
				t.CatchParam = sanitize(p.Name)
			}
			t.CatchBody = l.lowerStmtsOf(pl.Elements[2:])
		case "finally":
			t.HasFinally = true
			t.FinallyBody = l.lowerStmtsOf(pl.Elements[1:])
		default:
			t.Block = append(t.Block, l.LowerStmt(part)...)
		}
	}
	return t
}

// lowerImport handles all three import shapes the bundler resolves:
// "(import [a b as c] from \"m\")", "(import m from \"m\")", and the
// side-effect-only "(import \"m\")".
func (l *Lowerer) lowerImport(lst *ast.List) ir.Node {
	if len(lst.Elements) < 2 {
		return &ir.Import{P: lst.P}
	}
	switch spec := lst.Elements[1].(type) {
	case *ast.Vector:
		module := ""
		if len(lst.Elements) >= 4 {
			if m, ok := lst.Elements[3].(*ast.Literal); ok {
				module, _ = m.Value.(string)
			}
		}
		var specs []ir.ImportSpecifier
		i := 0
		for i < len(spec.Elements) {
			s, ok := spec.Elements[i].(*ast.Symbol)
			if !ok {
				i++
				continue
			}
			local, imported := sanitize(s.Name), sanitize(s.Name)
			if i+2 < len(spec.Elements) {
				if as, ok := spec.Elements[i+1].(*ast.Symbol); ok && as.Name == "as" {
					if alias, ok := spec.Elements[i+2].(*ast.Symbol); ok {
						local = sanitize(alias.Name)
						specs = append(specs, ir.ImportSpecifier{Local: local, Imported: imported})
						i += 3
						continue
					}
				}
			}
			i++
			specs = append(specs, ir.ImportSpecifier{Local: local, Imported: imported})
		}
		return &ir.Import{Specifiers: specs, Source: module, P: lst.P}
	case *ast.Symbol:
		module := ""
		if len(lst.Elements) >= 3 {
			if m, ok := lst.Elements[2].(*ast.Literal); ok {
				module, _ = m.Value.(string)
			}
		}
		return &ir.Import{Namespace: sanitize(spec.Name), Source: module, P: lst.P}
	case *ast.Literal:
		module, _ := spec.Value.(string)
		return &ir.Import{Source: module, SideEffect: true, P: lst.P}
	}
	return &ir.Import{P: lst.P}
}

// lowerExport handles "(export [a b])" and "(export default x)".
func (l *Lowerer) lowerExport(lst *ast.List) ir.Node {
	if len(lst.Elements) < 2 {
		return &ir.Export{P: lst.P}
	}
	switch spec := lst.Elements[1].(type) {
	case *ast.Vector:
		var names []string
		for _, e := range spec.Elements {
			if s, ok := e.(*ast.Symbol); ok {
				names = append(names, sanitize(s.Name))
			}
		}
		return &ir.Export{Names: names, P: lst.P}
	case *ast.Symbol:
		if spec.Name == "default" && len(lst.Elements) >= 3 {
			if s, ok := lst.Elements[2].(*ast.Symbol); ok {
				return &ir.Export{Default: true, DefaultName: sanitize(s.Name), P: lst.P}
			}
		}
	}
	return &ir.Export{P: lst.P}
}

// sanitize rewrites an HQL identifier into a valid JS identifier. The
// transform is deterministic and total but not injective: "-" becomes
// "_", so "a-b" and "a_b" both map to "a_b". Characters other than the
// ones handled below are kept unchanged.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '-':
			b.WriteString("_")
		case '?':
			b.WriteString("_QMARK_")
		case '!':
			b.WriteString("_BANG_")
		case '*':
			b.WriteString("_STAR_")
		case '/':
			b.WriteString("_SLASH_")
		case '+':
			b.WriteString("_PLUS_")
		case '>':
			b.WriteString("_GT_")
		case '<':
			b.WriteString("_LT_")
		case '=':
			b.WriteString("_EQ_")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
