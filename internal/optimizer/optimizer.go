// Package optimizer rewrites IR produced by lowering into equivalent,
// more efficient IR. Every rewrite is pattern-directed: a form that does
// not match a recognized shape is left untouched, so the optimizer never
// raises diagnostics of its own.
package optimizer

import "github.com/hql-lang/hql/internal/ir"

// Optimize rewrites every statement of prog in place and returns it.
func Optimize(prog *ir.Program) *ir.Program {
	prog.Body = optimizeStmts(prog.Body)
	return prog
}

func optimizeStmts(body []ir.Node) []ir.Node {
	out := make([]ir.Node, 0, len(body))
	for _, n := range body {
		out = append(out, optimizeStmt(n)...)
	}
	return out
}

// optimizeStmt returns the replacement statement sequence for n; most
// shapes return exactly one node, but the for_each/range rewrite may
// prepend temporary-binding VarDecls ahead of the resulting For loop.
func optimizeStmt(n ir.Node) []ir.Node {
	switch v := n.(type) {
	case *ir.ExprStmt:
		if rewritten, pre, ok := rewriteForEachRange(v.Expr); ok {
			return append(pre, rewritten)
		}
		v.Expr = optimizeExpr(v.Expr)
		return []ir.Node{v}
	case *ir.VarDecl:
		v.Init = optimizeExpr(v.Init)
		return []ir.Node{v}
	case *ir.Block:
		v.Body = optimizeStmts(v.Body)
		return []ir.Node{v}
	case *ir.If:
		v.Test = optimizeExpr(v.Test)
		v.Then = optimizeNodeAsBlock(v.Then)
		if v.Else != nil {
			v.Else = optimizeNodeAsBlock(v.Else)
		}
		return []ir.Node{v}
	case *ir.While:
		v.Test = optimizeExpr(v.Test)
		v.Body = optimizeStmts(v.Body)
		return []ir.Node{v}
	case *ir.For:
		v.Body = optimizeStmts(v.Body)
		return []ir.Node{v}
	case *ir.Try:
		v.Block = optimizeStmts(v.Block)
		v.CatchBody = optimizeStmts(v.CatchBody)
		v.FinallyBody = optimizeStmts(v.FinallyBody)
		return []ir.Node{v}
	case *ir.Return:
		if v.Arg != nil {
			v.Arg = optimizeExpr(v.Arg)
		}
		return []ir.Node{v}
	case *ir.Throw:
		v.Arg = optimizeExpr(v.Arg)
		return []ir.Node{v}
	case *ir.FuncDecl:
		v.Body = optimizeStmts(v.Body)
		return []ir.Node{v}
	case *ir.ClassDecl:
		v.CtorBody = optimizeStmts(v.CtorBody)
		for i := range v.Methods {
			v.Methods[i].Body = optimizeStmts(v.Methods[i].Body)
		}
		return []ir.Node{v}
	case *ir.Import, *ir.Export, *ir.EnumDecl:
		return []ir.Node{v}
	}
	return []ir.Node{n}
}

func optimizeNodeAsBlock(n ir.Node) ir.Node {
	if b, ok := n.(*ir.Block); ok {
		b.Body = optimizeStmts(b.Body)
		return b
	}
	return n
}

func optimizeExpr(n ir.Node) ir.Node {
	switch v := n.(type) {
	case *ir.Call:
		v.Callee = optimizeExpr(v.Callee)
		for i := range v.Args {
			v.Args[i] = optimizeExpr(v.Args[i])
		}
		return v
	case *ir.CallMember:
		v.Object = optimizeExpr(v.Object)
		for i := range v.Args {
			v.Args[i] = optimizeExpr(v.Args[i])
		}
		return v
	case *ir.New:
		v.Callee = optimizeExpr(v.Callee)
		for i := range v.Args {
			v.Args[i] = optimizeExpr(v.Args[i])
		}
		return v
	case *ir.ArrayExpr:
		for i := range v.Elements {
			v.Elements[i] = optimizeExpr(v.Elements[i])
		}
		return v
	case *ir.ObjectExpr:
		for i := range v.Props {
			v.Props[i].Value = optimizeExpr(v.Props[i].Value)
		}
		return v
	case *ir.Member:
		v.Object = optimizeExpr(v.Object)
		if v.Computed != nil {
			v.Computed = optimizeExpr(v.Computed)
		}
		return v
	case *ir.Binary:
		v.Left = optimizeExpr(v.Left)
		v.Right = optimizeExpr(v.Right)
		return v
	case *ir.Unary:
		v.Arg = optimizeExpr(v.Arg)
		return v
	case *ir.Assignment:
		v.Target = optimizeExpr(v.Target)
		v.Value = optimizeExpr(v.Value)
		return v
	case *ir.Conditional:
		v.Test = optimizeExpr(v.Test)
		v.Cons = optimizeExpr(v.Cons)
		v.Alt = optimizeExpr(v.Alt)
		return v
	case *ir.Await:
		v.Arg = optimizeExpr(v.Arg)
		return v
	case *ir.FuncExpr:
		v.Body = optimizeStmts(v.Body)
		return v
	}
	return n
}
