package optimizer

import "github.com/hql-lang/hql/internal/ir"

// TrampolineSuffix marks a defn as opted in to mutual-recursion
// trampolining: "(defn fact-trampolined [n acc] ...)" lowers to a
// function named "fact_trampolined" (sanitize turns "-" into "_"), and
// Trampoline rewrites its tail calls to opted-in siblings into thunks.
// This is the source-level annotation the spec describes; HQL's AST
// carries no separate metadata channel, so the naming convention plays
// that role.
const TrampolineSuffix = "_trampolined"

// Trampoline finds every top-level FuncDecl whose name ends in
// TrampolineSuffix and rewrites self/mutual tail calls among that set
// into thunk-returning form. Invocation sites are left unchanged: nothing
// here wraps them, so a direct caller receives the thunk.
func Trampoline(prog *ir.Program) *ir.Program {
	names := map[string]bool{}
	for _, n := range prog.Body {
		if fd, ok := n.(*ir.FuncDecl); ok && hasSuffix(fd.Name, TrampolineSuffix) {
			names[fd.Name] = true
		}
	}
	if len(names) == 0 {
		return prog
	}
	for _, n := range prog.Body {
		fd, ok := n.(*ir.FuncDecl)
		if !ok || !names[fd.Name] {
			continue
		}
		fd.Body = trampolineTailBody(fd.Body, names)
	}
	return prog
}

// trampolineTailBody rewrites the final statement of a function body: a
// tail call to a trampoline-eligible sibling becomes "return function(){
// return sibling(args); }" so a caller that goes through __hql_trampoline
// or __hql_trampoline_gen can bounce it instead of growing the call stack. The tail call may sit
// directly behind a "return", or nested in the branches of a ternary
// produced by an "if" used in expression (implicit-return) position, or
// in the branches of a statement-form "if".
func trampolineTailBody(body []ir.Node, names map[string]bool) []ir.Node {
	if len(body) == 0 {
		return body
	}
	last := len(body) - 1
	switch v := body[last].(type) {
	case *ir.Return:
		if v.Arg != nil {
			v.Arg = trampolineTailExpr(v.Arg, names)
		}
	case *ir.If:
		v.Then = trampolineTailBlock(v.Then, names)
		if v.Else != nil {
			v.Else = trampolineTailBlock(v.Else, names)
		}
	}
	return body
}

// trampolineTailExpr rewrites a tail-position expression: a direct call
// to an opted-in sibling, or the branches of a ternary built from "if".
func trampolineTailExpr(e ir.Node, names map[string]bool) ir.Node {
	switch v := e.(type) {
	case *ir.Call:
		if id, ok := v.Callee.(*ir.Identifier); ok && names[id.Name] {
			return &ir.FuncExpr{Body: []ir.Node{&ir.Return{Arg: v, P: v.P}}, P: v.P}
		}
		return v
	case *ir.Conditional:
		v.Cons = trampolineTailExpr(v.Cons, names)
		v.Alt = trampolineTailExpr(v.Alt, names)
		return v
	default:
		return e
	}
}

func trampolineTailBlock(n ir.Node, names map[string]bool) ir.Node {
	b, ok := n.(*ir.Block)
	if !ok {
		return n
	}
	b.Body = trampolineTailBody(b.Body, names)
	return b
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
