package optimizer

import "github.com/hql-lang/hql/internal/ir"

// rewriteForEachRange matches:
//
//	__hql_for_each(__hql_toSequence(__hql_range(args...)), function(i) { body })
//
// with exactly one iteratee parameter, and rewrites it to a native
// "for (let i = start; i < end; i += step)" loop. Any range argument that
// is not already a trivial expression (identifier or literal) is first
// bound to a fresh temporary, per the soundness discipline: the rewrite
// must not evaluate a side-effecting operand more than the original
// single evaluation implied.
var tempCounter int

func rewriteForEachRange(n ir.Node) (ir.Node, []ir.Node, bool) {
	call, ok := n.(*ir.Call)
	if !ok || !isHelperCall(call.Callee, "__hql_for_each") || len(call.Args) != 2 {
		return nil, nil, false
	}
	seqCall, ok := call.Args[0].(*ir.Call)
	if !ok || !isHelperCall(seqCall.Callee, "__hql_toSequence") || len(seqCall.Args) != 1 {
		return nil, nil, false
	}
	rangeCall, ok := seqCall.Args[0].(*ir.Call)
	if !ok || !isHelperCall(rangeCall.Callee, "__hql_range") {
		return nil, nil, false
	}
	fn, ok := call.Args[1].(*ir.FuncExpr)
	if !ok || len(fn.Params) != 1 {
		return nil, nil, false
	}

	var pre []ir.Node
	bind := func(arg ir.Node, label string) ir.Node {
		if isTrivial(arg) {
			return arg
		}
		tempCounter++
		name := "__hql_tmp" + label + itoa(tempCounter)
		pre = append(pre, &ir.VarDecl{Kind: ir.VarConst, Name: name, Init: optimizeExpr(arg), P: arg.Pos()})
		return &ir.Identifier{Name: name, P: arg.Pos()}
	}

	var start, end, step ir.Node
	switch len(rangeCall.Args) {
	case 1:
		start = &ir.Literal{Kind: ir.NumberLit, Value: 0.0, P: rangeCall.P}
		end = bind(rangeCall.Args[0], "_end")
		step = &ir.Literal{Kind: ir.NumberLit, Value: 1.0, P: rangeCall.P}
	case 2:
		start = bind(rangeCall.Args[0], "_start")
		end = bind(rangeCall.Args[1], "_end")
		step = &ir.Literal{Kind: ir.NumberLit, Value: 1.0, P: rangeCall.P}
	case 3:
		start = bind(rangeCall.Args[0], "_start")
		end = bind(rangeCall.Args[1], "_end")
		step = bind(rangeCall.Args[2], "_step")
	default:
		return nil, nil, false
	}

	iterName := fn.Params[0].Name
	forLoop := &ir.For{
		Init: &ir.VarDecl{Kind: ir.VarLet, Name: iterName, Init: start, P: call.P},
		Test: &ir.Binary{Op: "<", Left: &ir.Identifier{Name: iterName, P: call.P}, Right: end, P: call.P},
		Update: &ir.Assignment{
			Op:     "+=",
			Target: &ir.Identifier{Name: iterName, P: call.P},
			Value:  step,
			P:      call.P,
		},
		Body: optimizeStmts(fn.Body),
		P:    call.P,
	}
	return forLoop, pre, true
}

func isHelperCall(callee ir.Node, name string) bool {
	id, ok := callee.(*ir.Identifier)
	return ok && id.Name == name
}

// isTrivial reports whether re-evaluating n twice is observably safe: a
// bare identifier or literal, never a call or anything with side effects.
func isTrivial(n ir.Node) bool {
	switch n.(type) {
	case *ir.Identifier, *ir.Literal:
		return true
	default:
		return false
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
