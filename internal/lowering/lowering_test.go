package lowering

import (
	"testing"

	"github.com/hql-lang/hql/internal/ir"
	"github.com/hql-lang/hql/internal/lexer"
	"github.com/hql-lang/hql/internal/parser"
)

func lowerSource(t *testing.T, src string) *ir.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	forms := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	return New().Lower(forms)
}

// exprPositionIIFE pulls the Call/FuncExpr out of "(let r <form>)" lowering
// and fails loudly if the form didn't lower to an IIFE.
func exprPositionIIFE(t *testing.T, prog *ir.Program) (*ir.Call, *ir.FuncExpr) {
	t.Helper()
	if len(prog.Body) == 0 {
		t.Fatalf("expected at least one statement")
	}
	decl, ok := prog.Body[0].(*ir.VarDecl)
	if !ok {
		t.Fatalf("expected *ir.VarDecl, got %T", prog.Body[0])
	}
	call, ok := decl.Init.(*ir.Call)
	if !ok {
		t.Fatalf("expected a statement-shaped form in expression position to lower to an IIFE *ir.Call, got %T", decl.Init)
	}
	fn, ok := call.Callee.(*ir.FuncExpr)
	if !ok {
		t.Fatalf("expected the IIFE's callee to be a *ir.FuncExpr, got %T", call.Callee)
	}
	if len(call.Args) != 0 {
		t.Fatalf("expected the IIFE to be invoked with no arguments, got %d", len(call.Args))
	}
	return call, fn
}

func assertTrailingReturnNull(t *testing.T, body []ir.Node) {
	t.Helper()
	if len(body) == 0 {
		t.Fatalf("expected a non-empty IIFE body")
	}
	ret, ok := body[len(body)-1].(*ir.Return)
	if !ok {
		t.Fatalf("expected the IIFE body to end in *ir.Return, got %T", body[len(body)-1])
	}
	lit, ok := ret.Arg.(*ir.Literal)
	if !ok || lit.Kind != ir.NullLit {
		t.Fatalf("expected the IIFE to return null, got %#v", ret.Arg)
	}
}

func TestForInExprPositionWrapsInIIFE(t *testing.T) {
	prog := lowerSource(t, `(let r (for [i (range 0 10)] (print i)))`)
	_, fn := exprPositionIIFE(t, prog)
	assertTrailingReturnNull(t, fn.Body)
	if _, ok := fn.Body[0].(*ir.ExprStmt); !ok {
		t.Fatalf("expected the for-loop's own statement lowering preserved ahead of the return, got %T", fn.Body[0])
	}
}

func TestLoopInExprPositionWrapsInIIFE(t *testing.T) {
	prog := lowerSource(t, `(let r (loop [i 0] (if (< i 10) (recur (+ i 1)) i)))`)
	_, fn := exprPositionIIFE(t, prog)
	assertTrailingReturnNull(t, fn.Body)
	if _, ok := fn.Body[0].(*ir.Block); !ok {
		t.Fatalf("expected the loop's own statement lowering (a Block) preserved ahead of the return, got %T", fn.Body[0])
	}
}

func TestWhileInExprPositionWrapsInIIFE(t *testing.T) {
	prog := lowerSource(t, `(let r (while (< 1 2) (print "x")))`)
	_, fn := exprPositionIIFE(t, prog)
	assertTrailingReturnNull(t, fn.Body)
	if _, ok := fn.Body[0].(*ir.While); !ok {
		t.Fatalf("expected the while's own statement lowering preserved ahead of the return, got %T", fn.Body[0])
	}
}

func TestDoseqInExprPositionWrapsInIIFE(t *testing.T) {
	prog := lowerSource(t, `(let r (doseq [x coll] (print x)))`)
	_, fn := exprPositionIIFE(t, prog)
	assertTrailingReturnNull(t, fn.Body)
	if _, ok := fn.Body[0].(*ir.ExprStmt); !ok {
		t.Fatalf("expected the doseq's own statement lowering preserved ahead of the return, got %T", fn.Body[0])
	}
}

func TestTryInExprPositionWrapsInIIFE(t *testing.T) {
	prog := lowerSource(t, `(let r (try (risky) (catch e (print e))))`)
	_, fn := exprPositionIIFE(t, prog)
	assertTrailingReturnNull(t, fn.Body)
	if _, ok := fn.Body[0].(*ir.Try); !ok {
		t.Fatalf("expected the try's own statement lowering preserved ahead of the return, got %T", fn.Body[0])
	}
}

func TestForInStatementPositionIsNotWrapped(t *testing.T) {
	prog := lowerSource(t, `(for [i (range 0 10)] (print i))`)
	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Body))
	}
	if _, ok := prog.Body[0].(*ir.Call); ok {
		t.Fatalf("a for-loop in statement position must not be wrapped in an IIFE, got %T", prog.Body[0])
	}
	if _, ok := prog.Body[0].(*ir.ExprStmt); !ok {
		t.Fatalf("expected the ordinary statement-position lowering, got %T", prog.Body[0])
	}
}
