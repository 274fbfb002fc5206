package optimizer

import (
	"testing"

	"github.com/hql-lang/hql/internal/ir"
	"github.com/hql-lang/hql/internal/lexer"
	"github.com/hql-lang/hql/internal/lowering"
	"github.com/hql-lang/hql/internal/parser"
)

func lowerSource(t *testing.T, src string) *ir.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	forms := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	return lowering.New().Lower(forms)
}

func TestForEachRangeRewritesToNativeFor(t *testing.T) {
	prog := Optimize(lowerSource(t, "(for [i (range 0 10)] (print i))"))
	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Body))
	}
	if _, ok := prog.Body[0].(*ir.For); !ok {
		t.Fatalf("expected *ir.For, got %T", prog.Body[0])
	}
}

func TestForEachRangeBindsNonTrivialBoundToTemp(t *testing.T) {
	prog := Optimize(lowerSource(t, "(for [i (range (compute-limit))] (print i))"))
	if len(prog.Body) != 2 {
		t.Fatalf("expected a temp binding plus the for loop, got %d statements", len(prog.Body))
	}
	if _, ok := prog.Body[0].(*ir.VarDecl); !ok {
		t.Fatalf("expected the non-trivial range bound lifted to a VarDecl, got %T", prog.Body[0])
	}
	forLoop, ok := prog.Body[1].(*ir.For)
	if !ok {
		t.Fatalf("expected *ir.For, got %T", prog.Body[1])
	}
	test, ok := forLoop.Test.(*ir.Binary)
	if !ok {
		t.Fatalf("expected binary test, got %T", forLoop.Test)
	}
	if _, ok := test.Right.(*ir.Identifier); !ok {
		t.Fatalf("expected the loop bound rewritten to reference the temp identifier, got %T", test.Right)
	}
}

func TestNonMatchingForEachIsUnchanged(t *testing.T) {
	prog := Optimize(lowerSource(t, "(doseq [x coll] (print x))"))
	if _, ok := prog.Body[0].(*ir.For); ok {
		t.Fatal("doseq over an arbitrary collection must not become a native for loop")
	}
}

func TestTrampolineRewritesTailCallToThunk(t *testing.T) {
	prog := lowerSource(t, `
(defn count-down-trampolined [n]
  (if (= n 0) 0 (count-down-trampolined (- n 1))))
`)
	prog = Trampoline(Optimize(prog))
	fd, ok := prog.Body[0].(*ir.FuncDecl)
	if !ok {
		t.Fatalf("expected *ir.FuncDecl, got %T", prog.Body[0])
	}
	ret, ok := fd.Body[0].(*ir.Return)
	if !ok {
		t.Fatalf("expected a single implicit return, got %T", fd.Body[0])
	}
	cond, ok := ret.Arg.(*ir.Conditional)
	if !ok {
		t.Fatalf("expected the if-expression lowered to a ternary, got %T", ret.Arg)
	}
	if _, ok := cond.Alt.(*ir.FuncExpr); !ok {
		t.Fatalf("expected the recursive-call branch wrapped in a thunk, got %T", cond.Alt)
	}
}

func TestUntaggedFunctionIsNotTrampolined(t *testing.T) {
	prog := lowerSource(t, `
(defn count-down [n]
  (if (= n 0) 0 (count-down (- n 1))))
`)
	before := lowerSource(t, `
(defn count-down [n]
  (if (= n 0) 0 (count-down (- n 1))))
`)
	prog = Trampoline(Optimize(prog))
	fd := prog.Body[0].(*ir.FuncDecl)
	fdBefore := before.Body[0].(*ir.FuncDecl)
	condA := fd.Body[0].(*ir.Return).Arg.(*ir.Conditional)
	condB := fdBefore.Body[0].(*ir.Return).Arg.(*ir.Conditional)
	if _, ok := condA.Alt.(*ir.FuncExpr); ok {
		t.Fatal("a defn without the trampoline naming convention must not be rewritten")
	}
	if _, ok := condB.Alt.(*ir.FuncExpr); ok {
		t.Fatal("sanity baseline should not itself contain a FuncExpr")
	}
}
