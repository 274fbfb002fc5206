package semantic

import (
	"github.com/hql-lang/hql/internal/ast"
	"github.com/hql-lang/hql/internal/diag"
)

// ResolvePass walks every form's body, resolving symbol references against
// the scope chain built as it descends, and verifying recur targets.
type ResolvePass struct{}

func (ResolvePass) Name() string { return "resolve" }

func (ResolvePass) Run(forms []ast.Node, ctx *Context) {
	r := &resolver{ctx: ctx}
	for _, f := range forms {
		r.walk(f, ctx.Global, nil)
	}
}

// tailTarget describes the loop or function a "recur" call would bounce
// to: its arity, so recur's argument count can be checked.
type tailTarget struct {
	arity    int
	isLoop   bool
	position bool // true only while the walker is at the syntactic tail
}

type resolver struct{ ctx *Context }

func (r *resolver) walk(n ast.Node, scope *Scope, tail *tailTarget) {
	switch v := n.(type) {
	case *ast.Symbol:
		r.resolveSymbol(v, scope)
	case *ast.List:
		r.walkList(v, scope, tail)
	case *ast.Vector:
		for _, e := range v.Elements {
			r.walk(e, scope, nil)
		}
	case *ast.Set:
		for _, e := range v.Elements {
			r.walk(e, scope, nil)
		}
	case *ast.Map:
		for _, e := range v.Entries {
			r.walk(e.Key, scope, nil)
			r.walk(e.Value, scope, nil)
		}
	}
}

func (r *resolver) resolveSymbol(s *ast.Symbol, scope *Scope) {
	if s.IsKeyword || s.Name == "_" {
		return
	}
	base, _, _ := splitTypeAnnotation(s.Name)
	if IsKernelOrOperator(base) {
		return
	}
	if _, ok := scope.Resolve(base); ok {
		return
	}
	suggestions := diag.Suggest(base, r.ctx.suggestionPool(scope), 3)
	r.ctx.Diags.Add(&diag.Diagnostic{
		Severity:    diag.SeverityError,
		Stage:       diag.StageSemantic,
		Code:        "E_UNBOUND_SYMBOL",
		Position:    s.Pos(),
		Message:     "unbound symbol '" + base + "'",
		Suggestions: suggestions,
	})
}

func (r *resolver) walkList(l *ast.List, scope *Scope, tail *tailTarget) {
	if len(l.Elements) == 0 {
		return
	}
	head := ast.ListHead(l)
	switch head {
	case "quote":
		return
	case "quasiquote":
		r.walkQuasiquote(l.Elements[1], scope)
		return
	case "let":
		r.walkLet(l, scope, tail)
		return
	case "fn":
		r.walkFn(l, 1, scope)
		return
	case "defn":
		r.walkFn(l, 2, scope)
		return
	case "loop":
		r.walkLoop(l, scope)
		return
	case "recur":
		r.walkRecur(l, scope, tail)
		return
	case "doseq":
		r.walkDoseq(l, scope)
		return
	case "catch":
		r.walkCatch(l, scope)
		return
	case "class":
		r.walkClass(l, scope)
		return
	case "import", "export", "defmacro", "macro":
		return
	case "if":
		r.walkIfTail(l, scope, tail)
		return
	case "do":
		r.walkBodyTail(l.Elements[1:], scope, tail)
		return
	case "cond", "case":
		for _, e := range l.Elements[1:] {
			r.walk(e, scope, tail)
		}
		return
	}
	for _, e := range l.Elements {
		r.walk(e, scope, nil)
	}
}

// walkIfTail propagates the tail position to the then/else branches only;
// the test expression is never a tail position.
func (r *resolver) walkIfTail(l *ast.List, scope *Scope, tail *tailTarget) {
	if len(l.Elements) < 2 {
		return
	}
	r.walk(l.Elements[1], scope, nil)
	for i := 2; i < len(l.Elements) && i < 4; i++ {
		r.walk(l.Elements[i], scope, tail)
	}
	for i := 4; i < len(l.Elements); i++ {
		r.walk(l.Elements[i], scope, nil)
	}
}

// walkBodyTail resolves a statement sequence, propagating tail position
// only to the final form.
func (r *resolver) walkBodyTail(body []ast.Node, scope *Scope, tail *tailTarget) {
	for i, e := range body {
		if i == len(body)-1 {
			r.walk(e, scope, tail)
		} else {
			r.walk(e, scope, nil)
		}
	}
}

func (r *resolver) walkQuasiquote(n ast.Node, scope *Scope) {
	switch v := n.(type) {
	case *ast.List:
		if ast.ListHead(v) == "unquote" || ast.ListHead(v) == "unquote-splice" {
			if len(v.Elements) == 2 {
				r.walk(v.Elements[1], scope, nil)
			}
			return
		}
		for _, e := range v.Elements {
			r.walkQuasiquote(e, scope)
		}
	case *ast.Vector:
		for _, e := range v.Elements {
			r.walkQuasiquote(e, scope)
		}
	}
}

// walkLet handles both "(let x e)" and "(let (x e ...) body...)" /
// "(let [x e ...] body...)" shapes, introducing a child block scope.
func (r *resolver) walkLet(l *ast.List, scope *Scope, tail *tailTarget) {
	child := NewScope(ScopeBlock, scope)
	if len(l.Elements) == 3 {
		if _, ok := l.Elements[1].(*ast.Symbol); ok {
			if _, isSeq := l.Elements[2].(*ast.List); !isSeq {
				r.defineSingle(l.Elements[1], l.Elements[2], scope, child)
				return
			}
		}
	}
	if len(l.Elements) < 2 {
		return
	}
	var pairs []ast.Node
	switch b := l.Elements[1].(type) {
	case *ast.Vector:
		pairs = b.Elements
	case *ast.List:
		pairs = b.Elements
	default:
		return
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.walk(pairs[i+1], child, nil)
		r.bindPattern(pairs[i], child)
	}
	r.walkBodyTail(l.Elements[2:], child, tail)
}

func (r *resolver) defineSingle(name, val ast.Node, outer, child *Scope) {
	r.walk(val, outer, nil)
	r.bindPattern(name, child)
}

// bindPattern defines every identifier in a (possibly destructuring)
// binding-position node into scope.
func (r *resolver) bindPattern(n ast.Node, scope *Scope) {
	switch v := n.(type) {
	case *ast.Symbol:
		if v.Name == "&" || v.Name == "_" {
			return
		}
		base, typ, hasType := splitTypeAnnotation(v.Name)
		scope.Define(base, &Symbol{Name: base, Kind: KindVariable, Scope: scope, TypeAnnotation: typ, Pos: v.Pos()})
		_ = hasType
	case *ast.Vector:
		for _, e := range v.Elements {
			r.bindPattern(e, scope)
		}
	case *ast.List:
		if len(v.Elements) == 2 {
			if s, ok := v.Elements[0].(*ast.Symbol); ok && s.Name == "=" {
				r.walk(v.Elements[1], scope, nil)
			}
		}
	}
}

// walkFn resolves a "(fn [params] body...)" or "(defn name [params)
// body...)" form, introducing a function scope with every parameter bound.
func (r *resolver) walkFn(l *ast.List, paramsIdx int, scope *Scope) {
	if len(l.Elements) <= paramsIdx {
		return
	}
	params, ok := l.Elements[paramsIdx].(*ast.Vector)
	if !ok {
		return
	}
	fnScope := NewScope(ScopeFunction, scope)
	for _, p := range params.Elements {
		r.bindPattern(p, fnScope)
	}
	// recur only targets an enclosing "loop", never a bare fn/defn body -
	// see the lowering rule pairing "(loop ...)" with "(recur ...)".
	r.walkBodyTail(l.Elements[paramsIdx+1:], fnScope, nil)
}

// walkLoop resolves "(loop [binding init ...] body...)", introducing a
// loop scope whose bound names are recur's reassignment targets.
func (r *resolver) walkLoop(l *ast.List, scope *Scope) {
	if len(l.Elements) < 2 {
		return
	}
	bindings, ok := l.Elements[1].(*ast.Vector)
	if !ok {
		return
	}
	loopScope := NewScope(ScopeBlock, scope)
	count := 0
	for i := 0; i+1 < len(bindings.Elements); i += 2 {
		r.walk(bindings.Elements[i+1], scope, nil)
		r.bindPattern(bindings.Elements[i], loopScope)
		count++
	}
	tail := &tailTarget{arity: count, isLoop: true}
	r.walkBodyTail(l.Elements[2:], loopScope, tail)
}

func (r *resolver) walkRecur(l *ast.List, scope *Scope, tail *tailTarget) {
	args := l.Elements[1:]
	if tail == nil {
		r.ctx.Diags.Add(&diag.Diagnostic{
			Severity: diag.SeverityError, Stage: diag.StageSemantic, Code: "E_RECUR_NOT_TAIL",
			Position: l.Pos(), Message: "'recur' used outside an eligible tail position",
		})
	} else if tail.arity != len(args) {
		r.ctx.Diags.Add(&diag.Diagnostic{
			Severity: diag.SeverityError, Stage: diag.StageSemantic, Code: "E_RECUR_ARITY",
			Position: l.Pos(), Message: "'recur' arity does not match its enclosing loop/function",
		})
	}
	for _, a := range args {
		r.walk(a, scope, nil)
	}
}

func (r *resolver) walkDoseq(l *ast.List, scope *Scope) {
	if len(l.Elements) < 2 {
		return
	}
	binding, ok := l.Elements[1].(*ast.Vector)
	if !ok || len(binding.Elements) < 2 {
		return
	}
	r.walk(binding.Elements[1], scope, nil)
	child := NewScope(ScopeBlock, scope)
	r.bindPattern(binding.Elements[0], child)
	for _, e := range l.Elements[2:] {
		r.walk(e, child, nil)
	}
}

func (r *resolver) walkCatch(l *ast.List, scope *Scope) {
	if len(l.Elements) < 2 {
		return
	}
	child := NewScope(ScopeBlock, scope)
	r.bindPattern(l.Elements[1], child)
	for _, e := range l.Elements[2:] {
		r.walk(e, child, nil)
	}
}

func (r *resolver) walkClass(l *ast.List, scope *Scope) {
	classScope := NewScope(ScopeBlock, scope)
	for _, member := range l.Elements[2:] {
		ml, ok := member.(*ast.List)
		if !ok {
			continue
		}
		switch ast.ListHead(ml) {
		case "fn":
			r.walkFn(ml, 2, classScope)
		case "constructor":
			r.walkFn(ml, 1, classScope)
		case "var", "let":
			if len(ml.Elements) >= 3 {
				r.walk(ml.Elements[2], classScope, nil)
				r.bindPattern(ml.Elements[1], classScope)
			}
		}
	}
}
