package macro

import (
	"github.com/hql-lang/hql/internal/ast"
	"github.com/hql-lang/hql/internal/diag"
	"github.com/hql-lang/hql/internal/lexer"
	"github.com/hql-lang/hql/internal/parser"
)

// Macro is a name bound to a parameter pattern and a body template. The
// macro environment owns every Macro; expansion never mutates a Macro's
// Pattern or Body, only reads them to build fresh instantiated nodes.
type Macro struct {
	Name    string
	Pattern *ast.Vector
	Body    []ast.Node
	Pos     lexer.Position
	// Introduced holds identifiers bound by let/fn/loop/doseq inside Body
	// that are not pattern parameters - these get a fresh gensym suffix on
	// every expansion so the macro can never capture a call-site binding.
	Introduced map[string]bool
}

// Env is the macro environment: the embedded standard library plus any
// macro/defmacro forms seen so far at top level.
type Env struct {
	macros map[string]*Macro
}

// NewEnv builds an Env pre-loaded with the embedded standard macro table.
func NewEnv() (*Env, []*diag.Diagnostic) {
	env := &Env{macros: make(map[string]*Macro)}
	diags := env.loadSource("<stdlib>", standardMacroSource)
	return env, diags
}

// Lookup returns the macro bound to name, or nil if name is not a macro.
func (e *Env) Lookup(name string) *Macro { return e.macros[name] }

// Names returns every macro name currently bound, used to build "did you
// mean?" suggestion pools.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.macros))
	for n := range e.macros {
		names = append(names, n)
	}
	return names
}

// loadSource parses src and defines every top-level (macro ...) or
// (defmacro ...) form it contains.
func (e *Env) loadSource(file, src string) []*diag.Diagnostic {
	var diags []*diag.Diagnostic
	p := parser.New(lexer.New(src, lexer.WithFile(file)))
	forms := p.ParseProgram()
	for _, pe := range p.Errors() {
		diags = append(diags, &diag.Diagnostic{Severity: diag.SeverityError, Stage: diag.StageMacro, Code: pe.Code, Position: pe.Pos, Length: pe.Length, Message: pe.Message})
	}
	for _, f := range forms {
		if d := e.defineIfMacroForm(f); d != nil {
			diags = append(diags, d)
		}
	}
	return diags
}

// defineIfMacroForm binds f into the environment if it is a
// "(macro name [params] body...)" or "(defmacro name [params] body...)"
// form, returning a diagnostic on malformed input.
func (e *Env) defineIfMacroForm(f ast.Node) *diag.Diagnostic {
	l, ok := f.(*ast.List)
	if !ok || len(l.Elements) < 3 {
		return nil
	}
	head := ast.ListHead(l)
	if head != "macro" && head != "defmacro" {
		return nil
	}
	name, ok := l.Elements[1].(*ast.Symbol)
	if !ok {
		return &diag.Diagnostic{Severity: diag.SeverityError, Stage: diag.StageMacro, Code: "E_MACRO_BAD_NAME", Position: l.Pos(), Message: "macro name must be a symbol"}
	}
	pattern, ok := l.Elements[2].(*ast.Vector)
	if !ok {
		return &diag.Diagnostic{Severity: diag.SeverityError, Stage: diag.StageMacro, Code: "E_MACRO_BAD_PATTERN", Position: l.Pos(), Message: "macro '" + name.Name + "' parameter list must be a vector"}
	}
	body := l.Elements[3:]
	m := &Macro{Name: name.Name, Pattern: pattern, Body: body, Pos: l.Pos()}
	m.Introduced = collectIntroduced(body, paramNames(pattern))
	e.macros[name.Name] = m
	return nil
}

func paramNames(pattern *ast.Vector) map[string]bool {
	names := make(map[string]bool)
	var walk func([]ast.Node)
	walk = func(elems []ast.Node) {
		for _, e := range elems {
			switch n := e.(type) {
			case *ast.Symbol:
				if n.Name != "&" {
					names[n.Name] = true
				}
			case *ast.Vector:
				walk(n.Elements)
			case *ast.List:
				// "(= value)" default markers bind no name of their own.
			}
		}
	}
	walk(pattern.Elements)
	return names
}

// bindingForms introduce new local names in their first operand position
// and are walked to find identifiers the macro body itself introduces.
var bindingForms = map[string]bool{"let": true, "fn": true, "defn": true, "loop": true, "doseq": true}

func collectIntroduced(body []ast.Node, params map[string]bool) map[string]bool {
	introduced := make(map[string]bool)
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		l, ok := n.(*ast.List)
		if !ok {
			switch v := n.(type) {
			case *ast.Vector:
				for _, e := range v.Elements {
					walk(e)
				}
			case *ast.Set:
				for _, e := range v.Elements {
					walk(e)
				}
			case *ast.Map:
				for _, e := range v.Entries {
					walk(e.Key)
					walk(e.Value)
				}
			}
			return
		}
		head := ast.ListHead(l)
		if bindingForms[head] {
			for _, namePos := range bindingNamePositions(head, l) {
				collectPatternNames(namePos, introduced, params)
			}
		}
		for _, e := range l.Elements {
			walk(e)
		}
	}
	for _, f := range body {
		walk(f)
	}
	return introduced
}

// bindingNamePositions returns the sub-nodes of a binding form that occupy
// a "name" position: the whole params vector for fn/defn (every entry is a
// parameter name or pattern), and only the even-indexed entries of a flat
// alternating [name expr name expr ...] vector for let/loop/doseq.
func bindingNamePositions(head string, l *ast.List) []ast.Node {
	switch head {
	case "fn":
		if len(l.Elements) < 2 {
			return nil
		}
		if v, ok := l.Elements[1].(*ast.Vector); ok {
			return v.Elements
		}
	case "defn":
		if len(l.Elements) < 3 {
			return nil
		}
		if v, ok := l.Elements[2].(*ast.Vector); ok {
			return v.Elements
		}
	case "let", "loop", "doseq":
		if len(l.Elements) < 2 {
			return nil
		}
		v, ok := l.Elements[1].(*ast.Vector)
		if !ok {
			return nil
		}
		var names []ast.Node
		for i := 0; i < len(v.Elements); i += 2 {
			names = append(names, v.Elements[i])
		}
		return names
	}
	return nil
}

func collectPatternNames(n ast.Node, out, params map[string]bool) {
	switch v := n.(type) {
	case *ast.Symbol:
		if v.Name != "&" && !params[v.Name] {
			out[v.Name] = true
		}
	case *ast.Vector:
		for _, e := range v.Elements {
			collectPatternNames(e, out, params)
		}
	case *ast.List:
		if len(v.Elements) == 2 {
			if s, ok := v.Elements[0].(*ast.Symbol); ok && s.Name == "=" {
				return
			}
		}
	}
}
