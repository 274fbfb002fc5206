// Package codegen emits JavaScript (or TypeScript, in type-emitting mode)
// text from an optimized IR program.
package codegen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hql-lang/hql/internal/ir"
)

// TargetSyntax selects the emitted dialect.
type TargetSyntax int

const (
	TargetJS TargetSyntax = iota
	TargetTS
)

// SourceMapMode selects how (or whether) a source map is produced.
type SourceMapMode int

const (
	SourceMapNone SourceMapMode = iota
	SourceMapInline
	SourceMapExternal
)

// Options configures one emission.
type Options struct {
	Target      TargetSyntax
	IndentWidth int
	SourceMap   SourceMapMode
}

// DefaultOptions returns the emitter's default configuration: JS output,
// two-space indentation, no source map.
func DefaultOptions() Options {
	return Options{Target: TargetJS, IndentWidth: 2, SourceMap: SourceMapNone}
}

// Result is one file's emitted text plus the helper names it referenced.
type Result struct {
	Code           string
	ReferencedHelp []string
}

// Emitter walks IR and produces target text.
type Emitter struct {
	opts     Options
	buf      *strings.Builder
	indent   int
	helpers  map[string]bool
	lineNo   int
	mappings []mapping
}

type mapping struct {
	genLine int
	srcLine int
	srcCol  int
}

// New builds an Emitter for opts.
func New(opts Options) *Emitter {
	return &Emitter{opts: opts, helpers: map[string]bool{}, lineNo: 1, buf: &strings.Builder{}}
}

// Emit renders prog to target text, prepending exactly the runtime
// helpers the program references.
func (e *Emitter) Emit(prog *ir.Program) Result {
	var body strings.Builder
	for _, n := range prog.Body {
		e.buf.Reset()
		e.writeStmt(n)
		body.WriteString(e.buf.String())
	}

	var out strings.Builder
	for _, name := range sortedHelperNames(e.helpers) {
		out.WriteString(ir.HelperSource(name))
		out.WriteString("\n")
	}
	out.WriteString(body.String())

	names := sortedHelperNames(e.helpers)
	return Result{Code: out.String(), ReferencedHelp: names}
}

func sortedHelperNames(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for _, n := range ir.HelperNames {
		if set[n] {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

func (e *Emitter) pad() string { return strings.Repeat(" ", e.indent*e.opts.IndentWidth) }

func (e *Emitter) line(s string) {
	e.buf.WriteString(e.pad())
	e.buf.WriteString(s)
	e.buf.WriteString("\n")
}

func (e *Emitter) markHelper(name string) {
	for _, h := range ir.HelperNames {
		if h == name {
			e.helpers[name] = true
			return
		}
	}
}

func (e *Emitter) writeStmt(n ir.Node) {
	switch v := n.(type) {
	case *ir.ExprStmt:
		e.line(e.expr(v.Expr) + ";")
	case *ir.VarDecl:
		kw := [...]string{"const", "let", "var"}[v.Kind]
		typ := ""
		if e.opts.Target == TargetTS && v.Type != "" {
			typ = ": " + v.Type
		}
		init := ""
		if v.Init != nil {
			init = " = " + e.expr(v.Init)
		}
		e.line(fmt.Sprintf("%s %s%s%s;", kw, v.Name, typ, init))
	case *ir.Block:
		e.line("{")
		e.indent++
		for _, s := range v.Body {
			e.writeStmt(s)
		}
		e.indent--
		e.line("}")
	case *ir.If:
		e.line("if (" + e.expr(v.Test) + ") {")
		e.indent++
		e.writeBlockBody(v.Then)
		e.indent--
		if v.Else != nil {
			e.line("} else {")
			e.indent++
			e.writeBlockBody(v.Else)
			e.indent--
		}
		e.line("}")
	case *ir.While:
		e.line("while (" + e.expr(v.Test) + ") {")
		e.indent++
		for _, s := range v.Body {
			e.writeStmt(s)
		}
		e.indent--
		e.line("}")
	case *ir.For:
		init := ""
		if vd, ok := v.Init.(*ir.VarDecl); ok {
			init = fmt.Sprintf("let %s = %s", vd.Name, e.expr(vd.Init))
		}
		e.line(fmt.Sprintf("for (%s; %s; %s) {", init, e.expr(v.Test), e.expr(v.Update)))
		e.indent++
		for _, s := range v.Body {
			e.writeStmt(s)
		}
		e.indent--
		e.line("}")
	case *ir.Try:
		e.line("try {")
		e.indent++
		for _, s := range v.Block {
			e.writeStmt(s)
		}
		e.indent--
		if v.HasCatch {
			param := v.CatchParam
			if param == "" {
				param = "e"
			}
			e.line(fmt.Sprintf("} catch (%s) {", param))
			e.indent++
			for _, s := range v.CatchBody {
				e.writeStmt(s)
			}
			e.indent--
		}
		if v.HasFinally {
			e.line("} finally {")
			e.indent++
			for _, s := range v.FinallyBody {
				e.writeStmt(s)
			}
			e.indent--
		}
		e.line("}")
	case *ir.Throw:
		e.line("throw " + e.expr(v.Arg) + ";")
	case *ir.Return:
		if v.Arg == nil {
			e.line("return;")
		} else {
			e.line("return " + e.expr(v.Arg) + ";")
		}
	case *ir.FuncDecl:
		e.writeFunc("function "+v.Name, v.Params, v.ReturnType, v.Body, v.Async)
	case *ir.ClassDecl:
		e.writeClass(v)
	case *ir.EnumDecl:
		e.writeEnum(v)
	case *ir.Import:
		e.writeImport(v)
	case *ir.Export:
		e.writeExport(v)
	default:
		e.line(e.expr(n) + ";")
	}
}

func (e *Emitter) writeBlockBody(n ir.Node) {
	if b, ok := n.(*ir.Block); ok {
		for _, s := range b.Body {
			e.writeStmt(s)
		}
		return
	}
	e.writeStmt(n)
}

func (e *Emitter) writeFunc(head string, params []ir.Param, retType string, body []ir.Node, async bool) {
	prefix := ""
	if async {
		prefix = "async "
	}
	e.line(fmt.Sprintf("%s%s(%s)%s {", prefix, head, e.paramList(params), e.returnAnnotation(retType)))
	e.indent++
	for _, s := range body {
		e.writeStmt(s)
	}
	e.indent--
	e.line("}")
}

func (e *Emitter) returnAnnotation(retType string) string {
	if e.opts.Target == TargetTS && retType != "" {
		return ": " + retType
	}
	return ""
}

func (e *Emitter) paramList(params []ir.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		name := p.Name
		if p.Rest {
			name = "..." + name
		}
		typ := ""
		if e.opts.Target == TargetTS && p.Type != "" {
			typ = ": " + p.Type
		}
		def := ""
		if p.Default != nil {
			def = " = " + e.expr(p.Default)
		}
		parts[i] = name + typ + def
	}
	return strings.Join(parts, ", ")
}

func (e *Emitter) writeClass(v *ir.ClassDecl) {
	e.line("class " + v.Name + " {")
	e.indent++
	for _, f := range v.Fields {
		typ := ""
		if e.opts.Target == TargetTS && f.Type != "" {
			typ = ": " + f.Type
		}
		init := ""
		if f.Init != nil {
			init = " = " + e.expr(f.Init)
		}
		e.line(fmt.Sprintf("%s%s%s;", f.Name, typ, init))
	}
	if v.HasConstructor {
		e.writeFunc("constructor", v.CtorParams, "", v.CtorBody, false)
	}
	for _, m := range v.Methods {
		e.writeFunc(m.Name, m.Params, "", m.Body, false)
	}
	e.indent--
	e.line("}")
}

func (e *Emitter) writeEnum(v *ir.EnumDecl) {
	e.line("const " + v.Name + " = Object.freeze({")
	e.indent++
	for _, c := range v.Cases {
		val := strconv.Quote(c.Name)
		if c.RawValue != nil {
			val = e.expr(c.RawValue)
		}
		e.line(fmt.Sprintf("%s: %s,", c.Name, val))
	}
	e.indent--
	e.line("});")
}

func (e *Emitter) writeImport(v *ir.Import) {
	if v.SideEffect {
		e.line(fmt.Sprintf("import %s;", strconv.Quote(v.Source)))
		return
	}
	if v.Namespace != "" {
		e.line(fmt.Sprintf("import * as %s from %s;", v.Namespace, strconv.Quote(v.Source)))
		return
	}
	parts := make([]string, len(v.Specifiers))
	for i, s := range v.Specifiers {
		if s.Local != s.Imported {
			parts[i] = s.Imported + " as " + s.Local
		} else {
			parts[i] = s.Local
		}
	}
	e.line(fmt.Sprintf("import { %s } from %s;", strings.Join(parts, ", "), strconv.Quote(v.Source)))
}

func (e *Emitter) writeExport(v *ir.Export) {
	if v.Default {
		e.line("export default " + v.DefaultName + ";")
		return
	}
	e.line(fmt.Sprintf("export { %s };", strings.Join(v.Names, ", ")))
}
