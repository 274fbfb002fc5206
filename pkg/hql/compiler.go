// Package hql is the embeddable front door to the compiler: construct a
// Compiler with New, then Compile source text to target JavaScript or
// TypeScript. It is the same pipeline the hql CLI drives, exposed as a
// library so a host program never has to shell out.
package hql

import (
	"fmt"

	"github.com/hql-lang/hql/internal/codegen"
	"github.com/hql-lang/hql/internal/diag"
	"github.com/hql-lang/hql/internal/lexer"
	"github.com/hql-lang/hql/internal/lowering"
	"github.com/hql-lang/hql/internal/macro"
	"github.com/hql-lang/hql/internal/optimizer"
	"github.com/hql-lang/hql/internal/parser"
	"github.com/hql-lang/hql/internal/semantic"
)

// Target selects the emitted dialect.
type Target int

const (
	TargetJS Target = iota
	TargetTS
)

// Compiler holds configuration shared across Compile calls.
type Compiler struct {
	target      Target
	indentWidth int
	file        string
}

// Option configures a Compiler at construction time.
type Option func(*Compiler)

// WithTarget selects JS or TS emission. Default is TargetJS.
func WithTarget(t Target) Option {
	return func(c *Compiler) { c.target = t }
}

// WithIndentWidth overrides the emitted indent width. Default is 2.
func WithIndentWidth(n int) Option {
	return func(c *Compiler) { c.indentWidth = n }
}

// WithFile attaches a file name to diagnostics and source positions.
func WithFile(file string) Option {
	return func(c *Compiler) { c.file = file }
}

// New builds a Compiler from opts.
func New(opts ...Option) *Compiler {
	c := &Compiler{target: TargetJS, indentWidth: 2}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is one source file's compilation outcome.
type Result struct {
	Code           string
	ReferencedHelp []string
	Diagnostics    []*diag.Diagnostic
}

// Compile runs source through the full lexer -> parser -> macro expander ->
// semantic analyzer -> lowering -> optimizer -> codegen pipeline. A
// non-nil error is returned only when a stage produced fatal (error
// severity) diagnostics; Result.Diagnostics carries every diagnostic,
// fatal or not, from every stage that ran.
func (c *Compiler) Compile(source string) (*Result, error) {
	var all []*diag.Diagnostic

	lx := lexer.New(source, lexer.WithFile(c.file))
	p := parser.New(lx)
	forms := p.ParseProgram()
	for _, pe := range p.Errors() {
		all = append(all, &diag.Diagnostic{
			Severity: diag.SeverityError,
			Stage:    diag.StageParser,
			Code:     pe.Code,
			Position: pe.Pos,
			Length:   pe.Length,
			Message:  pe.Message,
			Source:   source,
		})
	}
	if hasFatal(all) {
		return &Result{Diagnostics: all}, fmt.Errorf("hql: parse failed with %d error(s)", countFatal(all))
	}

	env, macroDiags := macro.NewEnv()
	all = append(all, macroDiags...)
	expander := macro.NewExpander(env)
	expanded, expandDiags := expander.Expand(forms)
	all = append(all, expandDiags...)
	if hasFatal(all) {
		withSource(all, source)
		return &Result{Diagnostics: all}, fmt.Errorf("hql: macro expansion failed with %d error(s)", countFatal(all))
	}

	analyzer := semantic.New(env.Names(), nil)
	ctx := analyzer.Analyze(expanded)
	all = append(all, ctx.Diags.All()...)
	withSource(all, source)
	if hasFatal(all) {
		return &Result{Diagnostics: all}, fmt.Errorf("hql: semantic analysis failed with %d error(s)", countFatal(all))
	}

	lw := lowering.New()
	prog := lw.Lower(expanded)
	all = append(all, lw.Diagnostics()...)
	withSource(all, source)
	if hasFatal(all) {
		return &Result{Diagnostics: all}, fmt.Errorf("hql: lowering failed with %d error(s)", countFatal(all))
	}

	prog = optimizer.Optimize(prog)
	prog = optimizer.Trampoline(prog)

	emitOpts := codegen.DefaultOptions()
	emitOpts.IndentWidth = c.indentWidth
	if c.target == TargetTS {
		emitOpts.Target = codegen.TargetTS
	}
	out := codegen.New(emitOpts).Emit(prog)

	return &Result{
		Code:           out.Code,
		ReferencedHelp: out.ReferencedHelp,
		Diagnostics:    all,
	}, nil
}

func hasFatal(items []*diag.Diagnostic) bool {
	for _, d := range items {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

func countFatal(items []*diag.Diagnostic) int {
	n := 0
	for _, d := range items {
		if d.Severity == diag.SeverityError {
			n++
		}
	}
	return n
}

func withSource(items []*diag.Diagnostic, source string) {
	for _, d := range items {
		if d.Source == "" {
			d.Source = source
		}
	}
}
