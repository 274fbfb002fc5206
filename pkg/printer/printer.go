// Package printer renders HQL AST nodes back to source text. It backs the
// hql fmt command and is deliberately the inverse of the parser: printing
// a parsed form and re-parsing the result must reach a fixed point after
// at most one more pass.
package printer

import (
	"strconv"
	"strings"

	"github.com/hql-lang/hql/internal/ast"
)

// Style selects how aggressively the printer breaks forms across lines.
type Style int

const (
	// StyleCompact keeps every form on one line regardless of width.
	StyleCompact Style = iota
	// StyleExpanded breaks a list onto multiple lines once it would
	// exceed Options.Width, indenting continuation lines under the
	// form's head.
	StyleExpanded
)

// Options configures a Printer.
type Options struct {
	Style Style
	// Width is the target line length used by StyleExpanded to decide
	// whether a form needs to break. Ignored by StyleCompact.
	Width int
	// IndentWidth is the number of spaces per nesting level.
	IndentWidth int
	// UseTabs emits a tab per nesting level instead of IndentWidth spaces.
	UseTabs bool
}

// DefaultOptions returns the formatter's default configuration: expanded
// style, 80-column width, two-space indent.
func DefaultOptions() Options {
	return Options{Style: StyleExpanded, Width: 80, IndentWidth: 2}
}

// Printer renders ast.Node trees to text under a fixed Options.
type Printer struct {
	opts Options
}

// New builds a Printer configured by opts.
func New(opts Options) *Printer {
	if opts.IndentWidth == 0 && !opts.UseTabs {
		opts.IndentWidth = 2
	}
	if opts.Width == 0 {
		opts.Width = 80
	}
	return &Printer{opts: opts}
}

// Print renders a single top-level form.
func (p *Printer) Print(n ast.Node) string {
	return p.print(n, 0)
}

// PrintProgram renders a sequence of top-level forms, one per line, with a
// blank line between two adjacent forms when either of them is a defn,
// class, enum, macro or defmacro form.
func (p *Printer) PrintProgram(forms []ast.Node) string {
	var sb strings.Builder
	for i, f := range forms {
		if i > 0 {
			sb.WriteString("\n")
			if isDeclaration(f) || isDeclaration(forms[i-1]) {
				sb.WriteString("\n")
			}
		}
		sb.WriteString(p.Print(f))
	}
	sb.WriteString("\n")
	return sb.String()
}

// Format is a convenience wrapper around New(opts).PrintProgram(forms).
func Format(forms []ast.Node, opts Options) string {
	return New(opts).PrintProgram(forms)
}

func isDeclaration(n ast.Node) bool {
	switch ast.ListHead(n) {
	case "defn", "class", "enum", "macro", "defmacro":
		return true
	}
	return false
}

func (p *Printer) indent(depth int) string {
	if p.opts.UseTabs {
		return strings.Repeat("\t", depth)
	}
	return strings.Repeat(" ", depth*p.opts.IndentWidth)
}

func (p *Printer) print(n ast.Node, depth int) string {
	switch v := n.(type) {
	case *ast.Literal:
		return v.String()
	case *ast.Symbol:
		return v.String()
	case *ast.Vector:
		return p.printSeq("[", "]", v.Elements, depth)
	case *ast.Set:
		return p.printSeq("#{", "}", v.Elements, depth)
	case *ast.Map:
		return p.printMap(v, depth)
	case *ast.List:
		return p.printList(v, depth)
	}
	return n.String()
}

func (p *Printer) printSeq(open, close string, elems []ast.Node, depth int) string {
	compact := p.oneLine(open, close, elems, depth)
	if p.opts.Style == StyleCompact || len(p.indent(depth))+len(compact) <= p.opts.Width {
		return compact
	}
	var sb strings.Builder
	sb.WriteString(open)
	sb.WriteString("\n")
	inner := depth + 1
	for i, e := range elems {
		sb.WriteString(p.indent(inner))
		sb.WriteString(p.print(e, inner))
		if i < len(elems)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(p.indent(depth))
	sb.WriteString(close)
	return sb.String()
}

func (p *Printer) printMap(m *ast.Map, depth int) string {
	parts := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		parts[i] = p.print(e.Key, depth) + " " + p.print(e.Value, depth)
	}
	compact := "{" + strings.Join(parts, " ") + "}"
	if p.opts.Style == StyleCompact || len(p.indent(depth))+len(compact) <= p.opts.Width {
		return compact
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	inner := depth + 1
	for i, e := range m.Entries {
		sb.WriteString(p.indent(inner))
		sb.WriteString(p.print(e.Key, inner))
		sb.WriteString(" ")
		sb.WriteString(p.print(e.Value, inner))
		if i < len(m.Entries)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(p.indent(depth))
	sb.WriteString("}")
	return sb.String()
}

func (p *Printer) printList(l *ast.List, depth int) string {
	compact := p.oneLine("(", ")", l.Elements, depth)
	if p.opts.Style == StyleCompact || len(p.indent(depth))+len(compact) <= p.opts.Width {
		return compact
	}
	head := ast.ListHead(l)
	switch head {
	case "defn", "fn", "if", "let", "var", "const", "cond", "case", "class", "loop", "for", "doseq", "try":
		return p.printBodyForm(l, depth)
	}
	var sb strings.Builder
	sb.WriteString("(")
	inner := depth + 1
	for i, e := range l.Elements {
		if i == 0 {
			sb.WriteString(p.print(e, depth))
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(p.indent(inner))
		sb.WriteString(p.print(e, inner))
		if i < len(l.Elements)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(p.indent(depth))
	sb.WriteString(")")
	return sb.String()
}

// printBodyForm keeps the head and its immediate argument forms (name,
// params) on the opening line and indents only the body forms, matching
// how defn/fn/let etc. read in hand-written HQL.
func (p *Printer) printBodyForm(l *ast.List, depth int) string {
	headLineEnd := 1
	for headLineEnd < len(l.Elements) {
		switch l.Elements[headLineEnd].(type) {
		case *ast.Vector:
			headLineEnd++
			continue
		case *ast.Symbol:
			if headLineEnd == 1 {
				headLineEnd++
				continue
			}
		}
		break
	}
	var sb strings.Builder
	sb.WriteString("(")
	for i := 0; i < headLineEnd; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(p.print(l.Elements[i], depth))
	}
	inner := depth + 1
	for i := headLineEnd; i < len(l.Elements); i++ {
		sb.WriteString("\n")
		sb.WriteString(p.indent(inner))
		sb.WriteString(p.print(l.Elements[i], inner))
	}
	sb.WriteString(")")
	return sb.String()
}

func (p *Printer) oneLine(open, close string, elems []ast.Node, depth int) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = p.print(e, depth)
	}
	return open + strings.Join(parts, " ") + close
}

// quoteIfNeeded is unused by the happy path (ast.Literal.String already
// quotes strings) but kept handy for callers building their own leaves.
func quoteIfNeeded(s string) string {
	return strconv.Quote(s)
}
