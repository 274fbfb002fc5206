// Package diag formats compiler diagnostics with source context, caret
// pointers, and "did you mean?" suggestions, shared by every pipeline stage.
package diag

import (
	"fmt"
	"strings"

	"github.com/hql-lang/hql/internal/lexer"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Stage identifies which pipeline stage raised a Diagnostic.
type Stage string

const (
	StageLexer     Stage = "lexer"
	StageParser    Stage = "parser"
	StageMacro     Stage = "macro"
	StageSemantic  Stage = "semantic"
	StageLowering  Stage = "lowering"
	StageOptimizer Stage = "optimizer"
	StageCodegen   Stage = "codegen"
	StageBundler   Stage = "bundler"
)

// Diagnostic is the uniform error/warning/info record produced by every
// stage of the pipeline, carrying enough context to render a caret-pointing
// source frame and, where applicable, spelling suggestions.
type Diagnostic struct {
	Severity    Severity
	Stage       Stage
	Code        string
	Position    lexer.Position
	Length      int
	Message     string
	Suggestions []string
	Source      string
}

// Error implements the error interface so a Diagnostic can be returned or
// wrapped anywhere an error is expected.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s at %s", d.Severity, d.Message, d.Position)
}

// Format renders the diagnostic with a source frame and caret, matching the
// "line | source \n      ^" layout used throughout the pipeline's CLI output.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	loc := fmt.Sprintf("%d:%d", d.Position.Line, d.Position.Column)
	if d.Position.File != "" {
		sb.WriteString(fmt.Sprintf("%s: %s [%s] in %s:%s\n", d.Severity, d.Message, d.Stage, d.Position.File, loc))
	} else {
		sb.WriteString(fmt.Sprintf("%s: %s [%s] at %s\n", d.Severity, d.Message, d.Stage, loc))
	}

	if line := sourceLine(d.Source, d.Position.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", d.Position.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		caretCol := d.Position.Column - 1
		if caretCol < 0 {
			caretCol = 0
		}
		sb.WriteString(strings.Repeat(" ", len(prefix)+caretCol))
		if color {
			sb.WriteString("\033[1;31m")
		}
		width := d.Length
		if width < 1 {
			width = 1
		}
		sb.WriteString(strings.Repeat("^", width))
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if len(d.Suggestions) > 0 {
		sb.WriteString("  did you mean: ")
		sb.WriteString(strings.Join(d.Suggestions, ", "))
		sb.WriteString("?\n")
	}

	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// Bag accumulates diagnostics across a compilation and reports whether any
// are fatal (severity error).
type Bag struct {
	items []*Diagnostic
}

// Add appends d to the bag.
func (b *Bag) Add(d *Diagnostic) { b.items = append(b.items, d) }

// Errorf appends a new error-severity diagnostic.
func (b *Bag) Errorf(stage Stage, code string, pos lexer.Position, format string, args ...any) {
	b.Add(&Diagnostic{Severity: SeverityError, Stage: stage, Code: code, Position: pos, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a new warning-severity diagnostic.
func (b *Bag) Warnf(stage Stage, code string, pos lexer.Position, format string, args ...any) {
	b.Add(&Diagnostic{Severity: SeverityWarning, Stage: stage, Code: code, Position: pos, Message: fmt.Sprintf(format, args...)})
}

// All returns every accumulated diagnostic.
func (b *Bag) All() []*Diagnostic { return b.items }

// HasErrors reports whether any accumulated diagnostic is an error.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Len reports how many diagnostics have been accumulated.
func (b *Bag) Len() int { return len(b.items) }

// WithSource attaches source text to every diagnostic in the bag that
// doesn't already carry one, so later formatting can render a caret frame.
func (b *Bag) WithSource(source string) {
	for _, d := range b.items {
		if d.Source == "" {
			d.Source = source
		}
	}
}

// Format renders every diagnostic in the bag, one after another.
func Format(items []*Diagnostic, color bool) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, d := range items {
		sb.WriteString(d.Format(color))
		if i < len(items)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
