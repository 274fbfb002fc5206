package parser

import (
	"fmt"

	"github.com/hql-lang/hql/internal/lexer"
)

// ParserError represents a structured parsing error with position information.
type ParserError struct {
	Message string
	Code    string
	Pos     lexer.Position
	Length  int
}

// Error implements the error interface.
func (e *ParserError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// NewParserError creates a new ParserError with the given parameters.
func NewParserError(pos lexer.Position, length int, message, code string) *ParserError {
	return &ParserError{Message: message, Pos: pos, Length: length, Code: code}
}

// Error code constants for programmatic error handling.
const (
	ErrUnexpectedToken   = "E_UNEXPECTED_TOKEN"
	ErrUnexpectedEOF     = "E_UNEXPECTED_EOF"
	ErrUnclosedDelimiter  = "E_UNCLOSED_DELIMITER"
	ErrMismatchedMapArity = "E_MISMATCHED_MAP_ARITY"
	ErrInvalidSyntax      = "E_INVALID_SYNTAX"
)
