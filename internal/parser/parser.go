// Package parser builds the S-expression AST from an HQL token stream.
//
// The grammar is uniform: every parenthesized form is a List, every
// bracketed form a Vector, every brace form a Map, and "#{...}" a Set.
// There is no per-keyword grammar rule — "(defn ...)", "(if ...)", and a
// user macro call all parse identically as a List; giving them meaning is
// the macro expander's and semantic analyzer's job, not the parser's.
package parser

import (
	"github.com/hql-lang/hql/internal/ast"
	"github.com/hql-lang/hql/internal/lexer"
)

// Parser is a pure function of a token stream to an AST forest plus
// parse errors: it performs no I/O and never mutates its input.
type Parser struct {
	l       *lexer.Lexer
	tokens  []lexer.Token
	pos     int
	errors  []*ParserError
}

// New creates a Parser that reads tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.buffer()
	return p
}

// buffer lazily pulls the next token into the internal slice.
func (p *Parser) buffer() {
	if p.pos >= len(p.tokens) {
		p.tokens = append(p.tokens, p.l.NextToken())
	}
}

func (p *Parser) peek() lexer.Token {
	p.buffer()
	return p.tokens[p.pos]
}

func (p *Parser) peekN(n int) lexer.Token {
	for len(p.tokens) <= p.pos+n {
		p.tokens = append(p.tokens, p.l.NextToken())
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *Parser) addError(pos lexer.Position, length int, msg, code string) {
	p.errors = append(p.errors, NewParserError(pos, length, msg, code))
}

// Errors returns all parse diagnostics accumulated so far.
func (p *Parser) Errors() []*ParserError { return p.errors }

// ParseProgram parses every top-level form until EOF.
func (p *Parser) ParseProgram() []ast.Node {
	var forms []ast.Node
	for p.peek().Type != lexer.EOF {
		n := p.parseForm()
		if n != nil {
			forms = append(forms, n)
		}
	}
	return forms
}

// parseForm parses one datum, including quote-family prefixes and the
// "#_" discard dispatch. After a "#_" discard (or a stray closing
// delimiter) it returns the form that follows, or nil at end of input.
func (p *Parser) parseForm() ast.Node {
	tok := p.peek()
	switch tok.Type {
	case lexer.LeftParen:
		return p.parseList()
	case lexer.LeftBracket:
		return p.parseVector()
	case lexer.LeftBrace:
		return p.parseMap()
	case lexer.HashBrace:
		return p.parseSet()
	case lexer.Quote:
		p.advance()
		inner := p.requireForm(tok.Pos)
		return wrapForm("quote", tok, inner)
	case lexer.Quasiquote:
		p.advance()
		inner := p.requireForm(tok.Pos)
		return wrapForm("quasiquote", tok, inner)
	case lexer.Unquote:
		p.advance()
		inner := p.requireForm(tok.Pos)
		return wrapForm("unquote", tok, inner)
	case lexer.UnquoteSplice:
		p.advance()
		inner := p.requireForm(tok.Pos)
		return wrapForm("unquote-splice", tok, inner)
	case lexer.HashUnderscore:
		p.advance()
		p.requireForm(tok.Pos) // parse and drop
		return p.parseFormOrNil()
	case lexer.BacktickTemplate:
		p.advance()
		return p.buildTemplateLiteral(tok)
	case lexer.Symbol:
		p.advance()
		return &ast.Symbol{Name: tok.Literal, P: tok.Pos}
	case lexer.Keyword:
		p.advance()
		return &ast.Symbol{Name: tok.Literal, IsKeyword: true, P: tok.Pos}
	case lexer.Number:
		p.advance()
		return &ast.Literal{Kind: ast.NumberLit, Value: parseNumber(tok.Literal), P: tok.Pos}
	case lexer.String:
		p.advance()
		return &ast.Literal{Kind: ast.StringLit, Value: tok.Literal, P: tok.Pos}
	case lexer.Boolean:
		p.advance()
		return &ast.Literal{Kind: ast.BooleanLit, Value: tok.Literal == "true", P: tok.Pos}
	case lexer.Nil:
		p.advance()
		return &ast.Literal{Kind: ast.NilLit, P: tok.Pos}
	case lexer.RightParen, lexer.RightBracket, lexer.RightBrace:
		p.advance()
		p.addError(tok.Pos, tok.Length, "unexpected delimiter '"+tok.Literal+"'", ErrUnexpectedToken)
		return p.parseFormOrNil()
	case lexer.EOF:
		p.addError(tok.Pos, 0, "unexpected end of file", ErrUnexpectedEOF)
		return nil
	default:
		p.advance()
		p.addError(tok.Pos, tok.Length, "unexpected token "+tok.Type.String(), ErrUnexpectedToken)
		return p.parseFormOrNil()
	}
}

// requireForm parses the next form, reporting a missing-operand error at
// pos if input is already exhausted.
func (p *Parser) requireForm(pos lexer.Position) ast.Node {
	if p.peek().Type == lexer.EOF {
		p.addError(pos, 0, "expected a form after reader macro", ErrUnexpectedEOF)
		return &ast.Literal{Kind: ast.NilLit, P: pos}
	}
	return p.parseForm()
}

// parseFormOrNil parses another form if one remains, else returns nil;
// used after error recovery so callers don't have to special-case EOF.
func (p *Parser) parseFormOrNil() ast.Node {
	if p.peek().Type == lexer.EOF {
		return nil
	}
	return p.parseForm()
}

func wrapForm(head string, tok lexer.Token, inner ast.Node) ast.Node {
	return &ast.List{
		Elements: []ast.Node{&ast.Symbol{Name: head, P: tok.Pos}, inner},
		P:        tok.Pos,
	}
}

func (p *Parser) parseList() ast.Node {
	open := p.advance() // '('
	var elems []ast.Node
	for {
		t := p.peek()
		if t.Type == lexer.RightParen {
			p.advance()
			break
		}
		if t.Type == lexer.EOF {
			p.addError(open.Pos, 1, "unterminated list: missing ')'", ErrUnclosedDelimiter)
			break
		}
		elems = append(elems, p.parseForm())
	}
	return &ast.List{Elements: elems, P: open.Pos}
}

func (p *Parser) parseVector() ast.Node {
	open := p.advance() // '['
	var elems []ast.Node
	for {
		t := p.peek()
		if t.Type == lexer.RightBracket {
			p.advance()
			break
		}
		if t.Type == lexer.EOF {
			p.addError(open.Pos, 1, "unterminated vector: missing ']'", ErrUnclosedDelimiter)
			break
		}
		elems = append(elems, p.parseForm())
	}
	return &ast.Vector{Elements: elems, P: open.Pos}
}

func (p *Parser) parseSet() ast.Node {
	open := p.advance() // '#{'
	var elems []ast.Node
	for {
		t := p.peek()
		if t.Type == lexer.RightBrace {
			p.advance()
			break
		}
		if t.Type == lexer.EOF {
			p.addError(open.Pos, 2, "unterminated set: missing '}'", ErrUnclosedDelimiter)
			break
		}
		elems = append(elems, p.parseForm())
	}
	return &ast.Set{Elements: elems, P: open.Pos}
}

func (p *Parser) parseMap() ast.Node {
	open := p.advance() // '{'
	var entries []ast.MapEntry
	var pending []ast.Node
	for {
		t := p.peek()
		if t.Type == lexer.RightBrace {
			p.advance()
			break
		}
		if t.Type == lexer.EOF {
			p.addError(open.Pos, 1, "unterminated map: missing '}'", ErrUnclosedDelimiter)
			break
		}
		pending = append(pending, p.parseForm())
	}
	if len(pending)%2 != 0 {
		p.addError(open.Pos, 1, "map literal has an odd number of entries", ErrMismatchedMapArity)
		pending = pending[:len(pending)-1]
	}
	for i := 0; i < len(pending); i += 2 {
		entries = append(entries, ast.MapEntry{Key: pending[i], Value: pending[i+1]})
	}
	return &ast.Map{Entries: entries, P: open.Pos}
}

// buildTemplateLiteral expands a BacktickTemplate token into
// "(template-literal segments...)", where literal segments are string
// literals and expression segments are independently lexed and parsed.
func (p *Parser) buildTemplateLiteral(tok lexer.Token) ast.Node {
	elems := []ast.Node{&ast.Symbol{Name: "template-literal", P: tok.Pos}}
	for _, seg := range tok.Segments {
		switch seg.Kind {
		case lexer.SegmentLiteral:
			elems = append(elems, &ast.Literal{Kind: ast.StringLit, Value: seg.Literal, P: seg.Pos})
		case lexer.SegmentExpr:
			sub := New(lexer.New(seg.Expr, lexer.WithFile(tok.Pos.File)))
			forms := sub.ParseProgram()
			for _, e := range sub.Errors() {
				e.Pos.Line = seg.Pos.Line
				p.errors = append(p.errors, e)
			}
			if len(forms) > 0 {
				elems = append(elems, forms[0])
			} else {
				elems = append(elems, &ast.Literal{Kind: ast.NilLit, P: seg.Pos})
			}
		}
	}
	return &ast.List{Elements: elems, P: tok.Pos}
}

// parseNumber converts a lexed numeric literal's text into a float64,
// honoring the lexer's sign/decimal/exponent grammar.
func parseNumber(text string) float64 {
	var v float64
	neg := false
	i := 0
	if i < len(text) && (text[i] == '+' || text[i] == '-') {
		neg = text[i] == '-'
		i++
	}
	intPart := 0.0
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		intPart = intPart*10 + float64(text[i]-'0')
		i++
	}
	v = intPart
	if i < len(text) && text[i] == '.' {
		i++
		frac := 0.0
		scale := 1.0
		for i < len(text) && text[i] >= '0' && text[i] <= '9' {
			frac = frac*10 + float64(text[i]-'0')
			scale *= 10
			i++
		}
		v += frac / scale
	}
	if i < len(text) && (text[i] == 'e' || text[i] == 'E') {
		i++
		expNeg := false
		if i < len(text) && (text[i] == '+' || text[i] == '-') {
			expNeg = text[i] == '-'
			i++
		}
		exp := 0
		for i < len(text) && text[i] >= '0' && text[i] <= '9' {
			exp = exp*10 + int(text[i]-'0')
			i++
		}
		mul := 1.0
		for n := 0; n < exp; n++ {
			mul *= 10
		}
		if expNeg {
			v /= mul
		} else {
			v *= mul
		}
	}
	if neg {
		v = -v
	}
	return v
}
