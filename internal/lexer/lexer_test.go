package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `(+ 1 2) [a b] {:k v} #{1 2} 'x ,y ,@z :kw true false nil ; comment
"str\n"`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"(", LeftParen},
		{"+", Symbol},
		{"1", Number},
		{"2", Number},
		{")", RightParen},
		{"[", LeftBracket},
		{"a", Symbol},
		{"b", Symbol},
		{"]", RightBracket},
		{"{", LeftBrace},
		{"k", Keyword},
		{"v", Symbol},
		{"}", RightBrace},
		{"#{", HashBrace},
		{"1", Number},
		{"2", Number},
		{"}", RightBrace},
		{"'", Quote},
		{"x", Symbol},
		{",", Unquote},
		{"y", Symbol},
		{",@", UnquoteSplice},
		{"z", Symbol},
		{"kw", Keyword},
		{"true", Boolean},
		{"false", Boolean},
		{"nil", Nil},
		{"str\n", String},
		{"", EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s (literal=%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNegativeNumberVsOperator(t *testing.T) {
	l := New("(- 1 2) -5")
	want := []TokenType{LeftParen, Symbol, Number, Number, RightParen, Number, EOF}
	for i, wt := range want {
		tok := l.NextToken()
		if tok.Type != wt {
			t.Fatalf("tok %d: expected %s got %s (%q)", i, wt, tok.Type, tok.Literal)
		}
	}
}

func TestQuasiquoteVsTemplate(t *testing.T) {
	l := New("`(a b) `Hello ${name}!`")
	tok := l.NextToken()
	if tok.Type != Quasiquote {
		t.Fatalf("expected Quasiquote, got %s", tok.Type)
	}
	// consume the quoted list
	for tok.Type != RightParen {
		tok = l.NextToken()
	}
	tok = l.NextToken()
	if tok.Type != BacktickTemplate {
		t.Fatalf("expected BacktickTemplate, got %s", tok.Type)
	}
	if len(tok.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(tok.Segments), tok.Segments)
	}
	if tok.Segments[0].Kind != SegmentLiteral || tok.Segments[0].Literal != "Hello " {
		t.Fatalf("segment 0 mismatch: %+v", tok.Segments[0])
	}
	if tok.Segments[1].Kind != SegmentExpr || tok.Segments[1].Expr != "name" {
		t.Fatalf("segment 1 mismatch: %+v", tok.Segments[1])
	}
	if tok.Segments[2].Kind != SegmentLiteral || tok.Segments[2].Literal != "!" {
		t.Fatalf("segment 2 mismatch: %+v", tok.Segments[2])
	}
}

func TestUnterminatedStringRecovers(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != String {
		t.Fatalf("expected String token even when unterminated, got %s", tok.Type)
	}
	if len(l.Errors()) == 0 {
		t.Fatal("expected a lex error for unterminated string")
	}
}

func TestLexerTotality(t *testing.T) {
	inputs := []string{
		"", "(", ")]}", "#", "1.2.3", "-", "+", "%^&",
		"(defn f [x] (+ x 1))",
	}
	for _, in := range inputs {
		l := New(in)
		toks, _ := l.Tokenize()
		if len(toks) == 0 || toks[len(toks)-1].Type != EOF {
			t.Fatalf("tokenize(%q) did not terminate with EOF", in)
		}
	}
}

func TestCommentPreservation(t *testing.T) {
	l := New("; hi\n(x)", WithPreserveComments(true))
	tok := l.NextToken()
	if tok.Type != Comment || tok.Literal != "; hi" {
		t.Fatalf("expected preserved comment, got %+v", tok)
	}
}
