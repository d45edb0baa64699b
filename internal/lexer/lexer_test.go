package lexer_test

import (
	"testing"

	"github.com/laurelkeys/kaleidoscopy/internal/lexer"
	"github.com/laurelkeys/kaleidoscopy/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `# Compute the x'th fibonacci number.
def fib(x)
  if x < 3 then
    1
  else
    fib(x-1) + fib(x-2);

extern sin(arg);
`

	expected := []struct {
		typ    token.TokenType
		lexeme string
	}{
		{token.DEF, "def"},
		{token.IDENT, "fib"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.RPAREN, ")"},
		{token.IF, "if"},
		{token.IDENT, "x"},
		{token.OPERATOR, "<"},
		{token.NUMBER, "3"},
		{token.THEN, "then"},
		{token.NUMBER, "1"},
		{token.ELSE, "else"},
		{token.IDENT, "fib"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.OPERATOR, "-"},
		{token.NUMBER, "1"},
		{token.RPAREN, ")"},
		{token.OPERATOR, "+"},
		{token.IDENT, "fib"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.OPERATOR, "-"},
		{token.NUMBER, "2"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.EXTERN, "extern"},
		{token.IDENT, "sin"},
		{token.LPAREN, "("},
		{token.IDENT, "arg"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	}

	l := lexer.New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Fatalf("token %d: expected type %q, got %q (lexeme %q)", i, exp.typ, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != exp.lexeme {
			t.Fatalf("token %d: expected lexeme %q, got %q", i, exp.lexeme, tok.Lexeme)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		typ   token.TokenType
		value float64
	}{
		{"integer", "42", token.NUMBER, 42},
		{"fractional", "1.5", token.NUMBER, 1.5},
		{"leading_dot", ".5", token.NUMBER, 0.5},
		{"trailing_dot", "2.", token.NUMBER, 2},
		{"double_dot", "1.2.3", token.ILLEGAL, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tok := lexer.New(tc.input).NextToken()
			if tok.Type != tc.typ {
				t.Fatalf("expected type %q, got %q", tc.typ, tok.Type)
			}
			if tok.Lexeme != tc.input {
				t.Errorf("expected the whole input %q as lexeme, got %q", tc.input, tok.Lexeme)
			}
			if tc.typ == token.NUMBER {
				if got := tok.Literal.(float64); got != tc.value {
					t.Errorf("expected literal %v, got %v", tc.value, got)
				}
			}
		})
	}
}

func TestOperatorCharacters(t *testing.T) {
	// Unknown symbols still lex as operator tokens; the parser decides
	// whether they mean anything.
	input := "a ! b ? c | d & e"
	l := lexer.New(input)

	var ops []string
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		if tok.Type == token.OPERATOR {
			ops = append(ops, tok.Lexeme)
		}
	}

	expected := []string{"!", "?", "|", "&"}
	if len(ops) != len(expected) {
		t.Fatalf("expected %d operator tokens, got %d (%v)", len(expected), len(ops), ops)
	}
	for i, op := range expected {
		if ops[i] != op {
			t.Errorf("operator %d: expected %q, got %q", i, op, ops[i])
		}
	}
}

func TestPositions(t *testing.T) {
	input := "def f(x)\n  x + 1"
	l := lexer.New(input)

	expected := []struct {
		lexeme string
		line   int
		column int
	}{
		{"def", 1, 1},
		{"f", 1, 5},
		{"(", 1, 6},
		{"x", 1, 7},
		{")", 1, 8},
		{"x", 2, 3},
		{"+", 2, 5},
		{"1", 2, 7},
	}

	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Lexeme != exp.lexeme {
			t.Fatalf("token %d: expected lexeme %q, got %q", i, exp.lexeme, tok.Lexeme)
		}
		if tok.Line != exp.line || tok.Column != exp.column {
			t.Errorf("token %q: expected position %d:%d, got %d:%d",
				exp.lexeme, exp.line, exp.column, tok.Line, tok.Column)
		}
	}
}

func TestEOFIsSticky(t *testing.T) {
	l := lexer.New("x")
	l.NextToken()
	for i := 0; i < 3; i++ {
		if tok := l.NextToken(); tok.Type != token.EOF {
			t.Fatalf("call %d after end: expected EOF, got %q", i, tok.Type)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	input := "# leading comment\n1 # trailing comment\n# only a comment"
	l := lexer.New(input)

	tok := l.NextToken()
	if tok.Type != token.NUMBER {
		t.Fatalf("expected NUMBER, got %q", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Fatalf("expected EOF after comments, got %q (%q)", tok.Type, tok.Lexeme)
	}
}
