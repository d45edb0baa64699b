// Package token defines the lexical tokens of the Kaleidoscope language.
package token

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers and literals
	IDENT  TokenType = "IDENT"  // fib, x, tmp
	NUMBER TokenType = "NUMBER" // 1.0, 42

	// Any single character that is not punctuation, a literal or an
	// identifier. The parser decides what it means by consulting the
	// session's operator table.
	OPERATOR TokenType = "OPERATOR"

	// Punctuation
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"

	// Keywords
	DEF    TokenType = "def"
	EXTERN TokenType = "extern"
	IF     TokenType = "if"
	THEN   TokenType = "then"
	ELSE   TokenType = "else"
	FOR    TokenType = "for"
	IN     TokenType = "in"
	VAR    TokenType = "var"
	BINARY TokenType = "binary"
	UNARY  TokenType = "unary"
)

// Token is a single lexical token with its source position.
// Literal holds the decoded value: string for IDENT and OPERATOR,
// float64 for NUMBER.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

// Symbol returns the operator character of an OPERATOR token.
func (t Token) Symbol() rune {
	for _, r := range t.Lexeme {
		return r
	}
	return 0
}

var keywords = map[string]TokenType{
	"def":    DEF,
	"extern": EXTERN,
	"if":     IF,
	"then":   THEN,
	"else":   ELSE,
	"for":    FOR,
	"in":     IN,
	"var":    VAR,
	"binary": BINARY,
	"unary":  UNARY,
}

// LookupIdent maps reserved words to their keyword token type and
// everything else to IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
