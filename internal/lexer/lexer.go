// Package lexer turns Kaleidoscope source text into a forward-only
// token sequence, one token per NextToken call.
package lexer

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/laurelkeys/kaleidoscopy/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// NextToken scans and returns the next token. Once the input is
// exhausted it returns EOF permanently.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Line: l.line, Column: l.column}
	case '(':
		return l.punct(token.LPAREN)
	case ')':
		return l.punct(token.RPAREN)
	case ',':
		return l.punct(token.COMMA)
	case ';':
		return l.punct(token.SEMICOLON)
	}

	if isLetter(l.ch) {
		return l.readIdentifier()
	}
	if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
		return l.readNumber()
	}

	// Any other character is an operator candidate; the parser decides
	// whether it is meaningful by consulting the operator table.
	tok := token.Token{
		Type:    token.OPERATOR,
		Lexeme:  string(l.ch),
		Literal: string(l.ch),
		Line:    l.line,
		Column:  l.column,
	}
	l.readChar()
	return tok
}

func (l *Lexer) punct(t token.TokenType) token.Token {
	tok := token.Token{Type: t, Lexeme: string(l.ch), Literal: string(l.ch), Line: l.line, Column: l.column}
	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		if unicode.IsSpace(l.ch) {
			l.readChar()
			continue
		}
		if l.ch == '#' {
			// comment until end of line
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		return
	}
}

func (l *Lexer) readIdentifier() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	lexeme := l.input[position:l.position]
	return token.Token{
		Type:    token.LookupIdent(lexeme),
		Lexeme:  lexeme,
		Literal: lexeme,
		Line:    startLine,
		Column:  startCol,
	}
}

func (l *Lexer) readNumber() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	for isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	lexeme := l.input[position:l.position]

	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		// e.g. "1.2.3": reported as a malformed literal, not split up
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: lexeme, Line: startLine, Column: startCol}
	}
	return token.Token{Type: token.NUMBER, Lexeme: lexeme, Literal: value, Line: startLine, Column: startCol}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
