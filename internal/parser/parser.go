// Package parser implements the precedence-climbing recursive-descent
// parser. Precedences are not fixed: the parser consults the session's
// operator table, and registers user operator definitions into it
// before parsing their bodies, so a new operator is usable recursively
// within its own definition.
package parser

import (
	"fmt"

	"github.com/laurelkeys/kaleidoscopy/internal/ast"
	"github.com/laurelkeys/kaleidoscopy/internal/diagnostics"
	"github.com/laurelkeys/kaleidoscopy/internal/lexer"
	"github.com/laurelkeys/kaleidoscopy/internal/operators"
	"github.com/laurelkeys/kaleidoscopy/internal/token"
)

// MaxRecursionDepth bounds expression nesting so a pathological input
// degrades into a diagnostic instead of a stack overflow.
const MaxRecursionDepth = 500

type Parser struct {
	l   *lexer.Lexer
	ops *operators.Table

	curToken  token.Token
	peekToken token.Token

	depth int
}

func New(l *lexer.Lexer, ops *operators.Table) *Parser {
	p := &Parser{l: l, ops: ops}

	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool { return p.curToken.Type == t }

func (p *Parser) curIsOperator(sym rune) bool {
	return p.curToken.Type == token.OPERATOR && p.curToken.Symbol() == sym
}

// expectCur consumes the current token if it has the wanted type and
// otherwise reports a missing-delimiter diagnostic.
func (p *Parser) expectCur(t token.TokenType, context string) *diagnostics.DiagnosticError {
	if !p.curTokenIs(t) {
		return diagnostics.NewError(
			diagnostics.ErrP002,
			p.curToken,
			fmt.Sprintf("expected %q %s, found %q", string(t), context, p.curToken.Lexeme),
		)
	}
	p.nextToken()
	return nil
}

// ParseUnit parses one top-level unit and leaves the lookahead at the
// start of the next one. It returns:
//
//   - *ast.Function for a `def`
//   - *ast.Prototype for an `extern`
//   - ast.Expr for a bare expression
//   - nil, nil at end of input
//
// Top-level semicolons are skipped. No unit partially succeeds: on
// error the caller should Synchronize before parsing further units.
func (p *Parser) ParseUnit() (ast.Node, *diagnostics.DiagnosticError) {
	for p.curTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	switch p.curToken.Type {
	case token.EOF:
		return nil, nil
	case token.DEF:
		return p.parseDefinition()
	case token.EXTERN:
		return p.parseExtern()
	default:
		return p.parseExpression()
	}
}

// Synchronize discards tokens until the next top-level boundary: a
// semicolon (consumed) or a token that starts a new top-level form.
func (p *Parser) Synchronize() {
	for {
		switch p.curToken.Type {
		case token.EOF, token.DEF, token.EXTERN:
			return
		case token.SEMICOLON:
			p.nextToken()
			return
		}
		p.nextToken()
	}
}
