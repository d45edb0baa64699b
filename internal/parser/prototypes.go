package parser

import (
	"fmt"

	"github.com/laurelkeys/kaleidoscopy/internal/ast"
	"github.com/laurelkeys/kaleidoscopy/internal/diagnostics"
	"github.com/laurelkeys/kaleidoscopy/internal/operators"
	"github.com/laurelkeys/kaleidoscopy/internal/token"
)

// parseDefinition parses `def prototype expression`. Operator
// prototypes are registered into the operator table before the body is
// parsed; the session rolls the table back if the unit later fails.
func (p *Parser) parseDefinition() (ast.Node, *diagnostics.DiagnosticError) {
	p.nextToken() // eat 'def'

	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}

	switch proto.Kind {
	case ast.OpBinary:
		p.ops.DefineBinary(proto.Operator, proto.Precedence)
	case ast.OpUnary:
		p.ops.DefineUnary(proto.Operator)
	}

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Proto: proto, Body: body}, nil
}

// parseExtern parses `extern prototype`, a declaration with no body.
func (p *Parser) parseExtern() (ast.Node, *diagnostics.DiagnosticError) {
	p.nextToken() // eat 'extern'
	return p.parsePrototype()
}

// parsePrototype parses one of:
//
//	id '(' id* ')'
//	'unary' CHAR '(' id ')'
//	'binary' CHAR number? '(' id id ')'
//
// Parameter lists are comma/space agnostic.
func (p *Parser) parsePrototype() (*ast.Prototype, *diagnostics.DiagnosticError) {
	proto := &ast.Prototype{Token: p.curToken}

	switch p.curToken.Type {
	case token.IDENT:
		proto.Name = p.curToken.Literal.(string)
		p.nextToken()

	case token.UNARY:
		p.nextToken()
		if !p.curTokenIs(token.OPERATOR) {
			return nil, diagnostics.NewError(diagnostics.ErrP001, p.curToken, "expected operator symbol after 'unary'")
		}
		proto.Kind = ast.OpUnary
		proto.Operator = p.curToken.Symbol()
		proto.Name = ast.UnaryName(proto.Operator)
		p.nextToken()

	case token.BINARY:
		p.nextToken()
		if !p.curTokenIs(token.OPERATOR) {
			return nil, diagnostics.NewError(diagnostics.ErrP001, p.curToken, "expected operator symbol after 'binary'")
		}
		proto.Kind = ast.OpBinary
		proto.Operator = p.curToken.Symbol()
		proto.Name = ast.BinaryName(proto.Operator)
		proto.Precedence = operators.DefaultPrecedence
		p.nextToken()

		if p.curTokenIs(token.NUMBER) {
			prec := int(p.curToken.Literal.(float64))
			if prec < 1 {
				return nil, diagnostics.NewError(diagnostics.ErrP001, p.curToken, "operator precedence must be at least 1")
			}
			proto.Precedence = prec
			p.nextToken()
		}

	default:
		return nil, diagnostics.NewError(
			diagnostics.ErrP001,
			p.curToken,
			fmt.Sprintf("expected function name in prototype, found %q", p.curToken.Lexeme),
		)
	}

	if err := p.expectCur(token.LPAREN, "in prototype"); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for p.curTokenIs(token.IDENT) || p.curTokenIs(token.COMMA) {
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		name := p.curToken.Literal.(string)
		if seen[name] {
			return nil, diagnostics.NewError(
				diagnostics.ErrP004,
				p.curToken,
				fmt.Sprintf("duplicate parameter name %q", name),
			)
		}
		seen[name] = true
		proto.Params = append(proto.Params, name)
		p.nextToken()
	}

	if err := p.expectCur(token.RPAREN, "in prototype"); err != nil {
		return nil, err
	}

	if proto.Kind == ast.OpUnary && len(proto.Params) != 1 {
		return nil, diagnostics.NewError(
			diagnostics.ErrP003,
			proto.Token,
			fmt.Sprintf("unary operator '%c' must declare exactly one parameter, got %d", proto.Operator, len(proto.Params)),
		)
	}
	if proto.Kind == ast.OpBinary && len(proto.Params) != 2 {
		return nil, diagnostics.NewError(
			diagnostics.ErrP003,
			proto.Token,
			fmt.Sprintf("binary operator '%c' must declare exactly two parameters, got %d", proto.Operator, len(proto.Params)),
		)
	}

	return proto, nil
}
