package parser

import (
	"fmt"

	"github.com/laurelkeys/kaleidoscopy/internal/ast"
	"github.com/laurelkeys/kaleidoscopy/internal/diagnostics"
	"github.com/laurelkeys/kaleidoscopy/internal/token"
)

func (p *Parser) parseExpression() (ast.Expr, *diagnostics.DiagnosticError) {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		return nil, diagnostics.NewError(
			diagnostics.ErrP005,
			p.curToken,
			"expression too complex: recursion depth limit exceeded",
		)
	}

	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseBinaryRHS(1, lhs)
}

// parseBinaryRHS implements precedence climbing: while the pending
// operator binds at least as tightly as minPrec, consume it, parse the
// next unary operand, and absorb any tighter-binding continuation into
// the right operand before merging. Left-associative throughout, except
// that assignment chains to the right.
func (p *Parser) parseBinaryRHS(minPrec int, lhs ast.Expr) (ast.Expr, *diagnostics.DiagnosticError) {
	for {
		if !p.curTokenIs(token.OPERATOR) {
			return lhs, nil
		}

		sym := p.curToken.Symbol()
		prec, known := p.ops.Precedence(sym)
		if !known {
			return nil, p.unknownBinaryOperator(p.curToken)
		}
		if prec < minPrec {
			return lhs, nil
		}

		opTok := p.curToken
		p.nextToken() // eat the operator

		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		// If the operator after rhs binds tighter, it takes rhs as its
		// lhs first. Equal precedence continues to the right only for
		// the right-associative assignment operator.
		if p.curTokenIs(token.OPERATOR) {
			nextSym := p.curToken.Symbol()
			nextPrec, nextKnown := p.ops.Precedence(nextSym)
			if !nextKnown {
				return nil, p.unknownBinaryOperator(p.curToken)
			}
			if prec < nextPrec {
				rhs, err = p.parseBinaryRHS(prec+1, rhs)
			} else if sym == '=' && nextSym == '=' && nextPrec == prec {
				rhs, err = p.parseBinaryRHS(prec, rhs)
			}
			if err != nil {
				return nil, err
			}
		}

		lhs = &ast.BinaryExpr{Token: opTok, Operator: sym, Left: lhs, Right: rhs}
	}
}

func (p *Parser) unknownBinaryOperator(tok token.Token) *diagnostics.DiagnosticError {
	sym := tok.Symbol()
	if p.ops.IsUnary(sym) {
		return diagnostics.NewError(diagnostics.ErrC001, tok,
			fmt.Sprintf("operator '%c' is unary, not binary", sym))
	}
	return diagnostics.NewError(diagnostics.ErrC001, tok,
		fmt.Sprintf("unknown operator '%c'", sym))
}

// parseUnary consumes a chain of known unary-operator symbols and then
// a primary. Unknown operator symbols are not consumed here; they fall
// through to parsePrimary and are reported there.
func (p *Parser) parseUnary() (ast.Expr, *diagnostics.DiagnosticError) {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		return nil, diagnostics.NewError(
			diagnostics.ErrP005,
			p.curToken,
			"expression too complex: recursion depth limit exceeded",
		)
	}

	if p.curTokenIs(token.OPERATOR) && p.ops.IsUnary(p.curToken.Symbol()) {
		opTok := p.curToken
		p.nextToken()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: opTok, Operator: opTok.Symbol(), Operand: operand}, nil
	}

	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, *diagnostics.DiagnosticError) {
	switch p.curToken.Type {
	case token.IDENT:
		return p.parseIdentifierExpression()
	case token.NUMBER:
		expr := &ast.NumberExpr{Token: p.curToken, Value: p.curToken.Literal.(float64)}
		p.nextToken()
		return expr, nil
	case token.LPAREN:
		return p.parseParenExpression()
	case token.IF:
		return p.parseIfExpression()
	case token.FOR:
		return p.parseForExpression()
	case token.VAR:
		return p.parseVarExpression()
	case token.ILLEGAL:
		return nil, diagnostics.NewError(diagnostics.ErrL001, p.curToken,
			fmt.Sprintf("malformed number literal %q", p.curToken.Lexeme))
	case token.OPERATOR:
		return nil, diagnostics.NewError(diagnostics.ErrC001, p.curToken,
			fmt.Sprintf("unknown unary operator '%c'", p.curToken.Symbol()))
	default:
		return nil, diagnostics.NewError(diagnostics.ErrP001, p.curToken,
			fmt.Sprintf("unexpected %q when expecting an expression", p.curToken.Lexeme))
	}
}

// parseIdentifierExpression parses a bare variable reference, or a call
// when the identifier is followed by '('. Call arguments may be
// separated by commas or plain whitespace.
func (p *Parser) parseIdentifierExpression() (ast.Expr, *diagnostics.DiagnosticError) {
	tok := p.curToken
	name := p.curToken.Literal.(string)
	p.nextToken()

	if !p.curTokenIs(token.LPAREN) {
		return &ast.VariableExpr{Token: tok, Name: name}, nil
	}
	p.nextToken() // eat '('

	call := &ast.CallExpr{Token: tok, Callee: name}
	for !p.curTokenIs(token.RPAREN) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			if p.curTokenIs(token.RPAREN) {
				return nil, diagnostics.NewError(diagnostics.ErrP001, p.curToken,
					"expected expression after ',' in argument list")
			}
			continue
		}
		if !p.curTokenIs(token.RPAREN) && !p.canStartExpression() {
			return nil, diagnostics.NewError(diagnostics.ErrP002, p.curToken,
				fmt.Sprintf("expected ')' or ',' in argument list, found %q", p.curToken.Lexeme))
		}
	}
	p.nextToken() // eat ')'

	return call, nil
}

func (p *Parser) canStartExpression() bool {
	switch p.curToken.Type {
	case token.IDENT, token.NUMBER, token.LPAREN, token.IF, token.FOR, token.VAR:
		return true
	case token.OPERATOR:
		return p.ops.IsUnary(p.curToken.Symbol())
	}
	return false
}

func (p *Parser) parseParenExpression() (ast.Expr, *diagnostics.DiagnosticError) {
	p.nextToken() // eat '('

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectCur(token.RPAREN, "to close parenthesized expression"); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseIfExpression() (ast.Expr, *diagnostics.DiagnosticError) {
	expr := &ast.IfExpr{Token: p.curToken}
	p.nextToken() // eat 'if'

	var err *diagnostics.DiagnosticError
	if expr.Condition, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if err := p.expectCur(token.THEN, "after if condition"); err != nil {
		return nil, err
	}
	if expr.Then, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if err := p.expectCur(token.ELSE, "after then branch"); err != nil {
		return nil, err
	}
	if expr.Else, err = p.parseExpression(); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseForExpression() (ast.Expr, *diagnostics.DiagnosticError) {
	expr := &ast.ForExpr{Token: p.curToken}
	p.nextToken() // eat 'for'

	if !p.curTokenIs(token.IDENT) {
		return nil, diagnostics.NewError(diagnostics.ErrP001, p.curToken, "expected loop variable name after 'for'")
	}
	expr.VarName = p.curToken.Literal.(string)
	p.nextToken()

	if !p.curIsOperator('=') {
		return nil, diagnostics.NewError(diagnostics.ErrP002, p.curToken, "expected '=' after loop variable")
	}
	p.nextToken()

	var err *diagnostics.DiagnosticError
	if expr.Start, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if err := p.expectCur(token.COMMA, "after for start value"); err != nil {
		return nil, err
	}
	if expr.End, err = p.parseExpression(); err != nil {
		return nil, err
	}

	// optional step
	if p.curTokenIs(token.COMMA) {
		p.nextToken()
		if expr.Step, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}

	if err := p.expectCur(token.IN, "after for clauses"); err != nil {
		return nil, err
	}
	if expr.Body, err = p.parseExpression(); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseVarExpression() (ast.Expr, *diagnostics.DiagnosticError) {
	expr := &ast.VarExpr{Token: p.curToken}
	p.nextToken() // eat 'var'

	for {
		if !p.curTokenIs(token.IDENT) {
			return nil, diagnostics.NewError(diagnostics.ErrP001, p.curToken, "expected variable name after 'var'")
		}
		binding := ast.VarBinding{Name: p.curToken.Literal.(string)}
		p.nextToken()

		if p.curIsOperator('=') {
			p.nextToken()
			init, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			binding.Init = init
		}
		expr.Bindings = append(expr.Bindings, binding)

		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if err := p.expectCur(token.IN, "after var bindings"); err != nil {
		return nil, err
	}

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	expr.Body = body
	return expr, nil
}
