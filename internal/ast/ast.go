// Package ast defines the abstract syntax tree produced by the parser.
// The node set is closed: the compiler dispatches on it with exhaustive
// type switches, so adding a variant means touching every switch.
package ast

import (
	"strings"

	"github.com/laurelkeys/kaleidoscopy/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	// GetToken returns the node's primary token, for error reporting.
	GetToken() token.Token
}

// Expr is a Node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// NumberExpr is a numeric literal, like `1.0`.
type NumberExpr struct {
	Token token.Token
	Value float64
}

func (e *NumberExpr) exprNode()             {}
func (e *NumberExpr) GetToken() token.Token { return e.Token }

// VariableExpr references a named slot, like `a`.
type VariableExpr struct {
	Token token.Token
	Name  string
}

func (e *VariableExpr) exprNode()             {}
func (e *VariableExpr) GetToken() token.Token { return e.Token }

// UnaryExpr applies a user unary operator to its operand.
type UnaryExpr struct {
	Token    token.Token // the operator token
	Operator rune
	Operand  Expr
}

func (e *UnaryExpr) exprNode()             {}
func (e *UnaryExpr) GetToken() token.Token { return e.Token }

// BinaryExpr applies a binary operator. Operator '=' is semantically an
// assignment; its Left must be a VariableExpr, which is checked at
// lowering time, not parse time.
type BinaryExpr struct {
	Token    token.Token // the operator token
	Operator rune
	Left     Expr
	Right    Expr
}

func (e *BinaryExpr) exprNode()             {}
func (e *BinaryExpr) GetToken() token.Token { return e.Token }

// CallExpr calls a previously declared or defined function by name.
type CallExpr struct {
	Token  token.Token // the callee identifier token
	Callee string
	Args   []Expr
}

func (e *CallExpr) exprNode()             {}
func (e *CallExpr) GetToken() token.Token { return e.Token }

// IfExpr is the conditional expression: if/then/else. Both branches
// produce a value; the expression's value is whichever branch ran.
type IfExpr struct {
	Token     token.Token // the 'if' token
	Condition Expr
	Then      Expr
	Else      Expr
}

func (e *IfExpr) exprNode()             {}
func (e *IfExpr) GetToken() token.Token { return e.Token }

// ForExpr is the counted loop: for i = start, end, step in body.
// Step may be nil, defaulting to 1.0. The loop's value is always 0.0.
type ForExpr struct {
	Token   token.Token // the 'for' token
	VarName string
	Start   Expr
	End     Expr
	Step    Expr // optional
	Body    Expr
}

func (e *ForExpr) exprNode()             {}
func (e *ForExpr) GetToken() token.Token { return e.Token }

// VarBinding is one name/initializer pair of a var expression.
// Init may be nil, defaulting to 0.0.
type VarBinding struct {
	Name string
	Init Expr
}

// VarExpr introduces local mutable bindings scoped to its body. Later
// bindings in the same var see earlier ones already bound.
type VarExpr struct {
	Token    token.Token // the 'var' token
	Bindings []VarBinding
	Body     Expr
}

func (e *VarExpr) exprNode()             {}
func (e *VarExpr) GetToken() token.Token { return e.Token }

// OperatorKind classifies a prototype's user-operator role.
type OperatorKind int

const (
	OpNone OperatorKind = iota
	OpUnary
	OpBinary
)

// AnonymousPrefix starts the generated name of every one-shot wrapper
// around a bare top-level expression.
const AnonymousPrefix = "__anon_"

// Prototype captures a function's name, its parameter names (and thus
// its arity), and, for user operator definitions, the operator symbol
// and declared precedence.
type Prototype struct {
	Token      token.Token
	Name       string
	Params     []string
	Kind       OperatorKind
	Operator   rune // valid when Kind != OpNone
	Precedence int  // valid when Kind == OpBinary
}

func (p *Prototype) GetToken() token.Token { return p.Token }

func (p *Prototype) IsOperator() bool { return p.Kind != OpNone }

func (p *Prototype) IsAnonymous() bool {
	return strings.HasPrefix(p.Name, AnonymousPrefix)
}

// Function is a definition: a prototype plus a body expression.
type Function struct {
	Proto *Prototype
	Body  Expr
}

func (f *Function) GetToken() token.Token { return f.Proto.Token }

// UnaryName returns the hidden function name a unary operator lowers to.
func UnaryName(sym rune) string { return "unary" + string(sym) }

// BinaryName returns the hidden function name a user binary operator
// lowers to.
func BinaryName(sym rune) string { return "binary" + string(sym) }
