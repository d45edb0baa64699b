// Package diagnostics defines the structured error type shared by every
// stage of the pipeline. A diagnostic is always local to the unit being
// processed; it never terminates the session.
package diagnostics

import (
	"fmt"

	"github.com/laurelkeys/kaleidoscopy/internal/token"
)

type ErrorCode string

const (
	// Lexing
	ErrL001 ErrorCode = "L001" // malformed number literal

	// Parsing
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // missing delimiter
	ErrP003 ErrorCode = "P003" // operator prototype with wrong parameter count
	ErrP004 ErrorCode = "P004" // duplicate parameter name
	ErrP005 ErrorCode = "P005" // expression nesting limit exceeded

	// Lowering
	ErrC001 ErrorCode = "C001" // unknown operator
	ErrC002 ErrorCode = "C002" // unbound name
	ErrC003 ErrorCode = "C003" // call to undefined function
	ErrC004 ErrorCode = "C004" // call arity mismatch
	ErrC005 ErrorCode = "C005" // function exceeds a lowering limit

	// Execution
	ErrR001 ErrorCode = "R001" // runtime error
	ErrR002 ErrorCode = "R002" // symbol unresolved at JIT time
)

// DiagnosticError is a structured failure: kind, message and the
// approximate source position where it was detected.
type DiagnosticError struct {
	Code    ErrorCode
	Message string
	File    string
	Line    int
	Column  int
}

// NewError builds a diagnostic positioned at tok.
func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Message: message,
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

func (e *DiagnosticError) Error() string {
	if e.Line > 0 {
		if e.File != "" {
			return fmt.Sprintf("%s:%d:%d: [%s] %s", e.File, e.Line, e.Column, e.Code, e.Message)
		}
		return fmt.Sprintf("%d:%d: [%s] %s", e.Line, e.Column, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
