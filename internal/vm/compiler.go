package vm

import (
	"fmt"

	"github.com/laurelkeys/kaleidoscopy/internal/ast"
	"github.com/laurelkeys/kaleidoscopy/internal/diagnostics"
)

// maxLocals bounds the named slots of one function; slot and pop-count
// operands are a single byte.
const maxLocals = 255

// Compiler lowers one function's AST to a bytecode chunk. Every
// mutable binding — parameter, loop variable, var binding — becomes a
// named frame-relative slot with load/store semantics; there is no
// merge-value construction.
type Compiler struct {
	program *Program

	chunk      *Chunk
	locals     []Local
	localCount int
	scopeDepth int
	slotCount  int // current operand stack height, relative to the frame base
}

func NewCompiler(program *Program) *Compiler {
	return &Compiler{program: program}
}

// CompileFunction lowers fn's body into out.Chunk. The function must
// already be linked into the program so recursive calls resolve; the
// caller discards the link again if compilation fails.
func (c *Compiler) CompileFunction(fn *ast.Function, out *CompiledFunction) *diagnostics.DiagnosticError {
	c.chunk = NewChunk()
	c.locals = c.locals[:0]
	c.localCount = 0
	c.scopeDepth = 0
	c.slotCount = 0

	// The caller pushes the arguments; they are the first slots.
	for _, param := range fn.Proto.Params {
		if !c.addLocal(param, c.slotCount) {
			return c.tooManyLocals(fn.Body)
		}
		c.slotCount++
	}

	if err := c.compileExpression(fn.Body); err != nil {
		return err
	}
	c.emit(OP_RETURN, fn.Body.GetToken().Line)

	out.Chunk = c.chunk
	return nil
}

// compileExpression emits code that nets exactly one new value on the
// operand stack.
func (c *Compiler) compileExpression(expr ast.Expr) *diagnostics.DiagnosticError {
	switch e := expr.(type) {
	case *ast.NumberExpr:
		c.emitConstant(e.Value, e.Token.Line)
		return nil

	case *ast.VariableExpr:
		slot := c.resolveLocal(e.Name)
		if slot < 0 {
			return diagnostics.NewError(diagnostics.ErrC002, e.Token,
				fmt.Sprintf("unknown variable name %q", e.Name))
		}
		c.emit(OP_GET_SLOT, e.Token.Line)
		c.chunk.Write(byte(slot), e.Token.Line)
		c.slotCount++
		return nil

	case *ast.UnaryExpr:
		return c.compileUnary(e)

	case *ast.BinaryExpr:
		return c.compileBinary(e)

	case *ast.CallExpr:
		return c.compileCall(e)

	case *ast.IfExpr:
		return c.compileIf(e)

	case *ast.ForExpr:
		return c.compileFor(e)

	case *ast.VarExpr:
		return c.compileVar(e)
	}

	return diagnostics.NewError(diagnostics.ErrR001, expr.GetToken(),
		fmt.Sprintf("cannot lower expression node %T", expr))
}

func (c *Compiler) compileUnary(e *ast.UnaryExpr) *diagnostics.DiagnosticError {
	callee, ok := c.program.Resolve(ast.UnaryName(e.Operator))
	if !ok {
		return diagnostics.NewError(diagnostics.ErrC001, e.Token,
			fmt.Sprintf("unary operator '%c' has no definition", e.Operator))
	}
	if err := c.compileExpression(e.Operand); err != nil {
		return err
	}
	c.emitCall(callee, 1, e.Token.Line)
	return nil
}

func (c *Compiler) compileBinary(e *ast.BinaryExpr) *diagnostics.DiagnosticError {
	// Assignment is special: its left side is a slot, not a value.
	if e.Operator == '=' {
		return c.compileAssign(e)
	}

	switch e.Operator {
	case '+', '-', '*', '<':
		if err := c.compileExpression(e.Left); err != nil {
			return err
		}
		if err := c.compileExpression(e.Right); err != nil {
			return err
		}
		switch e.Operator {
		case '+':
			c.emit(OP_ADD, e.Token.Line)
		case '-':
			c.emit(OP_SUB, e.Token.Line)
		case '*':
			c.emit(OP_MUL, e.Token.Line)
		case '<':
			c.emit(OP_LT, e.Token.Line)
		}
		c.slotCount--
		return nil
	}

	// Any other symbol lowers to a call of its hidden operator function.
	callee, ok := c.program.Resolve(ast.BinaryName(e.Operator))
	if !ok {
		return diagnostics.NewError(diagnostics.ErrC001, e.Token,
			fmt.Sprintf("binary operator '%c' has no definition", e.Operator))
	}
	if err := c.compileExpression(e.Left); err != nil {
		return err
	}
	if err := c.compileExpression(e.Right); err != nil {
		return err
	}
	c.emitCall(callee, 2, e.Token.Line)
	return nil
}

func (c *Compiler) compileAssign(e *ast.BinaryExpr) *diagnostics.DiagnosticError {
	target, ok := e.Left.(*ast.VariableExpr)
	if !ok {
		return diagnostics.NewError(diagnostics.ErrC002, e.Token,
			"destination of '=' must be a variable")
	}
	slot := c.resolveLocal(target.Name)
	if slot < 0 {
		return diagnostics.NewError(diagnostics.ErrC002, target.Token,
			fmt.Sprintf("cannot assign to unbound name %q", target.Name))
	}

	if err := c.compileExpression(e.Right); err != nil {
		return err
	}
	// The stored value stays on the stack, so assignments chain.
	c.emit(OP_SET_SLOT, e.Token.Line)
	c.chunk.Write(byte(slot), e.Token.Line)
	return nil
}

func (c *Compiler) compileCall(e *ast.CallExpr) *diagnostics.DiagnosticError {
	callee, ok := c.program.Resolve(e.Callee)
	if !ok {
		return diagnostics.NewError(diagnostics.ErrC003, e.Token,
			fmt.Sprintf("call to unknown function %q", e.Callee))
	}
	if len(e.Args) != callee.Arity {
		return diagnostics.NewError(diagnostics.ErrC004, e.Token,
			fmt.Sprintf("function %q expects %d argument(s), got %d", e.Callee, callee.Arity, len(e.Args)))
	}

	for _, arg := range e.Args {
		if err := c.compileExpression(arg); err != nil {
			return err
		}
	}
	c.emitCall(callee, len(e.Args), e.Token.Line)
	return nil
}

func (c *Compiler) emitCall(callee Callee, argc int, line int) {
	if callee.IsNative {
		c.emit(OP_CALL_NATIVE, line)
	} else {
		c.emit(OP_CALL, line)
	}
	c.chunk.WriteUint16(callee.Index, line)
	c.slotCount -= argc
	c.slotCount++ // the return value
}

// compileIf emits a conditional branch whose merged value is whichever
// branch executed. Zero is false, any nonzero value is true.
func (c *Compiler) compileIf(e *ast.IfExpr) *diagnostics.DiagnosticError {
	line := e.Token.Line

	if err := c.compileExpression(e.Condition); err != nil {
		return err
	}
	elseJump := c.emitJump(OP_JUMP_IF_FALSE, line)
	c.slotCount-- // condition popped by the jump

	if err := c.compileExpression(e.Then); err != nil {
		return err
	}
	endJump := c.emitJump(OP_JUMP, line)

	if !c.patchJump(elseJump) {
		return c.branchTooFar(e)
	}
	c.slotCount-- // on the else path the then-value was never produced
	if err := c.compileExpression(e.Else); err != nil {
		return err
	}

	if !c.patchJump(endJump) {
		return c.branchTooFar(e)
	}
	return nil
}

// compileFor emits the counted loop. The loop variable is a fresh slot
// visible only inside the body; the end condition is re-evaluated
// before every iteration and the loop runs while it is nonzero. The
// loop expression itself always evaluates to 0.0.
func (c *Compiler) compileFor(e *ast.ForExpr) *diagnostics.DiagnosticError {
	line := e.Token.Line

	if err := c.compileExpression(e.Start); err != nil {
		return err
	}
	c.beginScope()
	if !c.addLocal(e.VarName, c.slotCount-1) {
		return c.tooManyLocals(e)
	}
	varSlot := c.slotCount - 1

	loopStart := c.chunk.Len()

	if err := c.compileExpression(e.End); err != nil {
		return err
	}
	exitJump := c.emitJump(OP_JUMP_IF_FALSE, line)
	c.slotCount--

	if err := c.compileExpression(e.Body); err != nil {
		return err
	}
	// The body's value is discarded; the loop is executed for effect.
	c.emit(OP_POP, line)
	c.slotCount--

	// Advance the loop variable by the step (1.0 when omitted).
	c.emit(OP_GET_SLOT, line)
	c.chunk.Write(byte(varSlot), line)
	c.slotCount++
	if e.Step != nil {
		if err := c.compileExpression(e.Step); err != nil {
			return err
		}
	} else {
		c.emitConstant(1.0, line)
	}
	c.emit(OP_ADD, line)
	c.slotCount--
	c.emit(OP_SET_SLOT, line)
	c.chunk.Write(byte(varSlot), line)
	c.emit(OP_POP, line)
	c.slotCount--

	if !c.emitLoop(loopStart, line) {
		return c.branchTooFar(e)
	}
	if !c.patchJump(exitJump) {
		return c.branchTooFar(e)
	}

	// Drop the loop variable and produce the loop's value.
	c.endScope(line)
	c.emitConstant(0.0, line)
	return nil
}

// compileVar brings each binding into scope in order, so later
// initializers in the same var see the earlier bindings already bound.
func (c *Compiler) compileVar(e *ast.VarExpr) *diagnostics.DiagnosticError {
	line := e.Token.Line

	c.beginScope()
	for _, binding := range e.Bindings {
		if binding.Init != nil {
			if err := c.compileExpression(binding.Init); err != nil {
				return err
			}
		} else {
			c.emitConstant(0.0, line)
		}
		if !c.addLocal(binding.Name, c.slotCount-1) {
			return c.tooManyLocals(e)
		}
	}

	if err := c.compileExpression(e.Body); err != nil {
		return err
	}

	// The body's value is on top; the binding slots sit right below it.
	n := len(e.Bindings)
	if n > 0 {
		c.emit(OP_POP_BELOW, line)
		c.chunk.Write(byte(n), line)
		c.slotCount -= n
	}
	c.endScopeNoEmit()
	return nil
}

func (c *Compiler) tooManyLocals(e ast.Expr) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrC005, e.GetToken(),
		fmt.Sprintf("function exceeds the local slot limit (%d)", maxLocals))
}

func (c *Compiler) branchTooFar(e ast.Expr) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrC005, e.GetToken(),
		"function body too large: branch distance exceeds 65535 bytes")
}
