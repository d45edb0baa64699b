// Package session implements the incremental JIT driver. A session
// owns the operator table, the known-prototype table and the linked
// program; it feeds each top-level unit through parse, lowering and —
// for bare expressions — immediate execution, rolling all shared state
// back when a unit fails.
package session

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/laurelkeys/kaleidoscopy/internal/ast"
	"github.com/laurelkeys/kaleidoscopy/internal/diagnostics"
	"github.com/laurelkeys/kaleidoscopy/internal/lexer"
	"github.com/laurelkeys/kaleidoscopy/internal/operators"
	"github.com/laurelkeys/kaleidoscopy/internal/parser"
	"github.com/laurelkeys/kaleidoscopy/internal/vm"
)

// Result is the outcome of one successfully processed unit.
type Result struct {
	Unit     ast.Node
	Compiled *vm.CompiledFunction // nil for extern declarations
	Value    float64              // set when HasValue
	HasValue bool                 // true for bare expressions
}

type Session struct {
	ops     *operators.Table
	protos  map[string]*ast.Prototype
	program *vm.Program
	machine *vm.Machine

	// symbols are the runtime addresses available to extern
	// declarations, keyed by name.
	symbols map[string]vm.NativeFn
	arities map[string]int

	out io.Writer
}

// New creates a session with the built-in operator table and the
// standard runtime symbols (putchard, printd) pre-registered. out
// receives their output; nil means os.Stdout.
func New(out io.Writer) *Session {
	if out == nil {
		out = os.Stdout
	}
	s := &Session{
		ops:     operators.NewTable(),
		protos:  make(map[string]*ast.Prototype),
		program: vm.NewProgram(),
		symbols: make(map[string]vm.NativeFn),
		arities: make(map[string]int),
		out:     out,
	}
	s.machine = vm.NewMachine(s.program)
	s.registerRuntime()
	return s
}

func (s *Session) registerRuntime() {
	// putchard writes the character for the code point x; printd writes
	// the value followed by a newline. Both return 0. They are declared
	// up front, so no user extern is needed before calling them.
	s.registerBuiltin("putchard", []string{"x"}, func(args []float64) float64 {
		fmt.Fprintf(s.out, "%c", rune(args[0]))
		return 0
	})
	s.registerBuiltin("printd", []string{"x"}, func(args []float64) float64 {
		fmt.Fprintf(s.out, "%g\n", args[0])
		return 0
	})
}

func (s *Session) registerBuiltin(name string, params []string, fn vm.NativeFn) {
	s.RegisterSymbol(name, len(params), fn)
	s.DeclareExternal(&ast.Prototype{Name: name, Params: params})
}

// Operators exposes the session's operator table (shared with its
// parsers, never with other sessions).
func (s *Session) Operators() *operators.Table { return s.ops }

// Prototype returns the session's record for name, if any.
func (s *Session) Prototype(name string) (*ast.Prototype, bool) {
	proto, ok := s.protos[name]
	return proto, ok
}

// RegisterSymbol makes a host function available as the runtime
// address of an extern symbol. If the symbol was already declared, the
// declaration is bound immediately; otherwise the address waits for a
// later `extern`.
func (s *Session) RegisterSymbol(name string, arity int, fn vm.NativeFn) {
	s.symbols[name] = fn
	s.arities[name] = arity
	s.program.BindNative(name, fn)
}

// DeclareExternal records proto as callable without a local body. The
// runtime address is looked up among the registered symbols; when none
// is registered yet, calls fail with a link error until one is.
func (s *Session) DeclareExternal(proto *ast.Prototype) *diagnostics.DiagnosticError {
	s.program.DeclareNative(proto.Name, len(proto.Params), s.symbols[proto.Name])
	s.protos[proto.Name] = proto
	return nil
}

// DefineFunction lowers fn and links the compiled artifact. The
// prototype is registered only on success; a failed definition leaves
// the program and prototype table untouched.
func (s *Session) DefineFunction(fn *ast.Function) (*vm.CompiledFunction, *diagnostics.DiagnosticError) {
	snapshot := s.program.Snapshot()

	compiled := &vm.CompiledFunction{Name: fn.Proto.Name, Arity: len(fn.Proto.Params)}
	// Link before lowering so the body's recursive calls resolve.
	s.program.AddFunction(compiled)

	compiler := vm.NewCompiler(s.program)
	if err := compiler.CompileFunction(fn, compiled); err != nil {
		s.program.Restore(snapshot)
		return nil, err
	}

	s.protos[fn.Proto.Name] = fn.Proto
	return compiled, nil
}

// EvaluateExpression wraps expr as a uniquely named zero-argument
// function, compiles it, runs it, and returns its value. The wrapper's
// name is one-shot: it is forgotten immediately so repeated bare
// expressions never collide.
func (s *Session) EvaluateExpression(expr ast.Expr) (float64, *vm.CompiledFunction, *diagnostics.DiagnosticError) {
	snapshot := s.program.Snapshot()

	name := ast.AnonymousPrefix + uuid.NewString()
	proto := &ast.Prototype{Token: expr.GetToken(), Name: name}
	wrapper := &ast.Function{Proto: proto, Body: expr}

	compiled := &vm.CompiledFunction{Name: name}
	index := s.program.AddFunction(compiled)

	compiler := vm.NewCompiler(s.program)
	if err := compiler.CompileFunction(wrapper, compiled); err != nil {
		s.program.Restore(snapshot)
		return 0, nil, err
	}
	s.program.Forget(name)

	value, err := s.machine.RunFunction(index)
	if err != nil {
		return 0, nil, err
	}
	return value, compiled, nil
}

// ProcessUnit dispatches one parsed unit.
func (s *Session) ProcessUnit(unit ast.Node) (Result, *diagnostics.DiagnosticError) {
	switch u := unit.(type) {
	case *ast.Prototype:
		if err := s.DeclareExternal(u); err != nil {
			return Result{}, err
		}
		return Result{Unit: u}, nil

	case *ast.Function:
		compiled, err := s.DefineFunction(u)
		if err != nil {
			return Result{}, err
		}
		return Result{Unit: u, Compiled: compiled}, nil

	case ast.Expr:
		value, compiled, err := s.EvaluateExpression(u)
		if err != nil {
			return Result{}, err
		}
		return Result{Unit: u, Compiled: compiled, Value: value, HasValue: true}, nil
	}

	return Result{}, diagnostics.NewError(diagnostics.ErrR001, unit.GetToken(),
		fmt.Sprintf("cannot process unit of type %T", unit))
}

// Interpret parses and processes every unit in source, in order. Each
// failed unit is rolled back and reported; processing continues with
// the next unit. Results and diagnostics are returned in source order.
func (s *Session) Interpret(source string) ([]Result, []*diagnostics.DiagnosticError) {
	p := parser.New(lexer.New(source), s.ops)

	var results []Result
	var errs []*diagnostics.DiagnosticError

	for {
		opsSnapshot := s.ops.Snapshot()

		unit, err := p.ParseUnit()
		if err != nil {
			s.ops.Restore(opsSnapshot)
			errs = append(errs, err)
			p.Synchronize()
			continue
		}
		if unit == nil {
			return results, errs
		}

		result, err := s.ProcessUnit(unit)
		if err != nil {
			// An aborted def also surrenders any operator registration
			// its prototype committed during parsing.
			s.ops.Restore(opsSnapshot)
			errs = append(errs, err)
			continue
		}
		results = append(results, result)
	}
}
