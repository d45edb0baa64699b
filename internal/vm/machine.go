package vm

import (
	"fmt"

	"github.com/laurelkeys/kaleidoscopy/internal/diagnostics"
	"github.com/laurelkeys/kaleidoscopy/internal/token"
)

// Initial sizes for stack and frames
const InitialStackSize = 2048
const InitialFrameCount = 64

// MaxFrameCount bounds call depth so unbounded recursion degrades into
// a runtime diagnostic instead of crashing the process.
const MaxFrameCount = 4096

// MaxStackSize bounds the operand stack to prevent OOM
const MaxStackSize = 1024 * 1024

// CallFrame represents a single ongoing function call
type CallFrame struct {
	fn   *CompiledFunction
	ip   int // instruction pointer within fn's chunk
	base int // where this frame's slots start in the stack
}

// Machine executes compiled functions against a linked program. It is
// reused across units: the stack is reset per invocation, the program
// accumulates.
type Machine struct {
	program *Program

	stack []float64
	sp    int // points to the next free slot

	frames     []CallFrame
	frameCount int
}

func NewMachine(program *Program) *Machine {
	return &Machine{
		program: program,
		stack:   make([]float64, InitialStackSize),
		frames:  make([]CallFrame, InitialFrameCount),
	}
}

// RunFunction invokes the zero-argument function at index and returns
// its value. Execution is synchronous and runs to completion.
func (m *Machine) RunFunction(index int) (float64, *diagnostics.DiagnosticError) {
	if index < 0 || index >= len(m.program.functions) {
		return 0, m.runtimeError("invalid function index %d", index)
	}

	m.sp = 0
	m.frameCount = 0
	m.pushFrame(m.program.functions[index], 0)

	return m.run()
}

func (m *Machine) run() (float64, *diagnostics.DiagnosticError) {
	for {
		frame := &m.frames[m.frameCount-1]
		chunk := frame.fn.Chunk

		if frame.ip >= len(chunk.Code) {
			return 0, m.runtimeError("truncated bytecode in %q", frame.fn.Name)
		}

		op := Opcode(chunk.Code[frame.ip])
		frame.ip++

		switch op {
		case OP_CONST:
			idx := chunk.ReadUint16(frame.ip)
			frame.ip += 2
			if idx >= len(chunk.Constants) {
				return 0, m.runtimeError("invalid constant index %d in %q", idx, frame.fn.Name)
			}
			if err := m.push(chunk.Constants[idx]); err != nil {
				return 0, err
			}

		case OP_POP:
			m.pop()

		case OP_POP_BELOW:
			n := int(chunk.Code[frame.ip])
			frame.ip++
			top := m.stack[m.sp-1]
			m.sp -= n
			m.stack[m.sp-1] = top

		case OP_ADD:
			right := m.pop()
			left := m.pop()
			m.mustPush(left + right)

		case OP_SUB:
			right := m.pop()
			left := m.pop()
			m.mustPush(left - right)

		case OP_MUL:
			right := m.pop()
			left := m.pop()
			m.mustPush(left * right)

		case OP_LT:
			right := m.pop()
			left := m.pop()
			if left < right {
				m.mustPush(1.0)
			} else {
				m.mustPush(0.0)
			}

		case OP_GET_SLOT:
			slot := int(chunk.Code[frame.ip])
			frame.ip++
			if err := m.push(m.stack[frame.base+slot]); err != nil {
				return 0, err
			}

		case OP_SET_SLOT:
			slot := int(chunk.Code[frame.ip])
			frame.ip++
			m.stack[frame.base+slot] = m.stack[m.sp-1]

		case OP_JUMP:
			offset := chunk.ReadUint16(frame.ip)
			frame.ip += 2 + offset

		case OP_JUMP_IF_FALSE:
			offset := chunk.ReadUint16(frame.ip)
			frame.ip += 2
			if m.pop() == 0 {
				frame.ip += offset
			}

		case OP_LOOP:
			offset := chunk.ReadUint16(frame.ip)
			frame.ip += 2
			frame.ip -= offset

		case OP_CALL:
			idx := chunk.ReadUint16(frame.ip)
			frame.ip += 2
			callee := m.program.functions[idx]
			if callee.Chunk == nil {
				return 0, m.runtimeError("function %q has no compiled body", callee.Name)
			}
			if m.frameCount >= MaxFrameCount {
				return 0, m.runtimeError("call depth limit exceeded (%d frames)", MaxFrameCount)
			}
			m.pushFrame(callee, m.sp-callee.Arity)

		case OP_CALL_NATIVE:
			idx := chunk.ReadUint16(frame.ip)
			frame.ip += 2
			native := m.program.natives[idx]
			if native.Fn == nil {
				return 0, diagnostics.NewError(diagnostics.ErrR002, token.Token{},
					fmt.Sprintf("symbol %q has no runtime address", native.Name))
			}
			args := m.stack[m.sp-native.Arity : m.sp]
			result := native.Fn(args)
			m.sp -= native.Arity
			if err := m.push(result); err != nil {
				return 0, err
			}

		case OP_RETURN:
			result := m.pop()
			m.sp = frame.base
			m.frameCount--
			if m.frameCount == 0 {
				return result, nil
			}
			m.mustPush(result)

		default:
			return 0, m.runtimeError("unknown opcode %d in %q", byte(op), frame.fn.Name)
		}
	}
}

func (m *Machine) pushFrame(fn *CompiledFunction, base int) {
	if m.frameCount >= len(m.frames) {
		m.frames = append(m.frames, CallFrame{})
	}
	m.frames[m.frameCount] = CallFrame{fn: fn, base: base}
	m.frameCount++
}

func (m *Machine) push(v float64) *diagnostics.DiagnosticError {
	if m.sp >= MaxStackSize {
		return m.runtimeError("operand stack limit exceeded")
	}
	if m.sp >= len(m.stack) {
		m.stack = append(m.stack, make([]float64, InitialStackSize)...)
	}
	m.stack[m.sp] = v
	m.sp++
	return nil
}

// mustPush is push for values replacing ones just popped, where the
// stack cannot have grown.
func (m *Machine) mustPush(v float64) {
	m.stack[m.sp] = v
	m.sp++
}

func (m *Machine) pop() float64 {
	m.sp--
	return m.stack[m.sp]
}

func (m *Machine) runtimeError(format string, args ...interface{}) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrR001, token.Token{}, fmt.Sprintf(format, args...))
}
