// Package vm implements the bytecode backend: the chunk format the
// compiler lowers to, the session-level program linker, and the stack
// machine that executes compiled units.
package vm

// Opcode is a single instruction. All values are float64; comparison
// results are 0.0/1.0 and conditions treat nonzero as true.
type Opcode byte

const (
	// Stack manipulation
	OP_CONST     Opcode = iota // push constant from pool; u16 operand
	OP_POP                     // discard top of stack
	OP_POP_BELOW               // discard N items below top: [..., a, b, v] -> [..., v]; u8 operand

	// Arithmetic and comparison
	OP_ADD // +
	OP_SUB // -
	OP_MUL // *
	OP_LT  // <, pushes 0.0 or 1.0

	// Mutable slots, frame-relative
	OP_GET_SLOT // push slot value; u8 operand
	OP_SET_SLOT // store top of stack into slot, value stays on stack; u8 operand

	// Control flow
	OP_JUMP          // unconditional forward jump; u16 offset
	OP_JUMP_IF_FALSE // pop condition, jump forward when zero; u16 offset
	OP_LOOP          // unconditional backward jump; u16 offset

	// Calls
	OP_CALL        // call linked function; u16 function index
	OP_CALL_NATIVE // call runtime symbol; u16 native index
	OP_RETURN      // return top of stack to the caller
)

func (op Opcode) String() string {
	switch op {
	case OP_CONST:
		return "CONST"
	case OP_POP:
		return "POP"
	case OP_POP_BELOW:
		return "POP_BELOW"
	case OP_ADD:
		return "ADD"
	case OP_SUB:
		return "SUB"
	case OP_MUL:
		return "MUL"
	case OP_LT:
		return "LT"
	case OP_GET_SLOT:
		return "GET_SLOT"
	case OP_SET_SLOT:
		return "SET_SLOT"
	case OP_JUMP:
		return "JUMP"
	case OP_JUMP_IF_FALSE:
		return "JUMP_IF_FALSE"
	case OP_LOOP:
		return "LOOP"
	case OP_CALL:
		return "CALL"
	case OP_CALL_NATIVE:
		return "CALL_NATIVE"
	case OP_RETURN:
		return "RETURN"
	}
	return "UNKNOWN"
}
