package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable representation of the bytecode
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstruction(&sb, chunk, offset)
	}

	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", chunk.Lines[offset]))
	}

	op := Opcode(chunk.Code[offset])

	switch op {
	case OP_CONST:
		idx := chunk.ReadUint16(offset + 1)
		sb.WriteString(fmt.Sprintf("%-16s %4d '%g'\n", op, idx, chunk.Constants[idx]))
		return offset + 3

	case OP_GET_SLOT, OP_SET_SLOT, OP_POP_BELOW:
		operand := chunk.Code[offset+1]
		sb.WriteString(fmt.Sprintf("%-16s %4d\n", op, operand))
		return offset + 2

	case OP_JUMP, OP_JUMP_IF_FALSE:
		jump := chunk.ReadUint16(offset + 1)
		sb.WriteString(fmt.Sprintf("%-16s %4d -> %d\n", op, offset, offset+3+jump))
		return offset + 3

	case OP_LOOP:
		jump := chunk.ReadUint16(offset + 1)
		sb.WriteString(fmt.Sprintf("%-16s %4d -> %d\n", op, offset, offset+3-jump))
		return offset + 3

	case OP_CALL, OP_CALL_NATIVE:
		idx := chunk.ReadUint16(offset + 1)
		sb.WriteString(fmt.Sprintf("%-16s %4d\n", op, idx))
		return offset + 3

	default:
		sb.WriteString(fmt.Sprintf("%s\n", op))
		return offset + 1
	}
}
