package vm

// Chunk is a compiled sequence of bytecode instructions plus its
// constant pool. It is the in-memory IR one function lowers to.
type Chunk struct {
	// Code is the bytecode instructions
	Code []byte

	// Constants pool; every literal in the language is a float64
	Constants []float64

	// Lines maps bytecode offset to source line number (for errors)
	Lines []int
}

// NewChunk creates a new empty chunk
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Constants: make([]float64, 0, 8),
		Lines:     make([]int, 0, 64),
	}
}

// Write adds a byte to the chunk with line info
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp writes an opcode to the chunk
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// WriteUint16 writes a 2-byte big-endian operand
func (c *Chunk) WriteUint16(v int, line int) {
	c.Write(byte(v>>8), line)
	c.Write(byte(v), line)
}

// AddConstant adds a constant to the pool and returns its index
func (c *Chunk) AddConstant(value float64) int {
	c.Constants = append(c.Constants, value)
	return len(c.Constants) - 1
}

// WriteConstant writes OP_CONST followed by the constant index
func (c *Chunk) WriteConstant(value float64, line int) {
	idx := c.AddConstant(value)
	c.WriteOp(OP_CONST, line)
	// 2 bytes allow up to 65535 constants per function
	c.WriteUint16(idx, line)
}

// ReadUint16 reads a 2-byte operand at offset
func (c *Chunk) ReadUint16(offset int) int {
	return int(c.Code[offset])<<8 | int(c.Code[offset+1])
}

// Len returns the number of bytes in the chunk
func (c *Chunk) Len() int {
	return len(c.Code)
}
