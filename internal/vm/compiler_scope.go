package vm

// Local represents a named mutable slot during compilation. Slots are
// stack positions relative to the frame base: parameters first, then
// loop variables and var bindings as they come into scope.
type Local struct {
	Name  string
	Depth int // scope depth where this local was declared
	Slot  int // stack slot relative to the frame base
}

// beginScope starts a new scope
func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope ends the current scope, emitting a pop for each local it
// introduced (their values sit on top of the stack).
func (c *Compiler) endScope(line int) {
	c.scopeDepth--

	for c.localCount > 0 && c.locals[c.localCount-1].Depth > c.scopeDepth {
		c.emit(OP_POP, line)
		c.slotCount--
		c.localCount--
	}
}

// endScopeNoEmit closes the scope without emitting pops, for the cases
// where the emitted code already discarded the slots (OP_POP_BELOW).
func (c *Compiler) endScopeNoEmit() {
	c.scopeDepth--
	for c.localCount > 0 && c.locals[c.localCount-1].Depth > c.scopeDepth {
		c.localCount--
	}
}

// addLocal brings a named slot into scope. It fails when the function
// already holds maxLocals names, or when the slot position itself is
// beyond what a one-byte operand can address (the operand stack can be
// arbitrarily deep at the point the name is introduced).
func (c *Compiler) addLocal(name string, slot int) bool {
	if c.localCount >= maxLocals || slot > 0xff {
		return false
	}
	if c.localCount < len(c.locals) {
		c.locals[c.localCount] = Local{Name: name, Depth: c.scopeDepth, Slot: slot}
	} else {
		c.locals = append(c.locals, Local{Name: name, Depth: c.scopeDepth, Slot: slot})
	}
	c.localCount++
	return true
}

// resolveLocal looks up a named slot, innermost scope first.
func (c *Compiler) resolveLocal(name string) int {
	for i := c.localCount - 1; i >= 0; i-- {
		if c.locals[i].Name == name {
			return c.locals[i].Slot
		}
	}
	return -1
}

// emit helpers

func (c *Compiler) emit(op Opcode, line int) {
	c.chunk.WriteOp(op, line)
}

func (c *Compiler) emitConstant(value float64, line int) {
	c.chunk.WriteConstant(value, line)
	c.slotCount++
}

func (c *Compiler) emitJump(op Opcode, line int) int {
	c.emit(op, line)
	c.chunk.Write(0xff, line)
	c.chunk.Write(0xff, line)
	return c.chunk.Len() - 2
}

// patchJump back-fills a jump operand. It reports false when the
// distance does not fit the two-byte operand.
func (c *Compiler) patchJump(offset int) bool {
	jump := c.chunk.Len() - offset - 2
	if jump > 0xffff {
		return false
	}

	c.chunk.Code[offset] = byte(jump >> 8)
	c.chunk.Code[offset+1] = byte(jump)
	return true
}

func (c *Compiler) emitLoop(loopStart int, line int) bool {
	offset := c.chunk.Len() - loopStart + 2
	if offset > 0xffff {
		return false
	}

	c.emit(OP_LOOP, line)
	c.chunk.WriteUint16(offset, line)
	return true
}
