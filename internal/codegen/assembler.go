package codegen

import (
	"github.com/funvibe/loom/internal/classfile"
	"github.com/funvibe/loom/internal/types"
)

// Assembler wraps one chunk and its frame during emission of a single
// method entry. The expression lowerer receives the same assembler the
// generator uses, so all code for one entry lands in one stream.
type Assembler struct {
	Code  *classfile.Chunk
	Frame *FrameMap

	line int
}

// NewAssembler creates an assembler positioned at the given source line.
func NewAssembler(code *classfile.Chunk, frame *FrameMap, line int) *Assembler {
	return &Assembler{Code: code, Frame: frame, line: line}
}

// SetLine moves the current source line attribution.
func (a *Assembler) SetLine(line int) {
	a.line = line
}

// Line returns the current source line attribution.
func (a *Assembler) Line() int {
	return a.line
}

// Emit writes an operand-less opcode.
func (a *Assembler) Emit(op classfile.Opcode) {
	a.Code.WriteOp(op, a.line)
}

// EmitLoad pushes the value in a local slot.
func (a *Assembler) EmitLoad(slot int) {
	a.emitSlot(classfile.OP_LOAD, slot)
}

// EmitStore pops into a local slot.
func (a *Assembler) EmitStore(slot int) {
	a.emitSlot(classfile.OP_STORE, slot)
}

func (a *Assembler) emitSlot(op classfile.Opcode, slot int) {
	if slot < 0 || slot > 0xff {
		panic("local slot out of range")
	}
	a.Code.WriteOp(op, a.line)
	a.Code.Write(byte(slot), a.line)
}

// EmitConst pushes a pool constant.
func (a *Assembler) EmitConst(value any) {
	a.Code.WriteConstant(value, a.line)
}

// EmitIndexed writes an opcode with a pool-constant operand.
func (a *Assembler) EmitIndexed(op classfile.Opcode, value any) {
	a.Code.WriteIndexed(op, value, a.line)
}

// EmitInvoke writes an invocation of the referenced method.
func (a *Assembler) EmitInvoke(op classfile.Opcode, ref classfile.MethodRef) {
	a.Code.WriteIndexed(op, ref, a.line)
}

// EmitReturn writes the return matching a representation.
func (a *Assembler) EmitReturn(ret types.Rep) {
	if ret == types.RepVoid {
		a.Emit(classfile.OP_RETURN)
	} else {
		a.Emit(classfile.OP_RETURN_VAL)
	}
}

// EmitJump writes a forward jump with a placeholder offset and returns
// the offset to patch.
func (a *Assembler) EmitJump(op classfile.Opcode) int {
	a.Emit(op)
	a.Code.Write(0xff, a.line)
	a.Code.Write(0xff, a.line)
	return a.Code.Len() - 2
}

// PatchJump resolves a forward jump to the current position.
func (a *Assembler) PatchJump(offset int) {
	jump := a.Code.Len() - offset - 2

	if jump > 0xffff {
		panic("jump too far")
	}

	a.Code.Code[offset] = byte(jump >> 8)
	a.Code.Code[offset+1] = byte(jump)
}
