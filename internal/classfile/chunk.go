package classfile

// Chunk is an append-only instruction stream with its constant pool.
// One chunk backs one method entry; it is written sequentially during
// generation and never modified afterwards except for jump patching.
type Chunk struct {
	// Code is the raw instruction bytes
	Code []byte

	// Constants pool - literals, type names, method references
	Constants []any

	// Lines maps instruction offset to source line number (for errors)
	Lines []int
}

// NewChunk creates a new empty chunk.
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Constants: make([]any, 0, 16),
		Lines:     make([]int, 0, 64),
	}
}

// Write adds a byte to the chunk with line info.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp writes an opcode to the chunk.
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant adds a constant to the pool and returns its index.
func (c *Chunk) AddConstant(value any) int {
	c.Constants = append(c.Constants, value)
	return len(c.Constants) - 1
}

// WriteIndexed writes an opcode followed by a 2-byte pool index for value.
func (c *Chunk) WriteIndexed(op Opcode, value any, line int) {
	idx := c.AddConstant(value)
	c.WriteOp(op, line)
	c.Write(byte(idx>>8), line)
	c.Write(byte(idx), line)
}

// WriteConstant writes OP_CONST followed by the constant index.
func (c *Chunk) WriteConstant(value any, line int) {
	c.WriteIndexed(OP_CONST, value, line)
}

// ReadConstantIndex reads a 2-byte constant index at offset.
func (c *Chunk) ReadConstantIndex(offset int) int {
	return int(c.Code[offset])<<8 | int(c.Code[offset+1])
}

// Len returns the number of bytes in the chunk.
func (c *Chunk) Len() int {
	return len(c.Code)
}
