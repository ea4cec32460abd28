package vm

import (
	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// Chunk represents a sequence of bytecode instructions
type Chunk struct {
	// Code is the bytecode instructions
	Code []byte

	// Constants pool: ints, floats, strings and function bodies
	Constants []value.Value

	// Labels holds resolved jump targets; -1 until the label is placed
	Labels []int

	// Lines maps bytecode offset to source line number (for errors)
	Lines []int

	// File is the source file name
	File string
}

// NewChunk creates a new empty chunk
func NewChunk(file string) *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 256),
		Constants: make([]value.Value, 0, 16),
		Lines:     make([]int, 0, 256),
		File:      file,
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

// WriteU16 writes a big-endian 16-bit operand
func (c *Chunk) WriteU16(v int, line int) {
	c.Write(byte(v>>8), line)
	c.Write(byte(v), line)
}

// AddConstant adds a constant to the pool and returns its index
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// ReadU16 reads a 2-byte operand at offset
func (c *Chunk) ReadU16(offset int) int {
	return int(c.Code[offset])<<8 | int(c.Code[offset+1])
}

// Len returns the number of bytes in the chunk
func (c *Chunk) Len() int {
	return len(c.Code)
}

// LineAt returns the source line of the instruction at offset.
func (c *Chunk) LineAt(offset int) int {
	if offset >= 0 && offset < len(c.Lines) {
		return c.Lines[offset]
	}
	return 0
}

// Proto is a compiled function body or top-level unit.
type Proto struct {
	Name      string
	Chunk     *Chunk
	NumParams int
	Variadic  bool
	NumLocals int // frame size in slots, parameters included
}

func (p *Proto) FuncName() string { return p.Name }
func (p *Proto) Arity() int       { return p.NumParams }
func (p *Proto) IsVariadic() bool { return p.Variadic }
