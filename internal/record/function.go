package record

import (
	"fmt"

	"bin2ml/internal/diag"
)

// EdgeKind is the kind of a control-flow successor. Its value is the edge weight.
type EdgeKind int

const (
	Fallthrough EdgeKind = 1
	Jump        EdgeKind = 2
)

func (k EdgeKind) Weight() int { return int(k) }

func (k EdgeKind) String() string {
	switch k {
	case Fallthrough:
		return "fallthrough"
	case Jump:
		return "jump"
	}
	return fmt.Sprintf("EdgeKind(%d)", int(k))
}

// Instruction is one decoded instruction. Disasm, IR and ESIL are the three
// textual representations; any of them may be empty.
type Instruction struct {
	Offset   uint64
	Mnemonic string
	Operands string
	Disasm   string
	IR       string
	ESIL     string
	Import   bool // operand references an imported symbol
	Invalid  bool // upstream could not decode the bytes
}

// Successor is a validated control-flow edge to another block of the same function.
type Successor struct {
	Block int
	Kind  EdgeKind
}

// BasicBlock is a validated block. IDs follow ascending byte offset.
type BasicBlock struct {
	ID           int
	Offset       uint64
	Instructions []Instruction
	Succs        []Successor // fallthrough before jump
}

// Terminal reports whether the block has no successors.
func (b *BasicBlock) Terminal() bool { return len(b.Succs) == 0 }

// Function is a validated, read-only function record.
type Function struct {
	Name    string
	Offset  uint64
	Entry   int // block id at Offset; 0 when no block starts there
	Blocks  []BasicBlock
	Callees []string // call order, repeated call sites preserved
	Callers []string
}

// NumInstructions counts instructions across all blocks.
func (f *Function) NumInstructions() int {
	n := 0
	for i := range f.Blocks {
		n += len(f.Blocks[i].Instructions)
	}
	return n
}

// NumEdges counts control-flow edges.
func (f *Function) NumEdges() int {
	n := 0
	for i := range f.Blocks {
		n += len(f.Blocks[i].Succs)
	}
	return n
}

// MalformedError reports a function record whose structure does not resolve.
type MalformedError struct {
	Function string
	Offset   uint64
	Reason   string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("record: function %s at 0x%x: %s", e.Function, e.Offset, e.Reason)
}

func (e *MalformedError) Unwrap() error { return diag.ErrMalformedRecord }

func malformed(name string, off uint64, format string, args ...any) error {
	return &MalformedError{Function: name, Offset: off, Reason: fmt.Sprintf(format, args...)}
}
