package vm

import (
	"fmt"
	"strings"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// Disassemble returns a human-readable listing of proto and every function
// body in its constant pool.
func Disassemble(proto *Proto) string {
	var sb strings.Builder
	disassembleProto(&sb, proto)
	return sb.String()
}

func disassembleProto(sb *strings.Builder, proto *Proto) {
	chunk := proto.Chunk
	sb.WriteString(fmt.Sprintf("== %s ==\n", proto.Name))
	if proto.Name != ScriptName {
		variadic := ""
		if proto.Variadic {
			variadic = ", variadic"
		}
		sb.WriteString(fmt.Sprintf("params: %d%s, locals: %d\n", proto.NumParams, variadic, proto.NumLocals))
	}

	targets := make(map[int][]int)
	for label, offset := range chunk.Labels {
		targets[offset] = append(targets[offset], label)
	}

	offset := 0
	for offset < len(chunk.Code) {
		for _, label := range targets[offset] {
			sb.WriteString(fmt.Sprintf("L%d:\n", label))
		}
		offset = disassembleInstruction(sb, chunk, offset)
	}

	for _, c := range chunk.Constants {
		if fn := c.AsFunction(); fn != nil {
			if p, ok := fn.Code.(*Proto); ok {
				sb.WriteString("\n")
				disassembleProto(sb, p)
			}
		}
	}
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	if offset > 0 && chunk.LineAt(offset) == chunk.LineAt(offset-1) {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", chunk.LineAt(offset)))
	}

	op := Opcode(chunk.Code[offset])
	name := op.String()

	if offset+1+operandWidth(chunk, offset) > len(chunk.Code) {
		sb.WriteString(fmt.Sprintf("%s (truncated)\n", name))
		return len(chunk.Code)
	}

	switch op {
	case OP_PUSH_CONST:
		return constantInstruction(sb, name, chunk, offset)

	case OP_GET_GLOBAL, OP_SET_GLOBAL:
		return constantInstruction(sb, name, chunk, offset)

	case OP_PUSH_INT:
		n := int16(chunk.ReadU16(offset + 1))
		sb.WriteString(fmt.Sprintf("%-16s %4d\n", name, n))
		return offset + 3

	case OP_COPY, OP_SWAP, OP_GET_LOCAL, OP_SET_LOCAL:
		return byteInstruction(sb, name, chunk, offset)

	case OP_CALL:
		sb.WriteString(fmt.Sprintf("%-16s %4d (args)\n", name, chunk.Code[offset+1]))
		return offset + 2

	case OP_MAKE_LIST, OP_MAKE_MAP:
		sb.WriteString(fmt.Sprintf("%-16s %4d\n", name, chunk.ReadU16(offset+1)))
		return offset + 3

	case OP_JUMP, OP_JUMP_FALSE, OP_JUMP_TRUE:
		label := chunk.ReadU16(offset + 1)
		sb.WriteString(fmt.Sprintf("%-16s %4s -> %s\n", name, fmt.Sprintf("L%d", label), labelTarget(chunk, label)))
		return offset + 3

	case OP_CALL_METHOD:
		idx := chunk.ReadU16(offset + 1)
		argc := chunk.Code[offset+3]
		sb.WriteString(fmt.Sprintf("%-16s %4d %s (args: %d)\n", name, idx, constantRepr(chunk, idx), argc))
		return offset + 4

	case OP_FOR_PREP, OP_FOR_NEXT:
		slot := chunk.Code[offset+1]
		label := chunk.ReadU16(offset + 2)
		sb.WriteString(fmt.Sprintf("%-16s %4d L%d -> %s\n", name, slot, label, labelTarget(chunk, label)))
		return offset + 4

	case OP_IMPORT:
		n := int(chunk.Code[offset+1])
		names := make([]string, n)
		for i := 0; i < n; i++ {
			names[i] = constantRepr(chunk, chunk.ReadU16(offset+2+2*i))
		}
		sb.WriteString(fmt.Sprintf("%-16s %4d [%s]\n", name, n, strings.Join(names, ", ")))
		return offset + 2 + 2*n

	case OP_PUSH_NULL, OP_PUSH_TRUE, OP_PUSH_FALSE, OP_POP, OP_DUP,
		OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD,
		OP_BAND, OP_BOR, OP_BXOR, OP_SHL, OP_SHR,
		OP_GT, OP_GE, OP_LT, OP_LE, OP_EQ, OP_NE,
		OP_NEG, OP_BNOT, OP_NOT,
		OP_RETURN, OP_GET_FIELD, OP_SET_FIELD, OP_FOR_STOP,
		OP_INCLUDE, OP_HALT:
		return simpleInstruction(sb, name, offset)

	default:
		sb.WriteString(fmt.Sprintf("Unknown opcode %d\n", op))
		return offset + 1
	}
}

// operandWidth returns the operand byte count of the instruction at offset.
// The count operand of IMPORT is included when present.
func operandWidth(chunk *Chunk, offset int) int {
	switch Opcode(chunk.Code[offset]) {
	case OP_COPY, OP_SWAP, OP_GET_LOCAL, OP_SET_LOCAL, OP_CALL:
		return 1
	case OP_PUSH_CONST, OP_PUSH_INT, OP_JUMP, OP_JUMP_FALSE, OP_JUMP_TRUE,
		OP_GET_GLOBAL, OP_SET_GLOBAL, OP_MAKE_LIST, OP_MAKE_MAP:
		return 2
	case OP_CALL_METHOD, OP_FOR_PREP, OP_FOR_NEXT:
		return 3
	case OP_IMPORT:
		if offset+1 >= len(chunk.Code) {
			return 1
		}
		return 1 + 2*int(chunk.Code[offset+1])
	}
	return 0
}

func simpleInstruction(sb *strings.Builder, name string, offset int) int {
	sb.WriteString(fmt.Sprintf("%s\n", name))
	return offset + 1
}

func constantInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	idx := chunk.ReadU16(offset + 1)
	sb.WriteString(fmt.Sprintf("%-16s %4d %s\n", name, idx, constantRepr(chunk, idx)))
	return offset + 3
}

func byteInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	sb.WriteString(fmt.Sprintf("%-16s %4d\n", name, chunk.Code[offset+1]))
	return offset + 2
}

func constantRepr(chunk *Chunk, idx int) string {
	if idx >= len(chunk.Constants) {
		return "(invalid)"
	}
	c := chunk.Constants[idx]
	if c.Kind == value.KindFunc {
		if fn := c.AsFunction(); fn != nil {
			return fmt.Sprintf("<fn %s>", fn.Code.FuncName())
		}
	}
	return c.Repr()
}

func labelTarget(chunk *Chunk, label int) string {
	if label >= len(chunk.Labels) || chunk.Labels[label] < 0 {
		return "(unresolved)"
	}
	return fmt.Sprintf("%04d", chunk.Labels[label])
}
