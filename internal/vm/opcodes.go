// Package vm implements the SEAL bytecode compiler and virtual machine.
package vm

// Opcode represents a single VM instruction
type Opcode byte

const (
	// Stack manipulation
	OP_PUSH_CONST Opcode = iota // u16 constant index
	OP_PUSH_INT                 // i16 immediate
	OP_PUSH_NULL
	OP_PUSH_TRUE
	OP_PUSH_FALSE
	OP_POP
	OP_DUP
	OP_COPY // u8 depth: push a copy of the value depth slots below the top
	OP_SWAP // u8 depth: swap the top with the value depth slots below it

	// Arithmetic
	OP_ADD // +
	OP_SUB // -
	OP_MUL // *
	OP_DIV // /
	OP_MOD // %

	// Bitwise operations
	OP_BAND // &
	OP_BOR  // |
	OP_BXOR // ^
	OP_SHL  // <<
	OP_SHR  // >>

	// Comparison
	OP_GT // >
	OP_GE // >=
	OP_LT // <
	OP_LE // <=
	OP_EQ // ==
	OP_NE // !=

	// Unary
	OP_NEG  // -x
	OP_BNOT // ~x
	OP_NOT  // !x

	// Control flow. Operand is a u16 label index.
	OP_JUMP
	OP_JUMP_FALSE // pops the condition
	OP_JUMP_TRUE  // pops the condition

	// Variables
	OP_GET_GLOBAL // u16 name constant
	OP_SET_GLOBAL // u16 name constant; pops the value
	OP_GET_LOCAL  // u8 slot
	OP_SET_LOCAL  // u8 slot; pops the value

	// Calls
	OP_CALL        // u8 argc: [fn, args...] -> [result]
	OP_CALL_METHOD // u16 name constant, u8 argc: [recv, args...] -> [result]
	OP_RETURN

	// Containers
	OP_MAKE_LIST // u16 count: [items...] -> [list]
	OP_MAKE_MAP  // u16 count: [k1, v1, ...] -> [map]
	OP_GET_FIELD // [obj, key] -> [value]
	OP_SET_FIELD // [obj, key, value] -> []

	// Iteration. Hidden loop state on the stack is [iterable, step, cursor].
	OP_FOR_PREP // u8 slot, u16 exit label: [iterable, step] -> [iterable, step, cursor]
	OP_FOR_NEXT // u8 slot, u16 body label
	OP_FOR_STOP // drops the loop state

	// Modules
	OP_INCLUDE // [name] -> [module]
	OP_IMPORT  // u8 count, count x u16 name constants: [module] -> []

	OP_HALT
)

// OpcodeNames maps opcodes to their names for debugging
var OpcodeNames = map[Opcode]string{
	OP_PUSH_CONST:  "PUSH_CONST",
	OP_PUSH_INT:    "PUSH_INT",
	OP_PUSH_NULL:   "PUSH_NULL",
	OP_PUSH_TRUE:   "PUSH_TRUE",
	OP_PUSH_FALSE:  "PUSH_FALSE",
	OP_POP:         "POP",
	OP_DUP:         "DUP",
	OP_COPY:        "COPY",
	OP_SWAP:        "SWAP",
	OP_ADD:         "ADD",
	OP_SUB:         "SUB",
	OP_MUL:         "MUL",
	OP_DIV:         "DIV",
	OP_MOD:         "MOD",
	OP_BAND:        "BAND",
	OP_BOR:         "BOR",
	OP_BXOR:        "BXOR",
	OP_SHL:         "SHL",
	OP_SHR:         "SHR",
	OP_GT:          "GT",
	OP_GE:          "GE",
	OP_LT:          "LT",
	OP_LE:          "LE",
	OP_EQ:          "EQ",
	OP_NE:          "NE",
	OP_NEG:         "NEG",
	OP_BNOT:        "BNOT",
	OP_NOT:         "NOT",
	OP_JUMP:        "JUMP",
	OP_JUMP_FALSE:  "JUMP_FALSE",
	OP_JUMP_TRUE:   "JUMP_TRUE",
	OP_GET_GLOBAL:  "GET_GLOBAL",
	OP_SET_GLOBAL:  "SET_GLOBAL",
	OP_GET_LOCAL:   "GET_LOCAL",
	OP_SET_LOCAL:   "SET_LOCAL",
	OP_CALL:        "CALL",
	OP_CALL_METHOD: "CALL_METHOD",
	OP_RETURN:      "RETURN",
	OP_MAKE_LIST:   "MAKE_LIST",
	OP_MAKE_MAP:    "MAKE_MAP",
	OP_GET_FIELD:   "GET_FIELD",
	OP_SET_FIELD:   "SET_FIELD",
	OP_FOR_PREP:    "FOR_PREP",
	OP_FOR_NEXT:    "FOR_NEXT",
	OP_FOR_STOP:    "FOR_STOP",
	OP_INCLUDE:     "INCLUDE",
	OP_IMPORT:      "IMPORT",
	OP_HALT:        "HALT",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// binaryOpcodes maps infix operator lexemes to their opcode.
var binaryOpcodes = map[string]Opcode{
	"+":  OP_ADD,
	"-":  OP_SUB,
	"*":  OP_MUL,
	"/":  OP_DIV,
	"%":  OP_MOD,
	"&":  OP_BAND,
	"|":  OP_BOR,
	"^":  OP_BXOR,
	"<<": OP_SHL,
	">>": OP_SHR,
	">":  OP_GT,
	">=": OP_GE,
	"<":  OP_LT,
	"<=": OP_LE,
	"==": OP_EQ,
	"!=": OP_NE,
}
