// Package classfile defines the binary method-table format the generator
// targets: instruction streams, method signatures and the per-class
// emission sink.
package classfile

// Opcode represents a single instruction of the target machine.
type Opcode byte

const (
	// Stack manipulation
	OP_CONST Opcode = iota // Push constant from pool (u16 index)
	OP_NULL                // Push the null reference
	OP_DUP                 // Duplicate top of stack
	OP_POP                 // Discard top of stack

	// Locals
	OP_LOAD  // Push local slot (u8)
	OP_STORE // Pop into local slot (u8)

	// Shared mutable cells (closure-captured locals)
	OP_NEW_CELL // Push a fresh empty cell
	OP_CELL_SET // [cell, value] -> [], store value into cell
	OP_CELL_GET // [cell] -> [value]

	// Reference adaptation
	OP_CHECKCAST // Checked downcast, type name constant (u16 index)
	OP_BOX       // [primitive] -> [boxed reference]
	OP_UNBOX     // [boxed reference] -> [primitive]

	// Integer logic (default-argument masks)
	OP_IAND // [a, b] -> [a & b]

	// Control flow, forward offsets relative to the following byte (u16)
	OP_JUMP         // Unconditional jump
	OP_JUMP_IF_ZERO // Pop int, jump when zero

	// Invocation, method reference constant (u16 index)
	OP_INVOKE_STATIC  // Pop args, push result
	OP_INVOKE_VIRTUAL // Pop args and receiver, dispatch on receiver class
	OP_INVOKE_IFACE   // Pop args and receiver, dispatch through interface

	// Fields
	OP_GET_FIELD // [ref] -> [field], field name constant (u16 index)

	// Returns
	OP_RETURN     // Return no value
	OP_RETURN_VAL // Pop and return top of stack
)

// opcodeNames maps opcodes to their mnemonic for disassembly.
var opcodeNames = map[Opcode]string{
	OP_CONST:          "CONST",
	OP_NULL:           "NULL",
	OP_DUP:            "DUP",
	OP_POP:            "POP",
	OP_LOAD:           "LOAD",
	OP_STORE:          "STORE",
	OP_NEW_CELL:       "NEW_CELL",
	OP_CELL_SET:       "CELL_SET",
	OP_CELL_GET:       "CELL_GET",
	OP_CHECKCAST:      "CHECKCAST",
	OP_BOX:            "BOX",
	OP_UNBOX:          "UNBOX",
	OP_IAND:           "IAND",
	OP_JUMP:           "JUMP",
	OP_JUMP_IF_ZERO:   "JUMP_IF_ZERO",
	OP_INVOKE_STATIC:  "INVOKE_STATIC",
	OP_INVOKE_VIRTUAL: "INVOKE_VIRTUAL",
	OP_INVOKE_IFACE:   "INVOKE_IFACE",
	OP_GET_FIELD:      "GET_FIELD",
	OP_RETURN:         "RETURN",
	OP_RETURN_VAL:     "RETURN_VAL",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// operandWidth returns the number of operand bytes following the opcode.
func operandWidth(op Opcode) int {
	switch op {
	case OP_CONST, OP_CHECKCAST, OP_JUMP, OP_JUMP_IF_ZERO,
		OP_INVOKE_STATIC, OP_INVOKE_VIRTUAL, OP_INVOKE_IFACE, OP_GET_FIELD:
		return 2
	case OP_LOAD, OP_STORE:
		return 1
	default:
		return 0
	}
}
