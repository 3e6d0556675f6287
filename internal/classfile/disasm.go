package classfile

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable representation of one instruction
// stream.
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstruction(&sb, chunk, offset)
	}

	return sb.String()
}

// DisassembleClass renders a whole method table.
func DisassembleClass(class *Class) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("class %s", class.Name))
	if class.Super != "" {
		sb.WriteString(fmt.Sprintf(" extends %s", class.Super))
	}
	if len(class.Interfaces) > 0 {
		sb.WriteString(fmt.Sprintf(" implements %s", strings.Join(class.Interfaces, ", ")))
	}
	sb.WriteString("\n")

	for _, m := range class.Methods {
		sb.WriteString(fmt.Sprintf("\n%s%s\n", flagPrefix(m.Flags), m.Sig.Key()))
		if m.IsAbstract() {
			sb.WriteString("  <abstract>\n")
			continue
		}
		sb.WriteString(fmt.Sprintf("  stack=%d locals=%d\n", m.MaxStack, m.MaxLocals))
		sb.WriteString(indent(Disassemble(m.Code, m.Sig.Key()), "  "))
	}

	return sb.String()
}

func flagPrefix(flags uint16) string {
	var parts []string
	if flags&ACC_PUBLIC != 0 {
		parts = append(parts, "public")
	}
	if flags&ACC_STATIC != 0 {
		parts = append(parts, "static")
	}
	if flags&ACC_ABSTRACT != 0 {
		parts = append(parts, "abstract")
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + " "
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n") + "\n"
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	// Print line number
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", chunk.Lines[offset]))
	}

	op := Opcode(chunk.Code[offset])

	switch operandWidth(op) {
	case 0:
		sb.WriteString(op.String())
		sb.WriteString("\n")
		return offset + 1

	case 1:
		slot := chunk.Code[offset+1]
		sb.WriteString(fmt.Sprintf("%-16s %d\n", op.String(), slot))
		return offset + 2

	default:
		arg := chunk.ReadConstantIndex(offset + 1)
		switch op {
		case OP_JUMP, OP_JUMP_IF_ZERO:
			sb.WriteString(fmt.Sprintf("%-16s -> %d\n", op.String(), offset+3+arg))
		default:
			if arg < len(chunk.Constants) {
				sb.WriteString(fmt.Sprintf("%-16s #%d (%v)\n", op.String(), arg, chunk.Constants[arg]))
			} else {
				sb.WriteString(fmt.Sprintf("%-16s #%d (!)\n", op.String(), arg))
			}
		}
		return offset + 3
	}
}
