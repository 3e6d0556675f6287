package classfile

import (
	"fmt"

	"github.com/funvibe/loom/internal/types"
)

// ComputeMaxStack walks an instruction stream and returns the maximum
// operand stack depth any execution path can reach. It rejects streams
// whose depth is inconsistent between paths, underflows, or that fall off
// the end without returning.
func ComputeMaxStack(c *Chunk) (int, error) {
	if c.Len() == 0 {
		return 0, fmt.Errorf("empty instruction stream")
	}

	// depths[offset] is the stack depth on entry to the instruction at
	// offset, or -1 when the offset was not reached yet.
	depths := make([]int, c.Len())
	for i := range depths {
		depths[i] = -1
	}

	maxDepth := 0
	work := []int{0}
	depths[0] = 0

	for len(work) > 0 {
		offset := work[len(work)-1]
		work = work[:len(work)-1]
		depth := depths[offset]

		for offset < c.Len() {
			op := Opcode(c.Code[offset])
			width := operandWidth(op)
			if offset+1+width > c.Len() {
				return 0, fmt.Errorf("truncated operand at offset %d", offset)
			}

			effect, err := stackEffect(c, op, offset+1)
			if err != nil {
				return 0, err
			}
			depth += effect
			if depth < 0 {
				return 0, fmt.Errorf("stack underflow at offset %d (%s)", offset, op)
			}
			if depth > maxDepth {
				maxDepth = depth
			}

			next := offset + 1 + width

			switch op {
			case OP_RETURN, OP_RETURN_VAL:
				offset = c.Len() // Path ends here
				continue
			case OP_JUMP, OP_JUMP_IF_ZERO:
				jump := c.ReadConstantIndex(offset + 1)
				target := next + jump
				if target < 0 || target > c.Len() {
					return 0, fmt.Errorf("jump target %d out of range at offset %d", target, offset)
				}
				if err := merge(depths, target, depth, &work); err != nil {
					return 0, err
				}
				if op == OP_JUMP {
					offset = c.Len()
					continue
				}
			}

			if next >= c.Len() {
				return 0, fmt.Errorf("control falls off the end of the stream")
			}
			if err := merge(depths, next, depth, nil); err != nil {
				return 0, err
			}
			offset = next
		}
	}

	return maxDepth, nil
}

// merge records the entry depth for a target offset. A target reached
// twice with different depths is a rejected stream. When work is non-nil
// and the target is new, it is queued for its own walk.
func merge(depths []int, target, depth int, work *[]int) error {
	if target == len(depths) {
		// Jump exactly to the end is treated as falling off; the walk
		// from the fallthrough path reports it.
		return fmt.Errorf("jump target at end of stream")
	}
	if depths[target] == -1 {
		depths[target] = depth
		if work != nil {
			*work = append(*work, target)
		}
		return nil
	}
	if depths[target] != depth {
		return fmt.Errorf("inconsistent stack depth at offset %d: %d vs %d", target, depths[target], depth)
	}
	return nil
}

// stackEffect returns the net stack effect of one instruction. operandAt
// is the offset of the first operand byte.
func stackEffect(c *Chunk, op Opcode, operandAt int) (int, error) {
	switch op {
	case OP_CONST, OP_NULL, OP_DUP, OP_LOAD, OP_NEW_CELL:
		return 1, nil
	case OP_POP, OP_STORE, OP_IAND, OP_JUMP_IF_ZERO, OP_RETURN_VAL:
		return -1, nil
	case OP_CELL_SET:
		return -2, nil
	case OP_CELL_GET, OP_CHECKCAST, OP_BOX, OP_UNBOX, OP_GET_FIELD, OP_JUMP, OP_RETURN:
		return 0, nil
	case OP_INVOKE_STATIC, OP_INVOKE_VIRTUAL, OP_INVOKE_IFACE:
		idx := c.ReadConstantIndex(operandAt)
		if idx >= len(c.Constants) {
			return 0, fmt.Errorf("invoke constant index %d out of range", idx)
		}
		ref, ok := c.Constants[idx].(MethodRef)
		if !ok {
			return 0, fmt.Errorf("invoke constant %d is not a method reference", idx)
		}
		effect := -len(ref.Sig.Params)
		if op != OP_INVOKE_STATIC {
			effect-- // Receiver
		}
		if ref.Sig.Return != types.RepVoid {
			effect++
		}
		return effect, nil
	}
	return 0, fmt.Errorf("unknown opcode 0x%02x", byte(op))
}
