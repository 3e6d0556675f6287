package vm

import (
	"fmt"

	"github.com/funvibe/loom/internal/classfile"
	"github.com/funvibe/loom/internal/types"
)

// exec runs one chunk to its return. Frames are Go stack frames: nested
// invocations recurse through run.
func (m *Machine) exec(chunk *classfile.Chunk, locals []Value) (Value, error) {
	var stack []Value

	push := func(v Value) {
		stack = append(stack, v)
	}
	pop := func() (Value, error) {
		if len(stack) == 0 {
			return NullVal(), errStackUnderflow
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	ip := 0
	readByte := func() (byte, error) {
		if ip >= chunk.Len() {
			return 0, errTruncatedBytecode
		}
		b := chunk.Code[ip]
		ip++
		return b, nil
	}
	readShort := func() (int, error) {
		if ip+2 > chunk.Len() {
			return 0, errTruncatedBytecode
		}
		v := chunk.ReadConstantIndex(ip)
		ip += 2
		return v, nil
	}
	readConstant := func() (any, error) {
		idx, err := readShort()
		if err != nil {
			return nil, err
		}
		if idx >= len(chunk.Constants) {
			return nil, errInvalidConstantIndex
		}
		return chunk.Constants[idx], nil
	}

	for ip < chunk.Len() {
		op := classfile.Opcode(chunk.Code[ip])
		ip++

		switch op {
		case classfile.OP_CONST:
			c, err := readConstant()
			if err != nil {
				return NullVal(), err
			}
			v, err := constantValue(c)
			if err != nil {
				return NullVal(), err
			}
			push(v)

		case classfile.OP_NULL:
			push(NullVal())

		case classfile.OP_DUP:
			v, err := pop()
			if err != nil {
				return NullVal(), err
			}
			push(v)
			push(v)

		case classfile.OP_POP:
			if _, err := pop(); err != nil {
				return NullVal(), err
			}

		case classfile.OP_LOAD:
			slot, err := readByte()
			if err != nil {
				return NullVal(), err
			}
			if int(slot) >= len(locals) {
				return NullVal(), fmt.Errorf("load from slot %d outside frame", slot)
			}
			push(locals[slot])

		case classfile.OP_STORE:
			slot, err := readByte()
			if err != nil {
				return NullVal(), err
			}
			v, err := pop()
			if err != nil {
				return NullVal(), err
			}
			if int(slot) >= len(locals) {
				return NullVal(), fmt.Errorf("store to slot %d outside frame", slot)
			}
			locals[slot] = v

		case classfile.OP_NEW_CELL:
			push(ObjVal(&Cell{}))

		case classfile.OP_CELL_SET:
			v, err := pop()
			if err != nil {
				return NullVal(), err
			}
			cv, err := pop()
			if err != nil {
				return NullVal(), err
			}
			cell, ok := asCell(cv)
			if !ok {
				return NullVal(), fmt.Errorf("CELL_SET on non-cell %s", cv.Inspect())
			}
			cell.Ref = v

		case classfile.OP_CELL_GET:
			cv, err := pop()
			if err != nil {
				return NullVal(), err
			}
			cell, ok := asCell(cv)
			if !ok {
				return NullVal(), fmt.Errorf("CELL_GET on non-cell %s", cv.Inspect())
			}
			push(cell.Ref)

		case classfile.OP_CHECKCAST:
			c, err := readConstant()
			if err != nil {
				return NullVal(), err
			}
			name, ok := c.(string)
			if !ok {
				return NullVal(), fmt.Errorf("CHECKCAST constant is not a type name")
			}
			if len(stack) == 0 {
				return NullVal(), errStackUnderflow
			}
			if err := m.checkCast(stack[len(stack)-1], name); err != nil {
				return NullVal(), err
			}

		case classfile.OP_BOX:
			v, err := pop()
			if err != nil {
				return NullVal(), err
			}
			push(ObjVal(&Box{Rep: boxRep(v), Value: v}))

		case classfile.OP_UNBOX:
			v, err := pop()
			if err != nil {
				return NullVal(), err
			}
			if v.Type != ValObj {
				return NullVal(), fmt.Errorf("UNBOX of non-reference %s", v.Inspect())
			}
			box, ok := v.Obj.(*Box)
			if !ok {
				return NullVal(), fmt.Errorf("UNBOX of non-box %s", v.Inspect())
			}
			push(box.Value)

		case classfile.OP_IAND:
			b, err := pop()
			if err != nil {
				return NullVal(), err
			}
			a, err := pop()
			if err != nil {
				return NullVal(), err
			}
			if a.Type != ValInt || b.Type != ValInt {
				return NullVal(), fmt.Errorf("IAND on non-int operands")
			}
			push(IntVal(a.AsInt() & b.AsInt()))

		case classfile.OP_JUMP:
			offset, err := readShort()
			if err != nil {
				return NullVal(), err
			}
			ip += offset

		case classfile.OP_JUMP_IF_ZERO:
			offset, err := readShort()
			if err != nil {
				return NullVal(), err
			}
			v, err := pop()
			if err != nil {
				return NullVal(), err
			}
			if v.Type != ValInt {
				return NullVal(), fmt.Errorf("JUMP_IF_ZERO on non-int %s", v.Inspect())
			}
			if v.AsInt() == 0 {
				ip += offset
			}

		case classfile.OP_INVOKE_STATIC, classfile.OP_INVOKE_VIRTUAL, classfile.OP_INVOKE_IFACE:
			c, err := readConstant()
			if err != nil {
				return NullVal(), err
			}
			ref, ok := c.(classfile.MethodRef)
			if !ok {
				return NullVal(), fmt.Errorf("invoke constant is not a method reference")
			}

			argc := len(ref.Sig.Params)
			args := make([]Value, argc)
			for i := argc - 1; i >= 0; i-- {
				args[i], err = pop()
				if err != nil {
					return NullVal(), err
				}
			}

			var result Value
			if op == classfile.OP_INVOKE_STATIC {
				result, err = m.InvokeStatic(ref.Owner, ref.Sig, args)
			} else {
				var recv Value
				recv, err = pop()
				if err != nil {
					return NullVal(), err
				}
				result, err = m.InvokeVirtual(recv, ref.Sig, args)
			}
			if err != nil {
				return NullVal(), err
			}
			if ref.Sig.Return != types.RepVoid {
				push(result)
			}

		case classfile.OP_GET_FIELD:
			c, err := readConstant()
			if err != nil {
				return NullVal(), err
			}
			name, ok := c.(string)
			if !ok {
				return NullVal(), fmt.Errorf("GET_FIELD constant is not a field name")
			}
			v, err := pop()
			if err != nil {
				return NullVal(), err
			}
			inst, ok := receiverInstance(v)
			if !ok {
				return NullVal(), fmt.Errorf("GET_FIELD on non-instance %s", v.Inspect())
			}
			field, ok := inst.Fields[name]
			if !ok {
				return NullVal(), fmt.Errorf("no field %s on %s", name, inst.Class)
			}
			push(field)

		case classfile.OP_RETURN:
			return NullVal(), nil

		case classfile.OP_RETURN_VAL:
			return pop()

		default:
			return NullVal(), fmt.Errorf("unknown opcode 0x%02x at offset %d", byte(op), ip-1)
		}
	}

	return NullVal(), fmt.Errorf("control fell off the end of the chunk")
}

// constantValue converts a pool constant to a runtime value.
func constantValue(c any) (Value, error) {
	switch v := c.(type) {
	case int64:
		return IntVal(v), nil
	case float64:
		return FloatVal(v), nil
	case bool:
		return BoolVal(v), nil
	case string:
		return NullVal(), fmt.Errorf("string constant %q pushed as a value", v)
	default:
		return NullVal(), fmt.Errorf("unsupported constant %T", c)
	}
}

func asCell(v Value) (*Cell, bool) {
	if v.Type != ValObj {
		return nil, false
	}
	cell, ok := v.Obj.(*Cell)
	return cell, ok
}

// boxRep approximates the representation of a boxed primitive for
// display purposes.
func boxRep(v Value) types.Rep {
	switch v.Type {
	case ValBool:
		return types.RepBool
	case ValFloat:
		return types.RepDouble
	default:
		return types.RepInt
	}
}

// checkCast verifies a downcast. Null always passes. An instance passes
// when the target name appears in its class chain; a chain that leaves
// the registered class set is accepted as unverifiable. Non-instance
// references (boxes, cells, witnesses) pass.
func (m *Machine) checkCast(v Value, name string) error {
	if v.IsNull() || v.Type != ValObj {
		return nil
	}
	inst, ok := v.Obj.(*Instance)
	if !ok {
		return nil
	}

	current := inst.Class
	for current != "" {
		if current == name {
			return nil
		}
		class, ok := m.classes[current]
		if !ok {
			return nil // Chain leaves the loaded set; cannot verify
		}
		for _, iface := range class.Interfaces {
			if iface == name {
				return nil
			}
		}
		current = class.Super
	}
	return fmt.Errorf("cannot cast %s to %s", inst.Class, name)
}
