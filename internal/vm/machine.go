package vm

import (
	"errors"
	"fmt"

	"github.com/funvibe/loom/internal/classfile"
)

var errStackUnderflow = errors.New("stack underflow")
var errTruncatedBytecode = errors.New("truncated bytecode")
var errInvalidConstantIndex = errors.New("invalid constant index")

// MaxCallDepth bounds recursion through generated entries.
const MaxCallDepth = 1024

// Machine executes method-table entries against a set of loaded classes.
type Machine struct {
	classes map[string]*classfile.Class
	depth   int
}

// New creates an empty machine.
func New() *Machine {
	return &Machine{classes: make(map[string]*classfile.Class)}
}

// RegisterClass loads a generated class into the machine.
func (m *Machine) RegisterClass(class *classfile.Class) {
	m.classes[class.Name] = class
}

// lookup resolves a method by key starting at the named class and walking
// the superclass chain.
func (m *Machine) lookup(className, key string) (*classfile.Class, *classfile.MethodEntry, error) {
	name := className
	for name != "" {
		class, ok := m.classes[name]
		if !ok {
			return nil, nil, fmt.Errorf("unknown class %s", name)
		}
		if entry := class.Lookup(key); entry != nil {
			return class, entry, nil
		}
		name = class.Super
	}
	return nil, nil, fmt.Errorf("method %s not found on %s", key, className)
}

// InvokeStatic runs a static entry with the given arguments. Arguments
// map one value per signature parameter; wide parameters consume two
// local slots but still pass as a single value.
func (m *Machine) InvokeStatic(owner string, sig classfile.Signature, args []Value) (Value, error) {
	_, entry, err := m.lookup(owner, sig.Key())
	if err != nil {
		return NullVal(), err
	}
	if !entry.IsStatic() {
		return NullVal(), fmt.Errorf("static invoke of instance entry %s.%s", owner, sig.Key())
	}
	return m.run(entry, nil, sig, args)
}

// InvokeVirtual runs an instance entry dispatched on the receiver's class.
func (m *Machine) InvokeVirtual(receiver Value, sig classfile.Signature, args []Value) (Value, error) {
	inst, ok := receiverInstance(receiver)
	if !ok {
		return NullVal(), fmt.Errorf("virtual invoke on non-instance receiver %s", receiver.Inspect())
	}
	_, entry, err := m.lookup(inst.Class, sig.Key())
	if err != nil {
		return NullVal(), err
	}
	if entry.IsAbstract() {
		return NullVal(), fmt.Errorf("invoke of abstract entry %s.%s", inst.Class, sig.Key())
	}
	return m.run(entry, &receiver, sig, args)
}

func receiverInstance(v Value) (*Instance, bool) {
	if v.Type != ValObj {
		return nil, false
	}
	inst, ok := v.Obj.(*Instance)
	return inst, ok
}

// run sets up a frame for one entry and executes its chunk. receiver is
// nil for static entries.
func (m *Machine) run(entry *classfile.MethodEntry, receiver *Value, sig classfile.Signature, args []Value) (Value, error) {
	if len(args) != len(sig.Params) {
		return NullVal(), fmt.Errorf("entry %s expects %d arguments, got %d", sig.Key(), len(sig.Params), len(args))
	}
	if m.depth >= MaxCallDepth {
		return NullVal(), fmt.Errorf("call depth exceeded invoking %s", sig.Key())
	}
	m.depth++
	defer func() { m.depth-- }()

	localCount := entry.MaxLocals
	if localCount < 1 {
		localCount = 1
	}
	locals := make([]Value, localCount+2)

	slot := 0
	if receiver != nil {
		locals[0] = *receiver
		slot = 1
	}
	for i, arg := range args {
		locals[slot] = arg
		slot += sig.Params[i].Width()
	}

	return m.exec(entry.Code, locals)
}
