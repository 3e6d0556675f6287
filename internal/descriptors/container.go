package descriptors

import (
	"github.com/funvibe/loom/internal/classfile"
	"github.com/funvibe/loom/internal/config"
)

// ContainerKind is the closed set of container variants a declaration can
// be generated into. Every switch over it is exhaustive; there is no
// default case anywhere in the generator.
type ContainerKind int

const (
	// Namespace holds free functions; entries are static.
	Namespace ContainerKind = iota
	// Implementation is an ordinary class body; entries are instance methods.
	Implementation
	// TraitInterface is the interface view of a trait; bodyless
	// declarations become abstract entries.
	TraitInterface
	// TraitImplementation is the synthetic holder of trait default bodies;
	// entries are static with the interface-typed receiver in slot 0.
	TraitImplementation
	// Delegate is a class member forwarded to a held value implementing
	// the declared interface.
	Delegate
)

func (k ContainerKind) String() string {
	switch k {
	case Namespace:
		return "namespace"
	case Implementation:
		return "implementation"
	case TraitInterface:
		return "trait-interface"
	case TraitImplementation:
		return "trait-implementation"
	case Delegate:
		return "delegate"
	}
	return "invalid"
}

// DelegateAccessor emits the instruction sequence that produces the
// delegate value. The receiver object is on the stack when EmitLoad runs
// and must be consumed by the emitted sequence.
type DelegateAccessor interface {
	EmitLoad(code *classfile.Chunk, line int)
}

// FieldAccessor is the common delegate accessor: the delegate value lives
// in a field of the delegating object.
type FieldAccessor struct {
	FieldName string
}

// EmitLoad implements DelegateAccessor.
func (a *FieldAccessor) EmitLoad(code *classfile.Chunk, line int) {
	idx := code.AddConstant(a.FieldName)
	code.WriteOp(classfile.OP_GET_FIELD, line)
	code.Write(byte(idx>>8), line)
	code.Write(byte(idx), line)
}

// Container describes where a declaration's entries land.
type Container struct {
	Kind ContainerKind

	// Class is the declaration's container class: the namespace class for
	// Namespace, the class for Implementation and Delegate, the trait for
	// both trait kinds.
	Class *ClassDescriptor

	// Interface and Accessor are set only for Delegate containers.
	Interface *ClassDescriptor
	Accessor  DelegateAccessor
}

// EmissionClassName returns the name of the class the container's
// entries are written into: the synthetic holder class for trait
// implementations, the container class itself otherwise.
func (c Container) EmissionClassName() string {
	if c.Kind == TraitImplementation {
		return c.Class.Name + config.TraitImplSuffix
	}
	return c.Class.Name
}

// IsStatic reports whether primary entries in this container are static.
func (c Container) IsStatic() bool {
	switch c.Kind {
	case Namespace, TraitImplementation:
		return true
	case Implementation, TraitInterface, Delegate:
		return false
	}
	return false
}
